package extract

import (
	"bufio"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/rs/zerolog/log"
)

// backend is an external extractor located on PATH.
type backend struct {
	name string
	args func(archive, dest string) []string
}

var backends = []backend{
	{
		name: "7z",
		args: func(archive, dest string) []string {
			return []string{"x", "-y", "-o" + dest, archive}
		},
	},
	{
		name: "unrar",
		args: func(archive, dest string) []string {
			return []string{"x", "-y", archive, dest}
		},
	},
}

// findBackend picks an installed extractor for the archive. unrar only
// handles rar files, 7z handles everything it finds.
func findBackend(archivePath string) (backend, string, error) {
	isRar := strings.HasSuffix(strings.ToLower(archivePath), ".rar")
	for _, b := range backends {
		if b.name == "unrar" && !isRar {
			continue
		}
		if path, err := exec.LookPath(b.name); err == nil {
			return b, path, nil
		}
	}
	return backend{}, "", fmt.Errorf("no extractor found on PATH (install 7z or unrar)")
}

func extractExternal(archivePath string, opts Options) error {
	b, toolPath, err := findBackend(archivePath)
	if err != nil {
		return err
	}
	cmd := exec.Command(toolPath, b.args(archivePath, opts.DestDir)...)
	log.Debug().Str("op", "extract/backend").Msgf("Executing extractor: %s", cmd.String())

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("error creating stdout pipe: %v", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("error creating stderr pipe: %v", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("error starting %s: %v", b.name, err)
	}
	go processStream(stdout, opts.StreamFunc)
	go processStream(stderr, opts.StreamFunc)
	if err := cmd.Wait(); err != nil {
		log.Error().Str("op", "extract/backend").Err(err).Msgf("%s command failed", b.name)
		return fmt.Errorf("%s failed: %v", b.name, err)
	}
	log.Info().Str("op", "extract/backend").Msgf("Extracted %s with %s", archivePath, b.name)
	return nil
}

func processStream(reader io.Reader, streamFunc func(string)) {
	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" && streamFunc != nil {
			streamFunc(line)
		}
	}
}
