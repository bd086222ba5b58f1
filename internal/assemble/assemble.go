package assemble

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/easyparts/easyparts/internal/parts"
	"github.com/easyparts/easyparts/internal/utils"
)

// Join concatenates the numeric split volumes of a set, in ordinal
// order, into a single archive in dir. The output name is the set base
// without the trailing volume number (name.7z.001 -> name.7z).
func Join(dir string, set *parts.Set) (string, error) {
	if missing := set.MissingOrdinals(); len(missing) > 0 {
		return "", fmt.Errorf("cannot assemble %s: missing volumes %v", set.Base, missing)
	}
	if len(set.Parts) == 0 {
		return "", fmt.Errorf("cannot assemble %s: no volumes found", set.Base)
	}
	for _, part := range set.Parts {
		if !parts.IsNumericVolume(part.Name) {
			return "", fmt.Errorf("cannot assemble %s: %s is not a split volume", set.Base, part.Name)
		}
	}
	first := set.Parts[0]
	target := filepath.Join(dir, targetName(first.Name, set.Base))
	if _, err := os.Stat(target); err == nil {
		target = utils.RenewOutputPath(target)
	}

	tempDir := filepath.Join(dir, utils.TempDirName)
	if err := os.MkdirAll(tempDir, 0755); err != nil {
		return "", fmt.Errorf("error creating temp directory: %v", err)
	}
	tempPath := filepath.Join(tempDir, filepath.Base(target)+".joined")
	out, err := os.Create(tempPath)
	if err != nil {
		return "", fmt.Errorf("error creating output file: %v", err)
	}

	var expected, written int64
	buffer := make([]byte, utils.DefaultBufferSize)
	for _, part := range set.Parts {
		partPath := filepath.Join(dir, part.Name)
		info, err := os.Stat(partPath)
		if err != nil {
			out.Close()
			return "", fmt.Errorf("error checking volume %s: %v", part.Name, err)
		}
		expected += info.Size()
		in, err := os.Open(partPath)
		if err != nil {
			out.Close()
			return "", fmt.Errorf("error opening volume %s: %v", part.Name, err)
		}
		n, err := io.CopyBuffer(out, in, buffer)
		in.Close()
		if err != nil {
			out.Close()
			return "", fmt.Errorf("error copying volume %s: %v", part.Name, err)
		}
		written += n
		log.Debug().Str("op", "assemble/join").Msgf("Appended volume %s (%d bytes)", part.Name, n)
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return "", fmt.Errorf("error syncing output file: %v", err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("error closing output file: %v", err)
	}
	if written != expected {
		os.Remove(tempPath)
		return "", fmt.Errorf("size mismatch: expected %d, wrote %d", expected, written)
	}
	if err := os.Rename(tempPath, target); err != nil {
		return "", fmt.Errorf("error finalizing output file: %v", err)
	}
	log.Info().Str("op", "assemble/join").Msgf("Assembled %d volumes into %s", len(set.Parts), target)
	return target, nil
}

// targetName strips the numeric volume suffix from the first volume's
// filename; falls back to the set base.
func targetName(firstName, base string) string {
	if idx := strings.LastIndex(firstName, "."); idx > 0 {
		suffix := firstName[idx+1:]
		if len(suffix) == 3 && isDigits(suffix) {
			return firstName[:idx]
		}
	}
	return base
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
