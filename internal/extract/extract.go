package extract

import (
	"archive/tar"
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/rs/zerolog/log"

	"github.com/easyparts/easyparts/internal/parts"
)

// Options control extraction behavior.
type Options struct {
	DestDir    string
	StreamFunc func(line string) // external backend output
}

// Extract unpacks archivePath into opts.DestDir. Zip and tar.gz are
// handled natively; rar, 7z and multi-volume sets go through an
// external backend (7z or unrar on PATH).
func Extract(archivePath string, opts Options) error {
	if opts.DestDir == "" {
		opts.DestDir = filepath.Dir(archivePath)
	}
	if err := os.MkdirAll(opts.DestDir, 0755); err != nil {
		return fmt.Errorf("error creating destination directory: %v", err)
	}
	lower := strings.ToLower(archivePath)
	switch {
	case strings.HasSuffix(lower, ".zip"):
		return extractZip(archivePath, opts.DestDir)
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		return extractTarGz(archivePath, opts.DestDir)
	default:
		return extractExternal(archivePath, opts)
	}
}

// ExtractSet extracts a detected part set from dir, pointing the
// extractor at the first volume.
func ExtractSet(dir string, set *parts.Set, opts Options) error {
	first, ok := set.First()
	if !ok {
		return fmt.Errorf("no first volume found for set %s", set.Base)
	}
	if opts.DestDir == "" {
		opts.DestDir = dir
	}
	return Extract(filepath.Join(dir, first.Name), opts)
}

// CleanupParts removes the part files of a set after successful
// extraction. Extracted payload is never touched.
func CleanupParts(dir string, set *parts.Set) error {
	for _, part := range set.Parts {
		if err := os.Remove(filepath.Join(dir, part.Name)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("error removing part %s: %v", part.Name, err)
		}
	}
	log.Info().Str("op", "extract/cleanup").Msgf("Removed %d part files for %s", len(set.Parts), set.Base)
	return nil
}

func extractZip(archivePath, destDir string) error {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("error opening zip archive: %v", err)
	}
	defer reader.Close()
	for _, file := range reader.File {
		target, err := sanitizeEntry(destDir, file.Name)
		if err != nil {
			return err
		}
		if file.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return fmt.Errorf("error creating directory %s: %v", file.Name, err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return fmt.Errorf("error creating directory for %s: %v", file.Name, err)
		}
		src, err := file.Open()
		if err != nil {
			return fmt.Errorf("error opening zip entry %s: %v", file.Name, err)
		}
		if err := writeEntry(target, src, file.Mode()); err != nil {
			src.Close()
			return fmt.Errorf("error extracting %s: %v", file.Name, err)
		}
		src.Close()
	}
	log.Info().Str("op", "extract/zip").Msgf("Extracted %s to %s", filepath.Base(archivePath), destDir)
	return nil
}

func extractTarGz(archivePath, destDir string) error {
	file, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("error opening archive: %v", err)
	}
	defer file.Close()
	gzReader, err := gzip.NewReader(file)
	if err != nil {
		return fmt.Errorf("error opening gzip stream: %v", err)
	}
	defer gzReader.Close()
	tarReader := tar.NewReader(gzReader)
	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("error reading tar stream: %v", err)
		}
		target, err := sanitizeEntry(destDir, header.Name)
		if err != nil {
			return err
		}
		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return fmt.Errorf("error creating directory %s: %v", header.Name, err)
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return fmt.Errorf("error creating directory for %s: %v", header.Name, err)
			}
			if err := writeEntry(target, tarReader, os.FileMode(header.Mode)); err != nil {
				return fmt.Errorf("error extracting %s: %v", header.Name, err)
			}
		default:
			// symlinks and special files are skipped
			log.Debug().Str("op", "extract/targz").Msgf("Skipping entry %s (type %d)", header.Name, header.Typeflag)
		}
	}
	log.Info().Str("op", "extract/targz").Msgf("Extracted %s to %s", filepath.Base(archivePath), destDir)
	return nil
}

func writeEntry(target string, src io.Reader, mode os.FileMode) error {
	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode.Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// sanitizeEntry guards against path traversal in archive entry names.
func sanitizeEntry(destDir, name string) (string, error) {
	target := filepath.Join(destDir, filepath.Clean(name))
	base := filepath.Clean(destDir)
	if target != base && !strings.HasPrefix(target, base+string(os.PathSeparator)) {
		return "", fmt.Errorf("illegal entry path: %s", name)
	}
	return target, nil
}
