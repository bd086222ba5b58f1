package parts

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/renameio/v2"
	"gopkg.in/yaml.v3"
)

// ManifestName is the default manifest filename written next to a
// downloaded part set.
const ManifestName = "easyparts.yaml"

type ManifestPart struct {
	Name   string `yaml:"name"`
	Size   int64  `yaml:"size"`
	SHA256 string `yaml:"sha256"`
}

type Manifest struct {
	Name    string         `yaml:"name,omitempty"`
	Created time.Time      `yaml:"created"`
	Parts   []ManifestPart `yaml:"parts"`
}

// HashFile returns the SHA-256 hex digest and size of a file.
func HashFile(path string) (string, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer file.Close()
	hasher := sha256.New()
	size, err := io.Copy(hasher, file)
	if err != nil {
		return "", 0, err
	}
	return hex.EncodeToString(hasher.Sum(nil)), size, nil
}

// GenerateManifest hashes the named part files in dir.
func GenerateManifest(dir string, names []string) (*Manifest, error) {
	manifest := &Manifest{Created: time.Now().UTC()}
	for _, name := range names {
		sum, size, err := HashFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("error hashing part %s: %v", name, err)
		}
		manifest.Parts = append(manifest.Parts, ManifestPart{Name: name, Size: size, SHA256: sum})
	}
	return manifest, nil
}

// Write stores the manifest atomically in dir.
func (m *Manifest) Write(dir string) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("error marshaling manifest: %v", err)
	}
	if err := renameio.WriteFile(filepath.Join(dir, ManifestName), data, 0644); err != nil {
		return fmt.Errorf("error writing manifest: %v", err)
	}
	return nil
}

func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading manifest: %v", err)
	}
	var manifest Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("error parsing manifest: %v", err)
	}
	if len(manifest.Parts) == 0 {
		return nil, fmt.Errorf("manifest has no parts")
	}
	return &manifest, nil
}
