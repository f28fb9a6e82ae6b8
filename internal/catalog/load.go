package catalog

import (
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

// DefaultYAML returns the commented built-in catalog, used by protectwatch init.
func DefaultYAML() []byte {
	out := make([]byte, len(defaultYAML))
	copy(out, defaultYAML)
	return out
}

// Default returns a fresh copy of the built-in catalog.
// Panics if the embedded YAML is broken, which the package tests guard against.
func Default() *Catalog {
	cat := &Catalog{}
	if err := yaml.Unmarshal(defaultYAML, cat); err != nil {
		panic(fmt.Sprintf("embedded catalog: %v", err))
	}
	return cat
}

// DefaultPath returns ~/.protectwatch/catalog.yaml, or "" if the home directory is unknown.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".protectwatch", "catalog.yaml")
}

// Load loads a catalog from a YAML file.
// Empty path falls back to ~/.protectwatch/catalog.yaml.
// Missing file returns defaults. Invalid YAML or an inconsistent catalog returns an error.
func Load(path string) (*Catalog, error) {
	cat, _, err := LoadWithHash(path)
	return cat, err
}

// LoadWithHash loads a catalog and returns the SHA-256 of the raw file bytes.
// When no file exists (defaults used), the hash is the SHA-256 of empty input.
func LoadWithHash(path string) (*Catalog, string, error) {
	if path == "" {
		path = DefaultPath()
	}
	if path == "" {
		return Default(), hashOf(nil), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), hashOf(nil), nil
		}
		return nil, "", fmt.Errorf("failed to read catalog: %w", err)
	}

	cat, err := Parse(data)
	if err != nil {
		return nil, "", err
	}
	return cat, hashOf(data), nil
}

// Parse overlays YAML onto the defaults and validates the result.
func Parse(data []byte) (*Catalog, error) {
	cat := Default()
	if err := yaml.Unmarshal(data, cat); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if err := cat.Validate(); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}
	return cat, nil
}

func hashOf(data []byte) string {
	h := sha256.Sum256(data)
	return "sha256:" + hex.EncodeToString(h[:])
}
