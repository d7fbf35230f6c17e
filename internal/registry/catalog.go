package registry

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

//go:embed defaults/catalog.yaml
var defaultCatalogYAML []byte

// CatalogFileName is the catalog file looked up in the config directories.
const CatalogFileName = "catalog.yaml"

type catalogFile struct {
	Games []ScoreConfig `yaml:"games"`
}

// ParseCatalog builds a catalog from YAML.
func ParseCatalog(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("registry: failed to parse catalog: %w", err)
	}
	c := NewCatalog()
	for _, cfg := range file.Games {
		if err := c.Register(cfg); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// LoadCatalog loads the score catalog.
// Search order: customPath -> ~/.arcade/configs/catalog.yaml -> ./configs/catalog.yaml -> embedded default
func LoadCatalog(customPath string) (*Catalog, error) {
	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog %s: %w", customPath, err)
		}
		return ParseCatalog(data)
	}

	// Try user config directory
	if userPath := userConfigPath(CatalogFileName); userPath != "" {
		if data, err := os.ReadFile(userPath); err == nil {
			if c, err := ParseCatalog(data); err == nil {
				return c, nil
			}
		}
	}

	// Try local configs directory
	if data, err := os.ReadFile(filepath.Join("configs", CatalogFileName)); err == nil {
		if c, err := ParseCatalog(data); err == nil {
			return c, nil
		}
	}

	// Use embedded default YAML
	return ParseCatalog(defaultCatalogYAML)
}

// DefaultCatalogYAML returns the embedded catalog.
func DefaultCatalogYAML() []byte {
	return defaultCatalogYAML
}

func mustDefaultCatalog() *Catalog {
	c, err := ParseCatalog(defaultCatalogYAML)
	if err != nil {
		panic(err)
	}
	return c
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".arcade", "configs", filename)
}
