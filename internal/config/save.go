package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// UserConfigPath is the config file in the user's config directory, the last
// place Load looks.
func UserConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// Save writes the config to UserConfigPath and returns that path.
func (c *Config) Save() (string, error) {
	path := UserConfigPath()
	return path, c.SaveTo(path)
}

// SaveTo writes the config as YAML, creating parent directories.
func (c *Config) SaveTo(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config %s: %w", path, err)
	}
	return nil
}

// WriteRequested writes the effective config wherever the -write-config and
// -save-config flags ask. It returns the paths written, none when neither
// flag is set.
func WriteRequested(c *Config) ([]string, error) {
	var written []string
	if path := *flagWriteConfig; path != "" {
		if err := c.SaveTo(path); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	if *flagSaveConfig {
		path, err := c.Save()
		if err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}
