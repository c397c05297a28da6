package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Config maps to the config.toml file for the importer
type Config struct {
	DatabasePath           string            `toml:"DatabasePath"`
	ReportEndpoint         string            `toml:"ReportEndpoint"`
	ReportTimeoutInSeconds uint32            `toml:"ReportTimeoutInSeconds"`
	JSONRowsPath           string            `toml:"JSONRowsPath"`
	HeaderAliases          map[string]string `toml:"HeaderAliases"`
}

// LoadConfig parses a TOML file into the Config struct
func LoadConfig(filepath string) (*Config, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", filepath, err)
	}

	var cfg Config
	err = toml.Unmarshal(data, &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	return &cfg, nil
}
