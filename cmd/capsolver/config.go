package main

import (
	"fmt"
	"os"

	capsolver "github.com/anatolykoptev/go-capsolver"
	"gopkg.in/yaml.v3"
)

// fileConfig is the YAML config file layout.
type fileConfig struct {
	Client capsolver.ClientConfig `yaml:"client"`
	Log    struct {
		Level  string `yaml:"level"`  // debug, info, warn, error
		Format string `yaml:"format"` // json, text
	} `yaml:"log"`
}

// loadConfig reads a YAML config file. An empty path yields an empty config.
func loadConfig(path string) (*fileConfig, error) {
	cfg := &fileConfig{}
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
