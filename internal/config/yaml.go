package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"
)

// LoadYAMLConfig load config from filename in YAML format
func LoadYAMLConfig(filename string, cfg interface{}) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("ReadFile: %w", err)
	}
	err = yaml.Unmarshal(data, cfg)
	return err
}

// InitConfig layers the YAML file at configPath, then environment variables,
// over DefaultConfig. A missing file is not an error.
func InitConfig(configPath string) (*Config, error) {
	conf := DefaultConfig()

	if configPath != "" {
		err := LoadYAMLConfig(configPath, conf)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	if err := env.Parse(conf); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := validator.New().Struct(conf); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return conf, nil
}
