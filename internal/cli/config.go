package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/eleven-am/tasklist/internal/logger"
	"github.com/eleven-am/tasklist/internal/models"
)

const (
	configEnv      = "TASKLIST_CONFIG"
	databaseURLEnv = "TASKLIST_DATABASE_URL"
)

var configLocations = []string{"tasklist.yaml", "tasklist.yml", ".tasklist.yaml"}

// Config represents the tasklist.yaml configuration structure
type Config struct {
	Database struct {
		URL                string `yaml:"url"`
		MaxConnections     int    `yaml:"max_connections"`
		MaxIdleConnections int    `yaml:"max_idle_connections"`
	} `yaml:"database"`

	Password struct {
		ScryptN int `yaml:"scrypt_n"`
		ScryptR int `yaml:"scrypt_r"`
		ScryptP int `yaml:"scrypt_p"`
	} `yaml:"password"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// LoadConfig reads path, or the first config file found in the working directory when
// path is empty. It returns nil without error when no file exists. TASKLIST_DATABASE_URL
// replaces the file's database URL.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = GetConfigPath()
		if path == "" {
			return nil, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if config.Database.MaxConnections == 0 {
		config.Database.MaxConnections = 25
	}
	if config.Database.MaxIdleConnections == 0 {
		config.Database.MaxIdleConnections = 5
	}
	if config.Log.Level == "" {
		config.Log.Level = logger.LevelWarn.String()
	}
	if url := os.Getenv(databaseURLEnv); url != "" {
		config.Database.URL = url
	}

	logger.Config().Debug("config loaded", "path", path)
	return &config, nil
}

func GetConfigPath() string {
	if path := os.Getenv(configEnv); path != "" {
		return path
	}

	for _, loc := range configLocations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

func SaveConfig(config *Config, path string) error {
	if path == "" {
		path = configLocations[0]
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// HashParams returns the scrypt cost settings, falling back to the defaults for
// anything left unset
func (c *Config) HashParams() models.HashParams {
	params := models.DefaultHashParams
	if c == nil {
		return params
	}
	if c.Password.ScryptN > 0 {
		params.N = c.Password.ScryptN
	}
	if c.Password.ScryptR > 0 {
		params.R = c.Password.ScryptR
	}
	if c.Password.ScryptP > 0 {
		params.P = c.Password.ScryptP
	}
	return params
}
