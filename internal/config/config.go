package config

import (
	"fmt"
	"os"

	"github.com/subosito/gotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the application's configuration.
type Config struct {
	Database struct {
		URL string `yaml:"url"`
	} `yaml:"database"`
	Oracle struct {
		URL            string `yaml:"url"`
		TimeoutSeconds int64  `yaml:"timeout_seconds"`
	} `yaml:"oracle"`
	Batch struct {
		TextColumn string `yaml:"text_column"`
	} `yaml:"batch"`
	Stats struct {
		CacheTTLSeconds int64 `yaml:"cache_ttl_seconds"`
	} `yaml:"stats"`
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
}

// LoadConfig reads configuration from the specified YAML file. A .env
// file is loaded first if present, and a handful of environment
// variables override the file values so deployments can retarget the
// oracle and database without editing the config.
func LoadConfig(configPath string) (*Config, error) {
	_ = gotenv.Load() // optional; OS environment wins when absent

	config := &Config{}

	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(config); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	config.applyDefaults()
	config.applyEnvOverrides()

	return config, nil
}

func (c *Config) applyDefaults() {
	if c.Oracle.URL == "" {
		c.Oracle.URL = "http://localhost:5000/predict"
	}
	if c.Oracle.TimeoutSeconds <= 0 {
		c.Oracle.TimeoutSeconds = 10
	}
	if c.Batch.TextColumn == "" {
		c.Batch.TextColumn = "review_text"
	}
	if c.Stats.CacheTTLSeconds <= 0 {
		c.Stats.CacheTTLSeconds = 30
	}
	if c.Server.Port == "" {
		c.Server.Port = ":8080"
	}
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Database.URL = v
	}
	if v := os.Getenv("ORACLE_URL"); v != "" {
		c.Oracle.URL = v
	}
	if v := os.Getenv("SERVER_PORT"); v != "" {
		c.Server.Port = v
	}
}
