/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package config loads backend and namespace settings for kvmodels
// tools. Settings come from an optional YAML file, overridden by
// environment variables; a .env file in the working directory is folded
// into the environment first.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Backend names accepted in Config.Backend.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendDynamoDB = "dynamodb"
)

// Config holds everything needed to construct a store and a manager.
type Config struct {
	// Backend selects the store implementation: memory, redis or
	// dynamodb.
	Backend string `yaml:"backend"`

	// Prefix is the key namespace for all records.
	Prefix string `yaml:"prefix"`

	// Strict turns null violations into hard errors.
	Strict bool `yaml:"strict"`

	// Redis settings.
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`

	// DynamoDB settings.
	Table  string `yaml:"table"`
	Region string `yaml:"region"`
}

func defaults() Config {
	return Config{
		Backend: BackendMemory,
		Prefix:  "kvmodels",
		Addr:    "localhost:6379",
		Region:  "us-east-1",
	}
}

// Load reads the YAML file at path if it exists, then applies
// environment overrides. An empty path skips the file step entirely.
func Load(path string) (Config, error) {
	godotenv.Load()

	cfg := defaults()
	if path != "" {
		if st, err := os.Stat(path); err == nil && !st.IsDir() {
			b, err := os.ReadFile(path)
			if err != nil {
				return cfg, fmt.Errorf("read config %s: %w", path, err)
			}
			if err := yaml.Unmarshal(b, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	cfg.Backend = getenv("KVMODELS_BACKEND", cfg.Backend)
	cfg.Prefix = getenv("KVMODELS_PREFIX", cfg.Prefix)
	cfg.Strict = getenvBool("KVMODELS_STRICT", cfg.Strict)
	cfg.Addr = getenv("KVMODELS_REDIS_ADDR", cfg.Addr)
	cfg.Password = getenv("KVMODELS_REDIS_PASSWORD", cfg.Password)
	cfg.DB = getenvInt("KVMODELS_REDIS_DB", cfg.DB)
	cfg.Table = getenv("KVMODELS_DDB_TABLE", cfg.Table)
	cfg.Region = getenv("KVMODELS_DDB_REGION", cfg.Region)

	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Backend {
	case BackendMemory, BackendRedis:
	case BackendDynamoDB:
		if c.Table == "" {
			return fmt.Errorf("dynamodb backend requires a table name")
		}
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	return nil
}

func getenv(k, fallback string) string {
	if v, ok := os.LookupEnv(k); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func getenvBool(k string, fallback bool) bool {
	if v, ok := os.LookupEnv(k); ok {
		switch strings.TrimSpace(strings.ToLower(v)) {
		case "1", "true", "yes":
			return true
		case "0", "false", "no":
			return false
		}
	}
	return fallback
}

func getenvInt(k string, fallback int) int {
	if v, ok := os.LookupEnv(k); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return fallback
}
