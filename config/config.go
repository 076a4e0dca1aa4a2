package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
)

type Config struct {
	DataDir     string    `toml:"DataDir" env:"CELEBMINT_DATA_DIR"`
	Storage     string    `toml:"Storage" env:"CELEBMINT_STORAGE"`
	Environment string    `toml:"Environment" env:"CELEBMINT_ENV"`
	Ledger      Ledger    `toml:"ledger"`
	RPC         RPC       `toml:"rpc"`
	Indexer     Indexer   `toml:"indexer"`
	Logging     Logging   `toml:"logging"`
	Telemetry   Telemetry `toml:"telemetry"`
}

// Load loads the configuration from the given path. A default file is written
// when none exists. Environment variables override file values.
func Load(path string) (*Config, error) {
	var cfg *Config
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg, err = createDefault(path)
		if err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	} else {
		cfg = &Config{}
		meta, err := toml.DecodeFile(path, cfg)
		if err != nil {
			return nil, err
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, 0, len(undecoded))
			for _, key := range undecoded {
				keys = append(keys, key.String())
			}
			return nil, fmt.Errorf("config file %s has unknown keys: %s", path, strings.Join(keys, ", "))
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		DataDir:     "./celebmint-data",
		Storage:     "leveldb",
		Environment: "dev",
		RPC: RPC{
			ListenAddress:     ":8080",
			JWTIssuer:         "celebmint",
			RateLimitPerSec:   20,
			RateLimitBurst:    40,
			ReadHeaderTimeout: 5,
			ReadTimeout:       15,
			WriteTimeout:      15,
			IdleTimeout:       60,
		},
		Indexer: Indexer{
			Driver: "sqlite",
		},
		Logging: Logging{
			Level:      "info",
			MaxSizeMB:  100,
			MaxBackups: 5,
			MaxAgeDays: 28,
		},
	}
}

func (c *Config) applyDefaults() {
	def := defaults()
	if strings.TrimSpace(c.DataDir) == "" {
		c.DataDir = def.DataDir
	}
	if strings.TrimSpace(c.Storage) == "" {
		c.Storage = def.Storage
	}
	if strings.TrimSpace(c.Environment) == "" {
		c.Environment = def.Environment
	}
	if strings.TrimSpace(c.RPC.ListenAddress) == "" {
		c.RPC.ListenAddress = def.RPC.ListenAddress
	}
	if strings.TrimSpace(c.RPC.JWTIssuer) == "" {
		c.RPC.JWTIssuer = def.RPC.JWTIssuer
	}
	if c.RPC.RateLimitPerSec <= 0 {
		c.RPC.RateLimitPerSec = def.RPC.RateLimitPerSec
	}
	if c.RPC.RateLimitBurst <= 0 {
		c.RPC.RateLimitBurst = def.RPC.RateLimitBurst
	}
	if c.RPC.ReadHeaderTimeout <= 0 {
		c.RPC.ReadHeaderTimeout = def.RPC.ReadHeaderTimeout
	}
	if c.RPC.ReadTimeout <= 0 {
		c.RPC.ReadTimeout = def.RPC.ReadTimeout
	}
	if c.RPC.WriteTimeout <= 0 {
		c.RPC.WriteTimeout = def.RPC.WriteTimeout
	}
	if c.RPC.IdleTimeout <= 0 {
		c.RPC.IdleTimeout = def.RPC.IdleTimeout
	}
	if strings.TrimSpace(c.Logging.Level) == "" {
		c.Logging.Level = def.Logging.Level
	}
	if c.Indexer.Driver == "sqlite" && strings.TrimSpace(c.Indexer.DSN) == "" {
		c.Indexer.DSN = filepath.Join(c.DataDir, "events.db")
	}
}

// createDefault creates and saves a default configuration file. Ledger
// accounts and the JWT secret are left for the operator to fill in.
func createDefault(path string) (*Config, error) {
	cfg := defaults()
	if err := persist(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func persist(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}
