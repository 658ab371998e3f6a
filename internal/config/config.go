package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

const (
	EngineMemory   = "memory"
	EngineRedis    = "redis"
	EnginePostgres = "postgres"
	EngineSQLite   = "sqlite"

	SourceIPFS     = "ipfs"
	SourcePostgres = "postgres"
	SourceDemo     = "demo"
)

type Config struct {
	Server struct {
		Port string `yaml:"port" toml:"port"`
	} `yaml:"server" toml:"server"`
	Store struct {
		Engine string `yaml:"engine" toml:"engine"`
	} `yaml:"store" toml:"store"`
	Redis struct {
		Addr     string `yaml:"addr" toml:"addr"`
		Password string `yaml:"password" toml:"password"`
		DB       int    `yaml:"db" toml:"db"`
		TTL      string `yaml:"ttl" toml:"ttl"`
	} `yaml:"redis" toml:"redis"`
	Postgres struct {
		URL string `yaml:"url" toml:"url"`
	} `yaml:"postgres" toml:"postgres"`
	SQLite struct {
		Path string `yaml:"path" toml:"path"`
	} `yaml:"sqlite" toml:"sqlite"`
	Quiz struct {
		TotalBatches int    `yaml:"total_batches" toml:"total_batches"`
		Source       string `yaml:"source" toml:"source"`
		TTL          string `yaml:"ttl" toml:"ttl"`
	} `yaml:"quiz" toml:"quiz"`
	IPFS struct {
		Gateways []string `yaml:"gateways" toml:"gateways"`
		Root     string   `yaml:"root" toml:"root"`
		Timeout  string   `yaml:"timeout" toml:"timeout"`
	} `yaml:"ipfs" toml:"ipfs"`
	Ledger struct {
		RPCURL   string `yaml:"rpc_url" toml:"rpc_url"`
		Contract string `yaml:"contract" toml:"contract"`
		ChainID  uint64 `yaml:"chain_id" toml:"chain_id"`
	} `yaml:"ledger" toml:"ledger"`
	Wallet struct {
		Address string `yaml:"address" toml:"address"`
	} `yaml:"wallet" toml:"wallet"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	var cfg Config
	cfg.applyDefaults()
	return cfg
}

// Load reads YAML config from path, or TOML when the path ends in .toml.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return cfg, fmt.Errorf("decode toml config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("decode yaml config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadOrDefault is Load, except that a missing file yields Default().
func LoadOrDefault(path string) (Config, error) {
	cfg, err := Load(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	return cfg, err
}

func (c *Config) applyDefaults() {
	if c.Store.Engine == "" {
		c.Store.Engine = EngineMemory
	}
	if c.Quiz.TotalBatches <= 0 {
		c.Quiz.TotalBatches = 10
	}
	if c.Quiz.Source == "" {
		c.Quiz.Source = SourceIPFS
	}
	if c.SQLite.Path == "" {
		c.SQLite.Path = filepath.Join("data", "progress.db")
	}
}

// Validate checks settings that would otherwise fail late.
func (c Config) Validate() error {
	switch c.Store.Engine {
	case EngineMemory, EngineSQLite:
	case EngineRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("store engine redis requires redis.addr")
		}
	case EnginePostgres:
		if c.Postgres.URL == "" {
			return fmt.Errorf("store engine postgres requires postgres.url")
		}
	default:
		return fmt.Errorf("unknown store engine %q", c.Store.Engine)
	}
	switch c.Quiz.Source {
	case SourceIPFS, SourceDemo:
	case SourcePostgres:
		if c.Postgres.URL == "" {
			return fmt.Errorf("quiz source postgres requires postgres.url")
		}
	default:
		return fmt.Errorf("unknown quiz source %q", c.Quiz.Source)
	}
	if c.Quiz.TotalBatches > 255 {
		return fmt.Errorf("quiz.total_batches %d exceeds 255", c.Quiz.TotalBatches)
	}
	return nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
