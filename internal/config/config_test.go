package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "config.yaml", `
server:
  port: "9090"
store:
  engine: redis
redis:
  addr: localhost:6379
  ttl: 5m
ipfs:
  gateways: ["http://a", "http://b"]
  timeout: 3s
ledger:
  contract: "0x55e2d9acad8def981ff01d00675d2c41017b7aa1"
  chain_id: 1135
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" || cfg.Store.Engine != EngineRedis || cfg.Redis.Addr != "localhost:6379" {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if len(cfg.IPFS.Gateways) != 2 || cfg.Ledger.ChainID != 1135 {
		t.Fatalf("unexpected ipfs/ledger config %+v %+v", cfg.IPFS, cfg.Ledger)
	}
	if cfg.Quiz.TotalBatches != 10 || cfg.Quiz.Source != SourceIPFS {
		t.Fatalf("defaults not applied: %+v", cfg.Quiz)
	}
	if got := TTLDuration(cfg.Redis.TTL, time.Minute); got != 5*time.Minute {
		t.Fatalf("expected 5m, got %s", got)
	}
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, "config.toml", `
[store]
engine = "sqlite"

[sqlite]
path = "/tmp/quiz.db"

[quiz]
total_batches = 4
source = "demo"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Store.Engine != EngineSQLite || cfg.SQLite.Path != "/tmp/quiz.db" {
		t.Fatalf("unexpected store config %+v %+v", cfg.Store, cfg.SQLite)
	}
	if cfg.Quiz.TotalBatches != 4 || cfg.Quiz.Source != SourceDemo {
		t.Fatalf("unexpected quiz config %+v", cfg.Quiz)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := map[string]string{
		"unknown engine":       "store:\n  engine: mongo\n",
		"redis without addr":   "store:\n  engine: redis\n",
		"postgres without url": "quiz:\n  source: postgres\n",
		"unknown source":       "quiz:\n  source: ftp\n",
		"too many batches":     "quiz:\n  total_batches: 300\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(writeFile(t, "config.yaml", body)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Store.Engine != EngineMemory || cfg.Quiz.TotalBatches != 10 {
		t.Fatalf("expected defaults, got %+v", cfg)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("Load must report a missing file")
	}
}

func TestTTLDuration(t *testing.T) {
	if got := TTLDuration("", time.Second); got != time.Second {
		t.Fatalf("expected fallback, got %s", got)
	}
	if got := TTLDuration("bogus", time.Second); got != time.Second {
		t.Fatalf("expected fallback for bad input, got %s", got)
	}
	if got := TTLDuration("90s", time.Second); got != 90*time.Second {
		t.Fatalf("expected 90s, got %s", got)
	}
}
