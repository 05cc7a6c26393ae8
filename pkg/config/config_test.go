package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/blueprint/pkg/errors"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	c := Default()
	if err := c.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	if c.Engine.TickInterval.Std() != DefaultTickInterval {
		t.Errorf("tick_interval = %v, want %v", c.Engine.TickInterval.Std(), DefaultTickInterval)
	}
	if c.Cache.Backend != "file" || c.History.Backend != "memory" {
		t.Errorf("backends = %s/%s, want file/memory", c.Cache.Backend, c.History.Backend)
	}
	if c.LogLevel() != log.InfoLevel {
		t.Errorf("LogLevel() = %v, want info", c.LogLevel())
	}
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
[log]
level = "debug"

[engine]
workers = 3
tick_interval = "20ms"

[cache]
backend = "redis"
redis_addr = "cache:6379"
ttl = "1h"

[history]
backend = "mongo"
mongo_uri = "mongodb://db:27017"
`)

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.LogLevel() != log.DebugLevel {
		t.Errorf("level = %v, want debug", c.LogLevel())
	}
	if c.Engine.Workers != 3 || c.Engine.TickInterval.Std() != 20*time.Millisecond {
		t.Errorf("engine = %+v", c.Engine)
	}
	opts := c.CacheOptions()
	if opts.Backend != "redis" || opts.RedisAddr != "cache:6379" || c.Cache.TTL.Std() != time.Hour {
		t.Errorf("cache = %+v", c.Cache)
	}
	h := c.HistoryOptions()
	if h.Backend != "mongo" || h.Database != "blueprint" || h.Collection != "passes" {
		t.Errorf("history = %+v", h)
	}
	if c.Server.Addr != DefaultServerAddr {
		t.Errorf("server.addr = %q, want default", c.Server.Addr)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"Syntax", "[engine\nworkers = 1", "load"},
		{"UnknownKey", "[engine]\nthreads = 4", "unknown key engine.threads"},
		{"BadDuration", "[engine]\ntick_interval = \"soon\"", "load"},
		{"BadLevel", "[log]\nlevel = \"loud\"", "log.level"},
		{"NegativeWorkers", "[engine]\nworkers = -1", "engine.workers"},
		{"BadCacheBackend", "[cache]\nbackend = \"memcached\"", "cache.backend"},
		{"RedisWithoutAddr", "[cache]\nbackend = \"redis\"", "redis_addr"},
		{"MongoWithoutURI", "[history]\nbackend = \"mongo\"", "mongo_uri"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("error = %v, want INVALID_CONFIG", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadMissing(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	c, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") with no file = %v", err)
	}
	if c.Server.Addr != DefaultServerAddr {
		t.Errorf("defaults not applied: %+v", c.Server)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Error("explicit missing path should fail")
	}
}

func TestLoadDefaultPath(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	dir := filepath.Join(xdg, AppName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte("[server]\naddr = \":9000\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Server.Addr != ":9000" {
		t.Errorf("server.addr = %q, want :9000", c.Server.Addr)
	}
}

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")
	dir, err := CacheDir()
	if err != nil {
		t.Fatalf("CacheDir() error: %v", err)
	}
	if !strings.HasSuffix(dir, AppName) {
		t.Errorf("CacheDir() = %q, should end with %q", dir, AppName)
	}

	xdg := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", xdg)
	if dir, _ := CacheDir(); dir != filepath.Join(xdg, AppName) {
		t.Errorf("CacheDir() = %q, want under XDG_CACHE_HOME", dir)
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	if got := expandHome("~/x"); got != filepath.Join(home, "x") {
		t.Errorf("expandHome(~/x) = %q", got)
	}
	if got := expandHome("/abs"); got != "/abs" {
		t.Errorf("expandHome(/abs) = %q", got)
	}
}
