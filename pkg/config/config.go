// Package config loads blueprint settings from a TOML file.
//
// Every field has a default, so an absent file is not an error when the
// default location is used:
//
//	[log]
//	level = "info"
//
//	[engine]
//	workers = 4
//	tick_interval = "50ms"
//
//	[cache]
//	backend = "file"          # none | file | redis
//	dir = "~/.cache/blueprint"
//	redis_addr = "localhost:6379"
//	ttl = "24h"
//
//	[history]
//	backend = "memory"        # none | memory | mongo
//	capacity = 1000
//	mongo_uri = "mongodb://localhost:27017"
//	database = "blueprint"
//	collection = "passes"
//
//	[server]
//	addr = ":8080"
//	shutdown_timeout = "10s"
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/blueprint/pkg/cache"
	bperrors "github.com/matzehuels/blueprint/pkg/errors"
	"github.com/matzehuels/blueprint/pkg/history"
)

// AppName names the config and cache directories.
const AppName = "blueprint"

// Default values.
const (
	DefaultLogLevel        = "info"
	DefaultTickInterval    = 50 * time.Millisecond
	DefaultCacheTTL        = 24 * time.Hour
	DefaultServerAddr      = ":8080"
	DefaultShutdownTimeout = 10 * time.Second
)

// Config holds all settings.
type Config struct {
	Log     Log     `toml:"log"`
	Engine  Engine  `toml:"engine"`
	Cache   Cache   `toml:"cache"`
	History History `toml:"history"`
	Server  Server  `toml:"server"`
}

type Log struct {
	Level string `toml:"level"`
}

type Engine struct {
	Workers      int      `toml:"workers"` // 0 means one goroutine per ready node
	TickInterval Duration `toml:"tick_interval"`
}

type Cache struct {
	Backend   string   `toml:"backend"`
	Dir       string   `toml:"dir"`
	RedisAddr string   `toml:"redis_addr"`
	TTL       Duration `toml:"ttl"`
}

type History struct {
	Backend    string `toml:"backend"`
	Capacity   int    `toml:"capacity"`
	MongoURI   string `toml:"mongo_uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

type Server struct {
	Addr            string   `toml:"addr"`
	ShutdownTimeout Duration `toml:"shutdown_timeout"`
}

// Duration is a time.Duration written as a Go duration string ("50ms").
type Duration time.Duration

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Default returns a configuration with every default applied.
func Default() *Config {
	c := &Config{}
	c.SetDefaults()
	return c
}

// SetDefaults fills zero fields with their defaults.
func (c *Config) SetDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Engine.TickInterval == 0 {
		c.Engine.TickInterval = Duration(DefaultTickInterval)
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = cache.BackendFile
	}
	if c.Cache.Dir == "" {
		c.Cache.Dir, _ = CacheDir()
	}
	c.Cache.Dir = expandHome(c.Cache.Dir)
	if c.Cache.TTL == 0 {
		c.Cache.TTL = Duration(DefaultCacheTTL)
	}
	if c.History.Backend == "" {
		c.History.Backend = history.BackendMemory
	}
	if c.History.Capacity == 0 {
		c.History.Capacity = history.DefaultCapacity
	}
	if c.History.Database == "" {
		c.History.Database = history.DefaultDatabase
	}
	if c.History.Collection == "" {
		c.History.Collection = history.DefaultCollection
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultServerAddr
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = Duration(DefaultShutdownTimeout)
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return invalid("log.level: %v", err)
	}
	if c.Engine.Workers < 0 {
		return invalid("engine.workers must be >= 0, got %d", c.Engine.Workers)
	}
	if c.Engine.TickInterval < 0 {
		return invalid("engine.tick_interval must be positive")
	}
	switch c.Cache.Backend {
	case cache.BackendNone:
	case cache.BackendFile:
		if c.Cache.Dir == "" {
			return invalid("cache.dir is required for the file backend")
		}
	case cache.BackendRedis:
		if c.Cache.RedisAddr == "" {
			return invalid("cache.redis_addr is required for the redis backend")
		}
	default:
		return invalid("cache.backend %q: want none, file or redis", c.Cache.Backend)
	}
	if c.Cache.TTL < 0 {
		return invalid("cache.ttl must not be negative")
	}
	switch c.History.Backend {
	case history.BackendNone, history.BackendMemory:
	case history.BackendMongo:
		if c.History.MongoURI == "" {
			return invalid("history.mongo_uri is required for the mongo backend")
		}
	default:
		return invalid("history.backend %q: want none, memory or mongo", c.History.Backend)
	}
	if c.History.Capacity < 0 {
		return invalid("history.capacity must not be negative")
	}
	return nil
}

func invalid(format string, args ...any) error {
	return bperrors.New(bperrors.ErrCodeInvalidConfig, format, args...)
}

// Load reads the file at path over the defaults. When path is empty the
// default location is tried and a missing file yields the defaults.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		var err error
		if path, err = DefaultPath(); err != nil {
			return Default(), nil
		}
	}

	c := &Config{}
	md, err := toml.DecodeFile(path, c)
	if errors.Is(err, fs.ErrNotExist) && !explicit {
		return Default(), nil
	}
	if err != nil {
		return nil, bperrors.Wrap(bperrors.ErrCodeInvalidConfig, err, "load %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, invalid("%s: unknown key %s", path, undecoded[0])
	}

	c.SetDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LogLevel returns the parsed log level, falling back to info.
func (c *Config) LogLevel() log.Level {
	l, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return l
}

// CacheOptions converts the [cache] section for [cache.Open].
func (c *Config) CacheOptions() cache.Options {
	return cache.Options{Backend: c.Cache.Backend, Dir: c.Cache.Dir, RedisAddr: c.Cache.RedisAddr}
}

// HistoryOptions converts the [history] section for [history.Open].
func (c *Config) HistoryOptions() history.Options {
	return history.Options{
		Backend:    c.History.Backend,
		Capacity:   c.History.Capacity,
		MongoURI:   c.History.MongoURI,
		Database:   c.History.Database,
		Collection: c.History.Collection,
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/blueprint/config.toml, or the
// platform config directory when XDG_CONFIG_HOME is unset.
func DefaultPath() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName, "config.toml"), nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, AppName, "config.toml"), nil
}

// CacheDir returns the default cache directory, following XDG on Unix and
// the platform cache directory elsewhere.
func CacheDir() (string, error) {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName), nil
	}
	if runtime.GOOS == "windows" {
		dir, err := os.UserCacheDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", AppName), nil
}

func expandHome(path string) string {
	rest, ok := strings.CutPrefix(path, "~/")
	if !ok {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, rest)
}
