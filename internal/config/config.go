package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/pelletier/go-toml/v2"
)

type ServerConfig struct {
	Port              string `toml:"port"`
	Mode              string `toml:"mode"` // gin mode: debug, release, test
	MaxSessions       int    `toml:"max_sessions"`
	SessionTTLSeconds int    `toml:"session_ttl_seconds"`
}

type StoreConfig struct {
	Backend             string `toml:"backend"` // memgraph or sqlite
	QueryTimeoutSeconds int    `toml:"query_timeout_seconds"`
}

type MemgraphConfig struct {
	URI      string `toml:"uri"`
	User     string `toml:"user"`
	Password string `toml:"password"`
}

type SQLiteConfig struct {
	Path string `toml:"path"`
}

type SearchConfig struct {
	DefaultDepth      int `toml:"default_depth"`
	MaxDepth          int `toml:"max_depth"`
	ContextLines      int `toml:"context_lines"`
	FigurativeSongCap int `toml:"figurative_song_cap"`
}

type BreakerConfig struct {
	Enabled          bool    `toml:"enabled"`
	MaxRequests      uint32  `toml:"max_requests"`
	Interval         int     `toml:"interval"` // seconds
	Timeout          int     `toml:"timeout"`  // seconds
	ReadyToTripRatio float64 `toml:"ready_to_trip_ratio"`
}

type LLMConfig struct {
	Provider string `toml:"provider"`
	Model    string `toml:"model"`
	APIKey   string `toml:"api_key"`
	BaseURL  string `toml:"base_url"`
}

type LogConfig struct {
	Level       string `toml:"level"`
	Development bool   `toml:"development"`
}

type Config struct {
	Server   ServerConfig   `toml:"server"`
	Store    StoreConfig    `toml:"store"`
	Memgraph MemgraphConfig `toml:"memgraph"`
	SQLite   SQLiteConfig   `toml:"sqlite"`
	Search   SearchConfig   `toml:"search"`
	Breaker  BreakerConfig  `toml:"breaker"`
	LLM      LLMConfig      `toml:"llm"`
	Log      LogConfig      `toml:"log"`
}

// Default returns a config that runs against a local sqlite file.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: "8080", Mode: "release", MaxSessions: 10000, SessionTTLSeconds: 1800},
		Store:  StoreConfig{Backend: "sqlite", QueryTimeoutSeconds: 10},
		Memgraph: MemgraphConfig{
			URI: "bolt://localhost:7687",
		},
		SQLite: SQLiteConfig{Path: "rhymenet.db"},
		Search: SearchConfig{
			DefaultDepth:      3,
			MaxDepth:          6,
			ContextLines:      4,
			FigurativeSongCap: 500,
		},
		Breaker: BreakerConfig{
			Enabled:          true,
			MaxRequests:      1,
			Interval:         60,
			Timeout:          30,
			ReadyToTripRatio: 0.6,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads a TOML file on top of Default, so omitted keys keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultPath is used when CONFIG_PATH is unset.
const DefaultPath = "config/config.toml"

// Resolve loads path, or CONFIG_PATH, or DefaultPath, in that order. A
// missing file falls back to Default. Environment overrides are applied last.
func Resolve(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = DefaultPath
	}

	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		cfg, err = Default(), nil
	}
	if err != nil {
		return nil, err
	}

	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides file values with environment variables when present.
func (c *Config) ApplyEnv() {
	setString(&c.Server.Port, "PORT")
	setString(&c.Store.Backend, "STORE_BACKEND")
	setString(&c.Memgraph.URI, "MEMGRAPH_URI")
	setString(&c.Memgraph.User, "MEMGRAPH_USER")
	setString(&c.Memgraph.Password, "MEMGRAPH_PASSWORD")
	setString(&c.SQLite.Path, "SQLITE_PATH")
	setString(&c.LLM.Provider, "LLM_PROVIDER")
	setString(&c.LLM.Model, "LLM_MODEL")
	setString(&c.LLM.APIKey, "LLM_API_KEY")
	setString(&c.LLM.BaseURL, "LLM_BASE_URL")
	setString(&c.Log.Level, "LOG_LEVEL")

	if v := os.Getenv("QUERY_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Store.QueryTimeoutSeconds = n
		}
	}
}

func (c *Config) Validate() error {
	switch c.Store.Backend {
	case "memgraph", "sqlite":
	default:
		return fmt.Errorf("unsupported store backend: %q", c.Store.Backend)
	}
	if c.Server.MaxSessions < 1 {
		return fmt.Errorf("server.max_sessions must be at least 1, got %d", c.Server.MaxSessions)
	}
	if c.Search.DefaultDepth < 1 {
		return fmt.Errorf("search.default_depth must be at least 1, got %d", c.Search.DefaultDepth)
	}
	if c.Search.MaxDepth < c.Search.DefaultDepth {
		return fmt.Errorf("search.max_depth (%d) is below search.default_depth (%d)", c.Search.MaxDepth, c.Search.DefaultDepth)
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
