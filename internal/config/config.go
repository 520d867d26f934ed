package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/five82/pantry/internal/docstore"
	"github.com/five82/pantry/internal/inventory"
	"github.com/five82/pantry/internal/logging"
)

// Config is pantry's runtime configuration.
type Config struct {
	PollInterval time.Duration // zero disables background refresh
	Store        Store
	LogPath      string
	LogLevel     string
	RecipeURL    string
}

// Store selects and configures the document store backend.
type Store struct {
	Backend       string
	Collection    string
	Timeout       time.Duration
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
	PostgresDSN   string
	MySQLDSN      string
	HTTPURL       string
	HTTPToken     string
}

const (
	defaultConfigPath  = "~/.config/pantry/config.toml"
	defaultLogPath     = "~/.local/state/pantry/pantry.log"
	defaultLogLevel    = "info"
	defaultPollSeconds = 5
	defaultTimeout     = 5 * time.Second
	defaultRedisAddr   = "127.0.0.1:6379"
	defaultRedisPrefix = "pantry"
	defaultRecipeURL   = "https://www.google.com/search"
)

type rawConfig struct {
	PollSeconds *int `toml:"poll_seconds"`
	Store       struct {
		Backend        string `toml:"backend"`
		Collection     string `toml:"collection"`
		TimeoutSeconds int    `toml:"timeout_seconds"`
		RedisAddr      string `toml:"redis_addr"`
		RedisPassword  string `toml:"redis_password"`
		RedisDB        int    `toml:"redis_db"`
		RedisPrefix    string `toml:"redis_prefix"`
		PostgresDSN    string `toml:"postgres_dsn"`
		MySQLDSN       string `toml:"mysql_dsn"`
		HTTPURL        string `toml:"http_url"`
		HTTPToken      string `toml:"http_token"`
	} `toml:"store"`
	Log struct {
		Path  string `toml:"path"`
		Level string `toml:"level"`
	} `toml:"log"`
	Recipe struct {
		SearchURL string `toml:"search_url"`
	} `toml:"recipe"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		PollInterval: defaultPollSeconds * time.Second,
		Store: Store{
			Backend:     docstore.BackendMemory,
			Collection:  inventory.Collection,
			Timeout:     defaultTimeout,
			RedisAddr:   defaultRedisAddr,
			RedisPrefix: defaultRedisPrefix,
		},
		LogPath:   mustExpand(defaultLogPath),
		LogLevel:  defaultLogLevel,
		RecipeURL: defaultRecipeURL,
	}
}

// Load locates and parses the pantry config, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw rawConfig
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return fromRaw(raw)
}

func fromRaw(raw rawConfig) (Config, error) {
	cfg := Default()

	if raw.PollSeconds != nil {
		if *raw.PollSeconds < 0 {
			return Config{}, fmt.Errorf("poll_seconds must not be negative, got %d", *raw.PollSeconds)
		}
		cfg.PollInterval = time.Duration(*raw.PollSeconds) * time.Second
	}

	s := raw.Store
	if backend := strings.ToLower(strings.TrimSpace(s.Backend)); backend != "" {
		if !docstore.IsBackend(backend) {
			return Config{}, fmt.Errorf("unknown store backend %q (want one of %s)",
				s.Backend, strings.Join(docstore.Backends(), ", "))
		}
		cfg.Store.Backend = backend
	}
	cfg.Store.Collection = orDefault(s.Collection, cfg.Store.Collection)
	if s.TimeoutSeconds > 0 {
		cfg.Store.Timeout = time.Duration(s.TimeoutSeconds) * time.Second
	}
	cfg.Store.RedisAddr = orDefault(s.RedisAddr, cfg.Store.RedisAddr)
	cfg.Store.RedisPassword = s.RedisPassword
	cfg.Store.RedisDB = s.RedisDB
	cfg.Store.RedisPrefix = orDefault(s.RedisPrefix, cfg.Store.RedisPrefix)
	cfg.Store.PostgresDSN = strings.TrimSpace(s.PostgresDSN)
	cfg.Store.MySQLDSN = strings.TrimSpace(s.MySQLDSN)
	cfg.Store.HTTPURL = strings.TrimSpace(s.HTTPURL)
	cfg.Store.HTTPToken = strings.TrimSpace(s.HTTPToken)

	if p := strings.TrimSpace(raw.Log.Path); p != "" {
		cfg.LogPath = mustExpand(p)
	}
	cfg.LogLevel = strings.ToLower(orDefault(raw.Log.Level, cfg.LogLevel))
	if _, err := logging.ParseLevel(cfg.LogLevel); err != nil {
		return Config{}, err
	}
	cfg.RecipeURL = orDefault(raw.Recipe.SearchURL, cfg.RecipeURL)

	return cfg, nil
}

// StoreConfig converts the store section into docstore options.
func (c Config) StoreConfig() docstore.Config {
	return docstore.Config{
		Backend:       c.Store.Backend,
		Timeout:       c.Store.Timeout,
		RedisAddr:     c.Store.RedisAddr,
		RedisPassword: c.Store.RedisPassword,
		RedisDB:       c.Store.RedisDB,
		RedisPrefix:   c.Store.RedisPrefix,
		PostgresDSN:   c.Store.PostgresDSN,
		MySQLDSN:      c.Store.MySQLDSN,
		HTTPURL:       c.Store.HTTPURL,
		HTTPToken:     c.Store.HTTPToken,
	}
}

func orDefault(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
