// Package config loads ScrappyMart settings.
//
// Values are resolved in this order, later sources winning:
//
//  1. built-in defaults
//  2. an optional TOML file (default ~/.config/scrappymart/config.toml)
//  3. a .env file in the working directory, if present
//  4. SCRAPPYMART_* environment variables
//
// A missing config file is not an error.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

const (
	DefaultPath = "~/.config/scrappymart/config.toml"

	defaultPort            = "8080"
	defaultDBPath          = "scrappymart.db"
	defaultLogLevel        = "info"
	defaultLogFormat       = "text"
	defaultBaseURL         = "http://localhost:8080/"
	defaultPresetURL       = "http://localhost:8080/data/presets/"
	defaultPresetCacheSize = 64
	defaultPresetCacheTTL  = 10 * time.Minute
)

type Config struct {
	Port      string
	DBPath    string
	LogLevel  string
	LogFormat string
	// BaseURL is the page share links open; the payload goes in its fragment.
	BaseURL         string
	PresetURL       string
	PresetCacheSize int
	PresetCacheTTL  time.Duration
	// ImportLink is a share link taken in at startup.
	ImportLink string
}

type fileConfig struct {
	Port            string `toml:"port"`
	DBPath          string `toml:"db_path"`
	LogLevel        string `toml:"log_level"`
	LogFormat       string `toml:"log_format"`
	BaseURL         string `toml:"base_url"`
	PresetURL       string `toml:"preset_url"`
	PresetCacheSize int    `toml:"preset_cache_size"`
	PresetCacheTTL  string `toml:"preset_cache_ttl"`
}

func defaults() Config {
	return Config{
		Port:            defaultPort,
		DBPath:          defaultDBPath,
		LogLevel:        defaultLogLevel,
		LogFormat:       defaultLogFormat,
		BaseURL:         defaultBaseURL,
		PresetURL:       defaultPresetURL,
		PresetCacheSize: defaultPresetCacheSize,
		PresetCacheTTL:  defaultPresetCacheTTL,
	}
}

// Load resolves the configuration. An empty path means DefaultPath.
func Load(path string) (Config, error) {
	cfg := defaults()

	if err := applyFile(&cfg, path); err != nil {
		return Config{}, err
	}

	// Ignore error if .env is absent; real environment variables still apply.
	_ = godotenv.Load()

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyFile(cfg *Config, path string) error {
	if strings.TrimSpace(path) == "" {
		path = DefaultPath
	}
	resolved, err := expandPath(path)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}

	var raw fileConfig
	if err := toml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	setString(&cfg.Port, raw.Port)
	setString(&cfg.DBPath, raw.DBPath)
	setString(&cfg.LogLevel, raw.LogLevel)
	setString(&cfg.LogFormat, raw.LogFormat)
	setString(&cfg.BaseURL, raw.BaseURL)
	setString(&cfg.PresetURL, raw.PresetURL)
	if raw.PresetCacheSize > 0 {
		cfg.PresetCacheSize = raw.PresetCacheSize
	}
	if raw.PresetCacheTTL != "" {
		ttl, err := time.ParseDuration(raw.PresetCacheTTL)
		if err != nil {
			return fmt.Errorf("invalid preset_cache_ttl: %w", err)
		}
		cfg.PresetCacheTTL = ttl
	}
	if cfg.DBPath != ":memory:" {
		cfg.DBPath = mustExpand(cfg.DBPath)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.Port, os.Getenv("SCRAPPYMART_PORT"))
	setString(&cfg.DBPath, os.Getenv("SCRAPPYMART_DB_PATH"))
	setString(&cfg.LogLevel, os.Getenv("SCRAPPYMART_LOG_LEVEL"))
	setString(&cfg.LogFormat, os.Getenv("SCRAPPYMART_LOG_FORMAT"))
	setString(&cfg.BaseURL, os.Getenv("SCRAPPYMART_BASE_URL"))
	setString(&cfg.PresetURL, os.Getenv("SCRAPPYMART_PRESET_URL"))
	setString(&cfg.ImportLink, os.Getenv("SCRAPPYMART_IMPORT_LINK"))

	if v := strings.TrimSpace(os.Getenv("SCRAPPYMART_PRESET_CACHE_SIZE")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid SCRAPPYMART_PRESET_CACHE_SIZE %q", v)
		}
		cfg.PresetCacheSize = n
	}
	if v := strings.TrimSpace(os.Getenv("SCRAPPYMART_PRESET_CACHE_TTL")); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid SCRAPPYMART_PRESET_CACHE_TTL: %w", err)
		}
		cfg.PresetCacheTTL = ttl
	}
	return nil
}

func setString(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
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
