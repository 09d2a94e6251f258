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
)

// Config is the resolved shulpick configuration.
type Config struct {
	APIBase   string
	APIToken  string
	Timeout   time.Duration
	Endpoints Endpoints
	Search    Search
	LogFile   string
	LogLevel  string
}

// Endpoints are backend paths relative to APIBase.
type Endpoints struct {
	Members string
	Tiers   string
	Global  string
	Health  string
}

// Search tunes the search-select fields.
type Search struct {
	MinQueryLen     int
	Debounce        time.Duration
	BlurGrace       time.Duration
	Limit           int
	HighlightFirst  bool
	SoleMatchCommit bool
}

const (
	defaultConfigPath = "~/.config/shulpick/config.toml"
	defaultLogFile    = "~/.local/state/shulpick/shulpick.log"
	defaultAPIBase    = "http://127.0.0.1:8080"
	defaultTimeout    = 10 * time.Second
	defaultLogLevel   = "info"

	envAPIBase  = "SHULPICK_API_BASE"
	envAPIToken = "SHULPICK_API_TOKEN"
)

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		APIBase: defaultAPIBase,
		Timeout: defaultTimeout,
		Endpoints: Endpoints{
			Members: "/api/members/search",
			Tiers:   "/api/tiers/search",
			Global:  "/api/search",
			Health:  "/health",
		},
		Search: Search{
			MinQueryLen:     2,
			Debounce:        300 * time.Millisecond,
			BlurGrace:       200 * time.Millisecond,
			Limit:           20,
			HighlightFirst:  true,
			SoleMatchCommit: true,
		},
		LogFile:  mustExpand(defaultLogFile),
		LogLevel: defaultLogLevel,
	}
}

type rawConfig struct {
	APIBase  string `toml:"api_base"`
	APIToken string `toml:"api_token"`
	Timeout  string `toml:"timeout"`
	LogFile  string `toml:"log_file"`
	LogLevel string `toml:"log_level"`

	Endpoints struct {
		Members string `toml:"members"`
		Tiers   string `toml:"tiers"`
		Global  string `toml:"global"`
		Health  string `toml:"health"`
	} `toml:"endpoints"`

	Search struct {
		MinQueryLength  *int   `toml:"min_query_length"`
		Debounce        string `toml:"debounce"`
		BlurGrace       string `toml:"blur_grace"`
		Limit           *int   `toml:"limit"`
		HighlightFirst  *bool  `toml:"highlight_first"`
		SoleMatchCommit *bool  `toml:"sole_match_commit"`
	} `toml:"search"`
}

// Load reads the config at path (or the default location), falling back to
// defaults when the file is missing. SHULPICK_API_BASE and SHULPICK_API_TOKEN
// override the file.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			applyEnv(&cfg)
			return cfg, nil
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
	if err := merge(&cfg, raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	applyEnv(&cfg)
	return cfg, nil
}

func merge(cfg *Config, raw rawConfig) error {
	setString(&cfg.APIBase, raw.APIBase)
	setString(&cfg.APIToken, raw.APIToken)
	setString(&cfg.LogLevel, raw.LogLevel)
	if v := strings.TrimSpace(raw.LogFile); v != "" {
		cfg.LogFile = mustExpand(v)
	}
	if err := setDuration(&cfg.Timeout, "timeout", raw.Timeout); err != nil {
		return err
	}

	setString(&cfg.Endpoints.Members, raw.Endpoints.Members)
	setString(&cfg.Endpoints.Tiers, raw.Endpoints.Tiers)
	setString(&cfg.Endpoints.Global, raw.Endpoints.Global)
	setString(&cfg.Endpoints.Health, raw.Endpoints.Health)

	s := raw.Search
	if s.MinQueryLength != nil {
		if *s.MinQueryLength < 1 {
			return fmt.Errorf("search.min_query_length must be at least 1, got %d", *s.MinQueryLength)
		}
		cfg.Search.MinQueryLen = *s.MinQueryLength
	}
	if s.Limit != nil {
		if *s.Limit < 1 {
			return fmt.Errorf("search.limit must be at least 1, got %d", *s.Limit)
		}
		cfg.Search.Limit = *s.Limit
	}
	if err := setDuration(&cfg.Search.Debounce, "search.debounce", s.Debounce); err != nil {
		return err
	}
	if err := setDuration(&cfg.Search.BlurGrace, "search.blur_grace", s.BlurGrace); err != nil {
		return err
	}
	if s.HighlightFirst != nil {
		cfg.Search.HighlightFirst = *s.HighlightFirst
	}
	if s.SoleMatchCommit != nil {
		cfg.Search.SoleMatchCommit = *s.SoleMatchCommit
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v, ok := os.LookupEnv(envAPIBase); ok {
		setString(&cfg.APIBase, v)
	}
	if v, ok := os.LookupEnv(envAPIToken); ok {
		setString(&cfg.APIToken, v)
	}
}

func setString(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key, v string) error {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	if d <= 0 {
		return fmt.Errorf("%s must be positive, got %s", key, v)
	}
	*dst = d
	return nil
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return mustExpand(defaultConfigPath)
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
