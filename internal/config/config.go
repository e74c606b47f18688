package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type Server struct {
	Port              string `json:"port" yaml:"port"`
	RequestTimeoutSec int    `json:"request_timeout_sec" yaml:"request_timeout_sec"`
	LogLevel          string `json:"log_level" yaml:"log_level"`
	LogFormat         string `json:"log_format" yaml:"log_format"`
}

type Evaluate struct {
	DefaultThreshold float64  `json:"default_threshold" yaml:"default_threshold"`
	PathPrefixes     []string `json:"path_prefixes" yaml:"path_prefixes"`
}

type Reference struct {
	CSVPath string `json:"csv_path" yaml:"csv_path"`
}

type Sources struct {
	TimeoutSec int    `json:"timeout_sec" yaml:"timeout_sec"`
	UserAgent  string `json:"user_agent" yaml:"user_agent"`
}

// Source configures one live price endpoint.
type Source struct {
	// Provider selects the client: "endpoint" (JSON {price}) or "yahoo".
	Provider              string `json:"provider" yaml:"provider"`
	Endpoint              string `json:"endpoint" yaml:"endpoint"`
	MaxRequestsPerMinute  int    `json:"max_requests_per_minute" yaml:"max_requests_per_minute"`
	MinRequestIntervalSec int    `json:"min_request_interval_sec" yaml:"min_request_interval_sec"`
	Burst                 int    `json:"burst" yaml:"burst"`
}

type Yahoo struct {
	Endpoint  string `json:"endpoint" yaml:"endpoint"`
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

type Config struct {
	Server    Server    `json:"server" yaml:"server"`
	Evaluate  Evaluate  `json:"evaluate" yaml:"evaluate"`
	Reference Reference `json:"reference" yaml:"reference"`
	Sources   Sources   `json:"sources" yaml:"sources"`
	Game      Source    `json:"game" yaml:"game"`
	Real      Source    `json:"real" yaml:"real"`
	Yahoo     Yahoo     `json:"yahoo" yaml:"yahoo"`
}

const (
	ProviderEndpoint = "endpoint"
	ProviderYahoo    = "yahoo"
)

func Default() Config {
	return Config{
		Server: Server{Port: "8080", RequestTimeoutSec: 15, LogLevel: "info", LogFormat: "json"},
		Evaluate: Evaluate{
			DefaultThreshold: 5,
			PathPrefixes:     []string{"/.netlify/functions/evaluate", "/evaluate"},
		},
		Reference: Reference{CSVPath: "data.csv"},
		Sources:   Sources{TimeoutSec: 5, UserAgent: "price-signal/1.0"},
		Game: Source{
			Provider: ProviderEndpoint,
			Endpoint: "https://virtualstockmarketgame.com/getstock/{ticker}",
		},
		Real: Source{
			Provider: ProviderEndpoint,
			Endpoint: "https://test--lokiapi.netlify.app/.netlify/functions/stock/{ticker}",
		},
		Yahoo: Yahoo{Endpoint: "https://query1.finance.yahoo.com/v8/finance/chart/{ticker}?interval=1d"},
	}
}

// Load reads a JSON or YAML (by extension) config from path. If path is empty
// and ./config.json does not exist, or the file does not exist, it returns
// defaults. Environment variables override select fields.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		if _, err := os.Stat("config.json"); err == nil {
			path = "config.json"
		}
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err == nil {
			if err := decode(path, b, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config: %w", err)
			}
		}
	}
	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func decode(path string, b []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(b, cfg)
	default:
		return json.Unmarshal(b, cfg)
	}
}

// Validate rejects settings the server cannot run with.
func (c Config) Validate() error {
	if c.Evaluate.DefaultThreshold < 0 {
		return fmt.Errorf("evaluate.default_threshold must be >= 0, got %v", c.Evaluate.DefaultThreshold)
	}
	for name, s := range map[string]Source{"game": c.Game, "real": c.Real} {
		switch s.Provider {
		case ProviderEndpoint:
			if strings.TrimSpace(s.Endpoint) == "" {
				return fmt.Errorf("%s.endpoint is required", name)
			}
		case ProviderYahoo:
		default:
			return fmt.Errorf("%s.provider: unknown provider %q", name, s.Provider)
		}
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" { cfg.Server.Port = v }
	if v := os.Getenv("REQUEST_TIMEOUT_SEC"); v != "" {
		var x int; fmt.Sscanf(v, "%d", &x); if x > 0 { cfg.Server.RequestTimeoutSec = x }
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" { cfg.Server.LogLevel = v }
	if v := os.Getenv("LOG_FORMAT"); v != "" { cfg.Server.LogFormat = v }
	if v := os.Getenv("DEFAULT_THRESHOLD"); v != "" {
		var x float64; if _, err := fmt.Sscanf(v, "%g", &x); err == nil && x >= 0 { cfg.Evaluate.DefaultThreshold = x }
	}
	if v := os.Getenv("PATH_PREFIXES"); v != "" { cfg.Evaluate.PathPrefixes = splitCSV(v) }
	if v := os.Getenv("REFERENCE_CSV"); v != "" { cfg.Reference.CSVPath = v }
	if v := os.Getenv("SOURCE_TIMEOUT_SEC"); v != "" {
		var x int; fmt.Sscanf(v, "%d", &x); if x > 0 { cfg.Sources.TimeoutSec = x }
	}
	if v := os.Getenv("SOURCE_USER_AGENT"); v != "" { cfg.Sources.UserAgent = v }

	if v := os.Getenv("GAME_ENDPOINT"); v != "" { cfg.Game.Endpoint = v }
	if v := os.Getenv("GAME_PROVIDER"); v != "" { cfg.Game.Provider = strings.ToLower(v) }
	if v := os.Getenv("GAME_MAX_RPM"); v != "" {
		var x int; fmt.Sscanf(v, "%d", &x); if x >= 0 { cfg.Game.MaxRequestsPerMinute = x }
	}
	if v := os.Getenv("GAME_BURST"); v != "" {
		var x int; fmt.Sscanf(v, "%d", &x); if x > 0 { cfg.Game.Burst = x }
	}
	if v := os.Getenv("GAME_MIN_INTERVAL_SEC"); v != "" {
		var x int; fmt.Sscanf(v, "%d", &x); if x >= 0 { cfg.Game.MinRequestIntervalSec = x }
	}

	if v := os.Getenv("REAL_ENDPOINT"); v != "" { cfg.Real.Endpoint = v }
	if v := os.Getenv("REAL_PROVIDER"); v != "" { cfg.Real.Provider = strings.ToLower(v) }
	if v := os.Getenv("REAL_MAX_RPM"); v != "" {
		var x int; fmt.Sscanf(v, "%d", &x); if x >= 0 { cfg.Real.MaxRequestsPerMinute = x }
	}
	if v := os.Getenv("REAL_BURST"); v != "" {
		var x int; fmt.Sscanf(v, "%d", &x); if x > 0 { cfg.Real.Burst = x }
	}
	if v := os.Getenv("REAL_MIN_INTERVAL_SEC"); v != "" {
		var x int; fmt.Sscanf(v, "%d", &x); if x >= 0 { cfg.Real.MinRequestIntervalSec = x }
	}

	if v := os.Getenv("YAHOO_ENDPOINT"); v != "" { cfg.Yahoo.Endpoint = v }
	if v := os.Getenv("YAHOO_USER_AGENT"); v != "" { cfg.Yahoo.UserAgent = v }
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" { out = append(out, p) }
	}
	return out
}
