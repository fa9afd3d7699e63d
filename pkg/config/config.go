package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/ritzau/deflex-graph/pkg/logging"
)

const (
	// DefaultFile is the optional config file read from the working directory
	DefaultFile = "deflex-graph.toml"

	envPrefix = "DEFLEX_GRAPH_"
)

// Config holds all configuration for the application
type Config struct {
	Input        string   `koanf:"input" validate:"required"`
	Output       string   `koanf:"output"`
	Name         string   `koanf:"name"`
	Year         string   `koanf:"year" validate:"required"`
	Debug        bool     `koanf:"debug"`
	ExtraRegions []string `koanf:"extra_regions" validate:"dive,required"`
	ShortageCost float64  `koanf:"shortage_cost" validate:"gt=0"`
	Watch        bool     `koanf:"watch"`
	WebMode      bool     `koanf:"web"`
	Port         int      `koanf:"port" validate:"min=1,max=65535"`
	Verbosity    string   `koanf:"verbosity" validate:"omitempty,oneof=trace debug info warn warning error"`
	VerboseCnt   int      `koanf:"verbose" validate:"min=0"`
	JSONLogs     bool     `koanf:"json_logs"`
}

// Defaults returns the values used when nothing else is configured
func Defaults() map[string]interface{} {
	return map[string]interface{}{
		"input":         ".",
		"output":        "",
		"name":          "",
		"year":          "2014",
		"debug":         false,
		"extra_regions": []string{},
		"shortage_cost": 900.0,
		"watch":         false,
		"web":           false,
		"port":          8080,
		"verbosity":     "",
		"verbose":       0,
		"json_logs":     false,
	}
}

// RegisterFlags adds a flag for every configuration key to f
func RegisterFlags(f *pflag.FlagSet) {
	f.StringP("input", "i", ".", "Directory with the scenario tables (CSV)")
	f.StringP("output", "o", "", "Write the compiled graph to this file (.json, .yaml)")
	f.String("name", "", "Scenario name (defaults to the input directory name)")
	f.String("year", "2014", "Simulation year, sets the horizon length")
	f.Bool("debug", false, "Use a 3 step horizon")
	f.StringSlice("extra_regions", nil, "Regions with their own fuel market")
	f.Float64("shortage_cost", 900, "Penalty per unit of unserved energy")
	f.BoolP("watch", "w", false, "Recompile when a table changes")
	f.Bool("web", false, "Serve the compiled graph over HTTP")
	f.IntP("port", "p", 8080, "Port for the web server")
	f.String("verbosity", "", "Log level: trace, debug, info, warn, error")
	f.CountP("verbose", "v", "Increase verbosity (-v debug, -vv trace)")
	f.Bool("json_logs", false, "Log as JSON")
}

// Load loads configuration from defaults, config file, environment variables, and flags.
// Priority: Flags > Env > Config File > Defaults
func Load(f *pflag.FlagSet) (*Config, error) {
	return LoadFrom(f, DefaultFile)
}

// LoadFrom is Load with another config file
func LoadFrom(f *pflag.FlagSet, configFile string) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(makeMapProvider(Defaults()), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config File (optional), a missing file is fine
	if configFile != "" {
		if _, err := os.Stat(configFile); err == nil {
			if err := k.Load(file.Provider(configFile), toml.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load %s: %w", configFile, err)
			}
		} else {
			logging.Debug("no config file", "path", configFile)
		}
	}

	// 3. Environment Variables
	// Prefix: DEFLEX_GRAPH_ (e.g., DEFLEX_GRAPH_PORT=9090, DEFLEX_GRAPH_EXTRA_REGIONS=DE01,DE02)
	if err := k.Load(env.ProviderWithValue(envPrefix, ".", func(key, value string) (string, interface{}) {
		key = strings.ToLower(strings.TrimPrefix(key, envPrefix))
		if key == "extra_regions" {
			return key, splitList(value)
		}
		return key, value
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags
	if f != nil {
		if err := k.Load(posflag.Provider(f, ".", k), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// Unmarshal into struct
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the value constraints of the configuration
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// LogLevel resolves the log level. An explicit verbosity wins over the
// -v count.
func (c *Config) LogLevel() slog.Level {
	if c.Verbosity != "" {
		return logging.ParseLevel(c.Verbosity)
	}
	switch {
	case c.VerboseCnt >= 2:
		return logging.LevelTrace
	case c.VerboseCnt == 1:
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

func splitList(s string) []string {
	var items []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// Helper to use map as a provider
type mapProvider struct {
	m map[string]interface{}
}

func makeMapProvider(m map[string]interface{}) *mapProvider {
	return &mapProvider{m: m}
}

func (p *mapProvider) Read() (map[string]interface{}, error) {
	return p.m, nil
}

func (p *mapProvider) ReadBytes() ([]byte, error) {
	return nil, fmt.Errorf("not implemented")
}
