package cfg

import (
	"cmp"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Sources and profiles
	SourcesDir     string `long:"sources-dir" env:"SOURCES_DIR" default:"./sources" description:"Directory containing source configuration files"`
	ProfilesFile   string `long:"profiles-file" env:"PROFILES_FILE" description:"YAML file with domain profiles (built-in profiles are used when empty)"`
	DefaultProfile string `long:"default-profile" env:"DEFAULT_PROFILE" default:"filmmaking" description:"Profile used when a request does not name one"`

	// Ranking
	MinTargets       int    `long:"min-targets" env:"MIN_TARGETS" default:"15" description:"Minimum number of engagement targets to return"`
	PrivilegedOrigin string `long:"privileged-origin" env:"PRIVILEGED_ORIGIN" default:"youtube" description:"Origin guaranteed a share of the ranked targets"`
	QuotaFloor       int    `long:"quota-floor" env:"QUOTA_FLOOR" default:"8" description:"Minimum number of targets taken from the privileged origin"`

	// Aggregation
	AggregateWorkers int `long:"aggregate-workers" env:"AGGREGATE_WORKERS" default:"8" description:"Maximum concurrent source requests per aggregation"`
	AggregateTimeout int `long:"aggregate-timeout" env:"AGGREGATE_TIMEOUT" default:"120" description:"Aggregation timeout in seconds"`

	// Application configuration
	Port         string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	RunHistory   int    `long:"run-history" env:"RUN_HISTORY" default:"50" description:"Number of pipeline runs kept in memory"`
	APIAccessKey string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"Pulse Comb/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

// Load reads an optional .env file, then parses flags and environment.
// It returns nil, nil when help was requested.
func Load() (*Cfg, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg, err := Parse(os.Args[1:])
	if err != nil || cfg == nil {
		return nil, err
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		slog.Warn("Invalid timezone, using system default", "timezone", cfg.Timezone, "error", err)
	}

	return cfg, nil
}

// Parse builds a Cfg from command line arguments and the environment.
func Parse(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.ParseArgs(args); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if raw.MinTargets < 0 || raw.QuotaFloor < 0 {
		return nil, fmt.Errorf("min-targets and quota-floor must be non-negative")
	}
	if raw.AggregateWorkers < 1 {
		return nil, fmt.Errorf("aggregate-workers must be at least 1, got %d", raw.AggregateWorkers)
	}

	return &Cfg{
		SourcesDir:       raw.SourcesDir,
		ProfilesFile:     raw.ProfilesFile,
		DefaultProfile:   raw.DefaultProfile,
		MinTargets:       raw.MinTargets,
		PrivilegedOrigin: raw.PrivilegedOrigin,
		QuotaFloor:       raw.QuotaFloor,
		AggregateWorkers: raw.AggregateWorkers,
		AggregateTimeout: time.Duration(raw.AggregateTimeout) * time.Second,
		Port:             raw.Port,
		RunHistory:       raw.RunHistory,
		APIAccessKey:     raw.APIAccessKey,
		UserAgent:        raw.UserAgent,
		Timezone:         raw.Timezone,
		Debug:            raw.Debug,
		Version:          GetVersion(),
	}, nil
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		loc, err := time.LoadLocation(timezone)
		if err != nil {
			return err
		}
		time.Local = loc
		slog.Debug("Timezone configured", "timezone", timezone)
	}
	return nil
}
