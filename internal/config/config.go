package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Port    int      `yaml:"port" validate:"gt=0,lt=65536"`
	Env     string   `yaml:"env" validate:"oneof=development staging production"`
	APIKeys []string `yaml:"apiKeys"`
}

// ScheduleConfig configures the static schedule source.
type ScheduleConfig struct {
	StaticSource string `yaml:"staticSource" validate:"required"`
	FeedVersion  string `yaml:"feedVersion"`
	SnapshotPath string `yaml:"snapshotPath"`
}

// RealtimeConfig configures the live GTFS-RT feeds. Both URLs are
// optional; with neither set the engine plans on the schedule alone.
type RealtimeConfig struct {
	TripUpdatesURL  string `yaml:"tripUpdatesURL" validate:"omitempty,url"`
	AlertsURL       string `yaml:"alertsURL" validate:"omitempty,url"`
	AuthHeaderKey   string `yaml:"authHeaderKey"`
	AuthHeaderValue string `yaml:"authHeaderValue"`
}

// ReliabilityConfig configures the historical delay sample store.
type ReliabilityConfig struct {
	DatabaseDSN    string `yaml:"databaseDSN"`
	RefreshMinutes int    `yaml:"refreshMinutes" validate:"gt=0"`
}

// Config is the full engine configuration.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Schedule    ScheduleConfig    `yaml:"schedule"`
	Realtime    RealtimeConfig    `yaml:"realtime"`
	Reliability ReliabilityConfig `yaml:"reliability"`
}

// Default returns the baseline configuration before file and env overrides.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:    4000,
			Env:     "development",
			APIKeys: []string{"test"},
		},
		Schedule: ScheduleConfig{
			StaticSource: "https://www.soundtransit.org/GTFS-rail/40_gtfs.zip",
		},
		Reliability: ReliabilityConfig{
			RefreshMinutes: 60,
		},
	}
}

// Load assembles the configuration: defaults, then an optional YAML file,
// then environment variables (a .env file is honored when present).
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config file: %w", err)
		}
	}

	applyEnv(&cfg)

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("WAYFARE_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("WAYFARE_ENV"); v != "" {
		cfg.Server.Env = v
	}
	if v := os.Getenv("WAYFARE_API_KEYS"); v != "" {
		keys := strings.Split(v, ",")
		for i := range keys {
			keys[i] = strings.TrimSpace(keys[i])
		}
		cfg.Server.APIKeys = keys
	}
	if v := os.Getenv("WAYFARE_GTFS_SOURCE"); v != "" {
		cfg.Schedule.StaticSource = v
	}
	if v := os.Getenv("WAYFARE_FEED_VERSION"); v != "" {
		cfg.Schedule.FeedVersion = v
	}
	if v := os.Getenv("WAYFARE_SNAPSHOT_PATH"); v != "" {
		cfg.Schedule.SnapshotPath = v
	}
	if v := os.Getenv("WAYFARE_TRIP_UPDATES_URL"); v != "" {
		cfg.Realtime.TripUpdatesURL = v
	}
	if v := os.Getenv("WAYFARE_ALERTS_URL"); v != "" {
		cfg.Realtime.AlertsURL = v
	}
	if v := os.Getenv("WAYFARE_RT_AUTH_HEADER_KEY"); v != "" {
		cfg.Realtime.AuthHeaderKey = v
	}
	if v := os.Getenv("WAYFARE_RT_AUTH_HEADER_VALUE"); v != "" {
		cfg.Realtime.AuthHeaderValue = v
	}
	if v := os.Getenv("WAYFARE_DATABASE_DSN"); v != "" {
		cfg.Reliability.DatabaseDSN = v
	}
	if v := os.Getenv("WAYFARE_RELIABILITY_REFRESH_MINUTES"); v != "" {
		if minutes, err := strconv.Atoi(v); err == nil {
			cfg.Reliability.RefreshMinutes = minutes
		}
	}
}

// AuthHeaders returns the realtime auth headers in request form.
func (r RealtimeConfig) AuthHeaders() map[string]string {
	if r.AuthHeaderKey == "" || r.AuthHeaderValue == "" {
		return nil
	}
	return map[string]string{r.AuthHeaderKey: r.AuthHeaderValue}
}
