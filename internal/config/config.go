package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"

	"ridedash/internal/analysis"
)

// Config represents the application configuration
type Config struct {
	Strava  StravaConfig  `json:"strava" mapstructure:"strava"`
	Athlete AthleteConfig `json:"athlete" mapstructure:"athlete"`
	Display DisplayConfig `json:"display" mapstructure:"display"`
	Sync    SyncConfig    `json:"sync" mapstructure:"sync"`
	Server  ServerConfig  `json:"server" mapstructure:"server"`
}

// StravaConfig holds Strava API credentials
type StravaConfig struct {
	ClientID     string `json:"client_id" mapstructure:"client_id"`
	ClientSecret string `json:"client_secret" mapstructure:"client_secret"`
	// RefreshToken enables headless login without the browser flow
	RefreshToken string `json:"refresh_token,omitempty" mapstructure:"refresh_token"`
}

// AthleteConfig holds athlete-specific settings
type AthleteConfig struct {
	FTP           float64   `json:"ftp" mapstructure:"ftp"`
	MaxHR         float64   `json:"max_hr" mapstructure:"max_hr"`
	PowerZones    []float64 `json:"power_zones" mapstructure:"power_zones"`
	HRZones       []float64 `json:"hr_zones" mapstructure:"hr_zones"`
	ZonePrecision int       `json:"zone_precision" mapstructure:"zone_precision"`
}

// DisplayConfig holds display preferences
type DisplayConfig struct {
	DistanceUnit string `json:"distance_unit" mapstructure:"distance_unit"`
}

// SyncConfig controls how rides are pulled from Strava
type SyncConfig struct {
	Schedule    string   `json:"schedule" mapstructure:"schedule"`
	ListLimit   int      `json:"list_limit" mapstructure:"list_limit"`
	StreamBatch int      `json:"stream_batch" mapstructure:"stream_batch"`
	RideTypes   []string `json:"ride_types" mapstructure:"ride_types"`
}

// ServerConfig holds HTTP API settings
type ServerConfig struct {
	Addr string `json:"addr" mapstructure:"addr"`
}

// ErrNoConfig is returned when the config file doesn't exist
var ErrNoConfig = errors.New("config file not found")

// EnvPrefix is the prefix of environment overrides, e.g. RIDEDASH_ATHLETE_FTP
const EnvPrefix = "RIDEDASH"

// DefaultRideTypes are the Strava sport types treated as rides
var DefaultRideTypes = []string{"Ride", "GravelRide", "VirtualRide", "EBikeRide", "MountainBikeRide"}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	engine := analysis.DefaultConfig()
	return Config{
		Athlete: AthleteConfig{
			FTP:           engine.FTP,
			MaxHR:         engine.ReferenceHR,
			PowerZones:    engine.PowerThresholds,
			HRZones:       engine.HRThresholds,
			ZonePrecision: engine.Precision,
		},
		Display: DisplayConfig{
			DistanceUnit: "km",
		},
		Sync: SyncConfig{
			Schedule:    "@every 1h",
			ListLimit:   50,
			StreamBatch: 50,
			RideTypes:   append([]string(nil), DefaultRideTypes...),
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}

// AnalysisConfig converts athlete settings into engine configuration.
// A zone_precision of 0 means whole percents.
func (a AthleteConfig) AnalysisConfig() analysis.Config {
	precision := a.ZonePrecision
	if precision == 0 {
		precision = analysis.WholePercent
	}
	return analysis.Config{
		FTP:             a.FTP,
		ReferenceHR:     a.MaxHR,
		PowerThresholds: a.PowerZones,
		HRThresholds:    a.HRZones,
		Precision:       precision,
	}
}

// Load reads the configuration from ~/.ridedash/config.json
func Load() (*Config, error) {
	path, err := getConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// LoadFile reads the configuration at path, then applies .env and
// environment overrides. Missing values fall back to defaults.
func LoadFile(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, ErrNoConfig
	}

	// .env is optional
	_ = godotenv.Load()

	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	return &cfg, nil
}

// newViper returns a viper instance seeded with defaults and env bindings
func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	d := DefaultConfig()
	v.SetDefault("strava.client_id", "")
	v.SetDefault("strava.client_secret", "")
	v.SetDefault("strava.refresh_token", "")
	v.SetDefault("athlete.ftp", d.Athlete.FTP)
	v.SetDefault("athlete.max_hr", d.Athlete.MaxHR)
	v.SetDefault("athlete.power_zones", d.Athlete.PowerZones)
	v.SetDefault("athlete.hr_zones", d.Athlete.HRZones)
	v.SetDefault("athlete.zone_precision", d.Athlete.ZonePrecision)
	v.SetDefault("display.distance_unit", d.Display.DistanceUnit)
	v.SetDefault("sync.schedule", d.Sync.Schedule)
	v.SetDefault("sync.list_limit", d.Sync.ListLimit)
	v.SetDefault("sync.stream_batch", d.Sync.StreamBatch)
	v.SetDefault("sync.ride_types", d.Sync.RideTypes)
	v.SetDefault("server.addr", d.Server.Addr)

	// Plain Strava variables used by hosted deployments
	_ = v.BindEnv("strava.client_id", EnvPrefix+"_STRAVA_CLIENT_ID", "STRAVA_CLIENT_ID")
	_ = v.BindEnv("strava.client_secret", EnvPrefix+"_STRAVA_CLIENT_SECRET", "STRAVA_CLIENT_SECRET")
	_ = v.BindEnv("strava.refresh_token", EnvPrefix+"_STRAVA_REFRESH_TOKEN", "STRAVA_REFRESH_TOKEN")
	return v
}

// Save writes the configuration to ~/.ridedash/config.json
func Save(cfg *Config) error {
	path, err := getConfigPath()
	if err != nil {
		return err
	}
	return SaveFile(path, cfg)
}

// SaveFile writes the configuration to path
func SaveFile(path string, cfg *Config) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// CreateExample creates an example config file if none exists
func CreateExample() error {
	path, err := getConfigPath()
	if err != nil {
		return err
	}
	return CreateExampleFile(path)
}

// CreateExampleFile writes the example config to path unless a file is already there
func CreateExampleFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil // Config exists, don't overwrite
	}

	example := DefaultConfig()
	example.Strava = StravaConfig{
		ClientID:     "YOUR_CLIENT_ID",
		ClientSecret: "YOUR_CLIENT_SECRET",
	}

	return SaveFile(path, &example)
}

// Validate checks if the config has required fields
func (c *Config) Validate() error {
	if c.Strava.ClientID == "" || c.Strava.ClientID == "YOUR_CLIENT_ID" {
		return errors.New("strava.client_id is required - get it from https://www.strava.com/settings/api")
	}
	if c.Strava.ClientSecret == "" || c.Strava.ClientSecret == "YOUR_CLIENT_SECRET" {
		return errors.New("strava.client_secret is required - get it from https://www.strava.com/settings/api")
	}
	if err := c.Athlete.Validate(); err != nil {
		return err
	}

	if c.Display.DistanceUnit != "" && c.Display.DistanceUnit != "km" && c.Display.DistanceUnit != "mi" {
		return fmt.Errorf("display.distance_unit must be \"km\" or \"mi\", got %q", c.Display.DistanceUnit)
	}

	if c.Sync.Schedule != "" {
		if _, err := cron.ParseStandard(c.Sync.Schedule); err != nil {
			return fmt.Errorf("sync.schedule %q: %w", c.Sync.Schedule, err)
		}
	}
	if c.Sync.ListLimit < 0 || c.Sync.StreamBatch < 0 {
		return errors.New("sync.list_limit and sync.stream_batch must not be negative")
	}

	return nil
}

// Validate checks the athlete settings used by the analysis engine.
// It does not need Strava credentials, so offline commands call it alone.
func (a AthleteConfig) Validate() error {
	if a.FTP <= 0 {
		return fmt.Errorf("athlete.ftp must be positive, got %v", a.FTP)
	}
	if a.MaxHR <= 0 {
		return fmt.Errorf("athlete.max_hr must be positive, got %v", a.MaxHR)
	}
	if err := validateThresholds("athlete.power_zones", a.PowerZones); err != nil {
		return err
	}
	if err := validateThresholds("athlete.hr_zones", a.HRZones); err != nil {
		return err
	}
	if a.ZonePrecision < 0 {
		return fmt.Errorf("athlete.zone_precision must not be negative, got %d", a.ZonePrecision)
	}
	return nil
}

func validateThresholds(key string, t []float64) error {
	for i, v := range t {
		if v <= 0 {
			return fmt.Errorf("%s[%d] must be positive, got %v", key, i, v)
		}
		if i > 0 && v <= t[i-1] {
			return fmt.Errorf("%s must be strictly increasing, got %v after %v", key, v, t[i-1])
		}
	}
	return nil
}

// getConfigPath returns the path to the config file
func getConfigPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// GetConfigDir returns the path to the config directory
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".ridedash"), nil
}
