package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for pisense.
// All configuration is loaded from YAML and can be overridden by environment variables.
//
// Config is built once at startup and treated as immutable afterwards;
// it is passed by reference into the scheduler, aggregator, and publishers.
type Config struct {
	Site       SiteConfig       `yaml:"site"`
	Daemon     DaemonConfig     `yaml:"daemon"`
	Sensors    SensorsConfig    `yaml:"sensors"`
	Heartbeat  HeartbeatConfig  `yaml:"heartbeat"`
	Publishers PublishersConfig `yaml:"publishers"`
	MQTT       MQTTConfig       `yaml:"mqtt"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// SiteConfig contains site-specific information.
type SiteConfig struct {
	ID       string         `yaml:"id"`
	Name     string         `yaml:"name"`
	Location LocationConfig `yaml:"location"`
}

// LocationConfig contains geographic coordinates for the weather service.
type LocationConfig struct {
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
}

// DaemonConfig contains the sampling pipeline timing and retention knobs.
type DaemonConfig struct {
	// TickInterval is the sampling period in seconds.
	// Default: 60
	TickInterval int `yaml:"tick_interval"`

	// HistoryPoints is the per-metric retention window capacity.
	// Default: 200
	HistoryPoints int `yaml:"history_points"`

	// SampleTimeout is the per-source sampling timeout in seconds.
	// A source exceeding it is treated as failed for that tick.
	// Default: 5
	SampleTimeout int `yaml:"sample_timeout"`

	// TickDeadline is the overall per-tick aggregation deadline in seconds.
	// Default: 20
	TickDeadline int `yaml:"tick_deadline"`

	// ShutdownGrace is how long in-flight publish attempts are given on
	// shutdown before being abandoned, in seconds.
	// Default: 10
	ShutdownGrace int `yaml:"shutdown_grace"`
}

// SensorsConfig enables and configures the individual sensor sources.
type SensorsConfig struct {
	CPU     CPUSensorConfig     `yaml:"cpu"`
	BME280  BME280Config        `yaml:"bme280"`
	Weather WeatherSensorConfig `yaml:"weather"`
}

// CPUSensorConfig configures the SoC thermal zone source.
type CPUSensorConfig struct {
	Enabled bool `yaml:"enabled"`

	// ThermalZone is the sysfs file exposing the core temperature in
	// millidegrees. Default: /sys/class/thermal/thermal_zone0/temp
	ThermalZone string `yaml:"thermal_zone"`
}

// BME280Config configures the I²C environment sensor. One physical
// device backs the env_temp, env_pressure, and env_humidity sources.
type BME280Config struct {
	Enabled bool `yaml:"enabled"`

	// Bus is the periph.io I²C bus name. Empty selects the default bus
	// (usually /dev/i2c-1 on a Raspberry Pi).
	Bus string `yaml:"bus"`

	// Address is the 7-bit I²C address. Default: 0x76
	Address uint16 `yaml:"address"`
}

// WeatherSensorConfig configures the outdoor weather service source.
type WeatherSensorConfig struct {
	Enabled bool `yaml:"enabled"`

	// BaseURL is the weather API root (OpenWeatherMap-compatible).
	BaseURL string `yaml:"base_url"`

	// APIKey authenticates against the weather service. Required when
	// the source is enabled.
	APIKey string `yaml:"api_key"`

	// Units selects the unit system reported by the API.
	// Default: metric
	Units string `yaml:"units"`

	// Timeout is the HTTP request timeout in seconds. Remote reads get
	// a higher tolerance than local hardware. Default: 10
	Timeout int `yaml:"timeout"`
}

// HeartbeatConfig configures the liveness indicator.
type HeartbeatConfig struct {
	Enabled bool `yaml:"enabled"`

	// Pin is the periph.io GPIO pin name driving the LED (e.g. "GPIO17").
	Pin string `yaml:"pin"`

	// IntervalMS is the toggle period in milliseconds. Default: 1000
	IntervalMS int `yaml:"interval_ms"`
}

// PublishersConfig configures the two persistence/visualization backends.
type PublishersConfig struct {
	Plot  PlotConfig  `yaml:"plot"`
	Sheet SheetConfig `yaml:"sheet"`
}

// RetryConfig is the bounded exponential backoff policy applied to each
// publisher independently.
type RetryConfig struct {
	// MaxAttempts is the total attempt budget per dispatched snapshot.
	// Default: 3
	MaxAttempts int `yaml:"max_attempts"`

	// InitialDelayMS is the first retry delay in milliseconds.
	// Default: 500
	InitialDelayMS int `yaml:"initial_delay_ms"`

	// Multiplier scales the delay between consecutive attempts.
	// Default: 2.0
	Multiplier float64 `yaml:"multiplier"`
}

// PlotConfig contains the plot backend (InfluxDB) settings.
type PlotConfig struct {
	Enabled bool        `yaml:"enabled"`
	URL     string      `yaml:"url"`
	Token   string      `yaml:"token"`
	Org     string      `yaml:"org"`
	Bucket  string      `yaml:"bucket"`
	Timeout int         `yaml:"timeout"` // seconds per publish attempt chain
	Retry   RetryConfig `yaml:"retry"`
}

// SheetConfig contains the spreadsheet backend settings.
//
// Driver selects the transport: "http" appends rows to a remote sheet
// service, "sqlite" appends rows to a local sheet file so the daemon
// keeps working offline.
type SheetConfig struct {
	Enabled bool   `yaml:"enabled"`
	Driver  string `yaml:"driver"`

	// HTTP driver settings.
	URL     string `yaml:"url"`
	Token   string `yaml:"token"`
	SheetID string `yaml:"sheet_id"`

	// SQLite driver settings.
	Path    string `yaml:"path"`
	MaxRows int    `yaml:"max_rows"`

	Timeout int         `yaml:"timeout"` // seconds per publish attempt chain
	Retry   RetryConfig `yaml:"retry"`
}

// MQTTConfig contains the optional presence/heartbeat beacon settings.
type MQTTConfig struct {
	Enabled   bool                `yaml:"enabled"`
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings (seconds).
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: PISENSE_SECTION_KEY
// For example: PISENSE_WEATHER_API_KEY, PISENSE_PLOT_TOKEN
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	// Start with defaults
	cfg := defaultConfig()

	// Read and parse YAML file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Site: SiteConfig{
			ID:   "pi-001",
			Name: "pisense",
		},
		Daemon: DaemonConfig{
			TickInterval:  60,
			HistoryPoints: 200,
			SampleTimeout: 5,
			TickDeadline:  20,
			ShutdownGrace: 10,
		},
		Sensors: SensorsConfig{
			CPU: CPUSensorConfig{
				Enabled:     true,
				ThermalZone: "/sys/class/thermal/thermal_zone0/temp",
			},
			BME280: BME280Config{
				Enabled: true,
				Address: 0x76,
			},
			Weather: WeatherSensorConfig{
				BaseURL: "https://api.openweathermap.org",
				Units:   "metric",
				Timeout: 10,
			},
		},
		Heartbeat: HeartbeatConfig{
			Enabled:    true,
			Pin:        "GPIO17",
			IntervalMS: 1000,
		},
		Publishers: PublishersConfig{
			Plot: PlotConfig{
				Timeout: 30,
				Retry:   defaultRetry(),
			},
			Sheet: SheetConfig{
				Driver:  "sqlite",
				Path:    "./data/pisense-sheet.db",
				MaxRows: 10000,
				Timeout: 30,
				Retry:   defaultRetry(),
			},
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "pisense",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

func defaultRetry() RetryConfig {
	return RetryConfig{
		MaxAttempts:    3,
		InitialDelayMS: 500,
		Multiplier:     2.0,
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: PISENSE_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Weather
	if v := os.Getenv("PISENSE_WEATHER_API_KEY"); v != "" {
		cfg.Sensors.Weather.APIKey = v
	}

	// Plot backend
	if v := os.Getenv("PISENSE_PLOT_URL"); v != "" {
		cfg.Publishers.Plot.URL = v
	}
	if v := os.Getenv("PISENSE_PLOT_TOKEN"); v != "" {
		cfg.Publishers.Plot.Token = v
	}

	// Sheet backend
	if v := os.Getenv("PISENSE_SHEET_URL"); v != "" {
		cfg.Publishers.Sheet.URL = v
	}
	if v := os.Getenv("PISENSE_SHEET_TOKEN"); v != "" {
		cfg.Publishers.Sheet.Token = v
	}

	// MQTT
	if v := os.Getenv("PISENSE_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("PISENSE_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("PISENSE_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// Logging
	if v := os.Getenv("PISENSE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate checks the configuration for errors.
//
// A validation failure here is fatal at startup: the daemon exits with
// a non-zero status rather than running degraded.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	if c.Site.ID == "" {
		errs = append(errs, "site.id is required")
	}

	if c.Daemon.TickInterval <= 0 {
		errs = append(errs, "daemon.tick_interval must be positive")
	}
	if c.Daemon.HistoryPoints <= 0 {
		errs = append(errs, "daemon.history_points must be positive")
	}
	if c.Daemon.SampleTimeout <= 0 {
		errs = append(errs, "daemon.sample_timeout must be positive")
	}
	if c.Daemon.TickDeadline < c.Daemon.SampleTimeout {
		errs = append(errs, "daemon.tick_deadline must be at least daemon.sample_timeout")
	}

	if !c.Sensors.CPU.Enabled && !c.Sensors.BME280.Enabled && !c.Sensors.Weather.Enabled {
		errs = append(errs, "at least one sensor must be enabled")
	}
	if c.Sensors.CPU.Enabled && c.Sensors.CPU.ThermalZone == "" {
		errs = append(errs, "sensors.cpu.thermal_zone is required when the CPU sensor is enabled")
	}
	if c.Sensors.Weather.Enabled && c.Sensors.Weather.APIKey == "" {
		errs = append(errs, "sensors.weather.api_key is required when the weather sensor is enabled")
	}

	if c.Heartbeat.Enabled && c.Heartbeat.Pin == "" {
		errs = append(errs, "heartbeat.pin is required when the heartbeat is enabled")
	}

	if c.Publishers.Plot.Enabled {
		if c.Publishers.Plot.URL == "" {
			errs = append(errs, "publishers.plot.url is required when the plot backend is enabled")
		}
		if c.Publishers.Plot.Token == "" {
			errs = append(errs, "publishers.plot.token is required when the plot backend is enabled")
		}
		if c.Publishers.Plot.Org == "" || c.Publishers.Plot.Bucket == "" {
			errs = append(errs, "publishers.plot.org and publishers.plot.bucket are required when the plot backend is enabled")
		}
	}

	if c.Publishers.Sheet.Enabled {
		switch c.Publishers.Sheet.Driver {
		case "http":
			if c.Publishers.Sheet.URL == "" {
				errs = append(errs, "publishers.sheet.url is required for the http sheet driver")
			}
		case "sqlite":
			if c.Publishers.Sheet.Path == "" {
				errs = append(errs, "publishers.sheet.path is required for the sqlite sheet driver")
			}
		default:
			errs = append(errs, fmt.Sprintf("publishers.sheet.driver %q is not one of: http, sqlite", c.Publishers.Sheet.Driver))
		}
	}

	if c.MQTT.Enabled {
		if c.MQTT.Broker.Host == "" {
			errs = append(errs, "mqtt.broker.host is required when MQTT is enabled")
		}
		if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
			errs = append(errs, "mqtt.qos must be 0, 1, or 2")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// Duration helpers, converting the integer config fields to time.Duration.

// GetTickInterval returns the sampling period.
func (c *Config) GetTickInterval() time.Duration {
	return time.Duration(c.Daemon.TickInterval) * time.Second
}

// GetSampleTimeout returns the per-source sampling timeout.
func (c *Config) GetSampleTimeout() time.Duration {
	return time.Duration(c.Daemon.SampleTimeout) * time.Second
}

// GetTickDeadline returns the overall per-tick aggregation deadline.
func (c *Config) GetTickDeadline() time.Duration {
	return time.Duration(c.Daemon.TickDeadline) * time.Second
}

// GetShutdownGrace returns the in-flight publish grace period.
func (c *Config) GetShutdownGrace() time.Duration {
	return time.Duration(c.Daemon.ShutdownGrace) * time.Second
}

// GetHeartbeatInterval returns the heartbeat toggle period.
func (c *Config) GetHeartbeatInterval() time.Duration {
	return time.Duration(c.Heartbeat.IntervalMS) * time.Millisecond
}

// GetInitialDelay returns the first retry delay of the policy.
func (r RetryConfig) GetInitialDelay() time.Duration {
	return time.Duration(r.InitialDelayMS) * time.Millisecond
}

// GetTimeout returns the plot publish attempt-chain timeout.
func (p PlotConfig) GetTimeout() time.Duration {
	return time.Duration(p.Timeout) * time.Second
}

// GetTimeout returns the sheet publish attempt-chain timeout.
func (s SheetConfig) GetTimeout() time.Duration {
	return time.Duration(s.Timeout) * time.Second
}

// GetTimeout returns the weather HTTP request timeout.
func (w WeatherSensorConfig) GetTimeout() time.Duration {
	return time.Duration(w.Timeout) * time.Second
}
