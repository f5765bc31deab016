// pisense - Raspberry Pi telemetry daemon
//
// This is the main entry point for the pisense daemon. It samples a
// small set of sensors on a fixed interval, keeps a bounded in-memory
// history per metric, and publishes the readings to a plot backend
// (InfluxDB) and a spreadsheet backend (remote service or local SQLite).
//
// The daemon is built for unattended operation on a Pi in a cupboard:
//   - Partial sensor failure never stops the sampling loop
//   - Publish failures are retried with bounded backoff, then dropped
//   - A heartbeat LED blinks for as long as the process schedules work
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/nerrad567/pisense/internal/heartbeat"
	"github.com/nerrad567/pisense/internal/history"
	"github.com/nerrad567/pisense/internal/infrastructure/config"
	"github.com/nerrad567/pisense/internal/infrastructure/influxdb"
	"github.com/nerrad567/pisense/internal/infrastructure/logging"
	"github.com/nerrad567/pisense/internal/infrastructure/mqtt"
	"github.com/nerrad567/pisense/internal/infrastructure/sheets"
	"github.com/nerrad567/pisense/internal/publish"
	"github.com/nerrad567/pisense/internal/scheduler"
	"github.com/nerrad567/pisense/internal/sensor"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
//
// Configuration errors are the only fatal errors: once the daemon is
// past startup, sensor and publish failures degrade service but never
// end the process.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting pisense",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Build sensor sources
	sources, cleanup, err := buildSources(cfg, log)
	if err != nil {
		return fmt.Errorf("initialising sensors: %w", err)
	}
	defer cleanup()
	if len(sources) == 0 {
		return fmt.Errorf("no sensor sources enabled")
	}
	log.Info("sensor sources initialised", "sources", len(sources))

	aggregator := sensor.NewAggregator(sources, cfg.GetSampleTimeout(), cfg.GetTickDeadline())
	aggregator.SetLogger(log)

	buffer := history.New(cfg.Daemon.HistoryPoints)

	// Connect to MQTT broker (optional presence beacon)
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT, cfg.Site.ID)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)
	} else {
		log.Info("MQTT disabled")
	}

	// Build publish backends
	dispatchers, backendCleanup, err := buildDispatchers(cfg, log)
	if err != nil {
		return err
	}
	defer backendCleanup()

	sched := scheduler.New(aggregator, buffer, dispatchers, cfg.GetTickInterval(), cfg.GetShutdownGrace())
	sched.SetLogger(log)

	// The heartbeat runs on its own context so it keeps blinking while
	// the scheduler winds down; it is stopped last.
	hbCtx, stopHeartbeat := context.WithCancel(context.Background())
	defer stopHeartbeat()

	var hbWg sync.WaitGroup
	if cfg.Heartbeat.Enabled {
		led, ledErr := heartbeat.OpenLED(cfg.Heartbeat.Pin)
		if ledErr != nil {
			return fmt.Errorf("initialising heartbeat LED: %w", ledErr)
		}

		var beater heartbeat.Beater
		if mqttClient != nil {
			beater = mqttClient
		}

		hb := heartbeat.New(led, beater, cfg.GetHeartbeatInterval())
		hb.SetLogger(log)

		hbWg.Add(1)
		go func() {
			defer hbWg.Done()
			_ = hb.Run(hbCtx)
		}()
		log.Info("heartbeat started",
			"pin", cfg.Heartbeat.Pin,
			"interval", cfg.GetHeartbeatInterval(),
		)
	} else {
		log.Info("heartbeat disabled")
	}

	log.Info("initialisation complete, entering sampling loop")

	// Blocks until ctx is cancelled and shutdown (with grace) completes.
	if err := sched.Run(ctx); err != nil {
		return fmt.Errorf("scheduler: %w", err)
	}

	// Scheduler fully wound down; now the heartbeat may stop.
	stopHeartbeat()
	hbWg.Wait()

	log.Info("pisense stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses PISENSE_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("PISENSE_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// buildSources constructs the enabled sensor sources. The returned
// cleanup releases hardware handles (I²C bus) and is safe to call once.
func buildSources(cfg *config.Config, log *logging.Logger) ([]sensor.Source, func(), error) {
	var sources []sensor.Source
	cleanup := func() {}

	if cfg.Sensors.CPU.Enabled {
		sources = append(sources, sensor.NewCPUTemp(cfg.Sensors.CPU.ThermalZone))
		log.Info("cpu temperature source enabled", "thermal_zone", cfg.Sensors.CPU.ThermalZone)
	}

	if cfg.Sensors.BME280.Enabled {
		dev, err := sensor.OpenBME280(cfg.Sensors.BME280.Bus, cfg.Sensors.BME280.Address)
		if err != nil {
			return nil, cleanup, fmt.Errorf("opening BME280: %w", err)
		}
		cleanup = func() {
			if closeErr := dev.Close(); closeErr != nil {
				log.Error("error closing BME280", "error", closeErr)
			}
		}
		sources = append(sources, dev.Sources()...)
		log.Info("BME280 sources enabled",
			"bus", cfg.Sensors.BME280.Bus,
			"address", fmt.Sprintf("%#x", cfg.Sensors.BME280.Address),
		)
	}

	if cfg.Sensors.Weather.Enabled {
		sources = append(sources, sensor.NewWeather(cfg.Sensors.Weather, cfg.Site.Location))
		log.Info("weather source enabled", "base_url", cfg.Sensors.Weather.BaseURL)
	}

	return sources, cleanup, nil
}

// buildDispatchers connects the enabled publish backends and wraps each
// in its own dispatcher so they retry and fail independently.
func buildDispatchers(cfg *config.Config, log *logging.Logger) ([]scheduler.Dispatcher, func(), error) {
	var dispatchers []scheduler.Dispatcher
	var closers []func()
	cleanup := func() {
		for _, c := range closers {
			c()
		}
	}

	if cfg.Publishers.Plot.Enabled {
		influxClient, err := influxdb.Connect(cfg.Publishers.Plot, cfg.Site.ID)
		if err != nil {
			return nil, cleanup, fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		closers = append(closers, func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		})
		log.Info("InfluxDB connected",
			"url", cfg.Publishers.Plot.URL,
			"org", cfg.Publishers.Plot.Org,
			"bucket", cfg.Publishers.Plot.Bucket,
		)

		d := publish.NewDispatcher(
			publish.NewPlotPublisher(influxClient),
			publish.PolicyFromConfig(cfg.Publishers.Plot.Retry),
			cfg.Publishers.Plot.GetTimeout(),
		)
		d.SetLogger(log)
		dispatchers = append(dispatchers, d)
	} else {
		log.Info("plot backend disabled")
	}

	if cfg.Publishers.Sheet.Enabled {
		appender, closer, err := openSheetDriver(cfg.Publishers.Sheet, log)
		if err != nil {
			return nil, cleanup, err
		}
		if closer != nil {
			closers = append(closers, closer)
		}

		d := publish.NewDispatcher(
			publish.NewSheetPublisher(appender),
			publish.PolicyFromConfig(cfg.Publishers.Sheet.Retry),
			cfg.Publishers.Sheet.GetTimeout(),
		)
		d.SetLogger(log)
		dispatchers = append(dispatchers, d)
	} else {
		log.Info("sheet backend disabled")
	}

	return dispatchers, cleanup, nil
}

// openSheetDriver opens the configured sheet transport.
func openSheetDriver(cfg config.SheetConfig, log *logging.Logger) (sheets.Appender, func(), error) {
	switch cfg.Driver {
	case "http":
		log.Info("sheet backend using http driver", "url", cfg.URL, "sheet_id", cfg.SheetID)
		return sheets.NewClient(cfg), nil, nil

	case "sqlite":
		local, err := sheets.OpenLocal(cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("opening local sheet: %w", err)
		}
		log.Info("sheet backend using sqlite driver", "path", cfg.Path, "max_rows", cfg.MaxRows)
		closer := func() {
			log.Info("closing local sheet")
			if closeErr := local.Close(); closeErr != nil {
				log.Error("error closing local sheet", "error", closeErr)
			}
		}
		return local, closer, nil

	default:
		return nil, nil, fmt.Errorf("unknown sheet driver %q", cfg.Driver)
	}
}
