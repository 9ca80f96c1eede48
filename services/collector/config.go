package collector

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"nanosense-go/protocol"
)

// Config is the collector's environment-driven configuration.
type Config struct {
	AppEnv   string
	LogLevel slog.Level

	DeviceName   string
	Adapter      string
	ScanTimeout  time.Duration
	ReadInterval time.Duration

	// Duration bounds a session; 0 runs until interrupted.
	Duration time.Duration

	CSVPath    string
	SQLitePath string // empty disables the sqlite sink

	// BaselinePath names a CSV of normal readings. When set, each record is
	// also scored against it and written to LabeledCSVPath.
	BaselinePath   string
	LabeledCSVPath string

	MQTTBroker   string // empty disables the MQTT sink
	MQTTPort     int
	MQTTClientID string
	StationID    string
}

// LoadFromEnv reads the configuration from the environment. A single
// positional argument overrides COLLECT_CSV.
func LoadFromEnv(args []string) (Config, error) {
	appEnv := env("APP_ENV", "dev")
	switch appEnv {
	case "dev", "prod":
	default:
		return Config{}, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", appEnv)
	}

	level, err := parseLogLevel(env("LOG_LEVEL", "info"))
	if err != nil {
		return Config{}, err
	}

	scanTimeout, err := positiveDuration("COLLECT_SCAN_TIMEOUT", "10s")
	if err != nil {
		return Config{}, err
	}
	readInterval, err := positiveDuration("COLLECT_READ_INTERVAL", "1s")
	if err != nil {
		return Config{}, err
	}

	durStr := env("COLLECT_DURATION", "0")
	duration, err := time.ParseDuration(durStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid COLLECT_DURATION %q: %w", durStr, err)
	}
	if duration < 0 {
		return Config{}, fmt.Errorf("COLLECT_DURATION must not be negative, got %v", duration)
	}

	portStr := env("MQTT_PORT", "1883")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid MQTT_PORT %q: %w", portStr, err)
	}

	csvPath := env("COLLECT_CSV", "nanosense.csv")
	switch len(args) {
	case 0:
	case 1:
		csvPath = args[0]
	default:
		return Config{}, fmt.Errorf("usage: nanosense-collect [output.csv]")
	}

	return Config{
		AppEnv:         appEnv,
		LogLevel:       level,
		DeviceName:     env("COLLECT_DEVICE_NAME", protocol.LocalName),
		Adapter:        env("COLLECT_ADAPTER", "hci0"),
		ScanTimeout:    scanTimeout,
		ReadInterval:   readInterval,
		Duration:       duration,
		CSVPath:        csvPath,
		SQLitePath:     env("COLLECT_SQLITE", ""),
		BaselinePath:   env("COLLECT_BASELINE", ""),
		LabeledCSVPath: env("COLLECT_LABELED_CSV", "live_data.csv"),
		MQTTBroker:     env("MQTT_BROKER", ""),
		MQTTPort:       port,
		MQTTClientID:   env("MQTT_CLIENT_ID", "nanosense-collect"),
		StationID:      env("COLLECT_STATION_ID", "home"),
	}, nil
}

func env(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func positiveDuration(key, def string) (time.Duration, error) {
	s := env(key, def)
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %v", key, d)
	}
	return d, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}
