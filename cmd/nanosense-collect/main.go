package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nanosense-go/services/collector"
)

var version = "dev"
var appName = "nanosense-collect"

func main() {
	cfg, err := collector.LoadFromEnv(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(2)
	}

	logger := collector.NewLogger(os.Stdout, cfg, version, appName)
	slog.SetDefault(logger)

	slog.Info("starting",
		"version", version,
		"env", cfg.AppEnv,
		"log_level", cfg.LogLevel.String(),
		"device", cfg.DeviceName,
		"csv", cfg.CSVPath,
		"duration", cfg.Duration,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("run failed", "err", err)
		os.Exit(1)
	}
	slog.Info("shutting down")
}

func run(ctx context.Context, cfg collector.Config, logger *slog.Logger) error {
	var sinks []collector.Sink
	closeAll := func() {
		for _, s := range sinks {
			if err := s.Close(); err != nil {
				logger.Warn("close sink", "error", err)
			}
		}
	}

	csvSink, err := collector.OpenCSV(cfg.CSVPath)
	if err != nil {
		return err
	}
	sinks = append(sinks, csvSink)

	if cfg.SQLitePath != "" {
		db, err := collector.OpenSQLite(cfg.SQLitePath, cfg.StationID)
		if err != nil {
			closeAll()
			return err
		}
		sinks = append(sinks, db)
	}

	if cfg.BaselinePath != "" {
		base, err := collector.LoadBaselineFile(cfg.BaselinePath)
		if err != nil {
			closeAll()
			return err
		}
		logger.Info("baseline loaded", "path", cfg.BaselinePath, "rows", base.Len())
		ls, err := collector.OpenLabeledCSV(cfg.LabeledCSVPath, base, logger)
		if err != nil {
			closeAll()
			return err
		}
		sinks = append(sinks, ls)
	}

	if cfg.MQTTBroker != "" {
		m, err := collector.DialMQTT(cfg, logger, 10*time.Second)
		if err != nil {
			closeAll()
			return err
		}
		sinks = append(sinks, m)
	}

	src, err := collector.DialBLE(ctx, cfg, logger)
	if err != nil {
		closeAll()
		if errors.Is(err, collector.ErrNotFound) {
			logger.Error("device not found", "name", cfg.DeviceName, "timeout", cfg.ScanTimeout)
		}
		return err
	}

	c := collector.New(src, cfg.ReadInterval, logger, sinks...)
	c.SetDuration(cfg.Duration)
	defer func() {
		if err := c.Close(); err != nil {
			logger.Warn("close", "error", err)
		}
	}()

	n, err := c.Run(ctx)
	logger.Info("finished", "records", n, "csv", cfg.CSVPath)
	return err
}
