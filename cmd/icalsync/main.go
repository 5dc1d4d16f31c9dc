package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"icalsync/internal/config"
	"icalsync/internal/ics"
	appLog "icalsync/internal/log"
	"icalsync/internal/store"
	syncer "icalsync/internal/sync"
	"icalsync/internal/web"
)

type flagConfig struct {
	configPath string
	listen     string
	once       bool
}

func main() {
	flags := parseFlags()

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}

	// CLI --listen overrides config file listen if provided.
	if flags.listen != "" {
		conf.Listen = flags.listen
	}

	appLog.SetLevel(appLog.ParseLevel(conf.LogLevel))
	appLog.Info("icalsync starting",
		"listen", conf.Listen,
		"sync_cron", conf.SyncCron,
		"fetch_timeout_sec", conf.FetchTimeoutSec,
		"horizon_days", conf.HorizonDays,
		"once", flags.once,
	)

	pg, err := store.NewPostgres(config.LoadStore())
	if err != nil {
		appLog.Error("failed to open booking store", err)
		os.Exit(1)
	}
	defer pg.Close()

	fetcher := ics.NewFetcher(time.Duration(conf.FetchTimeoutSec) * time.Second)
	runner := syncer.NewRunner(pg, pg, fetcher, conf.HorizonDays)

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	if flags.once {
		synced, err := runner.Run(ctx)
		if err != nil {
			appLog.Error("sync run failed", err)
			os.Exit(1)
		}
		appLog.Info("sync run finished", "synced", synced)
		return
	}

	// Periodic runs on the configured cron schedule; the HTTP endpoint
	// triggers ad-hoc runs in between.
	c := cron.New()
	if _, err := c.AddFunc(conf.SyncCron, func() {
		if _, err := runner.Run(ctx); err != nil {
			appLog.Error("scheduled sync run failed", err)
		}
	}); err != nil {
		appLog.Error("invalid sync_cron expression", err, "sync_cron", conf.SyncCron)
		os.Exit(1)
	}
	c.Start()
	defer c.Stop()

	if err := web.Start(ctx, conf, runner.Run); err != nil {
		appLog.Error("HTTP server failed", err)
		os.Exit(1)
	}

	appLog.Info("icalsync exiting")
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "/etc/icalsync/config.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.BoolVar(&cfg.once, "once", false, "Run one sync pass and exit")

	flag.Parse()

	return cfg
}
