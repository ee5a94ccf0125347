package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"deauthguard/internal/alerts"
	"deauthguard/internal/api"
	"deauthguard/internal/cache"
	"deauthguard/internal/config"
	"deauthguard/internal/engine"
	"deauthguard/internal/ingest"
	"deauthguard/internal/logging"
	"deauthguard/internal/metrics"
	"deauthguard/internal/model"
	"deauthguard/internal/storage"
)

const version = "1.0.0"

func main() {
	configPath := flag.String("config", "", "path to yaml/json config file")
	flag.Parse()

	var cfgManager *config.Manager
	if *configPath != "" {
		m, err := config.NewManager(config.ResolvePath(*configPath))
		if err != nil {
			fmt.Fprintf(os.Stderr, "load config: %v\n", err)
			os.Exit(1)
		}
		cfgManager = m
	} else {
		cfgManager = config.NewStaticManager(config.DefaultConfig())
	}
	cfg := cfgManager.Get()

	logger := logging.NewLogger(cfg.LogLevel)
	logger.Info("deauthguard starting",
		"version", version,
		"interface", cfg.Interface,
		"threshold", cfg.Detection.Threshold,
		"time_window", cfg.Detection.TimeWindow,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := storage.NewStore(cfg.Storage)
	if err != nil {
		logger.Error("storage init failed", "err", err)
		os.Exit(1)
	}
	if store != nil {
		if err := store.Init(ctx); err != nil {
			logger.Error("storage schema init failed", "err", err)
			os.Exit(1)
		}
		defer store.Close()
	}

	var publisher engine.AlertPublisher
	if cfg.Cache.Enabled {
		redisPub, err := cache.NewRedisPublisher(ctx, cfg.Cache)
		if err != nil {
			logger.Error("redis connect failed", "err", err)
			os.Exit(1)
		}
		defer redisPub.Close()
		publisher = redisPub
	}

	alertStore := alerts.NewStore(cfg.Alerts.StoreLimit)
	metricsStore := metrics.NewStore()
	collectors := metrics.NewCollectors(nil)

	eng, err := engine.NewEngine(cfg, logger, metricsStore, collectors, alertStore, store, publisher)
	if err != nil {
		logger.Error("engine init failed", "err", err)
		os.Exit(1)
	}

	events := make(chan model.DeauthEvent, cfg.Ingest.ChannelBuffer)
	eng.Start(ctx, events)
	eng.RunStatsLoop(ctx, cfg.Detection.StatsInterval)

	parser := ingest.NewParser()
	ingest.StartREST(ctx, cfgManager, events, logger)
	ingest.StartSyslog(ctx, cfgManager, parser, events, logger)
	ingest.StartTCPStream(ctx, cfgManager, parser, events, logger)
	ingest.StartFileTail(ctx, cfgManager, parser, events, logger)
	ingest.StartKafka(ctx, cfgManager, parser, events, logger)

	api.Start(ctx, cfgManager, metricsStore, alertStore, eng, logger, version)

	if *configPath != "" {
		go cfgManager.Watch(3*time.Second,
			func(next *config.Config) {
				logger.Info("config reloaded")
				if err := eng.UpdateConfig(next); err != nil {
					logger.Error("config apply failed", "err", err)
				}
			},
			func(err error) {
				logger.Warn("config watch error", "err", err)
			},
			ctx.Done(),
		)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	eng.Stop()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	eng.PersistStats(shutdownCtx)
	cancel()

	final := eng.Stats()
	logger.Info("session summary",
		"uptime", final.Uptime,
		"total_events", final.TotalEvents,
		"alerts", final.AlertCount,
		"distinct_transmitters", final.DistinctTransmitters,
	)
}
