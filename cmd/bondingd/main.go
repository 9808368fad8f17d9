package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/tdex-bondingcurve/internal/config"
	"github.com/tdex-network/tdex-bondingcurve/pkg/stats"
)

func main() {
	if err := config.InitConfig(); err != nil {
		log.WithError(err).Fatal("failed to load config")
	}
	log.SetLevel(log.Level(config.GetInt(config.LogLevelKey)))

	ctx, cancel := context.WithCancel(context.Background())

	d, err := newDaemon(ctx)
	if err != nil {
		log.WithError(err).Fatal("failed to start daemon")
	}

	profilerEnabled := config.GetBool(config.EnableProfilerKey)
	if profilerEnabled {
		interval := time.Duration(config.GetInt(config.StatsIntervalKey)) * time.Second
		stats.EnableMemoryStatistics(ctx, interval, nil, "")
	}

	log.Info("starting daemon")

	if err := d.httpSvc.Start(); err != nil {
		d.close()
		log.WithError(err).Fatal("failed to start http interface")
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	<-sigChan

	log.Info("shutting down daemon")

	d.httpSvc.Stop()
	cancel()

	if profilerEnabled {
		dumpFile := filepath.Join(
			config.GetDatadir(), config.ProfilerLocation, "metrics.prom",
		)
		if err := stats.DumpPrometheus(d.registry, dumpFile); err != nil {
			log.WithError(err).Warn("failed to dump metrics")
		}
	}

	d.close()
	log.Info("exiting")
}
