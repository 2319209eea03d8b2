package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"ms-schedule/internal/calendar"
	"ms-schedule/internal/config"
	"ms-schedule/internal/database"
	"ms-schedule/internal/logger"
	"ms-schedule/internal/metrics"
	"ms-schedule/internal/schedule/db"
)

func main() {
	cronSpec := flag.String("cron", "", "repeat on this cron spec instead of running once (defaults to IMPORT_CRON)")
	flag.Parse()
	os.Exit(run(*cronSpec))
}

func run(cronSpec string) int {
	log := logger.NewLogger()
	defer log.Close()

	_ = godotenv.Load()
	cfg := config.Load()
	if cronSpec == "" {
		cronSpec = cfg.Import.CronSpec
	}

	bunDB, err := database.Connect(cfg.Database, log)
	if err != nil {
		log.Error("DATABASE", err.Error())
		return 1
	}
	defer bunDB.Close()

	m := metrics.New()
	importer := calendar.NewImporter(&db.DB{Bun: bunDB}, cfg.Import.HTTPTimeout, log, m)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// one-shot runs end with the summary line ImportAll logs
	if cronSpec == "" {
		if err := importer.ImportAll(ctx); err != nil {
			log.Error("IMPORT", err.Error())
			return 1
		}
		return 0
	}

	c := cron.New()
	if _, err := c.AddFunc(cronSpec, func() {
		if err := importer.ImportAll(ctx); err != nil {
			log.Error("IMPORT", err.Error())
		}
	}); err != nil {
		log.Error("IMPORT", fmt.Sprintf("Invalid cron spec %q: %v", cronSpec, err))
		return 1
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	server := &http.Server{
		Addr:              cfg.Import.MetricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("HTTP", fmt.Sprintf("Import metrics on %s/metrics", cfg.Import.MetricsAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP", fmt.Sprintf("Metrics server error: %v", err))
			stop()
		}
	}()

	log.Info("IMPORT", fmt.Sprintf("Importing calendar sources on %q", cronSpec))
	c.Start()
	<-ctx.Done()

	log.Info("IMPORT", "Shutdown signal received, waiting for running import")
	<-c.Stop().Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("HTTP", fmt.Sprintf("Metrics server shutdown: %v", err))
	}
	return 0
}
