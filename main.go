package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"ms-schedule/internal/auth"
	"ms-schedule/internal/config"
	"ms-schedule/internal/database"
	"ms-schedule/internal/database/migrations"
	"ms-schedule/internal/featureflag"
	"ms-schedule/internal/flash"
	"ms-schedule/internal/kafka"
	"ms-schedule/internal/logger"
	"ms-schedule/internal/metrics"
	"ms-schedule/internal/schedule"
	"ms-schedule/internal/schedule/db"
	"ms-schedule/internal/schedule/schedule_api"
)

func newVerifier(ctx context.Context, cfg config.AuthConfig, log *logger.Logger) auth.Verifier {
	switch {
	case cfg.OIDCIssuer != "":
		v, err := auth.NewOIDCVerifier(ctx, cfg.OIDCIssuer)
		if err != nil {
			log.Fatal("AUTH", err.Error())
		}
		log.Info("AUTH", fmt.Sprintf("Verifying tokens against %s", cfg.OIDCIssuer))
		return v
	case cfg.JWTSecret != "":
		log.Warn("AUTH", "OIDC_ISSUER not set, accepting HMAC-signed tokens")
		return auth.NewHMACVerifier(cfg.JWTSecret)
	default:
		log.Warn("AUTH", "No token verifier configured, every viewer is anonymous")
		return nil
	}
}

func newPublisher(cfg config.KafkaConfig, log *logger.Logger) (schedule.Publisher, func()) {
	if !cfg.Enabled {
		log.Info("KAFKA", "Kafka disabled, favourite events are not published")
		return kafka.NopPublisher{}, func() {}
	}

	if err := kafka.EnsureTopicsExist(cfg.Brokers, []string{cfg.FavouriteTopic}, log); err != nil {
		log.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
	}
	producer := kafka.NewProducer(cfg.Brokers, cfg.FavouriteTopic, log)
	log.Info("KAFKA", fmt.Sprintf("Publishing favourite events to %s", cfg.FavouriteTopic))
	return producer, func() {
		if err := producer.Close(); err != nil {
			log.Error("KAFKA", fmt.Sprintf("Failed to close producer: %v", err))
		}
	}
}

func main() {
	log := logger.NewLogger()
	defer log.Close()

	log.Info("APP", "Starting Schedule Service initialization")

	if err := godotenv.Load(); err != nil {
		log.Warn("CONFIG", ".env file not found, using environment variables")
	} else {
		log.Info("CONFIG", "Loaded environment variables from .env file")
	}
	cfg := config.Load()
	ctx := context.Background()

	bunDB, err := database.Connect(cfg.Database, log)
	if err != nil {
		log.Fatal("DATABASE", err.Error())
	}
	defer bunDB.Close()

	if cfg.Migrations.AutoMigrate {
		runner := migrations.NewRunner(cfg.Database.DSN, cfg.Migrations, log)
		err := runner.RunMigrations()
		if closeErr := runner.Close(); closeErr != nil {
			log.Warn("MIGRATE", closeErr.Error())
		}
		if err != nil {
			log.Fatal("MIGRATE", err.Error())
		}
	}

	redisClient, err := flash.Connect(ctx, cfg.Redis.Addr, log)
	if err != nil {
		log.Fatal("REDIS", err.Error())
	}
	defer redisClient.Close()

	publisher, closePublisher := newPublisher(cfg.Kafka, log)
	defer closePublisher()

	m := metrics.New()
	flags := featureflag.New(cfg.Features)

	normalizer := schedule.NewNormalizer(cfg.Conference.Location(), cfg.Conference.Year)
	service := schedule.NewScheduleService(&db.DB{Bun: bunDB}, normalizer, publisher, log)
	handler := schedule_api.NewHandler(service, flash.NewStore(redisClient, cfg.Redis.FlashTTL), m, log, cfg)

	log.Info("HTTP", "Setting up router and middleware")
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(log.Middleware)

	r.Handle("/metrics", m.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(newVerifier(ctx, cfg.Auth, log), log))
		r.Use(flags.Require(featureflag.Schedule))
		handler.RegisterRoutes(r)
		log.Info("ROUTER", fmt.Sprintf("Schedule routes registered, line-up under %s", normalizer.LinkPrefix))
	})

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP", fmt.Sprintf("Schedule Service running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	log.Info("APP", "Service started successfully, waiting for shutdown signal")
	<-stop

	log.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	ctxShutdown, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Error("HTTP", fmt.Sprintf("Server Shutdown Failed: %v", err))
	} else {
		log.Info("HTTP", "Schedule Service shutdown complete")
	}
}
