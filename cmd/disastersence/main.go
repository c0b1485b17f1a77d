package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/GhoshChinmay/DisasterSence-sub000/internal/api"
	"github.com/GhoshChinmay/DisasterSence-sub000/internal/config"
	"github.com/GhoshChinmay/DisasterSence-sub000/internal/events"
	"github.com/GhoshChinmay/DisasterSence-sub000/internal/hub"
	"github.com/GhoshChinmay/DisasterSence-sub000/internal/ingestion"
	"github.com/GhoshChinmay/DisasterSence-sub000/internal/logging"
	"github.com/GhoshChinmay/DisasterSence-sub000/internal/observability"
	"github.com/GhoshChinmay/DisasterSence-sub000/internal/seed"
	"github.com/GhoshChinmay/DisasterSence-sub000/internal/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Fatal while loading config: %v", err)
	}
	logging.Setup(cfg.Logging.Level)

	slog.Info("Server starting", "host", cfg.Server.Host, "port", cfg.Server.Port)

	st, closeStore, err := openStore(cfg)
	if err != nil {
		logging.Fatalf("Failed to initialize store: %v", err)
	}
	defer closeStore()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Seed.SampleData {
		if err := seed.Load(ctx, st); err != nil {
			logging.Fatalf("Failed to seed sample data: %v", err)
		}
	}

	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)

	broadcastHub := hub.NewHub(st, metrics)

	var publisher ingestion.DisasterPublisher
	var kafkaPublisher *events.KafkaPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaPublisher = events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, metrics)
		publisher = kafkaPublisher
		slog.Info("kafka event stream enabled", "topic", cfg.Kafka.Topic)
	}

	scheduler := ingestion.NewScheduler(st, broadcastHub, publisher, metrics, clockwork.NewRealClock())
	registerSources(scheduler, cfg)
	scheduler.Start(ctx)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
	}))
	router.Use(api.RateLimitMiddleware(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst))

	handler := api.NewHandler(st, broadcastHub, scheduler, registry)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down...")

	cancel()
	scheduler.Stop()
	broadcastHub.Close()
	if kafkaPublisher != nil {
		if err := kafkaPublisher.Close(); err != nil {
			slog.Error("kafka publisher close error", "error", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
}

// openStore picks the backend: SQLite when DB_PATH is set, in-memory
// otherwise.
func openStore(cfg *config.Config) (store.Store, func(), error) {
	if cfg.DB.Path == "" {
		slog.Info("using in-memory store")
		return store.NewMemoryStore(), func() {}, nil
	}

	s, err := store.NewSQLiteStore(cfg.DB.Path)
	if err != nil {
		return nil, nil, err
	}
	slog.Info("using sqlite store", "path", cfg.DB.Path)
	return s, func() {
		if err := s.Close(); err != nil {
			slog.Error("store close error", "error", err)
		}
	}, nil
}

func registerSources(scheduler *ingestion.Scheduler, cfg *config.Config) {
	gov := cfg.Sources.Government
	scheduler.Register(
		ingestion.NewGovernmentConnector("NDMA API", gov.FeedURLs, gov.PortalURL, gov.Timeout),
		gov.PollInterval, gov.Timeout,
	)

	weather := cfg.Sources.Weather
	scheduler.Register(
		ingestion.NewWeatherConnector("IMD API", weather.BaseURL, weather.APIKey, weather.Cities, weather.Timeout),
		weather.PollInterval, weather.Timeout,
	)

	social := cfg.Sources.Social
	scheduler.Register(
		ingestion.NewSocialConnector("Twitter API", social.BaseURL, social.BearerToken, social.Keywords, social.Timeout),
		social.PollInterval, social.Timeout,
	)

	prober := cfg.Sources.Prober
	scheduler.Register(
		ingestion.NewStatusProber("ISRO BHUVAN", prober.URL, prober.SlowThreshold, prober.Timeout),
		prober.PollInterval, prober.Timeout,
	)
}
