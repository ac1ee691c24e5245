package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Danzskrtt/Sebucha-Order-Management-System/internal/adapter/events"
	"github.com/Danzskrtt/Sebucha-Order-Management-System/internal/adapter/handler"
	"github.com/Danzskrtt/Sebucha-Order-Management-System/internal/adapter/storage"
	"github.com/Danzskrtt/Sebucha-Order-Management-System/internal/core/idgen"
	"github.com/Danzskrtt/Sebucha-Order-Management-System/internal/core/service"
	"github.com/Danzskrtt/Sebucha-Order-Management-System/internal/port"
)

type config struct {
	httpAddr    string
	mysqlDSN    string
	redisAddr   string
	kafkaBroker string
	kafkaTopic  string
	baseURL     string
}

func loadConfig() config {
	return config{
		httpAddr:    envOr("HTTP_ADDR", ":8080"),
		mysqlDSN:    envOr("MYSQL_DSN", "root:root@tcp(localhost:3306)/sebucha?parseTime=true"),
		redisAddr:   os.Getenv("REDIS_ADDR"),
		kafkaBroker: os.Getenv("KAFKA_BROKER"),
		kafkaTopic:  envOr("KAFKA_TOPIC", "order-events"),
		baseURL:     envOr("BASE_URL", "http://localhost:8080"),
	}
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", "pos-core").Logger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := loadConfig()

	// MySQL is the sole source of truth; without it there is no service.
	db, err := sql.Open("mysql", cfg.mysqlDSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open mysql")
	}
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to ping mysql")
	}
	logger.Info().Msg("connected to mysql")

	repo := storage.NewMySQLAdapter(db)
	if err := repo.Migrate(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate schema")
	}

	// Redis and Kafka are optional fast paths; the core runs without them.
	var cache port.CacheRepository = storage.NoopCache{}
	var rdb *redis.Client
	if cfg.redisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.redisAddr, PoolSize: 100})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Fatal().Err(err).Msg("failed to connect redis")
		}
		cache = storage.NewRedisAdapter(rdb)
		logger.Info().Msg("connected to redis")
	}

	var publisher port.EventPublisher = events.NoopPublisher{}
	var kafkaPublisher *events.KafkaPublisher
	if cfg.kafkaBroker != "" {
		kafkaPublisher = events.NewKafkaPublisher(cfg.kafkaBroker, cfg.kafkaTopic)
		publisher = kafkaPublisher
		logger.Info().Str("topic", cfg.kafkaTopic).Msg("publishing order events to kafka")
	}

	ids := idgen.New()
	qr := service.PickupQRGenerator{BaseURL: cfg.baseURL}

	orderService := service.NewOrderService(repo, cache, publisher, ids, qr, logger)
	statusService := service.NewStatusService(repo, cache, publisher, logger)
	inventoryService := service.NewInventoryService(repo, ids, logger)
	metricsService := service.NewMetricsService(repo, cache, logger)

	httpHandler := handler.NewHTTPHandler(orderService, statusService, inventoryService, metricsService, logger)
	httpServer := &http.Server{
		Addr:    cfg.httpAddr,
		Handler: handler.NewRouter(httpHandler),
	}

	go func() {
		logger.Info().Str("addr", cfg.httpAddr).Msg("HTTP server listening")
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("HTTP server error")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)
	logger.Info().Msg("HTTP server stopped")

	if kafkaPublisher != nil {
		kafkaPublisher.Close()
	}
	if rdb != nil {
		rdb.Close()
	}
	db.Close()
	logger.Info().Msg("connections closed")
}
