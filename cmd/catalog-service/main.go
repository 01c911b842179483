package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"ms-catalog/internal/config"
	"ms-catalog/internal/database/migrations"
	"ms-catalog/internal/kafka"
	"ms-catalog/internal/logger"
	"ms-catalog/internal/spaces"
	spaces_api "ms-catalog/internal/spaces/api"
	spaces_db "ms-catalog/internal/spaces/db"
	"ms-catalog/internal/storage"
	storage_api "ms-catalog/internal/storage/api"
	"ms-catalog/internal/tours"
	tours_api "ms-catalog/internal/tours/api"
	tours_db "ms-catalog/internal/tours/db"
	"ms-catalog/internal/utils"
)

func verifyConnections(ctx context.Context, cfg *config.Config, logger *logger.Logger) (*bun.DB, *redis.Client) {
	var sqldb *sql.DB
	var err error
	maxRetries := 5

	for i := 0; i < maxRetries; i++ {
		logger.Info("DATABASE", fmt.Sprintf("Attempting to connect to PostgreSQL (attempt %d/%d)", i+1, maxRetries))
		sqldb, err = sql.Open("postgres", cfg.Database.DSN)
		if err != nil {
			logger.Error("DATABASE", fmt.Sprintf("Failed to open PostgreSQL: %v", err))
			time.Sleep(2 * time.Second)
			continue
		}

		err = sqldb.Ping()
		if err == nil {
			break
		}

		logger.Error("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL: %v", err))
		if i < maxRetries-1 {
			time.Sleep(2 * time.Second)
		}
	}

	if err != nil {
		logger.Fatal("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL after %d attempts: %v", maxRetries, err))
	}

	sqldb.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.Database.MaxLifetime)

	logger.Info("DATABASE", "✅ PostgreSQL connection successful")

	bunDB := bun.NewDB(sqldb, pgdialect.New())

	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.Redis.Addr,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal("DATABASE", fmt.Sprintf("Redis connection error: %v", err))
	}
	logger.Info("DATABASE", fmt.Sprintf("✅ Redis connection successful to %s", cfg.Redis.Addr))

	return bunDB, redisClient
}

func main() {
	logger := logger.NewLogger()
	defer logger.Close()

	logger.Info("APP", "Starting Catalog Service initialization")

	if err := godotenv.Load(); err != nil {
		logger.Warn("CONFIG", ".env file not found, using environment variables")
	} else {
		logger.Info("CONFIG", "Loaded environment variables from .env file")
	}

	cfg := config.Load()
	ctx := context.Background()

	logger.Info("APP", "Verifying database connections")
	bunDB, redisClient := verifyConnections(ctx, cfg, logger)
	defer bunDB.Close()
	defer redisClient.Close()

	migrationRunner := migrations.NewRunner(bunDB, migrations.DefaultOptions())
	if err := migrationRunner.RunMigrations(); err != nil {
		logger.Fatal("DATABASE", fmt.Sprintf("Failed to run migrations: %v", err))
	}
	defer migrationRunner.Close()

	var producer *kafka.Producer
	if cfg.Kafka.MockMode || !cfg.Kafka.Enabled {
		logger.Info("KAFKA", "Kafka mock mode enabled, events will be logged only")
		producer = kafka.NewMockProducer()
	} else {
		logger.Info("KAFKA", fmt.Sprintf("Using Kafka brokers: %v", cfg.Kafka.Brokers))
		producer = kafka.NewProducer(cfg.Kafka.Brokers)

		if err := kafka.EnsureTopicsExist(cfg.Kafka.Brokers, kafka.RequiredTopics()); err != nil {
			logger.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
		} else {
			logger.Info("KAFKA", "Required topics ensured successfully")
		}
	}
	defer producer.Close()

	fileStore, err := storage.NewFileStore(cfg.Storage.Dir, cfg.Storage.PublicBaseURL)
	if err != nil {
		logger.Fatal("STORAGE", fmt.Sprintf("Failed to initialize file store: %v", err))
	}
	tokenStore := storage.NewTokenStore(redisClient, cfg.Storage.UploadTokenTTL)

	tourService := tours.NewTourService(&tours_db.DB{Bun: bunDB}, producer)
	spaceService := spaces.NewSpaceService(&spaces_db.DB{Bun: bunDB}, producer)

	tourHandler := tours_api.NewHandler(tourService, logger)
	spaceHandler := spaces_api.NewHandler(spaceService, logger)
	storageHandler := storage_api.NewHandler(tokenStore, fileStore, cfg.Storage.UploadBaseURL, logger)

	logger.Info("HTTP", "Setting up router and middleware")
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(utils.SuccessResponse("catalog service is healthy", nil))
	})

	r.Route("/api/catalog", func(r chi.Router) {
		tourHandler.RegisterRoutes(r)
		spaceHandler.RegisterRoutes(r)
	})
	logger.Info("ROUTER", "Tour and space routes registered under /api/catalog")

	r.Route("/api/storage", func(r chi.Router) {
		storageHandler.RegisterRoutes(r)
	})
	logger.Info("ROUTER", "Storage routes registered under /api/storage")

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("HTTP", fmt.Sprintf("🚀 Catalog Service running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	logger.Info("APP", "Service started successfully, waiting for shutdown signal")
	<-stop

	logger.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	ctxShutdown, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		logger.Error("HTTP", fmt.Sprintf("Server Shutdown Failed: %v", err))
	} else {
		logger.Info("HTTP", "✅ Catalog Service shutdown complete")
	}
}
