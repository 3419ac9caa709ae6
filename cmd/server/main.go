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

	"github.com/rl1809/inventory-service/internal/adapter/handler"
	"github.com/rl1809/inventory-service/internal/adapter/messaging"
	"github.com/rl1809/inventory-service/internal/adapter/storage"
	"github.com/rl1809/inventory-service/internal/config"
	"github.com/rl1809/inventory-service/internal/core/domain"
	"github.com/rl1809/inventory-service/internal/core/service"
)

func main() {
	cfg := config.Load()
	logger := config.NewLogger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize MySQL
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect mysql")
	}
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		logger.WithError(err).Fatal("failed to ping mysql")
	}
	logger.Info("connected to mysql")

	// Initialize Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		PoolSize: 100,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.WithError(err).Fatal("failed to connect redis")
	}
	logger.Info("connected to redis")

	// Initialize adapters
	mysqlAdapter := storage.NewMySQLAdapter(db)
	redisAdapter := storage.NewRedisAdapter(rdb, cfg.CacheTTL)
	publisher := messaging.NewKafkaPublisher(cfg.KafkaBrokers)

	// Initialize services
	inventoryService := service.NewInventoryService(mysqlAdapter, redisAdapter, publisher, logger)
	eventConsumer := service.NewProductEventConsumer(mysqlAdapter, inventoryService, logger)

	// Start the product event consumer
	kafkaConsumer := messaging.NewKafkaConsumer(
		cfg.KafkaBrokers,
		cfg.KafkaGroupID,
		[]string{domain.ProductEventCreated, domain.ProductEventUpdated, domain.ProductEventDeleted},
		eventConsumer,
		logger,
	)
	consumerDone := make(chan struct{})
	go func() {
		defer close(consumerDone)
		kafkaConsumer.Run(ctx)
	}()
	logger.Info("kafka consumer started")

	// Initialize HTTP server
	httpHandler := handler.NewHTTPHandler(inventoryService, logger)
	mux := http.NewServeMux()
	httpHandler.Register(mux)

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: mux,
	}

	go func() {
		logger.WithField("addr", cfg.HTTPAddr).Info("HTTP server listening")
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.WithError(err).Error("HTTP server error")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)
	logger.Info("HTTP server stopped")

	cancel()
	<-consumerDone
	if err := kafkaConsumer.Close(); err != nil {
		logger.WithError(err).Error("failed to close kafka consumer")
	}
	if err := publisher.Close(); err != nil {
		logger.WithError(err).Error("failed to close kafka publisher")
	}
	logger.Info("kafka connections closed")

	rdb.Close()
	db.Close()
	logger.Info("connections closed")
}
