package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"shopfront/internal/config"
	"shopfront/internal/domain"
	"shopfront/internal/logger"
	"shopfront/internal/server"
	"shopfront/internal/service"
	"shopfront/internal/store"
)

// seedCatalog returns the fixed opening inventory.
func seedCatalog() []domain.Item {
	return []domain.Item{
		{ID: "umb_normal", Name: "Normal Umbrella", BasePrice: decimal.NewFromFloat(15.00), InitialStock: 40, CurrentStock: 40},
		{ID: "umb_love", Name: "Love Umbrella", BasePrice: decimal.NewFromFloat(20.00), InitialStock: 30, CurrentStock: 30},
		{ID: "umb_totoro", Name: "Totoro Umbrella", BasePrice: decimal.NewFromFloat(50.00), InitialStock: 10, CurrentStock: 10},
	}
}

func gracefulShutdown(apiServer *server.Server, logger *zap.Logger, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	logger.Info("Shutting down gracefully, press Ctrl+C again to force")
	stop() // Allow Ctrl+C to force shutdown

	// Give in-flight requests 30 seconds to finish
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := apiServer.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	if err := apiServer.Close(); err != nil {
		logger.Error("Error closing server resources", zap.Error(err))
	}

	logger.Info("Server exiting")

	done <- true
}

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.Server.Env)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting storefront API",
		zap.String("env", cfg.Server.Env),
		zap.String("port", cfg.Server.Port),
	)

	// All shop state lives in process memory for the lifetime of the server.
	catalog := store.NewCatalogStore(seedCatalog())
	orders := store.NewOrderStore()

	rates := service.Rates{
		ServiceCharge: decimal.NewFromFloat(cfg.Charges.ServiceRate),
		Tax:           decimal.NewFromFloat(cfg.Charges.TaxRate),
	}
	shopService := service.NewShopService(catalog, orders, cfg.MarkupTiers(), rates)

	// Rate limiting is best-effort: if redis is unreachable the middleware
	// lets requests through, so a dead client is only noise in the logs.
	redisClient := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	srv := server.NewServer(cfg, log, shopService, redisClient)

	done := make(chan bool, 1)

	go gracefulShutdown(srv, log, done)

	log.Info("Server listening", zap.String("addr", srv.Addr))

	err = srv.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		log.Fatal("HTTP server error", zap.Error(err))
	}

	<-done
	log.Info("Graceful shutdown complete")
}
