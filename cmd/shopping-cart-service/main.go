// Package main boots the shopping cart HTTP service.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fairyhunter13/shopping-cart-service/internal/broker"
	"github.com/fairyhunter13/shopping-cart-service/internal/config"
	"github.com/fairyhunter13/shopping-cart-service/internal/details"
	"github.com/fairyhunter13/shopping-cart-service/internal/eventstore"
	httpapi "github.com/fairyhunter13/shopping-cart-service/internal/http"
	"github.com/fairyhunter13/shopping-cart-service/internal/inventory"
	"github.com/fairyhunter13/shopping-cart-service/internal/obs"
)

func main() {
	cfg := config.Load()
	obs.InitLogger()
	obs.Logger.Info("service_starting")

	store := eventstore.NewMemoryStore()

	var carts details.Collection = details.NewMemoryCollection()
	if cfg.RedisAddr != "" {
		carts = details.NewRedisCollection(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}))
		obs.Logger.Info("read_model_backend", "backend", "redis", "addr", cfg.RedisAddr)
	}

	var gateway *broker.Gateway
	if cfg.RabbitMQURL != "" {
		gateway = broker.NewGateway(broker.Dial(cfg.RabbitMQURL))
	} else {
		gateway = broker.NewGateway(broker.NewMemoryBroker().Dialer())
		obs.Logger.Warn("broker_in_memory", "reason", "RABBIT_MQ_URL not set")
	}
	inv := inventory.NewClient(gateway, cfg.ExchangeName, cfg.InventoryRoutingKey)

	app := httpapi.NewApp(cfg, store, carts, inv)
	mux := httpapi.NewRouter(app)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		obs.Logger.Info("http_listen", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			obs.Logger.Error("http_server_error", "error", err)
			os.Exit(1)
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	s := <-sigc
	obs.Logger.Info("shutdown_signal", "signal", s.String())

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		obs.Logger.Error("http_shutdown_error", "error", err)
	}
	obs.Logger.Info("service_stopped")
}
