// Package config provides runtime configuration values for the service.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds configuration knobs for the HTTP server, the message broker,
// and the read-model backend.
type Config struct {
	HTTPAddr        string
	ShutdownTimeout time.Duration

	// RabbitMQURL selects the AMQP broker; empty falls back to the
	// in-process broker (useful for local runs and tests).
	RabbitMQURL string
	// ExchangeName is the direct exchange shared with the inventory service.
	ExchangeName string
	// InventoryRoutingKey routes inventory requests on the exchange.
	InventoryRoutingKey string
	// InventoryRPCTimeout bounds the wait for an inventory reply. Zero means
	// wait indefinitely.
	InventoryRPCTimeout time.Duration

	// RedisAddr selects the Redis read-model backend; empty keeps the
	// in-memory collection.
	RedisAddr string
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoienv(key string, def int) int {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func durenvms(key string, defMs int) time.Duration {
	ms := atoienv(key, defMs)
	return time.Duration(ms) * time.Millisecond
}

func durenvs(key string, defSec int) time.Duration {
	sec := atoienv(key, defSec)
	return time.Duration(sec) * time.Second
}

// Load collects configuration from environment with defaults.
func Load() Config {
	return Config{
		HTTPAddr:            getenv("HTTP_ADDR", ":4999"),
		ShutdownTimeout:     durenvs("SHUTDOWN_TIMEOUT", 15),
		RabbitMQURL:         getenv("RABBIT_MQ_URL", ""),
		ExchangeName:        getenv("EXCHANGE_NAME", "ONLINE_SHOPPING_CART"),
		InventoryRoutingKey: getenv("INVENTORY_SERVICE", "INVENTORY_SERVICE"),
		InventoryRPCTimeout: durenvms("INVENTORY_RPC_TIMEOUT_MS", 0),
		RedisAddr:           getenv("REDIS_ADDR", ""),
	}
}
