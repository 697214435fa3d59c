package app

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/adanyl0v/tracklin/internal/config"
)

const redisPingTimeout = 2 * time.Second

var globalRedisClient *redis.Client

// ConnectRedis connects the rate limiter store. Redis is optional: with no
// address configured or an unreachable server the client stays nil and
// rate limiting is skipped.
func ConnectRedis() {
	cfg := config.Global().Redis
	if cfg.Addr == "" {
		globalLogger.Info().Msg("redis address not set, rate limiting disabled")
		return
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()

	err := client.Ping(ctx).Err()
	if err != nil {
		globalLogger.Error().
			Err(err).
			Str("addr", cfg.Addr).
			Msg("failed to ping redis, rate limiting disabled")
		_ = client.Close()
		return
	}

	globalRedisClient = client
	globalLogger.Info().
		Str("addr", cfg.Addr).
		Msg("connected to redis")
}

func DisconnectRedis() {
	if globalRedisClient == nil {
		return
	}
	err := globalRedisClient.Close()
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to close redis client")
		return
	}
	globalLogger.Info().Msg("disconnected from redis")
}
