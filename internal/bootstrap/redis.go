package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jonesrussell/seo-auditor/internal/config"
	"github.com/jonesrussell/seo-auditor/internal/logger"
)

const redisConnectTimeout = 2 * time.Second

// SetupRedis connects to Redis when enabled. Returns nil without error
// when Redis is not configured; the cache falls back to memory and the
// event publisher drops events.
func SetupRedis(cfg *config.Config, log logger.Logger) (*redis.Client, error) {
	if !cfg.Redis.Enabled {
		log.Info("redis disabled, using in-process fallbacks")
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), redisConnectTimeout)
	defer cancel()

	if pingErr := client.Ping(ctx).Err(); pingErr != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis: %w", pingErr)
	}

	log.Info("redis connection established", logger.String("address", cfg.Redis.Address))
	return client, nil
}
