package app

import (
	"context"
	"errors"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/coursehub/internal/clients/redis"
	"github.com/yungbote/coursehub/internal/config"
	"github.com/yungbote/coursehub/internal/platform/logger"
)

type Clients struct {
	// Redis is nil when no address is configured or it could not be reached.
	Redis *goredis.Client
}

// WireClients never fails; an unset or unreachable Redis disables the
// generation cache.
func WireClients(ctx context.Context, log *logger.Logger, cfg *config.Config) Clients {
	log.Info("Wiring clients...")

	rdb, err := redis.NewClient(ctx, log, cfg.Cache.RedisAddr)
	switch {
	case errors.Is(err, redis.ErrNoAddr):
		log.Info("generation cache disabled (REDIS_ADDR not set)")
		return Clients{}
	case err != nil:
		log.Warn("generation cache disabled", "error", err)
		return Clients{}
	}
	return Clients{Redis: rdb}
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
		c.Redis = nil
	}
}
