package bootstrap

import (
	"context"
	"crypto/tls"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/novavoice/nova-voice/internal/assessment"
	appconfig "github.com/novavoice/nova-voice/internal/config"
	"github.com/novavoice/nova-voice/pkg/logging"
)

// BuildRedisClient returns a client for REDIS_ADDR, or nil when unset. With
// verify, an unreachable server is logged and treated as unset.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil {
		return nil
	}
	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}

	opts := &redis.Options{Addr: addr, Password: cfg.RedisPassword}
	if cfg.RedisTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(opts)
	if !verify {
		return client
	}

	if ctx == nil {
		ctx = context.Background()
	}
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis unreachable; continuing without it", "addr", addr, "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

// BuildSessionStore keeps questionnaire sessions in Redis when a client is
// available and in process memory otherwise.
func BuildSessionStore(redisClient *redis.Client, cfg *appconfig.Config, logger *logging.Logger) assessment.SessionStore {
	if logger == nil {
		logger = logging.Default()
	}
	ttl := cfg.SessionTTL
	if redisClient != nil {
		logger.Info("assessment sessions stored in redis", "ttl", ttl)
		return assessment.NewRedisSessionStore(redisClient, ttl)
	}
	logger.Warn("redis not configured; assessment sessions kept in memory", "ttl", ttl)
	return assessment.NewMemorySessionStore(ttl)
}
