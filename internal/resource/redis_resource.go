package resource

import (
	"fmt"
	"sync"

	"compress-bot/pkg/config"
	"compress-bot/pkg/logger"
	"compress-bot/pkg/manager"
	"compress-bot/pkg/redisclient"
)

var (
	redisResourceOnce sync.Once
	redisSingleton    *RedisResource
)

// RedisResource manages the lifecycle of the shared Redis client.
type RedisResource struct {
	client *redisclient.Client
}

// DefaultRedisResource returns the global Redis resource instance.
func DefaultRedisResource() *RedisResource {
	redisResourceOnce.Do(func() {
		redisSingleton = &RedisResource{}
	})
	return redisSingleton
}

// MustOpen establishes the Redis connection using global configuration.
func (r *RedisResource) MustOpen() {
	if r.client != nil {
		return
	}

	cfg := config.GetGlobalConfig()
	if cfg == nil {
		panic("global config not initialized before RedisResource")
	}

	client, err := redisclient.New(cfg.Redis)
	if err != nil {
		panic(fmt.Sprintf("failed to connect redis: %v", err))
	}
	r.client = client

	logger.Info("Redis resource initialized", map[string]interface{}{
		"addr": cfg.Redis.GetRedisAddr(),
		"db":   cfg.Redis.DB,
	})
}

// GetClient returns the shared redis client wrapper.
func (r *RedisResource) GetClient() *redisclient.Client {
	return r.client
}

// Close releases pooled connections.
func (r *RedisResource) Close() {
	if r.client != nil {
		_ = r.client.Close()
	}
}

// RedisResourcePlugin registers the Redis resource with the manager.
type RedisResourcePlugin struct{}

func (p *RedisResourcePlugin) Name() string {
	return "redisResource"
}

func (p *RedisResourcePlugin) MustCreateResource() manager.Resource {
	return DefaultRedisResource()
}
