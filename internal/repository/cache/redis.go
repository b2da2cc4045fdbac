package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spot-resolver/internal/config"
)

// healthKeyTTL - ключ проверки записи живёт недолго и не копится
const healthKeyTTL = 30 * time.Second

// Redis - общий клиент кеша датасетов и стримов карты одного процесса
type Redis struct {
	client *redis.Client
	logger *zap.Logger
	name   string
}

// NewRedis подключается к Redis. name - роль процесса (spot-api, spot-worker),
// уходит в CLIENT SETNAME и в ключ проверки записи.
func NewRedis(cfg *config.RedisConfig, name string, logger *zap.Logger) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:       fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:   cfg.Password,
		DB:         cfg.DB,
		ClientName: name,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("Redis connected",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.Int("db", cfg.DB),
		zap.String("client_name", name),
	)

	return &Redis{
		client: client,
		logger: logger,
		name:   name,
	}, nil
}

// NewRedisFromClient оборачивает готовый клиент (тесты, общий пул со стримами)
func NewRedisFromClient(client *redis.Client, logger *zap.Logger) *Redis {
	return &Redis{client: client, logger: logger, name: client.Options().ClientName}
}

func (r *Redis) Close() error {
	stats := r.client.PoolStats()
	r.logger.Info("Closing Redis connection",
		zap.Uint32("total_conns", stats.TotalConns),
		zap.Uint32("timeouts", stats.Timeouts))
	return r.client.Close()
}

// Health проверяет, что Redis принимает запись: после failover на реплику
// PING проходит, а SET кеша и XADD стримов падают с READONLY.
func (r *Redis) Health(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	if err := r.client.Set(ctx, r.healthKey(), time.Now().UTC().Format(time.RFC3339), healthKeyTTL).Err(); err != nil {
		return fmt.Errorf("redis write: %w", err)
	}
	return nil
}

func (r *Redis) healthKey() string {
	name := r.name
	if name == "" {
		name = "unnamed"
	}
	return "surf:health:" + name
}

func (r *Redis) Client() *redis.Client {
	return r.client
}
