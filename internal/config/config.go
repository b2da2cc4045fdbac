package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Cache     CacheConfig
	Log       LogConfig
	Worker    WorkerConfig
	Engine    EngineConfig
	Scheduler SchedulerConfig
	Auth      AuthConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	Env          string
	AllowOrigins string
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxConns        int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CacheConfig struct {
	DatasetCacheTTL  time.Duration
	ForecastCacheTTL time.Duration
}

type LogConfig struct {
	Level string
}

type WorkerConfig struct {
	Enabled           bool
	ConsumerGroup     string
	StreamReadTimeout time.Duration
	ClaimIdle         time.Duration
	BatchSize         int
	MaxSessions       int
}

// EngineConfig - параметры движка выбора спота
type EngineConfig struct {
	NearestRadiusKm float64
	NoticeTimeout   time.Duration
}

type SchedulerConfig struct {
	Enabled         bool
	RefreshInterval time.Duration
	WarmDays        int
	WarmTimes       []string
}

// AuthConfig - клиент с обновлением сессии (refresh token)
type AuthConfig struct {
	RefreshURL     string
	RequestTimeout time.Duration
}

func Load() (*Config, error) {
	return LoadFile(".env")
}

// LoadFile читает конфиг из файла и окружения; отсутствующий файл не ошибка
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var pathErr *fs.PathError
		if !errors.As(err, &pathErr) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: v.GetString("API_HOST"),
			Port: v.GetInt("API_PORT"),
			Env:  v.GetString("API_ENV"),

			AllowOrigins: v.GetString("CORS_ALLOW_ORIGINS"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetInt("DB_PORT"),
			User:            v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			DBName:          v.GetString("DB_NAME"),
			SSLMode:         v.GetString("DB_SSLMODE"),
			MaxConns:        v.GetInt("DB_MAX_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: time.Duration(v.GetInt("DB_CONN_MAX_LIFETIME")) * time.Second,
			ConnMaxIdleTime: time.Duration(v.GetInt("DB_CONN_MAX_IDLE_TIME")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetInt("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Cache: CacheConfig{
			DatasetCacheTTL:  time.Duration(v.GetInt("DATASET_CACHE_TTL")) * time.Second,
			ForecastCacheTTL: time.Duration(v.GetInt("FORECAST_CACHE_TTL")) * time.Second,
		},
		Log: LogConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
		Worker: WorkerConfig{
			Enabled:           v.GetBool("WORKER_ENABLED"),
			ConsumerGroup:     v.GetString("WORKER_CONSUMER_GROUP"),
			StreamReadTimeout: time.Duration(v.GetInt("WORKER_STREAM_READ_TIMEOUT")) * time.Millisecond,
			ClaimIdle:         time.Duration(v.GetInt("WORKER_CLAIM_IDLE_MS")) * time.Millisecond,
			BatchSize:         v.GetInt("WORKER_BATCH_SIZE"),
			MaxSessions:       v.GetInt("WORKER_MAX_SESSIONS"),
		},
		Engine: EngineConfig{
			NearestRadiusKm: v.GetFloat64("NEAREST_RADIUS_KM"),
			NoticeTimeout:   time.Duration(v.GetInt("NOTICE_TIMEOUT_MS")) * time.Millisecond,
		},
		Scheduler: SchedulerConfig{
			Enabled:         v.GetBool("SCHEDULER_ENABLED"),
			RefreshInterval: time.Duration(v.GetInt("SCHEDULER_REFRESH_MINUTES")) * time.Minute,
			WarmDays:        v.GetInt("SCHEDULER_WARM_DAYS"),
			WarmTimes:       parseList(v.GetString("SCHEDULER_WARM_TIMES")),
		},
		Auth: AuthConfig{
			RefreshURL:     v.GetString("AUTH_REFRESH_URL"),
			RequestTimeout: time.Duration(v.GetInt("AUTH_REQUEST_TIMEOUT")) * time.Second,
		},
	}

	// Set default values if not provided
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Cache.DatasetCacheTTL == 0 {
		cfg.Cache.DatasetCacheTTL = 3 * time.Hour
	}
	if cfg.Cache.ForecastCacheTTL == 0 {
		cfg.Cache.ForecastCacheTTL = 3 * time.Hour
	}
	if cfg.Worker.ConsumerGroup == "" {
		cfg.Worker.ConsumerGroup = "map-session-workers"
	}
	if cfg.Worker.StreamReadTimeout == 0 {
		cfg.Worker.StreamReadTimeout = 1000 * time.Millisecond
	}
	if cfg.Worker.ClaimIdle == 0 {
		cfg.Worker.ClaimIdle = 30 * time.Second
	}
	if cfg.Worker.BatchSize == 0 {
		cfg.Worker.BatchSize = 20
	}
	if cfg.Worker.MaxSessions == 0 {
		cfg.Worker.MaxSessions = 1000
	}
	if cfg.Engine.NearestRadiusKm == 0 {
		cfg.Engine.NearestRadiusKm = 100
	}
	if cfg.Engine.NoticeTimeout == 0 {
		cfg.Engine.NoticeTimeout = 4 * time.Second
	}
	if cfg.Scheduler.RefreshInterval == 0 {
		cfg.Scheduler.RefreshInterval = 30 * time.Minute
	}
	if cfg.Scheduler.WarmDays == 0 {
		cfg.Scheduler.WarmDays = 3
	}
	if cfg.Auth.RequestTimeout == 0 {
		cfg.Auth.RequestTimeout = 10 * time.Second
	}

	return cfg, nil
}

func parseList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}
