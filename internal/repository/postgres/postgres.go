package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/spot-resolver/internal/config"
)

// ErrSchemaNotReady - БД доступна, но миграции прогнаны не все.
// New его не проверяет, это делает Health при старте API и в /health.
var ErrSchemaNotReady = errors.New("database schema is not migrated")

// requiredTables - таблицы, без которых резолвер и сохранённые споты не работают
var requiredTables = []string{"surf_forecasts", "saved_entries"}

const applicationName = "spot-resolver"

// Дефолты пула: нагрузка на БД - загрузка датасетов раз в TTL и CRUD сохранённых
const (
	defaultMaxConns        = 10
	defaultMaxIdleConns    = 5
	defaultConnMaxLifetime = 30 * time.Minute
	defaultConnMaxIdleTime = 5 * time.Minute
)

type DB struct {
	*sqlx.DB
	logger *zap.Logger
}

// PoolSettings - параметры database/sql пула после подстановки дефолтов
type PoolSettings struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// NewPoolSettings подставляет дефолты вместо нулей; idle не больше open
func NewPoolSettings(cfg *config.DatabaseConfig) PoolSettings {
	p := PoolSettings{
		MaxOpenConns:    cfg.MaxConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.ConnMaxIdleTime,
	}
	if p.MaxOpenConns <= 0 {
		p.MaxOpenConns = defaultMaxConns
	}
	if p.MaxIdleConns <= 0 {
		p.MaxIdleConns = defaultMaxIdleConns
	}
	if p.MaxIdleConns > p.MaxOpenConns {
		p.MaxIdleConns = p.MaxOpenConns
	}
	if p.ConnMaxLifetime <= 0 {
		p.ConnMaxLifetime = defaultConnMaxLifetime
	}
	if p.ConnMaxIdleTime <= 0 {
		p.ConnMaxIdleTime = defaultConnMaxIdleTime
	}
	return p
}

// DSN собирает строку подключения key=value; application_name виден в pg_stat_activity
func DSN(cfg *config.DatabaseConfig) string {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s application_name=%s",
		dsnValue(cfg.Host), cfg.Port, dsnValue(cfg.User), dsnValue(cfg.Password),
		dsnValue(cfg.DBName), dsnValue(sslMode), applicationName,
	)
}

// dsnValue экранирует значение: пустой пароль иначе съест следующий ключ
func dsnValue(v string) string {
	if v != "" && !strings.ContainsAny(v, " '\\") {
		return v
	}
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + r.Replace(v) + "'"
}

func New(cfg *config.DatabaseConfig, logger *zap.Logger) (*DB, error) {
	db, err := sqlx.Connect("pgx", DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	pool := NewPoolSettings(cfg)
	db.SetMaxOpenConns(pool.MaxOpenConns)
	db.SetMaxIdleConns(pool.MaxIdleConns)
	db.SetConnMaxLifetime(pool.ConnMaxLifetime)
	db.SetConnMaxIdleTime(pool.ConnMaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("PostgreSQL connected",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.DBName),
		zap.Int("max_open_conns", pool.MaxOpenConns),
		zap.Int("max_idle_conns", pool.MaxIdleConns),
	)

	return &DB{DB: db, logger: logger}, nil
}

func (db *DB) Close() error {
	stats := db.Stats()
	db.logger.Info("Closing PostgreSQL connection",
		zap.Int("open_connections", stats.OpenConnections),
		zap.Int64("wait_count", stats.WaitCount),
		zap.Duration("wait_duration", stats.WaitDuration))
	return db.DB.Close()
}

// Health проверяет соединение и наличие таблиц прогнозов и сохранённых спотов
func (db *DB) Health(ctx context.Context) error {
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	var missing []string
	err := db.SelectContext(ctx, &missing,
		`SELECT t FROM unnest($1::text[]) AS t WHERE to_regclass(t) IS NULL ORDER BY t`,
		pq.Array(requiredTables))
	if err != nil {
		return fmt.Errorf("failed to check schema: %w", err)
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrSchemaNotReady, strings.Join(missing, ", "))
	}
	return nil
}

// NewDBForTest creates a DB instance for testing with provided database and logger
func NewDBForTest(sqlxDB *sqlx.DB, logger *zap.Logger) *DB {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DB{
		DB:     sqlxDB,
		logger: logger,
	}
}
