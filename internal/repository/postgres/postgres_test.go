package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spot-resolver/internal/config"
	"github.com/spot-resolver/internal/repository/postgres"
	"github.com/spot-resolver/internal/repository/postgres/testhelpers"
)

func TestNewPoolSettings(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.DatabaseConfig
		expected postgres.PoolSettings
	}{
		{
			name: "defaults for zero config",
			cfg:  config.DatabaseConfig{},
			expected: postgres.PoolSettings{
				MaxOpenConns:    10,
				MaxIdleConns:    5,
				ConnMaxLifetime: 30 * time.Minute,
				ConnMaxIdleTime: 5 * time.Minute,
			},
		},
		{
			name: "idle capped by open",
			cfg:  config.DatabaseConfig{MaxConns: 3, MaxIdleConns: 8, ConnMaxLifetime: time.Hour, ConnMaxIdleTime: time.Minute},
			expected: postgres.PoolSettings{
				MaxOpenConns:    3,
				MaxIdleConns:    3,
				ConnMaxLifetime: time.Hour,
				ConnMaxIdleTime: time.Minute,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, postgres.NewPoolSettings(&tt.cfg))
		})
	}
}

func TestDSN(t *testing.T) {
	cfg := config.DatabaseConfig{Host: "db", Port: 5432, User: "surf", Password: "", DBName: "spots"}
	assert.Equal(t,
		"host=db port=5432 user=surf password='' dbname=spots sslmode=disable application_name=spot-resolver",
		postgres.DSN(&cfg))

	cfg.Password = `it's a\secret`
	cfg.SSLMode = "require"
	assert.Contains(t, postgres.DSN(&cfg), `password='it\'s a\\secret' dbname=spots sslmode=require`)
}

func TestDB_Health(t *testing.T) {
	testDB := testhelpers.SetupTestDB(t)
	defer testDB.Close()
	require.NoError(t, testhelpers.ApplyMigrations(testDB.DB.DB, "../../../migrations"))

	db := postgres.NewDBForTest(testDB.DB, testDB.Logger)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	assert.NoError(t, db.Health(ctx))
}
