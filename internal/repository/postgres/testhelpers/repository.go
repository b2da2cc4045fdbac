package testhelpers

import (
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/spot-resolver/internal/domain/repository"
	"github.com/spot-resolver/internal/repository/postgres"
)

// NewSpotRepositoryForTest creates a spot repository with test database and logger
func NewSpotRepositoryForTest(db *sqlx.DB, logger *zap.Logger) repository.SpotRepository {
	return postgres.NewSpotRepository(postgres.NewDBForTest(db, logger))
}

// NewSavedRepositoryForTest creates a saved entries repository with test database and logger
func NewSavedRepositoryForTest(db *sqlx.DB, logger *zap.Logger) repository.SavedRepository {
	return postgres.NewSavedRepository(postgres.NewDBForTest(db, logger))
}
