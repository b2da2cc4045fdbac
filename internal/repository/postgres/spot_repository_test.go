package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/spot-resolver/internal/domain"
	"github.com/spot-resolver/internal/domain/repository"
	"github.com/spot-resolver/internal/repository/postgres/testhelpers"
)

// SpotRepositoryTestSuite тестирует SpotRepository и SavedRepository на реальной БД
type SpotRepositoryTestSuite struct {
	suite.Suite
	testDB *testhelpers.TestDB
	spots  repository.SpotRepository
	saved  repository.SavedRepository
	ctx    context.Context
}

func (s *SpotRepositoryTestSuite) SetupSuite() {
	s.ctx = context.Background()
	s.testDB = testhelpers.SetupTestDB(s.T())

	err := testhelpers.ApplyMigrations(s.testDB.DB.DB, "../../../migrations")
	s.Require().NoError(err, "Failed to apply migrations")

	s.spots = testhelpers.NewSpotRepositoryForTest(s.testDB.DB, s.testDB.Logger)
	s.saved = testhelpers.NewSavedRepositoryForTest(s.testDB.DB, s.testDB.Logger)
}

func (s *SpotRepositoryTestSuite) SetupTest() {
	s.Require().NoError(s.testDB.Cleanup(s.ctx))
}

func (s *SpotRepositoryTestSuite) TearDownSuite() {
	if s.testDB != nil {
		s.testDB.Close()
	}
}

func forecast(name string, lat, lng float64, ts string) domain.SpotRecord {
	geo := domain.GeoPoint{Lat: lat, Lng: lng}
	return domain.SpotRecord{
		LocationID: domain.NewLocationID(geo),
		Geo:        geo,
		Timestamp:  ts,
		Name:       name,
		Region:     "Gangwon",
		Country:    "KR",
		Conditions: domain.Conditions{WaveHeight: 1.2, WavePeriod: 9, WindSpeed: 6},
		DerivedMetrics: domain.DerivedMetrics{
			domain.LevelIntermediate: {SurfScore: 83, SurfGrade: domain.GradeA},
		},
	}
}

func (s *SpotRepositoryTestSuite) TestGetDataset() {
	morning := domain.DatasetContext{Date: "2026-10-14", Time: "06:00"}
	evening := domain.DatasetContext{Date: "2026-10-14", Time: "18:00"}

	jukdo := forecast("Jukdo", 38.0765, 128.6234, "2026-10-14T06:00:00Z")
	jukdoEvening := forecast("Jukdo", 38.0765, 128.6234, "2026-10-14T18:00:00Z")
	ingu := forecast("Ingu", 38.1000, 128.6500, "2026-10-14T06:00:00Z")

	s.Require().NoError(testhelpers.InsertForecast(s.ctx, s.testDB.DB, morning, jukdo))
	s.Require().NoError(testhelpers.InsertForecast(s.ctx, s.testDB.DB, evening, jukdoEvening))
	s.Require().NoError(testhelpers.InsertForecast(s.ctx, s.testDB.DB, morning, ingu))

	records, err := s.spots.GetDataset(s.ctx, morning)
	s.Require().NoError(err)
	s.Len(records, 2)

	// без времени - последний прогноз на точку
	records, err = s.spots.GetDataset(s.ctx, domain.DatasetContext{Date: "2026-10-14"})
	s.Require().NoError(err)
	s.Require().Len(records, 2)
	for _, rec := range records {
		if rec.LocationID == jukdo.LocationID {
			s.Equal("2026-10-14T18:00:00Z", rec.Timestamp)
			s.Equal(83.0, rec.DerivedMetrics[domain.LevelIntermediate].SurfScore)
		}
	}

	records, err = s.spots.GetDataset(s.ctx, domain.DatasetContext{Date: "2026-10-15"})
	s.Require().NoError(err)
	s.Empty(records)
}

func (s *SpotRepositoryTestSuite) TestGetByLocationIDs() {
	dc := domain.DatasetContext{Date: "2026-10-14", Time: "06:00"}
	jukdo := forecast("Jukdo", 38.0765, 128.6234, "2026-10-14T06:00:00Z")
	ingu := forecast("Ingu", 38.1000, 128.6500, "2026-10-14T06:00:00Z")
	s.Require().NoError(testhelpers.InsertForecast(s.ctx, s.testDB.DB, dc, jukdo))
	s.Require().NoError(testhelpers.InsertForecast(s.ctx, s.testDB.DB, dc, ingu))

	records, err := s.spots.GetByLocationIDs(s.ctx, dc, []domain.LocationID{ingu.LocationID, "0.0000#0.0000"})
	s.Require().NoError(err)
	s.Require().Len(records, 1)
	s.Equal("Ingu", records[0].Name)
	s.Equal(ingu.Geo, records[0].Geo)

	records, err = s.spots.GetByLocationIDs(s.ctx, dc, nil)
	s.Require().NoError(err)
	s.Empty(records)
}

func (s *SpotRepositoryTestSuite) TestSavedUpsert() {
	user := "user-1"
	entry := domain.SavedEntry{
		LocationID:    "38.0765#128.6234",
		SurfTimestamp: "2026-10-14T06:00:00Z",
		SavedAt:       time.Date(2026, 10, 14, 1, 0, 0, 0, time.UTC),
		Snapshot: domain.Snapshot{
			SurferLevel: domain.LevelBeginner,
			Metrics:     domain.LevelMetrics{SurfScore: 70, SurfGrade: domain.GradeB},
		},
	}

	s.Require().NoError(s.saved.UpsertSaved(s.ctx, user, entry))

	evening := entry
	evening.SurfTimestamp = "2026-10-14T18:00:00Z"
	s.Require().NoError(s.saved.UpsertSaved(s.ctx, user, evening))

	entry.Address = "Yangyang"
	s.Require().NoError(s.saved.UpsertSaved(s.ctx, user, entry))

	entries, err := s.saved.ListSaved(s.ctx, user)
	s.Require().NoError(err)
	s.Require().Len(entries, 2)
	s.Equal("Yangyang", entries[0].Address)
	s.Equal(domain.LevelBeginner, entries[0].Snapshot.SurferLevel)
	s.Equal(70.0, entries[0].Snapshot.Metrics.SurfScore)

	s.Require().NoError(s.saved.DeleteSaved(s.ctx, user, evening.Key()))
	entries, err = s.saved.ListSaved(s.ctx, user)
	s.Require().NoError(err)
	s.Len(entries, 1)

	other, err := s.saved.ListSaved(s.ctx, "user-2")
	s.Require().NoError(err)
	s.Empty(other)
}

func TestSpotRepositorySuite(t *testing.T) {
	suite.Run(t, new(SpotRepositoryTestSuite))
}
