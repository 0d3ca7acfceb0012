package sqlite_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/vytor/upsimu/internal/models"
	"github.com/vytor/upsimu/internal/repository"
	"github.com/vytor/upsimu/internal/repository/sqlite"
	"github.com/vytor/upsimu/internal/testutil"
)

type HistoryRepositorySuite struct {
	suite.Suite
	db        *sql.DB
	repo      repository.HistoryRepository
	profileID int64
}

func (s *HistoryRepositorySuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.repo = sqlite.NewHistoryRepository(s.db)
	s.profileID = testutil.MustCreateProfile(s.T(), s.db, "ada")
}

func (s *HistoryRepositorySuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func (s *HistoryRepositorySuite) seed() {
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	records := []models.AttemptRecord{
		{ScenarioID: "volvo", AttemptID: "a1", Stars: 0.5, Transcript: "1929", Turns: 1},
		{ScenarioID: "volvo", AttemptID: "a2", Stars: 3, Transcript: "ÖV4 1927 Jakob Gothenburg", Turns: 1},
		{ScenarioID: "financial", AttemptID: "a3", Stars: 0, Transcript: "weather", OffTopic: true, Turns: 1},
		{ScenarioID: "financial", AttemptID: "a4", Stars: 2, Transcript: "cannot", Turns: 3},
	}
	for i, rec := range records {
		rec.ProfileID = s.profileID
		rec.Feedback = "fb"
		rec.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		_, err := s.repo.Insert(ctx, rec)
		s.Require().NoError(err)
	}
}

func (s *HistoryRepositorySuite) TestInsert_DuplicateAttemptIsIgnored() {
	ctx := context.Background()
	rec := models.AttemptRecord{ProfileID: s.profileID, ScenarioID: "volvo", AttemptID: "dup", Stars: 1}

	id1, err := s.repo.Insert(ctx, rec)
	s.Require().NoError(err)
	id2, err := s.repo.Insert(ctx, rec)
	s.Require().NoError(err)

	s.Assert().Equal(id1, id2)
	count, err := s.repo.Count(ctx, models.HistoryFilter{ProfileID: s.profileID})
	s.Require().NoError(err)
	s.Assert().Equal(1, count)
}

func (s *HistoryRepositorySuite) TestList_NewestFirst() {
	s.seed()

	records, err := s.repo.List(context.Background(), models.HistoryFilter{ProfileID: s.profileID})
	s.Require().NoError(err)
	s.Require().Len(records, 4)
	s.Assert().Equal("a4", records[0].AttemptID)
	s.Assert().Equal("a1", records[3].AttemptID)
	s.Assert().Equal(3, records[0].Turns)
}

func (s *HistoryRepositorySuite) TestList_Filters() {
	s.seed()
	ctx := context.Background()

	minStars := 2.0
	records, err := s.repo.List(ctx, models.HistoryFilter{ProfileID: s.profileID, MinStars: &minStars, OrderDir: "ASC"})
	s.Require().NoError(err)
	s.Require().Len(records, 2)
	s.Assert().Equal("a2", records[0].AttemptID)
	s.Assert().Equal("a4", records[1].AttemptID)

	offTopic := true
	records, err = s.repo.List(ctx, models.HistoryFilter{ProfileID: s.profileID, OffTopic: &offTopic})
	s.Require().NoError(err)
	s.Require().Len(records, 1)
	s.Assert().True(records[0].OffTopic)

	records, err = s.repo.List(ctx, models.HistoryFilter{ProfileID: s.profileID, ScenarioID: "volvo", Limit: 1})
	s.Require().NoError(err)
	s.Require().Len(records, 1)
	s.Assert().Equal("a2", records[0].AttemptID)

	count, err := s.repo.Count(ctx, models.HistoryFilter{ProfileID: s.profileID, ScenarioID: "financial"})
	s.Require().NoError(err)
	s.Assert().Equal(2, count)
}

func (s *HistoryRepositorySuite) TestBestScores() {
	s.seed()

	scores, err := s.repo.BestScores(context.Background(), s.profileID)
	s.Require().NoError(err)
	s.Assert().Equal([]models.BestScore{
		{ScenarioID: "financial", BestStars: 2, Attempts: 2},
		{ScenarioID: "volvo", BestStars: 3, Attempts: 2},
	}, scores)
}

func (s *HistoryRepositorySuite) TestDeleteForProfile() {
	s.seed()
	ctx := context.Background()

	s.Require().NoError(s.repo.DeleteForProfile(ctx, s.profileID))
	count, err := s.repo.Count(ctx, models.HistoryFilter{ProfileID: s.profileID})
	s.Require().NoError(err)
	s.Assert().Zero(count)
}

func TestHistoryRepositorySuite(t *testing.T) {
	suite.Run(t, new(HistoryRepositorySuite))
}
