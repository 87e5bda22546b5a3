package sqlite_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/vytor/chessduel/internal/models"
	"github.com/vytor/chessduel/internal/repository"
	"github.com/vytor/chessduel/internal/repository/sqlite"
	"github.com/vytor/chessduel/internal/testutil"
)

type GameRepositorySuite struct {
	suite.Suite
	db   *sql.DB
	repo repository.GameRepository
}

func (s *GameRepositorySuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.repo = sqlite.NewGameRepository(s.db)
}

func (s *GameRepositorySuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func (s *GameRepositorySuite) seed() models.GamesByMonth {
	store := testutil.ByMonth(
		testutil.NewGame("g1", testutil.At(2024, time.July, 1, 10, 0),
			testutil.WithMoves("e4 e5 Ke2"), testutil.WithOpening("Bongcloud"),
			testutil.WithAnalysis(testutil.Accuracy(90, 15, 0), nil)),
		testutil.NewGame("g2", testutil.At(2024, time.July, 2, 10, 0),
			testutil.WithPlayers(testutil.Bob, testutil.Alice)),
		testutil.NewGame("g3", testutil.At(2024, time.August, 3, 10, 0), testutil.Drawn()),
		testutil.NewGame("g4", testutil.At(2024, time.August, 4, 10, 0),
			testutil.WithPlayers("Carol", testutil.Bob), testutil.WithWinner(models.Black)),
	)
	n, err := s.repo.UpsertBatch(context.Background(), store)
	s.Require().NoError(err)
	s.Require().Equal(4, n)
	return store
}

func (s *GameRepositorySuite) TestUpsertAndGet() {
	store := s.seed()

	got, err := s.repo.Get(context.Background(), "g1")
	s.Require().NoError(err)
	s.Assert().Equal(store["2024-07"][0], *got)
}

func (s *GameRepositorySuite) TestGet_NotFound() {
	game, err := s.repo.Get(context.Background(), "missing")
	s.Assert().ErrorIs(err, sql.ErrNoRows)
	s.Assert().Nil(game)
}

func (s *GameRepositorySuite) TestUpsertBatch_CountsOnlyNewIDs() {
	ctx := context.Background()
	s.seed()

	update := testutil.ByMonth(
		testutil.NewGame("g1", testutil.At(2024, time.July, 1, 10, 0), testutil.WithMoves("d4")),
		testutil.NewGame("g5", testutil.At(2024, time.September, 1, 10, 0)),
	)
	n, err := s.repo.UpsertBatch(ctx, update)
	s.Require().NoError(err)
	s.Assert().Equal(1, n)

	got, err := s.repo.Get(ctx, "g1")
	s.Require().NoError(err)
	s.Assert().Equal("d4", got.Moves)

	total, err := s.repo.Count(ctx, models.GameFilter{})
	s.Require().NoError(err)
	s.Assert().Equal(5, total)
}

func (s *GameRepositorySuite) TestUpsertBatch_Empty() {
	n, err := s.repo.UpsertBatch(context.Background(), models.GamesByMonth{})
	s.Require().NoError(err)
	s.Assert().Zero(n)
}

func (s *GameRepositorySuite) TestList_Filters() {
	ctx := context.Background()
	s.seed()

	tests := []struct {
		name   string
		filter models.GameFilter
		want   []string
	}{
		{name: "all ascending", filter: models.GameFilter{}, want: []string{"g1", "g2", "g3", "g4"}},
		{name: "descending", filter: models.GameFilter{OrderDir: "DESC"}, want: []string{"g4", "g3", "g2", "g1"}},
		{name: "month", filter: models.GameFilter{MonthKey: "2024-08"}, want: []string{"g3", "g4"}},
		{name: "player on either side", filter: models.GameFilter{Player: "Carol"}, want: []string{"g4"}},
		{name: "winner by name", filter: models.GameFilter{Winner: testutil.Bob}, want: []string{"g2", "g4"}},
		{name: "speed", filter: models.GameFilter{Speed: models.SpeedRapid}, want: []string{}},
		{name: "paged", filter: models.GameFilter{Limit: 2, Offset: 1}, want: []string{"g2", "g3"}},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			games, err := s.repo.List(ctx, tt.filter)
			s.Require().NoError(err)
			ids := make([]string, 0, len(games))
			for _, g := range games {
				ids = append(ids, g.ID)
			}
			s.Assert().Equal(tt.want, ids)

			if tt.filter.Limit == 0 {
				count, err := s.repo.Count(ctx, tt.filter)
				s.Require().NoError(err)
				s.Assert().Equal(len(tt.want), count)
			}
		})
	}
}

func (s *GameRepositorySuite) TestLoadAll_PreservesBuckets() {
	store := s.seed()

	loaded, err := s.repo.LoadAll(context.Background())
	s.Require().NoError(err)
	s.Assert().Equal(store, loaded)
}

func (s *GameRepositorySuite) TestLatestCreatedAt() {
	ctx := context.Background()

	latest, err := s.repo.LatestCreatedAt(ctx)
	s.Require().NoError(err)
	s.Assert().Zero(latest)

	s.seed()
	latest, err = s.repo.LatestCreatedAt(ctx)
	s.Require().NoError(err)
	s.Assert().Equal(testutil.At(2024, time.August, 4, 10, 0).UnixMilli(), latest)
}

func TestGameRepositorySuite(t *testing.T) {
	suite.Run(t, new(GameRepositorySuite))
}
