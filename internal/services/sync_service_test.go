package services_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	apperrors "github.com/vytor/chessduel/internal/errors"
	"github.com/vytor/chessduel/internal/lichess"
	"github.com/vytor/chessduel/internal/models"
	"github.com/vytor/chessduel/internal/services"
	"github.com/vytor/chessduel/internal/testutil"
	"github.com/vytor/chessduel/internal/testutil/mocks"
)

var syncNow = testutil.At(2024, time.September, 2, 12, 0)

func fixedNow() time.Time { return syncNow }

func TestSync_FromLatestGame(t *testing.T) {
	ctx := context.Background()
	dashboard := newDashboard(t)
	client := new(mocks.MockLichessClient)
	repo := new(mocks.MockGameRepository)
	dataDir := t.TempDir()

	latest := testutil.At(2024, time.August, 3, 9, 0)
	incoming := []models.Game{
		testutil.NewGame("a1", latest, testutil.Drawn()),
		testutil.NewGame("s1", testutil.At(2024, time.September, 1, 9, 0), testutil.WithMoves("e4 c5")),
		testutil.NewGame("r1", testutil.At(2024, time.September, 1, 10, 0), testutil.WithSpeed(models.SpeedRapid)),
	}
	client.On("FetchGames", mock.Anything, lichess.FetchParams{
		Username: testutil.Alice,
		Versus:   testutil.Bob,
		Since:    time.UnixMilli(latest.UnixMilli()),
		Until:    syncNow,
	}).Return(incoming, nil)
	repo.On("UpsertBatch", mock.Anything, mock.MatchedBy(func(store models.GamesByMonth) bool {
		return store.Len() == 4
	})).Return(1, nil)

	svc := services.NewSyncService(client, dashboard, repo, services.SyncConfig{DataDir: dataDir, Now: fixedNow})
	result, err := svc.Sync(ctx, services.SyncRequest{})
	require.NoError(t, err)

	assert.Equal(t, testutil.Alice, result.Username)
	assert.Equal(t, testutil.Bob, result.Opponent)
	assert.Equal(t, 3, result.Fetched)
	assert.Equal(t, 1, result.Added)
	assert.Equal(t, 4, result.Total)

	s1, err := dashboard.Game(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, s1.Opening, "opening detected from moves")
	assert.Contains(t, s1.Opening.Name, "Sicilian")

	_, err = os.Stat(filepath.Join(dataDir, "2024-09.json"))
	assert.NoError(t, err)

	client.AssertExpectations(t)
	repo.AssertExpectations(t)
}

func TestSync_CountsUnreplayableGames(t *testing.T) {
	ctx := context.Background()
	dashboard := newDashboard(t)
	client := new(mocks.MockLichessClient)

	incoming := []models.Game{
		testutil.NewGame("ok", testutil.At(2024, time.September, 1, 9, 0), testutil.WithMoves("d4 d5")),
		// Black cannot answer with a white move; the gap shifts parity.
		testutil.NewGame("gap", testutil.At(2024, time.September, 1, 9, 20), testutil.WithMoves("e4 Nf3 Nc6")),
	}
	client.On("FetchGames", mock.Anything, mock.Anything).Return(incoming, nil)

	svc := services.NewSyncService(client, dashboard, nil, services.SyncConfig{Now: fixedNow})
	result, err := svc.Sync(ctx, services.SyncRequest{})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Added)
	assert.Equal(t, 1, result.Unreplayable)

	gap, err := dashboard.Game(ctx, "gap")
	require.NoError(t, err, "unreplayable games are still archived")
	assert.Nil(t, gap.Opening)
}

func TestSync_EmptyArchiveUsesLookback(t *testing.T) {
	dashboard := services.NewDashboardService(services.DashboardConfig{Location: time.UTC})
	client := new(mocks.MockLichessClient)

	client.On("FetchGames", mock.Anything, lichess.FetchParams{
		Username: "carol",
		Versus:   "dave",
		Since:    syncNow.Add(-time.Hour),
		Until:    syncNow,
	}).Return([]models.Game{}, nil)

	svc := services.NewSyncService(client, dashboard, nil, services.SyncConfig{Username: "carol", Opponent: "dave", Now: fixedNow})
	result, err := svc.Sync(context.Background(), services.SyncRequest{})
	require.NoError(t, err)
	assert.Zero(t, result.Added)
	client.AssertExpectations(t)
}

func TestSync_RequestOverridesConfig(t *testing.T) {
	dashboard := services.NewDashboardService(services.DashboardConfig{Location: time.UTC})
	client := new(mocks.MockLichessClient)

	client.On("FetchGames", mock.Anything, mock.MatchedBy(func(p lichess.FetchParams) bool {
		return p.Username == "erin" && p.Versus == "dave"
	})).Return([]models.Game{}, nil)

	svc := services.NewSyncService(client, dashboard, nil, services.SyncConfig{Username: "carol", Opponent: "dave", Now: fixedNow})
	_, err := svc.Sync(context.Background(), services.SyncRequest{Username: "erin"})
	require.NoError(t, err)
	client.AssertExpectations(t)
}

func TestSync_NoUsername(t *testing.T) {
	dashboard := services.NewDashboardService(services.DashboardConfig{})
	client := new(mocks.MockLichessClient)

	svc := services.NewSyncService(client, dashboard, nil, services.SyncConfig{Now: fixedNow})
	_, err := svc.Sync(context.Background(), services.SyncRequest{})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeValidation))
	client.AssertNotCalled(t, "FetchGames", mock.Anything, mock.Anything)
}

func TestSync_FetchErrorLeavesStoreUntouched(t *testing.T) {
	dashboard := newDashboard(t)
	client := new(mocks.MockLichessClient)
	client.On("FetchGames", mock.Anything, mock.Anything).Return(nil, apperrors.NewRateLimitedError(4))

	svc := services.NewSyncService(client, dashboard, nil, services.SyncConfig{Now: fixedNow})
	_, err := svc.Sync(context.Background(), services.SyncRequest{})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeRateLimited))
	assert.Equal(t, 3, dashboard.Snapshot().Len())
}

func TestSync_RepositoryFailure(t *testing.T) {
	dashboard := newDashboard(t)
	client := new(mocks.MockLichessClient)
	repo := new(mocks.MockGameRepository)
	client.On("FetchGames", mock.Anything, mock.Anything).Return([]models.Game{}, nil)
	repo.On("UpsertBatch", mock.Anything, mock.Anything).Return(0, assert.AnError)

	svc := services.NewSyncService(client, dashboard, repo, services.SyncConfig{Now: fixedNow})
	_, err := svc.Sync(context.Background(), services.SyncRequest{})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInternal))
	assert.ErrorIs(t, err, assert.AnError)
}

func TestBackfill_FromLastArchivedMonth(t *testing.T) {
	dashboard := newDashboard(t)
	client := new(mocks.MockLichessClient)

	aug := time.Date(2024, time.August, 1, 0, 0, 0, 0, time.UTC)
	sep := time.Date(2024, time.September, 1, 0, 0, 0, 0, time.UTC)
	oct := time.Date(2024, time.October, 1, 0, 0, 0, 0, time.UTC)
	client.On("FetchGames", mock.Anything, lichess.FetchParams{Username: testutil.Alice, Versus: testutil.Bob, Since: aug, Until: sep}).
		Return([]models.Game{testutil.NewGame("a2", testutil.At(2024, time.August, 20, 9, 0))}, nil).Once()
	client.On("FetchGames", mock.Anything, lichess.FetchParams{Username: testutil.Alice, Versus: testutil.Bob, Since: sep, Until: oct}).
		Return([]models.Game{testutil.NewGame("s1", testutil.At(2024, time.September, 1, 9, 0))}, nil).Once()

	svc := services.NewSyncService(client, dashboard, nil, services.SyncConfig{Now: fixedNow})
	result, err := svc.Backfill(context.Background(), services.SyncRequest{})
	require.NoError(t, err)

	assert.Equal(t, aug, result.Since)
	assert.Equal(t, oct, result.Until)
	assert.Equal(t, 2, result.Fetched)
	assert.Equal(t, 2, result.Added)
	assert.Equal(t, 5, result.Total)
	client.AssertExpectations(t)
}

func TestMonthWindows(t *testing.T) {
	windows, err := services.MonthWindows("2024-11", testutil.At(2025, time.February, 10, 0, 0))
	require.NoError(t, err)

	months := make([]string, 0, len(windows))
	for _, w := range windows {
		months = append(months, w.Month)
	}
	assert.Equal(t, []string{"2024-11", "2024-12", "2025-01", "2025-02"}, months)
	assert.Equal(t, time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), windows[1].Until)

	none, err := services.MonthWindows("2030-01", syncNow)
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = services.MonthWindows("July 2024", syncNow)
	assert.Error(t, err)
}
