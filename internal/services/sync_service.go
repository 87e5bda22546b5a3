package services

import (
	"context"
	"fmt"
	"time"

	"github.com/vytor/chessduel/internal/archive"
	"github.com/vytor/chessduel/internal/errors"
	"github.com/vytor/chessduel/internal/lichess"
	"github.com/vytor/chessduel/internal/logger"
	"github.com/vytor/chessduel/internal/models"
	"github.com/vytor/chessduel/internal/notation"
	"github.com/vytor/chessduel/internal/repository"
)

const (
	// DefaultLookback is how far back an incremental sync reaches when the
	// archive is empty.
	DefaultLookback = time.Hour
	// DefaultBackfillStart is the first month fetched by a backfill of an
	// empty archive.
	DefaultBackfillStart = "2024-07"
)

// SyncRequest names the players to fetch. Empty fields fall back to the
// configured names and then to the players already in the archive.
type SyncRequest struct {
	Username string `json:"username"`
	Opponent string `json:"opponent"`
}

type SyncResult struct {
	Username string    `json:"username"`
	Opponent string    `json:"opponent"`
	Since    time.Time `json:"since"`
	Until    time.Time `json:"until"`
	Fetched  int       `json:"fetched"`
	Added    int       `json:"added"`
	Total    int       `json:"total"`
	// Unreplayable counts fetched games whose move list a board rejects.
	// They are kept; their king-move counts may be attributed to the wrong side.
	Unreplayable int `json:"unreplayable"`
}

// SyncService pulls new games from Lichess into the dashboard and persists
// the merged archive.
type SyncService interface {
	// Sync fetches games created since the newest archived game (or the
	// last hour for an empty archive) up to now.
	Sync(ctx context.Context, req SyncRequest) (*SyncResult, error)
	// Backfill fetches whole months from the last archived month (or from
	// DefaultBackfillStart) through the current month, one request each.
	Backfill(ctx context.Context, req SyncRequest) (*SyncResult, error)
}

// SyncConfig holds the sync defaults. DataDir and a nil repository disable
// the matching persistence step.
type SyncConfig struct {
	DataDir  string
	Username string
	Opponent string
	Now      func() time.Time
}

type syncService struct {
	client    lichess.ClientInterface
	dashboard DashboardService
	gameRepo  repository.GameRepository
	cfg       SyncConfig
}

// NewSyncService creates a new SyncService
func NewSyncService(client lichess.ClientInterface, dashboard DashboardService, gameRepo repository.GameRepository, cfg SyncConfig) SyncService {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &syncService{client: client, dashboard: dashboard, gameRepo: gameRepo, cfg: cfg}
}

func (s *syncService) players(ctx context.Context, req SyncRequest) (string, string, error) {
	username := firstNonEmpty(req.Username, s.cfg.Username)
	opponent := firstNonEmpty(req.Opponent, s.cfg.Opponent)
	if username == "" || opponent == "" {
		if s.dashboard.Snapshot().Len() > 0 {
			m := s.dashboard.Players(ctx)
			username = firstNonEmpty(username, m.Player1)
			opponent = firstNonEmpty(opponent, m.Player2)
		}
	}
	if username == "" {
		return "", "", errors.NewValidationError("username", "no username given and the archive is empty")
	}
	return username, opponent, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func (s *syncService) Sync(ctx context.Context, req SyncRequest) (*SyncResult, error) {
	username, opponent, err := s.players(ctx, req)
	if err != nil {
		return nil, err
	}
	log := logger.FromContext(ctx).WithFields(map[string]any{"username": username, "opponent": opponent})

	until := s.cfg.Now()
	since := until.Add(-DefaultLookback)
	if latest := s.dashboard.LatestCreatedAt(); latest > 0 {
		since = time.UnixMilli(latest)
	}
	log.Info("syncing games from %s to %s", since.Format(time.RFC3339), until.Format(time.RFC3339))

	games, err := s.client.FetchGames(ctx, lichess.FetchParams{Username: username, Versus: opponent, Since: since, Until: until})
	if err != nil {
		log.Error("failed to fetch games: %v", err)
		return nil, err
	}

	result := &SyncResult{Username: username, Opponent: opponent, Since: since, Until: until, Fetched: len(games)}
	if err := s.absorb(ctx, games, result); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *syncService) Backfill(ctx context.Context, req SyncRequest) (*SyncResult, error) {
	username, opponent, err := s.players(ctx, req)
	if err != nil {
		return nil, err
	}
	log := logger.FromContext(ctx).WithFields(map[string]any{"username": username, "opponent": opponent})

	start := DefaultBackfillStart
	if months := s.dashboard.Months(ctx); len(months) > 0 {
		start = months[len(months)-1]
	}
	now := s.cfg.Now()
	windows, err := MonthWindows(start, now)
	if err != nil {
		return nil, errors.NewValidationError("start month", err.Error())
	}
	log.Info("backfilling %d months starting at %s", len(windows), start)

	result := &SyncResult{Username: username, Opponent: opponent}
	var fetched []models.Game
	for _, w := range windows {
		games, err := s.client.FetchGames(ctx, lichess.FetchParams{Username: username, Versus: opponent, Since: w.Since, Until: w.Until})
		if err != nil {
			log.Error("failed to fetch %s: %v", w.Month, err)
			return nil, err
		}
		log.Debug("%s: fetched %d games", w.Month, len(games))
		fetched = append(fetched, games...)
	}
	if len(windows) > 0 {
		result.Since = windows[0].Since
		result.Until = windows[len(windows)-1].Until
	}
	result.Fetched = len(fetched)

	if err := s.absorb(ctx, fetched, result); err != nil {
		return nil, err
	}
	return result, nil
}

// absorb fills missing openings, merges games into the dashboard and
// persists the merged archive.
func (s *syncService) absorb(ctx context.Context, games []models.Game, result *SyncResult) error {
	log := logger.FromContext(ctx)

	for i := range games {
		if games[i].Moves == "" {
			continue
		}
		if _, err := notation.Replay(games[i].Moves); err != nil {
			log.Warn("game %s does not replay: %v", games[i].ID, err)
			result.Unreplayable++
			continue
		}
		if games[i].Opening == nil {
			if op, ok := notation.DetectOpening(games[i].Moves); ok {
				games[i].Opening = op
			}
		}
	}

	added, merged := s.dashboard.Merge(ctx, games)
	result.Added = added
	result.Total = merged.Len()

	if s.cfg.DataDir != "" {
		if err := archive.WriteMonths(s.cfg.DataDir, merged); err != nil {
			log.Error("failed to write archive: %v", err)
			return errors.NewInternalError(err)
		}
	}
	if s.gameRepo != nil {
		if _, err := s.gameRepo.UpsertBatch(ctx, merged); err != nil {
			log.Error("failed to store games: %v", err)
			return errors.NewInternalError(err)
		}
	}

	log.Info("sync complete: fetched=%d added=%d total=%d unreplayable=%d", result.Fetched, result.Added, result.Total, result.Unreplayable)
	return nil
}

// MonthWindow is one calendar month in UTC.
type MonthWindow struct {
	Month string
	Since time.Time
	Until time.Time
}

// MonthWindows lists the UTC months from start ("YYYY-MM") through the month
// containing now.
func MonthWindows(start string, now time.Time) ([]MonthWindow, error) {
	first, err := time.Parse("2006-01", start)
	if err != nil {
		return nil, fmt.Errorf("parse month %q: %w", start, err)
	}
	now = now.UTC()
	last := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	var windows []MonthWindow
	for m := first; !m.After(last); m = m.AddDate(0, 1, 0) {
		windows = append(windows, MonthWindow{Month: m.Format("2006-01"), Since: m, Until: m.AddDate(0, 1, 0)})
	}
	return windows, nil
}
