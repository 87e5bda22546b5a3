package services

import (
	"context"
	"sync"
	"time"

	"github.com/vytor/chessduel/internal/aggregate"
	"github.com/vytor/chessduel/internal/archive"
	"github.com/vytor/chessduel/internal/cache"
	"github.com/vytor/chessduel/internal/errors"
	"github.com/vytor/chessduel/internal/logger"
	"github.com/vytor/chessduel/internal/models"
)

// DashboardService answers every head-to-head query from one in-memory game
// store. Reads run concurrently; Load and Merge replace the store and drop
// all cached results.
type DashboardService interface {
	Load(ctx context.Context, store models.GamesByMonth)
	Merge(ctx context.Context, incoming []models.Game) (added int, merged models.GamesByMonth)
	Snapshot() models.GamesByMonth
	LatestCreatedAt() int64

	Players(ctx context.Context) models.Matchup
	Months(ctx context.Context) []string
	Stats(ctx context.Context, r models.Range) *models.Stats
	Openings(ctx context.Context, r models.Range) []models.OpeningStat
	Sessions(ctx context.Context, r models.Range, gapMinutes int) models.SessionsReport
	Highlights(ctx context.Context, r models.Range) models.Highlights
	Timeline(ctx context.Context, r models.Range) []models.TimelinePoint
	Calendar(ctx context.Context, year int) []models.CalendarDay
	Games(ctx context.Context, r models.Range) []models.GameRow
	Game(ctx context.Context, id string) (*models.Game, error)
	CacheStats() CacheStats
}

// DashboardConfig tunes the dashboard. Zero values use the package defaults.
type DashboardConfig struct {
	Location           *time.Location
	SessionGapMinutes  int
	FilterCacheSize    int
	MemoFlushThreshold int
}

// CacheStats reports cache occupancy and hit counters.
type CacheStats struct {
	FilterEntries int    `json:"filter_entries"`
	FilterHits    uint64 `json:"filter_hits"`
	FilterMisses  uint64 `json:"filter_misses"`
	MemoEntries   int    `json:"memo_entries"`
}

type dashboardService struct {
	mu      sync.RWMutex
	store   models.GamesByMonth
	loc     *time.Location
	gap     int
	filters *cache.LRU[models.GamesByMonth]
	memo    *cache.GameMemo
}

// NewDashboardService creates an empty DashboardService
func NewDashboardService(cfg DashboardConfig) DashboardService {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.SessionGapMinutes <= 0 {
		cfg.SessionGapMinutes = aggregate.DefaultSessionGapMinutes
	}
	return &dashboardService{
		store:   make(models.GamesByMonth),
		loc:     cfg.Location,
		gap:     cfg.SessionGapMinutes,
		filters: cache.NewLRU[models.GamesByMonth](cfg.FilterCacheSize),
		memo:    cache.NewGameMemo(cfg.MemoFlushThreshold),
	}
}

func (s *dashboardService) Load(ctx context.Context, store models.GamesByMonth) {
	log := logger.FromContext(ctx)
	if store == nil {
		store = make(models.GamesByMonth)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.store = store
	s.resetCaches()
	log.Info("dashboard loaded %d games across %d months", store.Len(), len(store))
}

func (s *dashboardService) Merge(ctx context.Context, incoming []models.Game) (int, models.GamesByMonth) {
	log := logger.FromContext(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	merged, added := archive.Merge(s.store, incoming, s.loc)
	s.store = merged
	s.resetCaches()
	log.Info("merged %d incoming games, %d new, %d total", len(incoming), added, merged.Len())
	return added, merged
}

// resetCaches must run under the write lock.
func (s *dashboardService) resetCaches() {
	s.filters.Clear()
	s.memo.Clear()
}

func (s *dashboardService) Snapshot() models.GamesByMonth {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store
}

func (s *dashboardService) LatestCreatedAt() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return archive.MostRecentCreatedAt(s.store)
}

// view runs fn over the filtered games and the full store under the read lock.
func (s *dashboardService) view(ctx context.Context, r models.Range, fn func(filtered, all models.GamesByMonth)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.filtered(ctx, r), s.store)
}

func (s *dashboardService) filtered(ctx context.Context, r models.Range) models.GamesByMonth {
	key := aggregate.FilterKey(r.Year, r.Month, r.Day)
	if games, ok := s.filters.Get(key); ok {
		logger.FromContext(ctx).Debug("filter cache hit: %s", key)
		return games
	}
	games := aggregate.FilterByRangeIn(s.store, r.Year, r.Month, r.Day, s.loc)
	s.filters.Set(key, games)
	return games
}

func (s *dashboardService) Players(ctx context.Context) models.Matchup {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p1, p2 := aggregate.IdentifyPlayers(s.store)
	return models.Matchup{Player1: p1, Player2: p2}
}

func (s *dashboardService) Months(ctx context.Context) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.SortedKeys()
}

func (s *dashboardService) Stats(ctx context.Context, r models.Range) *models.Stats {
	log := logger.FromContext(ctx)
	log.Debug("computing stats: range=%s", aggregate.FilterKey(r.Year, r.Month, r.Day))

	var stats *models.Stats
	s.view(ctx, r, func(filtered, all models.GamesByMonth) {
		stats = aggregate.ComputeStats(filtered, all, aggregate.IdentifyPlayers, aggregate.WithMoveScanner(s.memo))
	})
	return stats
}

func (s *dashboardService) Openings(ctx context.Context, r models.Range) []models.OpeningStat {
	var out []models.OpeningStat
	s.view(ctx, r, func(filtered, all models.GamesByMonth) {
		p1, p2 := aggregate.IdentifyPlayers(all)
		out = aggregate.SortOpenings(aggregate.ComputeOpeningStats(filtered, p1, p2))
	})
	return out
}

func (s *dashboardService) Sessions(ctx context.Context, r models.Range, gapMinutes int) models.SessionsReport {
	if gapMinutes <= 0 {
		gapMinutes = s.gap
	}
	logger.FromContext(ctx).Debug("clustering sessions: gap=%d", gapMinutes)

	report := models.SessionsReport{GapMinutes: gapMinutes}
	s.view(ctx, r, func(filtered, all models.GamesByMonth) {
		p1, _ := aggregate.IdentifyPlayers(all)
		report.Sessions = aggregate.ClusterIntoSessionsIn(filtered, p1, gapMinutes, s.loc, s.memo)
		report.Summary = aggregate.SummarizeSessions(report.Sessions)
	})
	return report
}

func (s *dashboardService) Highlights(ctx context.Context, r models.Range) models.Highlights {
	var out models.Highlights
	s.view(ctx, r, func(filtered, all models.GamesByMonth) {
		p1, p2 := aggregate.IdentifyPlayers(all)
		out = aggregate.FindHighlights(filtered, p1, p2)
	})
	return out
}

func (s *dashboardService) Timeline(ctx context.Context, r models.Range) []models.TimelinePoint {
	var out []models.TimelinePoint
	s.view(ctx, r, func(filtered, all models.GamesByMonth) {
		p1, _ := aggregate.IdentifyPlayers(all)
		out = aggregate.PointsTimeline(filtered, p1)
	})
	return out
}

func (s *dashboardService) Calendar(ctx context.Context, year int) []models.CalendarDay {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return aggregate.Calendar(s.store, year, s.loc)
}

func (s *dashboardService) Games(ctx context.Context, r models.Range) []models.GameRow {
	var rows []models.GameRow
	s.view(ctx, r, func(filtered, _ models.GamesByMonth) {
		sequence := filtered.Flatten()
		rows = make([]models.GameRow, 0, len(sequence))
		for _, g := range sequence {
			rows = append(rows, models.GameRow{
				ID:              g.ID,
				CreatedAt:       g.CreatedAt,
				White:           g.WhiteName(),
				Black:           g.BlackName(),
				Winner:          g.Winner,
				Status:          g.Termination(),
				Opening:         g.OpeningName(),
				MoveCount:       s.memo.MoveCount(g),
				KingMoves:       s.memo.KingMoves(g),
				DurationMinutes: aggregate.GameDurationMinutes(g),
			})
		}
	})
	return rows
}

func (s *dashboardService) Game(ctx context.Context, id string) (*models.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, games := range s.store {
		for i := range games {
			if games[i].ID == id {
				g := games[i]
				return &g, nil
			}
		}
	}
	logger.FromContext(ctx).Debug("game not found: id=%s", id)
	return nil, errors.NewNotFoundError("game", id)
}

func (s *dashboardService) CacheStats() CacheStats {
	m := s.filters.Metrics()
	return CacheStats{
		FilterEntries: s.filters.Len(),
		FilterHits:    m.Hits,
		FilterMisses:  m.Misses,
		MemoEntries:   s.memo.Len(),
	}
}
