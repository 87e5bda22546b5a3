package cache

import (
	"github.com/jellydator/ttlcache/v3"

	"github.com/vytor/chessduel/internal/aggregate"
	"github.com/vytor/chessduel/internal/models"
)

// DefaultMemoFlushThreshold is the entry count above which GameMemo drops
// everything.
const DefaultMemoFlushThreshold = 10_000

type gameFacts struct {
	kingMoves models.KingMoves
	moves     int
}

// GameMemo remembers move-derived values per game. It is unbounded between
// flushes: once it grows past the threshold it is emptied wholesale. Results
// never depend on what it holds.
type GameMemo struct {
	items     *ttlcache.Cache[string, gameFacts]
	threshold int
}

var _ aggregate.MoveScanner = (*GameMemo)(nil)

// NewGameMemo returns a memo that flushes once it holds more than threshold
// entries. A non-positive threshold falls back to DefaultMemoFlushThreshold.
func NewGameMemo(threshold int) *GameMemo {
	if threshold <= 0 {
		threshold = DefaultMemoFlushThreshold
	}
	return &GameMemo{
		items:     ttlcache.New[string, gameFacts](),
		threshold: threshold,
	}
}

func (m *GameMemo) KingMoves(g models.Game) models.KingMoves {
	return m.lookup(g).kingMoves
}

func (m *GameMemo) MoveCount(g models.Game) int {
	return m.lookup(g).moves
}

func (m *GameMemo) Len() int {
	return m.items.Len()
}

// Clear drops every entry.
func (m *GameMemo) Clear() {
	m.items.DeleteAll()
}

func (m *GameMemo) lookup(g models.Game) gameFacts {
	key := memoKey(g)
	if item := m.items.Get(key); item != nil {
		return item.Value()
	}

	facts := gameFacts{
		kingMoves: aggregate.CountKingMoves(g.Moves),
		moves:     aggregate.MoveCount(g.Moves),
	}
	m.items.Set(key, facts, ttlcache.DefaultTTL)
	if m.items.Len() > m.threshold {
		m.items.DeleteAll()
	}
	return facts
}

// memoKey is the game id, or the move text for games without one.
func memoKey(g models.Game) string {
	if g.ID != "" {
		return "id:" + g.ID
	}
	return "moves:" + g.Moves
}
