package aggregate_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/vytor/chessduel/internal/aggregate"
	"github.com/vytor/chessduel/internal/models"
	"github.com/vytor/chessduel/internal/testutil"
)

func TestGameDurationMinutes(t *testing.T) {
	start := testutil.At(2024, time.June, 1, 10, 0)

	tests := []struct {
		name     string
		opts     []testutil.GameOption
		expected int
	}{
		{
			name:     "no timing data",
			expected: 0,
		},
		{
			name:     "elapsed minutes",
			opts:     []testutil.GameOption{testutil.WithLastMoveAt(start.Add(5 * time.Minute))},
			expected: 5,
		},
		{
			name:     "elapsed minutes are rounded",
			opts:     []testutil.GameOption{testutil.WithLastMoveAt(start.Add(7*time.Minute + 30*time.Second))},
			expected: 8,
		},
		{
			name:     "lastMoveAt before createdAt",
			opts:     []testutil.GameOption{testutil.WithLastMoveAt(start.Add(-10 * time.Minute))},
			expected: 0,
		},
		{
			name: "clock estimate replaces bad elapsed time",
			opts: []testutil.GameOption{
				testutil.WithLastMoveAt(start.Add(500 * time.Minute)),
				testutil.WithMoves(strings.Repeat("e4 ", 30)),
				testutil.WithClocks(180, 90000, 60000),
			},
			expected: 3,
		},
		{
			name: "implausible clock estimate is ignored",
			opts: []testutil.GameOption{
				testutil.WithLastMoveAt(start.Add(5 * time.Minute)),
				testutil.WithClocks(10800, 0),
			},
			expected: 5,
		},
		{
			name: "missing initial defaults to five minutes",
			opts: []testutil.GameOption{
				func(g *models.Game) { g.Clocks = []int64{240000} },
			},
			expected: 1,
		},
		{
			name:     "blitz is capped",
			opts:     []testutil.GameOption{testutil.WithLastMoveAt(start.Add(300 * time.Minute))},
			expected: aggregate.MaxGameMinutes,
		},
		{
			name: "rapid is capped",
			opts: []testutil.GameOption{
				testutil.WithSpeed(models.SpeedRapid),
				testutil.WithLastMoveAt(start.Add(300 * time.Minute)),
			},
			expected: aggregate.MaxGameMinutes,
		},
		{
			name: "classical is not capped",
			opts: []testutil.GameOption{
				testutil.WithSpeed("classical"),
				testutil.WithLastMoveAt(start.Add(300 * time.Minute)),
			},
			expected: 300,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := testutil.NewGame("g", start, tt.opts...)
			assert.Equal(t, tt.expected, aggregate.GameDurationMinutes(g))
		})
	}
}

func TestEffectiveEnd(t *testing.T) {
	start := testutil.At(2024, time.June, 1, 10, 0)

	withLast := testutil.NewGame("a", start, testutil.WithLastMoveAt(start.Add(3*time.Minute)))
	assert.Equal(t, start.Add(3*time.Minute).UnixMilli(), aggregate.EffectiveEnd(withLast))

	fromMoves := testutil.NewGame("b", start, testutil.WithMoves("e4 e5 Nf3 Nc6"))
	assert.Equal(t, start.Add(4*time.Minute).UnixMilli(), aggregate.EffectiveEnd(fromMoves))

	bare := testutil.NewGame("c", start)
	assert.Equal(t, start.Add(30*time.Minute).UnixMilli(), aggregate.EffectiveEnd(bare))
}
