// Package archive reads and writes the monthly JSON shards ("YYYY-MM.json")
// that hold a rivalry's exported games.
package archive

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"time"

	"github.com/vytor/chessduel/internal/logger"
	"github.com/vytor/chessduel/internal/models"
)

var shardName = regexp.MustCompile(`^(\d{4}-\d{2})\.json$`)

// LoadDir reads every shard in dir. Only blitz games are kept, each month is
// sorted by createdAt and months left empty are dropped. A missing directory
// yields an empty store.
func LoadDir(ctx context.Context, dir string) (models.GamesByMonth, error) {
	log := logger.FromContext(ctx)
	store := make(models.GamesByMonth)

	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		log.Warn("archive directory %s does not exist, starting empty", dir)
		return store, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read archive dir %s: %w", dir, err)
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		m := shardName.FindStringSubmatch(entry.Name())
		if entry.IsDir() || m == nil {
			continue
		}

		games, err := readShard(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		blitz := KeepBlitz(games)
		if len(blitz) == 0 {
			continue
		}
		sortByCreated(blitz)
		store[m[1]] = blitz
		log.Debug("loaded %d blitz games from %s (%d total)", len(blitz), entry.Name(), len(games))
	}

	log.Info("loaded %d games across %d months from %s", store.Len(), len(store), dir)
	return store, nil
}

func readShard(path string) ([]models.Game, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read shard %s: %w", path, err)
	}
	var games []models.Game
	if err := json.Unmarshal(data, &games); err != nil {
		return nil, fmt.Errorf("decode shard %s: %w", path, err)
	}
	return games, nil
}

// WriteMonths writes one indented shard per month into dir, creating it if
// needed. Empty months are skipped.
func WriteMonths(dir string, store models.GamesByMonth) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create archive dir %s: %w", dir, err)
	}
	for _, key := range store.SortedKeys() {
		games := store[key]
		if len(games) == 0 {
			continue
		}
		data, err := json.MarshalIndent(games, "", "  ")
		if err != nil {
			return fmt.Errorf("encode month %s: %w", key, err)
		}
		path := filepath.Join(dir, key+".json")
		tmp := path + ".tmp"
		if err := os.WriteFile(tmp, data, 0o644); err != nil {
			return fmt.Errorf("write shard %s: %w", path, err)
		}
		if err := os.Rename(tmp, path); err != nil {
			return fmt.Errorf("replace shard %s: %w", path, err)
		}
	}
	return nil
}

// Merge folds incoming into existing and returns a fresh store plus the
// number of previously unseen games. Incoming games replace existing ones
// with the same id, non-blitz games are ignored and every game is re-bucketed
// by its createdAt month in loc.
func Merge(existing models.GamesByMonth, incoming []models.Game, loc *time.Location) (models.GamesByMonth, int) {
	if loc == nil {
		loc = time.Local
	}

	byID := make(map[string]models.Game, existing.Len()+len(incoming))
	for _, g := range existing.Flatten() {
		byID[g.ID] = g
	}
	added := 0
	for _, g := range incoming {
		if g.Speed != models.SpeedBlitz {
			continue
		}
		if _, ok := byID[g.ID]; !ok {
			added++
		}
		byID[g.ID] = g
	}

	merged := make(models.GamesByMonth)
	for _, g := range byID {
		key := MonthKey(g.CreatedAt, loc)
		merged[key] = append(merged[key], g)
	}
	for _, games := range merged {
		sortByCreated(games)
	}
	return merged, added
}

// MonthKey formats a createdAt timestamp as "YYYY-MM" in loc.
func MonthKey(ms int64, loc *time.Location) string {
	return time.UnixMilli(ms).In(loc).Format("2006-01")
}

// MostRecentCreatedAt returns the newest createdAt in store, or 0.
func MostRecentCreatedAt(store models.GamesByMonth) int64 {
	var latest int64
	for _, games := range store {
		for _, g := range games {
			latest = max(latest, g.CreatedAt)
		}
	}
	return latest
}

// KeepBlitz returns the blitz games of games in their original order.
func KeepBlitz(games []models.Game) []models.Game {
	out := make([]models.Game, 0, len(games))
	for _, g := range games {
		if g.Speed == models.SpeedBlitz {
			out = append(out, g)
		}
	}
	return out
}

// sortByCreated orders games by createdAt, breaking ties by id so merges are
// deterministic.
func sortByCreated(games []models.Game) {
	slices.SortFunc(games, func(a, b models.Game) int {
		if c := cmp.Compare(a.CreatedAt, b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}
