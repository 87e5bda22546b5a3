package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/chessduel/internal/logger"
	"github.com/vytor/chessduel/internal/models"
	"github.com/vytor/chessduel/internal/repository"
)

var sqlBuilder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

const defaultListLimit = 200

type gameRepository struct {
	db *sql.DB
}

// NewGameRepository creates a new GameRepository implementation
func NewGameRepository(db *sql.DB) repository.GameRepository {
	return &gameRepository{db: db}
}

func (r *gameRepository) Get(ctx context.Context, id string) (*models.Game, error) {
	log := logger.FromContext(ctx).WithPrefix("game_repo")
	log.Debug("getting game: id=%s", id)

	query, args, err := sqlBuilder.Select("month_key", "payload").From("games").
		Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}

	g, _, err := scanGame(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("game not found: id=%s", id)
		} else {
			log.Error("failed to get game: %v", err)
		}
		return nil, err
	}
	return &g, nil
}

func (r *gameRepository) List(ctx context.Context, filter models.GameFilter) ([]models.Game, error) {
	log := logger.FromContext(ctx).WithPrefix("game_repo")
	log.Debug("listing games with filter: month=%s, speed=%s, player=%s, winner=%s",
		filter.MonthKey, filter.Speed, filter.Player, filter.Winner)

	orderDir := "ASC"
	if filter.OrderDir == "DESC" {
		orderDir = "DESC"
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	offset := max(filter.Offset, 0)

	query := applyFilter(sqlBuilder.Select("month_key", "payload").From("games"), filter).
		OrderBy("created_at "+orderDir, "id "+orderDir).
		Limit(uint64(limit)).
		Offset(uint64(offset))

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to list games: %v", err)
		return nil, err
	}
	defer rows.Close()

	games := []models.Game{}
	for rows.Next() {
		g, _, err := scanGame(rows)
		if err != nil {
			log.Error("failed to scan game row: %v", err)
			return nil, err
		}
		games = append(games, g)
	}
	log.Debug("found %d games", len(games))
	return games, rows.Err()
}

func (r *gameRepository) Count(ctx context.Context, filter models.GameFilter) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("game_repo")

	sqlStr, args, err := applyFilter(sqlBuilder.Select("COUNT(*)").From("games"), filter).ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return 0, err
	}

	var count int
	if err := r.db.QueryRowContext(ctx, sqlStr, args...).Scan(&count); err != nil {
		log.Error("failed to count games: %v", err)
		return 0, err
	}
	return count, nil
}

func applyFilter(query squirrel.SelectBuilder, filter models.GameFilter) squirrel.SelectBuilder {
	if filter.MonthKey != "" {
		query = query.Where(squirrel.Eq{"month_key": filter.MonthKey})
	}
	if filter.Speed != "" {
		query = query.Where(squirrel.Eq{"speed": filter.Speed})
	}
	if filter.Player != "" {
		query = query.Where(squirrel.Or{
			squirrel.Eq{"white_name": filter.Player},
			squirrel.Eq{"black_name": filter.Player},
		})
	}
	if filter.Winner != "" {
		query = query.Where(squirrel.Or{
			squirrel.Eq{"winner": string(models.White), "white_name": filter.Winner},
			squirrel.Eq{"winner": string(models.Black), "black_name": filter.Winner},
		})
	}
	return query
}

func (r *gameRepository) UpsertBatch(ctx context.Context, store models.GamesByMonth) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("game_repo")
	log.Debug("upserting %d games across %d months", store.Len(), len(store))

	if store.Len() == 0 {
		return 0, nil
	}

	inserted := 0
	err := tx(ctx, r.db, func(tx *sql.Tx) error {
		exists, err := tx.PrepareContext(ctx, `SELECT 1 FROM games WHERE id = ?`)
		if err != nil {
			return err
		}
		defer exists.Close()

		upsert, err := tx.PrepareContext(ctx, `
INSERT INTO games (
    id, month_key, speed, created_at, last_move_at, status, winner,
    white_name, black_name, opening_name, payload
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    month_key = excluded.month_key,
    speed = excluded.speed,
    created_at = excluded.created_at,
    last_move_at = excluded.last_move_at,
    status = excluded.status,
    winner = excluded.winner,
    white_name = excluded.white_name,
    black_name = excluded.black_name,
    opening_name = excluded.opening_name,
    payload = excluded.payload
`)
		if err != nil {
			log.Error("failed to prepare upsert: %v", err)
			return err
		}
		defer upsert.Close()

		for _, key := range store.SortedKeys() {
			for _, g := range store[key] {
				payload, err := json.Marshal(g)
				if err != nil {
					return fmt.Errorf("encode game %s: %w", g.ID, err)
				}

				var one int
				switch err := exists.QueryRowContext(ctx, g.ID).Scan(&one); {
				case errors.Is(err, sql.ErrNoRows):
					inserted++
				case err != nil:
					return err
				}

				if _, err := upsert.ExecContext(ctx, g.ID, key, g.Speed, g.CreatedAt, g.LastMoveAt,
					g.Status, string(g.Winner), g.WhiteName(), g.BlackName(), g.OpeningName(), string(payload)); err != nil {
					log.Error("failed to upsert game id=%s: %v", g.ID, err)
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	log.Debug("upsert completed, %d new games", inserted)
	return inserted, nil
}

func (r *gameRepository) LoadAll(ctx context.Context) (models.GamesByMonth, error) {
	log := logger.FromContext(ctx).WithPrefix("game_repo")

	sqlStr, args, err := sqlBuilder.Select("month_key", "payload").From("games").
		OrderBy("created_at ASC", "id ASC").ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to load games: %v", err)
		return nil, err
	}
	defer rows.Close()

	store := make(models.GamesByMonth)
	for rows.Next() {
		g, key, err := scanGame(rows)
		if err != nil {
			log.Error("failed to scan game row: %v", err)
			return nil, err
		}
		store[key] = append(store[key], g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	log.Debug("loaded %d games across %d months", store.Len(), len(store))
	return store, nil
}

func (r *gameRepository) LatestCreatedAt(ctx context.Context) (int64, error) {
	var latest sql.NullInt64
	if err := r.db.QueryRowContext(ctx, `SELECT MAX(created_at) FROM games`).Scan(&latest); err != nil {
		logger.FromContext(ctx).WithPrefix("game_repo").Error("failed to read latest created_at: %v", err)
		return 0, err
	}
	return latest.Int64, nil
}

func scanGame(row rowScanner) (models.Game, string, error) {
	var (
		g       models.Game
		key     string
		payload string
	)
	if err := row.Scan(&key, &payload); err != nil {
		return g, "", err
	}
	if err := json.Unmarshal([]byte(payload), &g); err != nil {
		return g, "", fmt.Errorf("decode stored game: %w", err)
	}
	return g, key, nil
}
