package models

// Range selects games by year, month and day of month. Each component is
// either "all" or a zero padded number; an empty Month or Day means "all".
type Range struct {
	Year  string `json:"year"`
	Month string `json:"month"`
	Day   string `json:"day"`
}

// Matchup names the two players of the rivalry.
type Matchup struct {
	Player1 string `json:"player1"`
	Player2 string `json:"player2"`
}

// GameRow is the list view of a game with its derived move facts.
type GameRow struct {
	ID              string    `json:"id"`
	CreatedAt       int64     `json:"created_at"`
	White           string    `json:"white"`
	Black           string    `json:"black"`
	Winner          Color     `json:"winner,omitempty"`
	Status          string    `json:"status"`
	Opening         string    `json:"opening,omitempty"`
	MoveCount       int       `json:"move_count"`
	KingMoves       KingMoves `json:"king_moves"`
	DurationMinutes int       `json:"duration_minutes"`
}

type SessionsReport struct {
	GapMinutes int            `json:"gap_minutes"`
	Sessions   []Session      `json:"sessions"`
	Summary    SessionSummary `json:"summary"`
}
