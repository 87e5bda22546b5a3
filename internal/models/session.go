package models

// Session is a burst of games played on the same day with short gaps.
type Session struct {
	Games           []Game  `json:"games"`
	StartTime       int64   `json:"start_time"`
	EndTime         int64   `json:"end_time"`
	Player1Score    float64 `json:"player1_score"`
	Player2Score    float64 `json:"player2_score"`
	TotalGames      int     `json:"total_games"`
	Winner          string  `json:"winner"`
	DurationMinutes int     `json:"duration_minutes"`
}

type SessionSummary struct {
	TotalSessions      int `json:"total_sessions"`
	Player1Wins        int `json:"player1_wins"`
	Player2Wins        int `json:"player2_wins"`
	Draws              int `json:"draws"`
	AvgGamesPerSession int `json:"avg_games_per_session"`
	AvgDuration        int `json:"avg_duration"`
}

// MissedMate records which side let a forced mate slip before losing.
type MissedMate struct {
	By     Color `json:"by"`
	MateIn int   `json:"mate_in"`
}

type HighlightEntry struct {
	Game       Game        `json:"game"`
	Score      float64     `json:"score"`
	MissedMate *MissedMate `json:"missed_mate,omitempty"`
}

type Highlights struct {
	MissedMates  []HighlightEntry `json:"missed_mates"`
	BigSwings    []HighlightEntry `json:"big_swings"`
	HighBlunders []HighlightEntry `json:"high_blunders"`
	GreatGames   []HighlightEntry `json:"great_games"`
	ChaoticGames []HighlightEntry `json:"chaotic_games"`
}
