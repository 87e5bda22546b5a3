package models

// KingMoves counts king moves (including castling) per side.
type KingMoves struct {
	White int `json:"white"`
	Black int `json:"black"`
}

// StreakPair holds one value per player slot.
type StreakPair struct {
	Player1 int `json:"player1"`
	Player2 int `json:"player2"`
}

// Player slot labels used for leaders and session winners.
const (
	SlotPlayer1 = "player1"
	SlotPlayer2 = "player2"
	SlotDraw    = "draw"
)

type PlayerStats struct {
	Name          string `json:"name"`
	Wins          int    `json:"wins"`
	Losses        int    `json:"losses"`
	Draws         int    `json:"draws"`
	BestStreak    int    `json:"best_streak"`
	CurrentStreak int    `json:"current_streak"`

	WinsAsWhite   int `json:"wins_as_white"`
	WinsAsBlack   int `json:"wins_as_black"`
	LossesAsWhite int `json:"losses_as_white"`
	LossesAsBlack int `json:"losses_as_black"`
	GamesAsWhite  int `json:"games_as_white"`
	GamesAsBlack  int `json:"games_as_black"`

	// Decisive win rates in percent: wins / (wins + losses).
	WinRate      float64 `json:"win_rate"`
	WhiteWinRate float64 `json:"white_win_rate"`
	BlackWinRate float64 `json:"black_win_rate"`

	Accuracy     []float64 `json:"accuracy"`
	AvgAccuracy  int       `json:"avg_accuracy"`
	Blunders     int       `json:"blunders"`
	Mistakes     int       `json:"mistakes"`
	Inaccuracies int       `json:"inaccuracies"`

	KingWalks    []int   `json:"king_walks"`
	AvgKingWalks float64 `json:"avg_king_walks"`

	FastestWin   int    `json:"fastest_win"`
	FastestWinID string `json:"fastest_win_id,omitempty"`

	FirstMoves map[string]int `json:"first_moves"`

	TimeRemaining    []float64 `json:"time_remaining"`
	AvgTimeRemaining float64   `json:"avg_time_remaining"`
	TimePressureWins int       `json:"time_pressure_wins"`

	ByTermination map[string]int `json:"by_termination"`
}

type MonthStat struct {
	Games            int        `json:"games"`
	Player1Wins      int        `json:"player1_wins"`
	Player2Wins      int        `json:"player2_wins"`
	Draws            int        `json:"draws"`
	Player1WinRate   float64    `json:"player1_win_rate"`
	Player2WinRate   float64    `json:"player2_win_rate"`
	Streaks          StreakPair `json:"streaks"`
	Player1KingMoves []int      `json:"player1_king_moves"`
	Player2KingMoves []int      `json:"player2_king_moves"`
	Player1Accuracy  []float64  `json:"player1_accuracy"`
	Player2Accuracy  []float64  `json:"player2_accuracy"`
}

// Stats is the head-to-head rollup for a filtered period.
type Stats struct {
	Player1Name string      `json:"player1_name"`
	Player2Name string      `json:"player2_name"`
	TotalGames  int         `json:"total_games"`
	Player1     PlayerStats `json:"player1"`
	Player2     PlayerStats `json:"player2"`

	ByTermination map[string]int       `json:"by_termination"`
	MonthlyStats  map[string]MonthStat `json:"monthly_stats"`
	Months        []string             `json:"months"`

	GameLengths    []int  `json:"game_lengths"`
	AvgGameLength  int    `json:"avg_game_length"`
	LongestGame    int    `json:"longest_game"`
	LongestGameID  string `json:"longest_game_id,omitempty"`
	ShortestGame   int    `json:"shortest_game"`
	ShortestGameID string `json:"shortest_game_id,omitempty"`

	OpeningCounts         map[string]int `json:"opening_counts"`
	MostCommonOpening     string         `json:"most_common_opening"`
	MostCommonTermination string         `json:"most_common_termination"`
	MostCommonFirstMove   string         `json:"most_common_first_move"`
	DateRange             string         `json:"date_range"`
}

type OpeningStat struct {
	Name              string  `json:"name"`
	Games             int     `json:"games"`
	Player1Wins       int     `json:"player1_wins"`
	Player2Wins       int     `json:"player2_wins"`
	Draws             int     `json:"draws"`
	Player1WhiteGames int     `json:"player1_white_games"`
	Player1BlackGames int     `json:"player1_black_games"`
	Player2WhiteGames int     `json:"player2_white_games"`
	Player2BlackGames int     `json:"player2_black_games"`
	Player1WinRate    float64 `json:"player1_win_rate"`
	Player2WinRate    float64 `json:"player2_win_rate"`
}

type TimelinePoint struct {
	Label         string  `json:"label"`
	GameID        string  `json:"game_id"`
	CreatedAt     int64   `json:"created_at"`
	Player1Points float64 `json:"player1_points"`
	Player2Points float64 `json:"player2_points"`
}

type CalendarDay struct {
	Date      string `json:"date"`
	Games     int    `json:"games"`
	Intensity int    `json:"intensity"`
}
