package models

import (
	"slices"
	"strings"
)

// Color is the side a player had in a game.
type Color string

const (
	White Color = "white"
	Black Color = "black"
)

// Termination codes the dashboard knows how to label.
const (
	StatusMate      = "mate"
	StatusResign    = "resign"
	StatusTimeout   = "timeout"
	StatusOutOfTime = "outoftime"
	StatusDraw      = "draw"
	StatusStalemate = "stalemate"
	StatusUnknown   = "unknown"
)

// Speed categories. Only blitz games are loaded into the dashboard.
const (
	SpeedBlitz = "blitz"
	SpeedRapid = "rapid"
)

// Game is a single archived game as exported by Lichess.
type Game struct {
	ID         string   `json:"id"`
	Rated      bool     `json:"rated"`
	Variant    string   `json:"variant,omitempty"`
	Speed      string   `json:"speed"`
	Perf       string   `json:"perf,omitempty"`
	CreatedAt  int64    `json:"createdAt"`
	LastMoveAt int64    `json:"lastMoveAt,omitempty"`
	Status     string   `json:"status"`
	Players    Players  `json:"players"`
	Winner     Color    `json:"winner,omitempty"`
	Opening    *Opening `json:"opening,omitempty"`
	Moves      string   `json:"moves,omitempty"`
	Clocks     []int64  `json:"clocks,omitempty"`
	Clock      *Clock   `json:"clock,omitempty"`
	Analysis   []Eval   `json:"analysis,omitempty"`
}

type Players struct {
	White Player `json:"white"`
	Black Player `json:"black"`
}

type Player struct {
	User     User            `json:"user"`
	Rating   int             `json:"rating,omitempty"`
	Analysis *PlayerAnalysis `json:"analysis,omitempty"`
}

type User struct {
	Name string `json:"name"`
	ID   string `json:"id,omitempty"`
}

// PlayerAnalysis is the engine summary for one side. A nil pointer on
// Player means the game was never analyzed.
type PlayerAnalysis struct {
	Inaccuracy int     `json:"inaccuracy"`
	Mistake    int     `json:"mistake"`
	Blunder    int     `json:"blunder"`
	ACPL       int     `json:"acpl"`
	Accuracy   float64 `json:"accuracy,omitempty"`
}

type Opening struct {
	ECO  string `json:"eco,omitempty"`
	Name string `json:"name"`
	Ply  int    `json:"ply,omitempty"`
}

// Clock holds the time control in seconds.
type Clock struct {
	Initial   int `json:"initial"`
	Increment int `json:"increment"`
	TotalTime int `json:"totalTime,omitempty"`
}

// Eval is the engine evaluation after one ply. Even indexes follow White's
// moves, odd indexes follow Black's. Mate is signed: positive favours White.
type Eval struct {
	Eval      *int   `json:"eval,omitempty"`
	Mate      *int   `json:"mate,omitempty"`
	Best      string `json:"best,omitempty"`
	Variation string `json:"variation,omitempty"`
}

// WhiteName returns the display name of the player with the white pieces.
func (g Game) WhiteName() string { return g.Players.White.User.Name }

// BlackName returns the display name of the player with the black pieces.
func (g Game) BlackName() string { return g.Players.Black.User.Name }

// HasAnalysis reports whether at least one side carries an analysis block.
func (g Game) HasAnalysis() bool {
	return g.Players.White.Analysis != nil || g.Players.Black.Analysis != nil
}

// OpeningName returns the opening name or "" when the game has none.
func (g Game) OpeningName() string {
	if g.Opening == nil {
		return ""
	}
	return g.Opening.Name
}

// Termination returns the normalized status code.
func (g Game) Termination() string {
	return NormalizeStatus(g.Status)
}

// NormalizeStatus maps a raw status onto the known termination codes.
func NormalizeStatus(status string) string {
	s := strings.ToLower(status)
	switch s {
	case StatusMate, StatusResign, StatusTimeout, StatusOutOfTime, StatusDraw, StatusStalemate:
		return s
	default:
		return StatusUnknown
	}
}

// GamesByMonth buckets games by "YYYY-MM".
type GamesByMonth map[string][]Game

// SortedKeys returns the month keys in chronological order.
func (m GamesByMonth) SortedKeys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Flatten concatenates all buckets in chronological month order.
func (m GamesByMonth) Flatten() []Game {
	var out []Game
	for _, k := range m.SortedKeys() {
		out = append(out, m[k]...)
	}
	return out
}

// Len returns the total number of games across all months.
func (m GamesByMonth) Len() int {
	n := 0
	for _, games := range m {
		n += len(games)
	}
	return n
}

// GameFilter narrows repository listings.
type GameFilter struct {
	MonthKey string
	Speed    string
	Player   string
	Winner   string
	Limit    int
	Offset   int
	OrderDir string
}
