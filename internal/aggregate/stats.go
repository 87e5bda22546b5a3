package aggregate

import (
	"cmp"
	"math"
	"slices"

	"github.com/vytor/chessduel/internal/models"
)

// TimePressureSeconds is the remaining-time threshold below which a win
// counts as a time-pressure win.
const TimePressureSeconds = 30

type statsConfig struct {
	scanner MoveScanner
}

// Option configures ComputeStats.
type Option func(*statsConfig)

// WithMoveScanner replaces the direct move scanner, typically with a memo.
func WithMoveScanner(s MoveScanner) Option {
	return func(c *statsConfig) {
		if s != nil {
			c.scanner = s
		}
	}
}

// DecisiveWinRate is the win percentage over decisive games only. Draws
// never enter the denominator; with no decisive games the rate is 0.
func DecisiveWinRate(wins, losses int) float64 {
	if wins+losses == 0 {
		return 0
	}
	return float64(wins) / float64(wins+losses) * 100
}

// ComputeStats rolls filtered up into head-to-head statistics. Player names
// come from all so they stay stable across filters. It returns nil when
// filtered holds no games.
func ComputeStats(filtered, all models.GamesByMonth, resolve IdentityResolver, opts ...Option) *models.Stats {
	if filtered.Len() == 0 {
		return nil
	}

	cfg := statsConfig{scanner: DirectScanner}
	for _, opt := range opts {
		opt(&cfg)
	}
	if resolve == nil {
		resolve = IdentifyPlayers
	}
	p1Name, p2Name := resolve(all)

	b := &statsBuilder{
		scanner: cfg.scanner,
		stats: &models.Stats{
			Player1Name:   p1Name,
			Player2Name:   p2Name,
			Player1:       newPlayerStats(p1Name),
			Player2:       newPlayerStats(p2Name),
			ByTermination: map[string]int{},
			MonthlyStats:  map[string]models.MonthStat{},
			GameLengths:   []int{},
			OpeningCounts: map[string]int{},
		},
	}
	s := b.stats

	sequence := chronological(filtered)
	s.TotalGames = len(sequence)
	best := ComputeStreaks(sequence, p1Name)
	s.Player1.BestStreak, s.Player2.BestStreak = best.Player1, best.Player2
	switch leader, n := CurrentStreak(sequence, p1Name); leader {
	case models.SlotPlayer1:
		s.Player1.CurrentStreak = n
	case models.SlotPlayer2:
		s.Player2.CurrentStreak = n
	}

	s.Months = filtered.SortedKeys()
	for _, key := range s.Months {
		games := filtered[key]
		ms := models.MonthStat{
			Games:            len(games),
			Streaks:          ComputeStreaks(games, p1Name),
			Player1KingMoves: []int{},
			Player2KingMoves: []int{},
			Player1Accuracy:  []float64{},
			Player2Accuracy:  []float64{},
		}
		for _, g := range games {
			b.add(g, &ms)
		}
		ms.Player1WinRate = DecisiveWinRate(ms.Player1Wins, ms.Player2Wins)
		ms.Player2WinRate = DecisiveWinRate(ms.Player2Wins, ms.Player1Wins)
		s.MonthlyStats[key] = ms
	}

	finishPlayer(&s.Player1)
	finishPlayer(&s.Player2)

	s.AvgGameLength = roundedMean(s.GameLengths)
	s.MostCommonOpening = mostCommon(s.OpeningCounts)
	s.MostCommonTermination = mostCommon(s.ByTermination)

	firstMoves := map[string]int{}
	for m, n := range s.Player1.FirstMoves {
		firstMoves[m] += n
	}
	for m, n := range s.Player2.FirstMoves {
		firstMoves[m] += n
	}
	s.MostCommonFirstMove = mostCommon(firstMoves)
	s.DateRange = "(" + s.Months[0] + " to " + s.Months[len(s.Months)-1] + ")"

	return s
}

func newPlayerStats(name string) models.PlayerStats {
	return models.PlayerStats{
		Name:          name,
		Accuracy:      []float64{},
		KingWalks:     []int{},
		FirstMoves:    map[string]int{},
		TimeRemaining: []float64{},
		ByTermination: map[string]int{},
	}
}

type statsBuilder struct {
	stats   *models.Stats
	scanner MoveScanner
}

// add folds one game into the running totals and its month.
func (b *statsBuilder) add(g models.Game, ms *models.MonthStat) {
	s := b.stats
	p1White := g.WhiteName() == b.stats.Player1Name

	// white/black are the stats of whoever held that colour in g.
	white, black := &s.Player1, &s.Player2
	whiteKing, blackKing := &ms.Player1KingMoves, &ms.Player2KingMoves
	whiteAcc, blackAcc := &ms.Player1Accuracy, &ms.Player2Accuracy
	if !p1White {
		white, black = black, white
		whiteKing, blackKing = blackKing, whiteKing
		whiteAcc, blackAcc = blackAcc, whiteAcc
	}
	white.GamesAsWhite++
	black.GamesAsBlack++

	var winner, loser *models.PlayerStats
	switch g.Winner {
	case models.White:
		winner, loser = white, black
		winner.WinsAsWhite++
		loser.LossesAsBlack++
	case models.Black:
		winner, loser = black, white
		winner.WinsAsBlack++
		loser.LossesAsWhite++
	}
	if winner != nil {
		winner.Wins++
		loser.Losses++
		if winner == &s.Player1 {
			ms.Player1Wins++
		} else {
			ms.Player2Wins++
		}
	} else {
		ms.Draws++
		s.Player1.Draws++
		s.Player2.Draws++
	}

	addAnalysis(white, whiteAcc, g.Players.White.Analysis)
	addAnalysis(black, blackAcc, g.Players.Black.Analysis)

	if moves := b.scanner.MoveCount(g); moves > 0 {
		s.GameLengths = append(s.GameLengths, moves)
		if moves > s.LongestGame {
			s.LongestGame, s.LongestGameID = moves, g.ID
		}
		if s.ShortestGameID == "" || moves < s.ShortestGame {
			s.ShortestGame, s.ShortestGameID = moves, g.ID
		}
		if winner != nil && (winner.FastestWinID == "" || moves < winner.FastestWin) {
			winner.FastestWin, winner.FastestWinID = moves, g.ID
		}

		km := b.scanner.KingMoves(g)
		white.KingWalks = append(white.KingWalks, km.White)
		black.KingWalks = append(black.KingWalks, km.Black)
		*whiteKing = append(*whiteKing, km.White)
		*blackKing = append(*blackKing, km.Black)

		if first := FirstMove(g.Moves); first != "" {
			white.FirstMoves[first]++
		}
	}

	if winner != nil {
		if secs := winnerTimeRemaining(g.Clocks); secs > 0 {
			winner.TimeRemaining = append(winner.TimeRemaining, secs)
			if secs < TimePressureSeconds {
				winner.TimePressureWins++
			}
		}
	}

	if name := g.OpeningName(); name != "" {
		s.OpeningCounts[name]++
	}

	status := g.Termination()
	s.ByTermination[status]++
	if winner != nil {
		winner.ByTermination[status]++
	} else {
		s.Player1.ByTermination[status]++
		s.Player2.ByTermination[status]++
	}
}

func addAnalysis(p *models.PlayerStats, monthAcc *[]float64, a *models.PlayerAnalysis) {
	if a == nil {
		return
	}
	if a.Accuracy > 0 {
		p.Accuracy = append(p.Accuracy, a.Accuracy)
		*monthAcc = append(*monthAcc, a.Accuracy)
	}
	p.Blunders += a.Blunder
	p.Mistakes += a.Mistake
	p.Inaccuracies += a.Inaccuracy
}

// winnerTimeRemaining returns the winner's clock in seconds. The final sample
// belongs to the side that moved last, so the winner's is the one before it.
func winnerTimeRemaining(clocks []int64) float64 {
	switch len(clocks) {
	case 0:
		return 0
	case 1:
		return float64(clocks[0]) / 1000
	default:
		return float64(clocks[len(clocks)-2]) / 1000
	}
}

func finishPlayer(p *models.PlayerStats) {
	p.WinRate = DecisiveWinRate(p.Wins, p.Losses)
	p.WhiteWinRate = DecisiveWinRate(p.WinsAsWhite, p.LossesAsWhite)
	p.BlackWinRate = DecisiveWinRate(p.WinsAsBlack, p.LossesAsBlack)
	p.AvgAccuracy = int(math.Round(mean(p.Accuracy)))
	p.AvgKingWalks = mean(p.KingWalks)
	p.AvgTimeRemaining = mean(p.TimeRemaining)
}

// chronological flattens games in month order and stable-sorts by createdAt.
func chronological(games models.GamesByMonth) []models.Game {
	flat := games.Flatten()
	slices.SortStableFunc(flat, func(a, b models.Game) int {
		return cmp.Compare(a.CreatedAt, b.CreatedAt)
	})
	return flat
}

type number interface {
	~int | ~int64 | ~float64
}

func mean[T number](xs []T) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += float64(x)
	}
	return sum / float64(len(xs))
}

func roundedMean[T number](xs []T) int {
	return int(math.Round(mean(xs)))
}

// mostCommon returns the key with the highest count, "-" for an empty map.
// Ties go to the lexically smallest key.
func mostCommon(counts map[string]int) string {
	best, bestN := "-", 0
	for k, n := range counts {
		if n > bestN || (n == bestN && k < best) {
			best, bestN = k, n
		}
	}
	return best
}
