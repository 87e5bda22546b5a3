package aggregate

import (
	"fmt"

	"github.com/vytor/chessduel/internal/models"
)

// PointsTimeline returns the running score after every game in createdAt
// order. A win is worth one point, a draw half a point to each side.
func PointsTimeline(games models.GamesByMonth, player1Name string) []models.TimelinePoint {
	sequence := chronological(games)
	points := make([]models.TimelinePoint, 0, len(sequence))

	var p1, p2 float64
	for i, g := range sequence {
		switch slotOf(g, player1Name) {
		case models.SlotPlayer1:
			p1++
		case models.SlotPlayer2:
			p2++
		default:
			p1 += 0.5
			p2 += 0.5
		}
		points = append(points, models.TimelinePoint{
			Label:         fmt.Sprintf("Game %d", i+1),
			GameID:        g.ID,
			CreatedAt:     g.CreatedAt,
			Player1Points: p1,
			Player2Points: p2,
		})
	}
	return points
}
