package notation

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/corentings/chess/v2"
	"github.com/vytor/chessduel/internal/models"
)

// Result returns the PGN result token for g.
func Result(g models.Game) string {
	switch g.Winner {
	case models.White:
		return "1-0"
	case models.Black:
		return "0-1"
	}
	if g.Termination() == models.StatusUnknown {
		return "*"
	}
	return "1/2-1/2"
}

// ToPGN renders g with the Seven Tag Roster plus the Lichess extras it
// carries. The output is parsed back, movetext and headers, before it is
// returned.
func ToPGN(g models.Game) (string, error) {
	event := "Casual " + g.Speed + " game"
	if g.Rated {
		event = "Rated " + g.Speed + " game"
	}
	result := Result(g)
	date := "????.??.??"
	if g.CreatedAt > 0 {
		date = time.UnixMilli(g.CreatedAt).UTC().Format("2006.01.02")
	}

	var b strings.Builder
	tag := func(name, value string) {
		if value == "" {
			return
		}
		fmt.Fprintf(&b, "[%s \"%s\"]\n", name, strings.ReplaceAll(value, `"`, `'`))
	}
	tag("Event", event)
	tag("Site", "https://lichess.org/"+g.ID)
	tag("Date", date)
	tag("Round", "-")
	tag("White", g.WhiteName())
	tag("Black", g.BlackName())
	tag("Result", result)
	if g.Opening != nil {
		tag("ECO", g.Opening.ECO)
		tag("Opening", g.Opening.Name)
	}
	if g.Clock != nil {
		tag("TimeControl", fmt.Sprintf("%d+%d", g.Clock.Initial, g.Clock.Increment))
	}
	tag("Termination", g.Termination())
	b.WriteByte('\n')

	if text := MoveText(g.Moves); text != "" {
		b.WriteString(text)
		b.WriteByte(' ')
	}
	b.WriteString(result)
	b.WriteByte('\n')

	out := b.String()
	if _, err := chess.PGN(strings.NewReader(out)); err != nil {
		return "", fmt.Errorf("render pgn for game %s: %w", g.ID, err)
	}
	if got := ParseHeaders(out)["Result"]; got != result {
		return "", fmt.Errorf("render pgn for game %s: result tag %q, want %q", g.ID, got, result)
	}
	return out, nil
}

var headerRe = regexp.MustCompile(`\[(\w+)\s+"([^"]+)"\]`)

// ParseHeaders extracts PGN header tags into a map.
func ParseHeaders(pgn string) map[string]string {
	out := map[string]string{}
	for _, line := range strings.Split(pgn, "\n") {
		if !strings.HasPrefix(line, "[") {
			continue
		}
		if m := headerRe.FindStringSubmatch(line); len(m) == 3 {
			out[m[1]] = m[2]
		}
	}
	return out
}
