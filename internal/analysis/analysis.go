// Package analysis derives deterministic metrics from game-center payloads
// and reports structural gaps in them.
package analysis

import (
	"strconv"
	"strings"

	"github.com/pfrederiksen/kbo-gamecenter/internal/game"
)

// Metrics are the values computed from a summary payload. A nil field is
// unknown.
type Metrics struct {
	RunDiff *int `json:"run_diff"`
}

// Table is a labelled set of rows checked for emptiness
type Table struct {
	Label string
	Rows  [][]string
}

// Derive computes Metrics from a summary. A nil summary yields unknown
// metrics.
func Derive(s *game.Summary) Metrics {
	if s == nil {
		return Metrics{}
	}
	return Metrics{RunDiff: RunDiff(s.Linescore)}
}

// RunDiff returns away total minus home total, where each total is the last
// numeric cell of the first (away) and second (home) linescore row. Returns
// nil when there are fewer than two rows or either row has no number.
func RunDiff(linescore [][]string) *int {
	if len(linescore) < 2 {
		return nil
	}
	away, ok := lastNumber(linescore[0])
	if !ok {
		return nil
	}
	home, ok := lastNumber(linescore[1])
	if !ok {
		return nil
	}
	diff := away - home
	return &diff
}

// lastNumber returns the value of the last cell containing any digit, read
// from that cell's digits alone. A digit run too large for an int makes the
// row unknown.
func lastNumber(row []string) (int, bool) {
	for i := len(row) - 1; i >= 0; i-- {
		n, found, err := digits(row[i])
		if err != nil {
			return 0, false
		}
		if found {
			return n, true
		}
	}
	return 0, false
}

func digits(cell string) (int, bool, error) {
	var b strings.Builder
	for _, r := range cell {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0, false, nil
	}
	n, err := strconv.Atoi(b.String())
	if err != nil {
		return 0, false, err
	}
	return n, true, nil
}

// EmptyTables returns "<label>: empty" for every table without rows, in
// the order given.
func EmptyTables(tables ...Table) []string {
	warnings := make([]string, 0)
	for _, t := range tables {
		if len(t.Rows) == 0 {
			warnings = append(warnings, t.Label+": empty")
		}
	}
	return warnings
}

// SummaryTables lists the tables of a summary that are expected to have rows
func SummaryTables(s *game.Summary) []Table {
	if s == nil {
		return nil
	}
	return []Table{
		{Label: "scoreboard", Rows: s.Scoreboard},
		{Label: "linescore", Rows: s.Linescore},
		{Label: "rheb", Rows: s.RHEB},
	}
}

// RosterTables lists the tables of a roster that are expected to have rows
func RosterTables(r *game.Roster) []Table {
	if r == nil {
		return nil
	}
	return []Table{
		{Label: "lineup_away", Rows: r.Away},
		{Label: "lineup_home", Rows: r.Home},
	}
}

