package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pfrederiksen/kbo-gamecenter/internal/calendar"
	"github.com/pfrederiksen/kbo-gamecenter/internal/game"
	"github.com/pfrederiksen/kbo-gamecenter/internal/report"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
	FormatICS  OutputFormat = "ics"
)

// ParseFormat validates a --format value against the formats a command
// supports.
func ParseFormat(s string, allowed ...OutputFormat) (OutputFormat, error) {
	format := OutputFormat(strings.ToLower(strings.TrimSpace(s)))
	names := make([]string, 0, len(allowed))
	for _, f := range allowed {
		if f == format {
			return format, nil
		}
		names = append(names, "'"+string(f)+"'")
	}
	return "", fmt.Errorf("invalid format: %s (must be %s)", s, strings.Join(names, " or "))
}

// ScheduleOutput is the JSON document of the schedule command
type ScheduleOutput struct {
	Date  string       `json:"date"`
	Count int          `json:"count"`
	Games []game.Entry `json:"games"`
}

// WriteSchedule writes a day's games in the specified format
func WriteSchedule(w io.Writer, date string, games []game.Game, format OutputFormat) error {
	switch format {
	case FormatJSON:
		out := ScheduleOutput{Date: date, Count: len(games), Games: make([]game.Entry, 0, len(games))}
		for i := range games {
			out.Games = append(out.Games, games[i].Entry())
		}
		return writeJSON(w, out)
	case FormatICS:
		_, err := io.WriteString(w, calendar.GenerateICS(games))
		return err
	case FormatText:
		return writeScheduleText(w, date, games)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// WriteReport writes a realtime report in the specified format
func WriteReport(w io.Writer, r *report.Report, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, r)
	case FormatText:
		return writeReportText(w, r)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs v as indented JSON
func writeJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(v)
}

func writeScheduleText(w io.Writer, date string, games []game.Game) error {
	if len(games) == 0 {
		fmt.Fprintf(w, "No games on %s.\n", date)
		return nil
	}

	fmt.Fprintf(w, "%s (%d games)\n", date, len(games))
	for i := range games {
		g := &games[i]
		start := "--:--"
		if g.Time != nil {
			start = *g.Time
		}

		matchup := fmt.Sprintf("%s vs %s", g.Away, g.Home)
		if score := g.Score(); score != "" {
			matchup = fmt.Sprintf("%s %s %s", g.Away, score, g.Home)
		}

		line := fmt.Sprintf("  %s  %s", start, matchup)
		if g.Stadium != nil {
			line += " @ " + *g.Stadium
		}
		if g.Note != nil {
			line += " [" + *g.Note + "]"
		}
		fmt.Fprintln(w, line)
	}
	return nil
}

func writeReportText(w io.Writer, r *report.Report) error {
	if r.Facts == nil {
		fmt.Fprintf(w, "No matching game on %s.\n", r.Query.Date)
		return nil
	}

	g := r.Facts.ScheduleGame
	fmt.Fprintf(w, "%s vs %s (%s", g.Away, g.Home, g.Date)
	if g.Time != nil {
		fmt.Fprintf(w, " %s", *g.Time)
	}
	if g.Stadium != nil {
		fmt.Fprintf(w, ", %s", *g.Stadium)
	}
	fmt.Fprintln(w, ")")

	if g.Score != nil {
		fmt.Fprintf(w, "Score: %s\n", *g.Score)
	}
	if s := r.Facts.Summary; s != nil {
		if s.Crowd != nil {
			fmt.Fprintf(w, "Crowd: %s\n", *s.Crowd)
		}
		if s.RunTime != nil {
			fmt.Fprintf(w, "Run time: %s\n", *s.RunTime)
		}
	}
	if r.Facts.KeyPlayers != nil {
		fmt.Fprintf(w, "Key players: %s\n", r.Facts.KeyPlayers.Text)
	}
	if d := r.DerivedMetrics.RunDiff; d != nil {
		fmt.Fprintf(w, "Run differential: %d\n", *d)
	}

	fmt.Fprintf(w, "Fetched: %s", r.FetchedAt.In(game.KST).Format("2006-01-02 15:04:05 MST"))
	if r.Stale {
		fmt.Fprint(w, " (stale)")
	}
	fmt.Fprintln(w)

	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, e := range r.Errors {
			fmt.Fprintf(w, "  - %s\n", e)
		}
	}
	return nil
}
