package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/pfrederiksen/kbo-gamecenter/internal/game"
)

// GameDuration is the block reserved for a game with a known start time
const GameDuration = 3 * time.Hour

// GenerateICS generates an iCalendar (.ics) feed with one event per game
func GenerateICS(games []game.Game) string {
	var ics strings.Builder

	ics.WriteString("BEGIN:VCALENDAR\r\n")
	ics.WriteString("VERSION:2.0\r\n")
	ics.WriteString("PRODID:-//KBO Gamecenter//kbo-gamecenter//EN\r\n")
	ics.WriteString("CALSCALE:GREGORIAN\r\n")
	ics.WriteString("METHOD:PUBLISH\r\n")
	ics.WriteString("X-WR-TIMEZONE:Asia/Seoul\r\n")

	now := time.Now().UTC()
	for i := range games {
		writeEvent(&ics, &games[i], now)
	}

	ics.WriteString("END:VCALENDAR\r\n")
	return ics.String()
}

func writeEvent(ics *strings.Builder, g *game.Game, now time.Time) {
	ics.WriteString("BEGIN:VEVENT\r\n")
	ics.WriteString(fmt.Sprintf("UID:%s@koreabaseball.com\r\n", g.StableID()))
	ics.WriteString(fmt.Sprintf("DTSTAMP:%s\r\n", formatICSTime(now)))

	day, err := game.ParseDate(g.Date)
	start, timed := startTime(g)
	switch {
	case timed:
		ics.WriteString(fmt.Sprintf("DTSTART:%s\r\n", formatICSTime(start)))
		ics.WriteString(fmt.Sprintf("DTEND:%s\r\n", formatICSTime(start.Add(GameDuration))))
	case err == nil:
		// unknown start time: block the whole day
		ics.WriteString(fmt.Sprintf("DTSTART;VALUE=DATE:%s\r\n", day.Format("20060102")))
		ics.WriteString(fmt.Sprintf("DTEND;VALUE=DATE:%s\r\n", day.AddDate(0, 0, 1).Format("20060102")))
	}

	ics.WriteString(fmt.Sprintf("SUMMARY:%s\r\n", escapeICS(summary(g))))
	ics.WriteString(fmt.Sprintf("DESCRIPTION:%s\r\n", escapeICS(description(g))))
	if g.Stadium != nil {
		ics.WriteString(fmt.Sprintf("LOCATION:%s\r\n", escapeICS(*g.Stadium)))
	}
	if g.GameCenterURL != nil {
		ics.WriteString(fmt.Sprintf("URL:%s\r\n", *g.GameCenterURL))
	}

	status := "CONFIRMED"
	if g.Status() == game.StatusCancelled {
		status = "CANCELLED"
	}
	ics.WriteString(fmt.Sprintf("STATUS:%s\r\n", status))
	ics.WriteString("SEQUENCE:0\r\n")
	ics.WriteString("TRANSP:OPAQUE\r\n")
	ics.WriteString("END:VEVENT\r\n")
}

// startTime returns the game's start as an instant when both the date and
// the "HH:MM" time are known.
func startTime(g *game.Game) (time.Time, bool) {
	if g.Time == nil {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation("2006-01-02 15:04", g.Date+" "+*g.Time, game.KST)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func summary(g *game.Game) string {
	if score := g.Score(); score != "" {
		return fmt.Sprintf("KBO: %s %s %s", g.Away, score, g.Home)
	}
	return fmt.Sprintf("KBO: %s vs %s", g.Away, g.Home)
}

func description(g *game.Game) string {
	lines := []string{fmt.Sprintf("%s (away) at %s (home)", g.Away, g.Home)}
	if g.TV != nil {
		lines = append(lines, "TV: "+*g.TV)
	}
	if g.Radio != nil {
		lines = append(lines, "Radio: "+*g.Radio)
	}
	if g.Note != nil {
		lines = append(lines, "Note: "+*g.Note)
	}
	return strings.Join(lines, "\n")
}

// formatICSTime formats a time.Time as an iCalendar datetime string
func formatICSTime(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

// escapeICS escapes special characters for iCalendar format
func escapeICS(s string) string {
	// Replace special characters according to RFC 5545
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
