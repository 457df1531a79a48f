package game

import (
	"crypto/sha1"
	"fmt"
	"net/url"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// Game represents one scheduled or played KBO game
type Game struct {
	Date          string    `json:"date"`
	Time          *string   `json:"time"`
	Away          string    `json:"away"`
	Home          string    `json:"home"`
	AwayScore     *int      `json:"away_score"`
	HomeScore     *int      `json:"home_score"`
	Stadium       *string   `json:"stadium"`
	TV            *string   `json:"tv"`
	Radio         *string   `json:"radio"`
	Note          *string   `json:"note"`
	GameID        *string   `json:"game_id"`
	GameCenterURL *string   `json:"gamecenter_url"`
	FetchedAt     time.Time `json:"fetched_at"`
}

// Entry is the listing view of a game returned by schedule queries
type Entry struct {
	Date          string  `json:"date"`
	Time          *string `json:"time"`
	Away          string  `json:"away"`
	Home          string  `json:"home"`
	Score         *string `json:"score"`
	Stadium       *string `json:"stadium"`
	TV            *string `json:"tv"`
	Radio         *string `json:"radio"`
	Note          *string `json:"note"`
	GameID        *string `json:"game_id"`
	GameCenterURL *string `json:"gamecenter_url"`
}

// Status is the state of a game as far as the schedule page tells
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusFinal     Status = "final"
	StatusCancelled Status = "cancelled"
)

// Status reports whether the game was cancelled, has a score, or is still to
// be played. Cancellation wins over a score.
func (g *Game) Status() Status {
	switch {
	case g.Note != nil && strings.Contains(*g.Note, "취소"):
		return StatusCancelled
	case g.AwayScore != nil && g.HomeScore != nil:
		return StatusFinal
	default:
		return StatusScheduled
	}
}

// Score returns the final score as "away-home", or "" if either side is unknown
func (g *Game) Score() string {
	if g.AwayScore == nil || g.HomeScore == nil {
		return ""
	}
	return fmt.Sprintf("%d-%d", *g.AwayScore, *g.HomeScore)
}

// Entry converts the game into its listing view
func (g *Game) Entry() Entry {
	e := Entry{
		Date:          g.Date,
		Time:          g.Time,
		Away:          g.Away,
		Home:          g.Home,
		Stadium:       g.Stadium,
		TV:            g.TV,
		Radio:         g.Radio,
		Note:          g.Note,
		GameCenterURL: g.GameCenterURL,
	}
	if s := g.Score(); s != "" {
		e.Score = &s
	}
	if id := g.ResolvedGameID(); id != "" {
		e.GameID = &id
	}
	return e
}

// ResolvedGameID returns the external game ID, falling back to the gameId
// query parameter of the game-center link.
func (g *Game) ResolvedGameID() string {
	if g.GameID != nil && *g.GameID != "" {
		return *g.GameID
	}
	if g.GameCenterURL != nil {
		return ExtractGameID(*g.GameCenterURL)
	}
	return ""
}

// HasTeam reports whether team plays in this game, as either side. team is
// NFC-normalized to match the stored names.
func (g *Game) HasTeam(team string) bool {
	team = norm.NFC.String(strings.TrimSpace(team))
	return team != "" && (g.Away == team || g.Home == team)
}

// IdentityKey returns the uniqueness key the store enforces for a game
func (g *Game) IdentityKey() string {
	return strings.Join([]string{g.Date, deref(g.Time), g.Away, g.Home, deref(g.GameID)}, "|")
}

// StableID creates a deterministic identifier for a game based on its
// identity key. Used where a game has no external ID of its own.
func (g *Game) StableID() string {
	if id := g.ResolvedGameID(); id != "" {
		return id
	}
	h := sha1.New()
	h.Write([]byte(g.IdentityKey()))
	return fmt.Sprintf("%x", h.Sum(nil))
}

// ExtractGameID returns the gameId query parameter of a game-center link.
// Returns "" when the link cannot be parsed or carries no ID.
func ExtractGameID(link string) string {
	if link == "" {
		return ""
	}
	u, err := url.Parse(link)
	if err != nil {
		return ""
	}
	return u.Query().Get("gameId")
}

// StringPtr returns a pointer to s, or nil when s is blank
func StringPtr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// IntPtr returns a pointer to n
func IntPtr(n int) *int {
	return &n
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
