// Package filter narrows a day's schedule down to the games a user cares
// about.
//
// Criteria combine with AND; values within one criterion combine with OR:
//   - Teams (exact, case-insensitive; either side of the game)
//   - Stadiums (case-insensitive substring match)
//   - Statuses (scheduled, final, cancelled)
//
// Example usage:
//
//	f, err := filter.Parse("team:LG team:KIA status:final")
//	if err != nil { ... }
//	games = f.Apply(games)
package filter

import (
	"fmt"
	"strings"

	"github.com/pfrederiksen/kbo-gamecenter/internal/game"
)

// Filter represents schedule filtering criteria
type Filter struct {
	Teams    []string      `json:"teams,omitempty"`
	Stadiums []string      `json:"stadiums,omitempty"`
	Statuses []game.Status `json:"statuses,omitempty"`
}

// NewFilter creates an empty filter, which matches every game
func NewFilter() *Filter {
	return &Filter{
		Teams:    []string{},
		Stadiums: []string{},
		Statuses: []game.Status{},
	}
}

// IsEmpty checks if the filter has any active criteria
func (f *Filter) IsEmpty() bool {
	return f == nil || (len(f.Teams) == 0 && len(f.Stadiums) == 0 && len(f.Statuses) == 0)
}

// Matches checks if a game passes every active criterion
func (f *Filter) Matches(g *game.Game) bool {
	if f.IsEmpty() {
		return true
	}

	if len(f.Teams) > 0 {
		matched := false
		for _, team := range f.Teams {
			if strings.EqualFold(g.Away, team) || strings.EqualFold(g.Home, team) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	// games without a stadium never match a stadium criterion
	if len(f.Stadiums) > 0 {
		if g.Stadium == nil {
			return false
		}
		matched := false
		stadiumLower := strings.ToLower(*g.Stadium)
		for _, stadium := range f.Stadiums {
			if strings.Contains(stadiumLower, strings.ToLower(stadium)) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	if len(f.Statuses) > 0 {
		status := g.Status()
		matched := false
		for _, s := range f.Statuses {
			if s == status {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	return true
}

// Apply returns the games matching the filter, preserving order. An empty
// filter returns games unchanged.
func (f *Filter) Apply(games []game.Game) []game.Game {
	if f.IsEmpty() {
		return games
	}

	filtered := make([]game.Game, 0, len(games))
	for i := range games {
		if f.Matches(&games[i]) {
			filtered = append(filtered, games[i])
		}
	}
	return filtered
}

// String returns a human-readable description of the active criteria.
// Format: "Teams: LG, KIA | Stadiums: 잠실 | Status: final"
func (f *Filter) String() string {
	if f.IsEmpty() {
		return "No active filters"
	}

	var parts []string
	if len(f.Teams) > 0 {
		parts = append(parts, fmt.Sprintf("Teams: %s", strings.Join(f.Teams, ", ")))
	}
	if len(f.Stadiums) > 0 {
		parts = append(parts, fmt.Sprintf("Stadiums: %s", strings.Join(f.Stadiums, ", ")))
	}
	if len(f.Statuses) > 0 {
		statuses := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			statuses[i] = string(s)
		}
		parts = append(parts, fmt.Sprintf("Status: %s", strings.Join(statuses, ", ")))
	}
	return strings.Join(parts, " | ")
}
