package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pfrederiksen/kbo-gamecenter/internal/game"
)

// SortOrder represents the available sorting options
type SortOrder string

const (
	SortByTime    SortOrder = "time"
	SortByStadium SortOrder = "stadium"
	SortByTeam    SortOrder = "team"
)

// ParseSortOrder validates a --sort value
func ParseSortOrder(s string) (SortOrder, error) {
	switch order := SortOrder(strings.ToLower(strings.TrimSpace(s))); order {
	case SortByTime, SortByStadium, SortByTeam:
		return order, nil
	default:
		return "", fmt.Errorf("invalid sort: %s (must be 'time', 'stadium' or 'team')", s)
	}
}

// sortGames sorts games in place. Ties keep their stored order.
func sortGames(games []game.Game, order SortOrder) {
	switch order {
	case SortByTime:
		sort.SliceStable(games, func(i, j int) bool {
			return compareByTime(&games[i], &games[j])
		})
	case SortByStadium:
		sort.SliceStable(games, func(i, j int) bool {
			si, sj := deref(games[i].Stadium), deref(games[j].Stadium)
			if si != sj {
				// games without a stadium go last
				if si == "" || sj == "" {
					return sj == ""
				}
				return si < sj
			}
			return compareByTime(&games[i], &games[j])
		})
	case SortByTeam:
		sort.SliceStable(games, func(i, j int) bool {
			if games[i].Away != games[j].Away {
				return strings.ToLower(games[i].Away) < strings.ToLower(games[j].Away)
			}
			return compareByTime(&games[i], &games[j])
		})
	}
}

// compareByTime orders games with an unknown start time first, like the
// schedule store does.
func compareByTime(i, j *game.Game) bool {
	ti, tj := deref(i.Time), deref(j.Time)
	if ti != tj {
		return ti < tj
	}
	if i.Away != j.Away {
		return i.Away < j.Away
	}
	return i.Home < j.Home
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
