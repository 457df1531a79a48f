package filter

import (
	"fmt"
	"strings"

	"github.com/pfrederiksen/kbo-gamecenter/internal/game"
)

// Parse builds a Filter from a whitespace-separated list of key:value terms.
//
// Supported keys:
//   - "team:LG" - repeatable; comma-separated values are allowed ("team:LG,KIA")
//   - "stadium:잠실" - repeatable, substring match
//   - "status:final" - one of scheduled, final, cancelled (alias "canceled")
//
// An empty expression yields an empty filter.
func Parse(expr string) (*Filter, error) {
	f := NewFilter()

	for _, term := range strings.Fields(expr) {
		key, value, ok := strings.Cut(term, ":")
		if !ok || value == "" {
			return nil, fmt.Errorf("invalid filter term %q. Use key:value, e.g. 'team:LG'", term)
		}

		for _, v := range strings.Split(value, ",") {
			v = strings.TrimSpace(v)
			if v == "" {
				continue
			}
			switch strings.ToLower(key) {
			case "team":
				f.Teams = append(f.Teams, v)
			case "stadium":
				f.Stadiums = append(f.Stadiums, v)
			case "status":
				status, err := parseStatus(v)
				if err != nil {
					return nil, err
				}
				f.Statuses = append(f.Statuses, status)
			default:
				return nil, fmt.Errorf("unknown filter key %q (must be team, stadium or status)", key)
			}
		}
	}

	return f, nil
}

// parseStatus converts a status name to game.Status
func parseStatus(name string) (game.Status, error) {
	statuses := map[string]game.Status{
		"scheduled": game.StatusScheduled,
		"final":     game.StatusFinal,
		"cancelled": game.StatusCancelled,
		"canceled":  game.StatusCancelled,
	}

	status, ok := statuses[strings.ToLower(name)]
	if !ok {
		return "", fmt.Errorf("invalid status %q (must be scheduled, final or cancelled)", name)
	}
	return status, nil
}
