package filter

import (
	"testing"

	"github.com/pfrederiksen/kbo-gamecenter/internal/game"
)

func intPtr(n int) *int { return &n }

func testGames() []game.Game {
	return []game.Game{
		{Date: "2025-04-01", Away: "LG", Home: "두산", AwayScore: intPtr(5), HomeScore: intPtr(3), Stadium: game.StringPtr("잠실")},
		{Date: "2025-04-01", Away: "KT", Home: "SSG", Stadium: game.StringPtr("문학")},
		{Date: "2025-04-01", Away: "한화", Home: "삼성", Stadium: game.StringPtr("대구"), Note: game.StringPtr("우천취소")},
		{Date: "2025-04-01", Away: "NC", Home: "KIA"},
	}
}

func TestFilter_IsEmpty(t *testing.T) {
	tests := []struct {
		name   string
		filter *Filter
		want   bool
	}{
		{name: "empty filter", filter: NewFilter(), want: true},
		{name: "nil filter", filter: nil, want: true},
		{name: "filter with team", filter: &Filter{Teams: []string{"LG"}}, want: false},
		{name: "filter with stadium", filter: &Filter{Stadiums: []string{"잠실"}}, want: false},
		{name: "filter with status", filter: &Filter{Statuses: []game.Status{game.StatusFinal}}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.IsEmpty(); got != tt.want {
				t.Errorf("Filter.IsEmpty() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFilter_Apply(t *testing.T) {
	tests := []struct {
		name   string
		filter *Filter
		want   []string // away teams, in order
	}{
		{
			name:   "empty filter keeps everything",
			filter: NewFilter(),
			want:   []string{"LG", "KT", "한화", "NC"},
		},
		{
			name:   "home or away team, case-insensitive",
			filter: &Filter{Teams: []string{"kia", "두산"}},
			want:   []string{"LG", "NC"},
		},
		{
			name:   "team match is exact",
			filter: &Filter{Teams: []string{"K"}},
			want:   []string{},
		},
		{
			name:   "stadium substring",
			filter: &Filter{Stadiums: []string{"문"}},
			want:   []string{"KT"},
		},
		{
			name:   "missing stadium never matches",
			filter: &Filter{Stadiums: []string{""}},
			want:   []string{"LG", "KT", "한화"},
		},
		{
			name:   "status",
			filter: &Filter{Statuses: []game.Status{game.StatusScheduled}},
			want:   []string{"KT", "NC"},
		},
		{
			name: "criteria combine with AND",
			filter: &Filter{
				Teams:    []string{"LG", "한화"},
				Statuses: []game.Status{game.StatusCancelled},
			},
			want: []string{"한화"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.filter.Apply(testGames())
			if len(got) != len(tt.want) {
				t.Fatalf("Apply() returned %d games, want %d", len(got), len(tt.want))
			}
			for i := range tt.want {
				if got[i].Away != tt.want[i] {
					t.Errorf("game %d away = %q, want %q", i, got[i].Away, tt.want[i])
				}
			}
		})
	}
}

func TestFilter_String(t *testing.T) {
	tests := []struct {
		name   string
		filter *Filter
		want   string
	}{
		{name: "empty", filter: NewFilter(), want: "No active filters"},
		{
			name: "all criteria",
			filter: &Filter{
				Teams:    []string{"LG", "KIA"},
				Stadiums: []string{"잠실"},
				Statuses: []game.Status{game.StatusFinal},
			},
			want: "Teams: LG, KIA | Stadiums: 잠실 | Status: final",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}
