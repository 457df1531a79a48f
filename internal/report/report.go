package report

import (
	"time"

	"github.com/pfrederiksen/kbo-gamecenter/internal/analysis"
	"github.com/pfrederiksen/kbo-gamecenter/internal/game"
)

const (
	ErrNoMatchingGame = "no_matching_game"
	ErrNoDataSource   = "no_data_source"
)

// Query selects one game of a day
type Query struct {
	Date   string  `json:"date"`
	Team   *string `json:"team"`
	GameID *string `json:"game_id"`
}

// NewQuery builds a Query, treating blank team and game ID as absent
func NewQuery(date, team, gameID string) Query {
	return Query{
		Date:   date,
		Team:   game.StringPtr(team),
		GameID: game.StringPtr(gameID),
	}
}

// Report is the realtime document for one game
type Report struct {
	Query                Query            `json:"query"`
	FetchedAt            time.Time        `json:"fetched_at"`
	Stale                bool             `json:"stale"`
	Errors               []string         `json:"errors"`
	Facts                *Facts           `json:"facts"`
	DerivedMetrics       analysis.Metrics `json:"derived_metrics"`
	AnalysisInstructions *Instructions    `json:"analysis_instructions,omitempty"`
}

// Facts is the raw material of a report, as scraped
type Facts struct {
	ScheduleGame game.Entry    `json:"schedule_game"`
	Summary      *game.Summary `json:"summary"`
	Roster       *game.Roster  `json:"roster"`
	KeyPlayers   *KeyPlayers   `json:"key_players"`
	FetchedAt    *KindTimes    `json:"fetched_at"`
	Stale        *KindFlags    `json:"stale"`
	SourceURLs   *KindURLs     `json:"source_urls"`
}

// KeyPlayers is the free-text key player note of a summary
type KeyPlayers struct {
	Text string `json:"text"`
}

// KindTimes holds one timestamp per detail kind
type KindTimes struct {
	Summary time.Time `json:"summary"`
	Roster  time.Time `json:"roster"`
}

// KindFlags holds one staleness flag per detail kind
type KindFlags struct {
	Summary bool `json:"summary"`
	Roster  bool `json:"roster"`
}

// KindURLs holds the source page of each detail kind
type KindURLs struct {
	Summary string `json:"summary"`
	Roster  string `json:"roster"`
}

// Instructions tell a downstream analyst how to treat each block of the
// document.
type Instructions struct {
	Facts          string `json:"facts"`
	DerivedMetrics string `json:"derived_metrics"`
	ModelOpinion   string `json:"model_opinion"`
}

// AnalystInstructions are attached by Builder.Analyze
var AnalystInstructions = Instructions{
	Facts:          "Use facts as ground truth; do not invent.",
	DerivedMetrics: "Explain deterministic metrics clearly.",
	ModelOpinion:   "Provide reasoned opinion tied to facts/metrics.",
}

// status classifies a report for metrics
func (r *Report) status() string {
	for _, e := range r.Errors {
		switch e {
		case ErrNoMatchingGame:
			return "no_match"
		case ErrNoDataSource:
			return "no_source"
		}
	}
	if r.Stale {
		return "stale"
	}
	return "fresh"
}
