package game

import (
	"fmt"
	"strings"
)

// Kind identifies one of the two detail pages of a game
type Kind string

const (
	KindSummary Kind = "summary"
	KindRoster  Kind = "roster"
)

// Kinds lists every detail kind in fetch order
var Kinds = []Kind{KindSummary, KindRoster}

// ParseKind validates a detail kind name
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindSummary, KindRoster:
		return k, nil
	default:
		return "", fmt.Errorf("unknown detail kind: %q", s)
	}
}

// Section returns the game-center section that serves this kind
func (k Kind) Section() string {
	if k == KindRoster {
		return "PREVIEW"
	}
	return "REVIEW"
}

// SectionURL appends the section parameter for kind to a game-center link
// unless the link already selects a section.
func SectionURL(reference string, kind Kind) string {
	if strings.Contains(reference, "section=") {
		return reference
	}
	sep := "?"
	if strings.Contains(reference, "?") {
		sep = "&"
	}
	return reference + sep + "section=" + kind.Section()
}

// Payload is the structured content of one detail page
type Payload interface {
	Kind() Kind
}

// Summary is the REVIEW page: scoreboards and venue facts
type Summary struct {
	Stadium    *string    `json:"stadium"`
	Crowd      *string    `json:"crowd"`
	StartTime  *string    `json:"start_time"`
	EndTime    *string    `json:"end_time"`
	RunTime    *string    `json:"run_time"`
	Scoreboard [][]string `json:"scoreboard"`
	Linescore  [][]string `json:"linescore"`
	RHEB       [][]string `json:"rheb"`
	KeyPlayers *string    `json:"keyplayer_text"`
}

// Kind implements Payload
func (*Summary) Kind() Kind { return KindSummary }

// Roster is the PREVIEW page: starting lineups
type Roster struct {
	Note *string    `json:"note"`
	Away [][]string `json:"away"`
	Home [][]string `json:"home"`
}

// Kind implements Payload
func (*Roster) Kind() Kind { return KindRoster }
