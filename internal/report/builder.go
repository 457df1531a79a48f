package report

import (
	"context"
	"time"

	"github.com/pfrederiksen/kbo-gamecenter/internal/analysis"
	"github.com/pfrederiksen/kbo-gamecenter/internal/game"
	"github.com/pfrederiksen/kbo-gamecenter/internal/logger"
	"github.com/pfrederiksen/kbo-gamecenter/internal/metrics"
	"github.com/pfrederiksen/kbo-gamecenter/internal/realtime"
)

// Schedule lists the games of a day
type Schedule interface {
	GamesForDate(ctx context.Context, date string) ([]game.Game, error)
}

// Details fetches one detail section of a game
type Details interface {
	Fetch(ctx context.Context, reference string, kind game.Kind) realtime.Outcome
}

// Builder assembles reports
type Builder struct {
	schedule Schedule
	details  Details
	metrics  *metrics.Recorder
	log      *logger.Logger
	now      func() time.Time
}

// Option configures a Builder
type Option func(*Builder)

// WithMetrics records built reports on rec
func WithMetrics(rec *metrics.Recorder) Option {
	return func(b *Builder) { b.metrics = rec }
}

// WithLogger sets the builder's logger
func WithLogger(l *logger.Logger) Option {
	return func(b *Builder) { b.log = l }
}

// WithClock replaces the wall clock
func WithClock(now func() time.Time) Option {
	return func(b *Builder) { b.now = now }
}

// NewBuilder creates a Builder over a schedule and a detail source
func NewBuilder(schedule Schedule, details Details, opts ...Option) *Builder {
	b := &Builder{
		schedule: schedule,
		details:  details,
		log:      logger.Nop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build returns the realtime report for the game selected by q
func (b *Builder) Build(ctx context.Context, q Query) (*Report, error) {
	games, err := b.schedule.GamesForDate(ctx, q.Date)
	if err != nil {
		return nil, err
	}

	r := &Report{Query: q, Errors: make([]string, 0)}
	defer func() { b.metrics.Report(r.status()) }()

	g, ok := SelectGame(games, deref(q.Team), deref(q.GameID))
	if !ok {
		r.FetchedAt = b.now().UTC()
		r.Stale = true
		r.Errors = append(r.Errors, ErrNoMatchingGame)
		b.log.Debug("No game matched query", logger.Fields{
			"date": q.Date, "team": deref(q.Team), "game_id": deref(q.GameID), "games": len(games),
		})
		return r, nil
	}

	r.Facts = &Facts{ScheduleGame: g.Entry()}
	if g.GameCenterURL == nil || *g.GameCenterURL == "" {
		r.FetchedAt = b.now().UTC()
		r.Stale = true
		r.Errors = append(r.Errors, ErrNoDataSource)
		return r, nil
	}
	reference := *g.GameCenterURL

	summaryOut := b.details.Fetch(ctx, reference, game.KindSummary)
	if summaryOut.Err != "" {
		r.Errors = append(r.Errors, "summary: "+summaryOut.Err)
	}
	rosterOut := b.details.Fetch(ctx, reference, game.KindRoster)
	if rosterOut.Err != "" {
		r.Errors = append(r.Errors, "roster: "+rosterOut.Err)
	}

	summary, _ := summaryOut.Payload.(*game.Summary)
	roster, _ := rosterOut.Payload.(*game.Roster)

	tables := append(analysis.SummaryTables(summary), analysis.RosterTables(roster)...)
	r.Errors = append(r.Errors, analysis.EmptyTables(tables...)...)

	r.Facts.Summary = summary
	r.Facts.Roster = roster
	if summary != nil && summary.KeyPlayers != nil {
		r.Facts.KeyPlayers = &KeyPlayers{Text: *summary.KeyPlayers}
	}
	r.Facts.FetchedAt = &KindTimes{Summary: summaryOut.FetchedAt, Roster: rosterOut.FetchedAt}
	r.Facts.Stale = &KindFlags{Summary: summaryOut.Stale, Roster: rosterOut.Stale}
	r.Facts.SourceURLs = &KindURLs{
		Summary: game.SectionURL(reference, game.KindSummary),
		Roster:  game.SectionURL(reference, game.KindRoster),
	}

	r.FetchedAt = b.now().UTC()
	r.Stale = summaryOut.Stale || rosterOut.Stale
	r.DerivedMetrics = analysis.Derive(summary)
	return r, nil
}

// Analyze returns the Build report with analyst instructions attached
func (b *Builder) Analyze(ctx context.Context, q Query) (*Report, error) {
	r, err := b.Build(ctx, q)
	if err != nil {
		return nil, err
	}
	instructions := AnalystInstructions
	r.AnalysisInstructions = &instructions
	return r, nil
}

// SelectGame picks the game a query refers to. A game ID selects the first
// game resolving to it; otherwise a team selects its game only when it plays
// exactly one that day; with neither, the first game is chosen.
func SelectGame(games []game.Game, team, gameID string) (*game.Game, bool) {
	if gameID != "" {
		for i := range games {
			if games[i].ResolvedGameID() == gameID {
				return &games[i], true
			}
		}
		return nil, false
	}

	if team != "" {
		var match *game.Game
		for i := range games {
			if !games[i].HasTeam(team) {
				continue
			}
			if match != nil {
				return nil, false // doubleheader or ambiguous
			}
			match = &games[i]
		}
		return match, match != nil
	}

	if len(games) == 0 {
		return nil, false
	}
	return &games[0], true
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
