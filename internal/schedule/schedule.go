// Package schedule decides when a month of the schedule must be collected
// again and answers date queries from the persisted copy.
package schedule

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/pfrederiksen/kbo-gamecenter/internal/game"
	"github.com/pfrederiksen/kbo-gamecenter/internal/logger"
	"github.com/pfrederiksen/kbo-gamecenter/internal/metrics"
)

// DefaultTTL is how long a collected month is trusted
const DefaultTTL = 12 * time.Hour

var tracer = otel.Tracer("github.com/pfrederiksen/kbo-gamecenter/internal/schedule")

// Collector retrieves every game of one bucket from the source
type Collector interface {
	CollectMonth(ctx context.Context, b game.Bucket) ([]game.Game, error)
}

// Store is the persistence the manager needs
type Store interface {
	BucketFetchedAt(ctx context.Context, b game.Bucket) (time.Time, bool, error)
	SaveCollection(ctx context.Context, b game.Bucket, games []game.Game, at time.Time) (int64, error)
	GamesByDate(ctx context.Context, date string) ([]game.Game, error)
	StadiumByGameID(ctx context.Context, date, gameID string) (string, bool, error)
}

// CollectionError reports that the collector could not produce a bucket
type CollectionError struct {
	Bucket game.Bucket
	Err    error
}

func (e *CollectionError) Error() string {
	return fmt.Sprintf("collecting %s: %v", e.Bucket, e.Err)
}

func (e *CollectionError) Unwrap() error { return e.Err }

// Manager gates collection of month buckets on their age
type Manager struct {
	store     Store
	collector Collector
	ttl       time.Duration
	series    string
	now       func() time.Time
	metrics   *metrics.Recorder
	log       *logger.Logger
	group     singleflight.Group
}

// Option configures a Manager
type Option func(*Manager)

// WithTTL overrides how long a collected bucket stays fresh
func WithTTL(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.ttl = d
		}
	}
}

// WithSeries sets the series filter used for date queries
func WithSeries(series string) Option {
	return func(m *Manager) {
		if series != "" {
			m.series = series
		}
	}
}

// WithClock replaces the wall clock
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithMetrics records collections and bucket hits on rec
func WithMetrics(rec *metrics.Recorder) Option {
	return func(m *Manager) { m.metrics = rec }
}

// WithLogger sets the manager's logger
func WithLogger(l *logger.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// NewManager creates a Manager over store and collector
func NewManager(store Store, collector Collector, opts ...Option) *Manager {
	m := &Manager{
		store:     store,
		collector: collector,
		ttl:       DefaultTTL,
		series:    game.DefaultSeries,
		now:       time.Now,
		log:       logger.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// EnsureMonth makes sure the bucket was collected less than the TTL ago,
// collecting it now if not. Concurrent calls for one bucket share a single
// collection, which is not cancelled when one caller gives up.
func (m *Manager) EnsureMonth(ctx context.Context, b game.Bucket) error {
	if b.Series == "" {
		b.Series = m.series
	}
	if err := b.Validate(); err != nil {
		return err
	}

	fresh, err := m.isFresh(ctx, b)
	if err != nil {
		return err
	}
	if fresh {
		m.metrics.BucketHit()
		return nil
	}

	return m.shared(ctx, b, func(ctx context.Context) error {
		// another caller may have just finished collecting this bucket
		if fresh, err := m.isFresh(ctx, b); err != nil || fresh {
			return err
		}
		return m.collect(ctx, b)
	})
}

// Refresh collects the bucket regardless of its age
func (m *Manager) Refresh(ctx context.Context, b game.Bucket) error {
	if b.Series == "" {
		b.Series = m.series
	}
	if err := b.Validate(); err != nil {
		return err
	}
	return m.shared(ctx, b, func(ctx context.Context) error {
		return m.collect(ctx, b)
	})
}

// shared runs fn once for all concurrent callers of bucket b. fn gets a
// context that is not cancelled with the caller's; each caller still stops
// waiting when its own ctx ends.
func (m *Manager) shared(ctx context.Context, b game.Bucket, fn func(context.Context) error) error {
	detached := context.WithoutCancel(ctx)
	ch := m.group.DoChan(b.String(), func() (interface{}, error) {
		return nil, fn(detached)
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Manager) isFresh(ctx context.Context, b game.Bucket) (bool, error) {
	at, ok, err := m.store.BucketFetchedAt(ctx, b)
	if err != nil {
		return false, err
	}
	return ok && m.now().Sub(at) < m.ttl, nil
}

func (m *Manager) collect(ctx context.Context, b game.Bucket) error {
	ctx, span := tracer.Start(ctx, "schedule.collect", trace.WithAttributes(
		attribute.String("kbo.bucket", b.String()),
	))
	defer span.End()

	start := m.now()
	fields := logger.Fields{"bucket": b.String()}

	games, err := m.collector.CollectMonth(ctx, b)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "collection failed")
		m.metrics.CollectionFailed()
		m.log.Error("Schedule collection failed", fields, err)
		return &CollectionError{Bucket: b, Err: err}
	}

	inserted, err := m.store.SaveCollection(ctx, b, games, m.now().UTC())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "saving collection failed")
		m.metrics.CollectionFailed()
		m.log.Error("Saving schedule collection failed", fields, err)
		return fmt.Errorf("saving %s: %w", b, err)
	}

	span.SetAttributes(attribute.Int("kbo.games", len(games)), attribute.Int64("kbo.inserted", inserted))
	m.metrics.CollectionSucceeded(inserted)
	fields["games"] = len(games)
	fields["inserted"] = inserted
	fields["duration"] = m.now().Sub(start).String()
	m.log.Info("Schedule collected", fields)
	return nil
}

// GamesForDate returns every game on date (YYYY-MM-DD), collecting its
// month first when the cached copy is stale.
func (m *Manager) GamesForDate(ctx context.Context, date string) ([]game.Game, error) {
	b, err := game.BucketForDate(date)
	if err != nil {
		return nil, err
	}
	b.Series = m.series

	if err := m.EnsureMonth(ctx, b); err != nil {
		return nil, err
	}
	return m.store.GamesByDate(ctx, date)
}

// Schedule returns the listing view of every game on date
func (m *Manager) Schedule(ctx context.Context, date string) ([]game.Entry, error) {
	games, err := m.GamesForDate(ctx, date)
	if err != nil {
		return nil, err
	}

	entries := make([]game.Entry, 0, len(games))
	for i := range games {
		entries = append(entries, games[i].Entry())
	}
	return entries, nil
}

// StadiumFor returns the stadium of gameID on date, collecting the month
// first when needed.
func (m *Manager) StadiumFor(ctx context.Context, date, gameID string) (string, bool, error) {
	b, err := game.BucketForDate(date)
	if err != nil {
		return "", false, err
	}
	b.Series = m.series

	if err := m.EnsureMonth(ctx, b); err != nil {
		return "", false, err
	}
	return m.store.StadiumByGameID(ctx, date, gameID)
}
