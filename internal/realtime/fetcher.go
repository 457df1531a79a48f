package realtime

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/pfrederiksen/kbo-gamecenter/internal/game"
	"github.com/pfrederiksen/kbo-gamecenter/internal/logger"
	"github.com/pfrederiksen/kbo-gamecenter/internal/metrics"
)

const (
	DefaultMinInterval    = time.Second
	DefaultMaxAttempts    = 3
	DefaultInitialBackoff = 500 * time.Millisecond

	// reported when a fetch fails without an error message of its own
	fallbackError = "fetch failed"
)

var tracer = otel.Tracer("github.com/pfrederiksen/kbo-gamecenter/internal/realtime")

// DetailFetcher retrieves one game-center section
type DetailFetcher interface {
	FetchDetail(ctx context.Context, reference string, kind game.Kind) (game.Payload, error)
}

// Outcome describes how a detail request was answered
type Outcome struct {
	Payload   game.Payload `json:"data"`
	FetchedAt time.Time    `json:"fetched_at"`
	Stale     bool         `json:"stale"`
	Err       string       `json:"error,omitempty"`
}

// Options tunes the fetch policy. A zero TTL, MaxAttempts or InitialBackoff
// takes the default; a zero MinInterval disables pacing.
type Options struct {
	TTL            time.Duration
	MinInterval    time.Duration
	MaxAttempts    int
	InitialBackoff time.Duration
}

// DefaultOptions returns the production fetch policy: 20s TTL, one dispatch
// per kind per second, three attempts with 0.5s and 1s waits between them.
func DefaultOptions() Options {
	return Options{
		TTL:            DefaultTTL,
		MinInterval:    DefaultMinInterval,
		MaxAttempts:    DefaultMaxAttempts,
		InitialBackoff: DefaultInitialBackoff,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.TTL <= 0 {
		o.TTL = d.TTL
	}
	if o.MinInterval < 0 {
		o.MinInterval = 0
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = d.MaxAttempts
	}
	if o.InitialBackoff <= 0 {
		o.InitialBackoff = d.InitialBackoff
	}
	return o
}

// Fetcher is the cached, paced and retrying front of a DetailFetcher
type Fetcher struct {
	source  DetailFetcher
	opts    Options
	cache   *Cache
	group   singleflight.Group
	metrics *metrics.Recorder
	log     *logger.Logger
	now     func() time.Time

	mu       sync.Mutex
	limiters map[game.Kind]*rate.Limiter
}

// Option configures a Fetcher
type Option func(*Fetcher)

// WithMetrics records fetch outcomes on rec
func WithMetrics(rec *metrics.Recorder) Option {
	return func(f *Fetcher) { f.metrics = rec }
}

// WithLogger sets the logger for retry and fallback events
func WithLogger(l *logger.Logger) Option {
	return func(f *Fetcher) { f.log = l }
}

// WithClock replaces the wall clock used to stamp and age entries
func WithClock(now func() time.Time) Option {
	return func(f *Fetcher) { f.now = now }
}

// New creates a Fetcher in front of source
func New(source DetailFetcher, opts Options, options ...Option) *Fetcher {
	opts = opts.withDefaults()
	f := &Fetcher{
		source:   source,
		opts:     opts,
		cache:    NewCache(opts.TTL),
		log:      logger.Nop(),
		now:      time.Now,
		limiters: make(map[game.Kind]*rate.Limiter),
	}
	for _, o := range options {
		o(f)
	}
	return f
}

// Fetch returns the payload of one detail section of reference.
//
// A cached payload younger than the TTL is returned as is. Otherwise the
// source is called, at most MaxAttempts times. If all attempts fail, the
// previous payload (of any age) is returned with Stale set, or a nil payload
// when there is none. Concurrent callers for one key share a single
// dispatch; a caller whose ctx ends stops waiting and gets the fallback,
// while the dispatch carries on for the others.
func (f *Fetcher) Fetch(ctx context.Context, reference string, kind game.Kind) Outcome {
	key := cacheKey(reference, kind)

	if out, ok := f.fresh(key, kind); ok {
		return out
	}

	// the shared dispatch outlives any single caller's cancellation
	shared := context.WithoutCancel(ctx)
	ch := f.group.DoChan(key, func() (interface{}, error) {
		// a concurrent caller may have filled the entry while we queued
		if out, ok := f.fresh(key, kind); ok {
			return out, nil
		}
		return f.fetch(shared, key, reference, kind), nil
	})

	select {
	case res := <-ch:
		return res.Val.(Outcome)
	case <-ctx.Done():
		return f.fallback(key, kind, ctx.Err(), logger.Fields{"kind": string(kind), "reference": reference})
	}
}

func (f *Fetcher) fresh(key string, kind game.Kind) (Outcome, bool) {
	e, ok := f.cache.Fresh(key, f.now())
	if !ok {
		return Outcome{}, false
	}
	f.metrics.DetailRequest(string(kind), "hit")
	return Outcome{Payload: e.Payload, FetchedAt: e.StoredAt}, true
}

func (f *Fetcher) fetch(ctx context.Context, key, reference string, kind game.Kind) Outcome {
	ctx, span := tracer.Start(ctx, "realtime.fetch", trace.WithAttributes(
		attribute.String("kbo.kind", string(kind)),
		attribute.String("kbo.reference", reference),
	))
	defer span.End()

	fields := logger.Fields{"kind": string(kind), "reference": reference}

	if err := f.wait(ctx, kind); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "rate limit wait aborted")
		return f.fallback(key, kind, err, fields)
	}

	var payload game.Payload
	attempt := 0
	op := func() error {
		attempt++
		p, err := f.source.FetchDetail(ctx, reference, kind)
		f.metrics.Attempt(string(kind), err)
		if err != nil {
			return err
		}
		payload = p
		return nil
	}

	notify := func(err error, next time.Duration) {
		f.log.Warn("Detail fetch attempt failed", logger.Fields{
			"kind":      string(kind),
			"reference": reference,
			"attempt":   attempt,
			"retry_in":  next.String(),
		}, err)
	}

	err := backoff.RetryNotify(op, f.newBackOff(ctx), notify)
	span.SetAttributes(attribute.Int("kbo.attempts", attempt))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "all attempts failed")
		fields["attempts"] = attempt
		return f.fallback(key, kind, err, fields)
	}

	at := f.now().UTC()
	f.cache.Set(key, payload, at)
	f.metrics.DetailRequest(string(kind), "fetched")
	f.log.Debug("Detail fetched", fields)
	return Outcome{Payload: payload, FetchedAt: at}
}

// fallback answers a failed fetch from the last stored entry, if any
func (f *Fetcher) fallback(key string, kind game.Kind, err error, fields logger.Fields) Outcome {
	msg := fallbackError
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}

	if e, ok := f.cache.Last(key); ok {
		f.metrics.DetailRequest(string(kind), "stale")
		f.log.Warn("Serving stale detail", fields, err)
		return Outcome{Payload: e.Payload, FetchedAt: f.now().UTC(), Stale: true, Err: msg}
	}

	f.metrics.DetailRequest(string(kind), "failed")
	f.log.Error("Detail fetch failed", fields, err)
	return Outcome{FetchedAt: f.now().UTC(), Stale: true, Err: msg}
}

// newBackOff builds the retry schedule: MaxAttempts tries, waiting
// InitialBackoff, then doubling, between consecutive tries.
func (f *Fetcher) newBackOff(ctx context.Context) backoff.BackOff {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = f.opts.InitialBackoff
	eb.Multiplier = 2
	eb.RandomizationFactor = 0
	eb.MaxInterval = maxWait(f.opts.InitialBackoff, f.opts.MaxAttempts)
	eb.MaxElapsedTime = 0
	eb.Reset()

	retries := uint64(f.opts.MaxAttempts - 1)
	return backoff.WithContext(backoff.WithMaxRetries(eb, retries), ctx)
}

// maxWait is the longest wait between attempts: initial doubled once per
// retry after the first, saturating instead of overflowing.
func maxWait(initial time.Duration, attempts int) time.Duration {
	d := initial
	for i := 2; i < attempts; i++ {
		if d > math.MaxInt64/2 {
			return math.MaxInt64
		}
		d *= 2
	}
	return d
}

// wait blocks until the limiter for kind admits one more dispatch
func (f *Fetcher) wait(ctx context.Context, kind game.Kind) error {
	lim := f.limiter(kind)
	start := time.Now()
	err := lim.Wait(ctx)
	f.metrics.RateLimitWait(string(kind), time.Since(start))
	return err
}

func (f *Fetcher) limiter(kind game.Kind) *rate.Limiter {
	f.mu.Lock()
	defer f.mu.Unlock()

	lim, ok := f.limiters[kind]
	if !ok {
		every := rate.Inf
		if f.opts.MinInterval > 0 {
			every = rate.Every(f.opts.MinInterval)
		}
		lim = rate.NewLimiter(every, 1)
		f.limiters[kind] = lim
	}
	return lim
}
