package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pfrederiksen/kbo-gamecenter/internal/game"
)

const (
	ScheduleURL = "https://www.koreabaseball.com/Schedule/Schedule.aspx"
	UserAgent   = "kbo-gamecenter/1.0 (github.com/pfrederiksen/kbo-gamecenter)"
	Timeout     = 30 * time.Second
)

// ErrTableNotFound is returned when a page lacks the table its parser keys on
var ErrTableNotFound = errors.New("expected table not found")

// Scraper fetches and parses KBO schedule and game-center pages
type Scraper struct {
	client      *http.Client
	scheduleURL string
	userAgent   string
	now         func() time.Time
}

// Option configures a Scraper
type Option func(*Scraper)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(c *http.Client) Option {
	return func(s *Scraper) { s.client = c }
}

// WithScheduleURL points the collector at a different schedule page
func WithScheduleURL(u string) Option {
	return func(s *Scraper) { s.scheduleURL = u }
}

// WithUserAgent overrides the User-Agent header
func WithUserAgent(ua string) Option {
	return func(s *Scraper) {
		if ua != "" {
			s.userAgent = ua
		}
	}
}

// WithTimeout sets the per-request timeout of the default client
func WithTimeout(d time.Duration) Option {
	return func(s *Scraper) {
		if d > 0 {
			s.client.Timeout = d
		}
	}
}

// New creates a new Scraper instance
func New(opts ...Option) *Scraper {
	s := &Scraper{
		client:      &http.Client{Timeout: Timeout},
		scheduleURL: ScheduleURL,
		userAgent:   UserAgent,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CollectMonth fetches the schedule list for one bucket and returns every
// game on it, stamped with the collection instant.
func (s *Scraper) CollectMonth(ctx context.Context, b game.Bucket) ([]game.Game, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}

	u, err := url.Parse(s.scheduleURL)
	if err != nil {
		return nil, fmt.Errorf("parsing schedule URL: %w", err)
	}
	q := u.Query()
	q.Set("seriesId", b.Series)
	q.Set("year", strconv.Itoa(b.Year))
	q.Set("month", fmt.Sprintf("%02d", b.Month))
	u.RawQuery = q.Encode()

	body, err := s.get(ctx, u.String())
	if err != nil {
		return nil, err
	}
	defer body.Close()

	return parseMonth(body, b, s.scheduleURL, s.now().UTC())
}

// FetchDetail fetches one game-center section and parses it into the
// payload matching kind.
func (s *Scraper) FetchDetail(ctx context.Context, reference string, kind game.Kind) (game.Payload, error) {
	body, err := s.get(ctx, game.SectionURL(reference, kind))
	if err != nil {
		return nil, err
	}
	defer body.Close()

	switch kind {
	case game.KindSummary:
		return parseSummary(body)
	case game.KindRoster:
		return parseRoster(body)
	default:
		return nil, fmt.Errorf("unknown detail kind: %q", kind)
	}
}

func (s *Scraper) get(ctx context.Context, target string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept-Language", "ko-KR,ko;q=0.9")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching page: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return resp.Body, nil
}
