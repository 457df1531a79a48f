package httpapi

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pfrederiksen/kbo-gamecenter/internal/game"
	"github.com/pfrederiksen/kbo-gamecenter/internal/logger"
	"github.com/pfrederiksen/kbo-gamecenter/internal/metrics"
	"github.com/pfrederiksen/kbo-gamecenter/internal/report"
	"github.com/pfrederiksen/kbo-gamecenter/internal/schedule"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeSchedule struct {
	entries  []game.Entry
	stadiums map[string]string
	err      error
	date     string
}

func (s *fakeSchedule) Schedule(ctx context.Context, date string) ([]game.Entry, error) {
	s.date = date
	return s.entries, s.err
}

func (s *fakeSchedule) StadiumFor(ctx context.Context, date, gameID string) (string, bool, error) {
	s.date = date
	if s.err != nil {
		return "", false, s.err
	}
	stadium, ok := s.stadiums[gameID]
	return stadium, ok, nil
}

type fakeReports struct {
	err      error
	query    report.Query
	analyzed bool
}

func (r *fakeReports) Build(ctx context.Context, q report.Query) (*report.Report, error) {
	r.query = q
	if r.err != nil {
		return nil, r.err
	}
	return &report.Report{Query: q, Errors: []string{}}, nil
}

func (r *fakeReports) Analyze(ctx context.Context, q report.Query) (*report.Report, error) {
	r.analyzed = true
	rep, err := r.Build(ctx, q)
	if err != nil {
		return nil, err
	}
	rep.AnalysisInstructions = &report.AnalystInstructions
	return rep, nil
}

func newTestRouter(t *testing.T, s *fakeSchedule, r *fakeReports) (*gin.Engine, *metrics.Recorder, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	rec := metrics.New()
	router := NewRouter(Deps{
		Schedule: s,
		Reports:  r,
		Metrics:  rec,
		Logger:   logger.New(logger.LevelDebug, &buf),
	})
	return router, rec, &buf
}

func do(router http.Handler, method, target string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var body ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid error body %q: %v", w.Body.String(), err)
	}
	return body
}

func TestHealth(t *testing.T) {
	router, _, _ := newTestRouter(t, &fakeSchedule{}, &fakeReports{})

	w := do(router, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"status":"ok"`) {
		t.Errorf("body = %s", w.Body.String())
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header not set")
	}
}

func TestRequestIDPropagated(t *testing.T) {
	router, _, logs := newTestRouter(t, &fakeSchedule{}, &fakeReports{})

	w := do(router, http.MethodGet, "/nope", http.Header{"X-Request-Id": {"abc-123"}})
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	if got := w.Header().Get("X-Request-ID"); got != "abc-123" {
		t.Errorf("X-Request-ID = %q, want abc-123", got)
	}
	body := decodeError(t, w)
	if body.RequestID != "abc-123" || body.Code != ErrCodeNotFound {
		t.Errorf("body = %+v", body)
	}
	if !strings.Contains(logs.String(), `"request_id":"abc-123"`) {
		t.Errorf("access log missing request id: %s", logs.String())
	}
}

func TestMethodNotAllowed(t *testing.T) {
	router, _, _ := newTestRouter(t, &fakeSchedule{}, &fakeReports{})

	w := do(router, http.MethodPost, "/api/v1/schedule?date=2025-04-01", nil)
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", w.Code)
	}
	if body := decodeError(t, w); body.Code != ErrCodeMethodNotAllowed {
		t.Errorf("code = %q", body.Code)
	}
}

func TestSchedule(t *testing.T) {
	s := &fakeSchedule{entries: []game.Entry{
		{Date: "2025-04-01", Away: "LG", Home: "두산", Score: game.StringPtr("5-3")},
		{Date: "2025-04-01", Away: "KT", Home: "SSG"},
	}}
	router, _, _ := newTestRouter(t, s, &fakeReports{})

	w := do(router, http.MethodGet, "/api/v1/schedule?date=2025-04-01", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if s.date != "2025-04-01" {
		t.Errorf("date passed = %q", s.date)
	}

	var body ScheduleResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Count != 2 || len(body.Games) != 2 {
		t.Fatalf("body = %+v", body)
	}
	if body.Games[0].Score == nil || *body.Games[0].Score != "5-3" {
		t.Errorf("score = %v", body.Games[0].Score)
	}

	want := `kbo_http_requests_total{method="GET",path="/api/v1/schedule",status="200"} 1`
	m := do(router, http.MethodGet, "/metrics", nil)
	if !strings.Contains(m.Body.String(), want) {
		t.Errorf("metrics output missing %q", want)
	}
}

func TestScheduleEmptyDay(t *testing.T) {
	router, _, _ := newTestRouter(t, &fakeSchedule{}, &fakeReports{})

	w := do(router, http.MethodGet, "/api/v1/schedule?date=2025-04-07", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"games":[]`) && !strings.Contains(w.Body.String(), `"games":null`) {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestScheduleErrors(t *testing.T) {
	tests := []struct {
		name   string
		target string
		err    error
		status int
		code   string
	}{
		{
			name:   "missing date",
			target: "/api/v1/schedule",
			status: http.StatusBadRequest,
			code:   ErrCodeBadRequest,
		},
		{
			name:   "invalid date",
			target: "/api/v1/schedule?date=2025/04/01",
			err:    fmt.Errorf("%w: %q", game.ErrInvalidDate, "2025/04/01"),
			status: http.StatusBadRequest,
			code:   ErrCodeInvalidDate,
		},
		{
			name:   "collection failure",
			target: "/api/v1/schedule?date=2025-04-01",
			err: &schedule.CollectionError{
				Bucket: game.Bucket{Year: 2025, Month: 4, Series: game.DefaultSeries},
				Err:    errors.New("status 503"),
			},
			status: http.StatusBadGateway,
			code:   ErrCodeCollection,
		},
		{
			name:   "unexpected",
			target: "/api/v1/schedule?date=2025-04-01",
			err:    errors.New("disk full"),
			status: http.StatusInternalServerError,
			code:   ErrCodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, _, _ := newTestRouter(t, &fakeSchedule{err: tt.err}, &fakeReports{})

			w := do(router, http.MethodGet, tt.target, nil)
			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tt.status, w.Body.String())
			}
			body := decodeError(t, w)
			if body.Code != tt.code {
				t.Errorf("code = %q, want %q", body.Code, tt.code)
			}
			if body.RequestID == "" {
				t.Error("request_id missing from envelope")
			}
			if tt.code == ErrCodeInternal && strings.Contains(body.Message, "disk full") {
				t.Errorf("internal error leaked: %q", body.Message)
			}
		})
	}
}

func TestRealtimeQuery(t *testing.T) {
	r := &fakeReports{}
	router, _, _ := newTestRouter(t, &fakeSchedule{}, r)

	w := do(router, http.MethodGet, "/api/v1/games/realtime?date=2025-04-01&team=LG&game_id=", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if r.query.Date != "2025-04-01" {
		t.Errorf("date = %q", r.query.Date)
	}
	if r.query.Team == nil || *r.query.Team != "LG" {
		t.Errorf("team = %v", r.query.Team)
	}
	if r.query.GameID != nil {
		t.Errorf("blank game_id should be absent, got %q", *r.query.GameID)
	}
	if r.analyzed {
		t.Error("realtime endpoint should not request analysis")
	}
	if strings.Contains(w.Body.String(), "analysis_instructions") {
		t.Errorf("unexpected analysis instructions: %s", w.Body.String())
	}
}

func TestAnalysisIncludesInstructions(t *testing.T) {
	r := &fakeReports{}
	router, _, _ := newTestRouter(t, &fakeSchedule{}, r)

	w := do(router, http.MethodGet, "/api/v1/games/analysis?date=2025-04-01&game_id=20250401LGOB0", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !r.analyzed {
		t.Error("Analyze not called")
	}
	if !strings.Contains(w.Body.String(), `"analysis_instructions"`) {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestRealtimeRequiresDate(t *testing.T) {
	router, _, _ := newTestRouter(t, &fakeSchedule{}, &fakeReports{})

	w := do(router, http.MethodGet, "/api/v1/games/realtime?team=LG", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	router, _, _ := newTestRouter(t, &fakeSchedule{}, &fakeReports{})

	do(router, http.MethodGet, "/health", nil)
	w := do(router, http.MethodGet, "/metrics", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "kbo_http_requests_total") {
		t.Errorf("metrics output missing http counter")
	}
}

func TestCORS(t *testing.T) {
	rec := metrics.New()
	router := NewRouter(Deps{
		Schedule:    &fakeSchedule{},
		Reports:     &fakeReports{},
		Metrics:     rec,
		CORSOrigins: []string{"https://kbo.example"},
	})

	w := do(router, http.MethodGet, "/health", http.Header{"Origin": {"https://kbo.example"}})
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://kbo.example" {
		t.Errorf("allowed origin header = %q", got)
	}

	w = do(router, http.MethodGet, "/health", http.Header{"Origin": {"https://evil.example"}})
	if w.Code != http.StatusForbidden {
		t.Errorf("status for disallowed origin = %d, want 403", w.Code)
	}
}

func TestScheduleGzip(t *testing.T) {
	s := &fakeSchedule{entries: []game.Entry{{Date: "2025-04-01", Away: "LG", Home: "두산"}}}
	router, _, _ := newTestRouter(t, s, &fakeReports{})

	w := do(router, http.MethodGet, "/api/v1/schedule?date=2025-04-01", http.Header{"Accept-Encoding": {"gzip"}})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if got := w.Header().Get("Content-Encoding"); got != "gzip" {
		t.Fatalf("Content-Encoding = %q, want gzip", got)
	}

	zr, err := gzip.NewReader(w.Body)
	if err != nil {
		t.Fatal(err)
	}
	body, err := io.ReadAll(zr)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(body), `"away":"LG"`) {
		t.Errorf("decompressed body = %s", body)
	}
}

func TestStadium(t *testing.T) {
	s := &fakeSchedule{stadiums: map[string]string{"20250401LGOB0": "잠실"}}
	router, _, _ := newTestRouter(t, s, &fakeReports{})

	w := do(router, http.MethodGet, "/api/v1/stadium?date=2025-04-01&game_id=20250401LGOB0", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var body StadiumResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Stadium != "잠실" || body.GameID != "20250401LGOB0" || s.date != "2025-04-01" {
		t.Errorf("body = %+v, date = %q", body, s.date)
	}

	tests := []struct {
		name   string
		target string
		sched  *fakeSchedule
		status int
		code   string
	}{
		{"missing game id", "/api/v1/stadium?date=2025-04-01", &fakeSchedule{}, http.StatusBadRequest, ErrCodeBadRequest},
		{"unknown game", "/api/v1/stadium?date=2025-04-01&game_id=nope", &fakeSchedule{}, http.StatusNotFound, ErrCodeNotFound},
		{"invalid date", "/api/v1/stadium?date=bad&game_id=x",
			&fakeSchedule{err: fmt.Errorf("%w: bad", game.ErrInvalidDate)}, http.StatusBadRequest, ErrCodeInvalidDate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, _, _ := newTestRouter(t, tt.sched, &fakeReports{})
			w := do(router, http.MethodGet, tt.target, nil)
			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d", w.Code, tt.status)
			}
			if body := decodeError(t, w); body.Code != tt.code {
				t.Errorf("code = %q, want %q", body.Code, tt.code)
			}
		})
	}
}

func TestRecoveryReturnsEnvelope(t *testing.T) {
	var buf bytes.Buffer
	r := gin.New()
	zl := logger.New(logger.LevelDebug, &buf).Zerolog()
	r.Use(RequestID(), AccessLog(zl), Recovery(zl))
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := do(r, http.MethodGet, "/boom", nil)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if body := decodeError(t, w); body.Code != ErrCodeInternal || body.RequestID == "" {
		t.Errorf("body = %+v", body)
	}
	if !strings.Contains(buf.String(), "panic recovered") {
		t.Errorf("panic not logged: %s", buf.String())
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("abcdef", 3); got != "abc…" {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("abc", 3); got != "abc" {
		t.Errorf("truncate = %q", got)
	}
}

func TestServeStopsOnCancel(t *testing.T) {
	router, _, _ := newTestRouter(t, &fakeSchedule{}, &fakeReports{})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- Serve(ctx, "127.0.0.1:0", router, logger.Nop()) }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve returned %v after cancel", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestServeListenError(t *testing.T) {
	router, _, _ := newTestRouter(t, &fakeSchedule{}, &fakeReports{})
	if err := Serve(context.Background(), "256.0.0.1:bad", router, logger.Nop()); err == nil {
		t.Error("expected listen error, got nil")
	}
}
