package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/pfrederiksen/kbo-gamecenter/internal/game"
	"github.com/pfrederiksen/kbo-gamecenter/internal/logger"
	"github.com/pfrederiksen/kbo-gamecenter/internal/metrics"
	"github.com/pfrederiksen/kbo-gamecenter/internal/report"
)

// ScheduleService lists a day's games
type ScheduleService interface {
	Schedule(ctx context.Context, date string) ([]game.Entry, error)
	StadiumFor(ctx context.Context, date, gameID string) (string, bool, error)
}

// ReportService builds realtime reports
type ReportService interface {
	Build(ctx context.Context, q report.Query) (*report.Report, error)
	Analyze(ctx context.Context, q report.Query) (*report.Report, error)
}

// Deps are the collaborators the router serves
type Deps struct {
	Schedule ScheduleService
	Reports  ReportService
	Metrics  *metrics.Recorder
	Logger   *logger.Logger

	// ServiceName names the server spans.
	ServiceName string
	// CORSOrigins restricts browser callers; empty allows any origin.
	CORSOrigins []string
}

// NewRouter builds the gin engine with middleware and routes attached.
//
// Middleware order:
//  1. OpenTelemetry server span
//  2. RequestID
//  3. AccessLog
//  4. Recovery, after the logger so panics carry the correlation ID
//  5. Metrics
//  6. CORS
//
// API responses are gzip-compressed when the client accepts it.
func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true

	serviceName := d.ServiceName
	if serviceName == "" {
		serviceName = "kbo-gamecenter"
	}

	zl := d.Logger.Zerolog()
	r.Use(otelgin.Middleware(serviceName))
	r.Use(RequestID())
	r.Use(AccessLog(zl))
	r.Use(Recovery(zl))
	r.Use(Metrics(d.Metrics))
	r.Use(CORS(d.CORSOrigins))

	r.NoRoute(func(c *gin.Context) {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		fail(c, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "method not allowed")
	})

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))

	h := &handlers{schedules: d.Schedule, reports: d.Reports}
	api := r.Group("/api/v1", gzip.Gzip(gzip.DefaultCompression))
	{
		api.GET("/schedule", h.schedule)
		api.GET("/stadium", h.stadium)
		api.GET("/games/realtime", h.realtime)
		api.GET("/games/analysis", h.analysis)
	}
	return r
}

// Serve runs handler on addr until ctx is cancelled, then shuts down
// gracefully.
func Serve(ctx context.Context, addr string, handler http.Handler, log *logger.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", logger.Fields{"addr": addr})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Info("HTTP server shutting down", nil)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
