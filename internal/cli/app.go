package cli

import (
	"fmt"
	"io"

	"github.com/pfrederiksen/kbo-gamecenter/internal/config"
	"github.com/pfrederiksen/kbo-gamecenter/internal/logger"
	"github.com/pfrederiksen/kbo-gamecenter/internal/metrics"
	"github.com/pfrederiksen/kbo-gamecenter/internal/realtime"
	"github.com/pfrederiksen/kbo-gamecenter/internal/report"
	"github.com/pfrederiksen/kbo-gamecenter/internal/schedule"
	"github.com/pfrederiksen/kbo-gamecenter/internal/scraper"
	"github.com/pfrederiksen/kbo-gamecenter/internal/storage"
)

// app holds the wired components for one command invocation
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	metrics  *metrics.Recorder
	store    *storage.Store
	schedule *schedule.Manager
	details  *realtime.Fetcher
	reports  *report.Builder
}

func newLogger(cfg *config.Config, w io.Writer) (*logger.Logger, error) {
	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	if cfg.LogPretty {
		return logger.NewConsole(level, w), nil
	}
	return logger.New(level, w), nil
}

// newApp opens the database and builds every component from cfg. Logs go
// to logOut.
func newApp(cfg *config.Config, logOut io.Writer) (*app, error) {
	log, err := newLogger(cfg, logOut)
	if err != nil {
		return nil, err
	}
	logger.SetDefault(log)

	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("initializing storage: %w", err)
	}

	rec := metrics.New()
	scr := scraper.New(
		scraper.WithScheduleURL(cfg.ScheduleURL),
		scraper.WithUserAgent(cfg.UserAgent),
		scraper.WithTimeout(cfg.HTTPTimeout),
	)

	manager := schedule.NewManager(store, scr,
		schedule.WithTTL(cfg.ScheduleTTL),
		schedule.WithSeries(cfg.Series),
		schedule.WithMetrics(rec),
		schedule.WithLogger(log.With(logger.Fields{"component": "schedule"})),
	)
	fetcher := realtime.New(scr, cfg.RealtimeOptions(),
		realtime.WithMetrics(rec),
		realtime.WithLogger(log.With(logger.Fields{"component": "realtime"})),
	)
	builder := report.NewBuilder(manager, fetcher,
		report.WithMetrics(rec),
		report.WithLogger(log.With(logger.Fields{"component": "report"})),
	)

	log.Debug("Application initialized", logger.Fields{
		"db_path":      cfg.DBPath,
		"schedule_url": cfg.ScheduleURL,
		"series":       cfg.Series,
	})

	return &app{
		cfg:      cfg,
		log:      log,
		metrics:  rec,
		store:    store,
		schedule: manager,
		details:  fetcher,
		reports:  builder,
	}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}
