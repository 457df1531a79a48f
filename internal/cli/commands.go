package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/pfrederiksen/kbo-gamecenter/internal/filter"
	"github.com/pfrederiksen/kbo-gamecenter/internal/game"
	"github.com/pfrederiksen/kbo-gamecenter/internal/httpapi"
	"github.com/pfrederiksen/kbo-gamecenter/internal/observability"
	"github.com/pfrederiksen/kbo-gamecenter/internal/report"
)

func newScheduleCmd(opts *rootOptions) *cobra.Command {
	var date, format, order, filterExpr string

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "List the games of a day",
		Long: `List every game scheduled on a day. The month is collected from the
KBO schedule page when the local copy is missing or older than schedule_ttl.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if date == "" {
				date = game.Today(opts.now())
			}
			if _, err := game.ParseDate(date); err != nil {
				return err
			}
			outFormat, err := ParseFormat(format, FormatText, FormatJSON, FormatICS)
			if err != nil {
				return err
			}
			sortOrder, err := ParseSortOrder(order)
			if err != nil {
				return err
			}
			f, err := filter.Parse(filterExpr)
			if err != nil {
				return err
			}

			a, err := newApp(opts.cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			games, err := a.schedule.GamesForDate(cmd.Context(), date)
			if err != nil {
				return fmt.Errorf("loading schedule: %w", err)
			}
			games = f.Apply(games)
			sortGames(games, sortOrder)

			return WriteSchedule(cmd.OutOrStdout(), date, games, outFormat)
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Day to list, YYYY-MM-DD (default today in KST)")
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text, json or ics")
	cmd.Flags().StringVar(&order, "sort", "time", "Sort order: time, stadium or team")
	cmd.Flags().StringVar(&filterExpr, "filter", "", "Filter terms, e.g. 'team:LG stadium:잠실 status:final'")
	return cmd
}

// reportFlags are shared by the game and analyze commands
type reportFlags struct {
	date   string
	team   string
	gameID string
	format string
}

func (f *reportFlags) register(cmd *cobra.Command, defaultFormat string) {
	cmd.Flags().StringVar(&f.date, "date", "", "Day of the game, YYYY-MM-DD (default today in KST)")
	cmd.Flags().StringVar(&f.team, "team", "", "Team name as shown on the schedule (e.g. LG)")
	cmd.Flags().StringVar(&f.gameID, "game-id", "", "Game ID (e.g. 20250401LGOB0)")
	cmd.Flags().StringVar(&f.format, "format", defaultFormat, "Output format: text or json")
}

func newGameCmd(opts *rootOptions) *cobra.Command {
	flags := &reportFlags{}
	cmd := &cobra.Command{
		Use:   "game",
		Short: "Print the realtime report of one game",
		Long: `Print the realtime report of one game: schedule entry, game center
summary and lineups, with staleness and warnings.

Exits with status 2 when no game matches the query.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd, opts, flags, false)
		},
	}
	flags.register(cmd, string(FormatText))
	return cmd
}

func newAnalyzeCmd(opts *rootOptions) *cobra.Command {
	flags := &reportFlags{}
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Print the realtime report with analyst instructions",
		Long: `Print the realtime report of one game as JSON, with instructions for a
downstream analyst on how to treat facts and derived metrics.

Exits with status 2 when no game matches the query.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd, opts, flags, true)
		},
	}
	flags.register(cmd, string(FormatJSON))
	return cmd
}

func runReport(cmd *cobra.Command, opts *rootOptions, flags *reportFlags, analyze bool) error {
	date := flags.date
	if date == "" {
		date = game.Today(opts.now())
	}
	if _, err := game.ParseDate(date); err != nil {
		return err
	}
	format, err := ParseFormat(flags.format, FormatText, FormatJSON)
	if err != nil {
		return err
	}

	a, err := newApp(opts.cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	q := report.NewQuery(date, flags.team, flags.gameID)
	build := a.reports.Build
	if analyze {
		build = a.reports.Analyze
	}
	r, err := build(cmd.Context(), q)
	if err != nil {
		return fmt.Errorf("building report: %w", err)
	}

	if err := WriteReport(cmd.OutOrStdout(), r, format); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	if r.Facts == nil {
		return &exitError{code: ExitNoMatch}
	}
	return nil
}

func newSyncCmd(opts *rootOptions) *cobra.Command {
	var (
		year, month int
		series      string
		force       bool
	)

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Collect a month of the schedule into the local database",
		Long: `Collect a month of the schedule ahead of time. Without --force the
collection is skipped while the stored copy is younger than schedule_ttl.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			now := opts.now().In(game.KST)
			if !cmd.Flags().Changed("year") {
				year = now.Year()
			}
			if !cmd.Flags().Changed("month") {
				month = int(now.Month())
			}
			if series == "" {
				series = opts.cfg.Series
			}
			b := game.NewBucket(year, month, series)
			if err := b.Validate(); err != nil {
				return err
			}

			a, err := newApp(opts.cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			if force {
				err = a.schedule.Refresh(cmd.Context(), b)
			} else {
				err = a.schedule.EnsureMonth(cmd.Context(), b)
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Schedule %s is up to date.\n", b)
			return nil
		},
	}

	cmd.Flags().IntVar(&year, "year", 0, "Season year (default current year in KST)")
	cmd.Flags().IntVar(&month, "month", 0, "Month 1-12 (default current month in KST)")
	cmd.Flags().StringVar(&series, "series", "", "Series filter (default from config)")
	cmd.Flags().BoolVar(&force, "force", false, "Collect even when the stored copy is fresh")
	return cmd
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the schedule and reports over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = opts.cfg.Addr
			}

			a, err := newApp(opts.cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			shutdownTracing, err := observability.SetupTracing(ctx, opts.cfg.Tracing(), Version)
			if err != nil {
				return err
			}
			defer func() {
				flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdownTracing(flushCtx); err != nil {
					a.log.Warn("Flushing traces failed", nil, err)
				}
			}()

			gin.SetMode(gin.ReleaseMode)
			router := httpapi.NewRouter(httpapi.Deps{
				Schedule:    a.schedule,
				Reports:     a.reports,
				Metrics:     a.metrics,
				Logger:      a.log,
				ServiceName: opts.cfg.ServiceName,
				CORSOrigins: opts.cfg.CORSOrigins,
			})
			return httpapi.Serve(ctx, addr, router, a.log)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config)")
	return cmd
}
