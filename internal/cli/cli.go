package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/kbo-gamecenter/internal/config"
)

const (
	ExitSuccess = 0
	ExitError   = 1
	ExitNoMatch = 2
)

// Version is reported by --version and on trace resources. Set at build time
// with -ldflags "-X github.com/pfrederiksen/kbo-gamecenter/internal/cli.Version=..."
var Version = "dev"

// exitError carries a non-zero exit status for a command that already
// printed its result.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// rootOptions holds the persistent flags and the configuration they resolve
// to.
type rootOptions struct {
	configPath string
	envFile    string
	dbPath     string
	logLevel   string

	cfg *config.Config
	now func() time.Time
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{now: time.Now}

	cmd := &cobra.Command{
		Use:   "kbo-gamecenter",
		Short: "KBO schedules and realtime game center reports",
		Long: `A CLI tool for KBO League schedules and game center data.
Caches month schedules in SQLite and fetches game center pages on demand,
with a short-lived cache, rate limiting and retries.`,
		Version:           Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: opts.load,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to a YAML config file (default $KBO_CONFIG)")
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", "", "Load KBO_* variables from a dotenv file first")
	cmd.PersistentFlags().StringVar(&opts.dbPath, "db-path", "", "SQLite database path (overrides config)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn or error (overrides config)")

	cmd.AddCommand(
		newScheduleCmd(opts),
		newGameCmd(opts),
		newAnalyzeCmd(opts),
		newSyncCmd(opts),
		newServeCmd(opts),
	)
	return cmd
}

// load resolves the configuration before any subcommand runs
func (o *rootOptions) load(cmd *cobra.Command, args []string) error {
	if o.envFile != "" {
		if err := config.LoadEnvFile(o.envFile); err != nil {
			return err
		}
	}

	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("db-path") {
		cfg.DBPath = o.dbPath
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = o.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	o.cfg = cfg
	return nil
}

// Execute runs the CLI
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		var exit *exitError
		if errors.As(err, &exit) {
			os.Exit(exit.code)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
}
