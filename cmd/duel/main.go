// Package main provides the command line reports for chessduel.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"regexp"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vytor/chessduel/internal/aggregate"
	"github.com/vytor/chessduel/internal/config"
	"github.com/vytor/chessduel/internal/db"
	"github.com/vytor/chessduel/internal/lichess"
	"github.com/vytor/chessduel/internal/logger"
	"github.com/vytor/chessduel/internal/models"
	"github.com/vytor/chessduel/internal/report"
	"github.com/vytor/chessduel/internal/repository"
	"github.com/vytor/chessduel/internal/repository/sqlite"
	"github.com/vytor/chessduel/internal/services"
)

var (
	dataDir  string
	dbPath   string
	asJSON   bool
	logLevel string

	rangeYear  string
	rangeMonth string
	rangeDay   string

	sessionGap int

	syncUser     string
	syncOpponent string
	syncBackfill bool
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "duel",
		Short:         "Head-to-head reports for two Lichess players",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&dataDir, "data-dir", "", "directory of monthly game files (default from DATA_DIR)")
	flags.StringVar(&dbPath, "db", "", "SQLite archive to read when data-dir is empty and to update on sync")
	flags.BoolVar(&asJSON, "json", false, "print JSON instead of tables")
	flags.StringVar(&logLevel, "log-level", "WARN", "log level (DEBUG, INFO, WARN, ERROR)")

	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newOpeningsCmd())
	rootCmd.AddCommand(newSessionsCmd())
	rootCmd.AddCommand(newHighlightsCmd())
	rootCmd.AddCommand(newSyncCmd())
	return rootCmd
}

func addRangeFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&rangeYear, "year", aggregate.All, "year (YYYY) or all")
	cmd.Flags().StringVar(&rangeMonth, "month", aggregate.All, "month (MM) or all")
	cmd.Flags().StringVar(&rangeDay, "day", aggregate.All, "day of month (DD) or all")
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show head-to-head statistics",
		Args:  cobra.NoArgs,
		RunE: withDashboard(func(cmd *cobra.Command, env *environment) error {
			rng, err := currentRange()
			if err != nil {
				return err
			}
			stats := env.dashboard.Stats(cmd.Context(), rng)
			if asJSON {
				return report.JSON(cmd.OutOrStdout(), stats)
			}
			return report.Stats(cmd.OutOrStdout(), stats)
		}),
	}
	addRangeFlags(cmd)
	return cmd
}

func newOpeningsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "openings",
		Short: "Show results per opening",
		Args:  cobra.NoArgs,
		RunE: withDashboard(func(cmd *cobra.Command, env *environment) error {
			rng, err := currentRange()
			if err != nil {
				return err
			}
			openings := env.dashboard.Openings(cmd.Context(), rng)
			if asJSON {
				return report.JSON(cmd.OutOrStdout(), openings)
			}
			return report.Openings(cmd.OutOrStdout(), env.dashboard.Players(cmd.Context()), openings)
		}),
	}
	addRangeFlags(cmd)
	return cmd
}

func newSessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Group games into playing sessions",
		Args:  cobra.NoArgs,
		RunE: withDashboard(func(cmd *cobra.Command, env *environment) error {
			if cmd.Flags().Changed("gap") && (sessionGap < 1 || sessionGap > aggregate.MaxSessionGapMinutes) {
				return fmt.Errorf("--gap must be between 1 and %d", aggregate.MaxSessionGapMinutes)
			}
			rng, err := currentRange()
			if err != nil {
				return err
			}
			sessions := env.dashboard.Sessions(cmd.Context(), rng, sessionGap)
			if asJSON {
				return report.JSON(cmd.OutOrStdout(), sessions)
			}
			return report.Sessions(cmd.OutOrStdout(), env.dashboard.Players(cmd.Context()), sessions, env.loc)
		}),
	}
	addRangeFlags(cmd)
	cmd.Flags().IntVar(&sessionGap, "gap", 0, "maximum idle minutes inside a session (default from SESSION_GAP_MINUTES)")
	return cmd
}

func newHighlightsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "highlights",
		Short: "List the most interesting games",
		Args:  cobra.NoArgs,
		RunE: withDashboard(func(cmd *cobra.Command, env *environment) error {
			rng, err := currentRange()
			if err != nil {
				return err
			}
			h := env.dashboard.Highlights(cmd.Context(), rng)
			if asJSON {
				return report.JSON(cmd.OutOrStdout(), h)
			}
			return report.Highlights(cmd.OutOrStdout(), h)
		}),
	}
	addRangeFlags(cmd)
	return cmd
}

func newSyncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Fetch new games from Lichess into the archive",
		Args:  cobra.NoArgs,
		RunE: withDashboard(func(cmd *cobra.Command, env *environment) error {
			client := lichess.New(lichess.Options{
				BaseURL:       env.cfg.LichessURL,
				Token:         env.cfg.LichessToken,
				MaxRetries:    env.cfg.LichessMaxRetries,
				RatePerSecond: env.cfg.LichessRatePerSecond,
			})
			svc := services.NewSyncService(client, env.dashboard, env.gameRepo, services.SyncConfig{
				DataDir:  env.cfg.DataDir,
				Username: env.cfg.LichessUsername,
				Opponent: env.cfg.LichessOpponent,
			})

			req := services.SyncRequest{Username: syncUser, Opponent: syncOpponent}
			run := svc.Sync
			if syncBackfill {
				run = svc.Backfill
			}
			res, err := run(cmd.Context(), req)
			if err != nil {
				return err
			}
			if asJSON {
				return report.JSON(cmd.OutOrStdout(), res)
			}
			return report.SyncResult(cmd.OutOrStdout(), res)
		}),
	}
	cmd.Flags().StringVar(&syncUser, "user", "", "Lichess username (default from LICHESS_USERNAME)")
	cmd.Flags().StringVar(&syncOpponent, "opponent", "", "opponent username (default from LICHESS_OPPONENT)")
	cmd.Flags().BoolVar(&syncBackfill, "backfill", false, "fetch whole months instead of games since the last sync")
	return cmd
}

var (
	yearRe = regexp.MustCompile(`^(all|\d{4})$`)
	partRe = regexp.MustCompile(`^(all|\d{2})$`)
)

func currentRange() (models.Range, error) {
	switch {
	case !yearRe.MatchString(rangeYear):
		return models.Range{}, fmt.Errorf("--year must be all or four digits (got %q)", rangeYear)
	case !partRe.MatchString(rangeMonth):
		return models.Range{}, fmt.Errorf("--month must be all or two digits (got %q)", rangeMonth)
	case !partRe.MatchString(rangeDay):
		return models.Range{}, fmt.Errorf("--day must be all or two digits (got %q)", rangeDay)
	}
	return models.Range{Year: rangeYear, Month: rangeMonth, Day: rangeDay}, nil
}

// environment is what every subcommand needs: the merged configuration and
// a dashboard loaded from the archive.
type environment struct {
	cfg       config.Config
	loc       *time.Location
	dashboard services.DashboardService
	gameRepo  repository.GameRepository
}

func withDashboard(run func(*cobra.Command, *environment) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		env, closeFn, err := setup(cmd)
		if err != nil {
			return err
		}
		defer closeFn()
		return run(cmd, env)
	}
}

func setup(cmd *cobra.Command) (*environment, func(), error) {
	logger.SetDefault(logger.New(
		logger.WithLevel(logger.ParseLevel(logLevel)),
		logger.WithOutput(cmd.ErrOrStderr()),
		logger.WithColors(isTerminal(cmd.ErrOrStderr())),
	))

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if cmd.Flags().Changed("data-dir") {
		cfg.DataDir = dataDir
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, nil, err
	}

	env := &environment{cfg: cfg, loc: loc}
	closeFn := func() {}
	if dbPath != "" {
		database, err := db.Open(dbPath)
		if err != nil {
			return nil, nil, fmt.Errorf("open database: %w", err)
		}
		env.gameRepo = sqlite.NewGameRepository(database)
		closeFn = func() { closeQuietly(cmd.ErrOrStderr(), database) }
	}

	store, err := services.OpenArchive(cmd.Context(), cfg.DataDir, env.gameRepo)
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	env.dashboard = services.NewDashboardService(services.DashboardConfig{
		Location:           loc,
		SessionGapMinutes:  cfg.SessionGapMinutes,
		FilterCacheSize:    cfg.FilterCacheSize,
		MemoFlushThreshold: cfg.MemoFlushThreshold,
	})
	env.dashboard.Load(cmd.Context(), store)
	return env, closeFn, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func closeQuietly(w io.Writer, c io.Closer) {
	if err := c.Close(); err != nil {
		fmt.Fprintf(w, "failed to close database: %v\n", err)
	}
}
