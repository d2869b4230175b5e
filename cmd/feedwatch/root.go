package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/aleister1102/feedwatch/internal/scheduler"
	"github.com/spf13/cobra"
)

const defaultHistoryLimit = 10

// Execute runs the root command with a context cancelled on SIGINT or SIGTERM.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return newRootCommand().ExecuteContext(ctx)
}

func newRootCommand() *cobra.Command {
	flags := &AppFlags{}

	rootCmd := &cobra.Command{
		Use:   "feedwatch",
		Short: "Watch feeds, pages, URLs and hosts for changes",
		Long: `feedwatch checks each configured subject, keeps the latest snapshots and
a monthly outcome log per subject, and emails the operator when something
changes. In onetime mode it runs a single cycle; in automated mode it keeps
running cycles on the configured interval or cron schedule.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWatch(cmd.Context(), flags)
		},
	}
	flags.register(rootCmd)

	rootCmd.AddCommand(newValidateCommand(flags))
	rootCmd.AddCommand(newHistoryCommand(flags))
	return rootCmd
}

func runWatch(ctx context.Context, flags *AppFlags) error {
	cfg, zLogger, err := loadConfig(flags)
	if err != nil {
		return err
	}

	app, err := newApplication(cfg, flags.Subjects, zLogger)
	if err != nil {
		zLogger.Error().Err(err).Msg("Failed to initialize application")
		return err
	}
	defer app.Close()

	zLogger.Info().Str("mode", cfg.Mode).Int("subjects", app.runner.Subjects()).Msg("feedwatch starting")
	if err := app.run(ctx); err != nil {
		return err
	}
	zLogger.Info().Msg("feedwatch finished")
	return nil
}

func newValidateCommand(flags *AppFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration and list the selected subjects",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := loadConfig(flags)
			if err != nil {
				return err
			}
			subjects, err := cfg.SubjectsByName(flags.Subjects)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tTYPE\tTARGET\tDATA DIR")
			for _, s := range subjects {
				target := s.URL
				if target == "" {
					target = s.Host
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", s.Name, s.Kind, target, s.ResolveDataDir(cfg.StorageConfig.BaseDir))
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration OK (mode %s, %d subjects)\n", cfg.Mode, len(subjects))
			return nil
		},
	}
}

func newHistoryCommand(flags *AppFlags) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the most recent automated cycles",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, zLogger, err := loadConfig(flags)
			if err != nil {
				return err
			}

			db, err := scheduler.NewDB(cfg.SchedulerConfig.SQLiteDBPath, zLogger)
			if err != nil {
				return err
			}
			defer db.Close()

			entries, err := db.RecentCycles(limit)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "CYCLE\tSTARTED\tDURATION\tSTATUS\tCHECKED\tFAILED")
			for _, e := range entries {
				duration := "-"
				if e.EndTime.Valid {
					duration = e.EndTime.Time.Sub(e.StartTime).Round(time.Second).String()
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d/%d\t%d\n",
					e.CycleID, e.StartTime.Format(time.RFC3339), duration, e.Status, e.Checked, e.Subjects, e.Failed)
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", defaultHistoryLimit, "Number of cycles to show")
	return cmd
}
