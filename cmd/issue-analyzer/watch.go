package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"issue-analyzer/internal/workers"

	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-analyze stored repositories on a schedule",
	Long: `Run the analysis pipeline over every stored repository on the cron schedule
from schedule.reanalysis (REANALYSIS_SCHEDULE) until interrupted.

Examples:
  issue-analyzer watch --repo octo/app --sync
  REANALYSIS_SCHEDULE="*/30 * * * *" issue-analyzer watch`,
	Run: func(cmd *cobra.Command, args []string) {
		repoIDs, _ := cmd.Flags().GetStringSlice("repo")
		doSync, _ := cmd.Flags().GetBool("sync")
		runNow, _ := cmd.Flags().GetBool("now")

		if app.cfg.Schedule.Reanalysis == "" {
			fmt.Fprintln(os.Stderr, "Error: schedule.reanalysis is not set")
			os.Exit(1)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		for _, repoID := range repoIDs {
			if _, err := app.syncRepository(ctx, repoID); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
		}

		config := workers.DefaultWorkerConfig("reanalysis")
		config.Schedule = app.cfg.Schedule.Reanalysis
		config.SyncBeforeAnalysis = doSync
		worker := workers.NewReanalysisWorker(config, app.service, app.store, app.log)

		if runNow {
			if _, err := worker.RunOnce(ctx); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
		}

		if err := worker.Start(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("%s Watching (cron: %s); press Ctrl+C to stop\n", cyan("●"), config.Schedule)

		<-ctx.Done()

		stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := worker.Stop(stopCtx); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		stats := worker.Stats()
		fmt.Printf("%s Stopped after %d runs (%d failed)\n", green("✓"), stats.RunsProcessed, stats.RunsFailed)
	},
}

func init() {
	watchCmd.Flags().StringSliceP("repo", "r", nil, "Repositories to sync into the store before watching")
	watchCmd.Flags().Bool("sync", false, "Refetch issues from the source before every run")
	watchCmd.Flags().Bool("now", false, "Run once immediately before waiting for the schedule")
	rootCmd.AddCommand(watchCmd)
}
