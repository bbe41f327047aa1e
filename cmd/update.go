package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/signalforge/datamart/internal/model"
	"github.com/signalforge/datamart/internal/table"
)

var updateAsOf string

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Run the data pipeline once (backfill on first run, daily merge after)",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initPipeline()
		if err != nil {
			return err
		}

		asOf := time.Now().UTC()
		if updateAsOf != "" {
			asOf, err = time.Parse(table.DateLayout, updateAsOf)
			if err != nil {
				return eris.Wrapf(err, "parse --as-of %q", updateAsOf)
			}
		}

		run := runPipeline(ctx, env, asOf)

		fmt.Printf("Run %s: %d verticals, %d bytes added\n",
			run.Status, len(run.Verticals), run.TotalAddedBytes)
		for _, o := range run.Verticals {
			if o.Error != "" {
				fmt.Printf("  %-14s FAILED: %s\n", o.Slug, o.Error)
				continue
			}
			fmt.Printf("  %-14s rows=%d partitions=%d\n", o.Slug, o.StoreRows, o.Partitions)
		}

		if run.Status == model.RunStatusFailed {
			return eris.New("update: all verticals failed")
		}
		return nil
	},
}

// runPipeline executes one pass and records it in run history when the run
// store is available.
func runPipeline(ctx context.Context, env *pipelineEnv, asOf time.Time) *model.Run {
	rs := openRunStoreOrWarn()
	var recorded *model.Run
	if rs != nil {
		defer rs.Close() //nolint:errcheck
		if err := rs.Migrate(ctx); err != nil {
			zap.L().Warn("run history migrate failed", zap.Error(err))
			rs = nil
		}
	}
	if rs != nil {
		r, err := rs.CreateRun(ctx)
		if err != nil {
			zap.L().Warn("run history create failed", zap.Error(err))
		} else {
			recorded = r
		}
	}

	run := env.Pipeline.Run(ctx, asOf)

	if rs != nil && recorded != nil {
		run.ID = recorded.ID
		run.StartedAt = recorded.StartedAt
		if err := rs.FinishRun(ctx, run); err != nil {
			zap.L().Warn("run history finish failed", zap.Error(err))
		}
	}
	return run
}

func init() {
	updateCmd.Flags().StringVar(&updateAsOf, "as-of", "", "run as of this date (YYYY-MM-DD, default today)")
	rootCmd.AddCommand(updateCmd)
}
