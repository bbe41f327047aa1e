package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/signalforge/datamart/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "datamart",
	Short: "Synthetic alt-data product pipeline",
	Long:  "Generates daily synthetic time-series for five business verticals, merges them into per-vertical master datasets, re-partitions each into priced bundle/yearly/quarterly/monthly products, and serves the catalog.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return eris.Wrap(err, "load config")
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return eris.Wrap(err, "init logger")
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
