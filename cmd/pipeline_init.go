package main

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/signalforge/datamart/internal/catalog"
	"github.com/signalforge/datamart/internal/pipeline"
	"github.com/signalforge/datamart/internal/pricing"
	"github.com/signalforge/datamart/internal/store"
	"github.com/signalforge/datamart/internal/vertical"
)

// pipelineEnv holds the assembled stores, registry, pipeline, and catalog
// builder shared by the update/catalog/serve commands.
type pipelineEnv struct {
	Registry *vertical.Registry
	Store    *store.CSVStore
	Pipeline *pipeline.Pipeline
	Builder  *catalog.Builder
	Ledger   *pipeline.Ledger
}

// initPipeline wires the data directory, vertical registry, pricing model,
// and pipeline together from config.
func initPipeline() (*pipelineEnv, error) {
	st, err := store.NewCSVStore(cfg.Data.Dir)
	if err != nil {
		return nil, err
	}

	part, err := pipeline.NewPartitioner(cfg.Data.Dir)
	if err != nil {
		return nil, err
	}

	reg := vertical.NewRegistry()
	merger := pipeline.NewMerger(st, cfg.Pipeline.BackfillDays)
	ledger := pipeline.NewLedger(cfg.Data.Dir)
	pm := pricing.New(cfg.Pricing)

	return &pipelineEnv{
		Registry: reg,
		Store:    st,
		Pipeline: pipeline.New(reg, merger, part, ledger, cfg.Pipeline.Workers),
		Builder:  catalog.NewBuilder(cfg.Data.Dir, pm, reg),
		Ledger:   ledger,
	}, nil
}

// initRunStore opens and migrates the run-history database. Run history is
// advisory; callers may degrade to a nil store when this fails.
func initRunStore() (*store.RunStore, error) {
	rs, err := store.NewRunStore(cfg.Runs.DatabasePath)
	if err != nil {
		return nil, eris.Wrap(err, "open run store")
	}
	return rs, nil
}

// openRunStoreOrWarn returns the run store or nil after logging; the
// pipeline itself never depends on run history being writable.
func openRunStoreOrWarn() *store.RunStore {
	rs, err := initRunStore()
	if err != nil {
		zap.L().Warn("run history unavailable", zap.Error(err))
		return nil
	}
	return rs
}
