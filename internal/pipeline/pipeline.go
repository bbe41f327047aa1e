// Package pipeline implements the incremental partitioning engine: merge
// newly generated rows into per-vertical master tables, rederive the full
// partition hierarchy, and record byte deltas in the status ledger.
package pipeline

import (
	"context"
	"hash/fnv"
	"math/rand/v2"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/signalforge/datamart/internal/model"
	"github.com/signalforge/datamart/internal/vertical"
)

// Pipeline runs the full generate → merge → partition cycle across all
// registered verticals. Verticals share no mutable state, so they run on
// a bounded worker pool; a failing vertical is isolated and never aborts
// the others. Concurrent runs over the same data directory are not safe
// and must be serialized by the caller.
type Pipeline struct {
	verticals   *vertical.Registry
	merger      *Merger
	partitioner *Partitioner
	ledger      *Ledger
	workers     int
}

// New assembles a pipeline.
func New(reg *vertical.Registry, merger *Merger, part *Partitioner, ledger *Ledger, workers int) *Pipeline {
	if workers <= 0 {
		workers = 5
	}
	return &Pipeline{
		verticals:   reg,
		merger:      merger,
		partitioner: part,
		ledger:      ledger,
		workers:     workers,
	}
}

// Run executes one full pipeline pass as of the given date and returns the
// run record (unpersisted; the caller owns run history).
func (p *Pipeline) Run(ctx context.Context, asOf time.Time) *model.Run {
	started := time.Now().UTC()
	before := SnapshotSizes(p.partitioner.dataDir)

	verts := p.verticals.All()
	outcomes := make([]model.VerticalOutcome, len(verts))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for i, v := range verts {
		g.Go(func() error {
			outcome := p.runVertical(gctx, v, asOf)
			mu.Lock()
			outcomes[i] = outcome
			mu.Unlock()
			return nil // per-vertical failures never abort the run
		})
	}
	_ = g.Wait()

	after := SnapshotSizes(p.partitioner.dataDir)
	status := p.ledger.Record(before, after, time.Now())

	run := &model.Run{
		Status:          model.RunStatusComplete,
		StartedAt:       started,
		FinishedAt:      time.Now().UTC(),
		TotalAddedBytes: status.TotalAddedBytes,
		Details:         status.Details,
		Verticals:       outcomes,
	}
	failures := 0
	for _, o := range outcomes {
		if o.Error != "" {
			failures++
		}
	}
	switch {
	case failures == len(outcomes) && len(outcomes) > 0:
		run.Status = model.RunStatusFailed
	case failures > 0:
		run.Status = model.RunStatusPartial
	}

	zap.L().Info("pipeline run finished",
		zap.String("status", string(run.Status)),
		zap.Int64("added_bytes", run.TotalAddedBytes),
		zap.Int("verticals", len(outcomes)),
		zap.Int("failed", failures),
	)
	return run
}

// runVertical performs merge then partition for one vertical. Merge must
// complete and be durably written before partitioning reads its result.
func (p *Pipeline) runVertical(ctx context.Context, v vertical.Vertical, asOf time.Time) model.VerticalOutcome {
	log := zap.L().With(zap.String("vertical", v.Slug()))
	outcome := model.VerticalOutcome{Slug: v.Slug()}

	merged, err := p.merger.MergeDay(ctx, v, newRand(v.Slug()), asOf)
	if err != nil {
		// Generation or store I/O failed; the previous master table is
		// intact, so partitions are left as-is this run.
		log.Error("merge failed, skipping partitioning", zap.Error(err))
		outcome.Error = err.Error()
		return outcome
	}
	outcome.Backfilled = merged.Backfilled
	outcome.StoreRows = merged.StoreRows

	parts, err := p.partitioner.Split(v, merged.Table)
	if err != nil {
		log.Error("partition split failed", zap.Error(err))
		outcome.Error = err.Error()
		return outcome
	}

	written, err := p.partitioner.Write(v, parts)
	outcome.Partitions = len(written)
	if err != nil {
		// Partial partition sets are valid; record and continue to prune
		// only what this run did produce.
		log.Warn("some partitions failed to write", zap.Error(err))
		outcome.Error = err.Error()
	}

	if err := p.partitioner.Prune(v, written); err != nil {
		log.Warn("stale partition prune failed", zap.Error(err))
		if outcome.Error == "" {
			outcome.Error = err.Error()
		}
	}

	log.Info("vertical complete",
		zap.Int("store_rows", outcome.StoreRows),
		zap.Int("partitions", outcome.Partitions),
	)
	return outcome
}

// newRand seeds a per-vertical generator source. Workers never share a
// rand.Rand, which is not safe for concurrent use.
func newRand(slug string) *rand.Rand {
	h := fnv.New64a()
	h.Write([]byte(slug))
	return rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), h.Sum64()))
}
