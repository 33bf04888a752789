package store

import (
	"context"

	"github.com/loykin/repobatch/internal/common"
	"github.com/loykin/repobatch/internal/outcome"
	"github.com/loykin/repobatch/internal/retry"
)

// Recorder adapts the store to the batch engine's recorder interface.
// Writes go through the bounded retry helper; a write that still fails is
// logged and dropped — history persistence never fails a target.
type Recorder struct {
	store *Store
	runID int64
	ctx   context.Context
}

// NewRecorder wraps the store for a specific run.
func (s *Store) NewRecorder(ctx context.Context, runID int64) *Recorder {
	return &Recorder{store: s, runID: runID, ctx: ctx}
}

// Append records one resolved target.
func (r *Recorder) Append(rec outcome.Record) {
	err := retry.WithRetry(r.ctx, nil, func() error {
		return r.store.RecordTarget(r.runID, rec)
	})
	if err != nil {
		common.GetLogger().WithStore(r.store.dialect.DriverName()).
			Warn("failed to record target in run history", "target", rec.Target, "error", err)
	}
}
