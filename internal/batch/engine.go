package batch

import (
	"context"

	"github.com/loykin/repobatch/internal/common"
	"github.com/loykin/repobatch/internal/outcome"
)

// Apply performs the operation for one target and resolves it into exactly
// one outcome record. Implementations catch their own errors at the target
// boundary; Apply never returns an error because a target failure is data,
// not control flow.
type Apply[T any] func(ctx context.Context, target T) outcome.Record

// Recorder receives each record as it resolves. The outcome logger defers
// its flush to the end of the run; the history store writes as it goes.
type Recorder interface {
	Append(rec outcome.Record)
}

// Result holds the resolution of a full run.
type Result struct {
	Records []outcome.Record
}

// AllSucceeded reports the run summary: true iff no record is a failure.
// No-op records count as success.
func (r Result) AllSucceeded() bool {
	for _, rec := range r.Records {
		if !rec.Succeeded() {
			return false
		}
	}
	return true
}

// Failures returns the failed records in resolution order.
func (r Result) Failures() []outcome.Record {
	var out []outcome.Record
	for _, rec := range r.Records {
		if !rec.Succeeded() {
			out = append(out, rec)
		}
	}
	return out
}

// Run drives apply over every target, sequentially and unconditionally: a
// failure on one target never prevents the next from being attempted. One
// target's full cycle completes before the next begins. There is no
// per-target retry.
func Run[T any](ctx context.Context, targets []T, apply Apply[T], recorders ...Recorder) Result {
	logger := common.GetLogger().WithComponent("batch")
	logger.Info("starting batch run", "targets", len(targets))

	res := Result{Records: make([]outcome.Record, 0, len(targets))}
	for _, t := range targets {
		rec := apply(ctx, t)
		res.Records = append(res.Records, rec)
		for _, r := range recorders {
			r.Append(rec)
		}
		switch rec.Status {
		case outcome.StatusFailure:
			logger.Warn("target failed", "target", rec.Target, "status_code", rec.StatusCode, "error", rec.Err)
		case outcome.StatusNoOp:
			logger.Info("target skipped", "target", rec.Target, "reason", rec.Message)
		default:
			logger.Info("target updated", "target", rec.Target, "status_code", rec.StatusCode)
		}
	}

	logger.Info("batch run finished",
		"targets", len(res.Records),
		"failed", len(res.Failures()),
		"succeeded", res.AllSucceeded())
	return res
}

// Chunk groups items into payload batches of at most size elements,
// preserving order; the last chunk may be short. size <= 0 is treated as 1.
// Chunking bounds how many items share one API call payload; it never
// introduces parallel dispatch.
func Chunk[T any](items []T, size int) [][]T {
	if size <= 0 {
		size = 1
	}
	var out [][]T
	for len(items) > size {
		out = append(out, items[:size:size])
		items = items[size:]
	}
	if len(items) > 0 {
		out = append(out, items)
	}
	return out
}
