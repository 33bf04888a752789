package outcome

import "time"

// Status is the resolution of a single target.
type Status string

const (
	// StatusSuccess means the mutation was applied.
	StatusSuccess Status = "success"
	// StatusFailure means the target's operation failed; the run continues.
	StatusFailure Status = "failure"
	// StatusNoOp means the target required no mutation (empty topic list,
	// project without build definitions, topics already present).
	StatusNoOp Status = "no-op"
)

// Record captures the resolution of one target. A record is created exactly
// once, at the moment the target's operation resolves, and never mutated.
type Record struct {
	Time       time.Time
	Org        string
	Target     string
	Status     Status
	StatusCode int    // HTTP status of the failing (or final) call, 0 if none
	Message    string // response message or no-op reason
	Err        string // error message on failure
}

// Succeeded reports whether this record counts toward a fully successful run.
// No-ops are not failures.
func (r Record) Succeeded() bool {
	return r.Status != StatusFailure
}

// Success builds a success record for a target.
func Success(org, target string, statusCode int, message string) Record {
	return Record{
		Time:       time.Now(),
		Org:        org,
		Target:     target,
		Status:     StatusSuccess,
		StatusCode: statusCode,
		Message:    message,
	}
}

// Failure builds a failure record for a target.
func Failure(org, target string, statusCode int, message string, err error) Record {
	rec := Record{
		Time:       time.Now(),
		Org:        org,
		Target:     target,
		Status:     StatusFailure,
		StatusCode: statusCode,
		Message:    message,
	}
	if err != nil {
		rec.Err = err.Error()
	}
	return rec
}

// NoOp builds a record for a target that required no mutation.
func NoOp(org, target, reason string) Record {
	return Record{
		Time:    time.Now(),
		Org:     org,
		Target:  target,
		Status:  StatusNoOp,
		Message: reason,
	}
}
