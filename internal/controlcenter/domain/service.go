package domain

import (
	"context"
	"errors"
)

// Service computes live operational snapshots for the control center.
type Service interface {
	// Configured reports whether the backing store is reachable in
	// principle. Callers use it to distinguish "not configured" from
	// "configured but sources were empty".
	Configured() bool

	// Snapshot recomputes the operational summary from source. It never
	// fails because a single table or column is missing; it fails only
	// when the aggregation itself breaks.
	Snapshot(ctx context.Context) (Snapshot, error)
}

var ErrAggregationFailed = errors.New("aggregation_failed")
