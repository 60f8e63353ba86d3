// Package metrics abstracts run metric collection so the upload pipeline can
// record counters without knowing the backend. The Prometheus implementation
// is only wired when a metrics listen address is configured.
package metrics

import (
	"context"
	"time"
)

// Recorder records metrics for upload runs. Implementations must be safe for
// concurrent use.
type Recorder interface {
	// RecordRunStart records the start of an upload run.
	RecordRunStart(ctx context.Context, command string)

	// RecordRunEnd records the end of an upload run and its total duration.
	RecordRunEnd(ctx context.Context, command string, status string, duration time.Duration)

	// RecordRowsIngested records the number of rows retained for a project
	// after window filtering.
	RecordRowsIngested(ctx context.Context, project string, count int)

	// RecordTicksBuilt records the grid size and missing-tick count of one
	// built series.
	RecordTicksBuilt(ctx context.Context, project string, series string, total int, missing int)

	// RecordSeriesStored records one series accepted by the data service.
	RecordSeriesStored(ctx context.Context, project string, series string)

	// RecordSeriesFailed records one series the data service rejected.
	RecordSeriesFailed(ctx context.Context, project string, series string)
}

// NoOpRecorder is a Recorder that does nothing. It is used when metrics are
// disabled and in tests.
type NoOpRecorder struct{}

// NewNoOpRecorder creates a new NoOpRecorder.
func NewNoOpRecorder() Recorder {
	return &NoOpRecorder{}
}

// RecordRunStart does nothing.
func (r *NoOpRecorder) RecordRunStart(ctx context.Context, command string) {}

// RecordRunEnd does nothing.
func (r *NoOpRecorder) RecordRunEnd(ctx context.Context, command string, status string, duration time.Duration) {
}

// RecordRowsIngested does nothing.
func (r *NoOpRecorder) RecordRowsIngested(ctx context.Context, project string, count int) {}

// RecordTicksBuilt does nothing.
func (r *NoOpRecorder) RecordTicksBuilt(ctx context.Context, project string, series string, total int, missing int) {
}

// RecordSeriesStored does nothing.
func (r *NoOpRecorder) RecordSeriesStored(ctx context.Context, project string, series string) {}

// RecordSeriesFailed does nothing.
func (r *NoOpRecorder) RecordSeriesFailed(ctx context.Context, project string, series string) {}

var _ Recorder = (*NoOpRecorder)(nil)
