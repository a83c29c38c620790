package store

import (
	"context"

	"VNScreener/internal/screener"
)

// Recorder persists screen runs for later review.
type Recorder interface {
	RecordRun(ctx context.Context, res *screener.Result) error
	Close() error
}

// NoopRecorder is used when SQLite could not be opened.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordRun(_ context.Context, _ *screener.Result) error { return nil }
func (n *NoopRecorder) Close() error                                          { return nil }
