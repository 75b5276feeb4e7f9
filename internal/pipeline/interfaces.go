// Package pipeline runs one forest cover benchmark classification: load and
// align the three HRP rasters, classify, then aggregate areas and write the
// class raster side by side.
package pipeline

import (
	"context"
	"time"

	"forest-cover-benchmark/internal/aggregate"
	"forest-cover-benchmark/internal/models"
)

// Request names the rasters of one run.
type Request struct {
	RunID   string
	Project string
	Start   string
	Mid     string
	End     string
	Output  string
}

// Result is everything a run produced. Grid and Tables are owned by the caller.
type Result struct {
	RunID      string
	Project    string
	Request    Request
	Resolution models.Resolution
	Reference  models.Metadata
	Grid       *models.ClassGrid
	Tables     *aggregate.Tables
	OutputPath string
	Classifier string
	StartedAt  time.Time
	FinishedAt time.Time
	Timings    map[string]time.Duration
}

// Consumer receives the area tables of every successful run.
type Consumer interface {
	Consume(ctx context.Context, result *Result) error
}

// ConsumerFunc adapts a function to Consumer.
type ConsumerFunc func(ctx context.Context, result *Result) error

func (f ConsumerFunc) Consume(ctx context.Context, result *Result) error {
	return f(ctx, result)
}

const (
	StageDescribe  = "describe"
	StageLoad      = "load"
	StageClassify  = "classify"
	StageAggregate = "aggregate"
	StageWrite     = "write"
	StageReport    = "report"
)
