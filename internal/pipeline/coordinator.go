package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"forest-cover-benchmark/internal/aggregate"
	"forest-cover-benchmark/internal/algorithms"
	"forest-cover-benchmark/internal/classes"
	"forest-cover-benchmark/internal/logger"
	"forest-cover-benchmark/internal/models"
	"forest-cover-benchmark/internal/raster"
	"forest-cover-benchmark/internal/timing"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

var ErrNoOutput = errors.New("pipeline: no output path")

type Options struct {
	Classifier string
	Workers    int
	TileRows   int
}

// Coordinator wires the stages of a run. It holds no per-run state, so one
// Coordinator may serve concurrent runs.
type Coordinator struct {
	scheme     *classes.Scheme
	loader     *loader
	saver      *saver
	classifier algorithms.Classifier
	aggregator *aggregate.Aggregator
	consumers  []Consumer
	metrics    *Metrics
	logger     logger.Logger
	now        func() time.Time
}

func NewCoordinator(source raster.Source, sink raster.Sink, log logger.Logger, opts Options) (*Coordinator, error) {
	scheme := classes.Default()
	manager := algorithms.NewManager(scheme, algorithms.Options{Workers: opts.Workers, TileRows: opts.TileRows})

	name := opts.Classifier
	if name == "" {
		name = algorithms.DefaultClassifier
	}
	if err := manager.SetCurrent(name); err != nil {
		return nil, err
	}

	return &Coordinator{
		scheme:     scheme,
		loader:     &loader{source: source, logger: log},
		saver:      &saver{sink: sink, logger: log},
		classifier: manager.Current(),
		aggregator: aggregate.NewAggregator(scheme, opts.Workers, opts.TileRows),
		metrics:    NewMetrics(),
		logger:     log,
		now:        time.Now,
	}, nil
}

// AddConsumer registers a report consumer invoked after each successful run.
func (c *Coordinator) AddConsumer(consumer Consumer) {
	c.consumers = append(c.consumers, consumer)
}

func (c *Coordinator) Metrics() *Metrics {
	return c.metrics
}

func (c *Coordinator) Scheme() *classes.Scheme {
	return c.scheme
}

// Run executes one classification pass. Alignment is checked on described
// metadata, so with drivers that describe from headers (gdal, memory, and
// opencv for TIFF/PNG) a mismatch aborts before any pixels are read. Nothing
// is written on alignment failure.
func (c *Coordinator) Run(ctx context.Context, req Request) (*Result, error) {
	result, err := c.run(ctx, req)
	c.metrics.RecordRun(err)
	if err != nil {
		c.logger.Error("Coordinator", err, map[string]interface{}{
			"run_id": req.RunID,
		})
		return nil, err
	}
	return result, nil
}

func (c *Coordinator) run(ctx context.Context, req Request) (*Result, error) {
	if req.Output == "" {
		return nil, ErrNoOutput
	}
	if req.RunID == "" {
		req.RunID = uuid.NewString()
	}

	tracker := timing.NewTracker(c.metrics)
	result := &Result{
		RunID:      req.RunID,
		Project:    req.Project,
		Request:    req,
		OutputPath: req.Output,
		Classifier: c.classifier.GetName(),
		StartedAt:  c.now(),
	}

	c.logger.Info("Coordinator", "run started", map[string]interface{}{
		"run_id":     req.RunID,
		"classifier": result.Classifier,
	})

	var metas [3]models.Metadata
	err := tracker.Time(ctx, StageDescribe, func(ctx context.Context) error {
		var err error
		if metas, err = c.loader.describe(ctx, req); err != nil {
			return err
		}
		result.Resolution, err = c.loader.check(metas)
		return err
	})
	if err != nil {
		return nil, err
	}
	result.Reference = metas[0]

	var inputs hrp
	err = tracker.Time(ctx, StageLoad, func(ctx context.Context) error {
		var err error
		if inputs, err = c.loader.load(ctx, req); err != nil {
			return err
		}
		return c.loader.verify(metas[0], inputs)
	})
	if err != nil {
		return nil, err
	}

	err = tracker.Time(ctx, StageClassify, func(ctx context.Context) error {
		var err error
		result.Grid, err = c.classifier.Classify(ctx, inputs[0], inputs[1], inputs[2])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("classification failed: %w", err)
	}

	// The grid is read-only from here on; aggregation and writing share it.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return tracker.Time(gctx, StageAggregate, func(ctx context.Context) error {
			var err error
			result.Tables, err = c.aggregator.Aggregate(ctx, result.Grid, result.Resolution)
			return err
		})
	})
	g.Go(func() error {
		return tracker.Time(gctx, StageWrite, func(ctx context.Context) error {
			return c.saver.save(ctx, req.Output, result.Grid, inputs[0].Metadata)
		})
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	c.metrics.RecordTables(result.Tables)
	result.FinishedAt = c.now()

	err = tracker.Time(ctx, StageReport, func(ctx context.Context) error {
		for _, consumer := range c.consumers {
			if err := consumer.Consume(ctx, result); err != nil {
				return fmt.Errorf("failed to report areas: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result.Timings = tracker.Summary()

	c.logger.Info("Coordinator", "run completed", map[string]interface{}{
		"run_id":            req.RunID,
		"output":            req.Output,
		"classified_pixels": result.Tables.ClassifiedPixels(),
		"unclassified":      result.Tables.UnclassifiedPixels(),
		"total_ha":          result.Tables.TransitionalTotal(),
		"duration":          result.FinishedAt.Sub(result.StartedAt).String(),
	})

	return result, nil
}
