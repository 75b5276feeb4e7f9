package pipeline

import (
	"context"
	"fmt"

	"forest-cover-benchmark/internal/alignment"
	"forest-cover-benchmark/internal/logger"
	"forest-cover-benchmark/internal/models"
	"forest-cover-benchmark/internal/raster"

	"golang.org/x/sync/errgroup"
)

// hrp holds the three inputs in start, mid, end order.
type hrp [3]*models.Raster

var hrpNames = [3]string{"start", "mid", "end"}

type loader struct {
	source raster.Source
	logger logger.Logger
}

func (l *loader) paths(req Request) [3]string {
	return [3]string{req.Start, req.Mid, req.End}
}

// describe fetches metadata only, so alignment can fail before any pixel
// buffer is allocated.
func (l *loader) describe(ctx context.Context, req Request) ([3]models.Metadata, error) {
	var metas [3]models.Metadata
	paths := l.paths(req)

	g, gctx := errgroup.WithContext(ctx)
	for i := range paths {
		i := i // per-iteration copy (go 1.22+ loop semantics)
		g.Go(func() error {
			m, err := l.source.Describe(gctx, paths[i])
			if err != nil {
				return fmt.Errorf("failed to describe %s raster: %w", hrpNames[i], err)
			}
			metas[i] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return metas, err
	}
	return metas, nil
}

func (l *loader) check(metas [3]models.Metadata) (models.Resolution, error) {
	res, err := alignment.Check(metas[0], metas[1], metas[2])
	if err != nil {
		return models.Resolution{}, err
	}

	l.logger.Debug("Loader", "inputs aligned", map[string]interface{}{
		"resolution": res.String(),
		"width":      metas[0].Width,
		"height":     metas[0].Height,
	})
	return res, nil
}

// verify re-checks the loaded rasters against the described grid, catching
// inputs that changed between describe and read.
func (l *loader) verify(described models.Metadata, inputs hrp) error {
	named := []alignment.Named{{Name: "described start", Metadata: described}}
	for i, r := range inputs {
		named = append(named, alignment.Named{Name: "loaded " + hrpNames[i], Metadata: r.Metadata})
	}
	if _, err := alignment.CheckAll(named...); err != nil {
		return fmt.Errorf("inputs changed while loading: %w", err)
	}
	return nil
}

func (l *loader) load(ctx context.Context, req Request) (hrp, error) {
	var rasters hrp
	paths := l.paths(req)

	g, gctx := errgroup.WithContext(ctx)
	for i := range paths {
		i := i // per-iteration copy (go 1.22+ loop semantics)
		g.Go(func() error {
			r, err := l.source.Read(gctx, paths[i])
			if err != nil {
				return fmt.Errorf("failed to read %s raster: %w", hrpNames[i], err)
			}
			r.Name = hrpNames[i]
			rasters[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return hrp{}, err
	}

	l.logger.Info("Loader", "inputs loaded", map[string]interface{}{
		"start": req.Start,
		"mid":   req.Mid,
		"end":   req.End,
	})
	return rasters, nil
}
