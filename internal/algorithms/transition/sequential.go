package transition

import (
	"context"

	"forest-cover-benchmark/internal/classes"
	"forest-cover-benchmark/internal/models"
)

// Sequential classifies the whole grid in one pass on the calling goroutine.
type Sequential struct {
	scheme *classes.Scheme
}

func NewSequential(scheme *classes.Scheme) *Sequential {
	return &Sequential{scheme: scheme}
}

func (s *Sequential) GetName() string {
	return SequentialName
}

func (s *Sequential) Classify(ctx context.Context, start, mid, end *models.Raster) (*models.ClassGrid, error) {
	if err := validateInputs(start, mid, end); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	grid := models.NewClassGrid(start.Width(), start.Height())
	classifyRange(s.scheme.Table(), start.Pixels, mid.Pixels, end.Pixels, grid.Classes, 0, len(grid.Classes))
	return grid, nil
}
