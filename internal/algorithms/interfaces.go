package algorithms

import (
	"context"

	"forest-cover-benchmark/internal/models"
)

// Classifier maps three aligned HRP rasters onto a transition class grid.
type Classifier interface {
	Classify(ctx context.Context, start, mid, end *models.Raster) (*models.ClassGrid, error)
	GetName() string
}

// Options tunes the classifier backends.
type Options struct {
	Workers  int
	TileRows int
}
