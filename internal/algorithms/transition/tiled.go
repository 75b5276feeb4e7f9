package transition

import (
	"context"
	"runtime"

	"forest-cover-benchmark/internal/classes"
	"forest-cover-benchmark/internal/models"

	"golang.org/x/sync/errgroup"
)

const DefaultTileRows = 256

// Tiled splits the grid into horizontal strips and classifies them on a
// bounded pool of goroutines. Each strip writes a disjoint slice of the output.
type Tiled struct {
	scheme   *classes.Scheme
	workers  int
	tileRows int
}

func NewTiled(scheme *classes.Scheme, workers, tileRows int) *Tiled {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if tileRows <= 0 {
		tileRows = DefaultTileRows
	}
	return &Tiled{scheme: scheme, workers: workers, tileRows: tileRows}
}

func (t *Tiled) GetName() string {
	return TiledName
}

func (t *Tiled) Classify(ctx context.Context, start, mid, end *models.Raster) (*models.ClassGrid, error) {
	if err := validateInputs(start, mid, end); err != nil {
		return nil, err
	}

	width, height := start.Width(), start.Height()
	grid := models.NewClassGrid(width, height)
	table := t.scheme.Table()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(t.workers)

	for row := 0; row < height; row += t.tileRows {
		lo := row * width
		hi := min(row+t.tileRows, height) * width

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			classifyRange(table, start.Pixels, mid.Pixels, end.Pixels, grid.Classes, lo, hi)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return grid, nil
}
