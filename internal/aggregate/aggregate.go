// Package aggregate converts a transition class grid into hectare area tables.
package aggregate

import (
	"context"
	"fmt"
	"runtime"

	"forest-cover-benchmark/internal/alignment"
	"forest-cover-benchmark/internal/classes"
	"forest-cover-benchmark/internal/models"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
)

// Counts holds pixel counts indexed by transition class; slot 0 is unclassified.
type Counts [classes.TransitionCount + 1]int64

// Tables is the result of one aggregation pass.
type Tables struct {
	Resolution   models.Resolution
	PixelAreaHa  float64
	Counts       Counts
	Transitional map[classes.Transition]float64
	Interpreted  map[classes.Interpreted]float64
	scheme       *classes.Scheme
}

// Aggregator counts classes per row strip in parallel and merges the partial
// histograms.
type Aggregator struct {
	scheme   *classes.Scheme
	workers  int
	tileRows int
}

func NewAggregator(scheme *classes.Scheme, workers, tileRows int) *Aggregator {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if tileRows <= 0 {
		tileRows = 256
	}
	return &Aggregator{scheme: scheme, workers: workers, tileRows: tileRows}
}

// Compute is a convenience wrapper with default parallelism.
func Compute(grid *models.ClassGrid, res models.Resolution, scheme *classes.Scheme) (*Tables, error) {
	return NewAggregator(scheme, 0, 0).Aggregate(context.Background(), grid, res)
}

func (a *Aggregator) Aggregate(ctx context.Context, grid *models.ClassGrid, res models.Resolution) (*Tables, error) {
	if grid == nil {
		return nil, fmt.Errorf("no class grid to aggregate")
	}
	if !res.Valid() {
		return nil, fmt.Errorf("%w: got %s", alignment.ErrDegenerateResolution, res)
	}

	counts, err := a.count(ctx, grid)
	if err != nil {
		return nil, err
	}
	return a.FromCounts(counts, res), nil
}

func (a *Aggregator) count(ctx context.Context, grid *models.ClassGrid) (Counts, error) {
	width := grid.Width
	if width <= 0 {
		return countRange(grid.Classes), ctx.Err()
	}

	var partials []*Counts
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)

	for row := 0; row < grid.Height; row += a.tileRows {
		lo := row * width
		hi := min(row+a.tileRows, grid.Height) * width
		part := new(Counts)
		partials = append(partials, part)

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			*part = countRange(grid.Classes[lo:hi])
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Counts{}, err
	}
	if err := ctx.Err(); err != nil {
		return Counts{}, err
	}

	var total Counts
	for _, p := range partials {
		for c := range total {
			total[c] += p[c]
		}
	}
	return total, nil
}

// countRange buckets class values; anything above 8 is treated as unclassified.
func countRange(values []uint8) Counts {
	var c Counts
	for _, v := range values {
		if int(v) > classes.TransitionCount {
			v = 0
		}
		c[v]++
	}
	return c
}

// FromCounts builds both tables from precomputed pixel counts.
func (a *Aggregator) FromCounts(counts Counts, res models.Resolution) *Tables {
	pixelArea := res.PixelAreaHectares()
	t := &Tables{
		Resolution:   res,
		PixelAreaHa:  pixelArea,
		Counts:       counts,
		Transitional: make(map[classes.Transition]float64, classes.TransitionCount),
		Interpreted:  make(map[classes.Interpreted]float64, classes.InterpretedCount),
		scheme:       a.scheme,
	}

	for _, c := range classes.Transitions() {
		t.Transitional[c] = float64(counts[c]) * pixelArea
	}

	for _, i := range classes.InterpretedClasses() {
		t.Interpreted[i] = float64(t.InterpretedPixels(i)) * pixelArea
	}

	return t
}

// InterpretedPixels is the pixel count of all transition classes regrouped
// into i.
func (t *Tables) InterpretedPixels(i classes.Interpreted) int64 {
	var n int64
	for _, c := range t.scheme.Members(i) {
		n += t.Counts[c]
	}
	return n
}

// ClassifiedPixels is the number of pixels carrying a class 1..8.
func (t *Tables) ClassifiedPixels() int64 {
	var n int64
	for c := 1; c < len(t.Counts); c++ {
		n += t.Counts[c]
	}
	return n
}

func (t *Tables) UnclassifiedPixels() int64 {
	return t.Counts[classes.Unclassified]
}

// TransitionalTotal and InterpretedTotal scale integer pixel sums once, so
// the two totals are bit-identical.
func (t *Tables) TransitionalTotal() float64 {
	return float64(t.ClassifiedPixels()) * t.PixelAreaHa
}

func (t *Tables) InterpretedTotal() float64 {
	var n int64
	for _, i := range classes.InterpretedClasses() {
		n += t.InterpretedPixels(i)
	}
	return float64(n) * t.PixelAreaHa
}

// Shares returns each transitional class's percentage of the classified area,
// indexed by class - 1.
func (t *Tables) Shares() []float64 {
	shares := make([]float64, 0, classes.TransitionCount)
	for _, c := range classes.Transitions() {
		shares = append(shares, float64(t.Counts[c]))
	}
	if total := floats.Sum(shares); total > 0 {
		floats.Scale(100/total, shares)
	}
	return shares
}

func (t *Tables) Scheme() *classes.Scheme {
	return t.scheme
}
