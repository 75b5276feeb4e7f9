package aggregate

import (
	"context"
	"math/rand"
	"testing"

	"forest-cover-benchmark/internal/alignment"
	"forest-cover-benchmark/internal/classes"
	"forest-cover-benchmark/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var res30 = models.Resolution{X: 30, Y: 30}

func classGrid(w, h int, values ...uint8) *models.ClassGrid {
	return &models.ClassGrid{Width: w, Height: h, Classes: values}
}

func TestTwoByTwoScenario(t *testing.T) {
	tables, err := Compute(classGrid(2, 2, 5, 7, 1, 3), res30, classes.Default())
	require.NoError(t, err)

	assert.InDelta(t, 0.09, tables.PixelAreaHa, 1e-12)

	wantTransitional := map[classes.Transition]float64{1: 0.09, 2: 0, 3: 0.09, 4: 0, 5: 0.09, 6: 0, 7: 0.09, 8: 0}
	require.Len(t, tables.Transitional, 8)
	for c, want := range wantTransitional {
		assert.InDelta(t, want, tables.Transitional[c], 1e-12, "class %d", c)
	}

	wantInterpreted := map[classes.Interpreted]float64{
		classes.StableNonForest:      0.18,
		classes.StableForest:         0.09,
		classes.DeforestedFirstHalf:  0.09,
		classes.DeforestedSecondHalf: 0,
	}
	require.Len(t, tables.Interpreted, 4)
	for i, want := range wantInterpreted {
		assert.InDelta(t, want, tables.Interpreted[i], 1e-12, "interpreted %d", i)
	}
}

func TestUnclassifiedPixelsExcluded(t *testing.T) {
	tables, err := Compute(classGrid(3, 1, 0, 0, 5), res30, classes.Default())
	require.NoError(t, err)

	assert.EqualValues(t, 2, tables.UnclassifiedPixels())
	assert.EqualValues(t, 1, tables.ClassifiedPixels())
	assert.InDelta(t, 0.09, tables.TransitionalTotal(), 1e-12)
	assert.InDelta(t, 0.09, tables.InterpretedTotal(), 1e-12)
}

func TestAreaConservation(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	w, h := 61, 45
	values := make([]uint8, w*h)
	for i := range values {
		values[i] = uint8(rng.Intn(9))
	}
	res := models.Resolution{X: 10, Y: 12.5}

	tables, err := NewAggregator(classes.Default(), 3, 4).Aggregate(context.Background(), classGrid(w, h, values...), res)
	require.NoError(t, err)

	expected := float64(tables.ClassifiedPixels()) * res.PixelAreaHectares()
	assert.InDelta(t, expected, tables.TransitionalTotal(), 1e-9)
	assert.Equal(t, tables.TransitionalTotal(), tables.InterpretedTotal())
	assert.EqualValues(t, w*h, tables.ClassifiedPixels()+tables.UnclassifiedPixels())
}

func TestTotalsAreBitIdentical(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	agg := NewAggregator(classes.Default(), 1, 1)

	for _, res := range []models.Resolution{res30, {X: 10, Y: 12.5}, {X: 0.3, Y: 0.7}} {
		for n := 0; n < 2000; n++ {
			var counts Counts
			for c := range counts {
				counts[c] = rng.Int63n(1 << 24)
			}
			tables := agg.FromCounts(counts, res)
			require.Equal(t, tables.TransitionalTotal(), tables.InterpretedTotal(), "res=%s counts=%v", res, counts)
		}
	}
}

func TestInterpretedPixelsAndShares(t *testing.T) {
	tables, err := Compute(classGrid(2, 2, 5, 7, 1, 3), res30, classes.Default())
	require.NoError(t, err)

	assert.EqualValues(t, 2, tables.InterpretedPixels(classes.StableNonForest))
	assert.EqualValues(t, 0, tables.InterpretedPixels(classes.DeforestedSecondHalf))

	shares := tables.Shares()
	require.Len(t, shares, classes.TransitionCount)
	assert.InDelta(t, 25, shares[0], 1e-12)
	assert.InDelta(t, 25, shares[6], 1e-12)
	assert.Zero(t, shares[7])

	empty, err := Compute(classGrid(1, 1, 0), res30, classes.Default())
	require.NoError(t, err)
	assert.Equal(t, make([]float64, classes.TransitionCount), empty.Shares())
}

func TestParallelCountsMatchSinglePass(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	values := make([]uint8, 20*33)
	for i := range values {
		values[i] = uint8(rng.Intn(9))
	}
	g := classGrid(20, 33, values...)

	want := countRange(values)
	for _, tileRows := range []int{1, 5, 33, 1000} {
		tables, err := NewAggregator(classes.Default(), 2, tileRows).Aggregate(context.Background(), g, res30)
		require.NoError(t, err)
		assert.Equal(t, want, tables.Counts, "tileRows=%d", tileRows)
	}
}

func TestDegenerateResolution(t *testing.T) {
	for _, res := range []models.Resolution{{X: 0, Y: 30}, {X: 30, Y: -30}} {
		_, err := Compute(classGrid(1, 1, 5), res, classes.Default())
		assert.ErrorIs(t, err, alignment.ErrDegenerateResolution)
	}
}

func TestOutOfRangeClassValuesCountAsUnclassified(t *testing.T) {
	tables, err := Compute(classGrid(2, 1, 9, 200), res30, classes.Default())
	require.NoError(t, err)
	assert.EqualValues(t, 2, tables.UnclassifiedPixels())
	assert.Zero(t, tables.TransitionalTotal())
}

func TestAggregateIsIdempotent(t *testing.T) {
	g := classGrid(2, 2, 8, 8, 6, 2)
	a, err := Compute(g, res30, classes.Default())
	require.NoError(t, err)
	b, err := Compute(g, res30, classes.Default())
	require.NoError(t, err)
	assert.Equal(t, a.Transitional, b.Transitional)
	assert.Equal(t, a.Interpreted, b.Interpreted)
}
