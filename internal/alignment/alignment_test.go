package alignment

import (
	"errors"
	"math"
	"testing"

	"forest-cover-benchmark/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func meta(res float64) models.Metadata {
	return models.Metadata{
		Width:        4,
		Height:       3,
		BandCount:    1,
		DataType:     models.DataTypeByte,
		GeoTransform: models.GeoTransform{600000, res, 0, 100000, 0, -res},
		CRS:          "EPSG:32618",
	}
}

func TestCheckReturnsCommonResolution(t *testing.T) {
	res, err := Check(meta(30), meta(30), meta(30))
	require.NoError(t, err)
	assert.Equal(t, models.Resolution{X: 30, Y: 30}, res)
}

func TestCheckResolutionMismatch(t *testing.T) {
	cases := []struct {
		name            string
		start, mid, end models.Metadata
		second          string
	}{
		{"MidDiffers", meta(30), meta(25), meta(30), "mid"},
		{"EndDiffers", meta(30), meta(30), meta(25), "end"},
		{"OnlyY", meta(30), func() models.Metadata { m := meta(30); m.GeoTransform[5] = -20; return m }(), meta(30), "mid"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Check(tc.start, tc.mid, tc.end)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInputIncompatible))

			var ie *IncompatibleError
			require.True(t, errors.As(err, &ie))
			assert.Equal(t, "start", ie.First)
			assert.Equal(t, tc.second, ie.Second)
			assert.Contains(t, ie.Field, "resolution")
		})
	}
}

func TestCheckShapeAndOrigin(t *testing.T) {
	wide := meta(30)
	wide.Width = 5
	_, err := Check(meta(30), wide, meta(30))
	assert.ErrorIs(t, err, ErrInputIncompatible)

	tall := meta(30)
	tall.Height = 1
	_, err = Check(meta(30), meta(30), tall)
	assert.ErrorIs(t, err, ErrInputIncompatible)

	shifted := meta(30)
	shifted.GeoTransform[0] += 30
	_, err = Check(meta(30), meta(30), shifted)
	var ie *IncompatibleError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "origin x", ie.Field)
}

func TestCheckCRS(t *testing.T) {
	other := meta(30)
	other.CRS = "EPSG:4326"
	_, err := Check(meta(30), other, meta(30))
	assert.ErrorIs(t, err, ErrInputIncompatible)

	unknown := meta(30)
	unknown.CRS = ""
	_, err = Check(meta(30), unknown, meta(30))
	assert.NoError(t, err)
}

func TestCheckDegenerateResolution(t *testing.T) {
	cases := []struct {
		name            string
		start, mid, end models.Metadata
	}{
		{"AllZero", meta(0), meta(0), meta(0)},
		{"AllNaN", meta(math.NaN()), meta(math.NaN()), meta(math.NaN())},
		{"AllInf", meta(math.Inf(1)), meta(math.Inf(1)), meta(math.Inf(1))},
		{"MidNaN", meta(30), meta(math.NaN()), meta(30)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Check(tc.start, tc.mid, tc.end)
			assert.ErrorIs(t, err, ErrDegenerateResolution)
			assert.NotErrorIs(t, err, ErrInputIncompatible)
		})
	}
}

func TestResolutionMismatchReportedBeforeShape(t *testing.T) {
	mid := meta(25)
	mid.Width = 9
	_, err := Check(meta(30), mid, meta(30))
	var ie *IncompatibleError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "x resolution", ie.Field)
}
