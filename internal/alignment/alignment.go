// Package alignment verifies that the three HRP rasters share one pixel grid
// before any pixel-indexed work starts.
package alignment

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"forest-cover-benchmark/internal/models"
)

var (
	// ErrInputIncompatible indicates the input rasters do not share a grid.
	ErrInputIncompatible = errors.New("alignment: input rasters are incompatible")
	// ErrDegenerateResolution indicates a zero, negative or non-finite pixel size.
	ErrDegenerateResolution = errors.New("alignment: resolution must be positive and finite")
)

// IncompatibleError names the two rasters and the property they disagree on.
type IncompatibleError struct {
	First  string
	Second string
	Field  string
	Want   string
	Got    string
}

func (e *IncompatibleError) Error() string {
	return fmt.Sprintf("%s: %s of %q is %s but %q has %s",
		ErrInputIncompatible, e.Field, e.First, e.Want, e.Second, e.Got)
}

func (e *IncompatibleError) Unwrap() error {
	return ErrInputIncompatible
}

// Named pairs a raster's role with its metadata.
type Named struct {
	Name     string
	Metadata models.Metadata
}

// Check validates start, mid and end and returns their common resolution.
func Check(start, mid, end models.Metadata) (models.Resolution, error) {
	return CheckAll(
		Named{Name: "start", Metadata: start},
		Named{Name: "mid", Metadata: mid},
		Named{Name: "end", Metadata: end},
	)
}

// CheckAll compares every raster against the first one. Each pixel size must
// be usable on its own; after that resolution is compared before shape and
// origin so the most common mistake is reported first.
func CheckAll(rasters ...Named) (models.Resolution, error) {
	if len(rasters) == 0 {
		return models.Resolution{}, fmt.Errorf("%w: no rasters supplied", ErrInputIncompatible)
	}

	for _, r := range rasters {
		if res := r.Metadata.Resolution(); !res.Valid() {
			return models.Resolution{}, fmt.Errorf("%w: %s raster has %s", ErrDegenerateResolution, r.Name, res)
		}
	}

	ref := rasters[0]
	res := ref.Metadata.Resolution()

	for _, other := range rasters[1:] {
		if err := compareResolution(ref, other); err != nil {
			return models.Resolution{}, err
		}
	}
	for _, other := range rasters[1:] {
		if err := compareGrid(ref, other); err != nil {
			return models.Resolution{}, err
		}
	}

	return res, nil
}

func compareResolution(a, b Named) error {
	ra, rb := a.Metadata.Resolution(), b.Metadata.Resolution()
	if ra.X != rb.X {
		return mismatch(a, b, "x resolution", ra.X, rb.X)
	}
	if ra.Y != rb.Y {
		return mismatch(a, b, "y resolution", ra.Y, rb.Y)
	}
	return nil
}

func compareGrid(a, b Named) error {
	ma, mb := a.Metadata, b.Metadata
	if ma.Width != mb.Width {
		return mismatch(a, b, "width", ma.Width, mb.Width)
	}
	if ma.Height != mb.Height {
		return mismatch(a, b, "height", ma.Height, mb.Height)
	}

	labels := [6]string{"origin x", "pixel width", "row rotation", "origin y", "column rotation", "pixel height"}
	for i := range ma.GeoTransform {
		if !sameFloat(ma.GeoTransform[i], mb.GeoTransform[i]) {
			return mismatch(a, b, labels[i], ma.GeoTransform[i], mb.GeoTransform[i])
		}
	}

	ca, cb := strings.TrimSpace(ma.CRS), strings.TrimSpace(mb.CRS)
	if ca != "" && cb != "" && ca != cb {
		return &IncompatibleError{First: a.Name, Second: b.Name, Field: "CRS", Want: abbreviate(ca), Got: abbreviate(cb)}
	}
	return nil
}

func sameFloat(x, y float64) bool {
	return x == y || (math.IsNaN(x) && math.IsNaN(y))
}

func mismatch(a, b Named, field string, want, got interface{}) error {
	return &IncompatibleError{
		First:  a.Name,
		Second: b.Name,
		Field:  field,
		Want:   fmt.Sprint(want),
		Got:    fmt.Sprint(got),
	}
}

func abbreviate(s string) string {
	if len(s) <= 48 {
		return s
	}
	return s[:45] + "..."
}
