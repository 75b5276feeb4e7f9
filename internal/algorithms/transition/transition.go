// Package transition classifies HRP pixel triples into transition classes.
package transition

import (
	"fmt"

	"forest-cover-benchmark/internal/alignment"
	"forest-cover-benchmark/internal/classes"
	"forest-cover-benchmark/internal/models"
)

const (
	TiledName      = "tiled"
	SequentialName = "sequential"
)

func validateInputs(start, mid, end *models.Raster) error {
	if start == nil || mid == nil || end == nil {
		return fmt.Errorf("%w: missing input raster", alignment.ErrInputIncompatible)
	}
	w, h := start.Width(), start.Height()
	for _, r := range []*models.Raster{mid, end} {
		if r.Width() != w || r.Height() != h {
			return fmt.Errorf("%w: %s is %dx%d, %s is %dx%d",
				alignment.ErrInputIncompatible, start.Name, w, h, r.Name, r.Width(), r.Height())
		}
	}
	for _, r := range []*models.Raster{start, mid, end} {
		if len(r.Pixels) != w*h {
			return fmt.Errorf("%w: %s holds %d pixels, expected %d",
				alignment.ErrInputIncompatible, r.Name, len(r.Pixels), w*h)
		}
	}
	return nil
}

// classifyRange writes classes for pixels [lo, hi).
func classifyRange(table *classes.LookupTable, start, mid, end []uint16, out []uint8, lo, hi int) {
	s, m, e := start[lo:hi], mid[lo:hi], end[lo:hi]
	dst := out[lo:hi]
	for i := range dst {
		dst[i] = uint8(table.Lookup(s[i], m[i], e[i]))
	}
}
