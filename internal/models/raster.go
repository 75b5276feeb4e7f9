package models

import "fmt"

// Forest state codes used by the classified input rasters.
const (
	StateNoData    uint16 = 0
	StateForest    uint16 = 1
	StateNonForest uint16 = 2
)

// Raster is a single-band classified input, stored row-major.
type Raster struct {
	Name     string
	Pixels   []uint16
	Metadata Metadata
}

func NewRaster(name string, meta Metadata, pixels []uint16) (*Raster, error) {
	if meta.Width <= 0 || meta.Height <= 0 {
		return nil, fmt.Errorf("invalid raster dimensions: %dx%d", meta.Width, meta.Height)
	}
	if len(pixels) != meta.PixelCount() {
		return nil, fmt.Errorf("pixel buffer holds %d values, expected %d", len(pixels), meta.PixelCount())
	}
	return &Raster{Name: name, Pixels: pixels, Metadata: meta}, nil
}

func (r *Raster) Width() int  { return r.Metadata.Width }
func (r *Raster) Height() int { return r.Metadata.Height }

func (r *Raster) At(row, col int) uint16 {
	return r.Pixels[row*r.Metadata.Width+col]
}

// ClassGrid holds one transition class (0..8) per pixel, row-major.
type ClassGrid struct {
	Width   int
	Height  int
	Classes []uint8
}

func NewClassGrid(width, height int) *ClassGrid {
	return &ClassGrid{
		Width:   width,
		Height:  height,
		Classes: make([]uint8, width*height),
	}
}

func (g *ClassGrid) At(row, col int) uint8 {
	return g.Classes[row*g.Width+col]
}

// Equal reports bit-identical grids.
func (g *ClassGrid) Equal(other *ClassGrid) bool {
	if g == nil || other == nil {
		return g == other
	}
	if g.Width != other.Width || g.Height != other.Height || len(g.Classes) != len(other.Classes) {
		return false
	}
	for i := range g.Classes {
		if g.Classes[i] != other.Classes[i] {
			return false
		}
	}
	return true
}
