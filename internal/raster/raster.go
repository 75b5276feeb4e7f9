// Package raster defines the boundary between the engine and raster storage.
package raster

import (
	"context"
	"errors"
	"fmt"

	"forest-cover-benchmark/internal/models"
)

var (
	ErrNotFound         = errors.New("raster: not found")
	ErrUnsupportedType  = errors.New("raster: unsupported pixel type")
	ErrInvalidRequest   = errors.New("raster: invalid write request")
	ErrNoSpatialContext = errors.New("raster: no georeferencing found")
)

// Compression names a lossless encoding for written rasters.
type Compression string

const (
	CompressionNone    Compression = "NONE"
	CompressionLZW     Compression = "LZW"
	CompressionDeflate Compression = "DEFLATE"
)

// Source reads classified rasters. Implementations return band 1 only.
type Source interface {
	Describe(ctx context.Context, path string) (models.Metadata, error)
	Read(ctx context.Context, path string) (*models.Raster, error)
}

// Sink persists a raster described by a WriteRequest.
type Sink interface {
	Write(ctx context.Context, path string, req WriteRequest) error
}

// WriteRequest carries everything a sink needs to persist one raster.
type WriteRequest struct {
	Pixels      []uint8
	DataType    models.DataType
	BandCount   int
	Compression Compression
	Metadata    models.Metadata
	NoData      *float64
}

// NewClassificationRequest prepares the single-band, 8-bit, LZW-compressed
// output for a class grid, inheriting spatial metadata from ref.
func NewClassificationRequest(grid *models.ClassGrid, ref models.Metadata) (WriteRequest, error) {
	if grid == nil {
		return WriteRequest{}, fmt.Errorf("%w: no class grid", ErrInvalidRequest)
	}
	if grid.Width != ref.Width || grid.Height != ref.Height {
		return WriteRequest{}, fmt.Errorf("%w: grid is %dx%d, reference is %dx%d",
			ErrInvalidRequest, grid.Width, grid.Height, ref.Width, ref.Height)
	}

	meta := ref
	meta.BandCount = 1
	meta.DataType = models.DataTypeByte
	nodata := 0.0
	meta.NoData = &nodata

	return WriteRequest{
		Pixels:      grid.Classes,
		DataType:    models.DataTypeByte,
		BandCount:   1,
		Compression: CompressionLZW,
		Metadata:    meta,
		NoData:      &nodata,
	}, nil
}

// Validate checks the request is internally consistent.
func (r WriteRequest) Validate() error {
	if r.DataType != models.DataTypeByte {
		return fmt.Errorf("%w: %s", ErrUnsupportedType, r.DataType)
	}
	if r.BandCount != 1 {
		return fmt.Errorf("%w: band count %d, only single-band output is supported", ErrInvalidRequest, r.BandCount)
	}
	if r.Metadata.Width <= 0 || r.Metadata.Height <= 0 {
		return fmt.Errorf("%w: dimensions %dx%d", ErrInvalidRequest, r.Metadata.Width, r.Metadata.Height)
	}
	if len(r.Pixels) != r.Metadata.Width*r.Metadata.Height {
		return fmt.Errorf("%w: %d pixels for %dx%d", ErrInvalidRequest, len(r.Pixels), r.Metadata.Width, r.Metadata.Height)
	}
	return nil
}
