// Package opencv stores class rasters as plain TIFF/PNG pixels decoded by
// OpenCV, with georeferencing kept in world file and .prj sidecars.
package opencv

import (
	"context"
	"errors"
	"fmt"
	"image"

	"forest-cover-benchmark/internal/logger"
	"forest-cover-benchmark/internal/models"
	"forest-cover-benchmark/internal/raster"

	"gocv.io/x/gocv"
)

// OpenCV imwrite parameters for TIFF output (IMWRITE_TIFF_COMPRESSION and
// libtiff's COMPRESSION_LZW / COMPRESSION_ADOBE_DEFLATE / COMPRESSION_NONE).
const (
	imwriteTiffCompression = 259
	tiffCompressionNone    = 1
	tiffCompressionLZW     = 5
	tiffCompressionDeflate = 8
)

type Driver struct {
	logger logger.Logger
}

func New(log logger.Logger) *Driver {
	return &Driver{logger: log}
}

// Describe reads the TIFF/PNG header only. Formats the header reader does not
// know are decoded in full.
func (d *Driver) Describe(ctx context.Context, path string) (models.Metadata, error) {
	if err := ctx.Err(); err != nil {
		return models.Metadata{}, err
	}

	meta, err := readHeader(path)
	if err == nil {
		return meta, nil
	}
	if !errors.Is(err, image.ErrFormat) {
		return models.Metadata{}, err
	}

	d.logger.Debug("OpenCV", "no header reader for format, decoding pixels", map[string]interface{}{
		"path": path,
	})
	r, err := d.Read(ctx, path)
	if err != nil {
		return models.Metadata{}, err
	}
	return r.Metadata, nil
}

func (d *Driver) Read(ctx context.Context, path string) (*models.Raster, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mat := gocv.IMRead(path, gocv.IMReadUnchanged)
	defer mat.Close()
	if mat.Empty() {
		return nil, fmt.Errorf("failed to decode raster %s", path)
	}
	if err := validateMat(mat, "IMRead"); err != nil {
		return nil, err
	}

	channels := mat.Channels()
	band := mat
	if channels > 1 {
		planes := gocv.Split(mat)
		defer func() {
			for i := range planes {
				planes[i].Close()
			}
		}()
		band = planes[0]
		d.logger.Warning("OpenCV", "multi-channel input, reading channel 0 only", map[string]interface{}{
			"path":     path,
			"channels": channels,
		})
	}

	pixels, dtype, err := widen(band)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	gt, crs, err := raster.ReadSidecars(path)
	if err != nil {
		return nil, err
	}

	meta := models.Metadata{
		Width:        band.Cols(),
		Height:       band.Rows(),
		BandCount:    channels,
		DataType:     dtype,
		GeoTransform: gt,
		CRS:          crs,
	}

	d.logger.Debug("OpenCV", "raster read", map[string]interface{}{
		"path":   path,
		"width":  meta.Width,
		"height": meta.Height,
		"dtype":  string(dtype),
	})

	return models.NewRaster(path, meta, pixels)
}

// widen copies an 8- or 16-bit single channel Mat into a uint16 buffer.
func widen(band gocv.Mat) ([]uint16, models.DataType, error) {
	if !band.IsContinuous() {
		cloned := band.Clone()
		defer cloned.Close()
		band = cloned
	}

	switch band.Type() {
	case gocv.MatTypeCV8UC1:
		data, err := band.DataPtrUint8()
		if err != nil {
			return nil, "", fmt.Errorf("failed to access pixels: %w", err)
		}
		out := make([]uint16, len(data))
		for i, v := range data {
			out[i] = uint16(v)
		}
		return out, models.DataTypeByte, nil
	case gocv.MatTypeCV16UC1:
		data, err := band.DataPtrUint16()
		if err != nil {
			return nil, "", fmt.Errorf("failed to access pixels: %w", err)
		}
		out := make([]uint16, len(data))
		copy(out, data)
		return out, models.DataTypeUInt16, nil
	default:
		return nil, "", fmt.Errorf("%w: OpenCV type %v", raster.ErrUnsupportedType, band.Type())
	}
}

func (d *Driver) Write(ctx context.Context, path string, req raster.WriteRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := req.Validate(); err != nil {
		return err
	}

	meta := req.Metadata
	if err := validateDimensions(meta.Width, meta.Height, "IMWrite"); err != nil {
		return err
	}
	mat, err := gocv.NewMatFromBytes(meta.Height, meta.Width, gocv.MatTypeCV8UC1, req.Pixels)
	if err != nil {
		return fmt.Errorf("failed to wrap class grid: %w", err)
	}
	defer mat.Close()

	if !gocv.IMWriteWithParams(path, mat, writeParams(req.Compression)) {
		return fmt.Errorf("failed to encode raster %s", path)
	}
	if err := raster.WriteSidecars(path, meta.GeoTransform, meta.CRS); err != nil {
		return err
	}

	d.logger.Info("OpenCV", "raster written", map[string]interface{}{
		"path":        path,
		"compression": string(req.Compression),
		"width":       meta.Width,
		"height":      meta.Height,
	})
	return nil
}

func writeParams(c raster.Compression) []int {
	switch c {
	case raster.CompressionNone:
		return []int{imwriteTiffCompression, tiffCompressionNone}
	case raster.CompressionDeflate:
		return []int{imwriteTiffCompression, tiffCompressionDeflate}
	default:
		return []int{imwriteTiffCompression, tiffCompressionLZW}
	}
}
