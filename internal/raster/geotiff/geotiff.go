// Package geotiff reads and writes georeferenced rasters through GDAL.
package geotiff

import (
	"context"
	"fmt"
	"sync"

	"forest-cover-benchmark/internal/logger"
	"forest-cover-benchmark/internal/models"
	"forest-cover-benchmark/internal/raster"

	"github.com/airbusgeo/godal"
)

var registerOnce sync.Once

// Driver implements raster.Source and raster.Sink on top of GDAL.
type Driver struct {
	logger logger.Logger
}

func New(log logger.Logger) *Driver {
	registerOnce.Do(godal.RegisterAll)
	return &Driver{logger: log}
}

func (d *Driver) Describe(ctx context.Context, path string) (models.Metadata, error) {
	if err := ctx.Err(); err != nil {
		return models.Metadata{}, err
	}

	ds, err := godal.Open(path)
	if err != nil {
		return models.Metadata{}, fmt.Errorf("failed to open raster %s: %w", path, err)
	}
	defer ds.Close()

	return describe(ds)
}

func (d *Driver) Read(ctx context.Context, path string) (*models.Raster, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ds, err := godal.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open raster %s: %w", path, err)
	}
	defer ds.Close()

	meta, err := describe(ds)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if meta.BandCount > 1 {
		d.logger.Warning("GeoTIFF", "multi-band input, reading band 1 only", map[string]interface{}{
			"path":  path,
			"bands": meta.BandCount,
		})
	}

	// GDAL clamps values outside the uint16 range on conversion, which keeps
	// them outside the forest state domain.
	pixels := make([]uint16, meta.Width*meta.Height)
	band := ds.Bands()[0]
	if err := band.Read(0, 0, pixels, meta.Width, meta.Height); err != nil {
		return nil, fmt.Errorf("failed to read band 1 of %s: %w", path, err)
	}

	d.logger.Debug("GeoTIFF", "raster read", map[string]interface{}{
		"path":   path,
		"width":  meta.Width,
		"height": meta.Height,
		"dtype":  string(meta.DataType),
	})

	return models.NewRaster(path, meta, pixels)
}

func describe(ds *godal.Dataset) (models.Metadata, error) {
	st := ds.Structure()
	if st.NBands < 1 {
		return models.Metadata{}, fmt.Errorf("raster has no bands")
	}

	gt, err := ds.GeoTransform()
	if err != nil {
		return models.Metadata{}, fmt.Errorf("%w: %v", raster.ErrNoSpatialContext, err)
	}

	meta := models.Metadata{
		Width:        st.SizeX,
		Height:       st.SizeY,
		BandCount:    st.NBands,
		DataType:     dataType(st.DataType),
		GeoTransform: models.GeoTransform(gt),
		CRS:          ds.Projection(),
	}
	if nd, ok := ds.Bands()[0].NoData(); ok {
		meta.NoData = &nd
	}
	return meta, nil
}

func dataType(dt godal.DataType) models.DataType {
	switch dt {
	case godal.Byte:
		return models.DataTypeByte
	case godal.UInt16:
		return models.DataTypeUInt16
	case godal.Int16:
		return models.DataTypeInt16
	case godal.UInt32:
		return models.DataTypeUInt32
	case godal.Int32:
		return models.DataTypeInt32
	case godal.Float32:
		return models.DataTypeFloat32
	case godal.Float64:
		return models.DataTypeFloat64
	default:
		return models.DataTypeUnknown
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
	ds, err := godal.Create(godal.GTiff, path, req.BandCount, godal.Byte, meta.Width, meta.Height,
		godal.CreationOption(creationOptions(req.Compression)...))
	if err != nil {
		return fmt.Errorf("failed to create raster %s: %w", path, err)
	}

	if err := write(ds, req); err != nil {
		ds.Close()
		return fmt.Errorf("failed to write raster %s: %w", path, err)
	}
	if err := ds.Close(); err != nil {
		return fmt.Errorf("failed to flush raster %s: %w", path, err)
	}

	d.logger.Info("GeoTIFF", "raster written", map[string]interface{}{
		"path":        path,
		"compression": string(req.Compression),
		"width":       meta.Width,
		"height":      meta.Height,
	})
	return nil
}

func write(ds *godal.Dataset, req raster.WriteRequest) error {
	meta := req.Metadata
	if err := ds.SetGeoTransform([6]float64(meta.GeoTransform)); err != nil {
		return fmt.Errorf("failed to set geotransform: %w", err)
	}
	if meta.CRS != "" {
		if err := ds.SetProjection(meta.CRS); err != nil {
			return fmt.Errorf("failed to set projection: %w", err)
		}
	}

	band := ds.Bands()[0]
	if req.NoData != nil {
		if err := band.SetNoData(*req.NoData); err != nil {
			return fmt.Errorf("failed to set nodata: %w", err)
		}
	}
	return band.Write(0, 0, req.Pixels, meta.Width, meta.Height)
}

func creationOptions(c raster.Compression) []string {
	opts := []string{"TILED=YES"}
	if c == "" {
		c = raster.CompressionLZW
	}
	return append(opts, "COMPRESS="+string(c))
}
