// Package drivers resolves a configured driver name to a raster source and sink.
package drivers

import (
	"fmt"

	"forest-cover-benchmark/internal/logger"
	"forest-cover-benchmark/internal/raster"
	"forest-cover-benchmark/internal/raster/geotiff"
	"forest-cover-benchmark/internal/raster/opencv"
)

const (
	GDAL   = "gdal"
	OpenCV = "opencv"
	Memory = "memory"
)

// Driver is a raster backend able to both read and write.
type Driver interface {
	raster.Source
	raster.Sink
}

// Names lists the driver identifiers accepted by Open.
func Names() []string {
	return []string{GDAL, OpenCV, Memory}
}

// Open returns the named driver. The memory driver is fresh on every call.
func Open(name string, log logger.Logger) (Driver, error) {
	switch name {
	case GDAL, "":
		return geotiff.New(log), nil
	case OpenCV:
		return opencv.New(log), nil
	case Memory:
		return raster.NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown raster driver: %s", name)
	}
}
