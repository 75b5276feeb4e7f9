package models

import (
	"fmt"
	"math"
)

// GeoTransform is the GDAL affine transform:
// Xgeo = gt[0] + col*gt[1] + row*gt[2], Ygeo = gt[3] + col*gt[4] + row*gt[5].
type GeoTransform [6]float64

// Resolution is the ground size of one pixel in the raster's linear units.
type Resolution struct {
	X float64
	Y float64
}

// Resolution returns the absolute pixel size encoded in the transform.
func (gt GeoTransform) Resolution() Resolution {
	return Resolution{X: math.Abs(gt[1]), Y: math.Abs(gt[5])}
}

// Valid reports whether both components are finite and strictly positive.
func (r Resolution) Valid() bool {
	return r.X > 0 && r.Y > 0 && !math.IsInf(r.X, 0) && !math.IsInf(r.Y, 0)
}

// PixelAreaHectares converts one pixel's square-meter footprint to hectares.
func (r Resolution) PixelAreaHectares() float64 {
	return (r.X * r.Y) / SquareMetersPerHectare
}

func (r Resolution) String() string {
	return fmt.Sprintf("(%g, %g)", r.X, r.Y)
}

const SquareMetersPerHectare = 10000.0

// DataType names the pixel type of a stored raster band.
type DataType string

const (
	DataTypeByte    DataType = "Byte"
	DataTypeUInt16  DataType = "UInt16"
	DataTypeInt16   DataType = "Int16"
	DataTypeUInt32  DataType = "UInt32"
	DataTypeInt32   DataType = "Int32"
	DataTypeFloat32 DataType = "Float32"
	DataTypeFloat64 DataType = "Float64"
	DataTypeUnknown DataType = "Unknown"
)

// Metadata is the spatial description carried alongside raster pixels.
type Metadata struct {
	Width        int
	Height       int
	BandCount    int
	DataType     DataType
	GeoTransform GeoTransform
	CRS          string
	NoData       *float64
}

func (m Metadata) Resolution() Resolution {
	return m.GeoTransform.Resolution()
}

func (m Metadata) PixelCount() int {
	return m.Width * m.Height
}
