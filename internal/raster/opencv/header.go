package opencv

import (
	"fmt"
	"image"
	"image/color"
	_ "image/png"
	"os"

	"forest-cover-benchmark/internal/models"
	"forest-cover-benchmark/internal/raster"

	_ "golang.org/x/image/tiff"
)

// readHeader describes a raster from its image header and sidecars without
// decoding any pixels.
func readHeader(path string) (models.Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return models.Metadata{}, fmt.Errorf("failed to open raster: %w", err)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return models.Metadata{}, fmt.Errorf("failed to read raster header %s: %w", path, err)
	}

	gt, crs, err := raster.ReadSidecars(path)
	if err != nil {
		return models.Metadata{}, err
	}

	dtype, bands := pixelLayout(cfg.ColorModel)
	return models.Metadata{
		Width:        cfg.Width,
		Height:       cfg.Height,
		BandCount:    bands,
		DataType:     dtype,
		GeoTransform: gt,
		CRS:          crs,
	}, nil
}

// pixelLayout maps a decoder colour model onto the band layout OpenCV reads
// with IMREAD_UNCHANGED.
func pixelLayout(m color.Model) (models.DataType, int) {
	switch m {
	case color.GrayModel:
		return models.DataTypeByte, 1
	case color.Gray16Model:
		return models.DataTypeUInt16, 1
	case color.RGBAModel, color.NRGBAModel:
		return models.DataTypeByte, 4
	case color.RGBA64Model, color.NRGBA64Model:
		return models.DataTypeUInt16, 4
	}
	if _, ok := m.(color.Palette); ok {
		return models.DataTypeByte, 3
	}
	return models.DataTypeUnknown, 3
}
