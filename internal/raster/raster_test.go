package raster

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"forest-cover-benchmark/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func refMeta() models.Metadata {
	return models.Metadata{
		Width:        2,
		Height:       2,
		BandCount:    3,
		DataType:     models.DataTypeUInt16,
		GeoTransform: models.GeoTransform{500000, 30, 0, 9000000, 0, -30},
		CRS:          "EPSG:32735",
	}
}

func TestClassificationRequestIsSingleBandByte(t *testing.T) {
	grid := &models.ClassGrid{Width: 2, Height: 2, Classes: []uint8{5, 7, 1, 3}}
	req, err := NewClassificationRequest(grid, refMeta())
	require.NoError(t, err)

	assert.Equal(t, models.DataTypeByte, req.DataType)
	assert.Equal(t, 1, req.BandCount)
	assert.Equal(t, CompressionLZW, req.Compression)
	assert.Equal(t, 1, req.Metadata.BandCount)
	assert.Equal(t, models.DataTypeByte, req.Metadata.DataType)
	assert.Equal(t, refMeta().GeoTransform, req.Metadata.GeoTransform)
	assert.Equal(t, "EPSG:32735", req.Metadata.CRS)
	require.NotNil(t, req.NoData)
	assert.Zero(t, *req.NoData)
	assert.NoError(t, req.Validate())
}

func TestClassificationRequestShapeMismatch(t *testing.T) {
	grid := models.NewClassGrid(3, 2)
	_, err := NewClassificationRequest(grid, refMeta())
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = NewClassificationRequest(nil, refMeta())
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestValidateRejectsMultiBand(t *testing.T) {
	req, err := NewClassificationRequest(models.NewClassGrid(2, 2), refMeta())
	require.NoError(t, err)

	req.BandCount = 3
	assert.ErrorIs(t, req.Validate(), ErrInvalidRequest)

	req.BandCount = 1
	req.DataType = models.DataTypeUInt16
	assert.ErrorIs(t, req.Validate(), ErrUnsupportedType)
}

func TestMemoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()
	in := &models.Raster{Name: "start", Pixels: []uint16{1, 2, 0, 1}, Metadata: refMeta()}
	mem.Put("start.tif", in)

	meta, err := mem.Describe(ctx, "start.tif")
	require.NoError(t, err)
	assert.Equal(t, 2, meta.Width)

	out, err := mem.Read(ctx, "start.tif")
	require.NoError(t, err)
	out.Pixels[0] = 9
	assert.Equal(t, uint16(1), in.Pixels[0])

	_, err = mem.Read(ctx, "missing.tif")
	assert.ErrorIs(t, err, ErrNotFound)

	req, err := NewClassificationRequest(&models.ClassGrid{Width: 2, Height: 2, Classes: []uint8{5, 7, 1, 3}}, refMeta())
	require.NoError(t, err)
	require.NoError(t, mem.Write(ctx, "fcbm.tif", req))
	assert.Equal(t, []string{"fcbm.tif"}, mem.WrittenPaths())

	back, err := mem.Read(ctx, "fcbm.tif")
	require.NoError(t, err)
	assert.Equal(t, []uint16{5, 7, 1, 3}, back.Pixels)
}

func TestWorldFileRoundTrip(t *testing.T) {
	gt := models.GeoTransform{500000, 30, 0, 9000000, 0, -30}
	text := FormatWorldFile(gt)
	assert.Equal(t, "30\n0\n0\n-30\n500015\n8999985\n", text)

	parsed, err := ParseWorldFile(strings.NewReader(text))
	require.NoError(t, err)
	assert.Equal(t, gt, parsed)
}

func TestParseWorldFileErrors(t *testing.T) {
	_, err := ParseWorldFile(strings.NewReader("30\n0\n0\n-30\n"))
	assert.Error(t, err)

	_, err = ParseWorldFile(strings.NewReader("30\n0\n0\nabc\n1\n2\n"))
	assert.Error(t, err)
}

func TestWorldFileCandidates(t *testing.T) {
	assert.Equal(t, []string{"a/start.tfw", "a/start.tifw", "a/start.wld"}, WorldFileCandidates("a/start.tif"))
	assert.Equal(t, []string{"x.pgw", "x.pngw", "x.wld"}, WorldFileCandidates("x.png"))
}

func TestSidecarsOnDisk(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fcbm.tif")
	gt := models.GeoTransform{100, 10, 0, 200, 0, -10}

	require.NoError(t, WriteSidecars(path, gt, "PROJCS[\"test\"]"))

	back, crs, err := ReadSidecars(path)
	require.NoError(t, err)
	assert.Equal(t, gt, back)
	assert.Equal(t, "PROJCS[\"test\"]", crs)

	_, _, err = ReadSidecars(filepath.Join(dir, "other.tif"))
	assert.ErrorIs(t, err, ErrNoSpatialContext)
}

func TestScan(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"end.tif", "start.TIF", "notes.txt", "mid.tiff"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.tif"), 0o755))

	files, err := Scan(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "end.tif"),
		filepath.Join(dir, "mid.tiff"),
		filepath.Join(dir, "start.TIF"),
	}, files)

	_, err = Scan(filepath.Join(dir, "nope"))
	assert.Error(t, err)
}
