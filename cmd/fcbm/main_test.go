package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"forest-cover-benchmark/internal/alignment"
	"forest-cover-benchmark/internal/config"
	"forest-cover-benchmark/internal/logger"
	"forest-cover-benchmark/internal/models"
	"forest-cover-benchmark/internal/raster"
	"forest-cover-benchmark/internal/raster/drivers"
	"forest-cover-benchmark/internal/report"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hrpMeta(res float64) models.Metadata {
	return models.Metadata{
		Width:        2,
		Height:       2,
		BandCount:    1,
		DataType:     models.DataTypeByte,
		GeoTransform: models.GeoTransform{500000, res, 0, 9000000, 0, -res},
		CRS:          "EPSG:32735",
	}
}

func putHRP(mem *raster.Memory, dir string, midRes float64) {
	mem.Put(filepath.Join(dir, "start.tif"), &models.Raster{Name: "start", Pixels: []uint16{1, 1, 2, 2}, Metadata: hrpMeta(30)})
	mem.Put(filepath.Join(dir, "mid.tif"), &models.Raster{Name: "mid", Pixels: []uint16{1, 2, 2, 1}, Metadata: hrpMeta(midRes)})
	mem.Put(filepath.Join(dir, "end.tif"), &models.Raster{Name: "end", Pixels: []uint16{1, 1, 2, 2}, Metadata: hrpMeta(30)})
}

func testApp(mem *raster.Memory) (*app, *bytes.Buffer) {
	var out bytes.Buffer
	a := newApp(&out, &bytes.Buffer{})
	a.openDriver = func(string, logger.Logger) (drivers.Driver, error) {
		return mem, nil
	}
	return a, &out
}

func execute(a *app, args ...string) error {
	root := a.root()
	root.SetArgs(append(args, "--log-level", "disabled"))
	return root.ExecuteContext(context.Background())
}

func TestClassifyEndToEnd(t *testing.T) {
	dir := t.TempDir()
	mem := raster.NewMemory()
	putHRP(mem, dir, 30)
	a, out := testApp(mem)

	ledgerPath := filepath.Join(dir, "runs.db")
	metricsPath := filepath.Join(dir, "fcbm.prom")
	err := execute(a, "classify",
		"--start", filepath.Join(dir, "start.tif"),
		"--mid", filepath.Join(dir, "mid.tif"),
		"--end", filepath.Join(dir, "end.tif"),
		"--out", filepath.Join(dir, "fcbm.tif"),
		"--driver", "memory",
		"--project", "kariba",
		"--format", "json",
		"--ledger", ledgerPath,
		"--metrics-file", metricsPath,
	)
	require.NoError(t, err)

	var s report.Summary
	require.NoError(t, json.Unmarshal(out.Bytes(), &s))
	assert.Equal(t, "kariba", s.Project)
	assert.InDelta(t, 0.09, s.PixelAreaHa, 1e-12)
	require.Len(t, s.Interpreted, 4)
	assert.InDelta(t, 0.18, s.Interpreted[0].Hectares, 1e-12)

	written, ok := mem.Written(filepath.Join(dir, "fcbm.tif"))
	require.True(t, ok)
	assert.Equal(t, []uint8{5, 7, 1, 3}, written.Pixels)

	metrics, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), "fcbm_runs_total")

	out.Reset()
	require.NoError(t, execute(a, "runs", "--ledger", ledgerPath, "--format", "json"))
	var runs []report.Summary
	require.NoError(t, json.Unmarshal(out.Bytes(), &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, s.RunID, runs[0].RunID)
}

func TestClassifyResolutionMismatch(t *testing.T) {
	dir := t.TempDir()
	mem := raster.NewMemory()
	putHRP(mem, dir, 20)
	a, _ := testApp(mem)

	err := execute(a, "classify",
		"--start", filepath.Join(dir, "start.tif"),
		"--mid", filepath.Join(dir, "mid.tif"),
		"--end", filepath.Join(dir, "end.tif"),
		"--driver", "memory",
	)
	require.ErrorIs(t, err, alignment.ErrInputIncompatible)
	assert.True(t, a.logged)
	assert.Empty(t, mem.WrittenPaths())
}

func TestClassifyConfigWithOverrides(t *testing.T) {
	dir := t.TempDir()
	mem := raster.NewMemory()
	putHRP(mem, dir, 30)
	a, out := testApp(mem)

	project := filepath.Join(dir, "project.yaml")
	require.NoError(t, os.WriteFile(project, []byte(`
project: zambezi
inputs:
  start: start.tif
  mid: mid.tif
  end: end.tif
output:
  driver: memory
processing:
  classifier: sequential
report:
  format: json
`), 0o644))

	override := filepath.Join(dir, "override.tif")
	require.NoError(t, execute(a, "classify", "--config", project, "--out", override))

	_, ok := mem.Written(override)
	assert.True(t, ok)
	_, ok = mem.Written(filepath.Join(dir, config.DefaultOutputName))
	assert.False(t, ok)
	assert.Contains(t, out.String(), `"project": "zambezi"`)
}

func TestClassifyRejectsInvalidFlags(t *testing.T) {
	a, _ := testApp(raster.NewMemory())
	err := execute(a, "classify", "--start", "a.tif", "--mid", "b.tif", "--end", "c.tif", "--workers=-1")
	assert.ErrorIs(t, err, config.ErrInvalidConfig)

	err = execute(a, "classify", "--mid", "b.tif", "--end", "c.tif")
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestClassesCommand(t *testing.T) {
	a, out := testApp(raster.NewMemory())
	require.NoError(t, execute(a, "classes"))
	assert.Contains(t, out.String(), "Stable forest")
	assert.Contains(t, out.String(), "Deforested in second half of HRP")
}

func TestInspectInputMap(t *testing.T) {
	mem := raster.NewMemory()
	mem.Put("map.tif", &models.Raster{Name: "map", Pixels: []uint16{0, 1, 1, 2, 2, 2, 9, 1, 1}, Metadata: models.Metadata{
		Width: 3, Height: 3, BandCount: 1, DataType: models.DataTypeByte,
		GeoTransform: models.GeoTransform{0, 100, 0, 0, 0, -100},
	}})
	a, out := testApp(mem)

	require.NoError(t, execute(a, "inspect", "map.tif", "--driver", "memory"))
	assert.Contains(t, out.String(), "non-forest")
	assert.Contains(t, out.String(), "unexpected")
	assert.Contains(t, out.String(), "4.00")
}

func TestInspectClassificationOutput(t *testing.T) {
	mem := raster.NewMemory()
	mem.Put("fcbm.tif", &models.Raster{Name: "fcbm", Pixels: []uint16{5, 7, 1, 3}, Metadata: hrpMeta(30)})
	a, out := testApp(mem)

	require.NoError(t, execute(a, "inspect", "fcbm.tif", "--driver", "memory"))
	assert.Contains(t, out.String(), "Deforested in first half of HRP")
	assert.Contains(t, out.String(), "Stable non-forest")
	assert.NotContains(t, out.String(), "unexpected")

	out.Reset()
	mem.Put("stable.tif", &models.Raster{Name: "stable", Pixels: []uint16{1, 1, 0, 1}, Metadata: hrpMeta(30)})
	require.NoError(t, execute(a, "inspect", "stable.tif", "--driver", "memory", "--legend", "classes"))
	assert.Contains(t, out.String(), "Stable non-forest")
	assert.Contains(t, out.String(), "Unclassified")
}

func TestLegendFor(t *testing.T) {
	name, err := legendFor(legendAuto, []valueCount{{Value: 1}, {Value: 2}})
	require.NoError(t, err)
	assert.Equal(t, "forest", name(1))

	name, err = legendFor(legendAuto, []valueCount{{Value: 0}, {Value: 7}})
	require.NoError(t, err)
	assert.Equal(t, "Deforested in first half of HRP", name(7))

	name, err = legendFor(legendStates, []valueCount{{Value: 7}})
	require.NoError(t, err)
	assert.Equal(t, "unexpected", name(7))

	_, err = legendFor("colours", nil)
	assert.Error(t, err)
}

func TestDistinctValues(t *testing.T) {
	r := &models.Raster{Pixels: []uint16{2, 0, 2, 1, 2, 9}}
	assert.Equal(t, []valueCount{
		{Value: 0, Pixels: 1},
		{Value: 1, Pixels: 1},
		{Value: 2, Pixels: 3},
		{Value: 9, Pixels: 1},
	}, distinctValues(r))
}

func TestScanCommand(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"fc2010.tif", "fc2000.tif", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	a, out := testApp(raster.NewMemory())

	require.NoError(t, execute(a, "scan", dir))
	assert.Equal(t, filepath.Join(dir, "fc2000.tif")+"\n"+filepath.Join(dir, "fc2010.tif")+"\n", out.String())
}
