package raster

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"forest-cover-benchmark/internal/models"
)

// ParseWorldFile reads the six-line ESRI world file format. World files
// reference the centre of the top-left pixel; the returned transform
// references its outer corner, as GDAL does.
func ParseWorldFile(r io.Reader) (models.GeoTransform, error) {
	var values []float64
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		v, err := strconv.ParseFloat(line, 64)
		if err != nil {
			return models.GeoTransform{}, fmt.Errorf("failed to parse world file value %q: %w", line, err)
		}
		values = append(values, v)
	}
	if err := scanner.Err(); err != nil {
		return models.GeoTransform{}, fmt.Errorf("failed to read world file: %w", err)
	}
	if len(values) != 6 {
		return models.GeoTransform{}, fmt.Errorf("world file has %d values, expected 6", len(values))
	}

	a, d, b, e, c, f := values[0], values[1], values[2], values[3], values[4], values[5]
	return models.GeoTransform{
		c - a/2 - b/2,
		a,
		b,
		f - d/2 - e/2,
		d,
		e,
	}, nil
}

// FormatWorldFile is the inverse of ParseWorldFile.
func FormatWorldFile(gt models.GeoTransform) string {
	a, b, d, e := gt[1], gt[2], gt[4], gt[5]
	c := gt[0] + a/2 + b/2
	f := gt[3] + d/2 + e/2

	var sb strings.Builder
	for _, v := range []float64{a, d, b, e, c, f} {
		sb.WriteString(strconv.FormatFloat(v, 'f', -1, 64))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// WorldFileCandidates lists sidecar names checked for a raster path, in order:
// the abbreviated form (.tfw), the appended form (.tifw) and .wld.
func WorldFileCandidates(path string) []string {
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	trimmed := strings.TrimPrefix(ext, ".")

	var out []string
	if len(trimmed) >= 2 {
		out = append(out, base+"."+trimmed[:1]+trimmed[len(trimmed)-1:]+"w")
	}
	if trimmed != "" {
		out = append(out, path+"w")
	}
	return append(out, base+".wld")
}

// PrjPath is the ESRI projection sidecar for path.
func PrjPath(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ".prj"
}

// ReadSidecars loads the world file and optional .prj next to path.
func ReadSidecars(path string) (models.GeoTransform, string, error) {
	var gt models.GeoTransform
	found := false
	for _, candidate := range WorldFileCandidates(path) {
		f, err := os.Open(candidate)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return gt, "", fmt.Errorf("failed to open world file: %w", err)
		}
		gt, err = ParseWorldFile(f)
		f.Close()
		if err != nil {
			return gt, "", fmt.Errorf("%s: %w", candidate, err)
		}
		found = true
		break
	}
	if !found {
		return gt, "", fmt.Errorf("%w: no world file for %s", ErrNoSpatialContext, path)
	}

	crs, err := os.ReadFile(PrjPath(path))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return gt, "", fmt.Errorf("failed to read projection file: %w", err)
	}
	return gt, strings.TrimSpace(string(crs)), nil
}

// WriteSidecars writes the abbreviated world file and, when crs is set, a .prj.
func WriteSidecars(path string, gt models.GeoTransform, crs string) error {
	worldPath := WorldFileCandidates(path)[0]
	if err := os.WriteFile(worldPath, []byte(FormatWorldFile(gt)), 0o644); err != nil {
		return fmt.Errorf("failed to write world file: %w", err)
	}
	if crs == "" {
		return nil
	}
	if err := os.WriteFile(PrjPath(path), []byte(crs+"\n"), 0o644); err != nil {
		return fmt.Errorf("failed to write projection file: %w", err)
	}
	return nil
}
