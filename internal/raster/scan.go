package raster

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var rasterExtensions = map[string]bool{
	".tif":  true,
	".tiff": true,
	".png":  true,
	".img":  true,
	".vrt":  true,
}

// Scan lists raster files directly inside dir, sorted by name.
func Scan(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan project folder: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if rasterExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}
