package pipeline

import (
	"context"
	"fmt"

	"forest-cover-benchmark/internal/logger"
	"forest-cover-benchmark/internal/models"
	"forest-cover-benchmark/internal/raster"
)

type saver struct {
	sink   raster.Sink
	logger logger.Logger
}

// save writes the class grid with the start raster's spatial metadata.
func (s *saver) save(ctx context.Context, path string, grid *models.ClassGrid, ref models.Metadata) error {
	req, err := raster.NewClassificationRequest(grid, ref)
	if err != nil {
		return err
	}

	s.logger.Debug("Saver", "writing classification raster", map[string]interface{}{
		"path":        path,
		"compression": string(req.Compression),
		"dtype":       string(req.DataType),
	})

	if err := s.sink.Write(ctx, path, req); err != nil {
		return fmt.Errorf("failed to write classification raster: %w", err)
	}
	return nil
}
