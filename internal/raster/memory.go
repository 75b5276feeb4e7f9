package raster

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"forest-cover-benchmark/internal/models"
)

// Memory is an in-process raster store implementing Source and Sink.
type Memory struct {
	mu      sync.RWMutex
	rasters map[string]*models.Raster
	written map[string]WriteRequest
}

func NewMemory() *Memory {
	return &Memory{
		rasters: make(map[string]*models.Raster),
		written: make(map[string]WriteRequest),
	}
}

// Put registers an input raster under path.
func (m *Memory) Put(path string, r *models.Raster) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rasters[path] = r
}

func (m *Memory) Describe(ctx context.Context, path string) (models.Metadata, error) {
	r, err := m.lookup(ctx, path)
	if err != nil {
		return models.Metadata{}, err
	}
	return r.Metadata, nil
}

// Read returns a copy so callers can never mutate the stored raster.
func (m *Memory) Read(ctx context.Context, path string) (*models.Raster, error) {
	r, err := m.lookup(ctx, path)
	if err != nil {
		return nil, err
	}
	px := make([]uint16, len(r.Pixels))
	copy(px, r.Pixels)
	return &models.Raster{Name: r.Name, Pixels: px, Metadata: r.Metadata}, nil
}

func (m *Memory) lookup(ctx context.Context, path string) (*models.Raster, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	if r, ok := m.rasters[path]; ok {
		return r, nil
	}
	if w, ok := m.written[path]; ok {
		px := make([]uint16, len(w.Pixels))
		for i, v := range w.Pixels {
			px[i] = uint16(v)
		}
		return &models.Raster{Name: path, Pixels: px, Metadata: w.Metadata}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
}

func (m *Memory) Write(ctx context.Context, path string, req WriteRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := req.Validate(); err != nil {
		return err
	}

	px := make([]uint8, len(req.Pixels))
	copy(px, req.Pixels)
	req.Pixels = px

	m.mu.Lock()
	defer m.mu.Unlock()
	m.written[path] = req
	return nil
}

// Written returns the request stored at path by Write.
func (m *Memory) Written(path string) (WriteRequest, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	w, ok := m.written[path]
	return w, ok
}

// WrittenPaths lists every path written so far.
func (m *Memory) WrittenPaths() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	paths := make([]string, 0, len(m.written))
	for p := range m.written {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
