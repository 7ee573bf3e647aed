package store

import (
	"context"
	"sync"
	"time"

	"refracalc/internal/refractometer"
)

// MemoryStore keeps everything in process memory
type MemoryStore struct {
	mu      sync.RWMutex
	points  []refractometer.CalibrationPoint
	last    LastInput
	hasLast bool
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) LoadPoints(ctx context.Context) ([]refractometer.CalibrationPoint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return clonePoints(m.points), nil
}

func (m *MemoryStore) SavePoints(ctx context.Context, points []refractometer.CalibrationPoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.points = clonePoints(points)
	return nil
}

func (m *MemoryStore) LoadLastInput(ctx context.Context) (LastInput, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.last, m.hasLast, nil
}

func (m *MemoryStore) SaveLastInput(ctx context.Context, in refractometer.EstimationInput) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.last = LastInput{Input: in, UpdatedAt: time.Now().UTC()}
	m.hasLast = true
	return nil
}

func (m *MemoryStore) Ping(ctx context.Context) error { return nil }

func (m *MemoryStore) Close() error { return nil }
