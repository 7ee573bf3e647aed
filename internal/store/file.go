package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	apierrors "refracalc/internal/errors"
	"refracalc/internal/refractometer"
)

const (
	pointsFileName    = "calibration.json"
	lastInputFileName = "last_input.json"
)

// FileStore persists JSON documents in a data directory. Unreadable documents
// are treated as empty so a damaged file never blocks estimation.
type FileStore struct {
	mu     sync.Mutex
	dir    string
	logger *slog.Logger
}

// NewFileStore creates the data directory if needed
func NewFileStore(dir string, logger *slog.Logger) (*FileStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if dir == "" {
		return nil, apierrors.NewConfigError("file store needs a data directory", nil)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, apierrors.NewStorageError("failed to create data directory", err).
			With("dir", dir)
	}
	return &FileStore{dir: dir, logger: logger}, nil
}

// Dir returns the data directory
func (f *FileStore) Dir() string {
	return f.dir
}

func (f *FileStore) LoadPoints(ctx context.Context) ([]refractometer.CalibrationPoint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := filepath.Join(f.dir, pointsFileName)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return []refractometer.CalibrationPoint{}, nil
	}
	if err != nil {
		return nil, apierrors.NewStorageError("failed to read calibration points", err).
			With("path", path)
	}

	points, err := refractometer.DecodePoints(data)
	if err != nil {
		f.logger.WarnContext(ctx, "discarding malformed calibration data",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return []refractometer.CalibrationPoint{}, nil
	}
	return points, nil
}

func (f *FileStore) SavePoints(ctx context.Context, points []refractometer.CalibrationPoint) error {
	var buf bytes.Buffer
	if err := refractometer.EncodePoints(&buf, points); err != nil {
		return apierrors.NewParsingError("failed to encode calibration points", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writeFile(pointsFileName, buf.Bytes())
}

func (f *FileStore) LoadLastInput(ctx context.Context) (LastInput, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := filepath.Join(f.dir, lastInputFileName)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return LastInput{}, false, nil
	}
	if err != nil {
		return LastInput{}, false, apierrors.NewStorageError("failed to read last input", err).
			With("path", path)
	}

	var last LastInput
	if err := json.Unmarshal(data, &last); err != nil {
		f.logger.WarnContext(ctx, "discarding malformed last input",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return LastInput{}, false, nil
	}
	return last, true, nil
}

func (f *FileStore) SaveLastInput(ctx context.Context, in refractometer.EstimationInput) error {
	data, err := json.MarshalIndent(LastInput{Input: in, UpdatedAt: time.Now().UTC()}, "", "  ")
	if err != nil {
		return apierrors.NewParsingError("failed to encode last input", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writeFile(lastInputFileName, data)
}

func (f *FileStore) Ping(ctx context.Context) error {
	info, err := os.Stat(f.dir)
	if err != nil {
		return apierrors.NewStorageError("data directory unavailable", err)
	}
	if !info.IsDir() {
		return apierrors.NewStorageError(fmt.Sprintf("%s is not a directory", f.dir), nil)
	}
	return nil
}

func (f *FileStore) Close() error { return nil }

// writeFile replaces name atomically via a temp file in the same directory
func (f *FileStore) writeFile(name string, data []byte) error {
	path := filepath.Join(f.dir, name)
	tmp, err := os.CreateTemp(f.dir, name+".*.tmp")
	if err != nil {
		return apierrors.NewStorageError("failed to create temp file", err).With("path", path)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return apierrors.NewStorageError("failed to write temp file", err).With("path", path)
	}
	if err := tmp.Close(); err != nil {
		return apierrors.NewStorageError("failed to close temp file", err).With("path", path)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return apierrors.NewStorageError("failed to replace file", err).With("path", path)
	}
	return nil
}
