package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// LocalStorage keeps materialized videos as files under outputDir. A file is
// the revocable handle: releasing the asset deletes it.
type LocalStorage struct {
	outputDir string
}

func NewLocalStorage(outputDir string) *LocalStorage {
	return &LocalStorage{outputDir: outputDir}
}

func (s *LocalStorage) Materialize(ctx context.Context, data []byte, mimeType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if err := s.EnsureDirectories(); err != nil {
		return "", err
	}

	f, err := os.CreateTemp(s.outputDir, "ace-video-*"+extensionFor(mimeType))
	if err != nil {
		return "", fmt.Errorf("failed to create video file: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("failed to write video file: %w", err)
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("failed to close video file: %w", err)
	}

	path, err := filepath.Abs(f.Name())
	if err != nil {
		return f.Name(), nil
	}
	return path, nil
}

// Release removes a materialized file. Releasing twice is not an error.
func (s *LocalStorage) Release(path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to release video file: %w", err)
	}
	return nil
}

// SaveAs writes a copy of data to dst for the user to keep.
func (s *LocalStorage) SaveAs(data []byte, dst string) (string, error) {
	if dst == "" {
		return "", errors.New("destination path is empty")
	}

	if dir := filepath.Dir(dst); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create destination directory: %w", err)
		}
	}

	if err := os.WriteFile(dst, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write video file: %w", err)
	}

	return dst, nil
}

func (s *LocalStorage) EnsureDirectories() error {
	if err := os.MkdirAll(s.outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return nil
}
