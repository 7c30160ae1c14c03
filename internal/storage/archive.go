package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Archive keeps raw completion text on disk so degraded analyses stay
// reviewable by a human. Paths are sanitized against traversal before any
// write.
type Archive struct {
	baseDir string
}

func NewArchive(baseDir string) *Archive {
	return &Archive{baseDir: baseDir}
}

func (a *Archive) sanitizePath(path string) (string, error) {
	cleaned := filepath.Clean(path)
	if strings.Contains(cleaned, "..") {
		return "", fmt.Errorf("invalid path: contains parent directory reference")
	}
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("invalid path: absolute paths not allowed")
	}
	full := filepath.Join(a.baseDir, cleaned)
	if !strings.HasPrefix(full, a.baseDir+string(filepath.Separator)) && full != a.baseDir {
		return "", fmt.Errorf("invalid path: outside archive directory")
	}
	return full, nil
}

func (a *Archive) Save(ctx context.Context, path string, data []byte) error {
	full, err := a.sanitizePath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	if err := os.WriteFile(full, data, 0644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}
	return nil
}

func (a *Archive) Load(ctx context.Context, path string) ([]byte, error) {
	full, err := a.sanitizePath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	return data, nil
}
