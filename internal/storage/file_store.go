package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore saves uploaded files to disk under a base directory, one
// folder per submission.
type LocalStore struct {
	basePath string
}

// NewLocalStore creates the base directory if missing.
func NewLocalStore(basePath string) (*LocalStore, error) {
	if strings.TrimSpace(basePath) == "" {
		return nil, fmt.Errorf("storage base path is required")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &LocalStore{basePath: basePath}, nil
}

// Save writes the upload under a submission-specific folder and returns
// the relative path recorded on the submission row.
func (f *LocalStore) Save(_ context.Context, submissionID, filename string, r io.Reader, _ int64) (string, error) {
	targetDir := filepath.Join(f.basePath, submissionID)
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return "", fmt.Errorf("create submission dir: %w", err)
	}
	name := safeFilename(filename)
	out, err := os.Create(filepath.Join(targetDir, name))
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer out.Close()
	if _, err := io.Copy(out, r); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return filepath.Join(submissionID, name), nil
}

// Open streams a previously saved file. The path must be one returned by
// Save; anything escaping the base directory is rejected.
func (f *LocalStore) Open(_ context.Context, path string) (io.ReadCloser, error) {
	full := filepath.Join(f.basePath, filepath.Clean("/"+path))
	file, err := os.Open(full)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	return file, nil
}

// Delete removes the folder holding the file.
func (f *LocalStore) Delete(_ context.Context, path string) error {
	dir := filepath.Dir(filepath.Clean("/" + path))
	targetDir := filepath.Join(f.basePath, dir)
	if _, err := os.Stat(targetDir); os.IsNotExist(err) {
		return nil
	}
	return os.RemoveAll(targetDir)
}

func safeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, string(os.PathSeparator), "_")
	name = strings.TrimSpace(name)
	if name == "" {
		return "upload"
	}
	return name
}
