// Package storage persists uploaded submission files.
package storage

import (
	"context"
	"io"
)

// FileStore saves and serves uploaded files. Save returns the path/key
// recorded on the submission; Open streams a previously saved file back.
type FileStore interface {
	Save(ctx context.Context, submissionID, filename string, r io.Reader, size int64) (string, error)
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	Delete(ctx context.Context, path string) error
}
