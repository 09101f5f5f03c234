// Package csvsource provides RowSources backed by local CSV files.
package csvsource

import (
	"context"
	"fmt"
	"io"
	"os"
)

// File reads the dataset from a path on disk.
type File struct {
	Path string
}

func (f File) Name() string { return "file:" + f.Path }

func (f File) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fh, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	return fh, nil
}
