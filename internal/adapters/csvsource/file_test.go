package csvsource_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"culture_hotspots/internal/adapters/csvsource"
)

func TestFile_Open(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hotspots.csv")
	require.NoError(t, os.WriteFile(path, []byte("_id,NAME\n1,Gallery\n"), 0o600))

	src := csvsource.File{Path: path}
	require.Equal(t, "file:"+path, src.Name())

	rc, err := src.Open(context.Background())
	require.NoError(t, err)
	defer rc.Close()
	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.Equal(t, "_id,NAME\n1,Gallery\n", string(b))
}

func TestFile_OpenMissing(t *testing.T) {
	src := csvsource.File{Path: filepath.Join(t.TempDir(), "nope.csv")}
	_, err := src.Open(context.Background())
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestFile_OpenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := csvsource.File{Path: "whatever.csv"}.Open(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
