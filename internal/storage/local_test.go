package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rowjay/insights-synth/internal/config"
)

type failingReader struct{ n int }

func (f *failingReader) Read(p []byte) (int, error) {
	if f.n == 0 {
		return 0, errors.New("stream aborted")
	}
	f.n--
	return copy(p, "x"), nil
}

func TestLocalPutAndStat(t *testing.T) {
	dir := t.TempDir()
	store := NewLocal(dir)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "out/synthetic_idle.tar.gz", strings.NewReader("payload"), -1, nil))

	ok, err := store.Exists(ctx, "out/synthetic_idle.tar.gz")
	require.NoError(t, err)
	assert.True(t, ok)

	info, err := store.Stat(ctx, "out/synthetic_idle.tar.gz")
	require.NoError(t, err)
	assert.EqualValues(t, 7, info.Size)
	assert.Equal(t, filepath.Join(dir, "out", "synthetic_idle.tar.gz"), info.Location)

	ok, err = store.Exists(ctx, "out/other.tar.gz")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLocalPutFailureLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	store := NewLocal(dir)

	err := store.Put(context.Background(), "x.tar.gz", &failingReader{n: 3}, -1, nil)
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLocalPutReplacesExisting(t *testing.T) {
	dir := t.TempDir()
	store := NewLocal(dir)
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "x", strings.NewReader("first"), -1, nil))
	require.NoError(t, store.Put(ctx, "x", strings.NewReader("second"), -1, nil))

	f, err := os.Open(filepath.Join(dir, "x"))
	require.NoError(t, err)
	defer f.Close()
	data, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
}

func TestNewBackends(t *testing.T) {
	store, err := New(config.OutputConfig{Dir: "out"})
	require.NoError(t, err)
	assert.IsType(t, &Local{}, store)

	_, err = New(config.OutputConfig{Backend: "s3"})
	assert.Error(t, err)

	_, err = New(config.OutputConfig{Backend: "ftp"})
	assert.Error(t, err)

	store, err = New(config.OutputConfig{Backend: "s3", S3: config.S3Store{Endpoint: "localhost:9000", Bucket: "fixtures"}})
	require.NoError(t, err)
	assert.Equal(t, "s3://fixtures/a.tar.gz", store.Location("a.tar.gz"))
}
