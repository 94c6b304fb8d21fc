package lock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireRelease(t *testing.T) {
	dir := t.TempDir()
	l, err := Acquire(context.Background(), dir, "synthetic_idle_host")
	require.NoError(t, err)
	assert.FileExists(t, l.Path())
	require.NoError(t, l.Release())

	again, err := Acquire(context.Background(), dir, "synthetic_idle_host")
	require.NoError(t, err)
	require.NoError(t, again.Release())
}

func TestAcquireWaitsForHolder(t *testing.T) {
	dir := t.TempDir()
	held, err := Acquire(context.Background(), dir, "out")
	require.NoError(t, err)
	defer held.Release()

	ctx, cancel := context.WithTimeout(context.Background(), 600*time.Millisecond)
	defer cancel()
	_, err = Acquire(ctx, dir, "out")
	require.Error(t, err)

	other, err := Acquire(context.Background(), dir, "other")
	require.NoError(t, err)
	require.NoError(t, other.Release())
}

func TestReleaseNil(t *testing.T) {
	var l *Lock
	assert.NoError(t, l.Release())
	assert.Empty(t, l.Path())
}
