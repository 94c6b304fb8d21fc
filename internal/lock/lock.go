package lock

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/rowjay/insights-synth/internal/util"
)

const retryDelay = 250 * time.Millisecond

type Lock struct {
	file *flock.Flock
	path string
}

// Acquire waits for the lock guarding output name in dir. Two runs that
// write the same output file never overlap; different names don't contend.
func Acquire(ctx context.Context, dir, name string) (*Lock, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create lock dir: %w", err)
	}
	path := filepath.Join(dir, "synthgen-"+util.SanitizeName(name)+".lock")
	fl := flock.New(path)
	ok, err := fl.TryLockContext(ctx, retryDelay)
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", path, err)
	}
	if !ok {
		return nil, fmt.Errorf("another run is writing %s (lock: %s)", name, path)
	}
	return &Lock{file: fl, path: path}, nil
}

func (l *Lock) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Release frees the lock.
func (l *Lock) Release() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Unlock()
}
