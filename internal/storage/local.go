package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

type Local struct {
	BasePath string
}

func NewLocal(path string) *Local {
	if path == "" {
		path = "."
	}
	return &Local{BasePath: path}
}

func (l *Local) path(key string) string {
	return filepath.Join(l.BasePath, filepath.FromSlash(key))
}

func (l *Local) Location(key string) string {
	if abs, err := filepath.Abs(l.path(key)); err == nil {
		return abs
	}
	return l.path(key)
}

// Put streams reader into a hidden temp file next to the target and renames
// it into place once the stream completes.
func (l *Local) Put(ctx context.Context, key string, reader io.Reader, _ int64, _ map[string]string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	target := l.path(key)
	if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return fmt.Errorf("create directories: %w", err)
	}

	file, err := os.CreateTemp(filepath.Dir(target), "."+filepath.Base(target)+".*.partial")
	if err != nil {
		return err
	}
	tmp := file.Name()
	committed := false
	defer func() {
		if !committed {
			_ = file.Close()
			_ = os.Remove(tmp)
		}
	}()

	if _, err := io.Copy(file, reader); err != nil {
		return err
	}
	if err := file.Sync(); err != nil {
		return err
	}
	if err := file.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, target); err != nil {
		return fmt.Errorf("move into place: %w", err)
	}
	committed = true
	return nil
}

func (l *Local) Stat(ctx context.Context, key string) (ObjectInfo, error) {
	select {
	case <-ctx.Done():
		return ObjectInfo{}, ctx.Err()
	default:
	}
	info, err := os.Stat(l.path(key))
	if err != nil {
		return ObjectInfo{}, err
	}
	return ObjectInfo{Key: key, Location: l.Location(key), Size: info.Size(), Modified: info.ModTime()}, nil
}

func (l *Local) Exists(ctx context.Context, key string) (bool, error) {
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	default:
	}
	_, err := os.Stat(l.path(key))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}
