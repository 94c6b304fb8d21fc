package storage

import (
	"context"
	"io"
	"time"
)

type ObjectInfo struct {
	Key      string
	Location string
	Size     int64
	Modified time.Time
	ETag     string
	Metadata map[string]string
}

// Storage receives finished archives. Put must not expose a partially
// written object under key.
type Storage interface {
	Put(ctx context.Context, key string, reader io.Reader, size int64, metadata map[string]string) error
	Stat(ctx context.Context, key string) (ObjectInfo, error)
	Exists(ctx context.Context, key string) (bool, error)
	Location(key string) string
}
