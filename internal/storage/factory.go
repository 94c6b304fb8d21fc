package storage

import (
	"fmt"

	"github.com/rowjay/insights-synth/internal/config"
)

// New returns the backend selected by cfg.Backend.
func New(cfg config.OutputConfig) (Storage, error) {
	switch cfg.Backend {
	case "local", "":
		return NewLocal(cfg.Dir), nil
	case "s3":
		s3, err := NewS3(cfg.S3)
		if err != nil {
			return nil, err
		}
		return s3, nil
	default:
		return nil, fmt.Errorf("unsupported output backend: %s", cfg.Backend)
	}
}
