// Package storage selects a blob store backend from configuration.
package storage

import (
	"context"
	"fmt"

	gstorage "cloud.google.com/go/storage"

	"github.com/USDepartmentofLabor/cdf-warn/internal/storage/gcs"
	"github.com/USDepartmentofLabor/cdf-warn/internal/storage/local"
	"github.com/USDepartmentofLabor/cdf-warn/internal/warn"
)

// Backend names accepted by NewBlobStore.
const (
	BackendLocal = "local"
	BackendGCS   = "gcs"
)

// Config selects and parameterizes the blob store backend.
type Config struct {
	Backend string       `mapstructure:"backend" yaml:"backend"`
	Local   local.Config `mapstructure:"local" yaml:"local"`
	GCS     gcs.Config   `mapstructure:"gcs" yaml:"gcs"`
}

// NewBlobStore builds the configured blob store.
func NewBlobStore(ctx context.Context, cfg Config) (warn.BlobStore, error) {
	switch cfg.Backend {
	case BackendLocal, "":
		return local.New(cfg.Local)
	case BackendGCS:
		client, err := gstorage.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("create gcs client: %w", err)
		}
		return gcs.New(client, cfg.GCS)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
