package storage

import (
	"context"
	"fmt"

	"tenderdocs/internal/config"
)

// Driver names accepted in STORAGE_DRIVER.
const (
	DriverMinIO = "minio"
	DriverS3    = "s3"
	DriverLocal = "local"
)

// New creates the backend selected by cfg.Driver.
func New(ctx context.Context, cfg config.StorageConfig) (Storage, error) {
	switch cfg.Driver {
	case DriverMinIO, "":
		return NewMinIO(ctx, cfg.MinIO)
	case DriverS3:
		return NewS3(ctx, cfg.S3)
	case DriverLocal:
		return NewLocalStorage(cfg.Local.Path, cfg.Local.PublicBaseURL)
	default:
		return nil, fmt.Errorf("unknown storage driver: %s", cfg.Driver)
	}
}
