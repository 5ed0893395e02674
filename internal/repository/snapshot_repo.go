package repository

import (
	"context"

	"github.com/user/roleta-service/internal/entity"
)

// SnapshotRepository defines the storage of the last known-good list per category.
type SnapshotRepository interface {
	// Load returns the stored snapshot, or ErrSnapshotNotFound.
	Load(ctx context.Context, category entity.Category) (*entity.Snapshot, error)
	// Save stores the snapshot if it is non-empty and strictly newer than the stored one.
	// It reports whether the snapshot was written.
	Save(ctx context.Context, snapshot *entity.Snapshot) (bool, error)
	// Ping checks that the backing store is reachable.
	Ping(ctx context.Context) error
}
