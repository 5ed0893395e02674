package memory

import (
	"context"
	"sync"

	"github.com/user/roleta-service/internal/entity"
	"github.com/user/roleta-service/internal/repository"
)

// SnapshotRepoImpl keeps snapshots for the lifetime of the process.
type SnapshotRepoImpl struct {
	mu        sync.RWMutex
	snapshots map[entity.Category]*entity.Snapshot
}

// NewSnapshotRepo creates an empty in-memory store.
func NewSnapshotRepo() *SnapshotRepoImpl {
	return &SnapshotRepoImpl{snapshots: make(map[entity.Category]*entity.Snapshot)}
}

// Load returns a copy of the stored snapshot.
func (r *SnapshotRepoImpl) Load(_ context.Context, category entity.Category) (*entity.Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.snapshots[category]
	if !ok {
		return nil, repository.ErrSnapshotNotFound
	}
	return clone(s), nil
}

// Save stores the snapshot when it is newer than the current one.
func (r *SnapshotRepoImpl) Save(_ context.Context, snapshot *entity.Snapshot) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !snapshot.NewerThan(r.snapshots[snapshot.Category]) {
		return false, nil
	}
	r.snapshots[snapshot.Category] = clone(snapshot)
	return true, nil
}

// Ping always succeeds.
func (r *SnapshotRepoImpl) Ping(context.Context) error { return nil }

func clone(s *entity.Snapshot) *entity.Snapshot {
	films := make([]entity.Film, len(s.Films))
	copy(films, s.Films)
	return &entity.Snapshot{Category: s.Category, Films: films, FetchedAt: s.FetchedAt}
}
