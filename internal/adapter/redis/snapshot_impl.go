package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/user/roleta-service/internal/entity"
	"github.com/user/roleta-service/internal/repository"
)

const (
	snapshotKeyPrefix = "roleta:snapshot:"
	maxWatchRetries   = 5
)

// SnapshotRepoImpl stores snapshots as JSON strings so several replicas share one refresh.
// Keys carry no expiry: stale snapshots are the fallback when a refresh fails.
type SnapshotRepoImpl struct {
	client *redis.Client
}

// NewSnapshotRepo creates a new instance of SnapshotRepoImpl.
func NewSnapshotRepo(client *redis.Client) *SnapshotRepoImpl {
	return &SnapshotRepoImpl{client: client}
}

func (r *SnapshotRepoImpl) generateKey(category entity.Category) string {
	return snapshotKeyPrefix + string(category)
}

// Load retrieves the snapshot of a category.
func (r *SnapshotRepoImpl) Load(ctx context.Context, category entity.Category) (*entity.Snapshot, error) {
	return load(ctx, r.client, r.generateKey(category))
}

// Save writes the snapshot inside a WATCH transaction so a concurrent, newer write is never overwritten.
func (r *SnapshotRepoImpl) Save(ctx context.Context, snapshot *entity.Snapshot) (bool, error) {
	if len(snapshot.Films) == 0 {
		return false, nil
	}
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return false, fmt.Errorf("encoding snapshot: %w", err)
	}
	key := r.generateKey(snapshot.Category)

	var written bool
	txf := func(tx *redis.Tx) error {
		written = false
		current, err := load(ctx, tx, key)
		if err != nil && !errors.Is(err, repository.ErrSnapshotNotFound) {
			return err
		}
		if !snapshot.NewerThan(current) {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, 0)
			return nil
		})
		if err == nil {
			written = true
		}
		return err
	}

	for i := 0; i < maxWatchRetries; i++ {
		err := r.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return false, fmt.Errorf("saving snapshot %s: %w", snapshot.Category, err)
		}
		return written, nil
	}
	return false, fmt.Errorf("saving snapshot %s: key kept changing", snapshot.Category)
}

// Ping checks the Redis connection.
func (r *SnapshotRepoImpl) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// getter is satisfied by both *redis.Client and *redis.Tx.
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func load(ctx context.Context, c getter, key string) (*entity.Snapshot, error) {
	raw, err := c.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, repository.ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", key, err)
	}

	var s entity.Snapshot
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", key, err)
	}
	return &s, nil
}
