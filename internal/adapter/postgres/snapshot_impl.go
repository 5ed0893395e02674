package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/roleta-service/internal/entity"
	"github.com/user/roleta-service/internal/repository"
)

const schema = `
	CREATE TABLE IF NOT EXISTS list_snapshots (
		category   TEXT PRIMARY KEY,
		films      JSONB NOT NULL,
		fetched_at TIMESTAMPTZ NOT NULL
	);
`

// SnapshotRepoImpl provides a concrete implementation for the SnapshotRepository interface using PostgreSQL.
type SnapshotRepoImpl struct {
	db *pgxpool.Pool
}

// NewSnapshotRepo creates a new instance of SnapshotRepoImpl.
func NewSnapshotRepo(db *pgxpool.Pool) *SnapshotRepoImpl {
	return &SnapshotRepoImpl{db: db}
}

// EnsureSchema creates the snapshot table if it does not exist.
func (r *SnapshotRepoImpl) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("creating list_snapshots: %w", err)
	}
	return nil
}

// Load retrieves the snapshot of a category.
func (r *SnapshotRepoImpl) Load(ctx context.Context, category entity.Category) (*entity.Snapshot, error) {
	query := `
		SELECT category, films, fetched_at
		FROM list_snapshots
		WHERE category = $1;
	`
	var (
		s         entity.Snapshot
		filmsJSON []byte
		cat       string
	)
	err := r.db.QueryRow(ctx, query, string(category)).Scan(&cat, &filmsJSON, &s.FetchedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading snapshot %s: %w", category, err)
	}
	if err := json.Unmarshal(filmsJSON, &s.Films); err != nil {
		return nil, fmt.Errorf("decoding snapshot %s: %w", category, err)
	}
	s.Category = entity.Category(cat)
	return &s, nil
}

// Save upserts the snapshot. The WHERE clause on the conflict branch keeps a newer row in place.
func (r *SnapshotRepoImpl) Save(ctx context.Context, snapshot *entity.Snapshot) (bool, error) {
	if len(snapshot.Films) == 0 {
		return false, nil
	}
	filmsJSON, err := json.Marshal(snapshot.Films)
	if err != nil {
		return false, err
	}

	query := `
		INSERT INTO list_snapshots (category, films, fetched_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (category) DO UPDATE SET
			films = EXCLUDED.films,
			fetched_at = EXCLUDED.fetched_at
		WHERE list_snapshots.fetched_at < EXCLUDED.fetched_at;
	`
	tag, err := r.db.Exec(ctx, query, string(snapshot.Category), filmsJSON, snapshot.FetchedAt)
	if err != nil {
		return false, fmt.Errorf("saving snapshot %s: %w", snapshot.Category, err)
	}
	return tag.RowsAffected() == 1, nil
}

// Ping checks the database connection.
func (r *SnapshotRepoImpl) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}
