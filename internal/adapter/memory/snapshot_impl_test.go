package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/user/roleta-service/internal/entity"
	"github.com/user/roleta-service/internal/repository"
)

func snapshotAt(at time.Time, titles ...string) *entity.Snapshot {
	s := &entity.Snapshot{Category: entity.CategoryBad, FetchedAt: at}
	for _, title := range titles {
		s.Films = append(s.Films, entity.Film{Title: title, ID: title, Slug: title})
	}
	return s
}

func TestLoadMissing(t *testing.T) {
	_, err := NewSnapshotRepo().Load(context.Background(), entity.CategoryBad)
	if !errors.Is(err, repository.ErrSnapshotNotFound) {
		t.Errorf("expected ErrSnapshotNotFound, got %v", err)
	}
}

func TestSaveOnlyNewerNonEmpty(t *testing.T) {
	ctx := context.Background()
	repo := NewSnapshotRepo()
	now := time.Now()

	if ok, _ := repo.Save(ctx, snapshotAt(now, "a")); !ok {
		t.Fatal("expected first snapshot to be stored")
	}
	if ok, _ := repo.Save(ctx, snapshotAt(now.Add(-time.Minute), "old")); ok {
		t.Error("older snapshot must not replace a newer one")
	}
	if ok, _ := repo.Save(ctx, snapshotAt(now, "same-time")); ok {
		t.Error("snapshot with the same timestamp is not strictly newer")
	}
	if ok, _ := repo.Save(ctx, snapshotAt(now.Add(time.Minute))); ok {
		t.Error("empty snapshot must never be stored")
	}

	got, err := repo.Load(ctx, entity.CategoryBad)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got.Films) != 1 || got.Films[0].Title != "a" {
		t.Errorf("unexpected snapshot %+v", got)
	}
}

func TestLoadReturnsCopy(t *testing.T) {
	ctx := context.Background()
	repo := NewSnapshotRepo()
	_, _ = repo.Save(ctx, snapshotAt(time.Now(), "a", "b"))

	got, _ := repo.Load(ctx, entity.CategoryBad)
	got.Films[0].Title = "mutated"

	again, _ := repo.Load(ctx, entity.CategoryBad)
	if again.Films[0].Title != "a" {
		t.Error("callers must not be able to mutate the stored snapshot")
	}
}
