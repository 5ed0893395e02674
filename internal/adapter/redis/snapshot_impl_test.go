package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/user/roleta-service/internal/entity"
	"github.com/user/roleta-service/internal/repository"
)

func newTestRepo(t *testing.T) (*SnapshotRepoImpl, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSnapshotRepo(client), mr
}

func snapshotAt(at time.Time, titles ...string) *entity.Snapshot {
	s := &entity.Snapshot{Category: entity.CategoryGood, FetchedAt: at}
	for _, title := range titles {
		s.Films = append(s.Films, entity.Film{Title: title, ID: title, Slug: title, URL: "https://letterboxd.com/film/" + title})
	}
	return s
}

func TestSaveAndLoad(t *testing.T) {
	ctx := context.Background()
	repo, mr := newTestRepo(t)
	now := time.Now().UTC().Truncate(time.Millisecond)

	ok, err := repo.Save(ctx, snapshotAt(now, "paddington-2", "parasite"))
	if err != nil || !ok {
		t.Fatalf("save: ok=%v err=%v", ok, err)
	}
	if !mr.Exists("roleta:snapshot:good") {
		t.Error("expected snapshot key in redis")
	}
	if ttl := mr.TTL("roleta:snapshot:good"); ttl != 0 {
		t.Errorf("snapshot keys must not expire, got ttl %v", ttl)
	}

	got, err := repo.Load(ctx, entity.CategoryGood)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got.Films) != 2 || got.Films[1].Title != "parasite" {
		t.Errorf("unexpected films %+v", got.Films)
	}
	if !got.FetchedAt.Equal(now) {
		t.Errorf("expected fetched at %v, got %v", now, got.FetchedAt)
	}
}

func TestLoadMissing(t *testing.T) {
	repo, _ := newTestRepo(t)
	_, err := repo.Load(context.Background(), entity.CategoryBad)
	if !errors.Is(err, repository.ErrSnapshotNotFound) {
		t.Errorf("expected ErrSnapshotNotFound, got %v", err)
	}
}

func TestSaveRefusesOlderOrEmpty(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepo(t)
	now := time.Now()

	if _, err := repo.Save(ctx, snapshotAt(now, "current")); err != nil {
		t.Fatalf("save: %v", err)
	}
	if ok, err := repo.Save(ctx, snapshotAt(now.Add(-time.Hour), "older")); err != nil || ok {
		t.Errorf("older snapshot: ok=%v err=%v", ok, err)
	}
	if ok, err := repo.Save(ctx, snapshotAt(now.Add(time.Hour))); err != nil || ok {
		t.Errorf("empty snapshot: ok=%v err=%v", ok, err)
	}

	got, _ := repo.Load(ctx, entity.CategoryGood)
	if got.Films[0].Title != "current" {
		t.Errorf("expected current snapshot to survive, got %+v", got.Films)
	}
}

func TestLoadCorruptValue(t *testing.T) {
	repo, mr := newTestRepo(t)
	_ = mr.Set("roleta:snapshot:bad", "{not json")

	_, err := repo.Load(context.Background(), entity.CategoryBad)
	if err == nil || errors.Is(err, repository.ErrSnapshotNotFound) {
		t.Errorf("expected a decode error, got %v", err)
	}
}

func TestPing(t *testing.T) {
	repo, _ := newTestRepo(t)
	if err := repo.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
}
