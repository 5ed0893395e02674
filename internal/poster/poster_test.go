package poster

import (
	"testing"

	"github.com/user/roleta-service/internal/entity"
)

func TestURLSplitsIDIntoSegments(t *testing.T) {
	got := NewBuilder("").URL("123", "example")
	want := "https://a.ltrbxd.com/resized/film-poster/1/2/3/123-example-0-1000-0-1500-crop.jpg"
	if got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestAttach(t *testing.T) {
	b := NewBuilder("https://img.example/posters/")

	tests := []struct {
		name string
		film entity.Film
		want string
	}{
		{"eligible", entity.Film{ID: "51", Slug: "cats"}, "https://img.example/posters/5/1/51-cats-0-1000-0-1500-crop.jpg"},
		{"missing id", entity.Film{Slug: "cats"}, ""},
		{"sentinel id", entity.Film{ID: entity.UnknownFilmID, Slug: "cats"}, ""},
		{"missing slug", entity.Film{ID: "51"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := b.Attach(tt.film)
			if got.Poster != tt.want {
				t.Errorf("expected poster %q, got %q", tt.want, got.Poster)
			}
			if got.ID != tt.film.ID || got.Slug != tt.film.Slug {
				t.Errorf("attach must not alter identity: %+v", got)
			}
		})
	}
}

func TestAttachIsDeterministic(t *testing.T) {
	b := NewBuilder("")
	f := entity.Film{ID: "426406", Slug: "parasite-2019"}
	if b.Attach(f).Poster != b.Attach(f).Poster {
		t.Error("poster derivation must be deterministic")
	}
}
