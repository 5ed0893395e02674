package poster

import (
	"fmt"
	"strings"

	"github.com/user/roleta-service/internal/entity"
)

// DefaultBaseURL is the Letterboxd image CDN root for resized posters.
const DefaultBaseURL = "https://a.ltrbxd.com/resized/film-poster"

// Builder derives poster URLs from film ids and slugs. It never touches the network.
type Builder struct {
	baseURL string
}

func NewBuilder(baseURL string) *Builder {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Builder{baseURL: strings.TrimRight(baseURL, "/")}
}

// URL builds <base>/<i>/<d>/.../<id>-<slug>-0-1000-0-1500-crop.jpg, one path segment per id character.
func (b *Builder) URL(id, slug string) string {
	idPath := strings.Join(strings.Split(id, ""), "/")
	return fmt.Sprintf("%s/%s/%s-%s-0-1000-0-1500-crop.jpg", b.baseURL, idPath, id, slug)
}

// Attach returns f with its poster set, or f unchanged when it lacks an id or slug.
func (b *Builder) Attach(f entity.Film) entity.Film {
	if !f.PosterEligible() {
		return f
	}
	f.Poster = b.URL(f.ID, f.Slug)
	return f
}
