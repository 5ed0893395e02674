package entity

// UnknownFilmID is stored when a list page carries no film id for an entry.
const UnknownFilmID = "unknown"

// Film is one entry recovered from a list page.
type Film struct {
	Title  string `json:"title"`
	URL    string `json:"url"`
	ID     string `json:"id"`
	Slug   string `json:"slug"`
	Poster string `json:"poster,omitempty"` // empty until enriched
}

// PosterEligible reports whether the film carries enough data to build a poster URL.
func (f Film) PosterEligible() bool {
	return f.ID != "" && f.ID != UnknownFilmID && f.Slug != ""
}

// Key identifies a film within a list. Entries without an id fall back to the slug.
func (f Film) Key() string {
	if f.ID == "" || f.ID == UnknownFilmID {
		return "slug:" + f.Slug
	}
	return f.ID
}
