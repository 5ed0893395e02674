package response

import (
	"time"

	"github.com/user/roleta-service/internal/entity"
	"github.com/user/roleta-service/internal/presenter"
)

// SpinResponse is the card of a spin plus how many films actually entered the cylinder.
type SpinResponse struct {
	presenter.Card
	DrawnBad  int `json:"drawn_bad"`
	DrawnGood int `json:"drawn_good"`
}

type FestimResponse struct {
	URL string `json:"url"`
}

// ListResponse is a read-only view of one cached list.
type ListResponse struct {
	Category  entity.Category   `json:"category"`
	Origin    entity.ListOrigin `json:"origin"`
	FetchedAt *time.Time        `json:"fetched_at,omitempty"`
	Count     int               `json:"count"`
	Films     []entity.Film     `json:"films"`
}

type HealthResponse struct {
	Status        string `json:"status"`
	SnapshotStore string `json:"snapshot_store"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
