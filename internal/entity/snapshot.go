package entity

import "time"

// Category names one of the two curated lists.
type Category string

const (
	CategoryBad  Category = "bad"
	CategoryGood Category = "good"
)

// Categories lists every known category in a stable order.
var Categories = []Category{CategoryBad, CategoryGood}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	return c == CategoryBad || c == CategoryGood
}

// Snapshot is the last known-good extraction of one list.
type Snapshot struct {
	Category  Category  `json:"category"`
	Films     []Film    `json:"films"`
	FetchedAt time.Time `json:"fetched_at"`
}

// NewerThan reports whether s may replace old. Empty snapshots never replace anything.
func (s *Snapshot) NewerThan(old *Snapshot) bool {
	if s == nil || len(s.Films) == 0 {
		return false
	}
	if old == nil {
		return true
	}
	return s.FetchedAt.After(old.FetchedAt)
}

// ListOrigin tells where the films of a ListResult came from.
type ListOrigin string

const (
	OriginCache ListOrigin = "cache" // fresh snapshot, no fetch
	OriginFresh ListOrigin = "fresh" // fetched during this call
	OriginStale ListOrigin = "stale" // refresh failed, previous snapshot served
	OriginEmpty ListOrigin = "empty" // refresh failed, nothing to serve
)

// ListResult is what the list cache hands back for one category.
// Err is set whenever a refresh was attempted and failed.
type ListResult struct {
	Category  Category
	Films     []Film
	FetchedAt time.Time
	Origin    ListOrigin
	Err       error
}
