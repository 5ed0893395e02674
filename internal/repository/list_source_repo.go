package repository

import "context"

// ListSource defines the contract for fetching the raw HTML of a named list.
type ListSource interface {
	// FetchList returns the HTML of the list page. Failures wrap ErrFetchFailed.
	FetchList(ctx context.Context, listName string) (string, error)
}
