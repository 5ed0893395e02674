package repository

import "errors"

var (
	// ErrFetchFailed covers network errors, timeouts and non-success responses from a list source.
	ErrFetchFailed = errors.New("list fetch failed")
	// ErrExtractionFailed is returned when no film could be recovered from a list page.
	ErrExtractionFailed = errors.New("no films found on list page")
	// ErrSnapshotNotFound is returned by snapshot stores on a miss.
	ErrSnapshotNotFound = errors.New("snapshot not found")
)
