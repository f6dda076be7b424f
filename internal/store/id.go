package store

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// NewID returns a sortable id for in-memory sessions. It ends up in button
// custom ids, so it stays short and URL safe.
func NewID() string {
	return ulid.Make().String()
}

// IDTime reports when an id from NewID was minted.
func IDTime(id string) (time.Time, error) {
	u, err := ulid.ParseStrict(id)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(u.Time()), nil
}
