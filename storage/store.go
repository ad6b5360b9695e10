package storage

import (
	"context"
	"io"
)

type PutResult struct {
	Key      string
	Location string
	ETag     string
}

// ObjectStore is a flat key/value blob store with public read URLs.
type ObjectStore interface {
	Put(ctx context.Context, key string, contentType string, body io.Reader) (*PutResult, error)

	Delete(ctx context.Context, key string) error

	PublicURL(key string) string
}

// SnapshotKey is where the public JSON view of a tournament lives.
func SnapshotKey(tournamentID string) string {
	return "tournaments/" + tournamentID + ".json"
}
