package tokenstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Read when no credential has been stored yet.
// It is the only Read error that does not indicate a storage failure.
var ErrNotFound = errors.New("no stored credential")

// Store reads and writes a serialized credential to persistent storage.
//
// A store holds at most one credential; Write replaces any existing value.
type Store interface {
	// Read returns the stored credential bytes. Returns ErrNotFound if no
	// credential has been stored.
	Read(ctx context.Context) ([]byte, error)

	// Write persists the credential bytes, replacing any existing value.
	// The write must be atomic: a crash mid-write leaves either the old
	// value or no value, never a truncated one.
	Write(ctx context.Context, data []byte) error

	// Delete removes the stored credential. Deleting an absent credential
	// is not an error.
	Delete(ctx context.Context) error
}
