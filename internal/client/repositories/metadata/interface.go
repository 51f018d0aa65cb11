// Package metadata stores small pieces of client bookkeeping (last
// broadcast transaction, unresolved transaction, last refresh time) in a
// key/value table of the local cache database.
package metadata

import (
	"context"
	"fmt"
	"time"
)

// Keys are namespaced by owner identity. ListOwner reports them without the
// owner prefix.
const (
	KeyLastTx      = "last_tx"
	KeyPendingTx   = "pending_tx"
	KeyRefreshedAt = "refreshed_at"
)

// LastTxKey is the key of the owner's most recent broadcast transaction hash.
func LastTxKey(owner string) string { return owner + "/" + KeyLastTx }

// PendingTxKey is the key of a broadcast transaction whose outcome was not
// observed. It is removed once the transaction is final or failed.
func PendingTxKey(owner string) string { return owner + "/" + KeyPendingTx }

// RefreshedAtKey is the key of the owner's last successful ledger read.
func RefreshedAtKey(owner string) string { return owner + "/" + KeyRefreshedAt }

// ParseTime decodes a value written by SetTime. A nil value is the zero time.
func ParseTime(raw []byte) (time.Time, error) {
	if raw == nil {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, string(raw))
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed time %q: %w", raw, err)
	}
	return t, nil
}

type Repository interface {
	// Get returns (nil, nil) when key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error

	// GetTime and SetTime store instants as RFC 3339 with nanoseconds.
	// GetTime returns the zero time when key is absent.
	GetTime(ctx context.Context, key string) (time.Time, error)
	SetTime(ctx context.Context, key string, t time.Time) error

	// ListOwner returns every key stored for owner, without the owner prefix.
	ListOwner(ctx context.Context, owner string) (map[string][]byte, error)
}
