// Package session provides the signer session: one authorized identity that
// can submit state-changing calls to the diary contract and read its own
// records.
package session

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/gophdiary/internal/client/models"
)

// ErrDeclined is returned when the user refuses to authorize a transaction.
var ErrDeclined = errors.New("authorization declined")

// Session is the capability consumed by the submission and query services.
// Implementations must be safe for concurrent use.
type Session interface {
	// Available reports whether an identity is currently usable.
	Available() bool

	// Identity is the caller's address in hex.
	Identity() string

	// AddEntry authorizes and broadcasts one addEntry call.
	AddEntry(ctx context.Context, e models.WireEntry) (Pending, error)

	// GetMyEntries reads the caller's records in ledger order.
	GetMyEntries(ctx context.Context) ([]models.WireTuple, error)
}

// Pending is a broadcast operation whose finality can be awaited.
type Pending interface {
	Hash() string

	// Wait blocks until the operation is final or ctx ends. Abandoning the
	// wait does not cancel the operation.
	Wait(ctx context.Context) error
}

// Available reports whether s is non-nil and usable.
func Available(s Session) bool {
	return s != nil && s.Available()
}
