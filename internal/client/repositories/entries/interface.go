package entries

import (
	"context"

	"github.com/dmitrijs2005/gophdiary/internal/client/models"
)

// Repository stores per-owner snapshots of diary records.
type Repository interface {
	// InsertAll appends records for owner, numbering positions from the
	// current snapshot length.
	InsertAll(ctx context.Context, owner string, list []models.DiaryEntry) error

	// DeleteByOwner drops the owner's snapshot.
	DeleteByOwner(ctx context.Context, owner string) error

	// GetAll returns the owner's snapshot in ledger order.
	GetAll(ctx context.Context, owner string) ([]models.DiaryEntry, error)

	// Count returns the number of cached records for owner.
	Count(ctx context.Context, owner string) (int, error)
}
