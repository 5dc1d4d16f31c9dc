package store

import (
	"context"

	"icalsync/internal/model"
)

// Directory lists the managed properties whose feeds may need syncing.
// The property table is owned elsewhere; this system only reads it.
type Directory interface {
	ListProperties(ctx context.Context) ([]model.Property, error)
}

// Ledger is the persistent booking store the dedup gate writes through.
//
// InsertBooking must be conflict-safe on the external booking id: when a
// record with the same id already exists it writes nothing and returns
// false. This keeps concurrent sync runs from double-inserting even though
// the gate's existence check is not atomic with the insert.
type Ledger interface {
	ExistsBooking(ctx context.Context, externalID string) (bool, error)
	InsertBooking(ctx context.Context, b model.CandidateBooking) (bool, error)
}
