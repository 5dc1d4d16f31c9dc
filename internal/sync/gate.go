package sync

import (
	"context"
	"fmt"

	"icalsync/internal/model"
	"icalsync/internal/store"
)

// Gate decides whether a candidate booking is new to the ledger and inserts
// it if so. The existence check makes repeat runs cheap; the ledger's
// conflict-safe insert is what actually guarantees at-most-one record per
// external id when runs overlap.
type Gate struct {
	ledger store.Ledger
}

func NewGate(ledger store.Ledger) *Gate {
	return &Gate{ledger: ledger}
}

// Ingest returns true when the candidate was written as a new record,
// false when a booking with the same external id already exists.
func (g *Gate) Ingest(ctx context.Context, b model.CandidateBooking) (bool, error) {
	exists, err := g.ledger.ExistsBooking(ctx, b.ExternalBookingID)
	if err != nil {
		return false, fmt.Errorf("lookup booking %q: %w", b.ExternalBookingID, err)
	}
	if exists {
		return false, nil
	}

	inserted, err := g.ledger.InsertBooking(ctx, b)
	if err != nil {
		return false, fmt.Errorf("insert booking %q: %w", b.ExternalBookingID, err)
	}
	return inserted, nil
}
