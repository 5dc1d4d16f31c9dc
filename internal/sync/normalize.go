package sync

import (
	"errors"
	"math"
	"time"

	"icalsync/internal/ics"
	"icalsync/internal/model"
)

// ErrMissingUID marks an event that cannot become a booking because it has
// no external identifier. The caller skips the event, not the feed.
var ErrMissingUID = errors.New("event has no uid")

const (
	defaultGuestLabel = "External Guest"
	statusConfirmed   = "confirmed"
	importedUnitName  = "Imported"
)

// Normalize derives a candidate booking from one stay instance.
//
// Nights uses the absolute difference between the instants, so a feed with
// inverted start/end still yields a non-negative count. That masks upstream
// errors rather than surfacing them; it is the established behavior and
// changing it would change output for malformed feeds.
func Normalize(stay ics.Stay, propertyID string) (model.CandidateBooking, error) {
	if stay.ExternalID == "" {
		return model.CandidateBooking{}, ErrMissingUID
	}

	summary := stay.Summary
	if summary == "" {
		summary = defaultGuestLabel
	}

	return model.CandidateBooking{
		PropertyID:        propertyID,
		CheckIn:           stay.Start,
		CheckOut:          stay.End,
		Nights:            nightsBetween(stay.Start, stay.End),
		TotalPrice:        0,
		Status:            statusConfirmed,
		Source:            Classify(summary),
		ExternalBookingID: stay.ExternalID,
		UnitName:          importedUnitName,
	}, nil
}

func nightsBetween(start, end time.Time) int {
	diff := end.Sub(start)
	if diff < 0 {
		diff = -diff
	}
	return int(math.Ceil(diff.Hours() / 24))
}
