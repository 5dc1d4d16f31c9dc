package model

import "time"

// SourceTag classifies which booking channel a calendar event originated
// from. The set is closed; Classify in internal/sync maps free text onto it.
type SourceTag string

const (
	SourceAirbnb     SourceTag = "airbnb"
	SourceBookingCom SourceTag = "booking_com"
	// SourceHostify is the catch-all for direct or unrecognized channels.
	SourceHostify SourceTag = "hostify"
)

// Property is a managed rental unit as listed by the property directory.
// Read-only to this system. ICalURL may be empty, meaning the property has
// no external feed and is skipped during a sync run.
type Property struct {
	ID      string
	Name    string
	ICalURL string
}

// CandidateBooking is derived from one calendar event instance during a sync
// run. Transient; it becomes a BookingRecord only if the dedup gate finds no
// existing booking with the same external id.
//
// There is deliberately no guest reference: imported bookings carry none.
type CandidateBooking struct {
	PropertyID        string
	CheckIn           time.Time
	CheckOut          time.Time
	Nights            int
	TotalPrice        float64
	Status            string
	Source            SourceTag
	ExternalBookingID string
	UnitName          string
}

// BookingRecord is a CandidateBooking accepted into the ledger. Owned by the
// store; this system inserts records and never mutates or deletes them.
type BookingRecord struct {
	ID        int64
	CreatedAt time.Time
	CandidateBooking
}
