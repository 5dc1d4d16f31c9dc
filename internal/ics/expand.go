package ics

import (
	"time"

	"github.com/teambition/rrule-go"

	appLog "icalsync/internal/log"
)

const defaultMaxOccurrencesPerEvent = 500

// Stay is one concrete check-in/check-out range derived from a calendar
// event. For non-recurring events the ExternalID is the event UID verbatim;
// for recurring events each instance gets a date-suffixed id so instances
// dedup independently in the ledger.
type Stay struct {
	ExternalID string
	Summary    string
	Start      time.Time
	End        time.Time
}

// ExpandConfig controls recurrence expansion.
type ExpandConfig struct {
	// RangeStart / RangeEnd bound the occurrences produced for recurring
	// events. Non-recurring events are not windowed: every event the feed
	// lists becomes a stay regardless of when it falls.
	RangeStart time.Time
	RangeEnd   time.Time

	// MaxOccurrencesPerEvent caps runaway RRULEs. Zero means the default.
	MaxOccurrencesPerEvent int
}

// ExpandStays turns parsed events into concrete stays, preserving document
// order for non-recurring events and chronological order within each
// recurring event's instances.
func ExpandStays(events []ParsedEvent, cfg ExpandConfig) []Stay {
	if cfg.MaxOccurrencesPerEvent <= 0 {
		cfg.MaxOccurrencesPerEvent = defaultMaxOccurrencesPerEvent
	}

	stays := make([]Stay, 0, len(events))
	for _, ev := range events {
		if ev.RawRRule == "" {
			stays = append(stays, Stay{
				ExternalID: ev.UID,
				Summary:    ev.Summary,
				Start:      ev.Start,
				End:        ev.End,
			})
			continue
		}
		stays = append(stays, expandRecurring(ev, cfg)...)
	}
	return stays
}

func expandRecurring(ev ParsedEvent, cfg ExpandConfig) []Stay {
	out := make([]Stay, 0)

	r, err := rrule.StrToRRule(ev.RawRRule)
	if err != nil {
		appLog.Error("expand: failed to parse RRULE", err, "uid", ev.UID, "rrule", ev.RawRRule)
		return out
	}
	r.DTStart(ev.Start)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range ev.ExDates {
		set.ExDate(ex.In(ev.Start.Location()))
	}

	rangeStart := cfg.RangeStart.In(ev.Start.Location())
	rangeEnd := cfg.RangeEnd.In(ev.Start.Location())

	occTimes := set.Between(rangeStart, rangeEnd, true)
	if len(occTimes) > cfg.MaxOccurrencesPerEvent {
		appLog.Warn("expand: occurrence cap reached", "uid", ev.UID, "cap", cfg.MaxOccurrencesPerEvent)
		occTimes = occTimes[:cfg.MaxOccurrencesPerEvent]
	}

	dur := ev.End.Sub(ev.Start)
	for _, occStart := range occTimes {
		occEnd := occStart.Add(dur)
		if ev.AllDay {
			date := time.Date(occStart.Year(), occStart.Month(), occStart.Day(), 0, 0, 0, 0, occStart.Location())
			occStart = date
			occEnd = date.Add(dur)
		}
		out = append(out, Stay{
			ExternalID: instanceID(ev.UID, occStart),
			Summary:    ev.Summary,
			Start:      occStart,
			End:        occEnd,
		})
	}
	return out
}

// instanceID derives a per-instance external id from the base UID and the
// instance start date in UTC.
func instanceID(uid string, start time.Time) string {
	return uid + "-" + start.UTC().Format("20060102")
}
