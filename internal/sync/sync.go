package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"icalsync/internal/ics"
	appLog "icalsync/internal/log"
	"icalsync/internal/model"
	"icalsync/internal/store"
)

// maxStoreFailures is how many consecutive ledger errors a property may
// accumulate before the rest of its feed is abandoned. The run continues
// with the next property either way.
const maxStoreFailures = 3

// Runner drives one sync pass: list properties, fetch and decode each feed,
// derive candidate bookings, and push them through the dedup gate.
type Runner struct {
	dir     store.Directory
	gate    *Gate
	fetcher *ics.Fetcher

	horizonDays int
	now         func() time.Time
}

func NewRunner(dir store.Directory, ledger store.Ledger, fetcher *ics.Fetcher, horizonDays int) *Runner {
	if horizonDays <= 0 {
		horizonDays = 365
	}
	return &Runner{
		dir:         dir,
		gate:        NewGate(ledger),
		fetcher:     fetcher,
		horizonDays: horizonDays,
		now:         time.Now,
	}
}

// propertyResult is the outcome of one property's processing. Insertions
// made before a failure are never rolled back, so synced is meaningful even
// when err is set.
type propertyResult struct {
	synced int
	err    error
}

// Run processes every listed property in directory order and returns the
// number of bookings inserted across the whole run.
//
// Only a directory failure aborts the run. Each property is an isolation
// boundary: its fetch, parse, and store errors are logged and contribute
// zero, never preventing later properties from being processed.
func (r *Runner) Run(ctx context.Context) (int, error) {
	props, err := r.dir.ListProperties(ctx)
	if err != nil {
		return 0, fmt.Errorf("list properties: %w", err)
	}

	appLog.Info("sync run starting", "properties", len(props))

	total := 0
	for _, p := range props {
		res := r.syncProperty(ctx, p)
		total += res.synced
		if res.err != nil {
			appLog.Error("property sync failed", res.err, "property", p.Name, "property_id", p.ID)
		}
	}

	appLog.Info("sync run complete", "synced", total)
	return total, nil
}

func (r *Runner) syncProperty(ctx context.Context, p model.Property) propertyResult {
	if p.ICalURL == "" {
		appLog.Debug("property has no feed URL, skipping", "property", p.Name)
		return propertyResult{}
	}

	appLog.Info("syncing property", "property", p.Name)

	src := ics.Source{ID: p.ID, URL: p.ICalURL}

	body, err := r.fetcher.Fetch(ctx, src)
	if err != nil {
		return propertyResult{err: fmt.Errorf("fetch feed: %w", err)}
	}

	events, err := ics.ParseICS(src, body)
	if err != nil {
		return propertyResult{err: fmt.Errorf("parse feed: %w", err)}
	}

	now := r.now()
	stays := ics.ExpandStays(events, ics.ExpandConfig{
		RangeStart: now,
		RangeEnd:   now.AddDate(0, 0, r.horizonDays),
	})

	synced := 0
	storeFailures := 0
	for _, stay := range stays {
		candidate, err := Normalize(stay, p.ID)
		if err != nil {
			if errors.Is(err, ErrMissingUID) {
				appLog.Warn("skipping malformed event", "property", p.Name, "summary", stay.Summary)
				continue
			}
			appLog.Error("event normalize failed", err, "property", p.Name)
			continue
		}

		inserted, err := r.gate.Ingest(ctx, candidate)
		if err != nil {
			appLog.Error("booking ingest failed", err, "property", p.Name, "external_id", candidate.ExternalBookingID)
			storeFailures++
			if storeFailures >= maxStoreFailures {
				return propertyResult{
					synced: synced,
					err:    fmt.Errorf("abandoning property after %d consecutive store failures: %w", storeFailures, err),
				}
			}
			continue
		}
		storeFailures = 0

		if inserted {
			synced++
		} else {
			appLog.Debug("booking already in ledger", "property", p.Name, "external_id", candidate.ExternalBookingID)
		}
	}

	appLog.Info("property synced", "property", p.Name, "inserted", synced, "events", len(stays))
	return propertyResult{synced: synced}
}
