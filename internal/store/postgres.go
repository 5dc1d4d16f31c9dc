package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"icalsync/internal/config"
	"icalsync/internal/model"
)

// Postgres backs both the property directory and the booking ledger.
type Postgres struct {
	db *sql.DB
}

// NewPostgres opens a connection, waits for the database to become
// reachable, runs schema migrations, and returns a ready store.
func NewPostgres(cfg *config.StoreConfig) (*Postgres, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	retries := cfg.PingRetries
	if retries <= 0 {
		retries = 1
	}
	for i := 0; i < retries; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	p := &Postgres{db: db}
	if err := p.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}
	return p, nil
}

func (p *Postgres) migrate() error {
	_, err := p.db.Exec(`
		CREATE TABLE IF NOT EXISTS properties (
			id       TEXT PRIMARY KEY,
			name     TEXT NOT NULL,
			ical_url TEXT NOT NULL DEFAULT ''
		);

		CREATE TABLE IF NOT EXISTS bookings (
			id                  SERIAL PRIMARY KEY,
			property_id         TEXT         NOT NULL REFERENCES properties(id),
			check_in            TIMESTAMPTZ  NOT NULL,
			check_out           TIMESTAMPTZ  NOT NULL,
			nights              INT          NOT NULL DEFAULT 0,
			total_price         NUMERIC(10,2) NOT NULL DEFAULT 0,
			status              VARCHAR(30)  NOT NULL,
			booking_source      VARCHAR(30)  NOT NULL,
			external_booking_id TEXT         UNIQUE NOT NULL,
			unit_name           TEXT         NOT NULL DEFAULT '',
			guest_id            TEXT,
			created_at          TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_bookings_property ON bookings(property_id);
		CREATE INDEX IF NOT EXISTS idx_bookings_source   ON bookings(booking_source);
	`)
	return err
}

// ListProperties returns every managed property in stable id order. The
// caller decides what to do with properties that have no feed URL.
func (p *Postgres) ListProperties(ctx context.Context) ([]model.Property, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, name, COALESCE(ical_url, '')
		FROM properties
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("postgres: list properties: %w", err)
	}
	defer rows.Close()

	var props []model.Property
	for rows.Next() {
		var prop model.Property
		if err := rows.Scan(&prop.ID, &prop.Name, &prop.ICalURL); err != nil {
			return nil, fmt.Errorf("postgres: scan property: %w", err)
		}
		props = append(props, prop)
	}
	return props, rows.Err()
}

// ExistsBooking reports whether a booking with the given external id is
// already in the ledger.
func (p *Postgres) ExistsBooking(ctx context.Context, externalID string) (bool, error) {
	var one int
	err := p.db.QueryRowContext(ctx,
		`SELECT 1 FROM bookings WHERE external_booking_id = $1`, externalID,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("postgres: booking lookup: %w", err)
	}
	return true, nil
}

// InsertBooking writes the candidate unless a record with the same external
// id already exists. The unique index makes the insert a no-op on conflict,
// so the returned flag is accurate even under concurrent runs.
//
// guest_id is intentionally never written; imported bookings have no guest.
func (p *Postgres) InsertBooking(ctx context.Context, b model.CandidateBooking) (bool, error) {
	res, err := p.db.ExecContext(ctx, `
		INSERT INTO bookings
			(property_id, check_in, check_out, nights, total_price,
			 status, booking_source, external_booking_id, unit_name)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT (external_booking_id) DO NOTHING
	`, b.PropertyID, b.CheckIn, b.CheckOut, b.Nights, b.TotalPrice,
		b.Status, string(b.Source), b.ExternalBookingID, b.UnitName)
	if err != nil {
		return false, fmt.Errorf("postgres: insert booking: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("postgres: insert booking: %w", err)
	}
	return n == 1, nil
}

func (p *Postgres) Close() error {
	return p.db.Close()
}
