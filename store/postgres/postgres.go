/*
Package postgres provides a PostgreSQL-backed campground.Store.

OVERLAP ENFORCEMENT:
  The commitments table carries an exclusion constraint (btree_gist):

    EXCLUDE USING gist (
        resource_id WITH =,
        daterange(check_in, check_out, '[)') WITH &&
    ) WHERE (occupying and not archived)

  so the database itself rejects the second of two racing writes with
  SQLSTATE 23P01, which is mapped to *generic.OverlapError. Blocks are not
  constrained here; the engine checks them under its site locks.

USAGE:
  store, err := postgres.New(ctx, os.Getenv("DATABASE_URL"))
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()
*/
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/warp/campsite-engine/campground"
	"github.com/warp/campsite-engine/generic"
)

const (
	exclusionViolation = "23P01"
	overlapConstraint  = "commitments_no_overlap"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store implements campground.TxStore on a pgx pool.
type Store struct {
	pool *pgxpool.Pool
	q    querier
}

// New connects, pings and migrates.
func New(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid database url: %w", err)
	}
	cfg.MaxConns = 10
	cfg.MinConns = 1
	cfg.MaxConnLifetime = 30 * time.Minute
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}

	s := &Store{pool: pool, q: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

func (s *Store) Close() {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
}

func (s *Store) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

func (s *Store) migrate(ctx context.Context) error {
	schema := `
	CREATE EXTENSION IF NOT EXISTS btree_gist;

	CREATE TABLE IF NOT EXISTS sites (
		id TEXT PRIMARY KEY,
		code TEXT NOT NULL DEFAULT '',
		name TEXT NOT NULL DEFAULT '',
		site_type TEXT NOT NULL,
		max_guests INTEGER NOT NULL CHECK (max_guests > 0),
		max_vehicle_length INTEGER,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		sort_order INTEGER NOT NULL DEFAULT 0,
		nightly_rate NUMERIC(12,2) NOT NULL DEFAULT 0,
		notes TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);

	CREATE TABLE IF NOT EXISTS commitments (
		id TEXT PRIMARY KEY,
		resource_id TEXT REFERENCES sites(id),
		check_in DATE NOT NULL,
		check_out DATE NOT NULL,
		status TEXT NOT NULL,
		adults INTEGER NOT NULL DEFAULT 1,
		children INTEGER NOT NULL DEFAULT 0,
		vehicle_length INTEGER,
		vehicle_year INTEGER,
		camping_unit TEXT NOT NULL DEFAULT '',
		guest_first_name TEXT NOT NULL DEFAULT '',
		guest_last_name TEXT NOT NULL DEFAULT '',
		guest_email TEXT NOT NULL DEFAULT '',
		guest_phone TEXT NOT NULL DEFAULT '',
		guest_address1 TEXT NOT NULL DEFAULT '',
		guest_city TEXT NOT NULL DEFAULT '',
		guest_postal_code TEXT NOT NULL DEFAULT '',
		guest_contact_method TEXT NOT NULL DEFAULT '',
		total NUMERIC(12,2) NOT NULL DEFAULT 0,
		payment_ref TEXT,
		archived BOOLEAN NOT NULL DEFAULT FALSE,
		pending_since TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		CHECK (check_out > check_in),
		CONSTRAINT commitments_no_overlap EXCLUDE USING gist (
			resource_id WITH =,
			daterange(check_in, check_out, '[)') WITH &&
		) WHERE (
			resource_id IS NOT NULL
			AND NOT archived
			AND status IN ('pending', 'confirmed', 'checked_in')
		)
	);

	CREATE INDEX IF NOT EXISTS idx_commitments_status ON commitments(status);

	ALTER TABLE commitments
		ADD COLUMN IF NOT EXISTS vehicle_year INTEGER,
		ADD COLUMN IF NOT EXISTS guest_address1 TEXT NOT NULL DEFAULT '',
		ADD COLUMN IF NOT EXISTS guest_city TEXT NOT NULL DEFAULT '',
		ADD COLUMN IF NOT EXISTS guest_postal_code TEXT NOT NULL DEFAULT '',
		ADD COLUMN IF NOT EXISTS guest_contact_method TEXT NOT NULL DEFAULT '',
		ADD COLUMN IF NOT EXISTS pending_since TIMESTAMPTZ;

	CREATE TABLE IF NOT EXISTS blocks (
		id TEXT PRIMARY KEY,
		resource_id TEXT REFERENCES sites(id),
		start_date DATE NOT NULL,
		end_date DATE NOT NULL,
		reason TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		CHECK (end_date >= start_date)
	);
	`
	_, err := s.pool.Exec(ctx, schema)
	return err
}

// =============================================================================
// SITES
// =============================================================================

func (s *Store) SaveSite(ctx context.Context, site campground.Site) error {
	_, err := s.q.Exec(ctx, `
		INSERT INTO sites (id, code, name, site_type, max_guests, max_vehicle_length,
			is_active, sort_order, nightly_rate, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::numeric, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			code = EXCLUDED.code,
			name = EXCLUDED.name,
			site_type = EXCLUDED.site_type,
			max_guests = EXCLUDED.max_guests,
			max_vehicle_length = EXCLUDED.max_vehicle_length,
			is_active = EXCLUDED.is_active,
			sort_order = EXCLUDED.sort_order,
			nightly_rate = EXCLUDED.nightly_rate,
			notes = EXCLUDED.notes,
			updated_at = EXCLUDED.updated_at
	`, string(site.ID), site.Code, site.Name, string(site.Type), site.MaxGuests, site.MaxVehicleLength,
		site.IsActive, site.SortOrder, site.NightlyRate.String(), site.Notes,
		timestamp(site.CreatedAt), timestamp(site.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to save site: %w", err)
	}
	return nil
}

const siteColumns = `id, code, name, site_type, max_guests, max_vehicle_length,
	is_active, sort_order, nightly_rate::text, notes, created_at, updated_at`

func (s *Store) GetSite(ctx context.Context, id generic.ResourceID) (*campground.Site, error) {
	row := s.q.QueryRow(ctx, "SELECT "+siteColumns+" FROM sites WHERE id = $1", string(id))
	site, err := scanSite(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &site, nil
}

func (s *Store) ListSites(ctx context.Context) ([]campground.Site, error) {
	rows, err := s.q.Query(ctx, "SELECT "+siteColumns+" FROM sites ORDER BY sort_order, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sites []campground.Site
	for rows.Next() {
		site, err := scanSite(rows)
		if err != nil {
			return nil, err
		}
		sites = append(sites, site)
	}
	return sites, rows.Err()
}

func scanSite(row pgx.Row) (campground.Site, error) {
	var (
		site     campground.Site
		id, kind string
		rate     string
	)
	err := row.Scan(&id, &site.Code, &site.Name, &kind, &site.MaxGuests, &site.MaxVehicleLength,
		&site.IsActive, &site.SortOrder, &rate, &site.Notes, &site.CreatedAt, &site.UpdatedAt)
	if err != nil {
		return campground.Site{}, err
	}
	site.ID = generic.ResourceID(id)
	site.Type = campground.SiteType(kind)
	if site.NightlyRate, err = parseDecimal(rate); err != nil {
		return campground.Site{}, fmt.Errorf("site %s: %w", id, err)
	}
	return site, nil
}

// =============================================================================
// COMMITMENTS
// =============================================================================

func (s *Store) CreateCommitment(ctx context.Context, c campground.Commitment) error {
	_, err := s.q.Exec(ctx, `
		INSERT INTO commitments (id, resource_id, check_in, check_out, status, adults, children,
			vehicle_length, camping_unit, guest_first_name, guest_last_name, guest_email, guest_phone,
			total, payment_ref, archived, created_at, updated_at,
			vehicle_year, guest_address1, guest_city, guest_postal_code, guest_contact_method, pending_since)
		VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
			$14::numeric, NULLIF($15, ''), $16, $17, $18, $19, $20, $21, $22, $23, $24)
	`, c.ID, string(c.ResourceID), c.CheckIn.Time, c.CheckOut.Time, string(c.Status), c.Adults, c.Children,
		c.VehicleLength, c.CampingUnit, c.Guest.FirstName, c.Guest.LastName, c.Guest.Email, c.Guest.Phone,
		c.Total.String(), c.PaymentRef, c.Archived, timestamp(c.CreatedAt), timestamp(c.UpdatedAt),
		c.VehicleYear, c.Guest.Address1, c.Guest.City, c.Guest.PostalCode, string(c.Guest.ContactMethod),
		optionalTimestamp(c.PendingSince))
	if err != nil {
		return translateWriteError(err, c)
	}
	return nil
}

func (s *Store) UpdateCommitment(ctx context.Context, c campground.Commitment) error {
	tag, err := s.q.Exec(ctx, `
		UPDATE commitments SET
			resource_id = NULLIF($2, ''), check_in = $3, check_out = $4, status = $5,
			adults = $6, children = $7, vehicle_length = $8, camping_unit = $9,
			guest_first_name = $10, guest_last_name = $11, guest_email = $12, guest_phone = $13,
			total = $14::numeric, payment_ref = NULLIF($15, ''), archived = $16, updated_at = $17,
			vehicle_year = $18, guest_address1 = $19, guest_city = $20, guest_postal_code = $21,
			guest_contact_method = $22, pending_since = $23
		WHERE id = $1
	`, c.ID, string(c.ResourceID), c.CheckIn.Time, c.CheckOut.Time, string(c.Status), c.Adults, c.Children,
		c.VehicleLength, c.CampingUnit, c.Guest.FirstName, c.Guest.LastName, c.Guest.Email, c.Guest.Phone,
		c.Total.String(), c.PaymentRef, c.Archived, timestamp(c.UpdatedAt),
		c.VehicleYear, c.Guest.Address1, c.Guest.City, c.Guest.PostalCode, string(c.Guest.ContactMethod),
		optionalTimestamp(c.PendingSince))
	if err != nil {
		return translateWriteError(err, c)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("commitment %s: %w", c.ID, generic.ErrNotFound)
	}
	return nil
}

const commitmentColumns = `id, COALESCE(resource_id, ''), check_in, check_out, status, adults, children,
	vehicle_length, camping_unit, guest_first_name, guest_last_name, guest_email, guest_phone,
	total::text, COALESCE(payment_ref, ''), archived, created_at, updated_at,
	vehicle_year, guest_address1, guest_city, guest_postal_code, guest_contact_method, pending_since`

func (s *Store) GetCommitment(ctx context.Context, id string) (*campground.Commitment, error) {
	row := s.q.QueryRow(ctx, "SELECT "+commitmentColumns+" FROM commitments WHERE id = $1", id)
	c, err := scanCommitment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) ListCommitments(ctx context.Context, filter campground.CommitmentFilter) ([]campground.Commitment, error) {
	var (
		where []string
		args  []any
	)
	if !filter.IncludeArchived {
		where = append(where, "NOT archived")
	}
	if filter.Window != nil {
		args = append(args, filter.Window.End.Time, filter.Window.Start.Time)
		where = append(where, fmt.Sprintf("check_in < $%d AND check_out > $%d", len(args)-1, len(args)))
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, st := range filter.Statuses {
			statuses[i] = string(st)
		}
		args = append(args, statuses)
		where = append(where, fmt.Sprintf("status = ANY($%d)", len(args)))
	}

	query := "SELECT " + commitmentColumns + " FROM commitments"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY check_in, id"

	rows, err := s.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []campground.Commitment
	for rows.Next() {
		c, err := scanCommitment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

func scanCommitment(row pgx.Row) (campground.Commitment, error) {
	var (
		c                 campground.Commitment
		resourceID        string
		checkIn, checkOut time.Time
		status, total     string
		contact           string
		pendingSince      *time.Time
	)
	err := row.Scan(&c.ID, &resourceID, &checkIn, &checkOut, &status, &c.Adults, &c.Children,
		&c.VehicleLength, &c.CampingUnit, &c.Guest.FirstName, &c.Guest.LastName, &c.Guest.Email, &c.Guest.Phone,
		&total, &c.PaymentRef, &c.Archived, &c.CreatedAt, &c.UpdatedAt,
		&c.VehicleYear, &c.Guest.Address1, &c.Guest.City, &c.Guest.PostalCode, &contact, &pendingSince)
	if err != nil {
		return campground.Commitment{}, err
	}
	c.ResourceID = generic.ResourceID(resourceID)
	c.CheckIn = generic.DateOf(checkIn)
	c.CheckOut = generic.DateOf(checkOut)
	c.Status = campground.CommitmentStatus(status)
	c.Guest.ContactMethod = campground.ContactMethod(contact)
	if pendingSince != nil {
		c.PendingSince = pendingSince.UTC()
	}
	if c.Total, err = parseDecimal(total); err != nil {
		return campground.Commitment{}, fmt.Errorf("commitment %s: %w", c.ID, err)
	}
	return c, nil
}

// =============================================================================
// BLOCKS
// =============================================================================

func (s *Store) SaveBlock(ctx context.Context, b campground.Block) error {
	_, err := s.q.Exec(ctx, `
		INSERT INTO blocks (id, resource_id, start_date, end_date, reason, created_at, updated_at)
		VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			resource_id = EXCLUDED.resource_id,
			start_date = EXCLUDED.start_date,
			end_date = EXCLUDED.end_date,
			reason = EXCLUDED.reason,
			updated_at = EXCLUDED.updated_at
	`, b.ID, string(b.ResourceID), b.Start.Time, b.End.Time, b.Reason, timestamp(b.CreatedAt), timestamp(b.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to save block: %w", err)
	}
	return nil
}

const blockColumns = `id, COALESCE(resource_id, ''), start_date, end_date, reason, created_at, updated_at`

func (s *Store) GetBlock(ctx context.Context, id string) (*campground.Block, error) {
	row := s.q.QueryRow(ctx, "SELECT "+blockColumns+" FROM blocks WHERE id = $1", id)
	b, err := scanBlock(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *Store) DeleteBlock(ctx context.Context, id string) error {
	_, err := s.q.Exec(ctx, "DELETE FROM blocks WHERE id = $1", id)
	return err
}

func (s *Store) ListBlocks(ctx context.Context) ([]campground.Block, error) {
	rows, err := s.q.Query(ctx, "SELECT "+blockColumns+" FROM blocks ORDER BY start_date, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []campground.Block
	for rows.Next() {
		b, err := scanBlock(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, b)
	}
	return result, rows.Err()
}

func scanBlock(row pgx.Row) (campground.Block, error) {
	var (
		b          campground.Block
		resourceID string
		start, end time.Time
	)
	if err := row.Scan(&b.ID, &resourceID, &start, &end, &b.Reason, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return campground.Block{}, err
	}
	b.ResourceID = generic.ResourceID(resourceID)
	b.Start = generic.DateOf(start)
	b.End = generic.DateOf(end)
	return b, nil
}

// =============================================================================
// TRANSACTIONS / UTILITIES
// =============================================================================

// WithTx runs fn inside a single database transaction.
func (s *Store) WithTx(ctx context.Context, fn func(campground.Store) error) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(&Store{pool: s.pool, q: tx})
	})
}

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	_, err := s.q.Exec(ctx, "TRUNCATE commitments, blocks, sites")
	return err
}

func timestamp(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t.UTC()
}

// optionalTimestamp writes a zero time as NULL.
func optionalTimestamp(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	u := t.UTC()
	return &u
}

// translateWriteError maps the exclusion constraint to *generic.OverlapError.
func translateWriteError(err error, c campground.Commitment) error {
	if isExclusionViolation(err) {
		return &generic.OverlapError{ResourceID: c.ResourceID, Range: c.Range()}
	}
	return fmt.Errorf("failed to write commitment: %w", err)
}

func isExclusionViolation(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == exclusionViolation &&
		(pgErr.ConstraintName == "" || pgErr.ConstraintName == overlapConstraint)
}

var _ campground.TxStore = (*Store)(nil)
