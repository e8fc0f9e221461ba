/*
Package sqlite provides a SQLite-backed campground.Store.

PURPOSE:
  Embedded persistence for single-node deployments, demos and tests.

KEY TABLES:
  sites:        bookable resources (soft-deactivated, never deleted)
  commitments:  reservations, half-open [check_in, check_out)
  blocks:       blackouts, inclusive [start_date, end_date]

OVERLAP ENFORCEMENT:
  SQLite has no exclusion constraints, so two BEFORE triggers (insert and
  update) abort any write that would leave two occupying, non-archived
  commitments on the same site with overlapping ranges:

    existing.check_in < NEW.check_out AND existing.check_out > NEW.check_in

  Dates are stored as YYYY-MM-DD text, which compares correctly as strings.
  The abort message is mapped to *generic.OverlapError.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety on top of SQLite's single writer.
  The campground engine additionally locks per site.

USAGE:
  store, err := sqlite.New("./data/campground.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - campground/store.go: interface and overlap contract
  - store/postgres: the same contract via an EXCLUDE constraint
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/campsite-engine/campground"
	"github.com/warp/campsite-engine/generic"
)

const overlapMessage = "commitment_overlap"

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store implements campground.TxStore using SQLite.
type Store struct {
	db *sql.DB
	q  querier
	mu *sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db, q: db, mu: &sync.RWMutex{}}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sites (
		id TEXT PRIMARY KEY,
		code TEXT NOT NULL DEFAULT '',
		name TEXT NOT NULL DEFAULT '',
		site_type TEXT NOT NULL,
		max_guests INTEGER NOT NULL CHECK (max_guests > 0),
		max_vehicle_length INTEGER,
		is_active INTEGER NOT NULL DEFAULT 1,
		sort_order INTEGER NOT NULL DEFAULT 0,
		nightly_rate TEXT NOT NULL DEFAULT '0',
		notes TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS commitments (
		id TEXT PRIMARY KEY,
		resource_id TEXT REFERENCES sites(id),
		check_in TEXT NOT NULL,
		check_out TEXT NOT NULL,
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
		total TEXT NOT NULL DEFAULT '0',
		payment_ref TEXT,
		archived INTEGER NOT NULL DEFAULT 0,
		pending_since TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		CHECK (check_out > check_in)
	);

	CREATE INDEX IF NOT EXISTS idx_commitments_resource_dates
		ON commitments(resource_id, check_in, check_out);
	CREATE INDEX IF NOT EXISTS idx_commitments_status
		ON commitments(status);

	-- No two occupying commitments on one site may overlap.
	CREATE TRIGGER IF NOT EXISTS trg_commitments_overlap_insert
	BEFORE INSERT ON commitments
	WHEN NEW.resource_id IS NOT NULL AND NEW.archived = 0
		AND NEW.status IN ('pending', 'confirmed', 'checked_in')
	BEGIN
		SELECT RAISE(ABORT, 'commitment_overlap')
		WHERE EXISTS (
			SELECT 1 FROM commitments c
			WHERE c.resource_id = NEW.resource_id
				AND c.id <> NEW.id
				AND c.archived = 0
				AND c.status IN ('pending', 'confirmed', 'checked_in')
				AND c.check_in < NEW.check_out
				AND c.check_out > NEW.check_in
		);
	END;

	CREATE TRIGGER IF NOT EXISTS trg_commitments_overlap_update
	BEFORE UPDATE ON commitments
	WHEN NEW.resource_id IS NOT NULL AND NEW.archived = 0
		AND NEW.status IN ('pending', 'confirmed', 'checked_in')
	BEGIN
		SELECT RAISE(ABORT, 'commitment_overlap')
		WHERE EXISTS (
			SELECT 1 FROM commitments c
			WHERE c.resource_id = NEW.resource_id
				AND c.id <> NEW.id
				AND c.archived = 0
				AND c.status IN ('pending', 'confirmed', 'checked_in')
				AND c.check_in < NEW.check_out
				AND c.check_out > NEW.check_in
		);
	END;

	CREATE TABLE IF NOT EXISTS blocks (
		id TEXT PRIMARY KEY,
		resource_id TEXT REFERENCES sites(id),
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		reason TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		CHECK (end_date >= start_date)
	);

	CREATE INDEX IF NOT EXISTS idx_blocks_dates ON blocks(start_date, end_date);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return err
	}
	return s.addMissingColumns("commitments", addedCommitmentColumns)
}

// addedCommitmentColumns were introduced after the first release; databases
// created before them get the columns added in place.
var addedCommitmentColumns = [][2]string{
	{"vehicle_year", "INTEGER"},
	{"guest_address1", "TEXT NOT NULL DEFAULT ''"},
	{"guest_city", "TEXT NOT NULL DEFAULT ''"},
	{"guest_postal_code", "TEXT NOT NULL DEFAULT ''"},
	{"guest_contact_method", "TEXT NOT NULL DEFAULT ''"},
	{"pending_since", "TEXT"},
}

func (s *Store) addMissingColumns(table string, columns [][2]string) error {
	rows, err := s.db.Query("SELECT name FROM pragma_table_info(?)", table)
	if err != nil {
		return err
	}
	existing := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return err
		}
		existing[name] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, col := range columns {
		if existing[col[0]] {
			continue
		}
		if _, err := s.db.Exec(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, col[0], col[1])); err != nil {
			return fmt.Errorf("add column %s.%s: %w", table, col[0], err)
		}
	}
	return nil
}

// =============================================================================
// SITES
// =============================================================================

func (s *Store) SaveSite(ctx context.Context, site campground.Site) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO sites (id, code, name, site_type, max_guests, max_vehicle_length,
			is_active, sort_order, nightly_rate, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			code = excluded.code,
			name = excluded.name,
			site_type = excluded.site_type,
			max_guests = excluded.max_guests,
			max_vehicle_length = excluded.max_vehicle_length,
			is_active = excluded.is_active,
			sort_order = excluded.sort_order,
			nightly_rate = excluded.nightly_rate,
			notes = excluded.notes,
			updated_at = excluded.updated_at
	`
	_, err := s.q.ExecContext(ctx, query,
		site.ID, site.Code, site.Name, string(site.Type), site.MaxGuests,
		nullInt(site.MaxVehicleLength), site.IsActive, site.SortOrder,
		site.NightlyRate.String(), site.Notes,
		formatTime(site.CreatedAt), formatTime(site.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save site: %w", err)
	}
	return nil
}

const siteColumns = `id, code, name, site_type, max_guests, max_vehicle_length,
	is_active, sort_order, nightly_rate, notes, created_at, updated_at`

// GetSite retrieves a site by ID.
func (s *Store) GetSite(ctx context.Context, id generic.ResourceID) (*campground.Site, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.q.QueryRowContext(ctx, "SELECT "+siteColumns+" FROM sites WHERE id = ?", id)
	site, err := scanSite(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &site, nil
}

// ListSites returns all sites by sort priority.
func (s *Store) ListSites(ctx context.Context) ([]campground.Site, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.q.QueryContext(ctx, "SELECT "+siteColumns+" FROM sites ORDER BY sort_order, id")
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

func scanSite(row scanner) (campground.Site, error) {
	var (
		site                 campground.Site
		siteType             string
		maxVehicle           sql.NullInt64
		rate                 string
		createdAt, updatedAt string
	)
	err := row.Scan(&site.ID, &site.Code, &site.Name, &siteType, &site.MaxGuests, &maxVehicle,
		&site.IsActive, &site.SortOrder, &rate, &site.Notes, &createdAt, &updatedAt)
	if err != nil {
		return campground.Site{}, err
	}
	site.Type = campground.SiteType(siteType)
	site.MaxVehicleLength = intPtr(maxVehicle)
	site.NightlyRate, err = decimal.NewFromString(rate)
	if err != nil {
		return campground.Site{}, fmt.Errorf("site %s: bad nightly rate %q: %w", site.ID, rate, err)
	}
	site.CreatedAt = parseTime(createdAt)
	site.UpdatedAt = parseTime(updatedAt)
	return site, nil
}

// =============================================================================
// COMMITMENTS
// =============================================================================

func (s *Store) CreateCommitment(ctx context.Context, c campground.Commitment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO commitments (id, resource_id, check_in, check_out, status, adults, children,
			vehicle_length, vehicle_year, camping_unit, guest_first_name, guest_last_name, guest_email, guest_phone,
			guest_address1, guest_city, guest_postal_code, guest_contact_method,
			total, payment_ref, archived, pending_since, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.q.ExecContext(ctx, query,
		c.ID, nullString(string(c.ResourceID)), c.CheckIn.String(), c.CheckOut.String(), string(c.Status),
		c.Adults, c.Children, nullInt(c.VehicleLength), nullInt(c.VehicleYear), c.CampingUnit,
		c.Guest.FirstName, c.Guest.LastName, c.Guest.Email, c.Guest.Phone,
		c.Guest.Address1, c.Guest.City, c.Guest.PostalCode, string(c.Guest.ContactMethod),
		c.Total.String(), nullString(c.PaymentRef), c.Archived, nullTime(c.PendingSince),
		formatTime(c.CreatedAt), formatTime(c.UpdatedAt),
	)
	if err != nil {
		return translateWriteError(err, c)
	}
	return nil
}

func (s *Store) UpdateCommitment(ctx context.Context, c campground.Commitment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		UPDATE commitments SET
			resource_id = ?, check_in = ?, check_out = ?, status = ?, adults = ?, children = ?,
			vehicle_length = ?, vehicle_year = ?, camping_unit = ?, guest_first_name = ?, guest_last_name = ?,
			guest_email = ?, guest_phone = ?, guest_address1 = ?, guest_city = ?, guest_postal_code = ?,
			guest_contact_method = ?, total = ?, payment_ref = ?, archived = ?, pending_since = ?, updated_at = ?
		WHERE id = ?
	`
	res, err := s.q.ExecContext(ctx, query,
		nullString(string(c.ResourceID)), c.CheckIn.String(), c.CheckOut.String(), string(c.Status),
		c.Adults, c.Children, nullInt(c.VehicleLength), nullInt(c.VehicleYear), c.CampingUnit,
		c.Guest.FirstName, c.Guest.LastName, c.Guest.Email, c.Guest.Phone,
		c.Guest.Address1, c.Guest.City, c.Guest.PostalCode, string(c.Guest.ContactMethod),
		c.Total.String(), nullString(c.PaymentRef), c.Archived, nullTime(c.PendingSince), formatTime(c.UpdatedAt),
		c.ID,
	)
	if err != nil {
		return translateWriteError(err, c)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("commitment %s: %w", c.ID, generic.ErrNotFound)
	}
	return nil
}

const commitmentColumns = `id, resource_id, check_in, check_out, status, adults, children,
	vehicle_length, vehicle_year, camping_unit, guest_first_name, guest_last_name, guest_email, guest_phone,
	guest_address1, guest_city, guest_postal_code, guest_contact_method,
	total, payment_ref, archived, pending_since, created_at, updated_at`

// GetCommitment retrieves a commitment by ID, archived or not.
func (s *Store) GetCommitment(ctx context.Context, id string) (*campground.Commitment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.q.QueryRowContext(ctx, "SELECT "+commitmentColumns+" FROM commitments WHERE id = ?", id)
	c, err := scanCommitment(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) ListCommitments(ctx context.Context, filter campground.CommitmentFilter) ([]campground.Commitment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		where []string
		args  []any
	)
	if !filter.IncludeArchived {
		where = append(where, "archived = 0")
	}
	if filter.Window != nil {
		where = append(where, "check_in < ? AND check_out > ?")
		args = append(args, filter.Window.End.String(), filter.Window.Start.String())
	}
	if len(filter.Statuses) > 0 {
		marks := make([]string, len(filter.Statuses))
		for i, st := range filter.Statuses {
			marks[i] = "?"
			args = append(args, string(st))
		}
		where = append(where, "status IN ("+strings.Join(marks, ", ")+")")
	}

	query := "SELECT " + commitmentColumns + " FROM commitments"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY check_in, id"

	rows, err := s.q.QueryContext(ctx, query, args...)
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

func scanCommitment(row scanner) (campground.Commitment, error) {
	var (
		c                    campground.Commitment
		resourceID           sql.NullString
		checkIn, checkOut    string
		status               string
		vehicle, year        sql.NullInt64
		contact              string
		total                string
		paymentRef           sql.NullString
		pendingSince         sql.NullString
		createdAt, updatedAt string
	)
	err := row.Scan(&c.ID, &resourceID, &checkIn, &checkOut, &status, &c.Adults, &c.Children,
		&vehicle, &year, &c.CampingUnit, &c.Guest.FirstName, &c.Guest.LastName, &c.Guest.Email, &c.Guest.Phone,
		&c.Guest.Address1, &c.Guest.City, &c.Guest.PostalCode, &contact,
		&total, &paymentRef, &c.Archived, &pendingSince, &createdAt, &updatedAt)
	if err != nil {
		return campground.Commitment{}, err
	}
	c.ResourceID = generic.ResourceID(resourceID.String)
	if c.CheckIn, err = generic.ParseDate(checkIn); err != nil {
		return campground.Commitment{}, err
	}
	if c.CheckOut, err = generic.ParseDate(checkOut); err != nil {
		return campground.Commitment{}, err
	}
	c.Status = campground.CommitmentStatus(status)
	c.VehicleLength = intPtr(vehicle)
	c.VehicleYear = intPtr(year)
	c.Guest.ContactMethod = campground.ContactMethod(contact)
	if c.Total, err = decimal.NewFromString(total); err != nil {
		return campground.Commitment{}, fmt.Errorf("commitment %s: bad total %q: %w", c.ID, total, err)
	}
	c.PaymentRef = paymentRef.String
	if pendingSince.Valid {
		c.PendingSince = parseTime(pendingSince.String)
	}
	c.CreatedAt = parseTime(createdAt)
	c.UpdatedAt = parseTime(updatedAt)
	return c, nil
}

// =============================================================================
// BLOCKS
// =============================================================================

func (s *Store) SaveBlock(ctx context.Context, b campground.Block) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO blocks (id, resource_id, start_date, end_date, reason, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			resource_id = excluded.resource_id,
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			reason = excluded.reason,
			updated_at = excluded.updated_at
	`
	_, err := s.q.ExecContext(ctx, query,
		b.ID, nullString(string(b.ResourceID)), b.Start.String(), b.End.String(), b.Reason,
		formatTime(b.CreatedAt), formatTime(b.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save block: %w", err)
	}
	return nil
}

const blockColumns = `id, resource_id, start_date, end_date, reason, created_at, updated_at`

func (s *Store) GetBlock(ctx context.Context, id string) (*campground.Block, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.q.QueryRowContext(ctx, "SELECT "+blockColumns+" FROM blocks WHERE id = ?", id)
	b, err := scanBlock(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *Store) DeleteBlock(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.q.ExecContext(ctx, "DELETE FROM blocks WHERE id = ?", id)
	return err
}

func (s *Store) ListBlocks(ctx context.Context) ([]campground.Block, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.q.QueryContext(ctx, "SELECT "+blockColumns+" FROM blocks ORDER BY start_date, id")
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

func scanBlock(row scanner) (campground.Block, error) {
	var (
		b                    campground.Block
		resourceID           sql.NullString
		start, end           string
		createdAt, updatedAt string
	)
	if err := row.Scan(&b.ID, &resourceID, &start, &end, &b.Reason, &createdAt, &updatedAt); err != nil {
		return campground.Block{}, err
	}
	var err error
	b.ResourceID = generic.ResourceID(resourceID.String)
	if b.Start, err = generic.ParseDate(start); err != nil {
		return campground.Block{}, err
	}
	if b.End, err = generic.ParseDate(end); err != nil {
		return campground.Block{}, err
	}
	b.CreatedAt = parseTime(createdAt)
	b.UpdatedAt = parseTime(updatedAt)
	return b, nil
}

// =============================================================================
// TRANSACTIONAL STORE (campground.TxStore interface)
// =============================================================================

// WithTx executes a function within a database transaction.
func (s *Store) WithTx(ctx context.Context, fn func(store campground.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	// The outer lock is held for the whole transaction; the view gets its own.
	txStore := &Store{db: s.db, q: sqlTx, mu: &sync.RWMutex{}}
	if err := fn(txStore); err != nil {
		return err
	}

	return sqlTx.Commit()
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"commitments", "blocks", "sites"}
	for _, table := range tables {
		if _, err := s.q.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// nullTime stores a zero time as NULL rather than now.
func nullTime(t time.Time) sql.NullString {
	if t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(time.RFC3339Nano), Valid: true}
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}

// translateWriteError maps the overlap trigger to *generic.OverlapError.
func translateWriteError(err error, c campground.Commitment) error {
	if isOverlapError(err) {
		return &generic.OverlapError{ResourceID: c.ResourceID, Range: c.Range()}
	}
	if isUniqueConstraintError(err) {
		return fmt.Errorf("commitment %s already exists: %w", c.ID, err)
	}
	return fmt.Errorf("failed to write commitment: %w", err)
}

func isOverlapError(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
		return strings.Contains(sqliteErr.Error(), overlapMessage)
	}
	return err != nil && strings.Contains(err.Error(), overlapMessage)
}

func isUniqueConstraintError(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}

var _ campground.TxStore = (*Store)(nil)
