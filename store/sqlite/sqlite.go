/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Implements the persistence interfaces (attendance.Store, attendance.TxStore)
  using SQLite. In production, the same patterns apply to PostgreSQL - only
  minor SQL dialect differences.

INTERFACES IMPLEMENTED:
  attendance.Store:   Settings, day entries, corrections
  attendance.TxStore: Atomic period materialization

KEY TABLES:
  settings:    The single configuration row (id fixed at 1)
  entries:     Day ledger, one row per date (date is the primary key)
  corrections: Minute overrides, one row per date

DAY KEYING:
  entries.date is the primary key, so UpsertEntry can never produce two
  rows for one day. Heartbeats, settings recomputes, and holiday edits all
  converge on the same row.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control handles this instead.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/heartbeat.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  engine := attendance.NewEngine(store)

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - attendance/store.go: Interface definitions
  - attendance/engine.go: Higher-level operations using this store
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/farajallah/heartbeat/attendance"
)

// Store implements the attendance storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
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

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Settings (exactly one row)
	CREATE TABLE IF NOT EXISTS settings (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		device_id TEXT NOT NULL,
		working_days TEXT NOT NULL,
		daily_working_hours TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Day ledger (one row per calendar date)
	CREATE TABLE IF NOT EXISTS entries (
		date TEXT PRIMARY KEY,
		device_id TEXT NOT NULL,
		category INTEGER NOT NULL DEFAULT 0,
		time_recorded INTEGER NOT NULL DEFAULT 0,
		time_required INTEGER,
		description TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_entries_device
		ON entries(device_id);

	-- For the holiday/leave listing (categories 90, 11, 10)
	CREATE INDEX IF NOT EXISTS idx_entries_category
		ON entries(category);

	-- Corrections (minute overrides, one per date)
	CREATE TABLE IF NOT EXISTS corrections (
		id TEXT PRIMARY KEY,
		date TEXT NOT NULL UNIQUE,
		corrected_minutes INTEGER NOT NULL,
		reason TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// db access shared by Store and txStore
type dbConn interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// =============================================================================
// SETTINGS
// =============================================================================

// GetSettings returns the settings row, or nil when none exists.
func (s *Store) GetSettings(ctx context.Context) (*attendance.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.getSettings(ctx, s.db)
}

func (s *Store) getSettings(ctx context.Context, db dbConn) (*attendance.Settings, error) {
	var (
		deviceID    string
		workingDays string
		hours       string
		startDate   string
		endDate     string
		updatedAt   string
	)

	err := db.QueryRowContext(ctx,
		"SELECT device_id, working_days, daily_working_hours, start_date, end_date, updated_at FROM settings WHERE id = 1",
	).Scan(&deviceID, &workingDays, &hours, &startDate, &endDate, &updatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	settings := &attendance.Settings{DeviceID: deviceID}

	// Parsing happens once here; everything past the store sees a
	// normalized working-day set.
	days, err := attendance.ParseWorkingDays(workingDays)
	if err != nil {
		log.Printf("[Store] Unreadable working days %q, falling back to Mon-Fri: %v", workingDays, err)
		days = attendance.DefaultWorkingDays()
	}
	settings.WorkingDays = days

	settings.DailyWorkingHours, err = decimal.NewFromString(hours)
	if err != nil {
		return nil, fmt.Errorf("failed to parse daily working hours %q: %w", hours, err)
	}
	settings.StartDate, err = attendance.ParseDate(startDate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse start date %q: %w", startDate, err)
	}
	settings.EndDate, err = attendance.ParseDate(endDate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse end date %q: %w", endDate, err)
	}
	settings.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)

	return settings, nil
}

// SaveSettings creates or replaces the single settings row.
func (s *Store) SaveSettings(ctx context.Context, settings attendance.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.saveSettings(ctx, s.db, settings)
}

func (s *Store) saveSettings(ctx context.Context, db dbConn, settings attendance.Settings) error {
	query := `
		INSERT INTO settings (id, device_id, working_days, daily_working_hours, start_date, end_date, updated_at)
		VALUES (1, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			device_id = excluded.device_id,
			working_days = excluded.working_days,
			daily_working_hours = excluded.daily_working_hours,
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			updated_at = excluded.updated_at
	`

	_, err := db.ExecContext(ctx, query,
		settings.DeviceID,
		settings.WorkingDays.String(),
		settings.DailyWorkingHours.String(),
		settings.StartDate.String(),
		settings.EndDate.String(),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

// =============================================================================
// DAY ENTRIES
// =============================================================================

const entryColumns = "date, device_id, category, time_recorded, time_required, description, created_at, updated_at"

// GetEntry returns the ledger entry for a date, or nil.
func (s *Store) GetEntry(ctx context.Context, date attendance.TimePoint) (*attendance.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.getEntry(ctx, s.db, date)
}

func (s *Store) getEntry(ctx context.Context, db dbConn, date attendance.TimePoint) (*attendance.Entry, error) {
	entries, err := s.queryEntries(ctx, db,
		"SELECT "+entryColumns+" FROM entries WHERE date = ?", date.String())
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}
	return &entries[0], nil
}

// GetEntries returns all entries in the period, ordered by date.
func (s *Store) GetEntries(ctx context.Context, p attendance.Period) ([]attendance.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryEntries(ctx, s.db,
		"SELECT "+entryColumns+" FROM entries WHERE date >= ? AND date <= ? ORDER BY date ASC",
		p.Start.String(), p.End.String())
}

// GetEntriesByDevice returns every entry for a device, ordered by date.
func (s *Store) GetEntriesByDevice(ctx context.Context, deviceID string) ([]attendance.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryEntries(ctx, s.db,
		"SELECT "+entryColumns+" FROM entries WHERE device_id = ? ORDER BY date ASC", deviceID)
}

// GetTimeOffEntries returns holiday and leave entries (categories 90, 11,
// 10), ordered by date. A nil period means all of them.
func (s *Store) GetTimeOffEntries(ctx context.Context, p *attendance.Period) ([]attendance.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.getTimeOffEntries(ctx, s.db, p)
}

func (s *Store) getTimeOffEntries(ctx context.Context, db dbConn, p *attendance.Period) ([]attendance.Entry, error) {
	query := "SELECT " + entryColumns + " FROM entries WHERE category IN (90, 11, 10)"
	var args []any
	if p != nil {
		query += " AND date >= ? AND date <= ?"
		args = append(args, p.Start.String(), p.End.String())
	}
	query += " ORDER BY date ASC"

	return s.queryEntries(ctx, db, query, args...)
}

// GetEntriesMissingRequired returns entries whose required minutes were
// never populated (rows written by older versions).
func (s *Store) GetEntriesMissingRequired(ctx context.Context) ([]attendance.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryEntries(ctx, s.db,
		"SELECT "+entryColumns+" FROM entries WHERE time_required IS NULL ORDER BY date ASC")
}

// UpsertEntry creates or replaces the entry for its date.
func (s *Store) UpsertEntry(ctx context.Context, e attendance.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.upsertEntry(ctx, s.db, e)
}

func (s *Store) upsertEntry(ctx context.Context, db dbConn, e attendance.Entry) error {
	query := `
		INSERT INTO entries (date, device_id, category, time_recorded, time_required, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
			device_id = excluded.device_id,
			category = excluded.category,
			time_recorded = excluded.time_recorded,
			time_required = excluded.time_required,
			description = excluded.description,
			updated_at = excluded.updated_at
	`

	now := time.Now().UTC().Format(time.RFC3339)
	_, err := db.ExecContext(ctx, query,
		e.Date.String(),
		e.DeviceID,
		int(e.Category),
		e.TimeRecorded,
		e.TimeRequired,
		nullString(e.Description),
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert entry %s: %w", e.Date, err)
	}
	return nil
}

// PurgeOrphanEntries deletes entries recorded under a device other than
// the configured one and returns how many were removed.
func (s *Store) PurgeOrphanEntries(ctx context.Context, deviceID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM entries WHERE device_id != ?", deviceID)
	if err != nil {
		return 0, fmt.Errorf("failed to purge orphan entries: %w", err)
	}
	purged, _ := res.RowsAffected()
	return int(purged), nil
}

func (s *Store) queryEntries(ctx context.Context, db dbConn, query string, args ...any) ([]attendance.Entry, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	var entries []attendance.Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

func scanEntry(rows *sql.Rows) (attendance.Entry, error) {
	var (
		e            attendance.Entry
		date         string
		category     int
		timeRequired sql.NullInt64
		description  sql.NullString
		createdAt    string
		updatedAt    string
	)

	err := rows.Scan(&date, &e.DeviceID, &category, &e.TimeRecorded,
		&timeRequired, &description, &createdAt, &updatedAt)
	if err != nil {
		return e, fmt.Errorf("failed to scan entry: %w", err)
	}

	e.Date, err = attendance.ParseDate(date)
	if err != nil {
		return e, fmt.Errorf("failed to parse entry date %q: %w", date, err)
	}
	e.Category = attendance.Category(category)
	e.TimeRequired = int(timeRequired.Int64)
	e.Description = description.String
	e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	e.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)

	return e, nil
}

// =============================================================================
// CORRECTIONS
// =============================================================================

const correctionColumns = "id, date, corrected_minutes, reason, created_at, updated_at"

// GetCorrection returns the correction for a date, or nil.
func (s *Store) GetCorrection(ctx context.Context, date attendance.TimePoint) (*attendance.Correction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	corrections, err := s.queryCorrections(ctx, s.db,
		"SELECT "+correctionColumns+" FROM corrections WHERE date = ?", date.String())
	if err != nil {
		return nil, err
	}
	if len(corrections) == 0 {
		return nil, nil
	}
	return &corrections[0], nil
}

// GetCorrections returns corrections ordered by date. A nil period means
// all of them.
func (s *Store) GetCorrections(ctx context.Context, p *attendance.Period) ([]attendance.Correction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT " + correctionColumns + " FROM corrections"
	var args []any
	if p != nil {
		query += " WHERE date >= ? AND date <= ?"
		args = append(args, p.Start.String(), p.End.String())
	}
	query += " ORDER BY date ASC"

	return s.queryCorrections(ctx, s.db, query, args...)
}

// UpsertCorrection creates or replaces the correction for its date. New
// rows get a generated ID; re-corrected dates keep their original ID and
// creation time.
func (s *Store) UpsertCorrection(ctx context.Context, c attendance.Correction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.upsertCorrection(ctx, s.db, c)
}

func (s *Store) upsertCorrection(ctx context.Context, db dbConn, c attendance.Correction) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}

	query := `
		INSERT INTO corrections (id, date, corrected_minutes, reason, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
			corrected_minutes = excluded.corrected_minutes,
			reason = excluded.reason,
			updated_at = excluded.updated_at
	`

	now := time.Now().UTC().Format(time.RFC3339)
	_, err := db.ExecContext(ctx, query,
		c.ID,
		c.Date.String(),
		c.CorrectedMinutes,
		nullString(c.Reason),
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert correction %s: %w", c.Date, err)
	}
	return nil
}

// DeleteCorrection removes the correction for a date, if any.
func (s *Store) DeleteCorrection(ctx context.Context, date attendance.TimePoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM corrections WHERE date = ?", date.String())
	if err != nil {
		return fmt.Errorf("failed to delete correction %s: %w", date, err)
	}
	return nil
}

func (s *Store) queryCorrections(ctx context.Context, db dbConn, query string, args ...any) ([]attendance.Correction, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query corrections: %w", err)
	}
	defer rows.Close()

	var corrections []attendance.Correction
	for rows.Next() {
		var (
			c         attendance.Correction
			date      string
			reason    sql.NullString
			createdAt string
			updatedAt string
		)
		if err := rows.Scan(&c.ID, &date, &c.CorrectedMinutes, &reason, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan correction: %w", err)
		}
		c.Date, err = attendance.ParseDate(date)
		if err != nil {
			return nil, fmt.Errorf("failed to parse correction date %q: %w", date, err)
		}
		c.Reason = reason.String
		c.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		c.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		corrections = append(corrections, c)
	}

	return corrections, rows.Err()
}

// =============================================================================
// TRANSACTIONAL STORE (attendance.TxStore interface)
// =============================================================================

// WithTx executes a function within a database transaction.
func (s *Store) WithTx(ctx context.Context, fn func(store attendance.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	txStore := &txStore{tx: sqlTx, parent: s}
	if err := fn(txStore); err != nil {
		return err
	}

	return sqlTx.Commit()
}

// txStore runs every operation on the open transaction. The parent's
// mutex is already held by WithTx, so no method here locks.
type txStore struct {
	tx     *sql.Tx
	parent *Store
}

func (ts *txStore) GetSettings(ctx context.Context) (*attendance.Settings, error) {
	return ts.parent.getSettings(ctx, ts.tx)
}

func (ts *txStore) SaveSettings(ctx context.Context, settings attendance.Settings) error {
	return ts.parent.saveSettings(ctx, ts.tx, settings)
}

func (ts *txStore) GetEntry(ctx context.Context, date attendance.TimePoint) (*attendance.Entry, error) {
	return ts.parent.getEntry(ctx, ts.tx, date)
}

func (ts *txStore) GetEntries(ctx context.Context, p attendance.Period) ([]attendance.Entry, error) {
	return ts.parent.queryEntries(ctx, ts.tx,
		"SELECT "+entryColumns+" FROM entries WHERE date >= ? AND date <= ? ORDER BY date ASC",
		p.Start.String(), p.End.String())
}

func (ts *txStore) GetEntriesByDevice(ctx context.Context, deviceID string) ([]attendance.Entry, error) {
	return ts.parent.queryEntries(ctx, ts.tx,
		"SELECT "+entryColumns+" FROM entries WHERE device_id = ? ORDER BY date ASC", deviceID)
}

func (ts *txStore) GetTimeOffEntries(ctx context.Context, p *attendance.Period) ([]attendance.Entry, error) {
	return ts.parent.getTimeOffEntries(ctx, ts.tx, p)
}

func (ts *txStore) GetEntriesMissingRequired(ctx context.Context) ([]attendance.Entry, error) {
	return ts.parent.queryEntries(ctx, ts.tx,
		"SELECT "+entryColumns+" FROM entries WHERE time_required IS NULL ORDER BY date ASC")
}

func (ts *txStore) UpsertEntry(ctx context.Context, e attendance.Entry) error {
	return ts.parent.upsertEntry(ctx, ts.tx, e)
}

func (ts *txStore) PurgeOrphanEntries(ctx context.Context, deviceID string) (int, error) {
	res, err := ts.tx.ExecContext(ctx, "DELETE FROM entries WHERE device_id != ?", deviceID)
	if err != nil {
		return 0, fmt.Errorf("failed to purge orphan entries: %w", err)
	}
	purged, _ := res.RowsAffected()
	return int(purged), nil
}

func (ts *txStore) GetCorrection(ctx context.Context, date attendance.TimePoint) (*attendance.Correction, error) {
	corrections, err := ts.parent.queryCorrections(ctx, ts.tx,
		"SELECT "+correctionColumns+" FROM corrections WHERE date = ?", date.String())
	if err != nil {
		return nil, err
	}
	if len(corrections) == 0 {
		return nil, nil
	}
	return &corrections[0], nil
}

func (ts *txStore) GetCorrections(ctx context.Context, p *attendance.Period) ([]attendance.Correction, error) {
	query := "SELECT " + correctionColumns + " FROM corrections"
	var args []any
	if p != nil {
		query += " WHERE date >= ? AND date <= ?"
		args = append(args, p.Start.String(), p.End.String())
	}
	query += " ORDER BY date ASC"
	return ts.parent.queryCorrections(ctx, ts.tx, query, args...)
}

func (ts *txStore) UpsertCorrection(ctx context.Context, c attendance.Correction) error {
	return ts.parent.upsertCorrection(ctx, ts.tx, c)
}

func (ts *txStore) DeleteCorrection(ctx context.Context, date attendance.TimePoint) error {
	_, err := ts.tx.ExecContext(ctx, "DELETE FROM corrections WHERE date = ?", date.String())
	if err != nil {
		return fmt.Errorf("failed to delete correction %s: %w", date, err)
	}
	return nil
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"entries", "corrections", "settings"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
