/*
store.go - Persistence interface for the day ledger

PURPOSE:
  Defines the interface between the domain logic and the database.
  The Store persists one settings row, one ledger entry per calendar day,
  and the correction overlay. Different implementations can use SQLite,
  PostgreSQL, or in-memory storage.

KEY INTERFACES:
  Store:   Settings, entry, and correction persistence
  TxStore: Transactional operations (atomic period materialization)

DAY-KEYED CONTRACT:
  Entries are keyed by date. UpsertEntry is the only entry write: the
  same date always lands on the same row. Entries are never deleted
  except through PurgeOrphanEntries, which removes rows left behind by
  a device rename.

REQUIRED-MINUTE COLUMN:
  time_required is a materialized value. Only two code paths write it:
  settings apply and holiday apply (see engine.go). The store itself
  never computes it.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: Production SQLite

SEE ALSO:
  - engine.go: Higher-level operations using Store
  - store/sqlite/sqlite.go: Concrete implementation
*/
package attendance

import "context"

// =============================================================================
// STORE - Interface for settings, entries, and corrections
// =============================================================================

// Store handles persistence of the attendance ledger.
// Lookups that find nothing return (nil, nil); callers translate a nil
// result into the domain's not-found errors.
type Store interface {
	// GetSettings returns the settings row, or nil when none exists yet.
	GetSettings(ctx context.Context) (*Settings, error)

	// SaveSettings creates or replaces the single settings row.
	SaveSettings(ctx context.Context, s Settings) error

	// GetEntry returns the ledger entry for a date, or nil.
	GetEntry(ctx context.Context, date TimePoint) (*Entry, error)

	// GetEntries returns all entries in [p.Start, p.End], ordered by date.
	GetEntries(ctx context.Context, p Period) ([]Entry, error)

	// GetEntriesByDevice returns every entry recorded for a device,
	// ordered by date. Used by the settings-change recompute.
	GetEntriesByDevice(ctx context.Context, deviceID string) ([]Entry, error)

	// GetTimeOffEntries returns entries whose category is a holiday or
	// leave, ordered by date. A nil period means all of them.
	GetTimeOffEntries(ctx context.Context, p *Period) ([]Entry, error)

	// GetEntriesMissingRequired returns entries whose required minutes
	// were never populated (rows written by older versions).
	GetEntriesMissingRequired(ctx context.Context) ([]Entry, error)

	// UpsertEntry creates or replaces the entry for its date.
	UpsertEntry(ctx context.Context, e Entry) error

	// PurgeOrphanEntries deletes entries whose device is not the
	// configured one and returns how many were removed.
	PurgeOrphanEntries(ctx context.Context, deviceID string) (int, error)

	// GetCorrection returns the correction for a date, or nil.
	GetCorrection(ctx context.Context, date TimePoint) (*Correction, error)

	// GetCorrections returns corrections ordered by date. A nil period
	// means all of them.
	GetCorrections(ctx context.Context, p *Period) ([]Correction, error)

	// UpsertCorrection creates or replaces the correction for its date.
	UpsertCorrection(ctx context.Context, c Correction) error

	// DeleteCorrection removes the correction for a date, if any.
	DeleteCorrection(ctx context.Context, date TimePoint) error
}

// =============================================================================
// TRANSACTIONAL STORE - For atomic multi-row writes
// =============================================================================

// TxStore wraps Store with transaction support.
// Period materialization uses this to write a whole date range atomically;
// when the bulk write fails, the engine falls back to row-at-a-time writes
// on the plain Store.
type TxStore interface {
	Store

	// WithTx executes fn within a transaction.
	// If fn returns error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTx(ctx context.Context, fn func(Store) error) error
}
