// Package memory provides an in-memory Store implementation (for testing/dev).
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/farajallah/heartbeat/attendance"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Store keeps the whole ledger in maps. Semantics match store/sqlite:
// lookups that find nothing return (nil, nil), list queries come back
// ordered by date, and correction upserts preserve identity and creation
// time of the existing row.
type Store struct {
	mu          sync.RWMutex
	settings    *attendance.Settings
	entries     map[attendance.TimePoint]attendance.Entry
	corrections map[attendance.TimePoint]attendance.Correction
}

func New() *Store {
	return &Store{
		entries:     make(map[attendance.TimePoint]attendance.Entry),
		corrections: make(map[attendance.TimePoint]attendance.Correction),
	}
}

// =============================================================================
// SETTINGS
// =============================================================================

func (s *Store) GetSettings(_ context.Context) (*attendance.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getSettings(), nil
}

func (s *Store) SaveSettings(_ context.Context, settings attendance.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveSettings(settings)
	return nil
}

func (s *Store) getSettings() *attendance.Settings {
	if s.settings == nil {
		return nil
	}
	copied := *s.settings
	return &copied
}

func (s *Store) saveSettings(settings attendance.Settings) {
	s.settings = &settings
}

// =============================================================================
// ENTRIES
// =============================================================================

func (s *Store) GetEntry(_ context.Context, date attendance.TimePoint) (*attendance.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getEntry(date), nil
}

func (s *Store) GetEntries(_ context.Context, p attendance.Period) ([]attendance.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectEntries(func(e attendance.Entry) bool {
		return p.Contains(e.Date)
	}), nil
}

func (s *Store) GetEntriesByDevice(_ context.Context, deviceID string) ([]attendance.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectEntries(func(e attendance.Entry) bool {
		return e.DeviceID == deviceID
	}), nil
}

func (s *Store) GetTimeOffEntries(_ context.Context, p *attendance.Period) ([]attendance.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectEntries(func(e attendance.Entry) bool {
		if !e.Category.IsTimeOff() {
			return false
		}
		return p == nil || p.Contains(e.Date)
	}), nil
}

// GetEntriesMissingRequired always returns nothing: in-memory entries
// carry their requirement from the moment they are written, so there is
// no unset column to heal.
func (s *Store) GetEntriesMissingRequired(_ context.Context) ([]attendance.Entry, error) {
	return nil, nil
}

func (s *Store) UpsertEntry(_ context.Context, e attendance.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upsertEntry(e)
	return nil
}

func (s *Store) PurgeOrphanEntries(_ context.Context, deviceID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.purgeOrphans(deviceID), nil
}

func (s *Store) getEntry(date attendance.TimePoint) *attendance.Entry {
	e, ok := s.entries[date]
	if !ok {
		return nil
	}
	return &e
}

func (s *Store) selectEntries(match func(attendance.Entry) bool) []attendance.Entry {
	var result []attendance.Entry
	for _, e := range s.entries {
		if match(e) {
			result = append(result, e)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Date.Before(result[j].Date)
	})
	return result
}

func (s *Store) upsertEntry(e attendance.Entry) {
	now := time.Now().UTC()
	if existing, ok := s.entries[e.Date]; ok {
		e.CreatedAt = existing.CreatedAt
	} else {
		e.CreatedAt = now
	}
	e.UpdatedAt = now
	s.entries[e.Date] = e
}

func (s *Store) purgeOrphans(deviceID string) int {
	purged := 0
	for date, e := range s.entries {
		if e.DeviceID != deviceID {
			delete(s.entries, date)
			purged++
		}
	}
	return purged
}

// =============================================================================
// CORRECTIONS
// =============================================================================

func (s *Store) GetCorrection(_ context.Context, date attendance.TimePoint) (*attendance.Correction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getCorrection(date), nil
}

func (s *Store) GetCorrections(_ context.Context, p *attendance.Period) ([]attendance.Correction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []attendance.Correction
	for _, c := range s.corrections {
		if p == nil || p.Contains(c.Date) {
			result = append(result, c)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Date.Before(result[j].Date)
	})
	return result, nil
}

func (s *Store) UpsertCorrection(_ context.Context, c attendance.Correction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upsertCorrection(c)
	return nil
}

func (s *Store) DeleteCorrection(_ context.Context, date attendance.TimePoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.corrections, date)
	return nil
}

func (s *Store) getCorrection(date attendance.TimePoint) *attendance.Correction {
	c, ok := s.corrections[date]
	if !ok {
		return nil
	}
	return &c
}

func (s *Store) upsertCorrection(c attendance.Correction) {
	now := time.Now().UTC()
	if existing, ok := s.corrections[c.Date]; ok {
		c.ID = existing.ID
		c.CreatedAt = existing.CreatedAt
	} else {
		if c.ID == "" {
			c.ID = uuid.NewString()
		}
		c.CreatedAt = now
	}
	c.UpdatedAt = now
	s.corrections[c.Date] = c
}

// Reset wipes settings, entries, and corrections.
func (s *Store) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = nil
	s.entries = make(map[attendance.TimePoint]attendance.Entry)
	s.corrections = make(map[attendance.TimePoint]attendance.Correction)
	return nil
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

// WithTx executes fn within a transaction, simulated with a snapshot that
// is restored when fn fails.
func (s *Store) WithTx(_ context.Context, fn func(attendance.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	view := &txView{parent: s}
	if err := fn(view); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

type memorySnapshot struct {
	settings    *attendance.Settings
	entries     map[attendance.TimePoint]attendance.Entry
	corrections map[attendance.TimePoint]attendance.Correction
}

func (s *Store) snapshot() memorySnapshot {
	snap := memorySnapshot{
		entries:     make(map[attendance.TimePoint]attendance.Entry, len(s.entries)),
		corrections: make(map[attendance.TimePoint]attendance.Correction, len(s.corrections)),
	}
	if s.settings != nil {
		copied := *s.settings
		snap.settings = &copied
	}
	for k, v := range s.entries {
		snap.entries[k] = v
	}
	for k, v := range s.corrections {
		snap.corrections[k] = v
	}
	return snap
}

func (s *Store) restore(snap memorySnapshot) {
	s.settings = snap.settings
	s.entries = snap.entries
	s.corrections = snap.corrections
}

// txView runs against the parent's maps while the parent's mutex is held
// by WithTx, so no method here locks.
type txView struct {
	parent *Store
}

func (tv *txView) GetSettings(_ context.Context) (*attendance.Settings, error) {
	return tv.parent.getSettings(), nil
}

func (tv *txView) SaveSettings(_ context.Context, settings attendance.Settings) error {
	tv.parent.saveSettings(settings)
	return nil
}

func (tv *txView) GetEntry(_ context.Context, date attendance.TimePoint) (*attendance.Entry, error) {
	return tv.parent.getEntry(date), nil
}

func (tv *txView) GetEntries(_ context.Context, p attendance.Period) ([]attendance.Entry, error) {
	return tv.parent.selectEntries(func(e attendance.Entry) bool {
		return p.Contains(e.Date)
	}), nil
}

func (tv *txView) GetEntriesByDevice(_ context.Context, deviceID string) ([]attendance.Entry, error) {
	return tv.parent.selectEntries(func(e attendance.Entry) bool {
		return e.DeviceID == deviceID
	}), nil
}

func (tv *txView) GetTimeOffEntries(_ context.Context, p *attendance.Period) ([]attendance.Entry, error) {
	return tv.parent.selectEntries(func(e attendance.Entry) bool {
		if !e.Category.IsTimeOff() {
			return false
		}
		return p == nil || p.Contains(e.Date)
	}), nil
}

func (tv *txView) GetEntriesMissingRequired(_ context.Context) ([]attendance.Entry, error) {
	return nil, nil
}

func (tv *txView) UpsertEntry(_ context.Context, e attendance.Entry) error {
	tv.parent.upsertEntry(e)
	return nil
}

func (tv *txView) PurgeOrphanEntries(_ context.Context, deviceID string) (int, error) {
	return tv.parent.purgeOrphans(deviceID), nil
}

func (tv *txView) GetCorrection(_ context.Context, date attendance.TimePoint) (*attendance.Correction, error) {
	return tv.parent.getCorrection(date), nil
}

func (tv *txView) GetCorrections(_ context.Context, p *attendance.Period) ([]attendance.Correction, error) {
	var result []attendance.Correction
	for _, c := range tv.parent.corrections {
		if p == nil || p.Contains(c.Date) {
			result = append(result, c)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Date.Before(result[j].Date)
	})
	return result, nil
}

func (tv *txView) UpsertCorrection(_ context.Context, c attendance.Correction) error {
	tv.parent.upsertCorrection(c)
	return nil
}

func (tv *txView) DeleteCorrection(_ context.Context, date attendance.TimePoint) error {
	delete(tv.parent.corrections, date)
	return nil
}
