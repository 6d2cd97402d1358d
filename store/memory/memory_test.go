package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/farajallah/heartbeat/attendance"
	"github.com/farajallah/heartbeat/store/memory"
)

func workday(day, recorded int) attendance.Entry {
	return attendance.Entry{
		Date:         attendance.NewTimePoint(2024, time.June, day),
		DeviceID:     "LAPTOP-01",
		Category:     attendance.CategoryWorkday,
		TimeRecorded: recorded,
		TimeRequired: 480,
	}
}

func TestGetEntries_SortedDespiteMapStorage(t *testing.T) {
	// GIVEN: Entries inserted out of order
	// WHEN: Listing the period
	// THEN: Rows come back date-ordered, like the sqlite store

	store := memory.New()
	ctx := context.Background()

	for _, day := range []int{10, 3, 7} {
		if err := store.UpsertEntry(ctx, workday(day, 480)); err != nil {
			t.Fatalf("Failed to upsert: %v", err)
		}
	}

	entries, err := store.GetEntries(ctx, attendance.Period{
		Start: attendance.NewTimePoint(2024, time.June, 1),
		End:   attendance.NewTimePoint(2024, time.June, 30),
	})
	if err != nil {
		t.Fatalf("Failed to list: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(entries))
	}
	for i, want := range []string{"2024-06-03", "2024-06-07", "2024-06-10"} {
		if got := entries[i].Date.String(); got != want {
			t.Errorf("Expected %s at position %d, got %s", want, i, got)
		}
	}
}

func TestUpsertEntry_PreservesCreationTime(t *testing.T) {
	// GIVEN: An existing entry
	// WHEN: Replacing it
	// THEN: CreatedAt survives, UpdatedAt moves

	store := memory.New()
	ctx := context.Background()
	date := attendance.NewTimePoint(2024, time.June, 3)

	if err := store.UpsertEntry(ctx, workday(3, 100)); err != nil {
		t.Fatalf("Failed to upsert: %v", err)
	}
	first, _ := store.GetEntry(ctx, date)

	if err := store.UpsertEntry(ctx, workday(3, 480)); err != nil {
		t.Fatalf("Failed to upsert: %v", err)
	}
	second, _ := store.GetEntry(ctx, date)

	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Errorf("Expected CreatedAt to survive, got %v then %v", first.CreatedAt, second.CreatedAt)
	}
	if second.UpdatedAt.Before(second.CreatedAt) {
		t.Errorf("Expected UpdatedAt >= CreatedAt, got %v < %v", second.UpdatedAt, second.CreatedAt)
	}
	if second.TimeRecorded != 480 {
		t.Errorf("Expected the replacement values, got %d", second.TimeRecorded)
	}
}

func TestUpsertCorrection_KeepsOriginalIdentity(t *testing.T) {
	// GIVEN: A correction stored for a date
	// WHEN: Correcting the date again, even with a different ID
	// THEN: The original ID wins

	store := memory.New()
	ctx := context.Background()
	date := attendance.NewTimePoint(2024, time.June, 3)

	if err := store.UpsertCorrection(ctx, attendance.Correction{
		Date:             date,
		CorrectedMinutes: 480,
	}); err != nil {
		t.Fatalf("Failed to upsert: %v", err)
	}
	first, _ := store.GetCorrection(ctx, date)
	if first.ID == "" {
		t.Fatal("Expected a generated ID")
	}

	if err := store.UpsertCorrection(ctx, attendance.Correction{
		ID:               "intruder",
		Date:             date,
		CorrectedMinutes: 450,
	}); err != nil {
		t.Fatalf("Failed to upsert: %v", err)
	}
	second, _ := store.GetCorrection(ctx, date)

	if second.ID != first.ID {
		t.Errorf("Expected %q to survive, got %q", first.ID, second.ID)
	}
	if second.CorrectedMinutes != 450 {
		t.Errorf("Expected the new minutes, got %d", second.CorrectedMinutes)
	}
}

func TestWithTx_RestoresSnapshotOnError(t *testing.T) {
	// GIVEN: A ledger with one entry and settings
	// WHEN: A transaction writes more and then fails
	// THEN: Every write inside the transaction is undone

	store := memory.New()
	ctx := context.Background()
	boom := errors.New("boom")

	if err := store.SaveSettings(ctx, attendance.Settings{
		DeviceID:          "LAPTOP-01",
		WorkingDays:       attendance.DefaultWorkingDays(),
		DailyWorkingHours: decimal.NewFromInt(8),
		StartDate:         attendance.NewTimePoint(2024, time.June, 1),
		EndDate:           attendance.NewTimePoint(2024, time.June, 30),
	}); err != nil {
		t.Fatalf("Failed to save settings: %v", err)
	}
	if err := store.UpsertEntry(ctx, workday(3, 480)); err != nil {
		t.Fatalf("Failed to upsert: %v", err)
	}

	err := store.WithTx(ctx, func(tx attendance.Store) error {
		if err := tx.UpsertEntry(ctx, workday(4, 200)); err != nil {
			return err
		}
		settings, _ := tx.GetSettings(ctx)
		settings.DeviceID = "INTRUDER"
		if err := tx.SaveSettings(ctx, *settings); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Expected the callback error, got %v", err)
	}

	if e, _ := store.GetEntry(ctx, attendance.NewTimePoint(2024, time.June, 4)); e != nil {
		t.Error("Expected the transactional write to be rolled back")
	}
	if e, _ := store.GetEntry(ctx, attendance.NewTimePoint(2024, time.June, 3)); e == nil {
		t.Error("Expected the pre-transaction entry to survive")
	}
	settings, _ := store.GetSettings(ctx)
	if settings.DeviceID != "LAPTOP-01" {
		t.Errorf("Expected the original settings, got %q", settings.DeviceID)
	}
}

func TestWithTx_KeepsWritesOnSuccess(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	err := store.WithTx(ctx, func(tx attendance.Store) error {
		return tx.UpsertEntry(ctx, workday(3, 480))
	})
	if err != nil {
		t.Fatalf("WithTx failed: %v", err)
	}

	if e, _ := store.GetEntry(ctx, attendance.NewTimePoint(2024, time.June, 3)); e == nil {
		t.Error("Expected the committed entry to be visible")
	}
}

func TestReset_ClearsEverything(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	if err := store.SaveSettings(ctx, attendance.Settings{DeviceID: "LAPTOP-01"}); err != nil {
		t.Fatalf("Failed to save settings: %v", err)
	}
	if err := store.UpsertEntry(ctx, workday(3, 480)); err != nil {
		t.Fatalf("Failed to upsert: %v", err)
	}

	if err := store.Reset(ctx); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}

	if settings, _ := store.GetSettings(ctx); settings != nil {
		t.Error("Expected settings to be cleared")
	}
	entries, _ := store.GetEntries(ctx, attendance.Period{
		Start: attendance.NewTimePoint(2024, time.June, 1),
		End:   attendance.NewTimePoint(2024, time.June, 30),
	})
	if len(entries) != 0 {
		t.Errorf("Expected an empty ledger, got %d rows", len(entries))
	}
}
