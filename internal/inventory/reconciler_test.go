package inventory

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ticketehq/inventory-sync/internal/provider"
	pkgerrors "github.com/ticketehq/inventory-sync/pkg/errors"
	"github.com/ticketehq/inventory-sync/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func fixedNow() time.Time {
	return time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC)
}

func sampleSlots() []provider.SlotData {
	return []provider.SlotData{
		{
			StartTime:      "10:00",
			EndTime:        "11:00",
			ProviderSlotID: "slot-a",
			Remaining:      8,
			CurrencyCode:   "SGD",
			VariantID:      1,
			PaxAvailability: []provider.PaxAvailability{
				{
					Type: "ADULT", Name: "Adult", Min: 1, Max: 6, Remaining: 8,
					Price: provider.Price{
						FinalPrice:    decimal.RequireFromString("12.00"),
						OriginalPrice: decimal.RequireFromString("15.00"),
						CurrencyCode:  "SGD",
					},
				},
				{
					Type: "CHILD", Name: "Child", Min: 1, Max: 6, Remaining: 8,
					Price: provider.Price{
						FinalPrice:    decimal.RequireFromString("9.50"),
						OriginalPrice: decimal.RequireFromString("9.50"),
						CurrencyCode:  "SGD",
					},
				},
			},
		},
		{
			StartTime:      "14:00",
			EndTime:        "15:00",
			ProviderSlotID: "slot-b",
			Remaining:      3,
			CurrencyCode:   "SGD",
			VariantID:      1,
			PaxAvailability: []provider.PaxAvailability{
				{
					Type: "ADULT", Name: "Adult", Min: 1, Max: 6, Remaining: 3,
					Price: provider.Price{
						FinalPrice:    decimal.RequireFromString("15.00"),
						OriginalPrice: decimal.RequireFromString("15.00"),
						CurrencyCode:  "SGD",
					},
				},
			},
		},
	}
}

func TestNewReconcilerRequiresDependencies(t *testing.T) {
	if _, err := NewReconciler(ReconcilerParams{Logger: testLogger()}); err == nil {
		t.Fatal("expected error when store is missing")
	}
	if _, err := NewReconciler(ReconcilerParams{Store: newFakeStore()}); err == nil {
		t.Fatal("expected error when logger is missing")
	}
}

func TestReconcileStoresFetchedSlots(t *testing.T) {
	store := newFakeStore()
	rec, err := NewReconciler(ReconcilerParams{Store: store, Logger: testLogger(), Now: fixedNow})
	if err != nil {
		t.Fatalf("NewReconciler: %v", err)
	}

	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	if err := rec.Reconcile(context.Background(), 14, date, sampleSlots()); err != nil {
		t.Fatalf("Reconcile: %v", err)
	}

	inv, err := store.FindInventory(context.Background(), 14, date)
	if err != nil {
		t.Fatalf("FindInventory: %v", err)
	}
	if !inv.LastUpdated.Equal(fixedNow()) {
		t.Fatalf("last updated = %v, want %v", inv.LastUpdated, fixedNow())
	}
	if len(inv.Slots) != 2 {
		t.Fatalf("stored %d slots, want 2", len(inv.Slots))
	}
	if inv.Slots[0].StartTime != "10:00" || inv.Slots[1].StartTime != "14:00" {
		t.Fatalf("unexpected slot order: %s, %s", inv.Slots[0].StartTime, inv.Slots[1].StartTime)
	}
	if got := len(inv.Slots[0].PaxAvailabilities); got != 2 {
		t.Fatalf("first slot has %d pax rows, want 2", got)
	}
}

func TestReconcileIsIdempotent(t *testing.T) {
	store := newFakeStore()
	rec, err := NewReconciler(ReconcilerParams{Store: store, Logger: testLogger(), Now: fixedNow})
	if err != nil {
		t.Fatalf("NewReconciler: %v", err)
	}

	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	slots := sampleSlots()
	if err := rec.Reconcile(context.Background(), 14, date, slots); err != nil {
		t.Fatalf("first Reconcile: %v", err)
	}
	firstID := store.inventories[invKey(14, date)].ID

	if err := rec.Reconcile(context.Background(), 14, date, slots); err != nil {
		t.Fatalf("second Reconcile: %v", err)
	}

	if got := store.inventories[invKey(14, date)].ID; got != firstID {
		t.Fatalf("inventory id changed across runs: %d -> %d", firstID, got)
	}
	inv, _ := store.FindInventory(context.Background(), 14, date)
	if len(inv.Slots) != 2 {
		t.Fatalf("stored %d slots after rerun, want 2", len(inv.Slots))
	}
	for _, slot := range inv.Slots {
		for _, p := range slot.PaxAvailabilities {
			if p.SlotID != slot.ID {
				t.Fatalf("pax row points at slot %d, want %d", p.SlotID, slot.ID)
			}
		}
	}
}

func TestReconcileReplacesPaxWholesale(t *testing.T) {
	store := newFakeStore()
	rec, err := NewReconciler(ReconcilerParams{Store: store, Logger: testLogger(), Now: fixedNow})
	if err != nil {
		t.Fatalf("NewReconciler: %v", err)
	}

	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	if err := rec.Reconcile(context.Background(), 14, date, sampleSlots()); err != nil {
		t.Fatalf("first Reconcile: %v", err)
	}

	// Second pull drops the child pax type and lowers remaining.
	updated := sampleSlots()[:1]
	updated[0].PaxAvailability = updated[0].PaxAvailability[:1]
	updated[0].Remaining = 2
	if err := rec.Reconcile(context.Background(), 14, date, updated); err != nil {
		t.Fatalf("second Reconcile: %v", err)
	}

	inv, _ := store.FindInventory(context.Background(), 14, date)
	idx := -1
	for i, slot := range inv.Slots {
		if slot.StartTime == "10:00" {
			idx = i
		}
	}
	if idx == -1 {
		t.Fatal("10:00 slot missing after second run")
	}
	slot := inv.Slots[idx]
	if slot.Remaining != 2 {
		t.Fatalf("remaining = %d, want 2", slot.Remaining)
	}
	if len(slot.PaxAvailabilities) != 1 {
		t.Fatalf("pax rows = %d, want exactly the new set of 1", len(slot.PaxAvailabilities))
	}
	if slot.PaxAvailabilities[0].Type != "ADULT" {
		t.Fatalf("surviving pax type = %s, want ADULT", slot.PaxAvailabilities[0].Type)
	}
}

func TestReconcileEmptyInputKeepsExistingRows(t *testing.T) {
	store := newFakeStore()
	rec, err := NewReconciler(ReconcilerParams{Store: store, Logger: testLogger(), Now: fixedNow})
	if err != nil {
		t.Fatalf("NewReconciler: %v", err)
	}

	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	if err := rec.Reconcile(context.Background(), 14, date, sampleSlots()); err != nil {
		t.Fatalf("seed Reconcile: %v", err)
	}

	if err := rec.Reconcile(context.Background(), 14, date, nil); err != nil {
		t.Fatalf("empty Reconcile: %v", err)
	}

	inv, err := store.FindInventory(context.Background(), 14, date)
	if err != nil {
		t.Fatalf("FindInventory: %v", err)
	}
	if len(inv.Slots) != 2 {
		t.Fatalf("stored %d slots after empty pull, want 2 untouched", len(inv.Slots))
	}
}

func TestReconcileStorageFailureReturnsPersistError(t *testing.T) {
	store := newFakeStore()
	store.failSlotStartTime = "14:00"
	rec, err := NewReconciler(ReconcilerParams{Store: store, Logger: testLogger(), Now: fixedNow})
	if err != nil {
		t.Fatalf("NewReconciler: %v", err)
	}

	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	err = rec.Reconcile(context.Background(), 14, date, sampleSlots())
	if err == nil {
		t.Fatal("expected persist error")
	}
	if !pkgerrors.Is(err, pkgerrors.CodePersist) {
		t.Fatalf("error code mismatch: %v", err)
	}

	// The slot applied before the failure stays committed.
	inv, findErr := store.FindInventory(context.Background(), 14, date)
	if findErr != nil {
		t.Fatalf("FindInventory: %v", findErr)
	}
	if len(inv.Slots) != 1 || inv.Slots[0].StartTime != "10:00" {
		t.Fatalf("expected only the 10:00 slot committed, got %d slots", len(inv.Slots))
	}
}
