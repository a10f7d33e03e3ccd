package inventory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/ticketehq/inventory-sync/pkg/db/models"
)

// fakeStore is an in-memory stand-in for Repository used by reconciler
// and query tests.
type fakeStore struct {
	inventories map[string]*models.Inventory // productID|date -> row
	slots       map[int64]*models.Slot
	pax         map[int64][]models.PaxAvailability

	nextInventoryID int64
	nextSlotID      int64

	failSlotStartTime string // UpsertSlot fails when asked to store this start time
	failReplacePax    bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		inventories: map[string]*models.Inventory{},
		slots:       map[int64]*models.Slot{},
		pax:         map[int64][]models.PaxAvailability{},
	}
}

func invKey(productID int, date time.Time) string {
	return fmt.Sprintf("%d|%s", productID, date.Format(DateLayout))
}

func (f *fakeStore) UpsertInventory(_ context.Context, productID int, date time.Time, lastUpdated time.Time) (int64, error) {
	key := invKey(productID, date)
	if existing, ok := f.inventories[key]; ok {
		existing.LastUpdated = lastUpdated
		return existing.ID, nil
	}
	f.nextInventoryID++
	day, _ := time.Parse(DateLayout, date.Format(DateLayout))
	f.inventories[key] = &models.Inventory{
		ID:          f.nextInventoryID,
		ProductID:   productID,
		Date:        day,
		LastUpdated: lastUpdated,
	}
	return f.nextInventoryID, nil
}

func (f *fakeStore) UpsertSlot(_ context.Context, slot models.Slot) (int64, error) {
	if f.failSlotStartTime != "" && slot.StartTime == f.failSlotStartTime {
		return 0, fmt.Errorf("connection reset while upserting slot %s", slot.StartTime)
	}
	for id, existing := range f.slots {
		if existing.InventoryID == slot.InventoryID && existing.StartTime == slot.StartTime {
			slot.ID = id
			f.slots[id] = &slot
			return id, nil
		}
	}
	f.nextSlotID++
	slot.ID = f.nextSlotID
	f.slots[slot.ID] = &slot
	return slot.ID, nil
}

func (f *fakeStore) ReplaceSlotPax(_ context.Context, slotID int64, rows []models.PaxAvailability) error {
	if f.failReplacePax {
		return fmt.Errorf("pax insert failed")
	}
	stored := make([]models.PaxAvailability, len(rows))
	copy(stored, rows)
	for i := range stored {
		stored[i].SlotID = slotID
	}
	f.pax[slotID] = stored
	return nil
}

func (f *fakeStore) FindInventory(_ context.Context, productID int, date time.Time) (models.Inventory, error) {
	row, ok := f.inventories[invKey(productID, date)]
	if !ok {
		return models.Inventory{}, gorm.ErrRecordNotFound
	}
	inv := *row
	inv.Slots = f.slotsForInventory(inv.ID)
	return inv, nil
}

func (f *fakeStore) ListInventoriesBetween(_ context.Context, productID int, from, to time.Time) ([]models.Inventory, error) {
	var invs []models.Inventory
	for _, row := range f.inventories {
		if row.ProductID != productID {
			continue
		}
		if row.Date.Before(from) || row.Date.After(to) {
			continue
		}
		inv := *row
		inv.Slots = f.slotsForInventory(inv.ID)
		invs = append(invs, inv)
	}
	sort.Slice(invs, func(i, j int) bool { return invs[i].Date.Before(invs[j].Date) })
	return invs, nil
}

func (f *fakeStore) slotsForInventory(inventoryID int64) []models.Slot {
	var slots []models.Slot
	for _, slot := range f.slots {
		if slot.InventoryID != inventoryID {
			continue
		}
		s := *slot
		s.PaxAvailabilities = append([]models.PaxAvailability(nil), f.pax[s.ID]...)
		slots = append(slots, s)
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i].StartTime < slots[j].StartTime })
	return slots
}
