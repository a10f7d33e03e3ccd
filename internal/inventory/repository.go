package inventory

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/ticketehq/inventory-sync/pkg/db/models"
)

// Repository encapsulates availability persistence. Inventory and slot
// rows are upserted against their natural keys; pax rows are replaced
// wholesale per slot.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an availability repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// EnsureProducts inserts any missing product rows from the allowlist.
// Safe to run repeatedly; existing rows are left untouched.
func (r *Repository) EnsureProducts(ctx context.Context, productIDs []int) error {
	for _, id := range productIDs {
		if err := r.db.WithContext(ctx).
			Exec(`INSERT INTO products (id) VALUES (?) ON CONFLICT (id) DO NOTHING`, id).
			Error; err != nil {
			return err
		}
	}
	return nil
}

// UpsertInventory creates or refreshes the inventory row for (productID, date)
// and returns its id. On update only last_updated is touched.
func (r *Repository) UpsertInventory(ctx context.Context, productID int, date time.Time, lastUpdated time.Time) (int64, error) {
	var row struct {
		ID int64 `gorm:"column:id"`
	}
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO inventories (product_id, date, last_updated)
		VALUES (?, ?, ?)
		ON CONFLICT (product_id, date) DO UPDATE SET last_updated = EXCLUDED.last_updated
		RETURNING id`,
		productID, date.Format(DateLayout), lastUpdated,
	).Scan(&row).Error
	if err != nil {
		return 0, err
	}
	return row.ID, nil
}

// UpsertSlot creates or overwrites the slot keyed by (inventory_id, start_time)
// and returns its id.
func (r *Repository) UpsertSlot(ctx context.Context, slot models.Slot) (int64, error) {
	var row struct {
		ID int64 `gorm:"column:id"`
	}
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO slots (inventory_id, start_time, end_time, provider_slot_id, remaining, currency_code, variant_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (inventory_id, start_time) DO UPDATE SET
			end_time = EXCLUDED.end_time,
			provider_slot_id = EXCLUDED.provider_slot_id,
			remaining = EXCLUDED.remaining,
			currency_code = EXCLUDED.currency_code,
			variant_id = EXCLUDED.variant_id
		RETURNING id`,
		slot.InventoryID, slot.StartTime, slot.EndTime, slot.ProviderSlotID,
		slot.Remaining, slot.CurrencyCode, slot.VariantID,
	).Scan(&row).Error
	if err != nil {
		return 0, err
	}
	return row.ID, nil
}

// ReplaceSlotPax deletes every pax row for the slot and inserts the given
// set, atomically per slot.
func (r *Repository) ReplaceSlotPax(ctx context.Context, slotID int64, rows []models.PaxAvailability) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("slot_id = ?", slotID).Delete(&models.PaxAvailability{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		for i := range rows {
			rows[i].ID = 0
			rows[i].SlotID = slotID
		}
		return tx.Create(&rows).Error
	})
}

// FindInventory loads the inventory for (productID, date) with its slots and
// pax rows. Returns gorm.ErrRecordNotFound when no row exists.
func (r *Repository) FindInventory(ctx context.Context, productID int, date time.Time) (models.Inventory, error) {
	var inv models.Inventory
	err := r.db.WithContext(ctx).
		Preload("Slots", func(db *gorm.DB) *gorm.DB { return db.Order("slots.start_time ASC") }).
		Preload("Slots.PaxAvailabilities", func(db *gorm.DB) *gorm.DB { return db.Order("pax_availabilities.id ASC") }).
		Where("product_id = ? AND date = ?", productID, date.Format(DateLayout)).
		First(&inv).Error
	return inv, err
}

// ListInventoriesBetween returns the product's inventories with date in
// [from, to] inclusive, ordered by date ascending, with slots and pax rows.
func (r *Repository) ListInventoriesBetween(ctx context.Context, productID int, from, to time.Time) ([]models.Inventory, error) {
	var invs []models.Inventory
	err := r.db.WithContext(ctx).
		Preload("Slots", func(db *gorm.DB) *gorm.DB { return db.Order("slots.start_time ASC") }).
		Preload("Slots.PaxAvailabilities", func(db *gorm.DB) *gorm.DB { return db.Order("pax_availabilities.id ASC") }).
		Where("product_id = ? AND date >= ? AND date <= ?", productID, from.Format(DateLayout), to.Format(DateLayout)).
		Order("date ASC").
		Find(&invs).Error
	return invs, err
}
