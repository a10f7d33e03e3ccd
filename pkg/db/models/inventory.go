package models

import "time"

// Inventory is the per-day availability snapshot for one product.
// (product_id, date) is the natural key; rows are upserted by sync and
// never deleted in normal operation.
type Inventory struct {
	ID          int64     `gorm:"column:id;primaryKey;autoIncrement"`
	ProductID   int       `gorm:"column:product_id;not null;uniqueIndex:idx_inventories_product_date"`
	Date        time.Time `gorm:"column:date;type:date;not null;uniqueIndex:idx_inventories_product_date"`
	LastUpdated time.Time `gorm:"column:last_updated;not null"`
	Slots       []Slot    `gorm:"foreignKey:InventoryID;constraint:OnDelete:CASCADE"`
}
