package models

// Slot is a bookable time window within a day's inventory, keyed by
// (inventory_id, start_time). The provider slot id is kept for
// traceability only.
type Slot struct {
	ID                int64             `gorm:"column:id;primaryKey;autoIncrement"`
	InventoryID       int64             `gorm:"column:inventory_id;not null;uniqueIndex:idx_slots_inventory_start"`
	StartTime         string            `gorm:"column:start_time;not null;uniqueIndex:idx_slots_inventory_start"`
	EndTime           string            `gorm:"column:end_time;not null"`
	ProviderSlotID    string            `gorm:"column:provider_slot_id;not null"`
	Remaining         int               `gorm:"column:remaining;not null;default:0"`
	CurrencyCode      string            `gorm:"column:currency_code;not null"`
	VariantID         int               `gorm:"column:variant_id;not null;default:0"`
	PaxAvailabilities []PaxAvailability `gorm:"foreignKey:SlotID;constraint:OnDelete:CASCADE"`
}
