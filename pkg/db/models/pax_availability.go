package models

import "github.com/shopspring/decimal"

// PaxAvailability holds the price and capacity terms for one passenger
// type within a slot. Rows are replaced wholesale on every reconciliation
// of their slot, never patched field by field.
type PaxAvailability struct {
	ID            int64           `gorm:"column:id;primaryKey;autoIncrement"`
	SlotID        int64           `gorm:"column:slot_id;not null;index"`
	Type          string          `gorm:"column:type;not null"`
	Name          string          `gorm:"column:name;not null"`
	Description   string          `gorm:"column:description;not null;default:''"`
	Min           int             `gorm:"column:min;not null;default:0"`
	Max           int             `gorm:"column:max;not null;default:0"`
	Remaining     int             `gorm:"column:remaining;not null;default:0"`
	FinalPrice    decimal.Decimal `gorm:"column:final_price;type:numeric(12,2);not null"`
	OriginalPrice decimal.Decimal `gorm:"column:original_price;type:numeric(12,2);not null"`
	CurrencyCode  string          `gorm:"column:currency_code;not null"`
}
