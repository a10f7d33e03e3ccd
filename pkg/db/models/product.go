package models

import "time"

// Product is a bookable experience from the provider catalog.
// IDs are assigned upstream, not generated locally.
type Product struct {
	ID          int         `gorm:"column:id;primaryKey"`
	Inventories []Inventory `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time   `gorm:"column:created_at;autoCreateTime"`
}
