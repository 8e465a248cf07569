package models

import "gorm.io/gorm"

// InventoryKind tags what an inventory row holds. Exactly one of CardID
// or ItemID is set, matching the kind.
type InventoryKind string

const (
	InventoryCard InventoryKind = "CARD"
	InventoryItem InventoryKind = "ITEM"
)

// Inventory rows are created lazily on first acquisition and deleted when
// quantity reaches zero.
type Inventory struct {
	gorm.Model
	ID       uint          `gorm:"primaryKey"`
	PlayerID uint          `gorm:"index:idx_inv_player_card; index:idx_inv_player_item; not null"`
	Kind     InventoryKind `gorm:"size:8; not null"`
	CardID   *uint         `gorm:"index:idx_inv_player_card"`
	ItemID   *uint         `gorm:"index:idx_inv_player_item"`
	Quantity int           `gorm:"not null; default:0"`
}
