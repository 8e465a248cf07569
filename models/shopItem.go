package models

import "gorm.io/gorm"

type ShopItemType string

const (
	ShopItemCard ShopItemType = "CARD"
	ShopItemMisc ShopItemType = "ITEM"
)

// ShopItem is a purchasable listing. Card listings point at the card they
// grant; the rate weights how often the item appears in the rotating shop.
type ShopItem struct {
	gorm.Model
	ID     uint         `gorm:"primaryKey"`
	Name   string       `gorm:"index; size:100"`
	Price  int64        `gorm:"not null"`
	Type   ShopItemType `gorm:"size:8; not null"`
	Rate   float64      `gorm:"not null; default:1"`
	CardID *uint        `gorm:"index"`
}
