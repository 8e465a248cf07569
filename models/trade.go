package models

import "gorm.io/gorm"

type TradeStatus string

const (
	TradePending   TradeStatus = "PENDING"
	TradeCompleted TradeStatus = "COMPLETED"
	TradeRejected  TradeStatus = "REJECTED"
	TradeCancelled TradeStatus = "CANCELLED"
)

// Trade offers one card for either another card or currency. Exactly one
// of RequestedCardID and Price is set. Terminal states are immutable.
type Trade struct {
	gorm.Model
	ID              uint `gorm:"primaryKey"`
	ProposerID      uint `gorm:"index; not null"`
	ReceiverID      uint `gorm:"index; not null"`
	OfferedCardID   uint `gorm:"index; not null"`
	RequestedCardID *uint
	Price           *int64
	Status          TradeStatus `gorm:"size:16; index; not null; default:PENDING"`
}
