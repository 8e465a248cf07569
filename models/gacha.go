package models

import "gorm.io/gorm"

// GachaPity tracks pulls since the last SSR-or-higher hit, per player per pool.
type GachaPity struct {
	gorm.Model
	ID        uint `gorm:"primaryKey"`
	PlayerID  uint `gorm:"index:idx_pity_player_pool; not null"`
	PoolID    uint `gorm:"index:idx_pity_player_pool; not null"`
	PityCount int  `gorm:"not null; default:0"`
}

// GachaPull is an append-only record of a single draw.
type GachaPull struct {
	gorm.Model
	ID       uint `gorm:"primaryKey"`
	PlayerID uint `gorm:"index; not null"`
	PoolID   uint `gorm:"index; not null"`
	CardID   uint `gorm:"index; not null"`
	WasPity  bool
}
