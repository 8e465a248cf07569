package models

import "gorm.io/gorm"

type CardPool struct {
	gorm.Model
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"index; size:100"`
}

// CardPoolCard links a card into a pool with a relative draw weight.
// Weights do not have to sum to 1; only ratios matter.
type CardPoolCard struct {
	gorm.Model
	ID     uint     `gorm:"primaryKey"`
	PoolID uint     `gorm:"index:idx_pool_card; not null"`
	CardID uint     `gorm:"index:idx_pool_card; not null"`
	Weight float64  `gorm:"not null; default:0"`
	Pool   CardPool `gorm:"foreignKey:PoolID"`
	Card   Card     `gorm:"foreignKey:CardID"`
}
