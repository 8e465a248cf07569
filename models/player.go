package models

import "gorm.io/gorm"

type Player struct {
	gorm.Model
	ID        uint   `gorm:"primaryKey"`
	DiscordID string `gorm:"uniqueIndex; size:64"`
	Name      *string
	IsAdmin   bool
	Currency  int64 `gorm:"not null; default:0"`
}
