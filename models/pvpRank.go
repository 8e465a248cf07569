package models

import (
	"time"

	"gorm.io/gorm"
)

// PvPRank is a player's weekly leaderboard row. Created lazily with 50
// points on first access for a (player, week).
type PvPRank struct {
	gorm.Model
	ID             uint `gorm:"primaryKey"`
	PlayerID       uint `gorm:"index:idx_rank_player_week; not null"`
	Week           int  `gorm:"index:idx_rank_player_week; index; not null"`
	Points         int  `gorm:"not null; default:50"`
	ScoreUpdatedAt time.Time
	DailyPlays     int `gorm:"not null; default:0"`
	LastPlayDate   *time.Time
	DailyBetAmount int64 `gorm:"not null; default:0"`
	LastBetDate    *time.Time
}
