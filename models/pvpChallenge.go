package models

import "gorm.io/gorm"

type PvPStatus string

const (
	ChallengePending   PvPStatus = "PENDING"
	ChallengeOngoing   PvPStatus = "ONGOING"
	ChallengeCompleted PvPStatus = "COMPLETED"
	ChallengeCancelled PvPStatus = "CANCELLED"
)

type PvPMode string

const (
	ModeFriendly PvPMode = "FRIENDLY"
	ModeRanked   PvPMode = "RANKED"
	ModeDuel     PvPMode = "DUEL"
)

// PvPChallenge moves PENDING -> ONGOING while the external judge runs,
// then COMPLETED. Stuck ONGOING rows are cancelled by an admin, never by
// a timeout.
type PvPChallenge struct {
	gorm.Model
	ID           uint  `gorm:"primaryKey"`
	ChallengerID uint  `gorm:"index; not null"`
	OpponentID   uint  `gorm:"index; not null"`
	WinnerID     *uint `gorm:"index"`
	Bet          int64 `gorm:"not null; default:0"`
	Status       PvPStatus `gorm:"size:16; index; not null; default:PENDING"`
	Mode         PvPMode   `gorm:"size:16; not null; default:FRIENDLY"`
	Narrative    string    `gorm:"type:text"`
}
