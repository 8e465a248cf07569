package models

import "gorm.io/gorm"

// DeckCard assigns a card to one of a player's six deck positions.
// At most one live row per (player, position); the service layer replaces
// the occupant rather than relying on a unique index, since rows are
// soft-deleted.
type DeckCard struct {
	gorm.Model
	ID       uint `gorm:"primaryKey"`
	PlayerID uint `gorm:"index:idx_deck_player_pos; index:idx_deck_player_card; not null"`
	Position int  `gorm:"index:idx_deck_player_pos; not null"`
	CardID   uint `gorm:"index:idx_deck_player_card; not null"`
	Card     Card `gorm:"foreignKey:CardID"`
}

const DeckSize = 6
