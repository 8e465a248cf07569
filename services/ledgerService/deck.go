package ledgerService

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"gachaCardBot/models"
	"gachaCardBot/services/common"
)

// PlayerDeck returns a player's deck ordered by position, card preloaded.
func PlayerDeck(db *gorm.DB, playerID uint) ([]models.DeckCard, error) {
	var deck []models.DeckCard
	err := db.Preload("Card").
		Where("player_id = ?", playerID).
		Order("position").
		Limit(models.DeckSize).
		Find(&deck).Error
	return deck, err
}

// CountCardInDeck counts occupied slots holding the given card.
func CountCardInDeck(db *gorm.DB, playerID, cardID uint) (int, error) {
	var count int64
	err := db.Model(&models.DeckCard{}).
		Where("player_id = ? AND card_id = ?", playerID, cardID).
		Count(&count).Error
	return int(count), err
}

// SetDeckSlot places a card at a position, replacing any occupant. The
// player cannot equip more copies than they hold in inventory.
func SetDeckSlot(tx *gorm.DB, playerID, cardID uint, position int) (*models.DeckCard, error) {
	if position < 1 || position > models.DeckSize {
		return nil, common.Validationf("deck position must be 1-%d, got %d", models.DeckSize, position)
	}

	owned, err := CardQuantity(tx, playerID, cardID)
	if err != nil {
		return nil, err
	}
	if owned < 1 {
		return nil, common.Preconditionf("player %d does not hold card %d", playerID, cardID)
	}

	var occupant models.DeckCard
	err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("player_id = ? AND position = ?", playerID, position).
		First(&occupant).Error
	hasOccupant := err == nil
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	equipped, err := CountCardInDeck(tx, playerID, cardID)
	if err != nil {
		return nil, err
	}
	// Replacing the same card in place does not consume another copy.
	if hasOccupant && occupant.CardID == cardID {
		equipped--
	}
	if equipped >= owned {
		return nil, common.Preconditionf(
			"player %d holds %d of card %d, all already equipped", playerID, owned, cardID)
	}

	if hasOccupant {
		if err := tx.Delete(&occupant).Error; err != nil {
			return nil, err
		}
	}

	slot := models.DeckCard{PlayerID: playerID, CardID: cardID, Position: position}
	if err := tx.Create(&slot).Error; err != nil {
		return nil, err
	}
	return &slot, nil
}

// RemoveDeckSlot vacates a position. Returns false when it was empty.
func RemoveDeckSlot(tx *gorm.DB, playerID uint, position int) (bool, error) {
	var slot models.DeckCard
	err := tx.Where("player_id = ? AND position = ?", playerID, position).First(&slot).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := tx.Delete(&slot).Error; err != nil {
		return false, err
	}
	return true, nil
}

// RemoveCardInstancesFromDeck vacates up to n slots holding cardID,
// lowest position first, and returns how many were removed.
func RemoveCardInstancesFromDeck(tx *gorm.DB, playerID, cardID uint, n int) (int, error) {
	var slots []models.DeckCard
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("player_id = ? AND card_id = ?", playerID, cardID).
		Order("position").
		Find(&slots).Error
	if err != nil {
		return 0, err
	}
	if n < 0 || n > len(slots) {
		n = len(slots)
	}
	for i := 0; i < n; i++ {
		if err := tx.Delete(&slots[i]).Error; err != nil {
			return i, err
		}
	}
	return n, nil
}

// ClearDeck vacates every slot and returns the count removed.
func ClearDeck(tx *gorm.DB, playerID uint) (int, error) {
	var slots []models.DeckCard
	if err := tx.Where("player_id = ?", playerID).Find(&slots).Error; err != nil {
		return 0, err
	}
	for i := range slots {
		if err := tx.Delete(&slots[i]).Error; err != nil {
			return i, err
		}
	}
	return len(slots), nil
}
