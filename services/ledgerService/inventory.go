package ledgerService

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"gachaCardBot/models"
	"gachaCardBot/services/common"
)

// CardQuantity returns how many copies of a card a player holds. Missing
// row means zero.
func CardQuantity(db *gorm.DB, playerID, cardID uint) (int, error) {
	var inv models.Inventory
	err := db.Where("player_id = ? AND card_id = ? AND kind = ?",
		playerID, cardID, models.InventoryCard).First(&inv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return inv.Quantity, nil
}

// AddCard increments a player's holding of a card, creating the row on
// first acquisition.
func AddCard(tx *gorm.DB, playerID, cardID uint, n int) error {
	if n <= 0 {
		return common.Validationf("card increment must be positive, got %d", n)
	}
	var inv models.Inventory
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("player_id = ? AND card_id = ? AND kind = ?",
			playerID, cardID, models.InventoryCard).
		First(&inv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		id := cardID
		inv = models.Inventory{
			PlayerID: playerID,
			Kind:     models.InventoryCard,
			CardID:   &id,
			Quantity: n,
		}
		return tx.Create(&inv).Error
	}
	if err != nil {
		return err
	}
	inv.Quantity += n
	return tx.Save(&inv).Error
}

// RemoveCard decrements a player's holding of a card and deletes the row
// when the quantity reaches zero.
func RemoveCard(tx *gorm.DB, playerID, cardID uint, n int) error {
	if n <= 0 {
		return common.Validationf("card decrement must be positive, got %d", n)
	}
	var inv models.Inventory
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("player_id = ? AND card_id = ? AND kind = ?",
			playerID, cardID, models.InventoryCard).
		First(&inv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return common.Preconditionf("player %d does not hold card %d", playerID, cardID)
	}
	if err != nil {
		return err
	}
	if inv.Quantity < n {
		return common.Preconditionf(
			"player %d holds %d of card %d, cannot remove %d", playerID, inv.Quantity, cardID, n)
	}
	inv.Quantity -= n
	if inv.Quantity == 0 {
		return tx.Delete(&inv).Error
	}
	return tx.Save(&inv).Error
}

// TransferCard moves one copy of a card between players and vacates up to
// one of the sender's deck slots holding it, lowest position first.
func TransferCard(tx *gorm.DB, fromID, toID, cardID uint) error {
	if err := RemoveCard(tx, fromID, cardID, 1); err != nil {
		return err
	}
	if err := AddCard(tx, toID, cardID, 1); err != nil {
		return err
	}
	_, err := RemoveCardInstancesFromDeck(tx, fromID, cardID, 1)
	return err
}

// ItemQuantity returns how many of a shop item a player holds.
func ItemQuantity(db *gorm.DB, playerID, itemID uint) (int, error) {
	var inv models.Inventory
	err := db.Where("player_id = ? AND item_id = ? AND kind = ?",
		playerID, itemID, models.InventoryItem).First(&inv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return inv.Quantity, nil
}

// AddItem increments a player's holding of a non-card shop item.
func AddItem(tx *gorm.DB, playerID, itemID uint, n int) error {
	if n <= 0 {
		return common.Validationf("item increment must be positive, got %d", n)
	}
	var inv models.Inventory
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("player_id = ? AND item_id = ? AND kind = ?",
			playerID, itemID, models.InventoryItem).
		First(&inv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		id := itemID
		inv = models.Inventory{
			PlayerID: playerID,
			Kind:     models.InventoryItem,
			ItemID:   &id,
			Quantity: n,
		}
		return tx.Create(&inv).Error
	}
	if err != nil {
		return err
	}
	inv.Quantity += n
	return tx.Save(&inv).Error
}

// PlayerInventory lists a player's live inventory rows.
func PlayerInventory(db *gorm.DB, playerID uint) ([]models.Inventory, error) {
	var rows []models.Inventory
	err := db.Where("player_id = ?", playerID).Order("id").Find(&rows).Error
	return rows, err
}
