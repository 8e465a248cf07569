package ledgerService

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"gachaCardBot/models"
	"gachaCardBot/services/common"
)

func GetPlayer(db *gorm.DB, playerID uint) (*models.Player, error) {
	var player models.Player
	if err := db.First(&player, playerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.NotFoundf("player %d", playerID)
		}
		return nil, err
	}
	return &player, nil
}

// GetOrCreatePlayer resolves a Discord user to a ledger row, creating it
// with zero currency on first contact.
func GetOrCreatePlayer(db *gorm.DB, discordID string) (*models.Player, error) {
	var player models.Player
	result := db.FirstOrCreate(&player, models.Player{DiscordID: discordID})
	if result.Error != nil {
		return nil, result.Error
	}
	return &player, nil
}

// LockPlayer reads a player row under a FOR UPDATE lock. Must be called
// inside a transaction.
func LockPlayer(tx *gorm.DB, playerID uint) (*models.Player, error) {
	var player models.Player
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&player, playerID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.NotFoundf("player %d", playerID)
		}
		return nil, err
	}
	return &player, nil
}

// AdjustCurrency applies a delta to a player's balance. The balance never
// goes negative; a debit past zero fails the call instead.
func AdjustCurrency(tx *gorm.DB, playerID uint, delta int64) (int64, error) {
	player, err := LockPlayer(tx, playerID)
	if err != nil {
		return 0, err
	}
	next := player.Currency + delta
	if next < 0 {
		return player.Currency, common.Preconditionf(
			"player %d has %d currency, cannot apply %d", playerID, player.Currency, delta)
	}
	player.Currency = next
	if err := tx.Save(player).Error; err != nil {
		return 0, err
	}
	return next, nil
}

// TransferCurrency moves amount from one player to another. Locks both
// rows in ID order to keep concurrent transfers deadlock-free.
func TransferCurrency(tx *gorm.DB, fromID, toID uint, amount int64) error {
	if amount <= 0 {
		return common.Validationf("transfer amount must be positive, got %d", amount)
	}
	first, second := fromID, toID
	if second < first {
		first, second = second, first
	}
	if _, err := LockPlayer(tx, first); err != nil {
		return err
	}
	if _, err := LockPlayer(tx, second); err != nil {
		return err
	}
	if _, err := AdjustCurrency(tx, fromID, -amount); err != nil {
		return err
	}
	if _, err := AdjustCurrency(tx, toID, amount); err != nil {
		return err
	}
	return nil
}
