package rankService

import (
	"gorm.io/gorm"

	"gachaCardBot/models"
	"gachaCardBot/services/common"
	"gachaCardBot/services/ledgerService"
)

const (
	// FreePlaysPerDay ranked battles cost nothing; beyond that the fee
	// starts at BaseFee and doubles every FeeTierSize additional plays.
	FreePlaysPerDay = 10
	BaseFee         = 500
	FeeTierSize     = 5

	MinBet        = 1
	MaxBet        = 100_000
	DailyBetLimit = 1_000_000
)

// FeeForPlays is the fee schedule: 0 below FreePlaysPerDay, then
// 500 * 2^((plays-10)/5).
func FeeForPlays(plays int) int64 {
	if plays < FreePlaysPerDay {
		return 0
	}
	tier := (plays - FreePlaysPerDay) / FeeTierSize
	return int64(BaseFee) << uint(tier)
}

// CheckDailyFee returns the fee for the player's next ranked play,
// resetting the daily counter first when the stored last-play date falls
// on an earlier UTC+8 calendar day.
func (e *Engine) CheckDailyFee(db *gorm.DB, playerID uint) (int64, error) {
	week := e.CurrentWeek()
	var fee int64
	err := db.Transaction(func(tx *gorm.DB) error {
		rank, err := e.lockPlayerRank(tx, playerID, week)
		if err != nil {
			return err
		}
		now := e.clock()
		if common.IsNewDay(rank.LastPlayDate, now) {
			rank.DailyPlays = 0
			rank.LastPlayDate = &now
			if err := tx.Save(rank).Error; err != nil {
				return err
			}
		}
		fee = FeeForPlays(rank.DailyPlays)
		return nil
	})
	return fee, err
}

// ChargeFee debits a play fee and records it. A zero fee is a no-op.
func (e *Engine) ChargeFee(db *gorm.DB, playerID uint, fee int64) error {
	if fee == 0 {
		return nil
	}
	week := e.CurrentWeek()
	return db.Transaction(func(tx *gorm.DB) error {
		rank, err := e.PlayerRank(tx, playerID, week)
		if err != nil {
			return err
		}
		if _, err := ledgerService.AdjustCurrency(tx, playerID, -fee); err != nil {
			return err
		}
		common.RecordEvent(tx, playerID, models.EventRankedPlayFee, common.NewCorrelationID(), map[string]any{
			"fee":   fee,
			"plays": rank.DailyPlays,
		})
		return nil
	})
}

// IncrementDailyPlays bumps the counter after an admitted ranked play.
func (e *Engine) IncrementDailyPlays(db *gorm.DB, playerID uint) error {
	week := e.CurrentWeek()
	return db.Transaction(func(tx *gorm.DB) error {
		rank, err := e.lockPlayerRank(tx, playerID, week)
		if err != nil {
			return err
		}
		now := e.clock()
		rank.DailyPlays++
		rank.LastPlayDate = &now
		return tx.Save(rank).Error
	})
}

// ValidateBet checks a duel wager: amount in [1, 100000], the player can
// cover it, and it fits under the 1,000,000 same-day cumulative cap. The
// daily cap counter resets on the same UTC+8 day boundary as plays.
func (e *Engine) ValidateBet(db *gorm.DB, playerID uint, amount int64) error {
	if amount < MinBet || amount > MaxBet {
		return common.Validationf("bet must be between %d and %d, got %d", MinBet, MaxBet, amount)
	}

	player, err := ledgerService.GetPlayer(db, playerID)
	if err != nil {
		return err
	}
	if player.Currency < amount {
		return common.Preconditionf(
			"player %d has %d currency, bet needs %d", playerID, player.Currency, amount)
	}

	week := e.CurrentWeek()
	return db.Transaction(func(tx *gorm.DB) error {
		rank, err := e.lockPlayerRank(tx, playerID, week)
		if err != nil {
			return err
		}
		now := e.clock()
		if common.IsNewDay(rank.LastBetDate, now) {
			rank.DailyBetAmount = 0
			rank.LastBetDate = &now
			if err := tx.Save(rank).Error; err != nil {
				return err
			}
		}
		if rank.DailyBetAmount+amount > DailyBetLimit {
			return common.Preconditionf(
				"daily bet limit exceeded, %d remaining", DailyBetLimit-rank.DailyBetAmount)
		}
		return nil
	})
}

// RecordBet adds an admitted wager to the player's daily total.
func (e *Engine) RecordBet(db *gorm.DB, playerID uint, amount int64) error {
	week := e.CurrentWeek()
	return db.Transaction(func(tx *gorm.DB) error {
		rank, err := e.lockPlayerRank(tx, playerID, week)
		if err != nil {
			return err
		}
		now := e.clock()
		rank.DailyBetAmount += amount
		rank.LastBetDate = &now
		return tx.Save(rank).Error
	})
}
