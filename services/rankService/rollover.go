package rankService

import (
	"errors"

	"gorm.io/gorm"

	"gachaCardBot/models"
	"gachaCardBot/services/common"
	"gachaCardBot/services/ledgerService"
)

// rewardTiers pays top-100 finishers of the ended week.
var rewardTiers = []struct {
	FromRank int
	ToRank   int
	Amount   int64
}{
	{1, 1, 50_000},
	{2, 2, 40_000},
	{3, 3, 30_000},
	{4, 5, 20_000},
	{6, 10, 10_000},
	{11, 100, 1_000},
}

// RewardForRank returns the payout for a 1-indexed final rank, zero below
// the tiers.
func RewardForRank(rank int) int64 {
	for _, tier := range rewardTiers {
		if rank >= tier.FromRank && rank <= tier.ToRank {
			return tier.Amount
		}
	}
	return 0
}

// RolloverWeek creates a fresh 50-point rank row for every player active
// in the just-ended week, daily counters cleared. Returns the number of
// rows created.
func (e *Engine) RolloverWeek(db *gorm.DB) (int, error) {
	newWeek := e.CurrentWeek()
	oldWeek := newWeek - 1

	var created int
	err := db.Transaction(func(tx *gorm.DB) error {
		var oldRanks []models.PvPRank
		if err := tx.Where("week = ?", oldWeek).Find(&oldRanks).Error; err != nil {
			return err
		}
		now := e.clock()
		for _, old := range oldRanks {
			var existing models.PvPRank
			err := tx.Where("player_id = ? AND week = ?", old.PlayerID, newWeek).
				First(&existing).Error
			if err == nil {
				continue
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			fresh := models.PvPRank{
				PlayerID:       old.PlayerID,
				Week:           newWeek,
				Points:         50,
				ScoreUpdatedAt: now,
			}
			if err := tx.Create(&fresh).Error; err != nil {
				return err
			}
			created++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return created, nil
}

// DistributeWeeklyRewards pays the previous week's top-100 their tiered
// currency rewards, one audit event per payout. Returns the number of
// players rewarded.
func (e *Engine) DistributeWeeklyRewards(db *gorm.DB) (int, error) {
	week := e.CurrentWeek() - 1

	entries, err := e.Leaderboard(db, week, 100)
	if err != nil {
		return 0, err
	}

	var rewarded int
	for _, entry := range entries {
		reward := RewardForRank(entry.Rank)
		if reward == 0 {
			continue
		}
		entry := entry
		err := db.Transaction(func(tx *gorm.DB) error {
			if _, err := ledgerService.AdjustCurrency(tx, entry.PlayerID, reward); err != nil {
				return err
			}
			common.RecordEvent(tx, entry.PlayerID, models.EventRankedWeeklyReward, common.NewCorrelationID(), map[string]any{
				"rank":        entry.Rank,
				"reward":      reward,
				"week":        week,
				"final_score": entry.Points,
			})
			return nil
		})
		if err != nil {
			common.LogError(db, "rankService.DistributeWeeklyRewards", err)
			continue
		}
		rewarded++
	}
	return rewarded, nil
}
