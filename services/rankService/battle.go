package rankService

import (
	"gorm.io/gorm"

	"gachaCardBot/models"
	"gachaCardBot/services/common"
	"gachaCardBot/services/ledgerService"
)

// ResolveRankedBattle transfers leaderboard points from loser to winner
// using the rank-distance formula. The winner's tie-break timestamp is
// always refreshed; the loser's only when points actually moved. Points
// never go below zero.
func (e *Engine) ResolveRankedBattle(db *gorm.DB, winnerID, loserID uint) (int, error) {
	week := e.CurrentWeek()
	var change int

	err := db.Transaction(func(tx *gorm.DB) error {
		winnerRankPos, err := e.LeaderboardRank(tx, winnerID, week)
		if err != nil {
			return err
		}
		loserRankPos, err := e.LeaderboardRank(tx, loserID, week)
		if err != nil {
			return err
		}

		winner, err := e.lockPlayerRank(tx, winnerID, week)
		if err != nil {
			return err
		}
		loser, err := e.lockPlayerRank(tx, loserID, week)
		if err != nil {
			return err
		}

		change = ScoreChange(winnerRankPos, loserRankPos, loser.Points)

		now := e.clock()
		winner.Points += change
		if winner.Points < 0 {
			winner.Points = 0
		}
		winner.ScoreUpdatedAt = now

		loser.Points -= change
		if loser.Points < 0 {
			loser.Points = 0
		}
		if change > 0 {
			loser.ScoreUpdatedAt = now
		}

		if err := tx.Save(winner).Error; err != nil {
			return err
		}
		if err := tx.Save(loser).Error; err != nil {
			return err
		}

		correlationID := common.NewCorrelationID()
		common.RecordEvent(tx, winnerID, models.EventRankedScoreGained, correlationID, map[string]any{
			"score_gained": change,
			"new_score":    winner.Points,
			"opponent_id":  loserID,
		})
		common.RecordEvent(tx, loserID, models.EventRankedScoreLost, correlationID, map[string]any{
			"score_lost":  change,
			"new_score":   loser.Points,
			"opponent_id": winnerID,
		})
		return nil
	})
	if err != nil {
		return 0, err
	}
	return change, nil
}

// ResolveDuel transfers the wagered amount outright from loser to winner.
// Duels never touch ranking points.
func (e *Engine) ResolveDuel(db *gorm.DB, winnerID, loserID uint, bet int64) error {
	if bet <= 0 {
		return common.Validationf("duel bet must be positive, got %d", bet)
	}
	return db.Transaction(func(tx *gorm.DB) error {
		if err := ledgerService.TransferCurrency(tx, loserID, winnerID, bet); err != nil {
			return err
		}
		correlationID := common.NewCorrelationID()
		common.RecordEvent(tx, winnerID, models.EventEarnMoney, correlationID, map[string]any{
			"amount":      bet,
			"reason":      "duel won",
			"opponent_id": loserID,
		})
		common.RecordEvent(tx, loserID, models.EventSpendMoney, correlationID, map[string]any{
			"amount":      bet,
			"reason":      "duel lost",
			"opponent_id": winnerID,
		})
		return nil
	})
}
