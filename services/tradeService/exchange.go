package tradeService

import (
	"gorm.io/gorm"

	"gachaCardBot/models"
	"gachaCardBot/services/common"
	"gachaCardBot/services/ledgerService"
)

// execute moves the trade's resources and marks it COMPLETED. Runs inside
// the acceptance transaction, so either every transfer lands or none do.
func execute(tx *gorm.DB, trade *models.Trade) error {
	correlationID := common.NewCorrelationID()

	if err := ledgerService.TransferCard(tx, trade.ProposerID, trade.ReceiverID, trade.OfferedCardID); err != nil {
		return err
	}
	common.RecordEvent(tx, trade.ProposerID, models.EventTradeCardSent, correlationID, map[string]any{
		"trade_id":     trade.ID,
		"card_id":      trade.OfferedCardID,
		"to_player_id": trade.ReceiverID,
	})
	common.RecordEvent(tx, trade.ReceiverID, models.EventTradeCardReceived, correlationID, map[string]any{
		"trade_id":       trade.ID,
		"card_id":        trade.OfferedCardID,
		"from_player_id": trade.ProposerID,
	})

	if trade.RequestedCardID != nil {
		if err := ledgerService.TransferCard(tx, trade.ReceiverID, trade.ProposerID, *trade.RequestedCardID); err != nil {
			return err
		}
		common.RecordEvent(tx, trade.ReceiverID, models.EventTradeCardSent, correlationID, map[string]any{
			"trade_id":     trade.ID,
			"card_id":      *trade.RequestedCardID,
			"to_player_id": trade.ProposerID,
		})
		common.RecordEvent(tx, trade.ProposerID, models.EventTradeCardReceived, correlationID, map[string]any{
			"trade_id":       trade.ID,
			"card_id":        *trade.RequestedCardID,
			"from_player_id": trade.ReceiverID,
		})
	}

	if trade.Price != nil {
		if err := ledgerService.TransferCurrency(tx, trade.ReceiverID, trade.ProposerID, *trade.Price); err != nil {
			return err
		}
		common.RecordEvent(tx, trade.ReceiverID, models.EventTradeMoneySent, correlationID, map[string]any{
			"trade_id":     trade.ID,
			"amount":       *trade.Price,
			"to_player_id": trade.ProposerID,
		})
		common.RecordEvent(tx, trade.ProposerID, models.EventTradeMoneyReceived, correlationID, map[string]any{
			"trade_id":       trade.ID,
			"amount":         *trade.Price,
			"from_player_id": trade.ReceiverID,
		})
	}

	trade.Status = models.TradeCompleted
	if err := tx.Save(trade).Error; err != nil {
		return err
	}

	common.RecordEvent(tx, trade.ReceiverID, models.EventTradeAccepted, correlationID, map[string]any{
		"trade_id":    trade.ID,
		"proposer_id": trade.ProposerID,
	})
	return nil
}
