package tradeService

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"gachaCardBot/models"
	"gachaCardBot/services/common"
	"gachaCardBot/services/ledgerService"
)

// CreateRequest describes a new trade offer. Exactly one of
// RequestedCardID and Price must be set.
type CreateRequest struct {
	ProposerID      uint
	ReceiverID      uint
	OfferedCardID   uint
	RequestedCardID *uint
	Price           *int64
}

// Create validates a trade offer and records it as PENDING. No resources
// move at creation time; ownership and funds are checked again on accept.
func Create(db *gorm.DB, req CreateRequest) (*models.Trade, error) {
	if (req.RequestedCardID == nil) == (req.Price == nil) {
		return nil, common.Validationf("exactly one of requested card and price must be set")
	}
	if req.Price != nil && *req.Price <= 0 {
		return nil, common.Validationf("trade price must be positive, got %d", *req.Price)
	}
	if req.ProposerID == req.ReceiverID {
		return nil, common.Validationf("cannot trade with yourself")
	}

	var trade *models.Trade
	err := db.Transaction(func(tx *gorm.DB) error {
		if _, err := ledgerService.GetPlayer(tx, req.ProposerID); err != nil {
			return err
		}
		receiver, err := ledgerService.GetPlayer(tx, req.ReceiverID)
		if err != nil {
			return err
		}

		if err := validateResources(tx, req.ProposerID, req.ReceiverID, req.OfferedCardID, req.RequestedCardID); err != nil {
			return err
		}
		if req.Price != nil && receiver.Currency < *req.Price {
			return common.Preconditionf(
				"receiver has %d currency, trade asks %d", receiver.Currency, *req.Price)
		}

		trade = &models.Trade{
			ProposerID:      req.ProposerID,
			ReceiverID:      req.ReceiverID,
			OfferedCardID:   req.OfferedCardID,
			RequestedCardID: req.RequestedCardID,
			Price:           req.Price,
			Status:          models.TradePending,
		}
		if err := tx.Create(trade).Error; err != nil {
			return err
		}

		common.RecordEvent(tx, req.ProposerID, models.EventTradeCreated, common.NewCorrelationID(), map[string]any{
			"trade_id":          trade.ID,
			"receiver_id":       req.ReceiverID,
			"offered_card_id":   req.OfferedCardID,
			"requested_card_id": req.RequestedCardID,
			"price":             req.Price,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return trade, nil
}

// Accept re-validates and executes a pending trade as one atomic
// exchange. When the state drifted since creation the trade is cancelled
// (the only mutation performed) and the reason surfaced as a conflict.
func Accept(db *gorm.DB, tradeID, actorID uint) (*models.Trade, error) {
	var trade models.Trade
	var revalidation error

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := lockPendingTrade(tx, tradeID, &trade); err != nil {
			return err
		}
		if trade.ReceiverID != actorID {
			return common.Validationf("player %d is not the receiver of trade %d", actorID, tradeID)
		}

		if err := revalidate(tx, &trade); err != nil {
			revalidation = err
			return err
		}

		return execute(tx, &trade)
	})

	if revalidation != nil {
		// The exchange rolled back; record the cancellation on its own.
		cancelErr := db.Transaction(func(tx *gorm.DB) error {
			if err := lockPendingTrade(tx, tradeID, &trade); err != nil {
				return err
			}
			trade.Status = models.TradeCancelled
			if err := tx.Save(&trade).Error; err != nil {
				return err
			}
			common.RecordEvent(tx, actorID, models.EventTradeCancelled, common.NewCorrelationID(), map[string]any{
				"trade_id":    tradeID,
				"proposer_id": trade.ProposerID,
				"reason":      revalidation.Error(),
			})
			return nil
		})
		if cancelErr != nil {
			common.LogError(db, "tradeService.Accept", cancelErr)
		}
		return &trade, common.Conflictf("trade %d cancelled: %v", tradeID, revalidation)
	}
	if err != nil {
		return nil, err
	}
	return &trade, nil
}

// Reject transitions a pending trade to REJECTED. Receiver only.
func Reject(db *gorm.DB, tradeID, actorID uint) (*models.Trade, error) {
	return transition(db, tradeID, actorID, false, models.TradeRejected, models.EventTradeRejected)
}

// Cancel transitions a pending trade to CANCELLED. Proposer only.
func Cancel(db *gorm.DB, tradeID, actorID uint) (*models.Trade, error) {
	return transition(db, tradeID, actorID, true, models.TradeCancelled, models.EventTradeCancelled)
}

func transition(db *gorm.DB, tradeID, actorID uint, byProposer bool, status models.TradeStatus, event models.EventType) (*models.Trade, error) {
	var trade models.Trade
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := lockPendingTrade(tx, tradeID, &trade); err != nil {
			return err
		}
		if byProposer && trade.ProposerID != actorID {
			return common.Validationf("player %d is not the proposer of trade %d", actorID, tradeID)
		}
		if !byProposer && trade.ReceiverID != actorID {
			return common.Validationf("player %d is not the receiver of trade %d", actorID, tradeID)
		}

		trade.Status = status
		if err := tx.Save(&trade).Error; err != nil {
			return err
		}

		other := trade.ReceiverID
		if !byProposer {
			other = trade.ProposerID
		}
		common.RecordEvent(tx, actorID, event, common.NewCorrelationID(), map[string]any{
			"trade_id":        tradeID,
			"other_player_id": other,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &trade, nil
}

// ListPlayerTrades returns trades where the player is proposer or
// receiver, newest first, optionally filtered by status.
func ListPlayerTrades(db *gorm.DB, playerID uint, status *models.TradeStatus) ([]models.Trade, error) {
	query := db.Where("proposer_id = ? OR receiver_id = ?", playerID, playerID)
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	var trades []models.Trade
	err := query.Order("id DESC").Find(&trades).Error
	return trades, err
}

func lockPendingTrade(tx *gorm.DB, tradeID uint, trade *models.Trade) error {
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(trade, tradeID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return common.NotFoundf("trade %d", tradeID)
	}
	if err != nil {
		return err
	}
	if trade.Status != models.TradePending {
		return common.Preconditionf("trade %d is %s, not PENDING", tradeID, trade.Status)
	}
	return nil
}

// validateResources checks the ownership half of the trade preconditions
// shared by creation and acceptance. The funds half stays with the
// callers: creation reads the receiver's balance unlocked, acceptance
// re-reads it under a row lock.
func validateResources(tx *gorm.DB, proposerID, receiverID, offeredCardID uint, requestedCardID *uint) error {
	offered, err := ledgerService.CardQuantity(tx, proposerID, offeredCardID)
	if err != nil {
		return err
	}
	if offered < 1 {
		return common.Preconditionf("proposer does not hold offered card %d", offeredCardID)
	}
	if requestedCardID != nil {
		requested, err := ledgerService.CardQuantity(tx, receiverID, *requestedCardID)
		if err != nil {
			return err
		}
		if requested < 1 {
			return common.Preconditionf("receiver does not hold requested card %d", *requestedCardID)
		}
	}
	return nil
}

func revalidate(tx *gorm.DB, trade *models.Trade) error {
	if err := validateResources(tx, trade.ProposerID, trade.ReceiverID, trade.OfferedCardID, trade.RequestedCardID); err != nil {
		return err
	}
	if trade.Price != nil {
		receiver, err := ledgerService.LockPlayer(tx, trade.ReceiverID)
		if err != nil {
			return err
		}
		if receiver.Currency < *trade.Price {
			return common.Preconditionf(
				"receiver has %d currency, trade asks %d", receiver.Currency, *trade.Price)
		}
	}
	return nil
}
