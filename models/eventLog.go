package models

import "gorm.io/gorm"

type EventType string

const (
	EventGachaPull          EventType = "GACHA_PULL"
	EventObtainCard         EventType = "OBTAIN_CARD"
	EventEarnMoney          EventType = "EARN_MONEY"
	EventSpendMoney         EventType = "SPEND_MONEY"
	EventTradeCreated       EventType = "TRADE_CREATED"
	EventTradeAccepted      EventType = "TRADE_ACCEPTED"
	EventTradeRejected      EventType = "TRADE_REJECTED"
	EventTradeCancelled     EventType = "TRADE_CANCELLED"
	EventTradeCardSent      EventType = "TRADE_CARD_SENT"
	EventTradeCardReceived  EventType = "TRADE_CARD_RECEIVED"
	EventTradeMoneySent     EventType = "TRADE_MONEY_SENT"
	EventTradeMoneyReceived EventType = "TRADE_MONEY_RECEIVED"
	EventRankedPlayFee      EventType = "RANKED_PLAY_FEE"
	EventRankedScoreGained  EventType = "RANKED_SCORE_GAINED"
	EventRankedScoreLost    EventType = "RANKED_SCORE_LOST"
	EventRankedWeeklyReward EventType = "RANKED_WEEKLY_REWARD"
)

// EventLog is the append-only audit sink. Context is a JSON document;
// CorrelationID groups the events of one logical operation.
type EventLog struct {
	gorm.Model
	ID            uint      `gorm:"primaryKey"`
	PlayerID      uint      `gorm:"index; not null"`
	EventType     EventType `gorm:"size:32; index; not null"`
	Context       string    `gorm:"type:text"`
	CorrelationID string    `gorm:"size:36; index"`
}
