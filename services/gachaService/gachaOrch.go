package gachaService

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"gachaCardBot/models"
	"gachaCardBot/services/common"
	"gachaCardBot/services/ledgerService"
)

const (
	// MaxPity is the draw count at which the next pull is forced to SSR.
	MaxPity = 1000

	SinglePullCost = 100
	TenPullCost    = 1000
)

// Engine performs weighted gacha draws with pity tracking. The random
// source is injected so draws are reproducible under test.
type Engine struct {
	rng common.RNG
}

func New(rng common.RNG) *Engine {
	return &Engine{rng: rng}
}

// PullResult describes one draw of a pull request.
type PullResult struct {
	CardID   uint
	CardName string
	Rarity   models.CardRarity
	WasPity  bool
}

// poolEntry pairs a card with its relative weight in the pool.
type poolEntry struct {
	Card   models.Card
	Weight float64
}

// Pull performs count draws against a pool and returns the results plus
// the player's remaining currency. Count must be 1 or 10. The whole
// request is atomic: all preconditions are checked up front, cost is
// deducted once after every draw succeeds, and any failure leaves the
// ledger untouched.
func (e *Engine) Pull(db *gorm.DB, playerID, poolID uint, count int) ([]PullResult, int64, error) {
	if count != 1 && count != 10 {
		return nil, 0, common.Validationf("pull count must be 1 or 10, got %d", count)
	}
	cost := int64(SinglePullCost)
	if count == 10 {
		cost = TenPullCost
	}

	var results []PullResult
	var remaining int64

	err := db.Transaction(func(tx *gorm.DB) error {
		player, err := ledgerService.LockPlayer(tx, playerID)
		if err != nil {
			return err
		}
		if player.Currency < cost {
			return common.Preconditionf(
				"player %d has %d currency, pull costs %d", playerID, player.Currency, cost)
		}

		var pool models.CardPool
		if err := tx.First(&pool, poolID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return common.NotFoundf("pool %d", poolID)
			}
			return err
		}

		entries, err := poolEntries(tx, poolID)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			return common.Preconditionf("pool %d has no cards", poolID)
		}
		if totalWeight(entries) <= 0 {
			return common.Preconditionf("pool %d has no positive weights", poolID)
		}

		pity, err := lockOrCreatePity(tx, playerID, poolID)
		if err != nil {
			return err
		}

		correlationID := common.NewCorrelationID()
		for n := 0; n < count; n++ {
			result, err := e.drawOne(tx, player, &pool, pity, entries, correlationID)
			if err != nil {
				return err
			}
			results = append(results, *result)
		}

		player.Currency -= cost
		if err := tx.Save(player).Error; err != nil {
			return err
		}
		if err := tx.Save(pity).Error; err != nil {
			return err
		}
		remaining = player.Currency
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return results, remaining, nil
}

// drawOne selects a card, updates pity, upserts inventory and appends the
// pull record and audit event. Pity state carries across the draws of a
// multi-pull: an SSR+ hit mid-batch resets the counter for the rest.
func (e *Engine) drawOne(tx *gorm.DB, player *models.Player, pool *models.CardPool, pity *models.GachaPity, entries []poolEntry, correlationID string) (*PullResult, error) {
	isPity := pity.PityCount >= MaxPity

	card, err := e.selectCard(entries, isPity)
	if err != nil {
		return nil, err
	}

	if card.Rarity.AtLeastSSR() {
		pity.PityCount = 0
	} else {
		pity.PityCount++
	}

	pull := models.GachaPull{
		PlayerID: player.ID,
		PoolID:   pool.ID,
		CardID:   card.ID,
		WasPity:  isPity,
	}
	if err := tx.Create(&pull).Error; err != nil {
		return nil, err
	}

	if err := ledgerService.AddCard(tx, player.ID, card.ID, 1); err != nil {
		return nil, err
	}

	common.RecordEvent(tx, player.ID, models.EventGachaPull, correlationID, map[string]any{
		"card_id":  card.ID,
		"pool_id":  pool.ID,
		"was_pity": isPity,
	})

	return &PullResult{
		CardID:   card.ID,
		CardName: card.Name,
		Rarity:   card.Rarity,
		WasPity:  isPity,
	}, nil
}

func poolEntries(tx *gorm.DB, poolID uint) ([]poolEntry, error) {
	var links []models.CardPoolCard
	if err := tx.Preload("Card").Where("pool_id = ?", poolID).Order("id").Find(&links).Error; err != nil {
		return nil, err
	}
	entries := make([]poolEntry, 0, len(links))
	for _, link := range links {
		entries = append(entries, poolEntry{Card: link.Card, Weight: link.Weight})
	}
	return entries, nil
}

func totalWeight(entries []poolEntry) float64 {
	var total float64
	for _, entry := range entries {
		if entry.Weight > 0 {
			total += entry.Weight
		}
	}
	return total
}

func lockOrCreatePity(tx *gorm.DB, playerID, poolID uint) (*models.GachaPity, error) {
	var pity models.GachaPity
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("player_id = ? AND pool_id = ?", playerID, poolID).
		First(&pity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		pity = models.GachaPity{PlayerID: playerID, PoolID: poolID, PityCount: 0}
		if err := tx.Create(&pity).Error; err != nil {
			return nil, err
		}
		return &pity, nil
	}
	if err != nil {
		return nil, err
	}
	return &pity, nil
}
