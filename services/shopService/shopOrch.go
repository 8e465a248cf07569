package shopService

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"gachaCardBot/models"
	"gachaCardBot/services/common"
	"gachaCardBot/services/ledgerService"
)

const (
	weeklySlots = 10
	dailySlots  = 3
)

// WeeklySeed derives the rotation seed shared by all players this week.
func WeeklySeed(now time.Time) int64 {
	year, week := now.In(common.GameZone).ISOWeek()
	return int64(year*100 + week)
}

// DailySeed derives the per-player seed that rotates daily.
func DailySeed(now time.Time, playerID uint) int64 {
	t := now.In(common.GameZone)
	return int64(t.Year()*10000+int(t.Month())*100+t.Day()) + int64(playerID)
}

// DynamicItems returns the player's current shop page: ten rate-weighted
// picks shared by everyone this week plus three picks unique to the
// player today. Selection is a pure function of the seeds, so the same
// player sees the same shop all day. Duplicates are dropped preserving
// order.
func DynamicItems(db *gorm.DB, playerID uint, now time.Time) ([]models.ShopItem, error) {
	var items []models.ShopItem
	if err := db.Order("id").Find(&items).Error; err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}

	weights := make([]float64, len(items))
	for i, item := range items {
		weights[i] = item.Rate
	}

	globalPicks := weightedChoices(common.NewRNG(WeeklySeed(now)), items, weights, weeklySlots)
	playerPicks := weightedChoices(common.NewRNG(DailySeed(now, playerID)), items, weights, dailySlots)

	seen := make(map[uint]bool)
	var unique []models.ShopItem
	for _, item := range append(globalPicks, playerPicks...) {
		if seen[item.ID] {
			continue
		}
		seen[item.ID] = true
		unique = append(unique, item)
	}
	return unique, nil
}

// weightedChoices draws k items with replacement, weighted by rate.
func weightedChoices(rng common.RNG, items []models.ShopItem, weights []float64, k int) []models.ShopItem {
	if k > len(items) {
		k = len(items)
	}
	picks := make([]models.ShopItem, 0, k)
	for n := 0; n < k; n++ {
		i := common.WeightedIndex(rng, weights)
		if i < 0 {
			break
		}
		picks = append(picks, items[i])
	}
	return picks
}

// Purchase debits the listing price and grants the item: card listings
// land in the card inventory, anything else as a generic item. Atomic.
func Purchase(db *gorm.DB, playerID, shopItemID uint) (*models.ShopItem, error) {
	var item models.ShopItem
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&item, shopItemID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return common.NotFoundf("shop item %d", shopItemID)
			}
			return err
		}

		if _, err := ledgerService.AdjustCurrency(tx, playerID, -item.Price); err != nil {
			return err
		}

		correlationID := common.NewCorrelationID()
		common.RecordEvent(tx, playerID, models.EventSpendMoney, correlationID, map[string]any{
			"amount":       item.Price,
			"reason":       "shop purchase: " + item.Name,
			"shop_item_id": shopItemID,
		})

		switch item.Type {
		case models.ShopItemCard:
			if item.CardID == nil {
				return common.Preconditionf("card listing %d has no card", shopItemID)
			}
			if err := ledgerService.AddCard(tx, playerID, *item.CardID, 1); err != nil {
				return err
			}
			common.RecordEvent(tx, playerID, models.EventObtainCard, correlationID, map[string]any{
				"card_id":      *item.CardID,
				"source":       "shop_purchase",
				"shop_item_id": shopItemID,
			})
		case models.ShopItemMisc:
			if err := ledgerService.AddItem(tx, playerID, shopItemID, 1); err != nil {
				return err
			}
		default:
			return common.Validationf("unknown shop item type %q", item.Type)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}
