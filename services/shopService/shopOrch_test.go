package shopService

import (
	"errors"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"gachaCardBot/models"
	"gachaCardBot/services/common"
	"gachaCardBot/services/ledgerService"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test DB: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get DB handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&models.Player{},
		&models.Card{},
		&models.ShopItem{},
		&models.Inventory{},
		&models.EventLog{},
		&models.ErrorLog{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	return db
}

func seedShop(t *testing.T, db *gorm.DB, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		item := models.ShopItem{
			Name:  "Item " + string(rune('A'+i)),
			Price: int64(100 * (i + 1)),
			Type:  models.ShopItemMisc,
			Rate:  float64(i%5) + 1,
		}
		if err := db.Create(&item).Error; err != nil {
			t.Fatalf("Failed to seed shop: %v", err)
		}
	}
}

func itemIDs(items []models.ShopItem) []uint {
	ids := make([]uint, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	return ids
}

func TestSeeds(t *testing.T) {
	// Wednesday of ISO week 35, 2026.
	now := time.Date(2026, 8, 26, 15, 0, 0, 0, common.GameZone)

	if got := WeeklySeed(now); got != 2026*100+35 {
		t.Errorf("WeeklySeed = %d, want %d", got, 2026*100+35)
	}
	if got := DailySeed(now, 7); got != 20260826+7 {
		t.Errorf("DailySeed = %d, want %d", got, 20260826+7)
	}

	// Same week, different day: weekly seed holds, daily moves.
	nextDay := now.AddDate(0, 0, 1)
	if WeeklySeed(nextDay) != WeeklySeed(now) {
		t.Errorf("Weekly seed should be stable within the week")
	}
	if DailySeed(nextDay, 7) == DailySeed(now, 7) {
		t.Errorf("Daily seed should change day to day")
	}
}

func TestDynamicItems_DeterministicPerPlayerAndDay(t *testing.T) {
	db := newTestDB(t)
	seedShop(t, db, 20)
	now := time.Date(2026, 8, 26, 9, 0, 0, 0, common.GameZone)

	first, err := DynamicItems(db, 1, now)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(first) == 0 {
		t.Fatalf("Expected a stocked shop")
	}

	// Same player, later the same day: identical page.
	later := now.Add(10 * time.Hour)
	second, err := DynamicItems(db, 1, later)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	firstIDs := itemIDs(first)
	secondIDs := itemIDs(second)
	if len(firstIDs) != len(secondIDs) {
		t.Fatalf("Page size changed within the day: %d vs %d", len(firstIDs), len(secondIDs))
	}
	for i := range firstIDs {
		if firstIDs[i] != secondIDs[i] {
			t.Fatalf("Page changed within the day at position %d", i)
		}
	}
}

func TestDynamicItems_SharedWeeklyPrefix(t *testing.T) {
	db := newTestDB(t)
	seedShop(t, db, 20)
	now := time.Date(2026, 8, 26, 9, 0, 0, 0, common.GameZone)

	pageA, err := DynamicItems(db, 1, now)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	pageB, err := DynamicItems(db, 2, now)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// The global weekly picks lead both pages; only the per-player tail
	// may differ.
	weekly := weightedChoices(common.NewRNG(WeeklySeed(now)), loadItems(t, db), loadRates(t, db), weeklySlots)
	seen := map[uint]bool{}
	var wantPrefix []uint
	for _, item := range weekly {
		if seen[item.ID] {
			continue
		}
		seen[item.ID] = true
		wantPrefix = append(wantPrefix, item.ID)
	}
	for name, page := range map[string][]models.ShopItem{"A": pageA, "B": pageB} {
		ids := itemIDs(page)
		if len(ids) < len(wantPrefix) {
			t.Fatalf("Page %s shorter than the weekly picks", name)
		}
		for i, want := range wantPrefix {
			if ids[i] != want {
				t.Errorf("Page %s: weekly prefix diverged at %d", name, i)
			}
		}
	}
}

func loadItems(t *testing.T, db *gorm.DB) []models.ShopItem {
	t.Helper()
	var items []models.ShopItem
	if err := db.Order("id").Find(&items).Error; err != nil {
		t.Fatalf("Failed to load items: %v", err)
	}
	return items
}

func loadRates(t *testing.T, db *gorm.DB) []float64 {
	t.Helper()
	items := loadItems(t, db)
	rates := make([]float64, len(items))
	for i, item := range items {
		rates[i] = item.Rate
	}
	return rates
}

func TestDynamicItems_EmptyShop(t *testing.T) {
	db := newTestDB(t)
	items, err := DynamicItems(db, 1, time.Now())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("Empty catalog should yield an empty page, got %d", len(items))
	}
}

func TestPurchase_Item(t *testing.T) {
	db := newTestDB(t)
	player := models.Player{DiscordID: "p1", Currency: 1_000}
	db.Create(&player)

	listing := models.ShopItem{Name: "Stamina Potion", Price: 400, Type: models.ShopItemMisc, Rate: 1}
	db.Create(&listing)

	bought, err := Purchase(db, player.ID, listing.ID)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if bought.ID != listing.ID {
		t.Errorf("Expected listing %d, got %d", listing.ID, bought.ID)
	}

	var reloaded models.Player
	db.First(&reloaded, player.ID)
	if reloaded.Currency != 600 {
		t.Errorf("Expected 600 after purchase, got %d", reloaded.Currency)
	}
	qty, _ := ledgerService.ItemQuantity(db, player.ID, listing.ID)
	if qty != 1 {
		t.Errorf("Expected 1 item in inventory, got %d", qty)
	}
}

func TestPurchase_CardListing(t *testing.T) {
	db := newTestDB(t)
	player := models.Player{DiscordID: "p1", Currency: 1_000}
	db.Create(&player)

	card := models.Card{Name: "Azure Dragon", Rarity: models.RaritySSR}
	db.Create(&card)
	listing := models.ShopItem{Name: "Azure Dragon", Price: 800, Type: models.ShopItemCard, Rate: 1, CardID: &card.ID}
	db.Create(&listing)

	if _, err := Purchase(db, player.ID, listing.ID); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	qty, _ := ledgerService.CardQuantity(db, player.ID, card.ID)
	if qty != 1 {
		t.Errorf("Expected the card in inventory, got %d", qty)
	}
}

func TestPurchase_Failures(t *testing.T) {
	db := newTestDB(t)
	player := models.Player{DiscordID: "p1", Currency: 100}
	db.Create(&player)

	listing := models.ShopItem{Name: "Stamina Potion", Price: 400, Type: models.ShopItemMisc, Rate: 1}
	db.Create(&listing)

	t.Run("unknown listing", func(t *testing.T) {
		if _, err := Purchase(db, player.ID, 999); !errors.Is(err, common.ErrNotFound) {
			t.Errorf("Expected not found, got %v", err)
		}
	})

	t.Run("insufficient funds roll back everything", func(t *testing.T) {
		if _, err := Purchase(db, player.ID, listing.ID); !errors.Is(err, common.ErrPrecondition) {
			t.Errorf("Expected precondition error, got %v", err)
		}
		var reloaded models.Player
		db.First(&reloaded, player.ID)
		if reloaded.Currency != 100 {
			t.Errorf("Currency must be untouched, got %d", reloaded.Currency)
		}
		qty, _ := ledgerService.ItemQuantity(db, player.ID, listing.ID)
		if qty != 0 {
			t.Errorf("Nothing should be granted, got %d", qty)
		}
	})

	t.Run("card listing without card", func(t *testing.T) {
		broken := models.ShopItem{Name: "Ghost Card", Price: 10, Type: models.ShopItemCard, Rate: 1}
		db.Create(&broken)
		if _, err := Purchase(db, player.ID, broken.ID); !errors.Is(err, common.ErrPrecondition) {
			t.Errorf("Expected precondition error, got %v", err)
		}
	})
}
