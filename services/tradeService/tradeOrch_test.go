package tradeService

import (
	"errors"
	"testing"

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
		&models.Inventory{},
		&models.DeckCard{},
		&models.Trade{},
		&models.EventLog{},
		&models.ErrorLog{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	return db
}

type tradeFixture struct {
	alice *models.Player
	bob   *models.Player
	cardX *models.Card
	cardY *models.Card
}

// seedTrade gives Alice two copies of CardX and no currency, Bob one copy
// of CardY and 1000 currency.
func seedTrade(t *testing.T, db *gorm.DB) tradeFixture {
	t.Helper()
	alice := models.Player{DiscordID: "alice", Currency: 0}
	bob := models.Player{DiscordID: "bob", Currency: 1_000}
	if err := db.Create(&alice).Error; err != nil {
		t.Fatalf("Failed to create alice: %v", err)
	}
	if err := db.Create(&bob).Error; err != nil {
		t.Fatalf("Failed to create bob: %v", err)
	}

	cardX := models.Card{Name: "Card X", Rarity: models.RaritySR}
	cardY := models.Card{Name: "Card Y", Rarity: models.RaritySR}
	db.Create(&cardX)
	db.Create(&cardY)

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := ledgerService.AddCard(tx, alice.ID, cardX.ID, 2); err != nil {
			return err
		}
		return ledgerService.AddCard(tx, bob.ID, cardY.ID, 1)
	})
	if err != nil {
		t.Fatalf("Failed to seed inventories: %v", err)
	}
	return tradeFixture{alice: &alice, bob: &bob, cardX: &cardX, cardY: &cardY}
}

func int64Ptr(v int64) *int64 { return &v }
func uintPtr(v uint) *uint    { return &v }

func TestCreate_Validation(t *testing.T) {
	db := newTestDB(t)
	f := seedTrade(t, db)

	tests := []struct {
		name string
		req  CreateRequest
		want error
	}{
		{
			"neither card nor price",
			CreateRequest{ProposerID: f.alice.ID, ReceiverID: f.bob.ID, OfferedCardID: f.cardX.ID},
			common.ErrValidation,
		},
		{
			"both card and price",
			CreateRequest{ProposerID: f.alice.ID, ReceiverID: f.bob.ID, OfferedCardID: f.cardX.ID,
				RequestedCardID: uintPtr(f.cardY.ID), Price: int64Ptr(100)},
			common.ErrValidation,
		},
		{
			"non-positive price",
			CreateRequest{ProposerID: f.alice.ID, ReceiverID: f.bob.ID, OfferedCardID: f.cardX.ID,
				Price: int64Ptr(0)},
			common.ErrValidation,
		},
		{
			"self trade",
			CreateRequest{ProposerID: f.alice.ID, ReceiverID: f.alice.ID, OfferedCardID: f.cardX.ID,
				Price: int64Ptr(100)},
			common.ErrValidation,
		},
		{
			"proposer lacks offered card",
			CreateRequest{ProposerID: f.bob.ID, ReceiverID: f.alice.ID, OfferedCardID: f.cardX.ID,
				RequestedCardID: uintPtr(f.cardX.ID)},
			common.ErrPrecondition,
		},
		{
			"receiver lacks requested card",
			CreateRequest{ProposerID: f.alice.ID, ReceiverID: f.bob.ID, OfferedCardID: f.cardX.ID,
				RequestedCardID: uintPtr(f.cardX.ID)},
			common.ErrPrecondition,
		},
		{
			"receiver cannot afford price",
			CreateRequest{ProposerID: f.alice.ID, ReceiverID: f.bob.ID, OfferedCardID: f.cardX.ID,
				Price: int64Ptr(5_000)},
			common.ErrPrecondition,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Create(db, tt.req)
			if !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestAccept_CardForCurrency(t *testing.T) {
	db := newTestDB(t)
	f := seedTrade(t, db)

	trade, err := Create(db, CreateRequest{
		ProposerID:    f.alice.ID,
		ReceiverID:    f.bob.ID,
		OfferedCardID: f.cardX.ID,
		Price:         int64Ptr(500),
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if trade.Status != models.TradePending {
		t.Fatalf("New trade should be PENDING, got %s", trade.Status)
	}

	done, err := Accept(db, trade.ID, f.bob.ID)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if done.Status != models.TradeCompleted {
		t.Errorf("Expected COMPLETED, got %s", done.Status)
	}

	var alice, bob models.Player
	db.First(&alice, f.alice.ID)
	db.First(&bob, f.bob.ID)
	if alice.Currency != 500 || bob.Currency != 500 {
		t.Errorf("Expected 500/500 currency, got %d/%d", alice.Currency, bob.Currency)
	}

	aliceQty, _ := ledgerService.CardQuantity(db, f.alice.ID, f.cardX.ID)
	bobQty, _ := ledgerService.CardQuantity(db, f.bob.ID, f.cardX.ID)
	if aliceQty != 1 || bobQty != 1 {
		t.Errorf("Expected card quantities 1/1, got %d/%d", aliceQty, bobQty)
	}
}

func TestAccept_CardForCard(t *testing.T) {
	db := newTestDB(t)
	f := seedTrade(t, db)

	trade, err := Create(db, CreateRequest{
		ProposerID:      f.alice.ID,
		ReceiverID:      f.bob.ID,
		OfferedCardID:   f.cardX.ID,
		RequestedCardID: uintPtr(f.cardY.ID),
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if _, err := Accept(db, trade.ID, f.bob.ID); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	aliceY, _ := ledgerService.CardQuantity(db, f.alice.ID, f.cardY.ID)
	bobX, _ := ledgerService.CardQuantity(db, f.bob.ID, f.cardX.ID)
	bobY, _ := ledgerService.CardQuantity(db, f.bob.ID, f.cardY.ID)
	if aliceY != 1 || bobX != 1 || bobY != 0 {
		t.Errorf("Cards did not cross: aliceY=%d bobX=%d bobY=%d", aliceY, bobX, bobY)
	}
}

func TestAccept_OnlyReceiver(t *testing.T) {
	db := newTestDB(t)
	f := seedTrade(t, db)

	trade, _ := Create(db, CreateRequest{
		ProposerID: f.alice.ID, ReceiverID: f.bob.ID,
		OfferedCardID: f.cardX.ID, Price: int64Ptr(100),
	})

	_, err := Accept(db, trade.ID, f.alice.ID)
	if !errors.Is(err, common.ErrValidation) {
		t.Errorf("Proposer accepting own trade should fail, got %v", err)
	}

	var reloaded models.Trade
	db.First(&reloaded, trade.ID)
	if reloaded.Status != models.TradePending {
		t.Errorf("Trade should stay PENDING, got %s", reloaded.Status)
	}
}

func TestAccept_StaleTradeAutoCancels(t *testing.T) {
	db := newTestDB(t)
	f := seedTrade(t, db)

	trade, err := Create(db, CreateRequest{
		ProposerID: f.alice.ID, ReceiverID: f.bob.ID,
		OfferedCardID: f.cardX.ID, Price: int64Ptr(500),
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// Alice disposes of both copies between creation and acceptance.
	err = db.Transaction(func(tx *gorm.DB) error {
		return ledgerService.RemoveCard(tx, f.alice.ID, f.cardX.ID, 2)
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	_, err = Accept(db, trade.ID, f.bob.ID)
	if !errors.Is(err, common.ErrConflict) {
		t.Fatalf("Stale trade should surface a conflict, got %v", err)
	}

	var reloaded models.Trade
	db.First(&reloaded, trade.ID)
	if reloaded.Status != models.TradeCancelled {
		t.Errorf("Stale trade should be CANCELLED, got %s", reloaded.Status)
	}

	// The cancellation is the only mutation; no currency moved.
	var alice, bob models.Player
	db.First(&alice, f.alice.ID)
	db.First(&bob, f.bob.ID)
	if alice.Currency != 0 || bob.Currency != 1_000 {
		t.Errorf("Currency must be untouched, got %d/%d", alice.Currency, bob.Currency)
	}
}

func TestAccept_ReceiverFundsDriedUp(t *testing.T) {
	db := newTestDB(t)
	f := seedTrade(t, db)

	trade, _ := Create(db, CreateRequest{
		ProposerID: f.alice.ID, ReceiverID: f.bob.ID,
		OfferedCardID: f.cardX.ID, Price: int64Ptr(500),
	})

	db.Model(&models.Player{}).Where("id = ?", f.bob.ID).Update("currency", 100)

	_, err := Accept(db, trade.ID, f.bob.ID)
	if !errors.Is(err, common.ErrConflict) {
		t.Fatalf("Expected conflict, got %v", err)
	}

	var reloaded models.Trade
	db.First(&reloaded, trade.ID)
	if reloaded.Status != models.TradeCancelled {
		t.Errorf("Expected CANCELLED, got %s", reloaded.Status)
	}
	aliceQty, _ := ledgerService.CardQuantity(db, f.alice.ID, f.cardX.ID)
	if aliceQty != 2 {
		t.Errorf("Offered card must stay with the proposer, got %d", aliceQty)
	}
}

func TestRejectAndCancel(t *testing.T) {
	db := newTestDB(t)
	f := seedTrade(t, db)

	newTrade := func() *models.Trade {
		trade, err := Create(db, CreateRequest{
			ProposerID: f.alice.ID, ReceiverID: f.bob.ID,
			OfferedCardID: f.cardX.ID, Price: int64Ptr(100),
		})
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		return trade
	}

	t.Run("receiver rejects", func(t *testing.T) {
		trade := newTrade()
		done, err := Reject(db, trade.ID, f.bob.ID)
		if err != nil || done.Status != models.TradeRejected {
			t.Errorf("Expected REJECTED, got %v (err %v)", done, err)
		}
	})

	t.Run("proposer cannot reject", func(t *testing.T) {
		trade := newTrade()
		if _, err := Reject(db, trade.ID, f.alice.ID); !errors.Is(err, common.ErrValidation) {
			t.Errorf("Expected validation error, got %v", err)
		}
	})

	t.Run("proposer cancels", func(t *testing.T) {
		trade := newTrade()
		done, err := Cancel(db, trade.ID, f.alice.ID)
		if err != nil || done.Status != models.TradeCancelled {
			t.Errorf("Expected CANCELLED, got %v (err %v)", done, err)
		}
	})

	t.Run("receiver cannot cancel", func(t *testing.T) {
		trade := newTrade()
		if _, err := Cancel(db, trade.ID, f.bob.ID); !errors.Is(err, common.ErrValidation) {
			t.Errorf("Expected validation error, got %v", err)
		}
	})

	t.Run("terminal trades are immutable", func(t *testing.T) {
		trade := newTrade()
		if _, err := Reject(db, trade.ID, f.bob.ID); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if _, err := Accept(db, trade.ID, f.bob.ID); !errors.Is(err, common.ErrPrecondition) {
			t.Errorf("Accepting a rejected trade should fail, got %v", err)
		}
		if _, err := Cancel(db, trade.ID, f.alice.ID); !errors.Is(err, common.ErrPrecondition) {
			t.Errorf("Cancelling a rejected trade should fail, got %v", err)
		}
	})
}

func TestAccept_UnknownTrade(t *testing.T) {
	db := newTestDB(t)
	f := seedTrade(t, db)

	_, err := Accept(db, 999, f.bob.ID)
	if !errors.Is(err, common.ErrNotFound) {
		t.Errorf("Expected not found, got %v", err)
	}
}

func TestListPlayerTrades(t *testing.T) {
	db := newTestDB(t)
	f := seedTrade(t, db)

	first, _ := Create(db, CreateRequest{
		ProposerID: f.alice.ID, ReceiverID: f.bob.ID,
		OfferedCardID: f.cardX.ID, Price: int64Ptr(100),
	})
	second, _ := Create(db, CreateRequest{
		ProposerID: f.bob.ID, ReceiverID: f.alice.ID,
		OfferedCardID: f.cardY.ID, Price: int64Ptr(200),
	})
	if _, err := Reject(db, first.ID, f.bob.ID); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	all, err := ListPlayerTrades(db, f.alice.ID, nil)
	if err != nil || len(all) != 2 {
		t.Fatalf("Expected 2 trades, got %d (err %v)", len(all), err)
	}
	if all[0].ID != second.ID {
		t.Errorf("Newest trade should come first")
	}

	pending := models.TradePending
	open, err := ListPlayerTrades(db, f.alice.ID, &pending)
	if err != nil || len(open) != 1 || open[0].ID != second.ID {
		t.Errorf("Expected only the pending trade, got %+v (err %v)", open, err)
	}
}
