package scheduler_jobs

import (
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"gachaCardBot/models"
	"gachaCardBot/services/common"
	"gachaCardBot/services/rankService"
)

func TestWeeklyTurnover(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test DB: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	err = db.AutoMigrate(&models.Player{}, &models.PvPRank{}, &models.EventLog{}, &models.ErrorLog{})
	if err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}

	// Stage a finished week, then run the turnover on Monday midnight.
	lastWeek := time.Date(2026, 8, 25, 12, 0, 0, 0, common.GameZone)
	monday := time.Date(2026, 8, 31, 0, 0, 0, 0, common.GameZone)
	now := lastWeek
	ranks := rankService.New(func() time.Time { return now })

	winner := models.Player{DiscordID: "winner"}
	runnerUp := models.Player{DiscordID: "runner-up"}
	db.Create(&winner)
	db.Create(&runnerUp)

	week := ranks.CurrentWeek()
	for i, p := range []models.Player{winner, runnerUp} {
		rank, err := ranks.PlayerRank(db, p.ID, week)
		if err != nil {
			t.Fatalf("Failed to init rank: %v", err)
		}
		rank.Points = 90 - i*20
		db.Save(rank)
	}

	now = monday
	if err := WeeklyTurnover(db, ranks); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	var first, second models.Player
	db.First(&first, winner.ID)
	db.First(&second, runnerUp.ID)
	if first.Currency != 50_000 || second.Currency != 40_000 {
		t.Errorf("Expected payouts 50000/40000, got %d/%d", first.Currency, second.Currency)
	}

	newWeek := ranks.CurrentWeek()
	for _, p := range []models.Player{winner, runnerUp} {
		rank, err := ranks.PlayerRank(db, p.ID, newWeek)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if rank.Points != 50 {
			t.Errorf("New week should start at 50 points, got %d", rank.Points)
		}
	}
}

func TestLocationIsGameZone(t *testing.T) {
	if Location() != common.GameZone {
		t.Errorf("Cron must run in the game zone")
	}
}
