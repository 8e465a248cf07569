package scheduler

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"gachaCardBot/models"
	"gachaCardBot/scheduler/scheduler_jobs"
	"gachaCardBot/services/rankService"
)

// SetupCron schedules the weekly leaderboard turnover. The cron runs in
// the game's fixed UTC+8 zone so "Monday 00:00" matches the week key.
func SetupCron(db *gorm.DB, ranks *rankService.Engine) *cron.Cron {
	cronService := cron.New(cron.WithLocation(scheduler_jobs.Location()))

	_, err := cronService.AddFunc("0 0 * * 1", func() {
		// Monday 00:00 UTC+8: pay out the ended week, then seed the new one
		if err := scheduler_jobs.WeeklyTurnover(db, ranks); err != nil {
			fmt.Println(err)
		}
	})

	if err != nil {
		errLog := models.ErrorLog{
			Source:  "CRON ERR",
			Message: fmt.Sprintf("%v", err),
		}
		db.Create(&errLog)
	}

	cronService.Start()
	return cronService
}
