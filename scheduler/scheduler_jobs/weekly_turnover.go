package scheduler_jobs

import (
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"gachaCardBot/services/common"
	"gachaCardBot/services/rankService"
)

func Location() *time.Location {
	return common.GameZone
}

// WeeklyTurnover distributes the ended week's rewards, then creates the
// new week's rank rows. Reward payout runs first so it reads the final
// standings before anything else touches the new week.
func WeeklyTurnover(db *gorm.DB, ranks *rankService.Engine) error {
	rewarded, err := ranks.DistributeWeeklyRewards(db)
	if err != nil {
		return fmt.Errorf("error distributing weekly rewards: %v", err)
	}

	reset, err := ranks.RolloverWeek(db)
	if err != nil {
		return fmt.Errorf("error rolling over week: %v", err)
	}

	log.Printf("weekly turnover: %d players rewarded, %d rank rows created", rewarded, reset)
	return nil
}
