package common

import (
	"testing"
	"time"
)

func TestCurrentWeek_MondayBoundary(t *testing.T) {
	// 2026-08-24 is a Monday.
	monday := time.Date(2026, 8, 24, 0, 0, 0, 0, GameZone)
	sundayBefore := time.Date(2026, 8, 23, 23, 59, 59, 0, GameZone)
	sundayAfter := time.Date(2026, 8, 30, 23, 59, 59, 0, GameZone)
	nextMonday := time.Date(2026, 8, 31, 0, 0, 0, 0, GameZone)

	week := CurrentWeek(monday)
	if CurrentWeek(sundayBefore) != week-1 {
		t.Errorf("Sunday before Monday should be the previous week")
	}
	if CurrentWeek(sundayAfter) != week {
		t.Errorf("Sunday of the same week should share the week index")
	}
	if CurrentWeek(nextMonday) != week+1 {
		t.Errorf("next Monday should start a new week")
	}
}

func TestCurrentWeek_SameForWholeWeek(t *testing.T) {
	monday := time.Date(2026, 8, 24, 0, 0, 0, 0, GameZone)
	week := CurrentWeek(monday)
	for day := 0; day < 7; day++ {
		d := monday.AddDate(0, 0, day).Add(13 * time.Hour)
		if CurrentWeek(d) != week {
			t.Errorf("day %d of the week got index %d, want %d", day, CurrentWeek(d), week)
		}
	}
}

func TestCurrentWeek_UsesGameZone(t *testing.T) {
	// Sunday 20:00 UTC is already Monday 04:00 in UTC+8.
	sundayUTC := time.Date(2026, 8, 23, 20, 0, 0, 0, time.UTC)
	monday := time.Date(2026, 8, 24, 4, 0, 0, 0, GameZone)
	if CurrentWeek(sundayUTC) != CurrentWeek(monday) {
		t.Errorf("week index must be computed in the game zone, not the wall zone")
	}
}

func TestIsNewDay(t *testing.T) {
	day := func(y int, m time.Month, d, hh, mm int) time.Time {
		return time.Date(y, m, d, hh, mm, 0, 0, GameZone)
	}

	tests := []struct {
		name string
		last *time.Time
		now  time.Time
		want bool
	}{
		{"nil last is always new", nil, day(2026, 3, 3, 10, 0), true},
		{"same day", timePtr(day(2026, 3, 3, 1, 0)), day(2026, 3, 3, 23, 0), false},
		{"next day", timePtr(day(2026, 3, 3, 23, 30)), day(2026, 3, 4, 0, 10), true},
		{"month boundary", timePtr(day(2026, 2, 28, 23, 0)), day(2026, 3, 1, 0, 5), true},
		{"year boundary", timePtr(day(2025, 12, 31, 23, 0)), day(2026, 1, 1, 0, 5), true},
		{"clock went backwards", timePtr(day(2026, 3, 4, 1, 0)), day(2026, 3, 3, 23, 0), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNewDay(tt.last, tt.now); got != tt.want {
				t.Errorf("IsNewDay() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsNewDay_UTCInputsCrossGameZoneMidnight(t *testing.T) {
	// 15:30 UTC is 23:30 UTC+8; an hour later it is 00:30 the next game day.
	last := time.Date(2026, 3, 3, 15, 30, 0, 0, time.UTC)
	now := time.Date(2026, 3, 3, 16, 30, 0, 0, time.UTC)
	if !IsNewDay(&last, now) {
		t.Errorf("one UTC hour crossed the UTC+8 midnight, expected a new day")
	}
}

func timePtr(t time.Time) *time.Time { return &t }
