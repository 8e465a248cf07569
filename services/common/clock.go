package common

import "time"

// GameZone is the single fixed offset all calendar boundaries use.
var GameZone = time.FixedZone("UTC+8", 8*60*60)

// Clock supplies the current time so day and week boundaries are testable.
type Clock func() time.Time

// Now is the production clock.
func Now() time.Time {
	return time.Now().In(GameZone)
}

// CurrentWeek returns the week index for t: weeks since epoch, anchored to
// the Monday 00:00 boundary in GameZone.
func CurrentWeek(t time.Time) int {
	t = t.In(GameZone)
	daysSinceMonday := (int(t.Weekday()) + 6) % 7
	monday := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, GameZone).
		AddDate(0, 0, -daysSinceMonday)
	return int(monday.Unix() / (7 * 24 * 3600))
}

// IsNewDay reports whether now falls on a later GameZone calendar day than
// last. A nil last always counts as a new day.
func IsNewDay(last *time.Time, now time.Time) bool {
	if last == nil {
		return true
	}
	ly, lm, ld := last.In(GameZone).Date()
	ny, nm, nd := now.In(GameZone).Date()
	if ny != ly {
		return ny > ly
	}
	if nm != lm {
		return nm > lm
	}
	return nd > ld
}
