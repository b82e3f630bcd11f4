package domain

import (
	"fmt"
	"time"
)

// ScheduleEntryStatus is the execution state of an entry for its most
// recent occurrence. An entry becomes eligible again at the next
// calendar occurrence of its window.
type ScheduleEntryStatus string

const (
	SchedulePending  ScheduleEntryStatus = "pending"
	ScheduleExecuted ScheduleEntryStatus = "executed"
	ScheduleFailed   ScheduleEntryStatus = "failed"
)

// ScheduleEntry is a recurring day/hour activation window for one
// campaign. An activate entry fires when the window opens, a pause entry
// fires when the window closes. LastOccurrence records the occurrence
// key of the last firing so a tick never fires twice for the same
// calendar occurrence regardless of tick frequency.
type ScheduleEntry struct {
	ID         string
	CampaignID string
	DayOfWeek  int // 0 = Monday .. 6 = Sunday
	StartHour  int
	EndHour    int // exclusive; must be > StartHour
	Action     ActionType

	Status         ScheduleEntryStatus
	LastOccurrence string
	LastExecutedAt *time.Time
	CreatedAt      time.Time
}

// Due reports whether the entry should fire at now, and the occurrence
// key identifying the calendar occurrence that would be consumed. An
// activate entry is due from the window's start boundary until its end;
// a pause entry is due from the window's end boundary until the end of
// the day. Due does not consult LastOccurrence; callers compare the
// returned key against it.
func (e ScheduleEntry) Due(now time.Time) (string, bool) {
	// time.Weekday counts from Sunday; schedule days count from Monday.
	day := (int(now.Weekday()) + 6) % 7
	if day != e.DayOfWeek {
		return "", false
	}
	hour := now.Hour()
	switch e.Action {
	case ActionActivate:
		if hour >= e.StartHour && hour < e.EndHour {
			return e.OccurrenceKey(now, e.StartHour), true
		}
	case ActionPause:
		if hour >= e.EndHour {
			return e.OccurrenceKey(now, e.EndHour), true
		}
	}
	return "", false
}

// OccurrenceKey names one calendar occurrence of the entry's boundary
// hour on the date of now.
func (e ScheduleEntry) OccurrenceKey(now time.Time, boundaryHour int) string {
	return fmt.Sprintf("%s#%02d", now.Format("2006-01-02"), boundaryHour)
}
