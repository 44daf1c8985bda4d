package appointment

import (
	"time"

	"github.com/BruksfildServices01/booking-flow/internal/models"
)

// Shift is a working day resolved to concrete instants.
type Shift struct {
	Start      time.Time
	End        time.Time
	LunchStart time.Time
	LunchEnd   time.Time
	HasLunch   bool
}

// ShiftOn resolves the working hours on the calendar day of day, in its
// location. ok is false when the professional does not work that day.
func ShiftOn(wh *models.WorkingHours, day time.Time) (s Shift, ok bool) {
	if wh == nil || !wh.Active || wh.StartTime == "" || wh.EndTime == "" {
		return Shift{}, false
	}

	loc := day.Location()
	parseHM := func(hm string) time.Time {
		t, _ := time.Parse("15:04", hm)
		return time.Date(
			day.Year(), day.Month(), day.Day(),
			t.Hour(), t.Minute(), 0, 0,
			loc,
		)
	}

	s.Start = parseHM(wh.StartTime)
	s.End = parseHM(wh.EndTime)

	if wh.LunchStart != "" && wh.LunchEnd != "" {
		s.HasLunch = true
		s.LunchStart = parseHM(wh.LunchStart)
		s.LunchEnd = parseHM(wh.LunchEnd)
	}

	return s, s.Start.Before(s.End)
}

// Fits reports whether [start, end) lies within the shift and clear of
// the lunch break.
func (s Shift) Fits(start, end time.Time) bool {
	if start.Before(s.Start) || end.After(s.End) {
		return false
	}
	if s.HasLunch && start.Before(s.LunchEnd) && end.After(s.LunchStart) {
		return false
	}
	return true
}
