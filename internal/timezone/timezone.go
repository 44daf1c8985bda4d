package timezone

import "time"

const (
	DefaultTimezone = "America/Sao_Paulo"

	// DateLayout is the calendar date format of the booking flow.
	DateLayout = "2006-01-02"
)

func IsValid(tz string) bool {
	if tz == "" {
		return false
	}
	_, err := time.LoadLocation(tz)
	return err == nil
}

// Location falls back to the default timezone when tz is empty or unknown.
func Location(tz string) *time.Location {
	if IsValid(tz) {
		if loc, err := time.LoadLocation(tz); err == nil {
			return loc
		}
	}

	loc, err := time.LoadLocation(DefaultTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ParseDate reads a YYYY-MM-DD date as midnight in tz.
func ParseDate(tz, date string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, date, Location(tz))
}

// StartOfDay is midnight of the day t falls on, in tz.
func StartOfDay(tz string, t time.Time) time.Time {
	t = t.In(Location(tz))
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
