package resolver

import (
	"sort"
	"time"

	"github.com/BruksfildServices01/booking-flow/internal/domain/booking"
)

const dateLayout = "2006-01-02"

// DateBounds constrains the date picker: the first and last selectable
// dates and the closed dates in between.
type DateBounds struct {
	Min    string   `json:"minDate"`
	Max    string   `json:"maxDate"`
	Closed []string `json:"closedDays"`
}

func Bounds(days []booking.WorkingDay) DateBounds {
	var (
		first, last time.Time
		closed      []string
		seen        bool
	)

	for _, day := range days {
		t, err := time.Parse(dateLayout, day.Date)
		if err != nil {
			continue
		}

		if !seen || t.Before(first) {
			first = t
		}
		if !seen || t.After(last) {
			last = t
		}
		seen = true

		if day.IsClosed {
			closed = append(closed, t.Format(dateLayout))
		}
	}

	if !seen {
		return DateBounds{Closed: []string{}}
	}

	sort.Strings(closed)
	if closed == nil {
		closed = []string{}
	}

	return DateBounds{
		Min:    first.Format(dateLayout),
		Max:    last.Format(dateLayout),
		Closed: closed,
	}
}

// Allows reports whether date falls inside the bounds and is not closed.
func (b DateBounds) Allows(date string) bool {
	if b.Min == "" {
		return false
	}

	t, err := time.Parse(dateLayout, date)
	if err != nil {
		return false
	}
	d := t.Format(dateLayout)

	if d < b.Min || d > b.Max {
		return false
	}

	i := sort.SearchStrings(b.Closed, d)
	return i >= len(b.Closed) || b.Closed[i] != d
}
