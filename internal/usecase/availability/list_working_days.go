package availability

import (
	"context"
	"time"

	domain "github.com/BruksfildServices01/booking-flow/internal/domain/appointment"
	"github.com/BruksfildServices01/booking-flow/internal/domain/booking"
	"github.com/BruksfildServices01/booking-flow/internal/timezone"
)

const DefaultWindowDays = 30

// ListWorkingDays builds the bookable window starting today: weekdays the
// professional does not work and closures are marked closed.
type ListWorkingDays struct {
	repo           domain.Repository
	barbershopID   uint
	professionalID uint
	windowDays     int
	now            func() time.Time
}

func NewListWorkingDays(
	repo domain.Repository,
	barbershopID uint,
	professionalID uint,
	windowDays int,
) *ListWorkingDays {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	return &ListWorkingDays{
		repo:           repo,
		barbershopID:   barbershopID,
		professionalID: professionalID,
		windowDays:     windowDays,
		now:            time.Now,
	}
}

func (uc *ListWorkingDays) List(ctx context.Context) ([]booking.WorkingDay, error) {
	shop, err := uc.repo.GetBarbershopByID(ctx, uc.barbershopID)
	if err != nil {
		return nil, err
	}

	hours, err := uc.repo.ListWorkingHours(ctx, uc.professionalID)
	if err != nil {
		return nil, err
	}

	open := map[int]bool{}
	for i := range hours {
		if _, ok := domain.ShiftOn(&hours[i], uc.now()); ok {
			open[hours[i].Weekday] = true
		}
	}

	first := timezone.StartOfDay(shop.Timezone, uc.now())
	last := first.AddDate(0, 0, uc.windowDays-1)

	closures, err := uc.repo.ListClosures(
		ctx,
		uc.barbershopID,
		uc.professionalID,
		first.Format(timezone.DateLayout),
		last.Format(timezone.DateLayout),
	)
	if err != nil {
		return nil, err
	}

	closed := map[string]bool{}
	for _, c := range closures {
		closed[c.Date] = true
	}

	days := make([]booking.WorkingDay, 0, uc.windowDays)
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		date := d.Format(timezone.DateLayout)
		days = append(days, booking.WorkingDay{
			Date:     date,
			IsClosed: !open[int(d.Weekday())] || closed[date],
		})
	}

	return days, nil
}

var _ booking.WorkingDayCatalog = (*ListWorkingDays)(nil)
