package availability

import (
	"context"
	"time"

	domain "github.com/BruksfildServices01/booking-flow/internal/domain/appointment"
	"github.com/BruksfildServices01/booking-flow/internal/domain/booking"
	"github.com/BruksfildServices01/booking-flow/internal/httperr"
	"github.com/BruksfildServices01/booking-flow/internal/timezone"
)

const (
	DefaultStepMinutes = 15
	DefaultMinAdvance  = 120
)

// ======================================================
// USE CASE
// ======================================================

// GetFreeTime lists the start times at which an appointment of the
// required length fits a professional's day.
type GetFreeTime struct {
	repo         domain.Repository
	barbershopID uint
	stepMinutes  int
	now          func() time.Time
}

func NewGetFreeTime(
	repo domain.Repository,
	barbershopID uint,
	stepMinutes int,
) *GetFreeTime {
	if stepMinutes <= 0 {
		stepMinutes = DefaultStepMinutes
	}
	return &GetFreeTime{
		repo:         repo,
		barbershopID: barbershopID,
		stepMinutes:  stepMinutes,
		now:          time.Now,
	}
}

// GetFreeTime answers a slot query of the booking flow.
func (uc *GetFreeTime) GetFreeTime(
	ctx context.Context,
	q booking.FreeTimeQuery,
) ([]booking.TimeSlot, error) {

	shop, err := uc.repo.GetBarbershopByID(ctx, uc.barbershopID)
	if err != nil {
		return nil, err
	}

	date, err := timezone.ParseDate(shop.Timezone, q.Date)
	if err != nil {
		return nil, httperr.ErrBusiness("invalid_date")
	}

	free, err := uc.Execute(ctx, domain.AvailabilityInput{
		BarbershopID:    uc.barbershopID,
		ProfessionalID:  q.ProfessionalID,
		Date:            date,
		RequiredMinutes: q.RequiredMinutes,
	})
	if err != nil {
		return nil, err
	}

	slots := make([]booking.TimeSlot, 0, len(free))
	for _, s := range free {
		slots = append(slots, booking.TimeSlot{Display: s.Display, Total: s.Total})
	}
	return slots, nil
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *GetFreeTime) Execute(
	ctx context.Context,
	in domain.AvailabilityInput,
) ([]domain.FreeSlot, error) {

	if in.RequiredMinutes <= 0 {
		return nil, httperr.ErrBusiness("invalid_duration")
	}

	shop, err := uc.repo.GetBarbershopByID(ctx, in.BarbershopID)
	if err != nil {
		return nil, err
	}

	weekday := int(in.Date.Weekday())

	wh, err := uc.repo.GetWorkingHours(ctx, in.ProfessionalID, weekday)
	if err != nil {
		return []domain.FreeSlot{}, nil
	}

	shift, ok := domain.ShiftOn(wh, in.Date)
	if !ok {
		return []domain.FreeSlot{}, nil
	}

	closures, err := uc.repo.ListClosures(
		ctx,
		in.BarbershopID,
		in.ProfessionalID,
		in.Date.Format(timezone.DateLayout),
		in.Date.Format(timezone.DateLayout),
	)
	if err != nil {
		return nil, err
	}
	if len(closures) > 0 {
		return []domain.FreeSlot{}, nil
	}

	appointments, err := uc.repo.ListAppointmentsForDay(
		ctx,
		in.ProfessionalID,
		shift.Start,
		shift.End,
	)
	if err != nil {
		return nil, err
	}

	minAdvance := shop.MinAdvanceMinutes
	if minAdvance <= 0 {
		minAdvance = DefaultMinAdvance
	}
	earliest := uc.now().In(in.Date.Location()).Add(time.Duration(minAdvance) * time.Minute)

	required := time.Duration(in.RequiredMinutes) * time.Minute
	step := time.Duration(uc.stepMinutes) * time.Minute

	slots := []domain.FreeSlot{}
	apIdx := 0

	for cur := shift.Start; !cur.Add(required).After(shift.End); cur = cur.Add(step) {

		slotStart := cur
		slotEnd := cur.Add(required)

		if slotStart.Before(earliest) {
			continue
		}

		// almoço
		if !shift.Fits(slotStart, slotEnd) {
			continue
		}

		// avança agendamentos finalizados
		for apIdx < len(appointments) && !appointments[apIdx].EndTime.After(slotStart) {
			apIdx++
		}

		conflict := false
		for i := apIdx; i < len(appointments) && appointments[i].StartTime.Before(slotEnd); i++ {
			if appointments[i].EndTime.After(slotStart) {
				conflict = true
				break
			}
		}

		if !conflict {
			slots = append(slots, domain.FreeSlot{
				Display: slotStart.Format("15:04"),
				Total:   slotStart.Hour()*60 + slotStart.Minute(),
			})
		}
	}

	return slots, nil
}

var _ booking.Availability = (*GetFreeTime)(nil)
