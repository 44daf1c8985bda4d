package availability

import (
	"context"
	"errors"
	"time"

	"github.com/BruksfildServices01/booking-flow/internal/models"
)

var errNoHours = errors.New("record not found")

// fakeRepo serves one barbershop and one professional from memory.
type fakeRepo struct {
	shop         models.Barbershop
	hours        map[int]models.WorkingHours
	closures     []models.Closure
	appointments []models.Appointment
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		shop:  models.Barbershop{ID: 1, Timezone: "UTC", MinAdvanceMinutes: 120},
		hours: map[int]models.WorkingHours{},
	}
}

func (r *fakeRepo) GetBarbershopByID(context.Context, uint) (*models.Barbershop, error) {
	shop := r.shop
	return &shop, nil
}

func (r *fakeRepo) ListServicesByID(context.Context, uint, []uint) ([]models.Service, error) {
	return nil, nil
}

func (r *fakeRepo) GetClient(context.Context, uint, uint) (*models.Client, error) {
	return nil, errNoHours
}

func (r *fakeRepo) CreateIfFree(context.Context, *models.Appointment) error {
	return nil
}

func (r *fakeRepo) GetWorkingHours(_ context.Context, _ uint, weekday int) (*models.WorkingHours, error) {
	wh, ok := r.hours[weekday]
	if !ok {
		return nil, errNoHours
	}
	return &wh, nil
}

func (r *fakeRepo) ListWorkingHours(context.Context, uint) ([]models.WorkingHours, error) {
	out := make([]models.WorkingHours, 0, len(r.hours))
	for _, wh := range r.hours {
		out = append(out, wh)
	}
	return out, nil
}

func (r *fakeRepo) ListClosures(_ context.Context, _ uint, _ uint, from, to string) ([]models.Closure, error) {
	var out []models.Closure
	for _, c := range r.closures {
		if c.Date >= from && c.Date <= to {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeRepo) ListAppointmentsForDay(_ context.Context, _ uint, start, end time.Time) ([]models.Appointment, error) {
	var out []models.Appointment
	for _, ap := range r.appointments {
		if ap.StartTime.Before(end) && ap.EndTime.After(start) {
			out = append(out, ap)
		}
	}
	return out, nil
}
