package appointment

import (
	"context"
	"time"

	"github.com/BruksfildServices01/booking-flow/internal/audit"
	domain "github.com/BruksfildServices01/booking-flow/internal/domain/appointment"
	"github.com/BruksfildServices01/booking-flow/internal/domain/booking"
	"github.com/BruksfildServices01/booking-flow/internal/httperr"
	"github.com/BruksfildServices01/booking-flow/internal/models"
	"github.com/BruksfildServices01/booking-flow/internal/timezone"
)

const defaultMinAdvance = 120

type Auditor interface {
	Dispatch(ev audit.Event)
}

// ======================================================
// USE CASE
// ======================================================

// CreateAppointment books the appointment confirmed at the end of the
// booking flow.
type CreateAppointment struct {
	repo         domain.Repository
	barbershopID uint
	audit        Auditor
	now          func() time.Time
}

func NewCreateAppointment(
	repo domain.Repository,
	barbershopID uint,
	audit Auditor,
) *CreateAppointment {
	return &CreateAppointment{
		repo:         repo,
		barbershopID: barbershopID,
		audit:        audit,
		now:          time.Now,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *CreateAppointment) Book(
	ctx context.Context,
	in booking.BookingRequest,
) (*booking.BookingReceipt, error) {

	// --------------------------------------------------
	// Barbearia
	// --------------------------------------------------
	shop, err := uc.repo.GetBarbershopByID(ctx, uc.barbershopID)
	if err != nil {
		return nil, err
	}
	loc := timezone.Location(shop.Timezone)

	// --------------------------------------------------
	// Data / hora no timezone da barbearia
	// --------------------------------------------------
	day, err := timezone.ParseDate(shop.Timezone, in.Date)
	if err != nil || in.StartTime < 0 || in.StartTime >= 24*60 {
		return nil, httperr.ErrBusiness("invalid_date_or_time")
	}
	start := time.Date(day.Year(), day.Month(), day.Day(), in.StartTime/60, in.StartTime%60, 0, 0, loc)

	// --------------------------------------------------
	// Antecedência mínima
	// --------------------------------------------------
	minAdvance := shop.MinAdvanceMinutes
	if minAdvance <= 0 {
		minAdvance = defaultMinAdvance
	}
	if start.Before(uc.now().In(loc).Add(time.Duration(minAdvance) * time.Minute)) {
		return nil, httperr.ErrBusiness("too_soon")
	}

	// --------------------------------------------------
	// Serviços (duração vem do catálogo, não do rascunho)
	// --------------------------------------------------
	ids := make([]uint, 0, len(in.Services))
	for _, s := range in.Services {
		ids = append(ids, s.ID)
	}
	if len(ids) == 0 {
		return nil, httperr.ErrBusiness("service_not_found")
	}

	services, err := uc.repo.ListServicesByID(ctx, uc.barbershopID, ids)
	if err != nil {
		return nil, err
	}
	if len(services) != len(ids) {
		return nil, httperr.ErrBusiness("service_not_found")
	}

	minutes := 0
	for _, s := range services {
		minutes += s.DurationMin
	}
	end := start.Add(time.Duration(minutes) * time.Minute)

	// --------------------------------------------------
	// Working hours + almoço
	// --------------------------------------------------
	wh, err := uc.repo.GetWorkingHours(ctx, in.ProfessionalID, int(start.Weekday()))
	if err != nil {
		return nil, httperr.ErrBusiness("outside_working_hours")
	}
	shift, ok := domain.ShiftOn(wh, start)
	if !ok || !shift.Fits(start, end) {
		return nil, httperr.ErrBusiness("outside_working_hours")
	}

	// --------------------------------------------------
	// Cliente
	// --------------------------------------------------
	client, err := uc.repo.GetClient(ctx, uc.barbershopID, in.ClientID)
	if err != nil {
		return nil, httperr.ErrBusiness("client_not_found")
	}

	// --------------------------------------------------
	// Criação (conflito checado na mesma transação)
	// --------------------------------------------------
	ap := &models.Appointment{
		BarbershopID:    uc.barbershopID,
		ProfessionalID:  in.ProfessionalID,
		ClientID:        client.ID,
		Services:        services,
		StartTime:       start,
		EndTime:         end,
		DurationMinutes: minutes,
		Status:          string(domain.InitialStatus()),
		Origin:          domain.OriginBookingFlow,
		Notes:           in.Notes,
	}

	if err := uc.repo.CreateIfFree(ctx, ap); err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// Auditoria
	// --------------------------------------------------
	if uc.audit != nil {
		uc.audit.Dispatch(audit.Event{
			BarbershopID: uc.barbershopID,
			ClientID:     &client.ID,
			Action:       "appointment_created",
			Entity:       "appointment",
			EntityID:     &ap.ID,
		})
	}

	return &booking.BookingReceipt{AppointmentID: ap.ID}, nil
}

var _ booking.Booker = (*CreateAppointment)(nil)
