package routes

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/booking-flow/internal/audit"
	"github.com/BruksfildServices01/booking-flow/internal/config"
	"github.com/BruksfildServices01/booking-flow/internal/domain/booking"
	"github.com/BruksfildServices01/booking-flow/internal/flow"
	"github.com/BruksfildServices01/booking-flow/internal/handlers"
	infraRepo "github.com/BruksfildServices01/booking-flow/internal/infra/repository"
	"github.com/BruksfildServices01/booking-flow/internal/metrics"
	ucAppointment "github.com/BruksfildServices01/booking-flow/internal/usecase/appointment"
	ucAvailability "github.com/BruksfildServices01/booking-flow/internal/usecase/availability"
)

// shopDeps wires the flow collaborators of one barbershop.
type shopDeps struct {
	db           *gorm.DB
	cfg          *config.Config
	catalog      *infraRepo.CatalogGormRepository
	appointments *infraRepo.AppointmentGormRepository
	verifier     booking.PhoneVerifier
	audit        *audit.Dispatcher
	log          *zap.Logger
}

func (s *shopDeps) Resolve(ctx context.Context, slug string) (flow.Deps, error) {
	shop, err := s.catalog.GetBarbershopBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return flow.Deps{}, handlers.ErrShopNotFound
		}
		return flow.Deps{}, err
	}

	professional, err := s.catalog.DefaultProfessional(ctx, shop.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return flow.Deps{}, handlers.ErrShopNotFound
		}
		return flow.Deps{}, err
	}

	return flow.Deps{
		BarbershopID:   shop.ID,
		ProfessionalID: professional.ID,

		Verifier:  s.verifier,
		Directory: infraRepo.NewClientGormDirectory(s.db, shop.ID),
		Availability: ucAvailability.NewGetFreeTime(
			s.appointments,
			shop.ID,
			s.cfg.SlotStepMinutes,
		),
		WorkingDays: ucAvailability.NewListWorkingDays(
			s.appointments,
			shop.ID,
			professional.ID,
			s.cfg.BookingWindowDays,
		),
		Booker: ucAppointment.NewCreateAppointment(
			s.appointments,
			shop.ID,
			s.audit,
		),

		Audit:    s.audit,
		Observer: metrics.ObserveFlow,
		Log:      s.log.With(zap.String("shop", shop.Slug)),
	}, nil
}
