package appointment

import (
	"context"
	"time"

	"github.com/BruksfildServices01/booking-flow/internal/models"
)

type Repository interface {
	// -------- Barbershop --------
	GetBarbershopByID(
		ctx context.Context,
		id uint,
	) (*models.Barbershop, error)

	// -------- Services --------
	ListServicesByID(
		ctx context.Context,
		barbershopID uint,
		ids []uint,
	) ([]models.Service, error)

	// -------- Client --------
	GetClient(
		ctx context.Context,
		barbershopID uint,
		clientID uint,
	) (*models.Client, error)

	// -------- Appointment --------

	// CreateIfFree inserts ap unless another scheduled appointment of the
	// same professional overlaps it, in which case it returns the
	// time_conflict business error.
	CreateIfFree(
		ctx context.Context,
		ap *models.Appointment,
	) error

	// -------- Availability --------
	GetWorkingHours(
		ctx context.Context,
		professionalID uint,
		weekday int,
	) (*models.WorkingHours, error)

	ListWorkingHours(
		ctx context.Context,
		professionalID uint,
	) ([]models.WorkingHours, error)

	ListClosures(
		ctx context.Context,
		barbershopID uint,
		professionalID uint,
		from string,
		to string,
	) ([]models.Closure, error)

	ListAppointmentsForDay(
		ctx context.Context,
		professionalID uint,
		start time.Time,
		end time.Time,
	) ([]models.Appointment, error)
}
