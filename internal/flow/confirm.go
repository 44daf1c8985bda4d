package flow

import (
	"context"

	"github.com/BruksfildServices01/booking-flow/internal/domain/booking"
	"github.com/BruksfildServices01/booking-flow/internal/httperr"
	"github.com/BruksfildServices01/booking-flow/internal/validators"
)

// confirmValidator is the last step: it books the appointment and writes
// its id into the draft. Booking conflicts send the user back to pick
// another time.
type confirmValidator struct {
	booker         booking.Booker
	professionalID uint
}

func (v *confirmValidator) Validate(ctx context.Context, d *booking.Draft) error {
	if d.ConfirmedStep == nil {
		return booking.FieldErrors{string(booking.StepConfirmed): MsgConfirmDetails}
	}

	errs := validators.Struct(string(booking.StepConfirmed), *d.ConfirmedStep, validators.Messages{
		"clientId":   MsgUnknownClient,
		"clientName": MsgUnknownClient,
	})
	if len(errs) > 0 {
		return errs
	}

	// a retry after a booked confirmation must not book twice
	if d.ConfirmedStep.AppointmentID != 0 {
		return nil
	}

	if d.DayHourStep == nil || d.DayHourStep.Date == "" || d.DayHourStep.StartTime == nil {
		return booking.FieldErrors{string(booking.StepDayHour): MsgSelectDayHour}
	}

	receipt, err := v.booker.Book(ctx, booking.BookingRequest{
		ProfessionalID: v.professionalID,
		ClientID:       d.ConfirmedStep.ClientID,
		Services:       booking.ServiceSelection(*d),
		Date:           d.DayHourStep.Date,
		StartTime:      *d.DayHourStep.StartTime,
		Notes:          d.ConfirmedStep.Notes,
	})
	if err != nil {
		switch httperr.BusinessCode(err) {
		case "time_conflict":
			return booking.FieldErrors{"dayHourStep.startTime": MsgSlotTaken}
		case "outside_working_hours":
			return booking.FieldErrors{"dayHourStep.startTime": MsgOutsideHours}
		case "too_soon":
			return booking.FieldErrors{"dayHourStep.startTime": MsgTooSoon}
		case "service_not_found":
			return booking.FieldErrors{string(booking.StepService): MsgSelectService}
		case "client_not_found":
			return booking.FieldErrors{string(booking.StepConfirmed): MsgUnknownClient}
		}
		return err
	}

	d.ConfirmedStep.AppointmentID = receipt.AppointmentID
	return nil
}
