package flow

import (
	"context"
	"fmt"

	"github.com/BruksfildServices01/booking-flow/internal/domain/booking"
	"github.com/BruksfildServices01/booking-flow/internal/resolver"
	"github.com/BruksfildServices01/booking-flow/internal/validators"
)

const (
	MsgSelectCategory   = "Selecione uma categoria."
	MsgSelectService    = "Selecione um serviço."
	MsgServiceDuration  = "Serviço sem duração definida."
	MsgRepeatedService  = "Serviço repetido."
	MsgSelectDayHour    = "Selecione a data e o horário."
	MsgSelectDate       = "Selecione uma data."
	MsgSelectTime       = "Selecione um horário."
	MsgDateUnavailable  = "Data indisponível."
	MsgTimeUnavailable  = "Horário indisponível para a data selecionada."
	MsgNoServices       = "Selecione ao menos um serviço."
	MsgConfirmDetails   = "Confirme seus dados."
	MsgUnknownClient    = "Cliente não identificado."
	MsgWhatsAppRequired = "Whatsapp é obrigatório."
	MsgInvalidWhatsApp  = "O Whatsapp informado é inválido"
	MsgNameRequired     = "Informe seu nome."
	MsgBirthDay         = "Informe o dia do seu aniversário."
	MsgBirthMonth       = "Informe o mês do seu aniversário."
	MsgInvalidBirthDate = "Data de aniversário inválida."
	MsgSlotTaken        = "Este horário acabou de ser reservado. Escolha outro."
	MsgOutsideHours     = "Horário fora do expediente."
	MsgTooSoon          = "Horário muito próximo. Escolha um horário mais tarde."
)

// ======================================================
// CATEGORY
// ======================================================

func validateCategory(_ context.Context, d *booking.Draft) error {
	if d.CategoryStep == nil {
		return booking.FieldErrors{string(booking.StepCategory): MsgSelectCategory}
	}

	return validators.Struct(string(booking.StepCategory), *d.CategoryStep, validators.Messages{
		"categoryId": MsgSelectCategory,
	}).Err()
}

// ======================================================
// SERVICE
// ======================================================

func validateService(_ context.Context, d *booking.Draft) error {
	if d.ServiceStep == nil {
		return booking.FieldErrors{string(booking.StepService): MsgSelectService}
	}

	return validators.Struct(string(booking.StepService), *d.ServiceStep, validators.Messages{
		"service.id":              MsgSelectService,
		"service.durationMinutes": MsgServiceDuration,
	}).Err()
}

// ======================================================
// ADDITIONAL SERVICES (optional, may be empty)
// ======================================================

func validateServiceAdd(_ context.Context, d *booking.Draft) error {
	errs := booking.FieldErrors{}

	seen := map[uint]bool{}
	if d.ServiceStep != nil {
		seen[d.ServiceStep.Service.ID] = true
	}

	for i, item := range d.ServiceAddStep {
		prefix := fmt.Sprintf("%s.%d", booking.StepServiceAdd, i)

		for k, v := range validators.Struct(prefix, item, validators.Messages{
			"id":              MsgSelectService,
			"durationMinutes": MsgServiceDuration,
		}) {
			errs.Add(k, v)
		}

		if item.ID != 0 && seen[item.ID] {
			errs.Add(prefix+".id", MsgRepeatedService)
		}
		seen[item.ID] = true
	}

	return errs.Err()
}

// ======================================================
// DATE AND TIME
// ======================================================

// dayHourValidator re-derives the required duration and makes sure the
// chosen start time is one the availability service offers for that date
// and duration, asking it again when the cached answer does not match.
type dayHourValidator struct {
	slots          *resolver.Slots
	professionalID uint
	bounds         func(ctx context.Context) resolver.DateBounds
}

func (v *dayHourValidator) Validate(ctx context.Context, d *booking.Draft) error {
	if d.DayHourStep == nil {
		return booking.FieldErrors{string(booking.StepDayHour): MsgSelectDayHour}
	}

	minutes := resolver.TotalDuration(booking.ServiceSelection(*d))
	if minutes <= 0 {
		return booking.FieldErrors{string(booking.StepDayHour): MsgNoServices}
	}
	d.DayHourStep.DurationMinutes = minutes

	errs := validators.Struct(string(booking.StepDayHour), *d.DayHourStep, validators.Messages{
		"date":      MsgSelectDate,
		"startTime": MsgSelectTime,
	})
	if len(errs) > 0 {
		return errs
	}

	if !v.bounds(ctx).Allows(d.DayHourStep.Date) {
		return booking.FieldErrors{"dayHourStep.date": MsgDateUnavailable}
	}

	q := booking.FreeTimeQuery{
		Date:            d.DayHourStep.Date,
		ProfessionalID:  v.professionalID,
		RequiredMinutes: minutes,
	}
	start := *d.DayHourStep.StartTime

	if v.slots.Offers(q, start) {
		return nil
	}

	slots, err := v.slots.Resolve(ctx, q)
	if err != nil {
		return err
	}

	for _, s := range slots {
		if s.Total == start {
			return nil
		}
	}

	return booking.FieldErrors{"dayHourStep.startTime": MsgTimeUnavailable}
}
