package flow

import (
	"github.com/BruksfildServices01/booking-flow/internal/domain/booking"
	"github.com/BruksfildServices01/booking-flow/internal/wizard"
)

type Kind string

const (
	// KindPublic starts anonymous and identifies the client by WhatsApp.
	KindPublic Kind = "public"
	// KindClient is entered with a known client id and skips identification.
	KindClient Kind = "client"
)

func (f *Flow) definitions() []wizard.StepDefinition {
	steps := []wizard.StepDefinition{
		{
			Key:       booking.StepCategory,
			Label:     "Categoria",
			Validator: wizard.ValidatorFunc(validateCategory),
		},
		{
			Key:       booking.StepService,
			Label:     "Serviço",
			Validator: wizard.ValidatorFunc(validateService),
		},
		{
			Key:       booking.StepServiceAdd,
			Label:     "Serviços Adicionais",
			Validator: wizard.ValidatorFunc(validateServiceAdd),
		},
		{
			Key:   booking.StepDayHour,
			Label: "Data e Horário",
			Validator: &dayHourValidator{
				slots:          f.slots,
				professionalID: f.deps.ProfessionalID,
				bounds:         f.WorkingDays,
			},
		},
	}

	if f.kind == KindPublic {
		steps = append(steps, wizard.StepDefinition{
			Key:   booking.StepClient,
			Label: "Cliente",
			Validator: &clientValidator{
				verifier:  f.deps.Verifier,
				directory: f.deps.Directory,
				verified:  &f.verified,
				log:       f.log,
			},
			Branch: &wizard.Branch{
				Kind:      BranchNewClient,
				Predicate: needsRegistration,
				Validator: &newClientValidator{
					directory: f.deps.Directory,
					verified:  &f.verified,
					log:       f.log,
				},
			},
		})
	}

	return append(steps, wizard.StepDefinition{
		Key:   booking.StepConfirmed,
		Label: "Confirmação",
		Validator: &confirmValidator{
			booker:         f.deps.Booker,
			professionalID: f.deps.ProfessionalID,
		},
	})
}
