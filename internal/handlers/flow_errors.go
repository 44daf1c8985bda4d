package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/booking-flow/internal/domain/booking"
	"github.com/BruksfildServices01/booking-flow/internal/draft"
	"github.com/BruksfildServices01/booking-flow/internal/flow"
	"github.com/BruksfildServices01/booking-flow/internal/httperr"
	"github.com/BruksfildServices01/booking-flow/internal/resolver"
	"github.com/BruksfildServices01/booking-flow/internal/wizard"
)

func (h *BookingHandler) writeFlowError(c *gin.Context, err error) {
	if fe, ok := booking.AsFieldErrors(err); ok {
		httperr.Unprocessable(c, fe)
		return
	}

	switch {
	case errors.Is(err, wizard.ErrBusy):
		httperr.Conflict(c, "busy", "Aguarde a validação em andamento.")
	case errors.Is(err, wizard.ErrBranchPending):
		httperr.Conflict(c, "branch_pending", "Conclua o cadastro antes de continuar.")
	case errors.Is(err, wizard.ErrNoBranch):
		httperr.Conflict(c, "no_branch", "Nenhum cadastro pendente.")
	case errors.Is(err, wizard.ErrNotActive):
		httperr.Conflict(c, "step_not_active", "Esta etapa não está ativa.")
	case errors.Is(err, wizard.ErrFinished):
		httperr.Conflict(c, "flow_finished", "Agendamento já concluído.")
	case errors.Is(err, resolver.ErrSuperseded):
		httperr.Conflict(c, "superseded", "Consulta substituída por outra mais recente.")
	case errors.Is(err, flow.ErrDerivedStep):
		httperr.BadRequest(c, "derived_step", "Use a seleção de data e horário.")
	case errors.Is(err, draft.ErrTypeMismatch):
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
	default:
		h.internal(c, err)
	}
}
