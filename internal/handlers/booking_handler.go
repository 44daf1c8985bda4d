package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/booking-flow/internal/domain/booking"
	"github.com/BruksfildServices01/booking-flow/internal/flow"
	"github.com/BruksfildServices01/booking-flow/internal/httperr"
	"github.com/BruksfildServices01/booking-flow/internal/httpresp"
	"github.com/BruksfildServices01/booking-flow/internal/infra/session"
	"github.com/BruksfildServices01/booking-flow/internal/metrics"
	"github.com/BruksfildServices01/booking-flow/internal/middleware"
)

var ErrShopNotFound = errors.New("barbershop not found")

// DepsResolver builds the flow collaborators of the barbershop behind a
// public slug.
type DepsResolver interface {
	Resolve(ctx context.Context, slug string) (flow.Deps, error)
}

////////////////////////////////////////////////////////
// HANDLER
////////////////////////////////////////////////////////

type BookingHandler struct {
	shops    DepsResolver
	registry *flow.Registry
	tokens   *session.Tokens
	log      *zap.Logger
}

func NewBookingHandler(
	shops DepsResolver,
	registry *flow.Registry,
	tokens *session.Tokens,
	log *zap.Logger,
) *BookingHandler {
	return &BookingHandler{
		shops:    shops,
		registry: registry,
		tokens:   tokens,
		log:      log,
	}
}

////////////////////////////////////////////////////////
// DTOs
////////////////////////////////////////////////////////

type EnterResponse struct {
	Token    string    `json:"token"`
	Restored bool      `json:"restored"`
	Flow     flow.View `json:"flow"`
}

type SelectDateRequest struct {
	Date string `json:"date" binding:"required"`
}

type SelectTimeRequest struct {
	Total *int `json:"total" binding:"required"`
}

type SlotsResponse struct {
	Date  string             `json:"date"`
	Slots []booking.TimeSlot `json:"slots"`
}

type refusal struct {
	httperr.HTTPError
	Flow flow.View `json:"flow"`
}

////////////////////////////////////////////////////////
// ENTRY
////////////////////////////////////////////////////////

// Enter starts a public booking, or resumes the one of the token sent.
func (h *BookingHandler) Enter(c *gin.Context) {
	h.enter(c, flow.EnterOptions{Kind: flow.KindPublic})
}

// EnterForClient starts the confirmation flow of a known client.
func (h *BookingHandler) EnterForClient(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		httperr.Redirect(c, "client_not_found", "Cliente não encontrado.", "/agendar")
		return
	}

	h.enter(c, flow.EnterOptions{Kind: flow.KindClient, ClientID: uint(id)})
}

func (h *BookingHandler) enter(c *gin.Context, opts flow.EnterOptions) {
	ctx := c.Request.Context()

	deps, err := h.shops.Resolve(ctx, c.Param("slug"))
	if err != nil {
		writeShopError(c, err)
		return
	}

	sid := session.NewSessionID()
	if claims, ok := middleware.SessionFrom(c); ok &&
		claims.BarbershopID == deps.BarbershopID &&
		claims.Kind == string(opts.Kind) &&
		claims.ClientID == opts.ClientID {
		sid = claims.SessionID
	}

	f, restored, err := h.registry.Enter(ctx, deps, sid, opts)
	if err != nil {
		if errors.Is(err, flow.ErrEntryRejected) {
			httperr.Redirect(c, "client_not_found", "Cliente não encontrado.", "/agendar")
			return
		}
		h.internal(c, err)
		return
	}
	metrics.ActiveSessions.Set(float64(h.registry.Len()))

	token, err := h.tokens.Issue(session.Claims{
		SessionID:    sid,
		BarbershopID: deps.BarbershopID,
		Kind:         string(opts.Kind),
		ClientID:     opts.ClientID,
	})
	if err != nil {
		h.internal(c, err)
		return
	}

	httpresp.Created(c, EnterResponse{
		Token:    token,
		Restored: restored,
		Flow:     f.View(),
	})
}

////////////////////////////////////////////////////////
// STATE
////////////////////////////////////////////////////////

func (h *BookingHandler) Current(c *gin.Context) {
	f, ok := h.flow(c)
	if !ok {
		return
	}
	httpresp.OK(c, f.View())
}

// WriteStep replaces the active step's slice with the request body.
func (h *BookingHandler) WriteStep(c *gin.Context) {
	f, ok := h.flow(c)
	if !ok {
		return
	}

	key := booking.StepKey(c.Param("step"))

	var value any
	switch key {
	case booking.StepCategory:
		value = &booking.CategoryStep{}
	case booking.StepService:
		value = &booking.ServiceStep{}
	case booking.StepServiceAdd:
		value = &[]booking.ServiceItem{}
	case booking.StepClient:
		value = &booking.ClientStep{}
	case booking.StepConfirmed:
		value = &booking.ConfirmedStep{}
	case booking.StepDayHour:
		httperr.BadRequest(c, "derived_step", "Use a seleção de data e horário.")
		return
	default:
		httperr.NotFound(c, "step_not_found", "Etapa não encontrada.")
		return
	}

	if err := c.ShouldBindJSON(value); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	if items, ok := value.(*[]booking.ServiceItem); ok {
		value = *items
	}

	if err := f.Write(c.Request.Context(), key, value); err != nil {
		h.writeFlowError(c, err)
		return
	}
	httpresp.OK(c, f.View())
}

////////////////////////////////////////////////////////
// DATE AND TIME
////////////////////////////////////////////////////////

func (h *BookingHandler) SelectDate(c *gin.Context) {
	f, ok := h.flow(c)
	if !ok {
		return
	}

	var req SelectDateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Data é obrigatória.")
		return
	}

	slots, err := f.SelectDate(c.Request.Context(), req.Date)
	if err != nil {
		h.writeFlowError(c, err)
		return
	}

	httpresp.OK(c, SlotsResponse{Date: req.Date, Slots: slots})
}

func (h *BookingHandler) SelectTime(c *gin.Context) {
	f, ok := h.flow(c)
	if !ok {
		return
	}

	var req SelectTimeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Horário é obrigatório.")
		return
	}

	if err := f.SelectTime(c.Request.Context(), *req.Total); err != nil {
		h.writeFlowError(c, err)
		return
	}
	httpresp.OK(c, f.View())
}

func (h *BookingHandler) Slots(c *gin.Context) {
	f, ok := h.flow(c)
	if !ok {
		return
	}

	slots, err := f.Slots(c.Request.Context())
	if err != nil {
		h.writeFlowError(c, err)
		return
	}

	var date string
	if d := f.View().Draft.DayHourStep; d != nil {
		date = d.Date
	}
	httpresp.OK(c, SlotsResponse{Date: date, Slots: slots})
}

func (h *BookingHandler) WorkingDays(c *gin.Context) {
	f, ok := h.flow(c)
	if !ok {
		return
	}
	httpresp.OK(c, f.WorkingDays(c.Request.Context()))
}

////////////////////////////////////////////////////////
// NAVIGATION
////////////////////////////////////////////////////////

func (h *BookingHandler) Advance(c *gin.Context) {
	f, ok := h.flow(c)
	if !ok {
		return
	}

	view, err := f.Advance(c.Request.Context())
	h.writeView(c, view, err)
}

func (h *BookingHandler) Retreat(c *gin.Context) {
	f, ok := h.flow(c)
	if !ok {
		return
	}

	view, err := f.Retreat()
	h.writeView(c, view, err)
}

func (h *BookingHandler) CompleteBranch(c *gin.Context) {
	f, ok := h.flow(c)
	if !ok {
		return
	}

	var in booking.NewClient
	if err := c.ShouldBindJSON(&in); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	view, err := f.CompleteNewClient(c.Request.Context(), in)
	h.writeView(c, view, err)
}

func (h *BookingHandler) CancelBranch(c *gin.Context) {
	f, ok := h.flow(c)
	if !ok {
		return
	}

	view, err := f.CancelBranch()
	h.writeView(c, view, err)
}

func (h *BookingHandler) Reset(c *gin.Context) {
	f, ok := h.flow(c)
	if !ok {
		return
	}
	httpresp.OK(c, f.Reset(c.Request.Context()))
}

////////////////////////////////////////////////////////
// HELPERS
////////////////////////////////////////////////////////

// flow returns the session's flow, re-entering it (draft restored, first
// step) when it is no longer held in memory.
func (h *BookingHandler) flow(c *gin.Context) (*flow.Flow, bool) {
	claims, ok := middleware.SessionFrom(c)
	if !ok {
		httperr.Unauthorized(c, "missing_session", "Sessão de agendamento não informada.")
		return nil, false
	}

	if f, err := h.registry.Get(claims.SessionID); err == nil {
		return f, true
	}

	ctx := c.Request.Context()

	deps, err := h.shops.Resolve(ctx, c.Param("slug"))
	if err != nil {
		writeShopError(c, err)
		return nil, false
	}
	if deps.BarbershopID != claims.BarbershopID {
		httperr.Unauthorized(c, "invalid_session", "Sessão de outra barbearia.")
		return nil, false
	}

	f, _, err := h.registry.Enter(ctx, deps, claims.SessionID, flow.EnterOptions{
		Kind:     flow.Kind(claims.Kind),
		ClientID: claims.ClientID,
	})
	if err != nil {
		if errors.Is(err, flow.ErrEntryRejected) {
			httperr.Redirect(c, "client_not_found", "Cliente não encontrado.", "/agendar")
			return nil, false
		}
		h.internal(c, err)
		return nil, false
	}
	metrics.ActiveSessions.Set(float64(h.registry.Len()))

	return f, true
}

func (h *BookingHandler) writeView(c *gin.Context, view flow.View, err error) {
	if err != nil {
		h.writeFlowError(c, err)
		return
	}

	if len(view.State.Errors) > 0 {
		c.JSON(http.StatusUnprocessableEntity, refusal{
			HTTPError: httperr.HTTPError{
				Code:    "validation_failed",
				Message: "Verifique os campos informados.",
				Fields:  view.State.Errors,
			},
			Flow: view,
		})
		return
	}

	httpresp.OK(c, view)
}

func (h *BookingHandler) internal(c *gin.Context, err error) {
	_ = c.Error(err)
	h.log.Error("booking flow failure", zap.String("path", c.FullPath()), zap.Error(err))
	httperr.Internal(c, "internal_error", "Erro interno.")
}

func writeShopError(c *gin.Context, err error) {
	if errors.Is(err, ErrShopNotFound) {
		httperr.NotFound(c, "barbershop_not_found", "Barbearia não encontrada.")
		return
	}
	_ = c.Error(err)
	httperr.Internal(c, "internal_error", "Erro interno.")
}
