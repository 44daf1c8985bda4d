package flow

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/booking-flow/internal/domain/booking"
	"github.com/BruksfildServices01/booking-flow/internal/validators"
)

const BranchNewClient = "newClient"

// verifiedPhone is the last number that passed remote verification in this
// flow. Registration only accepts that number.
type verifiedPhone struct {
	mu    sync.Mutex
	phone string
}

func (p *verifiedPhone) set(phone string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.phone = phone
}

func (p *verifiedPhone) matches(phone string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return phone != "" && phone == p.phone
}

// ======================================================
// CLIENT IDENTIFICATION
// ======================================================

// clientValidator identifies the client by WhatsApp number:
//  1. verify the number remotely; failure is a field error
//  2. look the client up by phone; found commits the identity, not found
//     commits the phone only (the new-client branch then takes over)
type clientValidator struct {
	verifier  booking.PhoneVerifier
	directory booking.ClientDirectory
	verified  *verifiedPhone
	log       *zap.Logger
}

func (v *clientValidator) Validate(ctx context.Context, d *booking.Draft) error {
	if d.ClientStep == nil || strings.TrimSpace(d.ClientStep.Phone) == "" {
		return booking.FieldErrors{"clientStep.phone": MsgWhatsAppRequired}
	}

	phone := validators.NormalizePhone(d.ClientStep.Phone)
	if !validators.IsWhatsAppNumber(phone) {
		return booking.FieldErrors{"clientStep.phone": MsgInvalidWhatsApp}
	}

	if err := v.verifier.Verify(ctx, phone); err != nil {
		v.log.Info("whatsapp verification refused", zap.Error(err))
		return booking.FieldErrors{"clientStep.phone": MsgInvalidWhatsApp}
	}
	v.verified.set(phone)

	client, err := v.directory.GetByPhone(ctx, phone)
	if err != nil {
		if !errors.Is(err, booking.ErrClientNotFound) {
			v.log.Warn("client lookup by phone failed", zap.Error(err))
		}
		d.ClientStep = &booking.ClientStep{Phone: phone}
		return nil
	}

	d.ClientStep = clientStepFrom(client, phone)
	return nil
}

func needsRegistration(d booking.Draft) bool {
	return d.ClientStep == nil || d.ClientStep.NeedsRegistration()
}

// ======================================================
// NEW CLIENT (branch of the identification step)
// ======================================================

type newClientValidator struct {
	directory booking.ClientDirectory
	verified  *verifiedPhone
	log       *zap.Logger
}

func (v *newClientValidator) Validate(ctx context.Context, d *booking.Draft) error {
	if d.ClientStep == nil || d.ClientStep.Phone == "" {
		return booking.FieldErrors{"clientStep.phone": MsgWhatsAppRequired}
	}
	if !v.verified.matches(d.ClientStep.Phone) {
		v.log.Warn("registration with an unverified phone refused")
		return booking.FieldErrors{"clientStep.phone": MsgInvalidWhatsApp}
	}

	in := booking.NewClient{
		Name:       strings.TrimSpace(d.ClientStep.Name),
		Phone:      d.ClientStep.Phone,
		BirthDay:   d.ClientStep.BirthDay,
		BirthMonth: d.ClientStep.BirthMonth,
	}

	errs := validators.Struct(string(booking.StepClient), in, validators.Messages{
		"name":       MsgNameRequired,
		"birthDay":   MsgBirthDay,
		"birthMonth": MsgBirthMonth,
	})
	if len(errs) > 0 {
		return errs
	}

	if !isCalendarDay(*in.BirthDay, *in.BirthMonth) {
		return booking.FieldErrors{"clientStep.birthDay": MsgInvalidBirthDate}
	}

	client, err := v.directory.Register(ctx, in)
	if err != nil {
		return err
	}

	d.ClientStep = clientStepFrom(client, in.Phone)
	return nil
}

// isCalendarDay accepts 29/02 since the year is unknown.
func isCalendarDay(day, month int) bool {
	t := time.Date(2000, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return t.Day() == day && int(t.Month()) == month
}

func clientStepFrom(c *booking.ClientRecord, phone string) *booking.ClientStep {
	if c.Phone != "" {
		phone = c.Phone
	}
	return &booking.ClientStep{
		ClientID:   c.ID,
		Name:       c.Name,
		Phone:      phone,
		BirthDay:   c.BirthDay,
		BirthMonth: c.BirthMonth,
	}
}
