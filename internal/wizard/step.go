package wizard

import (
	"context"

	"github.com/BruksfildServices01/booking-flow/internal/domain/booking"
)

// Validator checks the draft slice of one step. Returning
// booking.FieldErrors refuses advancement; any change made to d is
// committed when it returns nil.
type Validator interface {
	Validate(ctx context.Context, d *booking.Draft) error
}

type ValidatorFunc func(ctx context.Context, d *booking.Draft) error

func (f ValidatorFunc) Validate(ctx context.Context, d *booking.Draft) error {
	return f(ctx, d)
}

// Branch replaces a step's default content with an alternate sub-flow when
// Predicate holds for the committed draft. Validator is the branch's own
// completion handler.
type Branch struct {
	Kind      string
	Predicate func(d booking.Draft) bool
	Validator Validator
}

// StepDefinition is one entry of the ordered flow. It is immutable once the
// flow is assembled.
type StepDefinition struct {
	Key       booking.StepKey
	Label     string
	Validator Validator
	Branch    *Branch
}

type StepInfo struct {
	Key   booking.StepKey `json:"key"`
	Label string          `json:"label"`
}
