package validators

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/BruksfildServices01/booking-flow/internal/domain/booking"
)

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// Messages overrides the default message of a field, keyed by the field path
// relative to the step (e.g. "startTime").
type Messages map[string]string

// Struct validates v against its `validate` tags and returns field errors
// keyed "<prefix>.<field path>".
func Struct(prefix string, v any, msgs Messages) booking.FieldErrors {
	errs := booking.FieldErrors{}

	err := instance().Struct(v)
	if err == nil {
		return errs
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		errs.Add(prefix, "Dados inválidos.")
		return errs
	}

	for _, fe := range verrs {
		rel := relativePath(fe.Namespace())
		msg, ok := msgs[rel]
		if !ok {
			msg = defaultMessage(fe)
		}
		errs.Add(prefix+"."+rel, msg)
	}

	return errs
}

// relativePath drops the root struct name from a validator namespace.
func relativePath(ns string) string {
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func defaultMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Campo obrigatório."
	case "min":
		return "Valor abaixo do mínimo permitido."
	case "max":
		return "Valor acima do máximo permitido."
	case "datetime":
		return "Data inválida."
	default:
		return "Valor inválido."
	}
}
