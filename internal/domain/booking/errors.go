package booking

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrClientNotFound = errors.New("client not found")
	ErrInvalidPhone   = errors.New("invalid whatsapp number")
)

// FormField is the key used for errors that do not belong to one control.
const FormField = "_form"

// FieldErrors maps a field path (e.g. "clientStep.phone") to a
// human-readable message. A non-empty FieldErrors refuses advancement.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+fe[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add sets a message for field unless one is already there.
func (fe FieldErrors) Add(field, message string) {
	if _, ok := fe[field]; !ok {
		fe[field] = message
	}
}

// Err returns nil when there are no errors, so validators can
// `return errs.Err()`.
func (fe FieldErrors) Err() error {
	if len(fe) == 0 {
		return nil
	}
	return fe
}

// AsFieldErrors extracts FieldErrors from err.
func AsFieldErrors(err error) (FieldErrors, bool) {
	var fe FieldErrors
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}
