package appointment

import "time"

// AvailabilityInput asks for the free start times of one professional on
// one day for an appointment of RequiredMinutes.
type AvailabilityInput struct {
	BarbershopID    uint
	ProfessionalID  uint
	Date            time.Time
	RequiredMinutes int
}

// FreeSlot is a candidate start in minutes from the start of the day.
type FreeSlot struct {
	Display string
	Total   int
}
