package resolver

import "github.com/BruksfildServices01/booking-flow/internal/domain/booking"

// TotalDuration is the time, in minutes, the selected services need.
func TotalDuration(services []booking.ServiceItem) int {
	total := 0
	for _, s := range services {
		total += s.DurationMinutes
	}
	return total
}

// DeriveDuration keeps dayHourStep.durationMinutes in step with the service
// selection. It is meant to be registered with draft.Store.Watch on the
// service and additional-service slices.
func DeriveDuration(d *booking.Draft) {
	total := TotalDuration(booking.ServiceSelection(*d))

	if d.DayHourStep == nil {
		if total == 0 {
			return
		}
		d.DayHourStep = &booking.DayHourStep{}
	}

	if d.DayHourStep.DurationMinutes != total {
		d.DayHourStep.DurationMinutes = total
		// slots offered for the old duration no longer apply
		d.DayHourStep.StartTime = nil
	}
}
