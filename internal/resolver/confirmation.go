package resolver

import "github.com/BruksfildServices01/booking-flow/internal/domain/booking"

// DeriveConfirmation copies the identified client into the confirmation
// slice, keeping whatever notes were already typed there.
func DeriveConfirmation(d *booking.Draft) {
	if d.ClientStep == nil || d.ClientStep.ClientID == 0 {
		if d.ConfirmedStep != nil {
			d.ConfirmedStep.ClientID = 0
			d.ConfirmedStep.ClientName = ""
		}
		return
	}

	if d.ConfirmedStep == nil {
		d.ConfirmedStep = &booking.ConfirmedStep{}
	}
	d.ConfirmedStep.ClientID = d.ClientStep.ClientID
	d.ConfirmedStep.ClientName = d.ClientStep.Name
}
