package appointment

// ===============================
// Appointment Status
// ===============================

type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusCancelled Status = "cancelled"
)

// Appointments booked through the guided flow.
const OriginBookingFlow = "booking_flow"

func InitialStatus() Status {
	return StatusScheduled
}
