package booking

import "context"

// ===============================
// Remote collaborators
// ===============================

type ClientRecord struct {
	ID         uint   `json:"id"`
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	BirthDay   *int   `json:"birthDay,omitempty"`
	BirthMonth *int   `json:"birthMonth,omitempty"`
}

type NewClient struct {
	Name       string `json:"name" validate:"required,min=2,max=100"`
	Phone      string `json:"phone"`
	BirthDay   *int   `json:"birthDay" validate:"required,min=1,max=31"`
	BirthMonth *int   `json:"birthMonth" validate:"required,min=1,max=12"`
}

type TimeSlot struct {
	Display string `json:"display"`
	Total   int    `json:"total"`
}

type WorkingDay struct {
	Date     string `json:"date"`
	IsClosed bool   `json:"isClosed"`
}

type FreeTimeQuery struct {
	Date            string
	ProfessionalID  uint
	RequiredMinutes int
}

type BookingRequest struct {
	ProfessionalID uint
	ClientID       uint
	Services       []ServiceItem
	Date           string
	StartTime      int
	Notes          string
}

type BookingReceipt struct {
	AppointmentID uint `json:"appointmentId"`
}

type PhoneVerifier interface {
	Verify(ctx context.Context, phone string) error
}

// ClientDirectory resolves clients. GetByPhone and Get return
// ErrClientNotFound when there is no such client.
type ClientDirectory interface {
	GetByPhone(ctx context.Context, phone string) (*ClientRecord, error)
	Get(ctx context.Context, id uint) (*ClientRecord, error)
	Register(ctx context.Context, in NewClient) (*ClientRecord, error)
}

type Availability interface {
	GetFreeTime(ctx context.Context, q FreeTimeQuery) ([]TimeSlot, error)
}

type WorkingDayCatalog interface {
	List(ctx context.Context) ([]WorkingDay, error)
}

type Booker interface {
	Book(ctx context.Context, req BookingRequest) (*BookingReceipt, error)
}
