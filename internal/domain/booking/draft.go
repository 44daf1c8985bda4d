package booking

// ===============================
// Step keys
// ===============================

type StepKey string

const (
	StepCategory   StepKey = "categoryStep"
	StepService    StepKey = "serviceStep"
	StepServiceAdd StepKey = "serviceAddStep"
	StepDayHour    StepKey = "dayHourStep"
	StepClient     StepKey = "clientStep"
	StepConfirmed  StepKey = "confirmedStep"
)

// StepKeys lists every key a draft can hold, in flow order.
var StepKeys = []StepKey{
	StepCategory,
	StepService,
	StepServiceAdd,
	StepDayHour,
	StepClient,
	StepConfirmed,
}

// ===============================
// Step slices
// ===============================

type CategoryStep struct {
	CategoryID uint   `json:"categoryId" validate:"required"`
	Name       string `json:"name"`
}

type ServiceItem struct {
	ID              uint   `json:"id" validate:"required"`
	Name            string `json:"name"`
	DurationMinutes int    `json:"durationMinutes" validate:"required,min=1"`
}

type ServiceStep struct {
	Service ServiceItem `json:"service"`
}

type DayHourStep struct {
	Date            string `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime       *int   `json:"startTime" validate:"required,min=0,max=1439"`
	DurationMinutes int    `json:"durationMinutes"`
}

type ClientStep struct {
	ClientID   uint   `json:"clientId"`
	Name       string `json:"name"`
	Phone      string `json:"phone" validate:"required"`
	BirthDay   *int   `json:"birthDay,omitempty"`
	BirthMonth *int   `json:"birthMonth,omitempty"`
}

// NeedsRegistration reports whether the identified client still has to go
// through the new-client sub-flow. Birth day and month count as one field.
func (c ClientStep) NeedsRegistration() bool {
	return c.ClientID == 0 || c.BirthDay == nil || c.BirthMonth == nil
}

type ConfirmedStep struct {
	ClientID      uint   `json:"clientId" validate:"required"`
	ClientName    string `json:"clientName" validate:"required"`
	Notes         string `json:"notes" validate:"max=255"`
	AppointmentID uint   `json:"appointmentId,omitempty"`
}

// ===============================
// Draft
// ===============================

// Draft is the accumulating record of one booking attempt. Every slice is
// optional until its step validates.
type Draft struct {
	CategoryStep   *CategoryStep  `json:"categoryStep,omitempty"`
	ServiceStep    *ServiceStep   `json:"serviceStep,omitempty"`
	ServiceAddStep []ServiceItem  `json:"serviceAddStep,omitempty"`
	DayHourStep    *DayHourStep   `json:"dayHourStep,omitempty"`
	ClientStep     *ClientStep    `json:"clientStep,omitempty"`
	ConfirmedStep  *ConfirmedStep `json:"confirmedStep,omitempty"`
}

// Clone returns a deep copy, so validators can work on it without touching
// committed state.
func (d Draft) Clone() Draft {
	out := Draft{}

	if d.CategoryStep != nil {
		v := *d.CategoryStep
		out.CategoryStep = &v
	}
	if d.ServiceStep != nil {
		v := *d.ServiceStep
		out.ServiceStep = &v
	}
	if d.ServiceAddStep != nil {
		out.ServiceAddStep = append([]ServiceItem{}, d.ServiceAddStep...)
	}
	if d.DayHourStep != nil {
		v := *d.DayHourStep
		v.StartTime = cloneInt(d.DayHourStep.StartTime)
		out.DayHourStep = &v
	}
	if d.ClientStep != nil {
		v := *d.ClientStep
		v.BirthDay = cloneInt(d.ClientStep.BirthDay)
		v.BirthMonth = cloneInt(d.ClientStep.BirthMonth)
		out.ClientStep = &v
	}
	if d.ConfirmedStep != nil {
		v := *d.ConfirmedStep
		out.ConfirmedStep = &v
	}

	return out
}

// ServiceSelection is the main service followed by the additional ones.
func ServiceSelection(d Draft) []ServiceItem {
	var out []ServiceItem
	if d.ServiceStep != nil {
		out = append(out, d.ServiceStep.Service)
	}
	return append(out, d.ServiceAddStep...)
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Int is a small helper for optional numeric fields.
func Int(v int) *int {
	return &v
}
