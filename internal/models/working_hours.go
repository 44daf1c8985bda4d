package models

import "time"

type WorkingHours struct {
	ID             uint `gorm:"primaryKey" json:"id"`
	ProfessionalID uint `gorm:"index" json:"professional_id"`

	Weekday int `json:"weekday"`

	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	LunchStart string `json:"lunch_start"`
	LunchEnd   string `json:"lunch_end"`
	Active     bool   `json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Closure closes a whole day. A nil ProfessionalID closes the barbershop.
type Closure struct {
	ID             uint  `gorm:"primaryKey" json:"id"`
	BarbershopID   uint  `gorm:"index" json:"barbershop_id"`
	ProfessionalID *uint `json:"professional_id"`

	Date   string `gorm:"size:10;index;not null" json:"date"`
	Reason string `gorm:"size:100" json:"reason"`

	CreatedAt time.Time `json:"created_at"`
}
