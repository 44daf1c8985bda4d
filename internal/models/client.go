package models

import "time"

// Cliente sem login, identificado pelo Whatsapp dentro da barbearia.
type Client struct {
	ID           uint `gorm:"primaryKey" json:"id"`
	BarbershopID uint `gorm:"uniqueIndex:idx_client_shop_phone" json:"barbershop_id"`

	Name  string `gorm:"size:100;not null" json:"name"`
	Phone string `gorm:"size:20;uniqueIndex:idx_client_shop_phone" json:"phone"`

	BirthDay   *int `json:"birth_day"`
	BirthMonth *int `json:"birth_month"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
