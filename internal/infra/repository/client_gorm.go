package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/BruksfildServices01/booking-flow/internal/domain/booking"
	"github.com/BruksfildServices01/booking-flow/internal/models"
)

// ClientGormDirectory is the client directory of one barbershop.
type ClientGormDirectory struct {
	db           *gorm.DB
	barbershopID uint
}

func NewClientGormDirectory(db *gorm.DB, barbershopID uint) *ClientGormDirectory {
	return &ClientGormDirectory{db: db, barbershopID: barbershopID}
}

func (r *ClientGormDirectory) GetByPhone(
	ctx context.Context,
	phone string,
) (*booking.ClientRecord, error) {

	var client models.Client
	err := r.db.WithContext(ctx).
		Where("barbershop_id = ? AND phone = ?", r.barbershopID, phone).
		First(&client).Error
	if err != nil {
		return nil, notFound(err)
	}

	return record(&client), nil
}

func (r *ClientGormDirectory) Get(
	ctx context.Context,
	id uint,
) (*booking.ClientRecord, error) {

	var client models.Client
	err := r.db.WithContext(ctx).
		Where("id = ? AND barbershop_id = ?", id, r.barbershopID).
		First(&client).Error
	if err != nil {
		return nil, notFound(err)
	}

	return record(&client), nil
}

// Register creates the client, or completes the record already holding the
// phone with the name and birth date given.
func (r *ClientGormDirectory) Register(
	ctx context.Context,
	in booking.NewClient,
) (*booking.ClientRecord, error) {

	var client models.Client
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.
			Where("barbershop_id = ? AND phone = ?", r.barbershopID, in.Phone).
			First(&client).Error

		switch {
		case err == nil:
			if err := tx.Model(&client).Updates(map[string]any{
				"name":        strings.TrimSpace(in.Name),
				"birth_day":   in.BirthDay,
				"birth_month": in.BirthMonth,
			}).Error; err != nil {
				return err
			}
			client.Name = strings.TrimSpace(in.Name)
			client.BirthDay = in.BirthDay
			client.BirthMonth = in.BirthMonth
			return nil

		case errors.Is(err, gorm.ErrRecordNotFound):
			client = models.Client{
				BarbershopID: r.barbershopID,
				Name:         strings.TrimSpace(in.Name),
				Phone:        in.Phone,
				BirthDay:     in.BirthDay,
				BirthMonth:   in.BirthMonth,
			}
			return tx.Create(&client).Error

		default:
			return err
		}
	})
	if err != nil {
		return nil, err
	}

	return record(&client), nil
}

func record(c *models.Client) *booking.ClientRecord {
	return &booking.ClientRecord{
		ID:         c.ID,
		Name:       c.Name,
		Phone:      c.Phone,
		BirthDay:   c.BirthDay,
		BirthMonth: c.BirthMonth,
	}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return booking.ErrClientNotFound
	}
	return err
}

var _ booking.ClientDirectory = (*ClientGormDirectory)(nil)
