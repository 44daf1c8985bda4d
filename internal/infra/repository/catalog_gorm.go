package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/BruksfildServices01/booking-flow/internal/models"
)

type CatalogGormRepository struct {
	db *gorm.DB
}

func NewCatalogGormRepository(db *gorm.DB) *CatalogGormRepository {
	return &CatalogGormRepository{db: db}
}

func (r *CatalogGormRepository) GetBarbershopBySlug(
	ctx context.Context,
	slug string,
) (*models.Barbershop, error) {

	var shop models.Barbershop
	if err := r.db.WithContext(ctx).
		Where("slug = ?", slug).
		First(&shop).Error; err != nil {
		return nil, err
	}
	return &shop, nil
}

// DefaultProfessional returns the first active professional of the shop.
func (r *CatalogGormRepository) DefaultProfessional(
	ctx context.Context,
	barbershopID uint,
) (*models.Professional, error) {

	var p models.Professional
	if err := r.db.WithContext(ctx).
		Where("barbershop_id = ? AND active = true", barbershopID).
		Order("id ASC").
		First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *CatalogGormRepository) ListCategories(
	ctx context.Context,
	barbershopID uint,
) ([]models.Category, error) {

	var rows []models.Category
	if err := r.db.WithContext(ctx).
		Where("barbershop_id = ? AND active = true", barbershopID).
		Order("position ASC, name ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

type ServiceFilter struct {
	CategoryID uint
	Additional *bool
	Query      string
}

func (r *CatalogGormRepository) ListServices(
	ctx context.Context,
	barbershopID uint,
	f ServiceFilter,
) ([]models.Service, error) {

	q := r.db.WithContext(ctx).
		Where("barbershop_id = ? AND active = true", barbershopID)

	if f.CategoryID != 0 {
		q = q.Where("category_id = ?", f.CategoryID)
	}
	if f.Additional != nil {
		q = q.Where("additional = ?", *f.Additional)
	}
	if query := strings.TrimSpace(strings.ToLower(f.Query)); query != "" {
		like := "%" + query + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}

	var rows []models.Service
	if err := q.Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
