package handlers

import (
	"context"
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/booking-flow/internal/httperr"
	"github.com/BruksfildServices01/booking-flow/internal/httpresp"
	"github.com/BruksfildServices01/booking-flow/internal/infra/repository"
	"github.com/BruksfildServices01/booking-flow/internal/models"
)

type Catalog interface {
	GetBarbershopBySlug(ctx context.Context, slug string) (*models.Barbershop, error)
	ListCategories(ctx context.Context, barbershopID uint) ([]models.Category, error)
	ListServices(ctx context.Context, barbershopID uint, f repository.ServiceFilter) ([]models.Service, error)
}

// CatalogHandler lists the options of the category and service steps.
type CatalogHandler struct {
	catalog Catalog
}

func NewCatalogHandler(catalog Catalog) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

type ServiceDTO struct {
	ID              uint    `json:"id"`
	CategoryID      uint    `json:"categoryId"`
	Name            string  `json:"name"`
	Description     string  `json:"description"`
	DurationMinutes int     `json:"durationMinutes"`
	Price           float64 `json:"price"`
	Additional      bool    `json:"additional"`
}

type CategoryDTO struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

func (h *CatalogHandler) Categories(c *gin.Context) {
	shop, ok := h.shop(c)
	if !ok {
		return
	}

	rows, err := h.catalog.ListCategories(c.Request.Context(), shop.ID)
	if err != nil {
		_ = c.Error(err)
		httperr.Internal(c, "failed_to_list_categories", "Erro ao listar categorias.")
		return
	}

	out := make([]CategoryDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, CategoryDTO{ID: r.ID, Name: r.Name})
	}
	httpresp.List(c, out)
}

// Services accepts ?category=<id>, ?additional=true|false and ?query=.
func (h *CatalogHandler) Services(c *gin.Context) {
	shop, ok := h.shop(c)
	if !ok {
		return
	}

	var f repository.ServiceFilter

	if v := c.Query("category"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			httperr.BadRequest(c, "invalid_category", "Categoria inválida.")
			return
		}
		f.CategoryID = uint(id)
	}

	if v := c.Query("additional"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			httperr.BadRequest(c, "invalid_additional", "Filtro inválido.")
			return
		}
		f.Additional = &b
	}

	f.Query = c.Query("query")

	rows, err := h.catalog.ListServices(c.Request.Context(), shop.ID, f)
	if err != nil {
		_ = c.Error(err)
		httperr.Internal(c, "failed_to_list_services", "Erro ao listar serviços.")
		return
	}

	out := make([]ServiceDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, ServiceDTO{
			ID:              r.ID,
			CategoryID:      r.CategoryID,
			Name:            r.Name,
			Description:     r.Description,
			DurationMinutes: r.DurationMin,
			Price:           r.Price,
			Additional:      r.Additional,
		})
	}
	httpresp.List(c, out)
}

func (h *CatalogHandler) shop(c *gin.Context) (*models.Barbershop, bool) {
	shop, err := h.catalog.GetBarbershopBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.NotFound(c, "barbershop_not_found", "Barbearia não encontrada.")
			return nil, false
		}
		_ = c.Error(err)
		httperr.Internal(c, "internal_error", "Erro interno.")
		return nil, false
	}
	return shop, true
}
