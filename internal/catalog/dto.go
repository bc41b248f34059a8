package catalog

import (
	"github.com/google/uuid"

	"github.com/monkeysroasters/roastery-backend/pkg/db/models"
)

// ProductDTO is the catalog read shape returned to clients.
type ProductDTO struct {
	ID          uuid.UUID `json:"id"`
	Category    string    `json:"category"`
	Name        string    `json:"name"`
	Origin      *string   `json:"origin,omitempty"`
	Profile     *string   `json:"profile,omitempty"`
	Description *string   `json:"description,omitempty"`
	Price300g   int       `json:"price_300g"`
	Price1kg    int       `json:"price_1kg"`
	IsActive    bool      `json:"is_active"`
	SortOrder   int       `json:"sort_order"`
}

// NewProductDTO converts a product row into its API shape.
func NewProductDTO(product *models.Product) *ProductDTO {
	return &ProductDTO{
		ID:          product.ID,
		Category:    product.Category,
		Name:        product.Name,
		Origin:      product.Origin,
		Profile:     product.Profile,
		Description: product.Description,
		Price300g:   product.Price300g,
		Price1kg:    product.Price1kg,
		IsActive:    product.IsActive,
		SortOrder:   product.SortOrder,
	}
}

// NewProductDTOs maps a slice of rows.
func NewProductDTOs(products []models.Product) []ProductDTO {
	dtos := make([]ProductDTO, 0, len(products))
	for i := range products {
		dtos = append(dtos, *NewProductDTO(&products[i]))
	}
	return dtos
}
