package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/monkeysroasters/roastery-backend/api/responses"
	"github.com/monkeysroasters/roastery-backend/api/validators"
	"github.com/monkeysroasters/roastery-backend/internal/catalog"
	pkgerrors "github.com/monkeysroasters/roastery-backend/pkg/errors"
	"github.com/monkeysroasters/roastery-backend/pkg/logger"
)

// ListProducts returns the active catalog, optionally narrowed to a category.
func ListProducts(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		category := strings.TrimSpace(r.URL.Query().Get("category"))

		products, err := svc.ListProducts(r.Context(), category)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, products)
	}
}

func GetProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := pathUUID(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.GetProduct(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

func ListCategories(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categories, err := svc.Categories(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"categories": categories})
	}
}

type createProductRequest struct {
	Category    string  `json:"category" validate:"required"`
	Name        string  `json:"name" validate:"required"`
	Origin      *string `json:"origin,omitempty"`
	Profile     *string `json:"profile,omitempty"`
	Description *string `json:"description,omitempty"`
	Price300g   int     `json:"price_300g" validate:"required,min=1"`
	Price1kg    int     `json:"price_1kg" validate:"omitempty,min=0"`
	SortOrder   int     `json:"sort_order" validate:"omitempty,min=0"`
}

// AdminCreateProduct adds a catalog entry. Staff only.
func AdminCreateProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.CreateProduct(r.Context(), catalog.CreateProductInput{
			Category:    payload.Category,
			Name:        payload.Name,
			Origin:      payload.Origin,
			Profile:     payload.Profile,
			Description: payload.Description,
			Price300g:   payload.Price300g,
			Price1kg:    payload.Price1kg,
			SortOrder:   payload.SortOrder,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

type updateProductRequest struct {
	Category    *string `json:"category,omitempty"`
	Name        *string `json:"name,omitempty"`
	Origin      *string `json:"origin,omitempty"`
	Profile     *string `json:"profile,omitempty"`
	Description *string `json:"description,omitempty"`
	Price300g   *int    `json:"price_300g,omitempty" validate:"omitempty,min=1"`
	Price1kg    *int    `json:"price_1kg,omitempty" validate:"omitempty,min=0"`
	SortOrder   *int    `json:"sort_order,omitempty" validate:"omitempty,min=0"`
}

func AdminUpdateProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := pathUUID(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.UpdateProduct(r.Context(), productID, catalog.UpdateProductInput{
			Category:    payload.Category,
			Name:        payload.Name,
			Origin:      payload.Origin,
			Profile:     payload.Profile,
			Description: payload.Description,
			Price300g:   payload.Price300g,
			Price1kg:    payload.Price1kg,
			SortOrder:   payload.SortOrder,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

type setActiveRequest struct {
	Active *bool `json:"active" validate:"required"`
}

func AdminSetProductActive(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := pathUUID(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload setActiveRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.SetProductActive(r.Context(), productID, *payload.Active); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"active": *payload.Active})
	}
}

func pathUUID(r *http.Request, param string) (uuid.UUID, error) {
	raw := chi.URLParam(r, param)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid identifier").WithDetails(map[string]any{"param": param})
	}
	return id, nil
}
