package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/monkeysroasters/roastery-backend/pkg/db/models"
	pkgerrors "github.com/monkeysroasters/roastery-backend/pkg/errors"
	"github.com/monkeysroasters/roastery-backend/pkg/logger"
	pkgredis "github.com/monkeysroasters/roastery-backend/pkg/redis"
)

const (
	listCacheTTL     = 5 * time.Minute
	allCategoriesKey = "all"
)

// Service exposes catalog reads and admin product management.
type Service interface {
	ListProducts(ctx context.Context, category string) ([]ProductDTO, error)
	GetProduct(ctx context.Context, productID uuid.UUID) (*ProductDTO, error)
	Categories(ctx context.Context) ([]string, error)
	CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error)
	UpdateProduct(ctx context.Context, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	SetProductActive(ctx context.Context, productID uuid.UUID, active bool) error
}

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	Category    string
	Name        string
	Origin      *string
	Profile     *string
	Description *string
	Price300g   int
	Price1kg    int
	SortOrder   int
}

// UpdateProductInput holds optional mutation values for a product.
type UpdateProductInput struct {
	Category    *string
	Name        *string
	Origin      *string
	Profile     *string
	Description *string
	Price300g   *int
	Price1kg    *int
	SortOrder   *int
}

type cacheStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	CacheKey(parts ...string) string
}

type service struct {
	repo  Repository
	cache cacheStore
	logg  *logger.Logger
}

// NewService constructs the catalog service. The cache is optional; a nil
// cache degrades to straight database reads.
func NewService(repo Repository, cache cacheStore, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo, cache: cache, logg: logg}, nil
}

// ListProducts returns active products, cheapest-to-render order, optionally
// narrowed to one category. Results are cached per category.
func (s *service) ListProducts(ctx context.Context, category string) ([]ProductDTO, error) {
	category = strings.TrimSpace(category)

	if cached, ok := s.readListCache(ctx, category); ok {
		return cached, nil
	}

	products, err := s.repo.List(ctx, ListFilter{Category: category, ActiveOnly: true})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}

	dtos := NewProductDTOs(products)
	s.writeListCache(ctx, category, dtos)
	return dtos, nil
}

func (s *service) GetProduct(ctx context.Context, productID uuid.UUID) (*ProductDTO, error) {
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return NewProductDTO(product), nil
}

func (s *service) Categories(ctx context.Context) ([]string, error) {
	categories, err := s.repo.Categories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	return categories, nil
}

func (s *service) CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error) {
	if err := validateCreate(input); err != nil {
		return nil, err
	}

	product, err := s.repo.Create(ctx, &models.Product{
		Category:    strings.TrimSpace(input.Category),
		Name:        strings.TrimSpace(input.Name),
		Origin:      input.Origin,
		Profile:     input.Profile,
		Description: input.Description,
		Price300g:   input.Price300g,
		Price1kg:    input.Price1kg,
		IsActive:    true,
		SortOrder:   input.SortOrder,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}

	s.invalidateListCache(ctx, product.Category)
	if s.logg != nil {
		s.logg.Info(s.logg.WithField(ctx, "product_id", product.ID.String()), "product created")
	}
	return NewProductDTO(product), nil
}

func (s *service) UpdateProduct(ctx context.Context, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	current, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	updates := buildUpdates(input)
	if len(updates) == 0 {
		return NewProductDTO(current), nil
	}

	if err := s.repo.Update(ctx, productID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}

	updated, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload product")
	}

	s.invalidateListCache(ctx, current.Category)
	if updated.Category != current.Category {
		s.invalidateListCache(ctx, updated.Category)
	}
	return NewProductDTO(updated), nil
}

// SetProductActive toggles catalog visibility without deleting history.
func (s *service) SetProductActive(ctx context.Context, productID uuid.UUID, active bool) error {
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	if err := s.repo.Update(ctx, productID, map[string]any{"is_active": active}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	s.invalidateListCache(ctx, product.Category)
	return nil
}

func validateCreate(input CreateProductInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product name required")
	}
	if strings.TrimSpace(input.Category) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product category required")
	}
	if input.Price300g < 0 || input.Price1kg < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "prices cannot be negative")
	}
	return nil
}

func buildUpdates(input UpdateProductInput) map[string]any {
	updates := map[string]any{}
	if input.Category != nil {
		updates["category"] = *input.Category
	}
	if input.Name != nil {
		updates["name"] = *input.Name
	}
	if input.Origin != nil {
		updates["origin"] = *input.Origin
	}
	if input.Profile != nil {
		updates["profile"] = *input.Profile
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.Price300g != nil {
		updates["price_300g"] = *input.Price300g
	}
	if input.Price1kg != nil {
		updates["price_1kg"] = *input.Price1kg
	}
	if input.SortOrder != nil {
		updates["sort_order"] = *input.SortOrder
	}
	return updates
}

func (s *service) listCacheKey(category string) string {
	if category == "" {
		category = allCategoriesKey
	}
	return s.cache.CacheKey("products", category)
}

func (s *service) readListCache(ctx context.Context, category string) ([]ProductDTO, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, s.listCacheKey(category))
	if err != nil {
		if !errors.Is(err, pkgredis.Nil) && s.logg != nil {
			s.logg.Warn(ctx, "product cache read failed")
		}
		return nil, false
	}
	var dtos []ProductDTO
	if err := json.Unmarshal([]byte(raw), &dtos); err != nil {
		return nil, false
	}
	return dtos, true
}

func (s *service) writeListCache(ctx context.Context, category string, dtos []ProductDTO) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(dtos)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, s.listCacheKey(category), payload, listCacheTTL); err != nil && s.logg != nil {
		s.logg.Warn(ctx, "product cache write failed")
	}
}

func (s *service) invalidateListCache(ctx context.Context, category string) {
	if s.cache == nil {
		return
	}
	keys := []string{s.listCacheKey(""), s.listCacheKey(category)}
	if err := s.cache.Del(ctx, keys...); err != nil && s.logg != nil {
		s.logg.Warn(ctx, "product cache invalidation failed")
	}
}
