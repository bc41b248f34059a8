package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/monkeysroasters/roastery-backend/internal/pricing"
	"github.com/monkeysroasters/roastery-backend/pkg/db/models"
	"github.com/monkeysroasters/roastery-backend/pkg/enums"
	pkgerrors "github.com/monkeysroasters/roastery-backend/pkg/errors"
	"github.com/monkeysroasters/roastery-backend/pkg/logger"
)

const maxLineQuantity = 50

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type productLoader interface {
	FindByID(ctx context.Context, productID uuid.UUID) (*models.Product, error)
}

type userLoader interface {
	FindByID(ctx context.Context, userID int64) (*models.User, error)
}

type loyaltyDiscounter interface {
	DiscountPercentFor(user *models.User) int
}

type rulesLoader interface {
	ActiveRules(ctx context.Context) ([]models.VolumeDiscountRule, error)
}

type promoFinder interface {
	FindUsable(ctx context.Context, code string, now time.Time) (*models.PromoCode, error)
}

// Service exposes cart operations and discount quoting.
type Service interface {
	GetCart(ctx context.Context, userID int64) (*CartDTO, error)
	AddItem(ctx context.Context, userID int64, input AddItemInput) (*CartDTO, error)
	ChangeQuantity(ctx context.Context, userID int64, itemID uuid.UUID, delta int) (*CartDTO, error)
	RemoveItem(ctx context.Context, userID int64, itemID uuid.UUID) (*CartDTO, error)
	Clear(ctx context.Context, userID int64) error
	Quote(ctx context.Context, userID int64, promoCode string) (*QuoteDTO, error)
}

// AddItemInput is the payload to add a product line to the cart.
type AddItemInput struct {
	ProductID uuid.UUID
	Format    string
	Quantity  int
}

// CartLineDTO is one rendered cart row.
type CartLineDTO struct {
	ID        uuid.UUID           `json:"id"`
	ProductID uuid.UUID           `json:"product_id"`
	Name      string              `json:"name"`
	Format    enums.ProductFormat `json:"format"`
	Quantity  int                 `json:"quantity"`
	UnitPrice int                 `json:"unit_price"`
	LineTotal int                 `json:"line_total"`
}

// CartDTO is the rendered cart with its raw subtotal.
type CartDTO struct {
	Items     []CartLineDTO `json:"items"`
	ItemCount int           `json:"item_count"`
	Subtotal  int           `json:"subtotal"`
	WeightKg  float64       `json:"weight_kg"`
}

// QuoteDTO pairs the discount breakdown with a delivery preview.
type QuoteDTO struct {
	pricing.Breakdown
	PromoCode            *string `json:"promo_code,omitempty"`
	DeliveryCost         int     `json:"delivery_cost"`
	AmountToFreeDelivery int     `json:"amount_to_free_delivery"`
}

type service struct {
	repo     Repository
	tx       txRunner
	product  productLoader
	users    userLoader
	loyalty  loyaltyDiscounter
	rules    rulesLoader
	promos   promoFinder
	delivery pricing.DeliveryRates
	logg     *logger.Logger
	now      func() time.Time
}

// NewService builds the cart service.
func NewService(
	repo Repository,
	tx txRunner,
	product productLoader,
	users userLoader,
	loyalty loyaltyDiscounter,
	rules rulesLoader,
	promos promoFinder,
	delivery pricing.DeliveryRates,
	logg *logger.Logger,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if product == nil {
		return nil, fmt.Errorf("product loader required")
	}
	if users == nil {
		return nil, fmt.Errorf("user loader required")
	}
	if loyalty == nil {
		return nil, fmt.Errorf("loyalty discounter required")
	}
	if rules == nil {
		return nil, fmt.Errorf("volume rules loader required")
	}
	if promos == nil {
		return nil, fmt.Errorf("promo finder required")
	}
	return &service{
		repo:     repo,
		tx:       tx,
		product:  product,
		users:    users,
		loyalty:  loyalty,
		rules:    rules,
		promos:   promos,
		delivery: delivery,
		logg:     logg,
		now:      time.Now,
	}, nil
}

func (s *service) GetCart(ctx context.Context, userID int64) (*CartDTO, error) {
	items, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return buildCartDTO(items), nil
}

// AddItem merges into an existing line when the product and format already
// sit in the cart, otherwise appends a new line.
func (s *service) AddItem(ctx context.Context, userID int64, input AddItemInput) (*CartDTO, error) {
	format, err := enums.ParseProductFormat(input.Format)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown product format")
	}
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if input.Quantity > maxLineQuantity {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity exceeds the per-line limit")
	}

	product, err := s.product.FindByID(ctx, input.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product is not available")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		existing, ferr := repo.FindByProductFormat(ctx, userID, product.ID, format)
		if ferr == nil {
			quantity := existing.Quantity + input.Quantity
			if quantity > maxLineQuantity {
				quantity = maxLineQuantity
			}
			return repo.SetQuantity(ctx, existing.ID, quantity)
		}
		if !errors.Is(ferr, gorm.ErrRecordNotFound) {
			return ferr
		}

		_, cerr := repo.Create(ctx, &models.CartItem{
			UserID:    userID,
			ProductID: product.ID,
			Format:    format,
			Quantity:  input.Quantity,
		})
		return cerr
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add cart item")
	}

	return s.GetCart(ctx, userID)
}

// ChangeQuantity adjusts a line by delta. The line is removed once the
// quantity drops to zero or below.
func (s *service) ChangeQuantity(ctx context.Context, userID int64, itemID uuid.UUID, delta int) (*CartDTO, error) {
	if delta == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delta cannot be zero")
	}

	item, err := s.repo.FindItem(ctx, itemID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart item")
	}

	quantity := item.Quantity + delta
	switch {
	case quantity <= 0:
		err = s.repo.Delete(ctx, item.ID)
	case quantity > maxLineQuantity:
		err = s.repo.SetQuantity(ctx, item.ID, maxLineQuantity)
	default:
		err = s.repo.SetQuantity(ctx, item.ID, quantity)
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart item")
	}

	return s.GetCart(ctx, userID)
}

func (s *service) RemoveItem(ctx context.Context, userID int64, itemID uuid.UUID) (*CartDTO, error) {
	item, err := s.repo.FindItem(ctx, itemID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart item")
	}
	if err := s.repo.Delete(ctx, item.ID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove cart item")
	}
	return s.GetCart(ctx, userID)
}

func (s *service) Clear(ctx context.Context, userID int64) error {
	if err := s.repo.Clear(ctx, userID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return nil
}

// Quote runs the full discount composition against the current cart and
// previews the delivery cost for the user's saved method.
func (s *service) Quote(ctx context.Context, userID int64, promoCode string) (*QuoteDTO, error) {
	items, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}

	rules, err := s.rules.ActiveRules(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	var promo *models.PromoCode
	if promoCode != "" {
		promo, err = s.promos.FindUsable(ctx, promoCode, now)
		if err != nil {
			return nil, err
		}
	}

	breakdown := pricing.Compose(cartLines(items), s.loyalty.DiscountPercentFor(user), promo, rules, now)

	if promo != nil && promo.MinOrderAmount > 0 && breakdown.Subtotal < promo.MinOrderAmount {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order subtotal below promo minimum")
	}

	method := enums.DeliveryMethodNovaPoshta
	if user.DeliveryMethod != nil {
		method = *user.DeliveryMethod
	}

	quote := &QuoteDTO{
		Breakdown:            breakdown,
		DeliveryCost:         s.delivery.Cost(method, breakdown.FinalTotal),
		AmountToFreeDelivery: s.delivery.AmountToFree(breakdown.FinalTotal),
	}
	if promo != nil {
		quote.PromoCode = &promo.Code
	}
	return quote, nil
}

func cartLines(items []models.CartItem) []pricing.Line {
	lines := make([]pricing.Line, 0, len(items))
	for _, item := range items {
		if item.Product == nil {
			continue
		}
		lines = append(lines, pricing.Line{
			Product:  *item.Product,
			Format:   item.Format,
			Quantity: item.Quantity,
		})
	}
	return lines
}

func buildCartDTO(items []models.CartItem) *CartDTO {
	dto := &CartDTO{Items: make([]CartLineDTO, 0, len(items))}
	for _, item := range items {
		if item.Product == nil {
			continue
		}
		unit := unitPrice(item.Product, item.Format)
		dto.Items = append(dto.Items, CartLineDTO{
			ID:        item.ID,
			ProductID: item.ProductID,
			Name:      item.Product.Name,
			Format:    item.Format,
			Quantity:  item.Quantity,
			UnitPrice: unit,
			LineTotal: unit * item.Quantity,
		})
		dto.ItemCount += item.Quantity
		dto.Subtotal += unit * item.Quantity
		dto.WeightKg += item.Format.WeightKg() * float64(item.Quantity)
	}
	return dto
}

func unitPrice(product *models.Product, format enums.ProductFormat) int {
	switch format {
	case enums.ProductFormatPack300, enums.ProductFormatUnit:
		return product.Price300g
	case enums.ProductFormatBag1Kg:
		return product.Price1kg
	default:
		return 0
	}
}
