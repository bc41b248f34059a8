package orders

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/monkeysroasters/roastery-backend/internal/cart"
	"github.com/monkeysroasters/roastery-backend/internal/promos"
	"github.com/monkeysroasters/roastery-backend/internal/pricing"
	"github.com/monkeysroasters/roastery-backend/internal/users"
	dbpkg "github.com/monkeysroasters/roastery-backend/pkg/db"
	"github.com/monkeysroasters/roastery-backend/pkg/db/models"
	"github.com/monkeysroasters/roastery-backend/pkg/enums"
	pkgerrors "github.com/monkeysroasters/roastery-backend/pkg/errors"
	"github.com/monkeysroasters/roastery-backend/pkg/logger"
	"github.com/monkeysroasters/roastery-backend/pkg/metrics"
	"github.com/monkeysroasters/roastery-backend/pkg/outbox"
	"github.com/monkeysroasters/roastery-backend/pkg/types"
)

const orderNumberRetries = 5

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}


type rulesLoader interface {
	ActiveRules(ctx context.Context) ([]models.VolumeDiscountRule, error)
}

type loyaltyApplier interface {
	DiscountPercentFor(user *models.User) int
	ApplyPurchase(ctx context.Context, tx *gorm.DB, user *models.User, purchasedKg float64) (bool, int, error)
}

// Service exposes order assembly and the order lifecycle.
type Service interface {
	CreateFromCart(ctx context.Context, userID int64, input CreateOrderInput) (*models.Order, error)
	MarkPaid(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, input StatusUpdateInput) (*models.Order, error)
	ListUserOrders(ctx context.Context, userID int64, limit int) ([]models.Order, error)
	GetByNumber(ctx context.Context, userID int64, number string) (*models.Order, error)
	GetByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
}

// CreateOrderInput carries the checkout form.
type CreateOrderInput struct {
	DeliveryMethod string
	City           string
	Address        string
	Recipient      string
	Phone          string
	Grind          string
	Comment        *string
	PromoCode      string
}

// StatusUpdateInput carries an admin-driven status change.
type StatusUpdateInput struct {
	Status         string
	TrackingNumber *string
}

// OrderEvent is the outbox payload for order lifecycle events.
type OrderEvent struct {
	OrderID string `json:"order_id"`
	Number  string `json:"number"`
	Status  string `json:"status"`
	Total   int    `json:"total"`
}

// LoyaltyLevelUpEvent notifies a user that a paid order raised their level.
type LoyaltyLevelUpEvent struct {
	UserID   int64 `json:"user_id"`
	NewLevel int   `json:"new_level"`
}

// ReferralBonusEvent notifies both parties of a granted referral bonus.
type ReferralBonusEvent struct {
	UserID     int64 `json:"user_id"`
	ReferrerID int64 `json:"referrer_id"`
	Amount     int   `json:"amount"`
}

type service struct {
	repo      Repository
	cartRepo  cart.Repository
	usersRepo users.Repository
	promos    promos.Repository
	rules     rulesLoader
	loyalty   loyaltyApplier
	tx        txRunner
	outbox    outboxEmitter
	delivery  pricing.DeliveryRates
	bonus     int
	metrics   *metrics.OrderMetrics
	logg      *logger.Logger
	now       func() time.Time
}

// NewService builds the order service.
func NewService(
	repo Repository,
	cartRepo cart.Repository,
	usersRepo users.Repository,
	promosRepo promos.Repository,
	rules rulesLoader,
	loyalty loyaltyApplier,
	tx txRunner,
	outboxSvc outboxEmitter,
	delivery pricing.DeliveryRates,
	referralBonus int,
	orderMetrics *metrics.OrderMetrics,
	logg *logger.Logger,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if cartRepo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if usersRepo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if promosRepo == nil {
		return nil, fmt.Errorf("promos repository required")
	}
	if rules == nil {
		return nil, fmt.Errorf("volume rules loader required")
	}
	if loyalty == nil {
		return nil, fmt.Errorf("loyalty applier required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	return &service{
		repo:      repo,
		cartRepo:  cartRepo,
		usersRepo: usersRepo,
		promos:    promosRepo,
		rules:     rules,
		loyalty:   loyalty,
		tx:        tx,
		outbox:    outboxSvc,
		delivery:  delivery,
		bonus:     referralBonus,
		metrics:   orderMetrics,
		logg:      logg,
		now:       time.Now,
	}, nil
}

// CreateFromCart assembles an order from the user's cart. Snapshotting the
// items, consuming the promo, saving the delivery details, and clearing the
// cart all commit in one transaction.
func (s *service) CreateFromCart(ctx context.Context, userID int64, input CreateOrderInput) (*models.Order, error) {
	items, err := s.cartRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	user, err := s.usersRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}

	method := enums.DeliveryMethodNovaPoshta
	if input.DeliveryMethod != "" {
		method, err = enums.ParseDeliveryMethod(input.DeliveryMethod)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown delivery method")
		}
	}
	grind := enums.GrindOptionBeans
	if input.Grind != "" {
		grind, err = enums.ParseGrindOption(input.Grind)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown grind option")
		}
	}

	rules, err := s.rules.ActiveRules(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	var promo *models.PromoCode
	if input.PromoCode != "" {
		promo, err = s.promos.FindByCode(ctx, input.PromoCode)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "promo code not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load promo code")
		}
		if !pricing.PromoUsable(promo, now) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "promo code is not usable")
		}
	}

	lines := pricingLines(items)
	breakdown := pricing.Compose(lines, s.loyalty.DiscountPercentFor(user), promo, rules, now)

	if promo != nil && promo.MinOrderAmount > 0 && breakdown.Subtotal < promo.MinOrderAmount {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order subtotal below promo minimum")
	}

	deliveryCost := s.delivery.Cost(method, breakdown.FinalTotal)

	order := &models.Order{
		UserID:            userID,
		Items:             snapshotItems(items),
		WeightKg:          breakdown.WeightKg,
		Subtotal:          breakdown.Subtotal,
		DiscountVolume:    breakdown.VolumeAmount,
		DiscountLoyalty:   breakdown.LoyaltyAmount,
		DiscountPromo:     breakdown.PromoAmount,
		DeliveryCost:      deliveryCost,
		Total:             breakdown.FinalTotal + deliveryCost,
		DeliveryMethod:    method,
		DeliveryCity:      input.City,
		DeliveryAddress:   input.Address,
		DeliveryRecipient: input.Recipient,
		DeliveryPhone:     input.Phone,
		Grind:             grind,
		Comment:           input.Comment,
		Status:            enums.OrderStatusPending,
	}
	if promo != nil {
		order.PromoCode = &promo.Code
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if promo != nil {
			consumed, cerr := s.promos.WithTx(tx).Consume(ctx, promo.ID)
			if cerr != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, cerr, "consume promo code")
			}
			if !consumed {
				return pkgerrors.New(pkgerrors.CodeConflict, "promo code usage limit reached")
			}
		}

		created := false
		for attempt := 0; attempt < orderNumberRetries; attempt++ {
			order.Number = generateOrderNumber()
			if _, cerr := repo.Create(ctx, order); cerr == nil {
				created = true
				break
			} else if !dbpkg.IsUniqueViolation(cerr, "idx_orders_number") {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, cerr, "create order")
			}
		}
		if !created {
			return pkgerrors.New(pkgerrors.CodeDependency, "could not allocate order number")
		}

		if uerr := s.usersRepo.WithTx(tx).Update(ctx, userID, map[string]any{
			"delivery_method":    method,
			"delivery_city":      input.City,
			"delivery_address":   input.Address,
			"delivery_recipient": input.Recipient,
			"phone":              input.Phone,
		}); uerr != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, uerr, "save delivery details")
		}

		if cerr := s.cartRepo.WithTx(tx).Clear(ctx, userID); cerr != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, cerr, "clear cart")
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID.String(),
			UserID:        &userID,
			Data:          orderEvent(order),
		})
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "assemble order")
	}

	s.metrics.IncCreated()
	s.metrics.AddDiscount("volume", order.DiscountVolume)
	s.metrics.AddDiscount("loyalty", order.DiscountLoyalty)
	s.metrics.AddDiscount("promo", order.DiscountPromo)

	if s.logg != nil {
		s.logg.Info(s.logg.WithOrderNumber(s.logg.WithUserID(ctx, userID), order.Number), "order placed")
	}
	return order, nil
}

// MarkPaid moves a pending order to paid and applies the purchase side
// effects: loyalty kg accrual, order counters, and the one-time referral
// bonus on a referred user's first paid order.
func (s *service) MarkPaid(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var order *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		usersRepo := s.usersRepo.WithTx(tx)

		loaded, ferr := repo.FindByID(ctx, orderID)
		if ferr != nil {
			if errors.Is(ferr, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, ferr, "load order")
		}
		if loaded.Status != enums.OrderStatusPending {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order is not pending")
		}

		now := s.now()
		if uerr := repo.Update(ctx, loaded.ID, map[string]any{
			"status":  enums.OrderStatusPaid,
			"paid_at": now,
		}); uerr != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, uerr, "update order status")
		}
		loaded.Status = enums.OrderStatusPaid
		loaded.PaidAt = &now

		user, uerr := usersRepo.FindByID(ctx, loaded.UserID)
		if uerr != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, uerr, "load user")
		}
		firstPaidOrder := user.TotalOrders == 0

		leveledUp, newLevel, lerr := s.loyalty.ApplyPurchase(ctx, tx, user, loaded.Items.WeightKg())
		if lerr != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, lerr, "apply loyalty purchase")
		}

		if uerr := usersRepo.Update(ctx, user.ID, map[string]any{
			"total_orders":  user.TotalOrders + 1,
			"last_order_at": now,
		}); uerr != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, uerr, "update user order stats")
		}

		if eerr := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderPaid,
			AggregateType: enums.AggregateOrder,
			AggregateID:   loaded.ID.String(),
			UserID:        &loaded.UserID,
			Data:          orderEvent(loaded),
		}); eerr != nil {
			return eerr
		}

		if leveledUp {
			if eerr := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventLoyaltyLevelUp,
				AggregateType: enums.AggregateUser,
				AggregateID:   fmt.Sprintf("%d", user.ID),
				UserID:        &user.ID,
				Data:          LoyaltyLevelUpEvent{UserID: user.ID, NewLevel: newLevel},
			}); eerr != nil {
				return eerr
			}
		}

		if firstPaidOrder && user.ReferredByID != nil && s.bonus > 0 {
			if berr := s.grantReferralBonus(ctx, tx, usersRepo, user); berr != nil {
				return berr
			}
		}

		order = loaded
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark order paid")
	}

	s.metrics.IncTransition(string(enums.OrderStatusPaid))
	if s.logg != nil {
		s.logg.Info(s.logg.WithOrderNumber(ctx, order.Number), "order paid")
	}
	return order, nil
}

func (s *service) grantReferralBonus(ctx context.Context, tx *gorm.DB, usersRepo users.Repository, user *models.User) error {
	referrer, err := usersRepo.FindByID(ctx, *user.ReferredByID)
	if err != nil {
		// a vanished referrer forfeits the bonus, the payment still counts
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load referrer")
	}

	if err := usersRepo.Update(ctx, referrer.ID, map[string]any{
		"referral_balance": referrer.ReferralBalance + s.bonus,
	}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "credit referrer bonus")
	}
	if err := usersRepo.Update(ctx, user.ID, map[string]any{
		"referral_balance": user.ReferralBalance + s.bonus,
	}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "credit referred bonus")
	}

	return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventReferralBonusGiven,
		AggregateType: enums.AggregateUser,
		AggregateID:   fmt.Sprintf("%d", user.ID),
		UserID:        &user.ID,
		Data:          ReferralBonusEvent{UserID: user.ID, ReferrerID: referrer.ID, Amount: s.bonus},
	})
}

// UpdateStatus applies an admin status change. Moving to paid goes through
// the full payment side effects; other targets follow the transition table.
func (s *service) UpdateStatus(ctx context.Context, orderID uuid.UUID, input StatusUpdateInput) (*models.Order, error) {
	target, err := enums.ParseOrderStatus(input.Status)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown order status")
	}
	if target == enums.OrderStatusPaid {
		return s.MarkPaid(ctx, orderID)
	}
	if target == enums.OrderStatusShipped && (input.TrackingNumber == nil || *input.TrackingNumber == "") {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tracking number required for shipped status")
	}

	var order *models.Order
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		loaded, ferr := repo.FindByID(ctx, orderID)
		if ferr != nil {
			if errors.Is(ferr, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, ferr, "load order")
		}
		if !CanTransition(loaded.Status, target) {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("cannot move order from %s to %s", loaded.Status, target))
		}

		now := s.now()
		updates := map[string]any{"status": target}
		switch target {
		case enums.OrderStatusShipped:
			updates["shipped_at"] = now
			updates["tracking_number"] = *input.TrackingNumber
			loaded.ShippedAt = &now
			loaded.TrackingNumber = input.TrackingNumber
		case enums.OrderStatusDelivered:
			updates["delivered_at"] = now
			loaded.DeliveredAt = &now
		case enums.OrderStatusCancelled:
			updates["cancelled_at"] = now
			loaded.CancelledAt = &now
		}

		if uerr := repo.Update(ctx, loaded.ID, updates); uerr != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, uerr, "update order status")
		}
		loaded.Status = target

		if eerr := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     statusEventType(target),
			AggregateType: enums.AggregateOrder,
			AggregateID:   loaded.ID.String(),
			UserID:        &loaded.UserID,
			Data:          orderEvent(loaded),
		}); eerr != nil {
			return eerr
		}

		order = loaded
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}

	s.metrics.IncTransition(string(target))
	if s.logg != nil {
		s.logg.Info(s.logg.WithOrderNumber(ctx, order.Number), "order status updated")
	}
	return order, nil
}

func (s *service) ListUserOrders(ctx context.Context, userID int64, limit int) ([]models.Order, error) {
	orders, err := s.repo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return orders, nil
}

func (s *service) GetByNumber(ctx context.Context, userID int64, number string) (*models.Order, error) {
	order, err := s.repo.FindByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if userID != 0 && order.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return order, nil
}

func (s *service) GetByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func pricingLines(items []models.CartItem) []pricing.Line {
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

func snapshotItems(items []models.CartItem) types.OrderItems {
	snapshot := make(types.OrderItems, 0, len(items))
	for _, item := range items {
		if item.Product == nil {
			continue
		}
		unit := unitPrice(item.Product, item.Format)
		snapshot = append(snapshot, types.OrderItem{
			ProductID: item.ProductID,
			Name:      item.Product.Name,
			Format:    item.Format,
			Quantity:  item.Quantity,
			UnitPrice: unit,
			LineTotal: unit * item.Quantity,
		})
	}
	return snapshot
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

func orderEvent(order *models.Order) OrderEvent {
	return OrderEvent{
		OrderID: order.ID.String(),
		Number:  order.Number,
		Status:  string(order.Status),
		Total:   order.Total,
	}
}

func statusEventType(status enums.OrderStatus) enums.OutboxEventType {
	switch status {
	case enums.OrderStatusShipped:
		return enums.EventOrderShipped
	case enums.OrderStatusDelivered:
		return enums.EventOrderDelivered
	case enums.OrderStatusCancelled:
		return enums.EventOrderCancelled
	default:
		return enums.EventOrderPaid
	}
}

func generateOrderNumber() string {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		panic(err)
	}
	return fmt.Sprintf("MC-%d", 1000+n.Int64())
}
