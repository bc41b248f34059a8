package checkout

import (
	"context"
	"fmt"

	sq "github.com/square/square-go-sdk"

	"github.com/monkeysroasters/roastery-backend/internal/orders"
	"github.com/monkeysroasters/roastery-backend/pkg/db/models"
	"github.com/monkeysroasters/roastery-backend/pkg/logger"
	"github.com/monkeysroasters/roastery-backend/pkg/square"
)

type orderCreator interface {
	CreateFromCart(ctx context.Context, userID int64, input orders.CreateOrderInput) (*models.Order, error)
}

type paymentLinker interface {
	CreatePaymentLink(ctx context.Context, params square.PaymentLinkCreateParams) (*sq.PaymentLink, error)
}

// Result pairs the placed order with its hosted payment page.
type Result struct {
	Order      *models.Order `json:"order"`
	PaymentURL string        `json:"payment_url,omitempty"`
}

// Service assembles an order and opens a hosted payment link for it.
type Service interface {
	Checkout(ctx context.Context, userID int64, input orders.CreateOrderInput) (*Result, error)
}

type service struct {
	orders   orderCreator
	payments paymentLinker
	currency string
	logg     *logger.Logger
}

// NewService builds the checkout service. A nil payment linker disables
// hosted payments; orders are still placed and settle manually.
func NewService(ordersSvc orderCreator, payments paymentLinker, currency string, logg *logger.Logger) (Service, error) {
	if ordersSvc == nil {
		return nil, fmt.Errorf("orders service required")
	}
	return &service{orders: ordersSvc, payments: payments, currency: currency, logg: logg}, nil
}

// Checkout places the order and requests a payment link for the final total.
// A payment link failure does not roll the order back; the order stays
// pending and staff can settle it through the admin flow.
func (s *service) Checkout(ctx context.Context, userID int64, input orders.CreateOrderInput) (*Result, error) {
	order, err := s.orders.CreateFromCart(ctx, userID, input)
	if err != nil {
		return nil, err
	}

	result := &Result{Order: order}
	if s.payments == nil {
		return result, nil
	}

	link, err := s.payments.CreatePaymentLink(ctx, square.PaymentLinkCreateParams{
		Name:        fmt.Sprintf("Order %s", order.Number),
		AmountMinor: square.MinorUnits(order.Total),
		Currency:    s.currency,
		PaymentNote: order.Number,
	})
	if err != nil {
		if s.logg != nil {
			s.logg.Error(s.logg.WithOrderNumber(ctx, order.Number), "payment link creation failed", err)
		}
		return result, nil
	}

	if url := link.GetURL(); url != nil {
		result.PaymentURL = *url
	}
	return result, nil
}
