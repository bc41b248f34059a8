package controllers

import (
	"time"

	"github.com/google/uuid"

	"github.com/monkeysroasters/roastery-backend/internal/loyalty"
	"github.com/monkeysroasters/roastery-backend/pkg/db/models"
	"github.com/monkeysroasters/roastery-backend/pkg/types"
)

type orderResponse struct {
	ID     uuid.UUID `json:"id"`
	Number string    `json:"number"`
	Status string    `json:"status"`

	Items    types.OrderItems `json:"items"`
	WeightKg float64          `json:"weight_kg"`

	Subtotal        int     `json:"subtotal"`
	DiscountVolume  int     `json:"discount_volume"`
	DiscountLoyalty int     `json:"discount_loyalty"`
	DiscountPromo   int     `json:"discount_promo"`
	PromoCode       *string `json:"promo_code,omitempty"`
	DeliveryCost    int     `json:"delivery_cost"`
	Total           int     `json:"total"`

	DeliveryMethod    string  `json:"delivery_method"`
	DeliveryCity      string  `json:"delivery_city"`
	DeliveryAddress   string  `json:"delivery_address"`
	DeliveryRecipient string  `json:"delivery_recipient"`
	DeliveryPhone     string  `json:"delivery_phone"`
	Grind             string  `json:"grind"`
	Comment           *string `json:"comment,omitempty"`
	TrackingNumber    *string `json:"tracking_number,omitempty"`

	PaidAt      *time.Time `json:"paid_at,omitempty"`
	ShippedAt   *time.Time `json:"shipped_at,omitempty"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func newOrderResponse(order *models.Order) orderResponse {
	return orderResponse{
		ID:                order.ID,
		Number:            order.Number,
		Status:            string(order.Status),
		Items:             order.Items,
		WeightKg:          order.WeightKg,
		Subtotal:          order.Subtotal,
		DiscountVolume:    order.DiscountVolume,
		DiscountLoyalty:   order.DiscountLoyalty,
		DiscountPromo:     order.DiscountPromo,
		PromoCode:         order.PromoCode,
		DeliveryCost:      order.DeliveryCost,
		Total:             order.Total,
		DeliveryMethod:    string(order.DeliveryMethod),
		DeliveryCity:      order.DeliveryCity,
		DeliveryAddress:   order.DeliveryAddress,
		DeliveryRecipient: order.DeliveryRecipient,
		DeliveryPhone:     order.DeliveryPhone,
		Grind:             string(order.Grind),
		Comment:           order.Comment,
		TrackingNumber:    order.TrackingNumber,
		PaidAt:            order.PaidAt,
		ShippedAt:         order.ShippedAt,
		DeliveredAt:       order.DeliveredAt,
		CancelledAt:       order.CancelledAt,
		CreatedAt:         order.CreatedAt,
	}
}

func newOrderResponses(orders []models.Order) []orderResponse {
	out := make([]orderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, newOrderResponse(&orders[i]))
	}
	return out
}

type profileResponse struct {
	ID              int64             `json:"id"`
	Username        *string           `json:"username,omitempty"`
	FirstName       string            `json:"first_name"`
	TotalOrders     int               `json:"total_orders"`
	ReferralCode    string            `json:"referral_code"`
	ReferralBalance int               `json:"referral_balance"`
	Loyalty         loyaltyResponse   `json:"loyalty"`
	Delivery        *deliveryResponse `json:"delivery,omitempty"`
}

type loyaltyResponse struct {
	Level    loyalty.LevelInfo `json:"level"`
	Progress loyalty.Progress  `json:"progress"`
	TotalKg  float64           `json:"total_kg"`
}

type deliveryResponse struct {
	Method    *string `json:"method,omitempty"`
	City      *string `json:"city,omitempty"`
	Address   *string `json:"address,omitempty"`
	Recipient *string `json:"recipient,omitempty"`
	Phone     *string `json:"phone,omitempty"`
}

func newProfileResponse(user *models.User, progress loyalty.Progress) profileResponse {
	resp := profileResponse{
		ID:              user.ID,
		Username:        user.Username,
		FirstName:       user.FirstName,
		TotalOrders:     user.TotalOrders,
		ReferralCode:    user.ReferralCode,
		ReferralBalance: user.ReferralBalance,
		Loyalty: loyaltyResponse{
			Level:    loyalty.LevelInfoFor(user.LoyaltyLevel),
			Progress: progress,
			TotalKg:  user.TotalPurchasedKg,
		},
	}
	if user.DeliveryCity != nil || user.DeliveryAddress != nil || user.DeliveryMethod != nil {
		var method *string
		if user.DeliveryMethod != nil {
			m := string(*user.DeliveryMethod)
			method = &m
		}
		resp.Delivery = &deliveryResponse{
			Method:    method,
			City:      user.DeliveryCity,
			Address:   user.DeliveryAddress,
			Recipient: user.DeliveryRecipient,
			Phone:     user.Phone,
		}
	}
	return resp
}

type promoResponse struct {
	ID             uuid.UUID  `json:"id"`
	Code           string     `json:"code"`
	Percent        int        `json:"percent"`
	Active         bool       `json:"active"`
	ValidFrom      *time.Time `json:"valid_from,omitempty"`
	ValidUntil     *time.Time `json:"valid_until,omitempty"`
	UsageLimit     *int       `json:"usage_limit,omitempty"`
	UsedCount      int        `json:"used_count"`
	MinOrderAmount int        `json:"min_order_amount"`
}

func newPromoResponse(promo *models.PromoCode) promoResponse {
	return promoResponse{
		ID:             promo.ID,
		Code:           promo.Code,
		Percent:        promo.Percent,
		Active:         promo.Active,
		ValidFrom:      promo.ValidFrom,
		ValidUntil:     promo.ValidUntil,
		UsageLimit:     promo.UsageLimit,
		UsedCount:      promo.UsedCount,
		MinOrderAmount: promo.MinOrderAmount,
	}
}

func newPromoResponses(promos []models.PromoCode) []promoResponse {
	out := make([]promoResponse, 0, len(promos))
	for i := range promos {
		out = append(out, newPromoResponse(&promos[i]))
	}
	return out
}

type volumeRuleResponse struct {
	ID        uuid.UUID `json:"id"`
	Kind      string    `json:"kind"`
	Threshold float64   `json:"threshold"`
	Percent   int       `json:"percent"`
	IsActive  bool      `json:"is_active"`
}

func newVolumeRuleResponse(rule *models.VolumeDiscountRule) volumeRuleResponse {
	return volumeRuleResponse{
		ID:        rule.ID,
		Kind:      string(rule.Kind),
		Threshold: rule.Threshold,
		Percent:   rule.Percent,
		IsActive:  rule.IsActive,
	}
}

func newVolumeRuleResponses(rules []models.VolumeDiscountRule) []volumeRuleResponse {
	out := make([]volumeRuleResponse, 0, len(rules))
	for i := range rules {
		out = append(out, newVolumeRuleResponse(&rules[i]))
	}
	return out
}
