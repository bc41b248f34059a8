package square

import (
	"strings"

	"github.com/shopspring/decimal"
	sq "github.com/square/square-go-sdk"
	sqcheckout "github.com/square/square-go-sdk/checkout"
)

// PaymentLinkCreateParams contains the fields required to create a hosted
// checkout link. AmountMinor is in kopecks.
type PaymentLinkCreateParams struct {
	Name           string
	AmountMinor    int64
	Currency       string
	LocationID     string
	RedirectURL    string
	PaymentNote    string
	IdempotencyKey string
}

func (p PaymentLinkCreateParams) toSquareRequest(idempotencyKey string) *sqcheckout.CreatePaymentLinkRequest {
	req := &sqcheckout.CreatePaymentLinkRequest{
		IdempotencyKey: ptrString(idempotencyKey),
		QuickPay: &sq.QuickPay{
			Name:       p.Name,
			LocationID: p.LocationID,
			PriceMoney: &sq.Money{
				Amount:   int64Ptr(p.AmountMinor),
				Currency: currencyPtr(p.Currency),
			},
		},
	}
	if trimmed := strings.TrimSpace(p.RedirectURL); trimmed != "" {
		req.CheckoutOptions = &sq.CheckoutOptions{
			RedirectURL: ptrString(trimmed),
		}
	}
	if trimmed := strings.TrimSpace(p.PaymentNote); trimmed != "" {
		req.PaymentNote = ptrString(trimmed)
	}
	return req
}

// MinorUnits converts a whole-hryvnia amount to kopecks.
func MinorUnits(amount int) int64 {
	return decimal.NewFromInt(int64(amount)).Shift(2).IntPart()
}

func ptrString(value string) *string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return &value
}

func int64Ptr(value int64) *int64 {
	return &value
}

func currencyPtr(code string) *sq.Currency {
	trimmed := strings.ToUpper(strings.TrimSpace(code))
	if trimmed == "" {
		trimmed = "UAH"
	}
	c := sq.Currency(trimmed)
	return &c
}
