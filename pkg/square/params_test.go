package square

import "testing"

func TestMinorUnits(t *testing.T) {
	cases := []struct {
		amount int
		want   int64
	}{
		{0, 0},
		{1, 100},
		{735, 73500},
		{1500, 150000},
	}
	for _, tc := range cases {
		if got := MinorUnits(tc.amount); got != tc.want {
			t.Fatalf("MinorUnits(%d) = %d, want %d", tc.amount, got, tc.want)
		}
	}
}

func TestPaymentLinkRequestDefaultsCurrency(t *testing.T) {
	params := PaymentLinkCreateParams{
		Name:        "Order MC-1042",
		AmountMinor: 73500,
		LocationID:  "LOC123",
	}
	req := params.toSquareRequest("key-1")
	if req.QuickPay == nil {
		t.Fatalf("expected quick pay payload")
	}
	if got := *req.QuickPay.PriceMoney.Amount; got != 73500 {
		t.Fatalf("expected amount 73500, got %d", got)
	}
	if got := string(*req.QuickPay.PriceMoney.Currency); got != "UAH" {
		t.Fatalf("expected UAH currency, got %s", got)
	}
	if req.CheckoutOptions != nil {
		t.Fatalf("expected no checkout options without redirect url")
	}
}
