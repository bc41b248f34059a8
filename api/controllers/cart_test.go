package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/monkeysroasters/roastery-backend/api/middleware"
	cartsvc "github.com/monkeysroasters/roastery-backend/internal/cart"
	pkgerrors "github.com/monkeysroasters/roastery-backend/pkg/errors"
)

type stubCartService struct {
	dto       *cartsvc.CartDTO
	quote     *cartsvc.QuoteDTO
	err       error
	lastInput cartsvc.AddItemInput
	lastPromo string
}

func (s *stubCartService) GetCart(context.Context, int64) (*cartsvc.CartDTO, error) {
	return s.dto, s.err
}

func (s *stubCartService) AddItem(_ context.Context, _ int64, input cartsvc.AddItemInput) (*cartsvc.CartDTO, error) {
	s.lastInput = input
	return s.dto, s.err
}

func (s *stubCartService) ChangeQuantity(context.Context, int64, uuid.UUID, int) (*cartsvc.CartDTO, error) {
	return s.dto, s.err
}

func (s *stubCartService) RemoveItem(context.Context, int64, uuid.UUID) (*cartsvc.CartDTO, error) {
	return s.dto, s.err
}

func (s *stubCartService) Clear(context.Context, int64) error { return s.err }

func (s *stubCartService) Quote(_ context.Context, _ int64, promoCode string) (*cartsvc.QuoteDTO, error) {
	s.lastPromo = promoCode
	return s.quote, s.err
}

func userRequest(method, target string, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	return req.WithContext(middleware.WithUserID(req.Context(), 42))
}

func TestGetCartSuccess(t *testing.T) {
	svc := &stubCartService{dto: &cartsvc.CartDTO{ItemCount: 3, Subtotal: 420}}
	resp := httptest.NewRecorder()

	GetCart(svc, nil).ServeHTTP(resp, userRequest(http.MethodGet, "/api/v1/cart", ""))

	require.Equal(t, http.StatusOK, resp.Code)

	var envelope struct {
		Data cartsvc.CartDTO `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	assert.Equal(t, 3, envelope.Data.ItemCount)
	assert.Equal(t, 420, envelope.Data.Subtotal)
}

func TestAddCartItemValidatesBody(t *testing.T) {
	svc := &stubCartService{dto: &cartsvc.CartDTO{}}
	resp := httptest.NewRecorder()

	AddCartItem(svc, nil).ServeHTTP(resp, userRequest(http.MethodPost, "/api/v1/cart/items", `{"format":"pack_300g"}`))

	require.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestAddCartItemPassesInput(t *testing.T) {
	productID := uuid.New()
	svc := &stubCartService{dto: &cartsvc.CartDTO{ItemCount: 1}}
	resp := httptest.NewRecorder()

	body := `{"product_id":"` + productID.String() + `","format":"pack_300g","quantity":2}`
	AddCartItem(svc, nil).ServeHTTP(resp, userRequest(http.MethodPost, "/api/v1/cart/items", body))

	require.Equal(t, http.StatusCreated, resp.Code)
	assert.Equal(t, productID, svc.lastInput.ProductID)
	assert.Equal(t, "pack_300g", svc.lastInput.Format)
	assert.Equal(t, 2, svc.lastInput.Quantity)
}

func TestQuoteCartForwardsPromoCode(t *testing.T) {
	svc := &stubCartService{quote: &cartsvc.QuoteDTO{}}
	resp := httptest.NewRecorder()

	QuoteCart(svc, nil).ServeHTTP(resp, userRequest(http.MethodPost, "/api/v1/cart/quote", `{"promo_code":"WELCOME10"}`))

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "WELCOME10", svc.lastPromo)
}

func TestQuoteCartEmptyCart(t *testing.T) {
	svc := &stubCartService{err: pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")}
	resp := httptest.NewRecorder()

	QuoteCart(svc, nil).ServeHTTP(resp, userRequest(http.MethodPost, "/api/v1/cart/quote", `{}`))

	require.Equal(t, http.StatusBadRequest, resp.Code)

	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	assert.Equal(t, string(pkgerrors.CodeValidation), envelope.Error.Code)
	assert.Equal(t, "cart is empty", envelope.Error.Message)
}
