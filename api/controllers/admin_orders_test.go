package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	orderssvc "github.com/monkeysroasters/roastery-backend/internal/orders"
	"github.com/monkeysroasters/roastery-backend/pkg/db/models"
	"github.com/monkeysroasters/roastery-backend/pkg/enums"
	pkgerrors "github.com/monkeysroasters/roastery-backend/pkg/errors"
)

type stubOrdersService struct {
	order     *models.Order
	err       error
	lastInput orderssvc.StatusUpdateInput
}

func (s *stubOrdersService) CreateFromCart(context.Context, int64, orderssvc.CreateOrderInput) (*models.Order, error) {
	return s.order, s.err
}

func (s *stubOrdersService) MarkPaid(context.Context, uuid.UUID) (*models.Order, error) {
	return s.order, s.err
}

func (s *stubOrdersService) UpdateStatus(_ context.Context, _ uuid.UUID, input orderssvc.StatusUpdateInput) (*models.Order, error) {
	s.lastInput = input
	return s.order, s.err
}

func (s *stubOrdersService) ListUserOrders(context.Context, int64, int) ([]models.Order, error) {
	if s.order == nil {
		return nil, s.err
	}
	return []models.Order{*s.order}, s.err
}

func (s *stubOrdersService) GetByNumber(context.Context, int64, string) (*models.Order, error) {
	return s.order, s.err
}

func (s *stubOrdersService) GetByID(context.Context, uuid.UUID) (*models.Order, error) {
	return s.order, s.err
}

func adminStatusRequest(orderID uuid.UUID, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/orders/"+orderID.String()+"/status", strings.NewReader(body))
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("orderID", orderID.String())
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestAdminUpdateOrderStatusSuccess(t *testing.T) {
	orderID := uuid.New()
	tracking := "59001234567890"
	svc := &stubOrdersService{order: &models.Order{
		ID:             orderID,
		Number:         "MC-1234",
		Status:         enums.OrderStatusShipped,
		TrackingNumber: &tracking,
	}}

	resp := httptest.NewRecorder()
	body := `{"status":"shipped","tracking_number":"59001234567890"}`
	AdminUpdateOrderStatus(svc, nil).ServeHTTP(resp, adminStatusRequest(orderID, body))

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "shipped", svc.lastInput.Status)
	require.NotNil(t, svc.lastInput.TrackingNumber)
	assert.Equal(t, tracking, *svc.lastInput.TrackingNumber)

	var envelope struct {
		Data orderResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	assert.Equal(t, "MC-1234", envelope.Data.Number)
	assert.Equal(t, "shipped", envelope.Data.Status)
}

func TestAdminUpdateOrderStatusRejectsUnknownStatus(t *testing.T) {
	svc := &stubOrdersService{}
	resp := httptest.NewRecorder()

	AdminUpdateOrderStatus(svc, nil).ServeHTTP(resp, adminStatusRequest(uuid.New(), `{"status":"archived"}`))

	require.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestAdminUpdateOrderStatusStateConflict(t *testing.T) {
	svc := &stubOrdersService{err: pkgerrors.New(pkgerrors.CodeStateConflict, "cannot move from delivered to paid")}
	resp := httptest.NewRecorder()

	AdminUpdateOrderStatus(svc, nil).ServeHTTP(resp, adminStatusRequest(uuid.New(), `{"status":"paid"}`))

	require.Equal(t, http.StatusUnprocessableEntity, resp.Code)
}

func TestAdminUpdateOrderStatusInvalidID(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/orders/not-a-uuid/status", strings.NewReader(`{"status":"paid"}`))
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("orderID", "not-a-uuid")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

	resp := httptest.NewRecorder()
	AdminUpdateOrderStatus(&stubOrdersService{}, nil).ServeHTTP(resp, req)

	require.Equal(t, http.StatusBadRequest, resp.Code)
}
