package handler_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/nemesis-api/internal/dto"
	"github.com/noah-isme/nemesis-api/internal/handler"
	"github.com/noah-isme/nemesis-api/internal/models"
	"github.com/noah-isme/nemesis-api/internal/service"
	"github.com/noah-isme/nemesis-api/pkg/payments"
)

type stubOrderService struct {
	checkoutErr  error
	webhookErr   error
	payload      []byte
	signature    string
	lastQuery    dto.OrderListQuery
	lastActor    service.Actor
	getErr       error
	webhookCalls int
}

func (s *stubOrderService) Checkout(_ context.Context, actor service.Actor) (dto.CheckoutResponse, error) {
	s.lastActor = actor
	if s.checkoutErr != nil {
		return dto.CheckoutResponse{}, s.checkoutErr
	}
	return dto.CheckoutResponse{OrderID: 12, URL: "https://checkout.stripe.com/c/pay/cs_test_1"}, nil
}

func (s *stubOrderService) HandleWebhook(_ context.Context, payload []byte, signature string) error {
	s.webhookCalls++
	s.payload = payload
	s.signature = signature
	return s.webhookErr
}

func (s *stubOrderService) List(_ context.Context, actor service.Actor, query dto.OrderListQuery) ([]models.Order, int64, error) {
	s.lastActor = actor
	s.lastQuery = query
	return []models.Order{{ID: 1, UserID: actor.ID, Status: models.OrderStatusPaid}}, 1, nil
}

func (s *stubOrderService) ListAll(_ context.Context, query dto.OrderListQuery) ([]models.Order, int64, error) {
	s.lastQuery = query
	return []models.Order{}, 0, nil
}

func (s *stubOrderService) Get(_ context.Context, actor service.Actor, id uint) (models.Order, error) {
	s.lastActor = actor
	if s.getErr != nil {
		return models.Order{}, s.getErr
	}
	return models.Order{ID: id, UserID: actor.ID}, nil
}

func orderApp(svc service.OrderService) *fiber.App {
	app := fiber.New()
	h := handler.NewOrderHandler(svc, testLogger())
	h.Register(app.Group("/api/orders", withUser(5, "user")))
	h.RegisterWebhook(app.Group("/api/webhook"))
	return app
}

func TestOrderHandlerCheckout(t *testing.T) {
	svc := &stubOrderService{}
	app := orderApp(svc)

	resp := perform(t, app, httptest.NewRequest(http.MethodPost, "/api/orders/checkout", nil))
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	require.Equal(t, uint(5), svc.lastActor.ID)

	var payload struct {
		Data dto.CheckoutResponse `json:"data"`
	}
	decodeResponse(t, resp, &payload)
	require.Equal(t, uint(12), payload.Data.OrderID)
	require.Contains(t, payload.Data.URL, "cs_test_1")
}

func TestOrderHandlerCheckoutErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"empty cart", service.ErrCartEmpty, fiber.StatusBadRequest},
		{"unavailable", service.ErrCartItemUnavailable, fiber.StatusConflict},
		{"maintenance", service.ErrMaintenanceMode, fiber.StatusServiceUnavailable},
		{"no gateway", service.ErrPaymentsUnavailable, fiber.StatusServiceUnavailable},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := orderApp(&stubOrderService{checkoutErr: tc.err})
			resp := perform(t, app, httptest.NewRequest(http.MethodPost, "/api/orders/checkout", nil))
			require.Equal(t, tc.status, resp.StatusCode)
		})
	}
}

func TestOrderHandlerWebhookPassesRawBody(t *testing.T) {
	svc := &stubOrderService{}
	app := orderApp(svc)

	body := []byte(`{"type":"checkout.session.completed","data":{"object":{"id":"cs_test_1"}}}`)
	req := httptest.NewRequest(http.MethodPost, "/api/webhook/stripe", bytes.NewReader(body))
	req.Header.Set("Stripe-Signature", "t=1,v1=abc")

	resp := perform(t, app, req)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, body, svc.payload)
	require.Equal(t, "t=1,v1=abc", svc.signature)
}

func TestOrderHandlerWebhookRejectsBadSignature(t *testing.T) {
	svc := &stubOrderService{webhookErr: payments.ErrInvalidSignature}
	app := orderApp(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/webhook/stripe", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Stripe-Signature", "forged")
	resp := perform(t, app, req)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	missing := httptest.NewRequest(http.MethodPost, "/api/webhook/stripe", bytes.NewReader([]byte(`{}`)))
	resp = perform(t, app, missing)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	require.Equal(t, 1, svc.webhookCalls)
}

func TestOrderHandlerListParsesStatus(t *testing.T) {
	svc := &stubOrderService{}
	app := orderApp(svc)

	resp := perform(t, app, httptest.NewRequest(http.MethodGet, "/api/orders?status=paid&page=2&limit=5", nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, dto.OrderListQuery{Status: "paid", Page: 2, Limit: 5}, svc.lastQuery)
}

func TestOrderHandlerGetForbidden(t *testing.T) {
	app := orderApp(&stubOrderService{getErr: service.ErrForbidden})

	resp := perform(t, app, httptest.NewRequest(http.MethodGet, "/api/orders/3", nil))
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = perform(t, app, httptest.NewRequest(http.MethodGet, "/api/orders/abc", nil))
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
