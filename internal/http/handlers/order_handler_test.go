package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	types "github.com/ledazaf/ms-order-api/internal/domain"
	domainagg "github.com/ledazaf/ms-order-api/internal/domain/aggregates"
	"github.com/ledazaf/ms-order-api/internal/http/response"
	"github.com/ledazaf/ms-order-api/internal/pkg/dbctx"
	"github.com/ledazaf/ms-order-api/internal/pkg/logger"
)

type fakeOrderService struct {
	order    types.Order
	totals   domainagg.OrderTotalsResult
	transRes domainagg.TransitionOrderStatusResult
	err      error

	lastAddOrderID   int64
	lastAddProductID int64
	lastAddQuantity  int
}

func (f *fakeOrderService) Create(ctx context.Context, orderDate time.Time, lines []domainagg.OrderLine) (types.Order, error) {
	return f.order, f.err
}

func (f *fakeOrderService) GetByID(dbc dbctx.Context, id int64) (*types.Order, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &f.order, nil
}

func (f *fakeOrderService) List(dbc dbctx.Context, statuses []types.OrderStatus) ([]*types.Order, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []*types.Order{&f.order}, nil
}

func (f *fakeOrderService) AddItem(ctx context.Context, orderID, productID int64, quantity int) (domainagg.OrderTotalsResult, error) {
	f.lastAddOrderID = orderID
	f.lastAddProductID = productID
	f.lastAddQuantity = quantity
	return f.totals, f.err
}

func (f *fakeOrderService) RemoveItem(ctx context.Context, orderID, itemID int64) (domainagg.OrderTotalsResult, error) {
	return f.totals, f.err
}

func (f *fakeOrderService) TransitionStatus(ctx context.Context, orderID int64, from, to types.OrderStatus) (domainagg.TransitionOrderStatusResult, error) {
	return f.transRes, f.err
}

func newOrderTestRouter(t *testing.T, svc *fakeOrderService) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	h := NewOrderHandler(log, svc)
	r := gin.New()
	r.POST("/api/orders", h.Create)
	r.GET("/api/orders/:id", h.Get)
	r.POST("/api/orders/:id/items", h.AddItem)
	r.DELETE("/api/orders/:id/items/:itemId", h.RemoveItem)
	r.POST("/api/orders/:id/status", h.TransitionStatus)
	return r
}

func TestOrderHandlerAddItem(t *testing.T) {
	svc := &fakeOrderService{totals: domainagg.OrderTotalsResult{OrderID: 3, ItemID: 8}}
	r := newOrderTestRouter(t, svc)

	req := httptest.NewRequest(http.MethodPost, "/api/orders/3/items",
		strings.NewReader(`{"product_id": 42, "quantity": 2}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (body %s)", rec.Code, rec.Body.String())
	}
	if svc.lastAddOrderID != 3 || svc.lastAddProductID != 42 || svc.lastAddQuantity != 2 {
		t.Fatalf("service got order=%d product=%d qty=%d",
			svc.lastAddOrderID, svc.lastAddProductID, svc.lastAddQuantity)
	}
}

func TestOrderHandlerErrorStatusMapping(t *testing.T) {
	cases := []struct {
		code domainagg.ErrorCode
		want int
	}{
		{domainagg.CodeValidation, http.StatusBadRequest},
		{domainagg.CodeNotFound, http.StatusNotFound},
		{domainagg.CodeInsufficientStock, http.StatusConflict},
		{domainagg.CodeInvalidTransition, http.StatusConflict},
		{domainagg.CodeConcurrentModification, http.StatusConflict},
		{domainagg.CodeIntegrity, http.StatusConflict},
		{domainagg.CodeRetryable, http.StatusServiceUnavailable},
		{domainagg.CodeInternal, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		svc := &fakeOrderService{err: domainagg.NewError(tc.code, "op", "failed", nil)}
		r := newOrderTestRouter(t, svc)

		req := httptest.NewRequest(http.MethodPost, "/api/orders/3/items",
			strings.NewReader(`{"product_id": 42, "quantity": 2}`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		if rec.Code != tc.want {
			t.Fatalf("code %s: status = %d, want %d", tc.code, rec.Code, tc.want)
		}
		var envelope response.ErrorEnvelope
		if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
			t.Fatalf("code %s: bad envelope %s", tc.code, rec.Body.String())
		}
		if envelope.Error.Code != string(tc.code) {
			t.Fatalf("envelope code = %q, want %q", envelope.Error.Code, tc.code)
		}
	}
}

func TestOrderHandlerInvalidPathID(t *testing.T) {
	r := newOrderTestRouter(t, &fakeOrderService{})

	req := httptest.NewRequest(http.MethodGet, "/api/orders/abc", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestOrderHandlerCreateParsesDate(t *testing.T) {
	svc := &fakeOrderService{order: types.Order{ID: 1, Status: types.OrderStatusPending}}
	r := newOrderTestRouter(t, svc)

	req := httptest.NewRequest(http.MethodPost, "/api/orders",
		strings.NewReader(`{"order_date": "2026-08-30", "lines": [{"product_id": 1, "quantity": 2}]}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (body %s)", rec.Code, rec.Body.String())
	}

	badReq := httptest.NewRequest(http.MethodPost, "/api/orders",
		strings.NewReader(`{"order_date": "30/08/2026"}`))
	badReq.Header.Set("Content-Type", "application/json")
	badRec := httptest.NewRecorder()
	r.ServeHTTP(badRec, badReq)

	if badRec.Code != http.StatusBadRequest {
		t.Fatalf("bad date status = %d, want 400", badRec.Code)
	}
}

func TestOrderHandlerTransitionRejectsUnknownStatus(t *testing.T) {
	svc := &fakeOrderService{err: domainagg.NewError(domainagg.CodeValidation, "op", "unknown status", nil)}
	r := newOrderTestRouter(t, svc)

	req := httptest.NewRequest(http.MethodPost, "/api/orders/1/status",
		strings.NewReader(`{"to": "shipped"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
