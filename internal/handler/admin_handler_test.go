package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"royal-kart/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newAdminHandler() (*AdminHandler, *MockOrderService, *MockCouponService) {
	orders := new(MockOrderService)
	coupons := new(MockCouponService)
	return NewAdminHandler(orders, coupons, zerolog.Nop()), orders, coupons
}

func TestAdminHandler_ListOrders(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		status         model.OrderStatus
		limit, offset  int
		mockError      error
		expectedStatus int
		expectService  bool
	}{
		{
			name:           "All orders",
			expectedStatus: http.StatusOK,
			expectService:  true,
		},
		{
			name:           "Filtered and paged",
			query:          "?status=pending&limit=20&offset=40",
			status:         model.StatusPending,
			limit:          20,
			offset:         40,
			expectedStatus: http.StatusOK,
			expectService:  true,
		},
		{
			name:           "Unknown status",
			query:          "?status=lost",
			status:         "lost",
			mockError:      model.ErrInvalidStatus,
			expectedStatus: http.StatusBadRequest,
			expectService:  true,
		},
		{
			name:           "Bad offset",
			query:          "?offset=-x",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, orders, _ := newAdminHandler()

			if tt.expectService {
				var list []model.Order
				if tt.mockError == nil {
					list = []model.Order{testOrderDetail().Order}
				}
				orders.On("List", mock.Anything, tt.status, tt.limit, tt.offset).Return(list, tt.mockError)
			}

			w := httptest.NewRecorder()
			handler.ListOrders(w, httptest.NewRequest(http.MethodGet, "/api/admin/orders"+tt.query, nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectService {
				orders.AssertExpectations(t)
			} else {
				orders.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}

func TestAdminHandler_GetOrder(t *testing.T) {
	handler, orders, _ := newAdminHandler()
	orders.On("Get", mock.Anything, testOrderID).Return(testOrderDetail(), nil)

	req := withParams(httptest.NewRequest(http.MethodGet, "/api/admin/orders/"+testOrderID, nil), "orderId", testOrderID)
	w := httptest.NewRecorder()
	handler.GetOrder(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	orders.AssertExpectations(t)
}

func TestAdminHandler_UpdateOrderStatus(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		status         model.OrderStatus
		mockError      error
		expectedStatus int
		expectService  bool
	}{
		{
			name:           "Forward transition",
			body:           `{"status":"shipped"}`,
			status:         model.StatusShipped,
			expectedStatus: http.StatusOK,
			expectService:  true,
		},
		{
			name:           "Transition out of terminal state",
			body:           `{"status":"pending"}`,
			status:         model.StatusPending,
			mockError:      model.ErrInvalidTransition,
			expectedStatus: http.StatusBadRequest,
			expectService:  true,
		},
		{
			name:           "Missing status",
			body:           `{}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Unknown order",
			body:           `{"status":"confirmed"}`,
			status:         model.StatusConfirmed,
			mockError:      model.ErrOrderNotFound,
			expectedStatus: http.StatusNotFound,
			expectService:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, orders, _ := newAdminHandler()

			if tt.expectService {
				var order *model.Order
				if tt.mockError == nil {
					o := testOrderDetail().Order
					o.Status = tt.status
					order = &o
				}
				orders.On("UpdateStatus", mock.Anything, testOrderID, tt.status).Return(order, tt.mockError)
			}

			req := httptest.NewRequest(http.MethodPut, "/api/admin/orders/"+testOrderID+"/status", bytes.NewBufferString(tt.body))
			req = withParams(req, "orderId", testOrderID)
			w := httptest.NewRecorder()

			handler.UpdateOrderStatus(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectService {
				orders.AssertExpectations(t)
			} else {
				orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}

func TestAdminHandler_DeleteOrder(t *testing.T) {
	t.Run("Delivered order", func(t *testing.T) {
		handler, orders, _ := newAdminHandler()
		orders.On("Delete", mock.Anything, testOrderID).Return(nil)

		req := withParams(httptest.NewRequest(http.MethodDelete, "/api/admin/orders/"+testOrderID, nil), "orderId", testOrderID)
		w := httptest.NewRecorder()
		handler.DeleteOrder(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("Not deletable", func(t *testing.T) {
		handler, orders, _ := newAdminHandler()
		orders.On("Delete", mock.Anything, testOrderID).Return(model.ErrOrderNotDeletable)

		req := withParams(httptest.NewRequest(http.MethodDelete, "/api/admin/orders/"+testOrderID, nil), "orderId", testOrderID)
		w := httptest.NewRecorder()
		handler.DeleteOrder(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAdminHandler_AddOrderMessage(t *testing.T) {
	handler, orders, _ := newAdminHandler()
	msg := &model.OrderMessage{ID: uuid.New(), Message: "Dispatched today", IsAdmin: true}
	orders.On("AddAdminMessage", mock.Anything, testOrderID, "Dispatched today").Return(msg, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/orders/"+testOrderID+"/messages",
		bytes.NewBufferString(`{"message":"Dispatched today"}`))
	req = withParams(req, "orderId", testOrderID)
	w := httptest.NewRecorder()

	handler.AddOrderMessage(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	var got model.OrderMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.True(t, got.IsAdmin)
	orders.AssertExpectations(t)
}

func TestAdminHandler_Coupons(t *testing.T) {
	id := uuid.New()
	coupon := &model.Coupon{
		ID:            id,
		Code:          "FESTIVE10",
		DiscountType:  model.DiscountPercentage,
		DiscountValue: money("10"),
		IsActive:      true,
	}

	t.Run("List", func(t *testing.T) {
		handler, _, coupons := newAdminHandler()
		coupons.On("List", mock.Anything).Return([]model.Coupon{*coupon}, nil)

		w := httptest.NewRecorder()
		handler.ListCoupons(w, httptest.NewRequest(http.MethodGet, "/api/admin/coupons", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		var got []model.Coupon
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		require.Len(t, got, 1)
		assert.Equal(t, "FESTIVE10", got[0].Code)
	})

	t.Run("Create", func(t *testing.T) {
		handler, _, coupons := newAdminHandler()
		coupons.On("Create", mock.Anything, mock.AnythingOfType("*model.CouponRequest")).Return(coupon, nil)

		body := `{"code":"festive10","discountType":"percentage","discountValue":"10","minOrderAmount":"0"}`
		w := httptest.NewRecorder()
		handler.CreateCoupon(w, httptest.NewRequest(http.MethodPost, "/api/admin/coupons", bytes.NewBufferString(body)))

		assert.Equal(t, http.StatusCreated, w.Code)
		coupons.AssertExpectations(t)
	})

	t.Run("Create duplicate", func(t *testing.T) {
		handler, _, coupons := newAdminHandler()
		coupons.On("Create", mock.Anything, mock.AnythingOfType("*model.CouponRequest")).Return(nil, model.ErrDuplicateCoupon)

		body := `{"code":"FESTIVE10","discountType":"percentage","discountValue":"10"}`
		w := httptest.NewRecorder()
		handler.CreateCoupon(w, httptest.NewRequest(http.MethodPost, "/api/admin/coupons", bytes.NewBufferString(body)))

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("Update", func(t *testing.T) {
		handler, _, coupons := newAdminHandler()
		coupons.On("Update", mock.Anything, id, mock.AnythingOfType("*model.CouponRequest")).Return(coupon, nil)

		body := `{"code":"FESTIVE10","discountType":"percentage","discountValue":"15"}`
		req := httptest.NewRequest(http.MethodPut, "/api/admin/coupons/"+id.String(), bytes.NewBufferString(body))
		w := httptest.NewRecorder()
		handler.UpdateCoupon(w, withParams(req, "id", id.String()))

		assert.Equal(t, http.StatusOK, w.Code)
		coupons.AssertExpectations(t)
	})

	t.Run("Update with malformed id", func(t *testing.T) {
		handler, _, coupons := newAdminHandler()

		req := httptest.NewRequest(http.MethodPut, "/api/admin/coupons/nope", bytes.NewBufferString(`{}`))
		w := httptest.NewRecorder()
		handler.UpdateCoupon(w, withParams(req, "id", "nope"))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		coupons.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Delete", func(t *testing.T) {
		handler, _, coupons := newAdminHandler()
		coupons.On("Delete", mock.Anything, id).Return(nil)

		req := httptest.NewRequest(http.MethodDelete, "/api/admin/coupons/"+id.String(), nil)
		w := httptest.NewRecorder()
		handler.DeleteCoupon(w, withParams(req, "id", id.String()))

		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("Delete unknown", func(t *testing.T) {
		handler, _, coupons := newAdminHandler()
		coupons.On("Delete", mock.Anything, id).Return(model.ErrCouponNotFound)

		req := httptest.NewRequest(http.MethodDelete, "/api/admin/coupons/"+id.String(), nil)
		w := httptest.NewRecorder()
		handler.DeleteCoupon(w, withParams(req, "id", id.String()))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
