package handler

import (
	"net/http"

	"royal-kart/internal/model"
	"royal-kart/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// AdminHandler serves the API-key protected back office routes.
type AdminHandler struct {
	orders  service.OrderService
	coupons service.CouponService
	logger  zerolog.Logger
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(orders service.OrderService, coupons service.CouponService, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		orders:  orders,
		coupons: coupons,
		logger:  logger.With().Str("handler", "admin").Logger(),
	}
}

// ListOrders handles GET /api/admin/orders?status&limit&offset.
func (h *AdminHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := pagination(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	status := model.OrderStatus(r.URL.Query().Get("status"))

	orders, err := h.orders.List(r.Context(), status, limit, offset)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

// GetOrder handles GET /api/admin/orders/:orderId.
func (h *AdminHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	detail, err := h.orders.Get(r.Context(), param(r, "orderId"))
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// UpdateOrderStatus handles PUT /api/admin/orders/:orderId/status.
func (h *AdminHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req model.StatusUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	if req.Status == "" {
		writeError(w, r, model.MissingField("status"), h.logger)
		return
	}

	order, err := h.orders.UpdateStatus(r.Context(), param(r, "orderId"), req.Status)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// DeleteOrder handles DELETE /api/admin/orders/:orderId.
func (h *AdminHandler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	if err := h.orders.Delete(r.Context(), param(r, "orderId")); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddOrderMessage handles POST /api/admin/orders/:orderId/messages.
func (h *AdminHandler) AddOrderMessage(w http.ResponseWriter, r *http.Request) {
	var req model.MessageRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	msg, err := h.orders.AddAdminMessage(r.Context(), param(r, "orderId"), req.Message)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

// ListCoupons handles GET /api/admin/coupons.
func (h *AdminHandler) ListCoupons(w http.ResponseWriter, r *http.Request) {
	coupons, err := h.coupons.List(r.Context())
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, coupons)
}

// CreateCoupon handles POST /api/admin/coupons.
func (h *AdminHandler) CreateCoupon(w http.ResponseWriter, r *http.Request) {
	var req model.CouponRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	c, err := h.coupons.Create(r.Context(), &req)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func couponID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(param(r, "id"))
	if err != nil {
		return uuid.Nil, model.InvalidParameter("coupon id")
	}
	return id, nil
}

// UpdateCoupon handles PUT /api/admin/coupons/:id.
func (h *AdminHandler) UpdateCoupon(w http.ResponseWriter, r *http.Request) {
	id, err := couponID(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	var req model.CouponRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	c, err := h.coupons.Update(r.Context(), id, &req)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// DeleteCoupon handles DELETE /api/admin/coupons/:id.
func (h *AdminHandler) DeleteCoupon(w http.ResponseWriter, r *http.Request) {
	id, err := couponID(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	if err := h.coupons.Delete(r.Context(), id); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
