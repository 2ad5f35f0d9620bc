package handler

import (
	"net/http"

	"royal-kart/internal/model"
	"royal-kart/internal/service"

	"github.com/rs/zerolog"
)

// placementStatus overrides the default mapping for order placement, where a
// coupon that ran out between quote and order is a conflict.
var placementStatus = map[string]int{
	model.ErrCodeCouponExhausted: http.StatusConflict,
}

// CheckoutHandler serves coupon quotes and order placement.
type CheckoutHandler struct {
	service service.CheckoutService
	logger  zerolog.Logger
}

// NewCheckoutHandler creates a new checkout handler.
func NewCheckoutHandler(service service.CheckoutService, logger zerolog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		service: service,
		logger:  logger.With().Str("handler", "checkout").Logger(),
	}
}

func (h *CheckoutHandler) quote(w http.ResponseWriter, r *http.Request, code string) {
	sessionID, err := session(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	q, err := h.service.Quote(r.Context(), sessionID, code)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

// Quote handles GET /api/checkout/quote?coupon=CODE.
func (h *CheckoutHandler) Quote(w http.ResponseWriter, r *http.Request) {
	h.quote(w, r, r.URL.Query().Get("coupon"))
}

// ApplyCoupon handles POST /api/checkout/coupon.
func (h *CheckoutHandler) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	var req model.CouponApplyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	if req.Code == "" {
		writeError(w, r, model.MissingField("code"), h.logger)
		return
	}
	h.quote(w, r, req.Code)
}

// PlaceOrder handles POST /api/checkout.
func (h *CheckoutHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	sessionID, err := session(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	var req model.CheckoutRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	placed, err := h.service.PlaceOrder(r.Context(), sessionID, &req)
	if err != nil {
		writeErrorWith(w, r, err, placementStatus, h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, placed)
}
