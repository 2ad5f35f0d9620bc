package handler

import (
	"net/http"

	"royal-kart/internal/model"
	"royal-kart/internal/service"

	"github.com/rs/zerolog"
)

// OrderHandler handles customer-facing order tracking.
type OrderHandler struct {
	service service.OrderService
	logger  zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(service service.OrderService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  logger.With().Str("handler", "order").Logger(),
	}
}

// Track handles GET /api/orders/:orderId?phone=.
func (h *OrderHandler) Track(w http.ResponseWriter, r *http.Request) {
	phone := r.URL.Query().Get("phone")
	if phone == "" {
		writeError(w, r, model.MissingField("phone"), h.logger)
		return
	}

	detail, err := h.service.Track(r.Context(), param(r, "orderId"), phone)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// AddMessage handles POST /api/orders/:orderId/messages.
func (h *OrderHandler) AddMessage(w http.ResponseWriter, r *http.Request) {
	var req model.MessageRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	if req.Phone == "" {
		writeError(w, r, model.MissingField("phone"), h.logger)
		return
	}

	msg, err := h.service.AddCustomerMessage(r.Context(), param(r, "orderId"), req.Phone, req.Message)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}
