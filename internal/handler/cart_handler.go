package handler

import (
	"net/http"

	"royal-kart/internal/model"
	"royal-kart/internal/service"

	"github.com/rs/zerolog"
)

// CartHandler serves the session cart.
type CartHandler struct {
	service service.CartService
	logger  zerolog.Logger
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(service service.CartService, logger zerolog.Logger) *CartHandler {
	return &CartHandler{
		service: service,
		logger:  logger.With().Str("handler", "cart").Logger(),
	}
}

// Get handles GET /api/cart.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	sessionID, err := session(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	view, err := h.service.Get(r.Context(), sessionID)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// AddItem handles POST /api/cart/items.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	sessionID, err := session(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	var req model.AddToCartRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	view, err := h.service.Add(r.Context(), sessionID, &req)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func lineKey(r *http.Request) (model.LineKey, error) {
	key, ok := model.ParseLineKey(param(r, "key"))
	if !ok {
		return model.LineKey{}, model.ErrCartLineNotFound
	}
	return key, nil
}

// UpdateItem handles PUT /api/cart/items/:key.
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	sessionID, err := session(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	key, err := lineKey(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	var req model.QuantityRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	view, err := h.service.SetQuantity(r.Context(), sessionID, key, req.Quantity)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// RemoveItem handles DELETE /api/cart/items/:key.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	sessionID, err := session(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	key, err := lineKey(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	view, err := h.service.Remove(r.Context(), sessionID, key)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Clear handles DELETE /api/cart.
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	sessionID, err := session(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	if err := h.service.Clear(r.Context(), sessionID); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
