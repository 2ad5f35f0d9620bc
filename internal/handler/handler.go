package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"royal-kart/internal/middleware"
	"royal-kart/internal/model"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog"
)

var errInvalidJSON = model.NewDomainError(model.ErrCodeInvalidJSON, "Request body must be valid JSON")

// statusByCode maps domain error codes to HTTP statuses. Unknown codes are
// treated as bad requests.
var statusByCode = map[string]int{
	model.ErrCodeProductNotFound:     http.StatusNotFound,
	model.ErrCodeCartLineNotFound:    http.StatusNotFound,
	model.ErrCodeOrderNotFound:       http.StatusNotFound,
	model.ErrCodeCouponNotFound:      http.StatusNotFound,
	model.ErrCodeCategoryNotFound:    http.StatusNotFound,
	model.ErrCodeVariantNotFound:     http.StatusNotFound,
	model.ErrCodeInsufficientStock:   http.StatusUnprocessableEntity,
	model.ErrCodeCouponInvalid:       http.StatusUnprocessableEntity,
	model.ErrCodeCouponExpired:       http.StatusUnprocessableEntity,
	model.ErrCodeCouponExhausted:     http.StatusUnprocessableEntity,
	model.ErrCodeCouponMinimumNotMet: http.StatusUnprocessableEntity,
	model.ErrCodeCODNotEligible:      http.StatusUnprocessableEntity,
	model.ErrCodeDuplicateCoupon:     http.StatusConflict,
	model.ErrCodeDuplicateProduct:    http.StatusConflict,
	model.ErrCodeDuplicateVariant:    http.StatusConflict,
	model.ErrCodeUnauthorised:        http.StatusUnauthorized,
	model.ErrCodeRateLimited:         http.StatusTooManyRequests,
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers are already out; nothing useful left to tell the client.
		return
	}
}

// writeError translates err into a status code and JSON body. Anything that is
// not a domain error is logged and reported as an internal error.
func writeError(w http.ResponseWriter, r *http.Request, err error, logger zerolog.Logger) {
	writeErrorWith(w, r, err, nil, logger)
}

// writeErrorWith is writeError with per-route status overrides.
func writeErrorWith(w http.ResponseWriter, r *http.Request, err error, overrides map[string]int, logger zerolog.Logger) {
	requestID := middleware.RequestIDFromContext(r.Context())

	var domainErr *model.DomainError
	if !errors.As(err, &domainErr) {
		logger.Error().Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("request_id", requestID).
			Msg("request failed")
		writeJSON(w, http.StatusInternalServerError, model.ErrorResponse{
			Error:     model.ErrCodeInternalError,
			Message:   "Something went wrong, please try again",
			RequestID: requestID,
		})
		return
	}

	status, ok := overrides[domainErr.Code]
	if !ok {
		status, ok = statusByCode[domainErr.Code]
	}
	if !ok {
		status = http.StatusBadRequest
	}

	logger.Debug().
		Str("error_code", domainErr.Code).
		Int("status", status).
		Str("path", r.URL.Path).
		Msg("request rejected")
	writeJSON(w, status, model.ErrorResponse{
		Error:     domainErr.Code,
		Message:   domainErr.Message,
		RequestID: requestID,
	})
}

// decodeJSON reads the request body into v.
func decodeJSON(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return errInvalidJSON
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errInvalidJSON
	}
	return nil
}

// pagination parses ?limit and ?offset. Missing values are returned as zero
// so the service applies its defaults.
func pagination(r *http.Request) (limit, offset int, err error) {
	q := r.URL.Query()
	if s := q.Get("limit"); s != "" {
		if limit, err = strconv.Atoi(s); err != nil {
			return 0, 0, model.InvalidParameter("limit")
		}
	}
	if s := q.Get("offset"); s != "" {
		if offset, err = strconv.Atoi(s); err != nil {
			return 0, 0, model.InvalidParameter("offset")
		}
	}
	return limit, offset, nil
}

// param returns a named path parameter.
func param(r *http.Request, name string) string {
	return httprouter.ParamsFromContext(r.Context()).ByName(name)
}

// session returns the cart session attached by the session middleware.
func session(r *http.Request) (string, error) {
	id := middleware.SessionFromContext(r.Context())
	if id == "" {
		return "", model.MissingField("session")
	}
	return id, nil
}

// parseSelections reads "attr:value,attr:value". Malformed pairs are skipped.
func parseSelections(raw string) []model.Selection {
	if raw == "" {
		return nil
	}
	var out []model.Selection
	for _, pair := range strings.Split(raw, ",") {
		attr, value, ok := strings.Cut(strings.TrimSpace(pair), ":")
		if !ok || attr == "" || value == "" {
			continue
		}
		out = append(out, model.Selection{AttributeID: attr, ValueID: value})
	}
	return out
}
