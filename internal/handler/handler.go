package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"coffeeshop/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// statusByCode maps domain error codes to HTTP statuses. Unlisted codes are 400.
var statusByCode = map[string]int{
	model.ErrCodeMenuItemNotFound:       http.StatusNotFound,
	model.ErrCodeLineNotFound:           http.StatusNotFound,
	model.ErrCodeOrderNotFound:          http.StatusNotFound,
	model.ErrCodeCouponNotFound:         http.StatusNotFound,
	model.ErrCodeReviewNotFound:         http.StatusNotFound,
	model.ErrCodeInvalidStatus:          http.StatusConflict,
	model.ErrCodeCouponAlreadyApplied:   http.StatusConflict,
	model.ErrCodeConcurrentModification: http.StatusConflict,
	model.ErrCodeReviewExists:           http.StatusConflict,
	model.ErrCodeUnauthorised:           http.StatusUnauthorized,
	model.ErrCodeInternalError:          http.StatusInternalServerError,
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// The status line is already sent; encode failures have nowhere to go.
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes a coded error response.
func writeError(w http.ResponseWriter, status int, code, message string, logger zerolog.Logger) {
	event := logger.Warn()
	if status >= http.StatusInternalServerError {
		event = logger.Error()
	}
	event.Str("code", code).Int("status", status).Msg(message)
	writeJSON(w, status, model.ErrorResponse{Error: code, Message: message})
}

// respondError translates err into an HTTP error response. Domain errors keep
// their code and message; anything else is logged and reported as internal.
func respondError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	if de, ok := model.AsDomainError(err); ok {
		status, found := statusByCode[de.Code]
		if !found {
			status = http.StatusBadRequest
		}
		writeError(w, status, de.Code, de.Message, logger)
		return
	}
	logger.Error().Err(err).Msg("request failed")
	writeJSON(w, http.StatusInternalServerError, model.ErrorResponse{
		Error:   model.ErrCodeInternalError,
		Message: "internal server error",
	})
}

// decodeJSON reads a JSON request body into v, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}, logger zerolog.Logger) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field == "quantity" {
			writeError(w, http.StatusBadRequest, model.ErrCodeInvalidQuantity, "quantity must be a whole number", logger)
			return false
		}
		message := "invalid request body"
		if errors.Is(err, io.EOF) {
			message = "request body is required"
		}
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, message, logger)
		return false
	}
	return true
}

// pathInt64 parses a positive integer path parameter.
func pathInt64(w http.ResponseWriter, r *http.Request, name string, logger zerolog.Logger) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, model.ErrCodeMissingField, "invalid "+name, logger)
		return 0, false
	}
	return id, true
}

// pathUUID parses a UUID path parameter.
func pathUUID(w http.ResponseWriter, r *http.Request, name string, logger zerolog.Logger) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeMissingField, "invalid "+name+" format", logger)
		return uuid.Nil, false
	}
	return id, true
}

// queryInt parses an optional integer query parameter.
func queryInt(w http.ResponseWriter, r *http.Request, name string, def int, logger zerolog.Logger) (int, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeMissingField, "invalid "+name+" parameter", logger)
		return 0, false
	}
	return v, true
}

// displayCurrency reads ?currency=, defaulting to the catalogue base currency.
func displayCurrency(w http.ResponseWriter, r *http.Request, logger zerolog.Logger) (model.Currency, bool) {
	raw := r.URL.Query().Get("currency")
	if strings.TrimSpace(raw) == "" {
		return model.BaseCurrency, true
	}
	c, err := model.ParseCurrency(raw)
	if err != nil {
		respondError(w, err, logger)
		return "", false
	}
	return c, true
}
