package helpers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"guestcheckin/internal/domain"
)

// Error codes for API error responses. Use these with WriteJSONError.
const (
	ErrCodeBadRequest    = "bad_request"
	ErrCodeUnauthorized  = "unauthorized"
	ErrCodeNotFound      = "not_found"
	ErrCodeInternalError = "internal_error"

	ErrCodePastEventDate          = "past_event_date"
	ErrCodeNotOwner               = "not_owner"
	ErrCodeInvalidOwner           = "invalid_owner"
	ErrCodeEventInactive          = "event_inactive"
	ErrCodeEventEnded             = "event_ended"
	ErrCodeAlreadyCheckedIn       = "already_checked_in"
	ErrCodeCapacityReached        = "capacity_reached"
	ErrCodeInvalidSignature       = "invalid_signature"
	ErrCodeInvalidSignatureLength = "invalid_signature_length"
	ErrCodeInvalidSignatureV      = "invalid_signature_v"
	ErrCodeIndexOutOfRange        = "index_out_of_range"
)

// APIError is the error object in the standardized API response envelope.
// swagger:model APIError
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// APIResponse is the standardized envelope for all API responses.
// On success: Data is set, Error is nil. On error: Data is nil, Error is set.
// swagger:model APIResponse
type APIResponse struct {
	Data  any       `json:"data"`
	Error *APIError `json:"error"`
}

// WriteJSONSuccess sets Content-Type to application/json, writes statusCode, and
// encodes an APIResponse with the given data and error set to nil.
func WriteJSONSuccess(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(APIResponse{Data: data, Error: nil})
}

// WriteJSONError sets Content-Type to application/json, writes statusCode, and
// encodes an APIResponse with data nil and the given error code and message.
func WriteJSONError(w http.ResponseWriter, statusCode int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(APIResponse{
		Data:  nil,
		Error: &APIError{Code: code, Message: message},
	})
}

type errorMapping struct {
	err    error
	status int
	code   string
}

// domainErrors is checked in order with errors.Is.
var domainErrors = []errorMapping{
	{domain.ErrPastEventDate, http.StatusBadRequest, ErrCodePastEventDate},
	{domain.ErrNotOwner, http.StatusForbidden, ErrCodeNotOwner},
	{domain.ErrInvalidOwner, http.StatusBadRequest, ErrCodeInvalidOwner},
	{domain.ErrEventInactive, http.StatusConflict, ErrCodeEventInactive},
	{domain.ErrEventEnded, http.StatusConflict, ErrCodeEventEnded},
	{domain.ErrAlreadyCheckedIn, http.StatusConflict, ErrCodeAlreadyCheckedIn},
	{domain.ErrCapacityReached, http.StatusConflict, ErrCodeCapacityReached},
	{domain.ErrInvalidSignature, http.StatusUnauthorized, ErrCodeInvalidSignature},
	{domain.ErrInvalidSignatureLength, http.StatusBadRequest, ErrCodeInvalidSignatureLength},
	{domain.ErrInvalidSignatureV, http.StatusBadRequest, ErrCodeInvalidSignatureV},
	{domain.ErrIndexOutOfRange, http.StatusNotFound, ErrCodeIndexOutOfRange},
	{domain.ErrNotFound, http.StatusNotFound, ErrCodeNotFound},
	{domain.ErrInvalidInput, http.StatusBadRequest, ErrCodeBadRequest},
	{domain.ErrUnauthorized, http.StatusUnauthorized, ErrCodeUnauthorized},
}

// StatusForError returns the HTTP status and error code for err.
// Unrecognized errors map to 500 internal_error.
func StatusForError(err error) (int, string) {
	for _, m := range domainErrors {
		if errors.Is(err, m.err) {
			return m.status, m.code
		}
	}
	return http.StatusInternalServerError, ErrCodeInternalError
}

// WriteServiceError writes err using StatusForError. Internal errors are
// logged and their message is not exposed.
func WriteServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	status, code := StatusForError(err)
	if status == http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		WriteJSONError(w, status, code, "internal error")
		return
	}
	WriteJSONError(w, status, code, err.Error())
}
