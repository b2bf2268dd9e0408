package helpers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"guestcheckin/internal/ethsig"
)

// MaxBodyBytes caps request bodies read by DecodeAndValidate.
const MaxBodyBytes = 1 << 16

// Validator is implemented by request DTOs that support validation.
// Validate returns a slice of error messages; nil or empty means valid.
type Validator interface {
	Validate() []string
}

// DecodeAndValidate decodes a single JSON object from the request body into
// dest (unknown fields rejected) and, if dest implements Validator, runs
// Validate. On failure it writes a 400 JSON error and returns false.
func DecodeAndValidate(w http.ResponseWriter, r *http.Request, dest any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return false
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, "request body must contain a single JSON object")
		return false
	}
	if v, ok := dest.(Validator); ok {
		if errs := v.Validate(); len(errs) > 0 {
			WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, strings.Join(errs, "; "))
			return false
		}
	}
	return true
}

// PathAddress parses the named path value as an address. On failure it
// writes a 400 and returns false.
func PathAddress(w http.ResponseWriter, r *http.Request, name string) (ethsig.Address, bool) {
	raw := r.PathValue(name)
	if raw == "" {
		WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, "missing "+name)
		return ethsig.Address{}, false
	}
	addr, err := ethsig.ParseAddress(raw)
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, "invalid "+name+": "+err.Error())
		return ethsig.Address{}, false
	}
	return addr, true
}

// QueryAddress parses the named query value as an address. On failure it
// writes a 400 and returns false.
func QueryAddress(w http.ResponseWriter, r *http.Request, name string) (ethsig.Address, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, name+" is required")
		return ethsig.Address{}, false
	}
	addr, err := ethsig.ParseAddress(raw)
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, "invalid "+name+": "+err.Error())
		return ethsig.Address{}, false
	}
	return addr, true
}

// ValidateAddress appends a message to errs when s is not a 20-byte hex address.
func ValidateAddress(errs []string, field, s string) []string {
	if strings.TrimSpace(s) == "" {
		return append(errs, field+" is required")
	}
	if _, err := ethsig.ParseAddress(s); err != nil {
		return append(errs, field+" must be a 0x-prefixed 20-byte hex address")
	}
	return errs
}

// ValidateSignature appends a message to errs when s is not hex.
// Length and v are checked by the domain so their specific errors surface.
func ValidateSignature(errs []string, field, s string) []string {
	if strings.TrimSpace(s) == "" {
		return append(errs, field+" is required")
	}
	if _, err := ethsig.DecodeHex(s); err != nil {
		return append(errs, field+" must be hex encoded")
	}
	return errs
}
