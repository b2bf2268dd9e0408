package controllers

import (
	"log/slog"
	"net/http"

	h "guestcheckin/internal/delivery/http/helpers"
	"guestcheckin/internal/domain"
	"guestcheckin/internal/ethsig"
)

// ChallengeRequest is the request body for POST /auth/challenge
type ChallengeRequest struct {
	Address string `json:"address"`
}

// Validate implements Validator.
func (c ChallengeRequest) Validate() []string {
	return h.ValidateAddress(nil, "address", c.Address)
}

// LoginRequest is the request body for POST /auth/login
type LoginRequest struct {
	Address   string `json:"address"`
	Signature string `json:"signature"`
}

// Validate implements Validator.
func (l LoginRequest) Validate() []string {
	errs := h.ValidateAddress(nil, "address", l.Address)
	return h.ValidateSignature(errs, "signature", l.Signature)
}

// LoginResponse is the response body for POST /auth/login
type LoginResponse struct {
	Token     string         `json:"token"`
	TokenType string         `json:"token_type"`
	Address   domain.Address `json:"address"`
}

type AuthController struct {
	Logger  *slog.Logger
	Service domain.AuthService
}

func NewAuthController(logger *slog.Logger, svc domain.AuthService) *AuthController {
	return &AuthController{
		Logger:  logger,
		Service: svc,
	}
}

// Challenge godoc
// @Summary Request a sign-in challenge
// @Description Returns a one-time message for the address to sign with personal_sign. The challenge expires after the configured TTL and can be used once.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body ChallengeRequest true "Address to authenticate"
// @Success 201 {object} helpers.APIResponse{data=domain.Challenge}
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /auth/challenge [post]
func (c *AuthController) Challenge(w http.ResponseWriter, r *http.Request) {
	var req ChallengeRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	addr, _ := ethsig.ParseAddress(req.Address)
	challenge, err := c.Service.RequestChallenge(r.Context(), addr)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusCreated, challenge)
}

// Login godoc
// @Summary Log in with a signed challenge
// @Description Exchanges the signature over the outstanding challenge message for a Bearer JWT whose subject is the address.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body LoginRequest true "Address and hex signature"
// @Success 200 {object} helpers.APIResponse{data=controllers.LoginResponse}
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request, invalid_signature_length, invalid_signature_v"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /auth/login [post]
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	addr, _ := ethsig.ParseAddress(req.Address)
	sig, _ := ethsig.DecodeHex(req.Signature)
	token, err := c.Service.Login(r.Context(), addr, sig)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, LoginResponse{Token: token, TokenType: "Bearer", Address: addr})
}
