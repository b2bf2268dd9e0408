package controllers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"guestcheckin/internal/delivery/http/helpers"
	"guestcheckin/internal/delivery/http/middleware"
	"guestcheckin/internal/domain"
	"guestcheckin/internal/ethsig"
)

// CreateEventRequest is the request body for POST /events.
type CreateEventRequest struct {
	Name         string `json:"name"`
	EventDate    uint32 `json:"event_date"`
	MaxAttendees uint32 `json:"max_attendees"`
}

// Validate implements Validator. Whether event_date is in the future is
// decided by the registry against its clock.
func (c CreateEventRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(c.Name) == "" {
		errs = append(errs, "name is required")
	}
	if c.EventDate == 0 {
		errs = append(errs, "event_date is required (unix seconds)")
	}
	return errs
}

// RegistrySuccessResponse is the success envelope for endpoints returning a registry.
type RegistrySuccessResponse struct {
	Data  *domain.RegistryInfo `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// ListEventsResponse is the response body for GET /events.
type ListEventsResponse struct {
	Count  int              `json:"count"`
	Events []domain.Address `json:"events"`
}

// EventAtResponse is the response body for GET /events/index/{index}.
type EventAtResponse struct {
	Index   int            `json:"index"`
	Address domain.Address `json:"address"`
}

// SetStatusRequest is the request body for PATCH /events/{address}/status.
type SetStatusRequest struct {
	Active *bool `json:"active"`
}

// Validate implements Validator.
func (s SetStatusRequest) Validate() []string {
	if s.Active == nil {
		return []string{"active is required"}
	}
	return nil
}

// TransferOwnershipRequest is the request body for PUT /events/{address}/owner.
type TransferOwnershipRequest struct {
	NewOwner string `json:"new_owner"`
}

// Validate implements Validator. The zero address parses and is rejected by
// the registry as invalid_owner.
func (t TransferOwnershipRequest) Validate() []string {
	return helpers.ValidateAddress(nil, "new_owner", t.NewOwner)
}

// VerifyRequest is the request body for POST /events/{address}/verify.
type VerifyRequest struct {
	Attendee  string `json:"attendee"`
	Signature string `json:"signature"`
}

// Validate implements Validator.
func (v VerifyRequest) Validate() []string {
	errs := helpers.ValidateAddress(nil, "attendee", v.Attendee)
	return helpers.ValidateSignature(errs, "signature", v.Signature)
}

// CheckInRequest is the request body for POST /events/{address}/check-ins.
// The attendee is the authenticated caller.
type CheckInRequest struct {
	Signature string `json:"signature"`
}

// Validate implements Validator.
func (c CheckInRequest) Validate() []string {
	return helpers.ValidateSignature(nil, "signature", c.Signature)
}

// AttendanceResponse is the response body for GET /events/{address}/attendees/{attendee}.
type AttendanceResponse struct {
	Registry domain.Address `json:"registry"`
	Attendee domain.Address `json:"attendee"`
	Attended bool           `json:"attended"`
}

// ListAttendeesResponse is the response body for GET /events/{address}/attendees.
type ListAttendeesResponse struct {
	Items      []domain.CheckIn `json:"items"`
	Pagination helpers.PageMeta `json:"pagination"`
}

type EventController struct {
	Logger  *slog.Logger
	Service domain.RegistryService
}

func NewEventController(logger *slog.Logger, svc domain.RegistryService) *EventController {
	return &EventController{
		Logger:  logger,
		Service: svc,
	}
}

func (c *EventController) caller(w http.ResponseWriter, r *http.Request) (domain.Address, bool) {
	addr, ok := middleware.CallerFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
	}
	return addr, ok
}

// CreateEvent godoc
// @Summary Deploy an event registry
// @Description Creates a registry owned by the authenticated address. The registry address is derived from the factory address and creation nonce. event_date is unix seconds and must be in the future.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param event body CreateEventRequest true "Event parameters"
// @Success 201 {object} controllers.RegistrySuccessResponse "data contains the new registry"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request, past_event_date"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	caller, ok := c.caller(w, r)
	if !ok {
		return
	}
	info, err := c.Service.CreateEvent(r.Context(), caller, domain.CreateEventParams{
		Name:         req.Name,
		EventDate:    req.EventDate,
		MaxAttendees: req.MaxAttendees,
	})
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, info)
}

// ListEvents godoc
// @Summary List event registries
// @Description Returns every registry address in creation order with the total count.
// @Tags events
// @Produce json
// @Success 200 {object} helpers.APIResponse{data=controllers.ListEventsResponse}
// @Router /events [get]
func (c *EventController) ListEvents(w http.ResponseWriter, r *http.Request) {
	events := c.Service.AllEvents(r.Context())
	helpers.WriteJSONSuccess(w, http.StatusOK, ListEventsResponse{Count: len(events), Events: events})
}

// EventAt godoc
// @Summary Get the registry at a creation index
// @Tags events
// @Produce json
// @Param index path int true "Zero-based creation index"
// @Success 200 {object} helpers.APIResponse{data=controllers.EventAtResponse}
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: index_out_of_range"
// @Router /events/index/{index} [get]
func (c *EventController) EventAt(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "index must be an integer")
		return
	}
	addr, err := c.Service.EventAt(r.Context(), index)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, EventAtResponse{Index: index, Address: addr})
}

// GetEvent godoc
// @Summary Get a registry
// @Description Returns a consistent snapshot of the registry state.
// @Tags events
// @Produce json
// @Param address path string true "Registry address"
// @Success 200 {object} controllers.RegistrySuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{address} [get]
func (c *EventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	registry, ok := helpers.PathAddress(w, r, "address")
	if !ok {
		return
	}
	info, err := c.Service.GetEvent(r.Context(), registry)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, info)
}

// SetEventStatus godoc
// @Summary Enable or disable check-in
// @Description Owner only. Disabling blocks check-in; re-enabling restores it.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param address path string true "Registry address"
// @Param body body SetStatusRequest true "New status"
// @Success 200 {object} controllers.RegistrySuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: not_owner"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{address}/status [patch]
func (c *EventController) SetEventStatus(w http.ResponseWriter, r *http.Request) {
	registry, ok := helpers.PathAddress(w, r, "address")
	if !ok {
		return
	}
	var req SetStatusRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	caller, ok := c.caller(w, r)
	if !ok {
		return
	}
	info, err := c.Service.SetEventStatus(r.Context(), caller, registry, *req.Active)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, info)
}

// TransferOwnership godoc
// @Summary Transfer registry ownership
// @Description Owner only. The new owner becomes the signer of record; signatures by the previous owner stop verifying.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param address path string true "Registry address"
// @Param body body TransferOwnershipRequest true "New owner"
// @Success 200 {object} controllers.RegistrySuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request, invalid_owner"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: not_owner"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{address}/owner [put]
func (c *EventController) TransferOwnership(w http.ResponseWriter, r *http.Request) {
	registry, ok := helpers.PathAddress(w, r, "address")
	if !ok {
		return
	}
	var req TransferOwnershipRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	caller, ok := c.caller(w, r)
	if !ok {
		return
	}
	newOwner, _ := ethsig.ParseAddress(req.NewOwner)
	info, err := c.Service.TransferOwnership(r.Context(), caller, registry, newOwner)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, info)
}

// RenounceOwnership godoc
// @Summary Renounce registry ownership
// @Description Owner only. Irreversible: the registry is left with the zero owner, owner operations fail and no attendee signature verifies.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param address path string true "Registry address"
// @Success 200 {object} controllers.RegistrySuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: not_owner"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{address}/owner [delete]
func (c *EventController) RenounceOwnership(w http.ResponseWriter, r *http.Request) {
	registry, ok := helpers.PathAddress(w, r, "address")
	if !ok {
		return
	}
	caller, ok := c.caller(w, r)
	if !ok {
		return
	}
	info, err := c.Service.RenounceOwnership(r.Context(), caller, registry)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, info)
}

// Digest godoc
// @Summary Get the digests an organizer signs for an attendee
// @Description message_digest is keccak256(registry ‖ name ‖ attendee); signed_digest adds the Ethereum personal-message prefix and is what the organizer signs.
// @Tags signatures
// @Produce json
// @Param address path string true "Registry address"
// @Param attendee query string true "Attendee address"
// @Success 200 {object} helpers.APIResponse{data=domain.DigestPair}
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{address}/digest [get]
func (c *EventController) Digest(w http.ResponseWriter, r *http.Request) {
	registry, ok := helpers.PathAddress(w, r, "address")
	if !ok {
		return
	}
	attendee, ok := helpers.QueryAddress(w, r, "attendee")
	if !ok {
		return
	}
	pair, err := c.Service.Digest(r.Context(), registry, attendee)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, pair)
}

// VerifySignature godoc
// @Summary Check an attendee authorization
// @Description Recovers the signer and reports whether it is the current owner. A well-formed but unrecoverable signature yields the zero signer and valid=false.
// @Tags signatures
// @Accept json
// @Produce json
// @Param address path string true "Registry address"
// @Param body body VerifyRequest true "Attendee and hex signature (r ‖ s ‖ v)"
// @Success 200 {object} helpers.APIResponse{data=domain.VerifyResult}
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request, invalid_signature_length, invalid_signature_v"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{address}/verify [post]
func (c *EventController) VerifySignature(w http.ResponseWriter, r *http.Request) {
	registry, ok := helpers.PathAddress(w, r, "address")
	if !ok {
		return
	}
	var req VerifyRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	attendee, _ := ethsig.ParseAddress(req.Attendee)
	sig, _ := ethsig.DecodeHex(req.Signature)
	res, err := c.Service.VerifySignature(r.Context(), registry, attendee, sig)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, res)
}

// CheckIn godoc
// @Summary Check in to an event
// @Description Admits the authenticated address using the organizer's signature over its digest. Checks run in order: event_inactive, event_ended, already_checked_in, capacity_reached, then signature.
// @Tags check-in
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param address path string true "Registry address"
// @Param body body CheckInRequest true "Hex signature (r ‖ s ‖ v)"
// @Success 201 {object} helpers.APIResponse{data=domain.CheckIn}
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request, invalid_signature_length, invalid_signature_v"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized, invalid_signature"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: event_inactive, event_ended, already_checked_in, capacity_reached"
// @Router /events/{address}/check-ins [post]
func (c *EventController) CheckIn(w http.ResponseWriter, r *http.Request) {
	registry, ok := helpers.PathAddress(w, r, "address")
	if !ok {
		return
	}
	var req CheckInRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	caller, ok := c.caller(w, r)
	if !ok {
		return
	}
	sig, _ := ethsig.DecodeHex(req.Signature)
	rec, err := c.Service.CheckIn(r.Context(), caller, registry, sig)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, rec)
}

// ListAttendees godoc
// @Summary List admitted attendees
// @Description Paginated, in check-in order.
// @Tags check-in
// @Produce json
// @Param address path string true "Registry address"
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} helpers.APIResponse{data=controllers.ListAttendeesResponse}
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{address}/attendees [get]
func (c *EventController) ListAttendees(w http.ResponseWriter, r *http.Request) {
	registry, ok := helpers.PathAddress(w, r, "address")
	if !ok {
		return
	}
	page, err := helpers.ParsePage(r)
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		return
	}
	items, total, err := c.Service.ListAttendees(r.Context(), registry, page)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ListAttendeesResponse{
		Items:      items,
		Pagination: helpers.NewPageMeta(page, total),
	})
}

// HasAttended godoc
// @Summary Check whether an address has checked in
// @Tags check-in
// @Produce json
// @Param address path string true "Registry address"
// @Param attendee path string true "Attendee address"
// @Success 200 {object} helpers.APIResponse{data=controllers.AttendanceResponse}
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{address}/attendees/{attendee} [get]
func (c *EventController) HasAttended(w http.ResponseWriter, r *http.Request) {
	registry, ok := helpers.PathAddress(w, r, "address")
	if !ok {
		return
	}
	attendee, ok := helpers.PathAddress(w, r, "attendee")
	if !ok {
		return
	}
	attended, err := c.Service.HasAttended(r.Context(), registry, attendee)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, AttendanceResponse{Registry: registry, Attendee: attendee, Attended: attended})
}
