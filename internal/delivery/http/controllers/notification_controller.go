package controllers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"guestcheckin/internal/delivery/http/helpers"
	"guestcheckin/internal/domain"
	"guestcheckin/internal/ethsig"
)

// Notification feed limits.
const (
	DefaultNotificationLimit = 100
	MaxNotificationLimit     = 1000
)

// ListNotificationsResponse is the response body for GET /notifications.
// NextAfter is the cursor for the following page.
type ListNotificationsResponse struct {
	Items     []*domain.Notification `json:"items"`
	NextAfter int64                  `json:"next_after"`
}

type NotificationController struct {
	Logger  *slog.Logger
	Service domain.RegistryService
}

func NewNotificationController(logger *slog.Logger, svc domain.RegistryService) *NotificationController {
	return &NotificationController{
		Logger:  logger,
		Service: svc,
	}
}

// parseNotificationFilter reads after, limit and source (repeatable or
// comma-separated) from the query string.
func parseNotificationFilter(r *http.Request) (domain.NotificationFilter, string) {
	q := r.URL.Query()
	filter := domain.NotificationFilter{Limit: DefaultNotificationLimit}
	if s := q.Get("after"); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil || v < 0 {
			return filter, "after must be a non-negative integer"
		}
		filter.AfterID = v
	}
	if s := q.Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return filter, "limit must be a positive integer"
		}
		filter.Limit = min(v, MaxNotificationLimit)
	}
	for _, raw := range q["source"] {
		for _, part := range strings.Split(raw, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			addr, err := ethsig.ParseAddress(part)
			if err != nil {
				return filter, "invalid source: " + err.Error()
			}
			filter.Sources = append(filter.Sources, addr)
		}
	}
	return filter, ""
}

// ListNotifications godoc
// @Summary Read the notification feed
// @Description Returns journaled notifications in emission order with id greater than after. Filter by one or more source addresses (registry or factory).
// @Tags notifications
// @Produce json
// @Param after query int false "Return notifications with id greater than this"
// @Param limit query int false "Maximum items (default 100, max 1000)"
// @Param source query string false "Source address; repeat or comma-separate for several"
// @Success 200 {object} helpers.APIResponse{data=controllers.ListNotificationsResponse}
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /notifications [get]
func (c *NotificationController) ListNotifications(w http.ResponseWriter, r *http.Request) {
	filter, problem := parseNotificationFilter(r)
	if problem != "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, problem)
		return
	}
	items, err := c.Service.ListNotifications(r.Context(), filter)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	if items == nil {
		items = []*domain.Notification{}
	}
	next := filter.AfterID
	if len(items) > 0 {
		next = items[len(items)-1].ID
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ListNotificationsResponse{Items: items, NextAfter: next})
}
