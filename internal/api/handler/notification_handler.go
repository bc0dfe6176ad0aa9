package handler

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/tenantcore/platform/internal/core/domain"
	"github.com/tenantcore/platform/internal/core/ports"
	"github.com/tenantcore/platform/internal/core/tenancy"
)

// Enqueuer hands a notification to the asynchronous dispatcher.
type Enqueuer interface {
	Enqueue(n ports.NotificationInput) error
}

// NotificationHandler handles the notification inbox.
type NotificationHandler struct {
	service ports.NotificationService
	queue   Enqueuer
}

func NewNotificationHandler(service ports.NotificationService, queue Enqueuer) *NotificationHandler {
	return &NotificationHandler{service: service, queue: queue}
}

// Create accepts a notification for asynchronous storage. The id is assigned
// here so the caller can reference it before it is persisted.
//
// @Summary      Publish a notification
// @Tags         notifications
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createNotificationRequest  true  "Notification"
// @Success      202   {object}  acceptedResponse
// @Failure      403   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /notifications [post]
func (h *NotificationHandler) Create(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req createNotificationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	tenantID := req.TenantID
	if !user.IsSuperAdmin() {
		if tenantID, err = tenancy.Scope(c.Request().Context()); err != nil {
			return err
		}
	}

	id := uuid.NewString()
	err = h.queue.Enqueue(ports.NotificationInput{
		ID:          id,
		Title:       req.Title,
		Description: req.Description,
		Type:        domain.NotificationType(req.Type),
		TenantID:    tenantID,
		UserID:      req.UserID,
		Metadata:    req.Metadata,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "notification queue unavailable").SetInternal(err)
	}
	return c.JSON(http.StatusAccepted, acceptedResponse{Message: "notification accepted", ID: id})
}

// List returns the caller's notifications, newest first.
//
// @Summary      List notifications
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        unread  query     bool  false  "Only unread"
// @Param        limit   query     int   false  "Page size (max 200)"
// @Success      200     {object}  listNotificationsResponse
// @Failure      400     {object}  errorResponse
// @Router       /notifications [get]
func (h *NotificationHandler) List(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var unread bool
	if v := c.QueryParam("unread"); v != "" {
		if unread, err = strconv.ParseBool(v); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "unread must be a boolean")
		}
	}
	var limit int
	if v := c.QueryParam("limit"); v != "" {
		if limit, err = strconv.Atoi(v); err != nil || limit < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a non-negative integer")
		}
	}

	ns, err := h.service.List(c.Request().Context(), user, unread, limit)
	if err != nil {
		return err
	}
	if ns == nil {
		ns = []*domain.Notification{}
	}
	return c.JSON(http.StatusOK, listNotificationsResponse{Data: ns})
}

// UnreadCount handles GET /notifications/unread-count.
//
// @Summary      Unread notification count
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  unreadCountResponse
// @Router       /notifications/unread-count [get]
func (h *NotificationHandler) UnreadCount(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	n, err := h.service.UnreadCount(c.Request().Context(), user)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, unreadCountResponse{Unread: n})
}

// MarkRead handles PATCH /notifications/:id/read.
//
// @Summary      Mark a notification as read
// @Tags         notifications
// @Security     BearerAuth
// @Param        id   path  string  true  "Notification id"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Router       /notifications/{id}/read [patch]
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	if err := h.service.MarkRead(c.Request().Context(), user, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// MarkAllRead handles PATCH /notifications/read-all.
//
// @Summary      Mark every notification as read
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  markAllReadResponse
// @Router       /notifications/read-all [patch]
func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	n, err := h.service.MarkAllRead(c.Request().Context(), user)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, markAllReadResponse{Updated: n})
}
