package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/irodion/concert-ticketing/internal/admission"
	"github.com/irodion/concert-ticketing/internal/model"
	"github.com/irodion/concert-ticketing/internal/queue"
	"github.com/irodion/concert-ticketing/internal/repository"
	queue_publisher "github.com/irodion/concert-ticketing/internal/service"
)

// AdminHandler covers moderation: role changes, forced concert status
// overrides and ticket voiding. Status and ticket mutations go through
// the admission controller so they hold the same row lock as sales.
type AdminHandler struct {
	Users     *repository.UserRepo
	Admission *admission.Controller
}

func NewAdminHandler(users *repository.UserRepo, ctrl *admission.Controller) *AdminHandler {
	if users == nil || ctrl == nil {
		panic("nil dependency passed to NewAdminHandler")
	}
	return &AdminHandler{Users: users, Admission: ctrl}
}

type roleReq struct {
	Role string `json:"role"`
}

// UpdateUserRole handles PUT /v1/admin/users/:id/role.
func (h *AdminHandler) UpdateUserRole(c echo.Context) error {
	userID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	var req roleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	role := strings.ToUpper(strings.TrimSpace(req.Role))
	switch role {
	case model.RoleFan, model.RoleBand, model.RoleAdmin:
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "role must be FAN, BAND or ADMIN"})
	}

	if err := h.Users.UpdateRole(c.Request().Context(), userID, role); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update role failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"user_id": userID, "role": role})
}

type statusReq struct {
	Status string `json:"status"`
}

// ForceStatus handles POST /v1/admin/concerts/:id/status. Only SCHEDULED
// and CANCELLED may be requested; SOLD_OUT is derived from the ticket
// count and cannot be set by hand.
func (h *AdminHandler) ForceStatus(c echo.Context) error {
	adminID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	concertID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid concert id"})
	}
	var req statusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	status := strings.ToUpper(strings.TrimSpace(req.Status))

	concert, err := h.Admission.SetStatus(c.Request().Context(), concertID, status)
	if err != nil {
		switch {
		case errors.Is(err, admission.ErrInvalidStatus):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "status must be SCHEDULED or CANCELLED"})
		case errors.Is(err, admission.ErrConcertNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "concert not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "status change failed"})
	}

	go func(ctx context.Context) {
		_ = queue_publisher.PublishActivity(ctx, queue.ActivityEvent{
			Kind:       queue.KindConcertStatusChanged,
			ConcertID:  concert.ID,
			BandName:   concert.BandName,
			Venue:      concert.Venue,
			ActorID:    adminID,
			Remaining:  concert.Remaining(),
			Status:     concert.Status,
			OccurredAt: time.Now().UTC().Format(time.RFC3339),
		})
	}(context.WithoutCancel(c.Request().Context()))

	return c.JSON(http.StatusOK, concertResp(concert))
}

// VoidTicket handles POST /v1/admin/tickets/:id/void. The ticket row is
// kept for auditing; its quantity returns to the concert's pool.
func (h *AdminHandler) VoidTicket(c echo.Context) error {
	adminID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ticketID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket id"})
	}

	ticket, err := h.Admission.VoidTicket(c.Request().Context(), ticketID)
	if err != nil {
		switch {
		case errors.Is(err, admission.ErrTicketNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket not found"})
		case errors.Is(err, admission.ErrTicketVoid):
			return c.JSON(http.StatusConflict, echo.Map{"error": "ticket already void"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "void failed"})
	}

	go func(ctx context.Context) {
		_ = queue_publisher.PublishActivity(ctx, queue.ActivityEvent{
			Kind:       queue.KindTicketVoided,
			TicketID:   ticket.ID,
			Serial:     ticket.Serial,
			ConcertID:  ticket.ConcertID,
			ActorID:    adminID,
			Quantity:   ticket.Quantity,
			Status:     model.TicketVoid,
			OccurredAt: time.Now().UTC().Format(time.RFC3339),
		})
	}(context.WithoutCancel(c.Request().Context()))

	return c.JSON(http.StatusOK, echo.Map{
		"ticket_id":  ticket.ID,
		"serial":     ticket.Serial,
		"concert_id": ticket.ConcertID,
		"quantity":   ticket.Quantity,
		"status":     ticket.Status,
	})
}
