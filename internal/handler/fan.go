package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/irodion/concert-ticketing/internal/admission"
	"github.com/irodion/concert-ticketing/internal/model"
	"github.com/irodion/concert-ticketing/internal/queue"
	"github.com/irodion/concert-ticketing/internal/repository"
	queue_publisher "github.com/irodion/concert-ticketing/internal/service"
)

// FanHandler groups the fan-facing endpoints: purchasing tickets,
// listing owned tickets and managing the favourites list. JWT and role
// middleware run before every method.
type FanHandler struct {
	Admission  *admission.Controller
	Concerts   *repository.ConcertRepo
	Tickets    *repository.TicketRepo
	Favourites *repository.FavouriteRepo
}

func NewFanHandler(ctrl *admission.Controller, concerts *repository.ConcertRepo, tickets *repository.TicketRepo, favourites *repository.FavouriteRepo) *FanHandler {
	if ctrl == nil || concerts == nil || tickets == nil || favourites == nil {
		panic("nil dependency passed to NewFanHandler")
	}
	return &FanHandler{Admission: ctrl, Concerts: concerts, Tickets: tickets, Favourites: favourites}
}

type purchaseReq struct {
	Quantity int `json:"quantity"`
}

// Purchase handles POST /v1/concerts/:id/purchase. The admission
// controller performs the capacity check and ticket issuance in one
// transaction; this handler only maps its errors onto HTTP statuses
// and publishes the activity event.
func (h *FanHandler) Purchase(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	concertID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid concert id"})
	}
	var req purchaseReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	rcpt, err := h.Admission.Purchase(c.Request().Context(), admission.PurchaseInput{
		ConcertID: concertID,
		BuyerID:   userID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		switch {
		case errors.Is(err, admission.ErrInvalidQuantity):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "quantity must be at least 1"})
		case errors.Is(err, admission.ErrConcertNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "concert not found"})
		case errors.Is(err, admission.ErrConcertCancelled):
			return c.JSON(http.StatusConflict, echo.Map{"error": "concert cancelled"})
		case errors.Is(err, admission.ErrSoldOut):
			return c.JSON(http.StatusConflict, echo.Map{"error": "concert sold out"})
		case errors.Is(err, admission.ErrInsufficientCapacity):
			return c.JSON(http.StatusConflict, echo.Map{"error": "not enough tickets remaining"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "purchase failed"})
	}

	// Event publishing is best-effort; the sale is already committed.
	go h.publishPurchase(context.WithoutCancel(c.Request().Context()), rcpt)

	status := receiptStatus(rcpt)
	return c.JSON(http.StatusCreated, echo.Map{
		"ticket": echo.Map{
			"id":           rcpt.Ticket.ID,
			"serial":       rcpt.Ticket.Serial,
			"concert_id":   rcpt.Ticket.ConcertID,
			"quantity":     rcpt.Ticket.Quantity,
			"unit_price":   float64(rcpt.Ticket.UnitPriceCents) / 100.0,
			"purchased_at": rcpt.Ticket.PurchasedAt.Format(time.RFC3339),
		},
		"remaining": rcpt.Remaining,
		"status":    status,
	})
}

func receiptStatus(rcpt admission.Receipt) string {
	if rcpt.SoldOut {
		return model.ConcertSoldOut
	}
	return model.ConcertScheduled
}

func (h *FanHandler) publishPurchase(ctx context.Context, rcpt admission.Receipt) {
	ev := queue.ActivityEvent{
		Kind:       queue.KindTicketPurchased,
		TicketID:   rcpt.Ticket.ID,
		Serial:     rcpt.Ticket.Serial,
		ConcertID:  rcpt.Ticket.ConcertID,
		ActorID:    rcpt.Ticket.BuyerID,
		Quantity:   rcpt.Ticket.Quantity,
		Remaining:  rcpt.Remaining,
		Status:     receiptStatus(rcpt),
		OccurredAt: rcpt.Ticket.PurchasedAt.Format(time.RFC3339),
	}
	if concert, err := h.Concerts.GetByID(ctx, rcpt.Ticket.ConcertID); err == nil {
		ev.BandName = concert.BandName
		ev.Venue = concert.Venue
	}
	_ = queue_publisher.PublishActivity(ctx, ev)
}

// GetTicket handles GET /v1/tickets/:id. A ticket is only visible to
// its buyer; anyone else sees 404.
func (h *FanHandler) GetTicket(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ticketID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket id"})
	}
	ticket, err := h.Tickets.GetByID(c.Request().Context(), ticketID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if ticket.BuyerID != userID {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket not found"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"id":           ticket.ID,
		"serial":       ticket.Serial,
		"concert_id":   ticket.ConcertID,
		"quantity":     ticket.Quantity,
		"unit_price":   float64(ticket.UnitPriceCents) / 100.0,
		"status":       ticket.Status,
		"purchased_at": ticket.PurchasedAt.Format(time.RFC3339),
	})
}

// MyTickets handles GET /v1/tickets.
func (h *FanHandler) MyTickets(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	tickets, err := h.Tickets.ListByBuyer(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if tickets == nil {
		tickets = []repository.TicketDetail{}
	}
	return c.JSON(http.StatusOK, echo.Map{"data": tickets})
}

// AddFavourite handles POST /v1/favourites/:id. Adding an already
// selected concert is a no-op success.
func (h *FanHandler) AddFavourite(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	concertID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid concert id"})
	}
	if err := h.Favourites.Add(c.Request().Context(), userID, concertID); err != nil {
		if err == repository.ErrConcertNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "concert not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"concert_id": concertID})
}

// RemoveFavourite handles DELETE /v1/favourites/:id.
func (h *FanHandler) RemoveFavourite(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	concertID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid concert id"})
	}
	if err := h.Favourites.Remove(c.Request().Context(), userID, concertID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.NoContent(http.StatusNoContent)
}

// ListFavourites handles GET /v1/favourites.
func (h *FanHandler) ListFavourites(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Favourites.ListForUser(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if items == nil {
		items = []repository.PublicConcertRow{}
	}
	return c.JSON(http.StatusOK, echo.Map{"data": items})
}
