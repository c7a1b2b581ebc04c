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

// BandHandler lets band users manage their own concerts. Capacity and
// status changes are routed through the admission controller so they
// serialize with in-flight purchases.
type BandHandler struct {
	Concerts  *repository.ConcertRepo
	Admission *admission.Controller
}

func NewBandHandler(concerts *repository.ConcertRepo, ctrl *admission.Controller) *BandHandler {
	if concerts == nil || ctrl == nil {
		panic("nil dependency passed to NewBandHandler")
	}
	return &BandHandler{Concerts: concerts, Admission: ctrl}
}

type concertReq struct {
	BandName   string `json:"band_name"`
	Venue      string `json:"venue"`
	StartsAt   string `json:"starts_at"` // RFC3339
	PriceCents uint32 `json:"price_cents"`
	Capacity   int    `json:"capacity"`
}

// Dashboard handles GET /v1/band/concerts: the caller's own concerts,
// soonest first.
func (h *BandHandler) Dashboard(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	concerts, err := h.Concerts.ListByBand(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]echo.Map, 0, len(concerts))
	for _, co := range concerts {
		out = append(out, concertResp(co))
	}
	return c.JSON(http.StatusOK, echo.Map{"data": out})
}

// Create handles POST /v1/band/concerts. Capacity is fixed here; later
// changes go through Update and the admission guard.
func (h *BandHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req concertReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.BandName = strings.TrimSpace(req.BandName)
	req.Venue = strings.TrimSpace(req.Venue)
	if req.BandName == "" || req.Venue == "" || req.StartsAt == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "band_name, venue and starts_at are required"})
	}
	startsAt, err := time.Parse(time.RFC3339, req.StartsAt)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "starts_at must be RFC3339"})
	}
	if req.Capacity <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "capacity must be at least 1"})
	}

	concert := model.Concert{
		BandID:     userID,
		BandName:   req.BandName,
		Venue:      req.Venue,
		StartsAt:   startsAt.UTC(),
		PriceCents: req.PriceCents,
		Capacity:   uint32(req.Capacity),
		Status:     model.ConcertScheduled,
	}
	if err := h.Concerts.Create(c.Request().Context(), &concert); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create concert failed"})
	}
	return c.JSON(http.StatusCreated, concertResp(concert))
}

// Update handles PUT /v1/band/concerts/:id. Descriptive fields update
// directly; a capacity change is revalidated against tickets already
// sold inside the admission transaction.
func (h *BandHandler) Update(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	concertID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid concert id"})
	}
	var req concertReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.BandName = strings.TrimSpace(req.BandName)
	req.Venue = strings.TrimSpace(req.Venue)
	if req.BandName == "" || req.Venue == "" || req.StartsAt == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "band_name, venue and starts_at are required"})
	}
	startsAt, err := time.Parse(time.RFC3339, req.StartsAt)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "starts_at must be RFC3339"})
	}

	ctx := c.Request().Context()
	if err := h.Concerts.UpdateDetails(ctx, concertID, userID, req.BandName, req.Venue, startsAt.UTC(), req.PriceCents); err != nil {
		switch {
		case errors.Is(err, repository.ErrConcertNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "concert not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "you can only edit your own concerts"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update concert failed"})
	}

	concert, err := h.Concerts.GetByID(ctx, concertID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	if req.Capacity > 0 && uint32(req.Capacity) != concert.Capacity {
		concert, err = h.Admission.Resize(ctx, concertID, req.Capacity)
		if err != nil {
			switch {
			case errors.Is(err, admission.ErrCapacityBelowSold):
				return c.JSON(http.StatusConflict, echo.Map{"error": "capacity below tickets already sold"})
			case errors.Is(err, admission.ErrInvalidCapacity):
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "capacity must be at least 1"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "resize failed"})
		}
	}

	return c.JSON(http.StatusOK, concertResp(concert))
}

// Cancel handles POST /v1/band/concerts/:id/cancel. Runs through the
// same atomic guard as purchases, so a cancel cannot race a sale.
func (h *BandHandler) Cancel(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	concertID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid concert id"})
	}

	ctx := c.Request().Context()
	concert, err := h.Concerts.GetByID(ctx, concertID)
	if err != nil {
		if errors.Is(err, repository.ErrConcertNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "concert not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if concert.BandID != userID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "you can only cancel your own concerts"})
	}

	updated, err := h.Admission.SetStatus(ctx, concertID, model.ConcertCancelled)
	if err != nil {
		if errors.Is(err, admission.ErrConcertNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "concert not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cancel failed"})
	}

	go func(ctx context.Context) {
		_ = queue_publisher.PublishActivity(ctx, queue.ActivityEvent{
			Kind:       queue.KindConcertStatusChanged,
			ConcertID:  updated.ID,
			BandName:   updated.BandName,
			ActorID:    userID,
			Remaining:  updated.Remaining(),
			Status:     updated.Status,
			OccurredAt: time.Now().UTC().Format(time.RFC3339),
		})
	}(context.WithoutCancel(ctx))

	return c.JSON(http.StatusOK, concertResp(updated))
}
