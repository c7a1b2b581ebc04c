package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/irodion/concert-ticketing/internal/model"
	"github.com/irodion/concert-ticketing/internal/repository"
)

// PublicHandler exposes unauthenticated browse endpoints returning
// sanitized concert data for guests.
type PublicHandler struct {
	Concerts *repository.ConcertRepo
}

func NewPublicHandler(concerts *repository.ConcertRepo) *PublicHandler {
	if concerts == nil {
		panic("nil repository passed to NewPublicHandler")
	}
	return &PublicHandler{Concerts: concerts}
}

// SearchConcerts handles GET /v1/concerts. Filters: band (substring),
// date (YYYY-MM-DD, exact day), status; plus page/page_size pagination.
// An unknown status value is ignored rather than rejected; a malformed
// date is a 400.
func (h *PublicHandler) SearchConcerts(c echo.Context) error {
	band := strings.TrimSpace(c.QueryParam("band"))
	date := strings.TrimSpace(c.QueryParam("date"))
	status := strings.ToUpper(strings.TrimSpace(c.QueryParam("status")))

	if date != "" {
		if _, err := time.Parse("2006-01-02", date); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date format, use YYYY-MM-DD"})
		}
	}
	if !model.ValidConcertStatus(status) {
		status = ""
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	ps, _ := strconv.Atoi(c.QueryParam("page_size"))
	if ps < 1 {
		ps = 20
	}
	if ps > 100 {
		ps = 100
	}

	q := repository.ConcertSearchQuery{
		Band:     band,
		Date:     date,
		Status:   status,
		Page:     page,
		PageSize: ps,
	}

	items, total, err := h.Concerts.Search(c.Request().Context(), q)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error":   "database_error",
			"message": err.Error(),
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"data":      items,
		"total":     total,
		"page":      page,
		"page_size": ps,
	})
}

// GetConcert handles GET /v1/concerts/:id with remaining capacity.
func (h *PublicHandler) GetConcert(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid concert id"})
	}
	concert, err := h.Concerts.GetByID(c.Request().Context(), id)
	if err != nil {
		if err == repository.ErrConcertNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "concert not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, concertResp(concert))
}

// concertResp shapes a concert for JSON responses.
func concertResp(co model.Concert) echo.Map {
	return echo.Map{
		"id":          co.ID,
		"band_name":   co.BandName,
		"venue":       co.Venue,
		"starts_at":   co.StartsAt.UTC().Format(time.RFC3339),
		"price_cents": co.PriceCents,
		"price":       float64(co.PriceCents) / 100.0,
		"capacity":    co.Capacity,
		"sold":        co.TicketsSold,
		"remaining":   co.Remaining(),
		"status":      co.Status,
	}
}
