// Package handler exposes the HTTP surface of the service.  This file
// covers the public browsing API: anyone may list events and inspect a
// single event, including inactive and full ones, so clients can render
// the full catalog with the right badges.
package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-registration/internal/catalog"
	"github.com/iliyamo/event-registration/internal/ledger"
	"github.com/iliyamo/event-registration/internal/model"
)

// PublicHandler aggregates the services needed for unauthenticated
// browsing.
type PublicHandler struct {
	Catalog *catalog.Catalog
	Ledger  *ledger.Ledger
}

// PublicEvent is an event joined with its live registration count.
type PublicEvent struct {
	model.Event
	ParticipantCount int  `json:"participantCount"`
	Full             bool `json:"full"`
}

// ListEvents returns every event in the catalog with participant counts.
// Inactive events are included so clients can show them as closed.
func (h *PublicHandler) ListEvents(c echo.Context) error {
	ctx := c.Request().Context()
	events, err := h.Catalog.All(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "storage error"})
	}
	counts, err := h.Ledger.ParticipantCounts(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "storage error"})
	}
	out := make([]PublicEvent, 0, len(events))
	for _, ev := range events {
		n := counts[ev.ID]
		out = append(out, PublicEvent{Event: ev, ParticipantCount: n, Full: ev.Full(n)})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// GetEvent returns a single event with its participant count.
func (h *PublicHandler) GetEvent(c echo.Context) error {
	ctx := c.Request().Context()
	ev, err := h.Catalog.Get(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "storage error"})
	}
	n, err := h.Ledger.CountForEvent(ctx, ev.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "storage error"})
	}
	return c.JSON(http.StatusOK, PublicEvent{Event: ev, ParticipantCount: n, Full: ev.Full(n)})
}
