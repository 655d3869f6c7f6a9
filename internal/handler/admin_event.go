// This file covers catalog administration: creating and editing events,
// toggling activation, and the registration and statistics views.
package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-registration/internal/catalog"
	"github.com/iliyamo/event-registration/internal/model"
)

// CreateEvent adds a new event to the catalog.  The event starts active;
// the store assigns its ID.
func (h *AdminHandler) CreateEvent(c echo.Context) error {
	var draft model.Event
	if err := c.Bind(&draft); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if draft.Title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title is required"})
	}
	ev, err := h.Catalog.Create(c.Request().Context(), draft)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "storage error"})
	}
	h.invalidateCache(c)
	return c.JSON(http.StatusCreated, ev)
}

// UpdateEvent merges the submitted fields into an existing event.
// Identity and creation fields are stripped before the merge.
func (h *AdminHandler) UpdateEvent(c echo.Context) error {
	var fields map[string]any
	if err := c.Bind(&fields); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	err := h.Catalog.Update(c.Request().Context(), c.Param("id"), fields)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "storage error"})
	}
	h.invalidateCache(c)
	return c.JSON(http.StatusOK, echo.Map{"message": "event updated"})
}

// SetEventActive opens or closes an event for registration.  Reactivating
// a full event is allowed; the ledger still refuses registrations past
// capacity.
func (h *AdminHandler) SetEventActive(c echo.Context) error {
	var body struct {
		Active bool `json:"active"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	err := h.Catalog.SetActive(c.Request().Context(), c.Param("id"), body.Active)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "storage error"})
	}
	h.invalidateCache(c)
	return c.JSON(http.StatusOK, echo.Map{"message": "event updated", "active": body.Active})
}

// DashboardStats returns the aggregate counters for the admin dashboard.
func (h *AdminHandler) DashboardStats(c echo.Context) error {
	stats, err := h.Ledger.EventStats(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "storage error"})
	}
	return c.JSON(http.StatusOK, stats)
}

// EventRegistrations lists every registration for an event joined with
// the registrants' profiles.
func (h *AdminHandler) EventRegistrations(c echo.Context) error {
	ctx := c.Request().Context()
	eventID := c.Param("id")
	if _, err := h.Catalog.Get(ctx, eventID); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "storage error"})
	}
	participants, err := h.Ledger.EventRegistrations(ctx, eventID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "storage error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": participants})
}
