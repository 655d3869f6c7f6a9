// This file covers the authenticated customer API: cart management,
// checkout and the user's own registrations and profile.
package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-registration/internal/catalog"
	"github.com/iliyamo/event-registration/internal/cart"
	"github.com/iliyamo/event-registration/internal/ledger"
	"github.com/iliyamo/event-registration/internal/middleware"
	"github.com/iliyamo/event-registration/internal/model"
	"github.com/iliyamo/event-registration/internal/profile"
)

// CustomerHandler aggregates the services behind the customer routes.
type CustomerHandler struct {
	Catalog  *catalog.Catalog
	Ledger   *ledger.Ledger
	Profiles *profile.Service
	Carts    *cart.Book
	Checkout *cart.Orchestrator
}

// GetCart returns the caller's cart contents and totals.
func (h *CustomerHandler) GetCart(c echo.Context) error {
	ct := h.Carts.For(middleware.UserID(c))
	return c.JSON(http.StatusOK, echo.Map{
		"items":       ct.Items(),
		"total_items": ct.TotalItems(),
		"total_price": ct.TotalPrice(),
	})
}

// ToggleCart adds the event to the cart or removes it if already there.
// The outcome tells the client why a toggle was refused (already
// registered, inactive, full) without treating refusal as an error.
func (h *CustomerHandler) ToggleCart(c echo.Context) error {
	ctx := c.Request().Context()
	userID := middleware.UserID(c)

	ev, err := h.Catalog.Get(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "storage error"})
	}
	regs, err := h.Ledger.UserRegistrations(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "storage error"})
	}
	counts, err := h.Ledger.ParticipantCounts(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "storage error"})
	}

	ct := h.Carts.For(userID)
	outcome := ct.Toggle(ev, regs, counts, userID != "guest")
	return c.JSON(http.StatusOK, echo.Map{
		"outcome":     outcome,
		"total_items": ct.TotalItems(),
	})
}

// RemoveFromCart drops a single event from the cart.  Removing an event
// that is not in the cart is a no-op.
func (h *CustomerHandler) RemoveFromCart(c echo.Context) error {
	ct := h.Carts.For(middleware.UserID(c))
	removed := ct.Remove(c.Param("id"))
	return c.JSON(http.StatusOK, echo.Map{
		"removed":     removed,
		"total_items": ct.TotalItems(),
	})
}

// CheckoutCart registers every cart item sequentially and reports the
// outcome.  Items that failed stay in the cart for retry; the response
// message itemizes them on partial success.
func (h *CustomerHandler) CheckoutCart(c echo.Context) error {
	ctx := c.Request().Context()
	userID := middleware.UserID(c)
	ct := h.Carts.For(userID)

	res, err := h.Checkout.Checkout(ctx, userID, ct)
	if err != nil {
		if errors.Is(err, cart.ErrNotAuthenticated) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "login required"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "checkout failed"})
	}

	status := http.StatusOK
	msg := fmt.Sprintf("Registration successful for %d event(s)!", len(res.Succeeded))
	switch {
	case res.AllFailed():
		status = http.StatusConflict
		msg = "Checkout failed. The selected events are no longer available."
	case res.Partial():
		status = http.StatusConflict
		titles := make([]string, 0, len(res.Failed))
		for _, f := range res.Failed {
			titles = append(titles, f.Item.Event.Title)
		}
		msg = fmt.Sprintf("Registered %d event(s). Could not register: %s.",
			len(res.Succeeded), strings.Join(titles, ", "))
	}

	failed := make([]echo.Map, 0, len(res.Failed))
	for _, f := range res.Failed {
		failed = append(failed, echo.Map{
			"event_id": f.Item.Event.ID,
			"title":    f.Item.Event.Title,
			"reason":   failReason(f.Err),
		})
	}
	return c.JSON(status, echo.Map{
		"message":     msg,
		"succeeded":   res.Succeeded,
		"failed":      failed,
		"total_items": ct.TotalItems(),
	})
}

// failReason maps a ledger refusal onto a stable client-facing code.
func failReason(err error) string {
	switch {
	case errors.Is(err, ledger.ErrCapacityExceeded):
		return "event_full"
	case errors.Is(err, ledger.ErrEventInactive):
		return "event_inactive"
	case errors.Is(err, ledger.ErrEventNotFound):
		return "event_not_found"
	default:
		return "storage_error"
	}
}

// MyRegistrations returns the caller's registrations keyed by event ID.
func (h *CustomerHandler) MyRegistrations(c echo.Context) error {
	regs, err := h.Ledger.UserRegistrations(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "storage error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"registrations": regs})
}

// GetProfile returns the caller's profile.  A missing profile yields an
// empty one so first-time users can still render the form.
func (h *CustomerHandler) GetProfile(c echo.Context) error {
	p, err := h.Profiles.Get(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			return c.JSON(http.StatusOK, echo.Map{"profile": model.Profile{}, "complete": false})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "storage error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"profile": p, "complete": p.Complete()})
}

// UpdateProfile merges the submitted fields into the caller's profile.
// Ban fields are rejected; only the ban registry may write them.
func (h *CustomerHandler) UpdateProfile(c echo.Context) error {
	var fields map[string]any
	if err := c.Bind(&fields); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := h.Profiles.Update(c.Request().Context(), middleware.UserID(c), fields); err != nil {
		if errors.Is(err, profile.ErrReservedField) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "field not editable"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "storage error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "profile updated"})
}
