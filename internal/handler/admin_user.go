// This file covers user administration: the roster view and role
// management.
package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-registration/internal/model"
	"github.com/iliyamo/event-registration/internal/profile"
)

// ListUsers returns every user joined with their registrations, for the
// admin roster.
func (h *AdminHandler) ListUsers(c echo.Context) error {
	users, err := h.Roster.Users(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "storage error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": users})
}

// GetUser returns one user's profile.
func (h *AdminHandler) GetUser(c echo.Context) error {
	p, err := h.Profiles.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "storage error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"profile": p})
}

// SetUserRole promotes or demotes a user.
func (h *AdminHandler) SetUserRole(c echo.Context) error {
	var body struct {
		Role string `json:"role"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if body.Role != model.RoleAdmin && body.Role != model.RoleUser {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown role"})
	}
	if err := h.Profiles.SetRole(c.Request().Context(), c.Param("id"), body.Role); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "storage error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "role updated", "role": body.Role})
}
