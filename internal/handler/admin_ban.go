// This file covers ban administration: global bans, per-event bans,
// their bulk forms and the selection policy that drives the bulk UI.
package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-registration/internal/banlist"
)

// SetGlobalBan bans or unbans a user across the whole service.  Existing
// registrations are untouched; enforcement happens at the request gate.
func (h *AdminHandler) SetGlobalBan(c echo.Context) error {
	var body struct {
		UserID string `json:"userId"`
		Banned bool   `json:"banned"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if body.UserID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "userId is required"})
	}
	if err := h.Bans.BanGlobal(c.Request().Context(), body.UserID, body.Banned); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "storage error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "ban updated", "banned": body.Banned})
}

// SetEventBan bans or unbans a user for one event.  An unban removes the
// ban record entirely.
func (h *AdminHandler) SetEventBan(c echo.Context) error {
	var body struct {
		UserID  string `json:"userId"`
		EventID string `json:"eventId"`
		Banned  bool   `json:"banned"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if body.UserID == "" || body.EventID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "userId and eventId are required"})
	}
	if err := h.Bans.BanFromEvent(c.Request().Context(), body.UserID, body.EventID, body.Banned); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "storage error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "ban updated", "banned": body.Banned})
}

// SetGlobalBanBulk applies one global ban action to a selection of
// users, reporting per-user failures without aborting the batch.  The
// selection must be homogeneous: banning a set that already contains a
// banned user (or unbanning one with an unbanned user) is refused.
func (h *AdminHandler) SetGlobalBanBulk(c echo.Context) error {
	var body struct {
		UserIDs []string `json:"userIds"`
		Banned  bool     `json:"banned"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if len(body.UserIDs) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "userIds is required"})
	}
	ctx := c.Request().Context()
	actions, err := h.Bans.GlobalSelectionActions(ctx, body.UserIDs)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "storage error"})
	}
	if !selectionAllows(actions, body.Banned) {
		return c.JSON(http.StatusConflict, echo.Map{"error": "selection is not homogeneous", "actions": actions})
	}
	res := h.Bans.BanMany(ctx, body.UserIDs, body.Banned)
	return c.JSON(batchStatus(res), echo.Map{"succeeded": res.Succeeded, "failed": res.Failed})
}

// SetEventBanBulk applies one event ban action to a selection of users,
// under the same homogeneous-selection rule as the global form.
func (h *AdminHandler) SetEventBanBulk(c echo.Context) error {
	var body struct {
		UserIDs []string `json:"userIds"`
		EventID string   `json:"eventId"`
		Banned  bool     `json:"banned"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if len(body.UserIDs) == 0 || body.EventID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "userIds and eventId are required"})
	}
	ctx := c.Request().Context()
	actions, err := h.Bans.EventSelectionActions(ctx, body.UserIDs, body.EventID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "storage error"})
	}
	if !selectionAllows(actions, body.Banned) {
		return c.JSON(http.StatusConflict, echo.Map{"error": "selection is not homogeneous", "actions": actions})
	}
	res := h.Bans.BanManyFromEvent(ctx, body.UserIDs, body.EventID, body.Banned)
	return c.JSON(batchStatus(res), echo.Map{"succeeded": res.Succeeded, "failed": res.Failed})
}

func selectionAllows(actions banlist.SelectionActions, banned bool) bool {
	if banned {
		return actions.CanBan
	}
	return actions.CanUnban
}

func batchStatus(res banlist.BatchResult) int {
	if res.OK() {
		return http.StatusOK
	}
	return http.StatusMultiStatus
}

// SelectionActions reports which bulk ban action applies to a selection:
// ban when everyone is unbanned, unban when everyone is banned, neither
// for a mixed selection.  An eventId scopes the check to event bans.
func (h *AdminHandler) SelectionActions(c echo.Context) error {
	var body struct {
		UserIDs []string `json:"userIds"`
		EventID string   `json:"eventId"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx := c.Request().Context()
	var (
		actions banlist.SelectionActions
		err     error
	)
	if body.EventID != "" {
		actions, err = h.Bans.EventSelectionActions(ctx, body.UserIDs, body.EventID)
	} else {
		actions, err = h.Bans.GlobalSelectionActions(ctx, body.UserIDs)
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "storage error"})
	}
	return c.JSON(http.StatusOK, actions)
}

// UserBans returns a user's global ban state and every event ban they
// hold, keyed by event ID.
func (h *AdminHandler) UserBans(c echo.Context) error {
	ctx := c.Request().Context()
	userID := c.Param("id")
	global, err := h.Bans.IsBannedGlobally(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "storage error"})
	}
	events, err := h.Bans.EventBans(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "storage error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"global": global, "events": events})
}
