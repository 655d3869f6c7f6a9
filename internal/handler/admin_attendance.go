// This file covers attendance administration: single and bulk marks,
// the attendee list and per-event attendance statistics.
package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-registration/internal/attendance"
)

// MarkAttendance sets or clears the attended flag on one registration.
// Marking a user who never registered is a 404, never an implicit
// registration.
func (h *AdminHandler) MarkAttendance(c echo.Context) error {
	var body attendance.Mark
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if body.UserID == "" || body.EventID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "userId and eventId are required"})
	}
	err := h.Attendance.Mark(c.Request().Context(), body.UserID, body.EventID, body.Attended)
	if err != nil {
		if errors.Is(err, attendance.ErrNotRegistered) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user is not registered for this event"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "storage error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "attendance updated"})
}

// MarkAttendanceBulk applies one attendance value to a selection of
// users for a single event.  Users banned from the event are excluded
// before marking; the rest are marked one by one, and failures are
// reported per user without aborting the batch.
func (h *AdminHandler) MarkAttendanceBulk(c echo.Context) error {
	var body struct {
		EventID  string   `json:"eventId"`
		UserIDs  []string `json:"userIds"`
		Attended bool     `json:"attended"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if body.EventID == "" || len(body.UserIDs) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "eventId and userIds are required"})
	}

	ctx := c.Request().Context()
	eligible, err := h.Attendance.FilterEligible(ctx, h.Bans, body.UserIDs, body.EventID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "storage error"})
	}
	excluded := len(body.UserIDs) - len(eligible)

	marks := make([]attendance.Mark, 0, len(eligible))
	for _, uid := range eligible {
		marks = append(marks, attendance.Mark{UserID: uid, EventID: body.EventID, Attended: body.Attended})
	}
	res := h.Attendance.MarkMany(ctx, marks)

	status := http.StatusOK
	if !res.OK() {
		status = http.StatusMultiStatus
	}
	return c.JSON(status, echo.Map{
		"succeeded": res.Succeeded,
		"failed":    res.Failed,
		"excluded":  excluded,
	})
}

// EventAttendees lists every registration for the event with its
// attendance flag.
func (h *AdminHandler) EventAttendees(c echo.Context) error {
	attendees, err := h.Attendance.Attendees(c.Request().Context(), c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "storage error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": attendees})
}

// EventAttendanceStats returns attendance counters for one event.
func (h *AdminHandler) EventAttendanceStats(c echo.Context) error {
	stats, err := h.Attendance.EventStats(c.Request().Context(), c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "storage error"})
	}
	return c.JSON(http.StatusOK, stats)
}
