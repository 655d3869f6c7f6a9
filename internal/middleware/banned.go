package middleware

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-registration/internal/model"
)

// GlobalBanChecker is the slice of the ban registry this gate needs.
type GlobalBanChecker interface {
	IsBannedGlobally(ctx context.Context, userID string) (model.BanState, error)
}

// RejectBanned blocks globally banned users from every gated route.  The
// ledger itself does not consult the global ban; the gate lives here at
// the boundary, which is why it must wrap every authenticated group.
// Lookup failures fail open: a store hiccup must not lock out the whole
// user base.
func RejectBanned(bans GlobalBanChecker) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			uid, ok := c.Get("user_id").(string)
			if !ok || uid == "" {
				return next(c)
			}
			state, err := bans.IsBannedGlobally(c.Request().Context(), uid)
			if err != nil {
				c.Logger().Warnf("ban gate: lookup for %s failed: %v", uid, err)
				return next(c)
			}
			if state.Banned {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "account suspended"})
			}
			return next(c)
		}
	}
}
