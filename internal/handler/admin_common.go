package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/event-registration/internal/attendance"
	"github.com/iliyamo/event-registration/internal/banlist"
	"github.com/iliyamo/event-registration/internal/catalog"
	"github.com/iliyamo/event-registration/internal/config"
	"github.com/iliyamo/event-registration/internal/ledger"
	"github.com/iliyamo/event-registration/internal/middleware"
	"github.com/iliyamo/event-registration/internal/profile"
	"github.com/iliyamo/event-registration/internal/roster"
)

// AdminHandler aggregates the services behind the admin routes.  Methods
// are spread over the admin_*.go files by concern.
type AdminHandler struct {
	Catalog    *catalog.Catalog
	Ledger     *ledger.Ledger
	Bans       *banlist.Registry
	Attendance *attendance.Tracker
	Profiles   *profile.Service
	Roster     *roster.Directory

	// Cache invalidation after catalog mutations; Redis may be nil.
	CacheCfg config.CacheConfig
	Redis    *redis.Client
}

// invalidateCache drops cached public responses after a mutation so
// listings do not serve stale capacity or activation state.
func (h *AdminHandler) invalidateCache(c echo.Context) {
	middleware.InvalidateCache(h.CacheCfg, h.Redis, c)
}
