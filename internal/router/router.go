// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/event-registration/internal/banlist"
	"github.com/iliyamo/event-registration/internal/config"
	"github.com/iliyamo/event-registration/internal/handler"
	"github.com/iliyamo/event-registration/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication.
// Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterPublic registers unauthenticated browse endpoints.  Event
// listings are hot and read-mostly, so they sit behind the Redis
// response cache; a nil Redis client leaves the cache disabled.
// Browsers are anonymous here, so the limiter buckets by ip+route.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, cacheCfg config.CacheConfig, rateCfg config.RateLimitConfig, rdb *redis.Client) {
	g := e.Group("/v1/events", middleware.RateLimit(rateCfg, rdb), middleware.ResponseCache(cacheCfg, rdb))
	g.GET("", p.ListEvents)
	g.GET("/:id", p.GetEvent)
}

// RegisterCustomer registers the authenticated customer endpoints.  All
// of them require a valid access token and pass the global ban gate.
// The rate limiter runs after auth so its buckets are per user.
func RegisterCustomer(e *echo.Echo, h *handler.CustomerHandler, bans *banlist.Registry, jwtSecret string, rateCfg config.RateLimitConfig, rdb *redis.Client) {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RateLimit(rateCfg, rdb))
	g.Use(middleware.RejectBanned(bans))

	g.GET("/cart", h.GetCart)
	g.POST("/cart/toggle/:id", h.ToggleCart)
	g.DELETE("/cart/:id", h.RemoveFromCart)
	g.POST("/checkout", h.CheckoutCart)

	g.GET("/registrations", h.MyRegistrations)
	g.GET("/profile", h.GetProfile)
	g.PATCH("/profile", h.UpdateProfile)
}

// RegisterAdmin registers the admin endpoints under /v1/admin.  The
// admin role is enforced on the whole group; globally banned admins are
// rejected like any other user.
func RegisterAdmin(e *echo.Echo, h *handler.AdminHandler, bans *banlist.Registry, jwtSecret string, rateCfg config.RateLimitConfig, rdb *redis.Client) {
	g := e.Group("/v1/admin")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RateLimit(rateCfg, rdb))
	g.Use(middleware.RejectBanned(bans))
	g.Use(middleware.RequireRole("admin"))

	// catalog
	g.POST("/events", h.CreateEvent)
	g.PATCH("/events/:id", h.UpdateEvent)
	g.POST("/events/:id/active", h.SetEventActive)
	g.GET("/events/:id/registrations", h.EventRegistrations)
	g.GET("/stats", h.DashboardStats)

	// attendance
	g.POST("/attendance", h.MarkAttendance)
	g.POST("/attendance/bulk", h.MarkAttendanceBulk)
	g.GET("/events/:id/attendees", h.EventAttendees)
	g.GET("/events/:id/attendance", h.EventAttendanceStats)

	// bans
	g.POST("/bans/global", h.SetGlobalBan)
	g.POST("/bans/global/bulk", h.SetGlobalBanBulk)
	g.POST("/bans/event", h.SetEventBan)
	g.POST("/bans/event/bulk", h.SetEventBanBulk)
	g.POST("/bans/selection", h.SelectionActions)

	// users
	g.GET("/users", h.ListUsers)
	g.GET("/users/:id", h.GetUser)
	g.GET("/users/:id/bans", h.UserBans)
	g.POST("/users/:id/role", h.SetUserRole)
}
