package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/event-registration/internal/attendance"
	"github.com/iliyamo/event-registration/internal/banlist"
	"github.com/iliyamo/event-registration/internal/cart"
	"github.com/iliyamo/event-registration/internal/catalog"
	"github.com/iliyamo/event-registration/internal/config"
	"github.com/iliyamo/event-registration/internal/handler"
	"github.com/iliyamo/event-registration/internal/ledger"
	"github.com/iliyamo/event-registration/internal/profile"
	"github.com/iliyamo/event-registration/internal/queue"
	"github.com/iliyamo/event-registration/internal/roster"
	"github.com/iliyamo/event-registration/internal/router"
	"github.com/iliyamo/event-registration/internal/store"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	st, err := store.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("store: %v", err)
	}
	defer st.Close()

	// Redis is optional: without it the cache and rate limiter become
	// pass-throughs.
	rdb := config.NewRedisClient()
	cacheCfg := config.LoadCacheConfig()
	rateCfg := config.LoadRateLimitConfig()

	events := catalog.New(st)
	regs := ledger.New(st)
	bans := banlist.New(st)
	marks := attendance.New(st)
	profiles := profile.New(st)
	users := roster.New(st)
	carts := cart.NewBook()
	checkout := cart.NewOrchestrator(regs, queue.NewAMQPPublisher())

	// The consumer drains registration confirmations in the background;
	// the API works without the broker.
	go func() {
		if err := queue.StartRegistrationConsumer(); err != nil {
			log.Printf("queue consumer: %v", err)
		}
	}()

	e := echo.New()
	e.Use(echomw.Recover())

	router.RegisterRoutes(e)
	router.RegisterPublic(e, &handler.PublicHandler{Catalog: events, Ledger: regs}, cacheCfg, rateCfg, rdb)
	router.RegisterCustomer(e, &handler.CustomerHandler{
		Catalog:  events,
		Ledger:   regs,
		Profiles: profiles,
		Carts:    carts,
		Checkout: checkout,
	}, bans, cfg.JWTSecret, rateCfg, rdb)
	router.RegisterAdmin(e, &handler.AdminHandler{
		Catalog:    events,
		Ledger:     regs,
		Bans:       bans,
		Attendance: marks,
		Profiles:   profiles,
		Roster:     users,
		CacheCfg:   cacheCfg,
		Redis:      rdb,
	}, bans, cfg.JWTSecret, rateCfg, rdb)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
