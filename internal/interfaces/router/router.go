package router

import (
	"net/http"

	"edutoken-backend/internal/application/payments"
	"edutoken-backend/internal/application/registry"
	"edutoken-backend/internal/application/tokens"
	"edutoken-backend/internal/application/transactions"
	"edutoken-backend/internal/application/treasury"
	authsvc "edutoken-backend/internal/auth"
	"edutoken-backend/internal/config"
	"edutoken-backend/internal/infrastructure/database"
	authhandler "edutoken-backend/internal/interfaces/handlers/auth"
	healthhandler "edutoken-backend/internal/interfaces/handlers/health"
	isahandler "edutoken-backend/internal/interfaces/handlers/isa"
	payhandler "edutoken-backend/internal/interfaces/handlers/payments"
	tokenhandler "edutoken-backend/internal/interfaces/handlers/tokens"
	txhandler "edutoken-backend/internal/interfaces/handlers/transactions"
	treasuryhandler "edutoken-backend/internal/interfaces/handlers/treasury"
	"edutoken-backend/internal/metrics"
	"edutoken-backend/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type gormDBPinger struct {
	db *gorm.DB
}

func (g *gormDBPinger) Ping() error {
	if g == nil || g.db == nil {
		return nil
	}
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// CreateApp opens the database and Redis, migrates, and mounts every route.
func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := database.AutoMigrate(db); err != nil {
		return nil, nil, nil, err
	}
	rdb, err := middleware.NewRedisClient(cfg.RedisURL)
	if err != nil {
		return nil, nil, nil, err
	}
	app := New(cfg, db, rdb, metrics.New())
	return app, db, rdb, nil
}

// New builds the Fiber app over already-open stores.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, m *metrics.Metrics) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.NewErrorHandler(rdb),
		EnableTrustedProxyCheck: true,
	})

	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix: cfg.FrontendURLEndsWith,
		DevPassword:   cfg.DevPassword,
	}))
	app.Use(middleware.Session(rdb))
	app.Use(middleware.HealthMarker(rdb))
	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())
	app.Use(middleware.Metrics(m))

	hh := &healthhandler.Handlers{Rdb: rdb, DB: &gormDBPinger{db: db}}
	app.Get("/health/json", hh.JSON)
	app.Get("/health/errors", hh.Errors)
	app.Get("/health/reset", middleware.RequireAdminKey(cfg.HealthAdminKey), hh.Reset)
	app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))

	sessionCfg := middleware.SessionConfig{
		AllowCrossSiteDev: cfg.AllowCrossSiteDev,
		IsProduction:      cfg.IsProduction(),
	}
	ah := &authhandler.Handlers{
		Finder: &authsvc.GormPrincipalFinder{DB: db},
		DB:     db,
		Rdb:    rdb,
		Config: sessionCfg,
	}
	authGroup := app.Group("/api/v1/auth")
	authGroup.Post("/register", ah.Register)
	authGroup.Post("/login", ah.Login)
	authGroup.Get("/me", ah.Me)
	authGroup.Delete("/logout", ah.Logout)

	regs := &registry.Service{DB: db, Limits: cfg.Limits}
	toks := &tokens.Service{DB: db, OnActivate: func(uint64) { m.IncActivations() }}
	pays := &payments.Service{DB: db, FeeBP: cfg.PlatformFeeBP}
	treas := &treasury.Service{DB: db}
	txs := &transactions.Service{DB: db}

	ih := &isahandler.Handlers{Service: regs, Metrics: m}
	th := &tokenhandler.Handlers{Service: toks, Metrics: m}
	ph := &payhandler.Handlers{Service: pays, Metrics: m}
	trh := &treasuryhandler.Handlers{Service: treas, Metrics: m}
	txh := &txhandler.Handlers{Service: txs}

	api := app.Group("/api/v1")

	// next-id must be registered before :id.
	api.Get("/isas/next-id", ih.NextID)
	api.Get("/isas", ih.ListISAs)
	api.Post("/isas", middleware.RequireAuth(), ih.CreateISA)
	api.Get("/isas/:id", ih.GetISA)

	api.Post("/isas/:id/invest", middleware.RequireAuth(), th.Invest)
	api.Post("/isas/:id/transfer", middleware.RequireAuth(), th.Transfer)
	api.Get("/isas/:id/tokens/:investor", th.Balance)
	api.Get("/isas/:id/holders", th.Holders)
	api.Get("/portfolio", middleware.RequireAuth(), th.Portfolio)

	api.Post("/isas/:id/income-reports", middleware.RequireAuth(), ph.ReportIncome)
	api.Get("/isas/:id/income-reports", ph.ListReports)
	api.Get("/isas/:id/income-reports/:period", ph.GetReport)
	api.Get("/isas/:id/payment-preview", ph.Preview)

	api.Get("/isas/:id/events", txh.ISAEvents)
	api.Get("/events/mine", middleware.RequireAuth(), txh.MyEvents)

	api.Get("/treasury", trh.Balance)
	api.Post("/treasury/credit", middleware.RequireAdminKey(cfg.TreasuryAdminKey), trh.Credit)

	return app
}

func Handler(app *fiber.App) http.Handler {
	return adaptor.FiberApp(app)
}
