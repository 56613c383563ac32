package routes

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/stash-pay/stash_pay/internal/auth"
	"github.com/stash-pay/stash_pay/internal/config"
	"github.com/stash-pay/stash_pay/internal/middleware"
	"github.com/stash-pay/stash_pay/internal/notification"
	"github.com/stash-pay/stash_pay/internal/wallet"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes. Without a database
// the service runs on the in-memory ledger store, which is only permitted in
// development.
func Setup(app *fiber.App, d Deps) error {
	if !d.Cfg.Dev() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.Env)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.Env)
		}
	}

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))

	RegisterHealthRoutes(app, d)

	var store wallet.Store
	if d.DB != nil {
		pg := wallet.NewPostgresStore(d.DB)
		if err := pg.EnsureSchema(context.Background()); err != nil {
			return err
		}
		store = pg
	} else {
		store = wallet.NewMemoryStore()
	}

	notifier := notification.NewLoggerNotifier(d.Logger)
	ledgerSvc := wallet.NewService(store, nil, nil, notifier, d.Logger)
	provisioner := auth.NewProvisioner(ledgerSvc)

	api := app.Group("/api/v1")
	RegisterInitRoute(api, auth.NewHandler(provisioner), middleware.InitRateLimit(d.Cache, d.Cfg.InitRateLimit))
	RegisterWalletRoutes(api, wallet.NewHandler(ledgerSvc), d)

	return nil
}
