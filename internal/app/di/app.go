// Package di assembles the storefront's repositories, usecases and handlers.
package di

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"storefront/internal/app/router"
	authadapters "storefront/internal/feature/auth/adapters"
	authhandler "storefront/internal/feature/auth/transport/handler"
	authusecase "storefront/internal/feature/auth/usecase"
	cartadapters "storefront/internal/feature/cart/adapters"
	carthandler "storefront/internal/feature/cart/transport/handler"
	cartusecase "storefront/internal/feature/cart/usecase"
	catalogadapters "storefront/internal/feature/catalog/adapters"
	cataloghandler "storefront/internal/feature/catalog/transport/handler"
	catalogusecase "storefront/internal/feature/catalog/usecase"
	orderadapters "storefront/internal/feature/order/adapters"
	"storefront/internal/feature/order/adapters/invoice"
	"storefront/internal/feature/order/adapters/payment"
	orderhandler "storefront/internal/feature/order/transport/handler"
	orderusecase "storefront/internal/feature/order/usecase"
	"storefront/internal/platform/cache"
	"storefront/internal/platform/config"
	platformhttp "storefront/internal/platform/http"
	platformhandler "storefront/internal/platform/http/handler"
	jwtmw "storefront/internal/platform/jwt"
	"storefront/internal/platform/mailer"
	"storefront/internal/platform/notify"
	"storefront/internal/platform/scheduler"
	"storefront/internal/platform/storage"
	"storefront/internal/platform/validation"
	"storefront/internal/platform/web"
	"storefront/internal/shared/ratelimiter"
)

// App is the assembled storefront. The caller starts the scheduler and closes the dispatcher.
type App struct {
	Router     *gin.Engine
	Scheduler  *scheduler.Scheduler
	Dispatcher *notify.Dispatcher
}

// Build wires every feature over db and, when not nil, rdb. pages holds the HTML templates.
func Build(cfg *config.Config, db *gorm.DB, rdb *redis.Client, pages fs.FS) (*App, error) {
	v, err := validation.New()
	if err != nil {
		return nil, fmt.Errorf("validator: %w", err)
	}
	binding.Validator = v

	renderer, err := web.NewRenderer(pages)
	if err != nil {
		return nil, fmt.Errorf("templates: %w", err)
	}
	images, err := storage.NewImageStore(cfg.Storage.ImageDir)
	if err != nil {
		return nil, err
	}
	invoices, err := invoice.NewPDFWriter(cfg.Storage.InvoiceDir)
	if err != nil {
		return nil, err
	}
	dispatcher, err := notify.NewDispatcher(mailer.NewMailer(cfg.SMTP), cfg.SMTP.Workers)
	if err != nil {
		return nil, fmt.Errorf("mail dispatcher: %w", err)
	}

	// Repository
	codec := jwtmw.NewCodec(cfg.Session.Secret)
	sessions := NewSessionRepository(rdb, db)
	users := authadapters.NewUserGorm(db)
	products := cache.NewCachingProductRepository(rdb, cfg.Redis.CacheTTL, catalogadapters.NewProductGorm(db), "products")
	carts := cartadapters.NewCartGorm(db)
	orders := orderadapters.NewOrderGorm(db)
	gateway := payment.NewStripeGateway(cfg.Stripe.SecretKey, cfg.Stripe.Currency, platformhttp.NewHTTPClient(cfg.Stripe.Timeout))

	// Usecase
	authUC := authusecase.NewAuthUsecase(users, sessions, dispatcher, codec, authusecase.Options{
		SessionTTL:         cfg.Session.TTL,
		MaxSessionsPerUser: cfg.Session.MaxPerUser,
		BaseURL:            cfg.BaseURL,
	})
	cartUC := cartusecase.NewCartUsecase(carts, products)
	catalogUC := catalogusecase.NewCatalogUsecase(products, cartUC, images, cfg.PageSize)
	checkoutUC := orderusecase.NewCheckoutUsecase(cartUC, orders, gateway)
	orderUC := orderusecase.NewOrderUsecase(orders, invoices)

	sched, err := scheduler.New(sessions)
	if err != nil {
		_ = dispatcher.Close(0)
		return nil, fmt.Errorf("scheduler: %w", err)
	}

	// Handler
	handlers := router.Handlers{
		Auth:   authhandler.NewAuthHandler(authUC, authhandler.CookieOptions{Name: cfg.Session.CookieName, Secure: cfg.Session.CookieSecure}),
		Shop:   cataloghandler.NewShopHandler(catalogUC),
		Admin:  cataloghandler.NewAdminHandler(catalogUC, images),
		Cart:   carthandler.NewCartHandler(cartUC),
		Order:  orderhandler.NewOrderHandler(checkoutUC, orderUC),
		Health: platformhandler.NewHealthHandler(healthChecks(db, rdb)...),
	}
	r := router.NewRouter(handlers, router.Options{
		HTMLRender:    renderer,
		FlashStore:    web.NewCookieStore(cfg.Session.Secret, cfg.Session.CookieSecure),
		Codec:         codec,
		Authenticator: authUC,
		CookieName:    cfg.Session.CookieName,
		ImageDir:      images.Dir(),
		FormLimiter:   ratelimiter.NewRateLimiter(cfg.RateLimit.Attempts, cfg.RateLimit.Window),
	})

	return &App{Router: r, Scheduler: sched, Dispatcher: dispatcher}, nil
}

func healthChecks(db *gorm.DB, rdb *redis.Client) []platformhandler.Check {
	checks := []platformhandler.Check{{
		Name: "db",
		Ping: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}}
	if rdb != nil {
		checks = append(checks, platformhandler.Check{
			Name: "redis",
			Ping: func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		})
	}
	return checks
}
