// Package router wires every page and endpoint onto one gin engine.
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	"github.com/gorilla/sessions"

	authhandler "storefront/internal/feature/auth/transport/handler"
	authmw "storefront/internal/feature/auth/transport/middleware"
	carthandler "storefront/internal/feature/cart/transport/handler"
	cataloghandler "storefront/internal/feature/catalog/transport/handler"
	orderhandler "storefront/internal/feature/order/transport/handler"
	platformhandler "storefront/internal/platform/http/handler"
	jwtmw "storefront/internal/platform/jwt"
	"storefront/internal/platform/logger"
	"storefront/internal/platform/storage"
	"storefront/internal/platform/web"
	"storefront/internal/shared/ratelimiter"
)

// flashSessionName is the gorilla session carrying flash messages and the CSRF token.
const flashSessionName = "storefront_flash"

// Handlers are the feature handlers the router mounts.
type Handlers struct {
	Auth   *authhandler.AuthHandler
	Shop   *cataloghandler.ShopHandler
	Admin  *cataloghandler.AdminHandler
	Cart   *carthandler.CartHandler
	Order  *orderhandler.OrderHandler
	Health *platformhandler.HealthHandler
}

// Options carries the request-wide plumbing.
type Options struct {
	HTMLRender    render.HTMLRender
	FlashStore    sessions.Store
	Codec         *jwtmw.Codec
	Authenticator authmw.Authenticator
	CookieName    string
	ImageDir      string
	// FormLimiter throttles credential form posts; nil disables it.
	FormLimiter *ratelimiter.RateLimiter
}

func NewRouter(h Handlers, opts Options) *gin.Engine {
	r := gin.New()
	r.HTMLRender = opts.HTMLRender

	// No auth, no session: probes and static files.
	r.GET("/healthz", h.Health.Health)
	r.HEAD("/healthz", h.Health.Health)
	r.OPTIONS("/healthz", h.Health.Health)
	r.Static(storage.URLPrefix, opts.ImageDir)

	r.Use(
		web.Recovery(),
		logger.GinLogger(),
		web.ErrorHandler(),
		web.Sessions(opts.FlashStore, flashSessionName),
		web.CSRF(),
		jwtmw.SessionCookie(opts.Codec, opts.CookieName),
		authmw.LoadUser(opts.Authenticator, opts.CookieName),
	)
	r.NoRoute(web.NotFound)
	r.GET("/500", web.ServerError)

	// Shop
	r.GET("/", h.Shop.GetIndex)
	r.GET("/products/:productId", h.Shop.GetProduct)

	throttle := func(fallback string) gin.HandlerFunc {
		if opts.FormLimiter == nil {
			return func(c *gin.Context) { c.Next() }
		}
		return opts.FormLimiter.Middleware(fallback)
	}

	// Guests only
	guest := r.Group("/", authmw.GuestOnly())
	{
		guest.GET("/login", h.Auth.GetLogin)
		guest.POST("/login", throttle(""), h.Auth.PostLogin)
		guest.GET("/signup", h.Auth.GetSignup)
		guest.POST("/signup", throttle(""), h.Auth.PostSignup)
		guest.GET("/reset", h.Auth.GetReset)
		guest.POST("/reset", throttle(""), h.Auth.PostReset)
		guest.GET("/reset/:token", h.Auth.GetNewPassword)
		guest.POST("/new-password", throttle("/reset"), h.Auth.PostNewPassword)
	}
	r.POST("/logout", h.Auth.PostLogout)

	// Logged in
	auth := r.Group("/", authmw.RequireAuth())
	{
		auth.GET("/cart", h.Cart.GetCart)
		auth.POST("/cart", h.Cart.PostCart)
		auth.POST("/update-cart", h.Cart.PostUpdateCart)

		auth.GET("/checkout", h.Order.GetCheckout)
		auth.GET("/checkout/success", h.Order.GetCheckoutSuccess)
		auth.GET("/checkout/cancel", h.Order.GetCheckout)
		auth.GET("/orders", h.Order.GetOrders)
		auth.GET("/orders/:orderId", h.Order.GetInvoice)
	}

	admin := r.Group("/admin", authmw.RequireAuth())
	{
		admin.GET("/add-product", h.Admin.GetAddProduct)
		admin.POST("/add-product", h.Admin.PostAddProduct)
		admin.GET("/products", h.Admin.GetProducts)
		admin.GET("/edit-product/:productId", h.Admin.GetEditProduct)
		admin.POST("/edit-product", h.Admin.PostEditProduct)
		admin.DELETE("/product/:productId", h.Admin.DeleteProduct)
	}

	return r
}
