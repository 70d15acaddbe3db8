package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	applog "cocolabs/internal/log"
	"cocolabs/internal/telemetry"
)

const (
	maxBodySize    = 1 << 20 // 1 MiB
	csrfContextKey = "csrf"
)

// pageCSRF guards the server-rendered forms. The JSON API authenticates by
// bearer token or SameSite cookie and is left out.
func pageCSRF() fiber.Handler {
	return csrf.New(csrf.Config{
		KeyLookup:      "form:csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		CookieSecure:   false, // set true behind HTTPS
		ContextKey:     csrfContextKey,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Security(c, "csrf.fail", map[string]any{"reason": err.Error()})
			return c.Status(fiber.StatusForbidden).Render("notfound", fiber.Map{"Message": "Security check failed. Please refresh and try again."})
		},
	})
}

// NewApp builds the server: middleware, the /api routes, the checkout page,
// health and metrics.
func NewApp(d *Deps, views fiber.Views) *fiber.App {
	app := fiber.New(fiber.Config{
		Views:        views,
		ErrorHandler: ErrorHandler,
		BodyLimit:    maxBodySize,
	})

	// ---------- Middlewares ----------
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{Output: applog.Logger().Out}))
	app.Use(helmet.New())
	app.Use(cors.New(cors.Config{AllowCredentials: false}))
	app.Use(telemetry.Middleware())
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			p := c.Path()
			return p == "/healthz" || p == "/metrics"
		},
	}))
	app.Use(Session(d.Auth))

	// ---------- API ----------
	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", d.AuthHandler.Register)
	auth.Post("/login", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return message(c, fiber.StatusTooManyRequests, "Too many attempts. Please try again later.")
		},
	}), d.AuthHandler.Login)
	auth.Post("/logout", d.AuthHandler.Logout)

	user := api.Group("/user", RequireUser())
	user.Get("/profile", d.ProfileHandler.Get)
	user.Put("/profile", d.ProfileHandler.Update)
	user.Get("/orders", d.OrderHandler.History)
	user.Post("/orders", d.OrderHandler.Place)
	user.Get("/wishlist", d.WishlistHandler.List)
	user.Post("/wishlist", d.WishlistHandler.Save)
	user.Delete("/wishlist/:id", d.WishlistHandler.Unsave)
	user.Get("/recommendations", d.RecommendationHandler.List)

	api.Post("/chat", limiter.New(limiter.Config{
		Max:        20,
		Expiration: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|chat"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.chat.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded, retry soon"})
		},
	}), d.ChatHandler.Reply)

	api.Get("/categories", d.CategoryHandler.List)
	api.Get("/products", d.SearchHandler.Search)
	api.Get("/products/:id", d.ProductHandler.Detail)

	carts := api.Group("/cart")
	carts.Get("/", d.CartHandler.View)
	carts.Delete("/", d.CartHandler.Clear)
	carts.Post("/items", d.CartHandler.Add)
	carts.Patch("/items/:id", d.CartHandler.Update)
	carts.Delete("/items/:id", d.CartHandler.Remove)
	carts.Post("/open", d.CartHandler.Open)
	carts.Post("/close", d.CartHandler.Close)
	carts.Post("/checkout", RequireUser(), d.CartHandler.Checkout)

	// ---------- Pages ----------
	pages := app.Group("/checkout", pageCSRF())
	pages.Get("/", d.CartHandler.CheckoutPage)
	pages.Post("/", d.CartHandler.CheckoutSubmit)

	// Health, metrics & 404
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Get("/metrics", telemetry.Handler())
	app.Use(NotFound)

	return app
}
