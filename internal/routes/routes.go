package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"gorm.io/gorm"

	"github.com/univertix/ouvidoria-backend/internal/config"
	"github.com/univertix/ouvidoria-backend/internal/handlers"
	"github.com/univertix/ouvidoria-backend/internal/middleware"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	db *gorm.DB,
	authHandler *handlers.AuthHandler,
	complaintHandler *handlers.ComplaintHandler,
	adminHandler *handlers.AdminHandler,
	healthHandler *handlers.HealthHandler,
	legalHandler *handlers.LegalHandler,
) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	// Health
	api.Get("/health", healthHandler.Check)

	// Legal pages
	api.Get("/legal/privacy", legalHandler.PrivacyPolicy)
	api.Get("/legal/terms", legalHandler.TermsOfService)

	// Auth — public, stricter rate limit: 10 req/min per IP
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)

	api.Post("/auth/logout", middleware.JWTProtected(cfg), authHandler.Logout)
	api.Delete("/auth/account", middleware.JWTProtected(cfg), authHandler.DeleteAccount)

	// Public complaint intake. Tracking shares the auth-grade limiter: the
	// credential check must not be brute-forceable at API rate.
	api.Post("/complaints/anonymous", complaintHandler.SubmitAnonymous)
	api.Post("/complaints/track", limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}), complaintHandler.Track)

	// Identified complaint routes (JWT required)
	api.Post("/complaints", middleware.JWTProtected(cfg), complaintHandler.Submit)
	api.Get("/complaints/my", middleware.JWTProtected(cfg), complaintHandler.ListMine)
	api.Get("/complaints/:id", middleware.JWTProtected(cfg), complaintHandler.Get)
	api.Post("/complaints/:id/attachments", middleware.JWTProtected(cfg), complaintHandler.UploadAttachment)
	api.Get("/complaints/:id/attachments/:attachmentID", middleware.JWTProtected(cfg), complaintHandler.DownloadAttachment)

	// Admin routes (JWT + admin role)
	admin := api.Group("/admin", middleware.JWTProtected(cfg), middleware.AdminRequired(db, cfg))
	admin.Get("/complaints", adminHandler.List)
	admin.Get("/complaints/stats", adminHandler.Stats)
	admin.Get("/complaints/export", adminHandler.Export)
	admin.Patch("/complaints/:id/status", adminHandler.UpdateStatus)
	admin.Post("/complaints/:id/response", adminHandler.Respond)
}
