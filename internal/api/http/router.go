package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/content-service/internal/api/http/handlers"
	"github.com/spec-kit/content-service/internal/auth"
	"github.com/spec-kit/content-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Profile        *handlers.ProfileHandler
	Posts          *handlers.PostsHandler
	AuthMiddleware *auth.AuthMiddleware
	// MediaDir is served under /media when set.
	MediaDir string
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	if cfg.MediaDir != "" {
		app.Static("/media", cfg.MediaDir, fiber.Static{Browse: false})
	}

	api := app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/logout", cfg.Auth.Logout)
	authGroup.Post("/refresh", cfg.AuthMiddleware.Handle, cfg.Auth.Refresh)

	posts := api.Group("/posts")
	posts.Get("/", cfg.AuthMiddleware.Optional, cfg.Posts.ListPosts)
	posts.Get("/:id", cfg.AuthMiddleware.Optional, cfg.Posts.GetPost)
	protectedPosts := posts.Group("", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	protectedPosts.Get("/:id/permissions", cfg.Posts.Permissions)
	protectedPosts.Post("/", cfg.Posts.CreatePost)
	protectedPosts.Put("/:id", cfg.Posts.UpdatePost)
	protectedPosts.Delete("/:id", cfg.Posts.DeletePost)

	users := api.Group("/users", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	users.Get("/profile", cfg.Profile.Get)
	users.Put("/profile", cfg.Profile.Update)

	admin := api.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleAdmin))
	admin.Get("/posts", cfg.Posts.AdminListPosts)
	admin.Put("/posts/:id", cfg.Posts.UpdatePost)
	admin.Delete("/posts/:id", cfg.Posts.DeletePost)
}
