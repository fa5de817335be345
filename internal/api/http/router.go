package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/lyrics-service/internal/api/http/handlers"
	"github.com/spec-kit/lyrics-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Catalog        *handlers.CatalogHandler
	Comments       *handlers.CommentsHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	// OAuth callback sits outside /api, matching the registered redirect.
	app.Get("/callback", cfg.Auth.SpotifyCallback)

	api := app.Group("/api")

	api.Post("/signup", cfg.Auth.Signup)
	api.Post("/login", cfg.Auth.Login)
	api.Post("/refresh-token", cfg.Auth.Refresh)
	api.Get("/spotify-login", cfg.Auth.SpotifyLogin)
	api.Get("/user/data", cfg.AuthMiddleware.Require, cfg.Auth.UserData)

	// Browse routes work anonymously on the shared app credential; a
	// logged-in caller gets their own Spotify tokens.
	api.Get("/search", cfg.AuthMiddleware.Resolve, cfg.Catalog.Search)
	api.Get("/track/:id", cfg.AuthMiddleware.Resolve, cfg.Catalog.Track)
	api.Get("/playlist/:id", cfg.AuthMiddleware.Resolve, cfg.Catalog.Playlist)
	api.Get("/my-playlists", cfg.AuthMiddleware.Resolve, cfg.Catalog.MyPlaylists)
	api.Get("/new-releases", cfg.AuthMiddleware.Resolve, cfg.Catalog.NewReleases)
	api.Get("/lyrics", cfg.AuthMiddleware.Resolve, cfg.Catalog.Lyrics)

	api.Get("/lyriccomments/:trackId/:lyricId", cfg.Comments.ListLyricComments)
	api.Post("/postlyriccomments", cfg.AuthMiddleware.Require, cfg.Comments.PostLyricComment)
	api.Get("/trackcomments/:trackId", cfg.Comments.ListTrackComments)
	api.Post("/trackcomments", cfg.AuthMiddleware.Require, cfg.Comments.PostTrackComment)
}
