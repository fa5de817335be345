package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/lyrics-service/internal/auth"
	"github.com/spec-kit/lyrics-service/internal/service"
	"github.com/spec-kit/lyrics-service/internal/spotify"
	apperrors "github.com/spec-kit/lyrics-service/pkg/util"
)

// CatalogHandler exposes the Spotify proxy and lyrics endpoints.
type CatalogHandler struct {
	catalog *service.CatalogService
}

// NewCatalogHandler constructs handler.
func NewCatalogHandler(catalog *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// Search handles GET /api/search.
func (h *CatalogHandler) Search(c *fiber.Ctx) error {
	query := c.Query("query")
	if query == "" {
		return fiber.NewError(http.StatusBadRequest, "query required")
	}
	userID, _ := auth.UserIDFromContext(c)

	result, err := h.catalog.Search(c.Context(), userID, query, c.Query("type"))
	if err != nil {
		return mapCatalogError(err)
	}
	return sendRaw(c, result)
}

// Track handles GET /api/track/:id.
func (h *CatalogHandler) Track(c *fiber.Ctx) error {
	userID, _ := auth.UserIDFromContext(c)

	result, err := h.catalog.Track(c.Context(), userID, c.Params("id"))
	if err != nil {
		return mapCatalogError(err)
	}
	return sendRaw(c, result)
}

// Playlist handles GET /api/playlist/:id.
func (h *CatalogHandler) Playlist(c *fiber.Ctx) error {
	userID, _ := auth.UserIDFromContext(c)

	result, err := h.catalog.Playlist(c.Context(), userID, c.Params("id"))
	if err != nil {
		return mapCatalogError(err)
	}
	return sendRaw(c, result)
}

// MyPlaylists handles GET /api/my-playlists.
func (h *CatalogHandler) MyPlaylists(c *fiber.Ctx) error {
	userID, _ := auth.UserIDFromContext(c)

	result, err := h.catalog.MyPlaylists(c.Context(), userID)
	if err != nil {
		return mapCatalogError(err)
	}
	return sendRaw(c, result)
}

// NewReleases handles GET /api/new-releases.
func (h *CatalogHandler) NewReleases(c *fiber.Ctx) error {
	userID, _ := auth.UserIDFromContext(c)

	result, err := h.catalog.NewReleases(c.Context(), userID)
	if err != nil {
		return mapCatalogError(err)
	}
	return sendRaw(c, result)
}

// Lyrics handles GET /api/lyrics.
func (h *CatalogHandler) Lyrics(c *fiber.Ctx) error {
	artistName := c.Query("artistName")
	trackName := c.Query("trackName")
	if artistName == "" || trackName == "" {
		return fiber.NewError(http.StatusBadRequest, "missing artistName or trackName")
	}

	lyrics, err := h.catalog.Lyrics(c.Context(), trackName, artistName)
	if err != nil {
		return apperrors.NewNotFound("lyrics", map[string]any{
			"track":  trackName,
			"artist": artistName,
		})
	}
	return c.JSON(fiber.Map{"lyrics": lyrics})
}

// mapCatalogError translates upstream failures into the error taxonomy.
func mapCatalogError(err error) error {
	var apiErr *spotify.APIError
	switch {
	case errors.Is(err, service.ErrSpotifyNotLinked):
		return apperrors.NewForbidden("spotify account not linked")
	case errors.Is(err, spotify.ErrRetryExhausted):
		return apperrors.NewRetryExhausted(err)
	case errors.Is(err, spotify.ErrUpstreamAuth):
		return apperrors.NewUpstreamAuthError(err)
	case errors.As(err, &apiErr):
		// Non-auth upstream statuses pass through untransformed.
		return apperrors.NewDomainError("UPSTREAM_ERROR", apiErr.Error(), apiErr.Status, nil)
	default:
		return err
	}
}

func sendRaw(c *fiber.Ctx, payload json.RawMessage) error {
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(payload)
}
