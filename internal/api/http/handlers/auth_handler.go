package handlers

import (
	"net/http"
	"net/url"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/lyrics-service/internal/api/dto"
	"github.com/spec-kit/lyrics-service/internal/auth"
	"github.com/spec-kit/lyrics-service/internal/service"
)

// AuthHandler exposes signup, login, session refresh and the Spotify OAuth
// flow.
type AuthHandler struct {
	auth          *service.AuthService
	loginRedirect string
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, loginRedirect string) *AuthHandler {
	return &AuthHandler{auth: authService, loginRedirect: loginRedirect}
}

// Signup handles POST /api/signup.
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req dto.SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Email == "" || req.Password == "" || req.Name == "" {
		return fiber.NewError(http.StatusBadRequest, "name, email, password required")
	}

	_, pair, err := h.auth.Signup(c.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	return c.Status(http.StatusCreated).JSON(dto.SessionResponse{
		Token:        pair.Access,
		RefreshToken: pair.Refresh,
	})
}

// Login handles POST /api/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Email == "" || req.Password == "" {
		return fiber.NewError(http.StatusBadRequest, "email and password required")
	}

	_, pair, err := h.auth.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return fiber.NewError(http.StatusUnauthorized, "invalid credentials")
	}

	return c.JSON(dto.SessionResponse{
		Token:        pair.Access,
		RefreshToken: pair.Refresh,
	})
}

// Refresh handles POST /api/refresh-token.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req dto.RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.RefreshToken == "" {
		return fiber.NewError(http.StatusUnauthorized, "refresh token required")
	}

	pair, err := h.auth.RefreshSession(c.Context(), req.RefreshToken)
	if err != nil {
		return fiber.NewError(http.StatusForbidden, "invalid refresh token")
	}

	return c.JSON(dto.SessionResponse{
		Token:        pair.Access,
		RefreshToken: pair.Refresh,
	})
}

// SpotifyLogin handles GET /api/spotify-login.
func (h *AuthHandler) SpotifyLogin(c *fiber.Ctx) error {
	authorizeURL, err := h.auth.SpotifyLoginURL()
	if err != nil {
		return err
	}
	return c.Redirect(authorizeURL, http.StatusTemporaryRedirect)
}

// SpotifyCallback handles GET /callback.
func (h *AuthHandler) SpotifyCallback(c *fiber.Ctx) error {
	code := c.Query("code")
	if code == "" {
		return fiber.NewError(http.StatusBadRequest, "missing authorization code")
	}

	_, pair, err := h.auth.HandleSpotifyCallback(c.Context(), code)
	if err != nil {
		return err
	}

	q := url.Values{}
	q.Set("token", pair.Access)
	q.Set("refreshtoken", pair.Refresh)
	return c.Redirect(h.loginRedirect+"?"+q.Encode(), http.StatusTemporaryRedirect)
}

// UserData handles GET /api/user/data (protected).
func (h *AuthHandler) UserData(c *fiber.Ctx) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "no token provided")
	}

	user, err := h.auth.UserData(c.Context(), userID)
	if err != nil {
		return fiber.NewError(http.StatusNotFound, "user not found")
	}

	resp := dto.UserResponse{
		ID:            user.ID,
		Name:          user.Name,
		Email:         user.Email,
		ImageURL:      user.ImageURL,
		SpotifyLinked: user.HasSpotify(),
	}
	if user.Spotify != nil {
		resp.SpotifyUserID = user.Spotify.UserID
	}
	return c.JSON(resp)
}
