package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// Verification failure reasons. Handlers must collapse both into a generic
// re-authenticate response; the split exists for logging and tests.
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// TokenPair bundles a freshly issued access/refresh token pair.
type TokenPair struct {
	Access          string
	Refresh         string
	AccessExpiresAt time.Time
}

// TokenManager issues and verifies the application's session tokens. Access
// and refresh tokens are signed with distinct secrets, so neither kind ever
// verifies as the other.
type TokenManager struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewTokenManager builds a new manager.
func NewTokenManager(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *TokenManager {
	return &TokenManager{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

// Claims describes the JWT payload.
type Claims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// Issue produces a matched access/refresh pair for the subject.
func (tm *TokenManager) Issue(userID string) (TokenPair, error) {
	accessExpiry := time.Now().Add(tm.accessTTL)

	access, err := sign(userID, tm.accessSecret, accessExpiry)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := sign(userID, tm.refreshSecret, time.Now().Add(tm.refreshTTL))
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{Access: access, Refresh: refresh, AccessExpiresAt: accessExpiry}, nil
}

// VerifyAccess validates an access token and returns its subject.
func (tm *TokenManager) VerifyAccess(token string) (string, error) {
	return verify(token, tm.accessSecret)
}

// VerifyRefresh validates a refresh token and returns its subject.
func (tm *TokenManager) VerifyRefresh(token string) (string, error) {
	return verify(token, tm.refreshSecret)
}

// Rotate verifies a refresh token and issues a brand-new pair for the same
// subject. The old refresh token stays valid until its own expiry; there is
// no server-side revocation.
func (tm *TokenManager) Rotate(refreshToken string) (TokenPair, error) {
	userID, err := tm.VerifyRefresh(refreshToken)
	if err != nil {
		return TokenPair{}, err
	}
	return tm.Issue(userID)
}

func sign(userID string, secret []byte, expiresAt time.Time) (string, error) {
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func verify(tokenStr string, secret []byte) (string, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrExpiredToken
		}
		return "", ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.UserID == "" {
		return "", ErrInvalidToken
	}
	return claims.UserID, nil
}
