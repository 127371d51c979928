// Package session implements cookie-based browser sessions. The session is a
// signed, client-held credential (a JWT in an HTTP-only cookie); no state is
// kept server-side.
package session

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"xtagram/internal/middleware"
	"xtagram/internal/models"
	"xtagram/internal/repository"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// CookieName is the session cookie.
const CookieName = "xtagram_session"

const sessionTTL = 7 * 24 * time.Hour

// Manager issues, parses and clears session cookies and resolves the current user.
type Manager struct {
	secret   string
	userRepo repository.UserRepository
}

// NewManager returns a session Manager signing with the given secret.
func NewManager(secret string, userRepo repository.UserRepository) *Manager {
	return &Manager{secret: secret, userRepo: userRepo}
}

// Login stores the user ID against the caller's session by setting the cookie.
func (m *Manager) Login(c *fiber.Ctx, userID uint) error {
	token, err := m.sign(userID)
	if err != nil {
		return err
	}
	c.Cookie(&fiber.Cookie{
		Name:     CookieName,
		Value:    token,
		Expires:  time.Now().Add(sessionTTL),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})
	return nil
}

// Logout clears the session cookie.
func (m *Manager) Logout(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     CookieName,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})
}

// UserID extracts the authenticated user ID from the session cookie.
// Returns (0, false) when the cookie is absent, malformed or expired.
func (m *Manager) UserID(c *fiber.Ctx) (uint, bool) {
	raw := c.Cookies(CookieName)
	if raw == "" {
		return 0, false
	}

	token, err := jwt.Parse(raw, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(m.secret), nil
	})
	if err != nil || !token.Valid {
		return 0, false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, false
	}
	if issuer, issuerOk := claims["iss"].(string); !issuerOk || issuer != "xtagram" {
		return 0, false
	}
	sub, ok := claims["sub"].(string)
	if !ok {
		return 0, false
	}
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(userID), true
}

// CurrentUser resolves the session to a user record, or nil when the session
// is absent or references a user that no longer exists.
func (m *Manager) CurrentUser(c *fiber.Ctx) *models.User {
	userID, ok := m.UserID(c)
	if !ok {
		return nil
	}
	user, err := m.userRepo.GetByID(c.Context(), userID)
	if err != nil {
		return nil
	}
	return user
}

// RequireAuthenticated returns middleware that redirects to /login when no
// valid session is present. This is the only authorization gate; handlers
// that need ownership checks (notification read-marking) do them themselves.
func (m *Manager) RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := m.UserID(c)
		if !ok {
			return c.Redirect("/login", fiber.StatusSeeOther)
		}

		c.Locals("userID", userID)
		// Sync to UserContext for logging and downstream services
		ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, userID)
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// sign creates the session JWT for the given user ID.
func (m *Manager) sign(userID uint) (string, error) {
	if m.secret == "" {
		return "", fmt.Errorf("session secret not configured")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(userID), 10),
		"iss": "xtagram",
		"aud": "xtagram-web",
		"exp": now.Add(sessionTTL).Unix(),
		"iat": now.Unix(),
		"nbf": now.Unix(),
		"jti": fmt.Sprintf("%d-%s", now.Unix(), uuid.New().String()[:8]),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(m.secret))
}
