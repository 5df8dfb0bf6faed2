package middleware

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/skincareshop/models"
)

const (
	SessionCookie = "session"
	FlashCookie   = "flash"

	userKey = "user"
)

// SessionClaims is the payload of the signed session cookie
type SessionClaims struct {
	UserID   uint   `json:"uid"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// SessionManager issues and checks HS256 session tokens
type SessionManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSessionManager creates a session manager
func NewSessionManager(secret string, ttl time.Duration) *SessionManager {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &SessionManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Token signs a session token for user
func (m *SessionManager) Token(user *models.User) (string, time.Time, error) {
	now := m.now()
	expires := now.Add(m.ttl)
	claims := SessionClaims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprint(user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	return signed, expires, err
}

// Parse validates a session token
func (m *SessionManager) Parse(token string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(m.now))
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// Login sets the session cookie for user
func (m *SessionManager) Login(c *fiber.Ctx, user *models.User) error {
	token, expires, err := m.Token(user)
	if err != nil {
		return err
	}
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return nil
}

// Logout clears the session cookie
func (m *SessionManager) Logout(c *fiber.Ctx) {
	expireCookie(c, SessionCookie)
}

// Load reads the session cookie, when valid, into the request
func (m *SessionManager) Load() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token := c.Cookies(SessionCookie); token != "" {
			if claims, err := m.Parse(token); err == nil {
				c.Locals(userKey, claims)
			}
		}
		return c.Next()
	}
}

// CurrentUser returns the logged in user, or nil
func CurrentUser(c *fiber.Ctx) *SessionClaims {
	claims, _ := c.Locals(userKey).(*SessionClaims)
	return claims
}

// IsAPI reports whether the request targets the JSON endpoints
func IsAPI(c *fiber.Ctx) bool {
	return strings.HasPrefix(c.Path(), "/api/") || c.Get(fiber.HeaderContentType) == fiber.MIMEApplicationJSON
}

// RequireLogin rejects anonymous requests: pages redirect to the login
// form, JSON endpoints answer 401
func RequireLogin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if CurrentUser(c) != nil {
			return c.Next()
		}
		if IsAPI(c) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "login required",
			})
		}
		SetFlash(c, "danger", "Please log in to access this page.")
		return c.Redirect("/login")
	}
}

// Flash is a one-shot message shown on the next page
type Flash struct {
	Category string
	Message  string
}

// SetFlash stores a message for the next rendered page
func SetFlash(c *fiber.Ctx, category, message string) {
	c.Cookie(&fiber.Cookie{
		Name:     FlashCookie,
		Value:    url.QueryEscape(category + "|" + message),
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// PopFlash returns and clears the pending message
func PopFlash(c *fiber.Ctx) *Flash {
	raw := c.Cookies(FlashCookie)
	if raw == "" {
		return nil
	}
	expireCookie(c, FlashCookie)

	value, err := url.QueryUnescape(raw)
	if err != nil {
		return nil
	}
	category, message, ok := strings.Cut(value, "|")
	if !ok {
		return nil
	}
	return &Flash{Category: category, Message: message}
}

func expireCookie(c *fiber.Ctx, name string) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
