package middleware

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"brainix/config"
	"brainix/database"
	"brainix/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

// SessionCookie is the cookie the identity provider sets for same-site sessions
const SessionCookie = "__session"

// SessionClaims are the claims of an identity provider session token
type SessionClaims struct {
	AuthorizedParty string `json:"azp,omitempty"`
	SessionID       string `json:"sid,omitempty"`
	jwt.RegisteredClaims
}

var (
	keyMu  sync.Mutex
	keyPEM string
	rsaKey *rsa.PublicKey
)

func publicKey(pem string) (*rsa.PublicKey, error) {
	keyMu.Lock()
	defer keyMu.Unlock()
	if rsaKey != nil && keyPEM == pem {
		return rsaKey, nil
	}
	key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(pem))
	if err != nil {
		return nil, err
	}
	keyPEM, rsaKey = pem, key
	return key, nil
}

// ParseSessionToken verifies signature, expiry and authorized party of a session token
func ParseSessionToken(tokenString string) (*SessionClaims, error) {
	cfg := config.AppConfig
	claims := &SessionClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if cfg.ClerkJWTPublicKey != "" {
			if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return publicKey(cfg.ClerkJWTPublicKey)
		}
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.Subject == "" {
		return nil, errors.New("invalid token payload")
	}

	if len(cfg.ClerkAuthorizedParties) > 0 && claims.AuthorizedParty != "" {
		allowed := false
		for _, party := range cfg.ClerkAuthorizedParties {
			if party == claims.AuthorizedParty {
				allowed = true
				break
			}
		}
		if !allowed {
			return nil, fmt.Errorf("unauthorized party %q", claims.AuthorizedParty)
		}
	}
	return claims, nil
}

// GenerateJWT signs an HS256 session token for local development and tests
func GenerateJWT(clerkID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   clerkID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now.Add(-time.Minute)),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.AppConfig.JWTSecret))
}

func extractToken(c *fiber.Ctx) string {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(authHeader[len("Bearer "):])
	}
	return c.Cookies(SessionCookie)
}

func authenticate(c *fiber.Ctx, tokenString string) error {
	claims, err := ParseSessionToken(tokenString)
	if err != nil {
		return JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid or expired session!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("clerk_id = ? AND is_deleted = ?", claims.Subject, false).First(&user).Error; err != nil {
		return JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	c.Locals("userId", user.ID)
	c.Locals("user", user)
	return c.Next()
}

// RequireAuth rejects requests without a valid session
func RequireAuth(c *fiber.Ctx) error {
	tokenString := extractToken(c)
	if tokenString == "" {
		return JsonResponse(c, fiber.StatusUnauthorized, false, "Missing or invalid Authorization header", nil)
	}
	return authenticate(c, tokenString)
}

// OptionalAuth resolves the caller when a session is present and lets anonymous requests through
func OptionalAuth(c *fiber.Ctx) error {
	tokenString := extractToken(c)
	if tokenString == "" {
		return c.Next()
	}
	return authenticate(c, tokenString)
}

// CurrentUser returns the user resolved by RequireAuth or OptionalAuth
func CurrentUser(c *fiber.Ctx) (models.User, bool) {
	user, ok := c.Locals("user").(models.User)
	return user, ok
}
