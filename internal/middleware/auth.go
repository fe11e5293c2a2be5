// Package middleware provides identity resolution, logging, rate limiting and
// tracing middleware for the HTTP surface.
package middleware

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/policy"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	identityLocal = "identity"
	tokenIssuer   = "inkwell-api"
	tokenAudience = "inkwell-web"
	// TokenTTL is how long issued bearer tokens stay valid.
	TokenTTL = 7 * 24 * time.Hour
)

// UserLookup resolves the user a token subject refers to.
type UserLookup interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
}

// Authenticator issues and verifies bearer tokens.
type Authenticator struct {
	secret []byte
	users  UserLookup
}

// NewAuthenticator returns an Authenticator signing with secret.
func NewAuthenticator(secret string, users UserLookup) *Authenticator {
	return &Authenticator{secret: []byte(secret), users: users}
}

// IssueToken returns a signed HS256 token for user.
func (a *Authenticator) IssueToken(user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(user.ID), 10),
		Issuer:    tokenIssuer,
		Audience:  jwt.ClaimStrings{tokenAudience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		ID:        uuid.NewString(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// ParseToken validates tokenString and returns the user ID it was issued for.
func (a *Authenticator) ParseToken(tokenString string) (uint, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return a.secret, nil
	},
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(tokenAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return 0, errors.New("invalid or expired token")
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 32)
	if err != nil || userID == 0 {
		return 0, errors.New("invalid user ID in token")
	}
	return uint(userID), nil
}

// Identify resolves the requester from an optional bearer token. A missing,
// malformed or stale token leaves the request anonymous.
func (a *Authenticator) Identify() fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity := models.Anonymous()

		if tokenString, ok := bearerToken(c.Get(fiber.HeaderAuthorization)); ok {
			if userID, err := a.ParseToken(tokenString); err == nil {
				user, err := a.users.GetByID(c.UserContext(), userID)
				switch {
				case err == nil:
					identity = models.IdentityOf(user)
				case !models.IsNotFound(err):
					Logger.WarnContext(c.UserContext(), "identity lookup failed", "user_id", userID, "error", err)
				}
			}
		}

		c.Locals(identityLocal, identity)
		if identity.Authenticated {
			c.Locals("userID", identity.UserID)
		}
		return c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || scheme != "Bearer" || token == "" {
		return "", false
	}
	return token, true
}

// CurrentIdentity returns the identity resolved for this request.
func CurrentIdentity(c *fiber.Ctx) models.Identity {
	if id, ok := c.Locals(identityLocal).(models.Identity); ok {
		return id
	}
	return models.Anonymous()
}

// LoginRequired redirects anonymous requesters to the login page, carrying the
// original path and query in the next parameter.
func LoginRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !CurrentIdentity(c).Authenticated {
			return c.Redirect(policy.LoginURL(c.OriginalURL()), fiber.StatusFound)
		}
		return c.Next()
	}
}

// AdminRequired rejects anonymous requesters with 401 and non-admins with 403.
func AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity := CurrentIdentity(c)
		if !identity.Authenticated {
			return models.RespondWithError(c, fiber.StatusUnauthorized, models.NewUnauthorizedError("authentication required"))
		}
		if !identity.IsAdmin {
			return models.RespondWithError(c, fiber.StatusForbidden, models.NewForbiddenError("admin access required"))
		}
		return c.Next()
	}
}
