// Package middleware provides HTTP middleware for the forum API.
package middleware

import (
	"context"
	"strconv"
	"strings"

	"campuscare/internal/models"
	"campuscare/internal/observability"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// Fiber locals written by the auth middleware.
const (
	LocalUserID = "userID"
	LocalRole   = "role"
)

// TokenIssuer is the expected "iss" claim.
const TokenIssuer = "campus-forum"

// Auth validates bearer tokens signed with a shared HMAC secret. Tokens carry
// the user id in "sub" and the forum role in "role".
type Auth struct {
	secret []byte
}

// NewAuth creates token middleware for secret.
func NewAuth(secret string) *Auth {
	return &Auth{secret: []byte(secret)}
}

// Required rejects requests without a valid token.
func (a *Auth) Required() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c)
		if token == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}
		actor, err := a.parse(token)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized, err)
		}
		setActor(c, actor)
		return c.Next()
	}
}

// Optional attaches the actor when a valid token is present and otherwise
// lets the request through anonymously.
func (a *Auth) Optional() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token := bearerToken(c); token != "" {
			if actor, err := a.parse(token); err == nil {
				setActor(c, actor)
			}
		}
		return c.Next()
	}
}

// CounselorRequired rejects authenticated non-counselors with 403. It must
// run after Required.
func CounselorRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !ActorFrom(c).IsCounselor() {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("Counselor access required"))
		}
		return c.Next()
	}
}

// ActorFrom returns the actor stored by the auth middleware, or
// models.Anonymous.
func ActorFrom(c *fiber.Ctx) models.Actor {
	userID, ok := c.Locals(LocalUserID).(uint)
	if !ok {
		return models.Anonymous
	}
	role, _ := c.Locals(LocalRole).(models.Role)
	return models.Actor{UserID: userID, Role: role}
}

// Sign issues a token for actor. Used by forumctl and tests.
func (a *Auth) Sign(actor models.Actor, claims jwt.MapClaims) (string, error) {
	all := jwt.MapClaims{
		"sub":  strconv.FormatUint(uint64(actor.UserID), 10),
		"role": string(actor.Role),
		"iss":  TokenIssuer,
	}
	for k, v := range claims {
		all[k] = v
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, all).SignedString(a.secret)
}

func (a *Auth) parse(tokenString string) (models.Actor, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return a.secret, nil
	}, jwt.WithIssuer(TokenIssuer))
	if err != nil || !token.Valid {
		return models.Anonymous, models.NewUnauthorizedError("Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return models.Anonymous, models.NewUnauthorizedError("Invalid token claims")
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return models.Anonymous, models.NewUnauthorizedError("Invalid subject claim")
	}
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil || userID == 0 {
		return models.Anonymous, models.NewUnauthorizedError("Invalid user ID in token")
	}

	role := models.RoleStudent
	if raw, _ := claims["role"].(string); models.Role(raw) == models.RoleCounselor {
		role = models.RoleCounselor
	}
	return models.Actor{UserID: uint(userID), Role: role}, nil
}

func bearerToken(c *fiber.Ctx) string {
	parts := strings.Split(c.Get("Authorization"), " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

func setActor(c *fiber.Ctx, actor models.Actor) {
	c.Locals(LocalUserID, actor.UserID)
	c.Locals(LocalRole, actor.Role)
	// Sync to UserContext for logging and downstream services
	ctx := context.WithValue(c.UserContext(), observability.UserIDKey, actor.UserID)
	c.SetUserContext(ctx)
}
