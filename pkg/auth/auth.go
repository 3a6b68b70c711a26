package auth

import (
	"context"
	"os"

	"github.com/golang-jwt/jwt/v4"
	"github.com/pkg/errors"
)

// JWTKey signs and verifies locally issued tokens. In production the
// external identity provider issues RS256 tokens instead (pkg/auth0).
var JWTKey = []byte(getEnv("JWT_KEY", "campuslib-dev-key"))

const (
	XUserNameHeader = "X-User-Name"
)

type Claims struct {
	Profile struct {
		Username string `json:"username"`
	} `json:"profile"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type ctxKey int

const (
	userNameKey ctxKey = iota + 1
	userRolesKey
)

func SetUserName(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, userNameKey, username)
}

func GetUserName(ctx context.Context) (string, error) {
	username, ok := ctx.Value(userNameKey).(string)
	if !ok || username == "" {
		return "", errors.New("no authenticated user in context")
	}
	return username, nil
}

// SetRoles stores the actor's role set resolved from the role store.
func SetRoles(ctx context.Context, roles []string) context.Context {
	return context.WithValue(ctx, userRolesKey, roles)
}

// GetRoles returns the actor's role set. The empty set is a valid
// (deny-everything) answer, not an error.
func GetRoles(ctx context.Context) []string {
	roles, _ := ctx.Value(userRolesKey).([]string)
	return roles
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
