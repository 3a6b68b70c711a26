package auth0

import (
	"context"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/jwks"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/labstack/echo/v4"

	"github.com/campuslib/library-service/pkg/auth"
)

const (
	AuthorizationHeader = "Authorization"
	bearer              = "Bearer "
)

type Config struct {
	Enabled  bool   `yaml:"enabled" envconfig:"AUTH0_ENABLED"`
	Issuer   string `yaml:"issuer" envconfig:"AUTH0_DOMAIN"`
	Audience string `yaml:"audience" envconfig:"AUTH0_AUDIENCE"`
}

// CustomClaims carries the username the identity provider embeds in its tokens.
type CustomClaims struct {
	Scope    string `json:"scope"`
	UserName string `json:"username"`
}

func (c CustomClaims) Validate(ctx context.Context) error {
	return nil
}

// HasScope checks whether our claims have a specific scope.
func (c CustomClaims) HasScope(expectedScope string) bool {
	result := strings.Split(c.Scope, " ")
	for i := range result {
		if result[i] == expectedScope {
			return true
		}
	}

	return false
}

// MiddleWareWithConfig validates RS256 tokens issued by the external
// identity provider and places the authenticated username into the
// request context.
func MiddleWareWithConfig(cfg Config) echo.MiddlewareFunc {
	issuerURL, err := url.Parse("https://" + cfg.Issuer + "/")
	if err != nil {
		log.Fatalf("Failed to parse the issuer url: %v", err)
	}
	provider := jwks.NewCachingProvider(issuerURL, 5*time.Minute)

	jwtValidator, err := validator.New(
		provider.KeyFunc,
		validator.RS256,
		issuerURL.String(),
		[]string{cfg.Audience},
		validator.WithCustomClaims(func() validator.CustomClaims { return &CustomClaims{} }),
		validator.WithAllowedClockSkew(time.Minute),
	)
	if err != nil {
		log.Fatalf("Failed to set up the jwt validator")
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authorization := c.Request().Header.Get(AuthorizationHeader)
			if authorization == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "No Authorization Header")
			}
			if !strings.HasPrefix(authorization, bearer) {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Authorization Header")
			}

			token := strings.TrimPrefix(authorization, bearer)

			claims, err := jwtValidator.ValidateToken(c.Request().Context(), token)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Token")
			}
			validated, ok := claims.(*validator.ValidatedClaims)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Token")
			}

			username := validated.RegisteredClaims.Subject
			if custom, ok := validated.CustomClaims.(*CustomClaims); ok && custom.UserName != "" {
				username = custom.UserName
			}

			req := c.Request()
			ctx := auth.SetUserName(req.Context(), username)
			c.SetRequest(req.WithContext(ctx))

			return next(c)
		}
	}
}
