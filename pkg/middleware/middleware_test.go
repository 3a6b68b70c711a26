package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/campuslib/library-service/pkg/auth"
	md "github.com/campuslib/library-service/pkg/middleware"
)

func TestHeaderAuthContext(t *testing.T) {
	t.Parallel()

	var tests = []struct {
		name         string
		userName     string
		expectedCode int
		expectedUser string
	}{
		{
			name:         "ok. gateway identity propagated",
			userName:     "reader1",
			expectedCode: http.StatusOK,
			expectedUser: "reader1",
		},
		{
			name:         "err. header missing",
			userName:     "",
			expectedCode: http.StatusUnauthorized,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e := echo.New()
			e.GET("/whoami", func(c echo.Context) error {
				username, err := auth.GetUserName(c.Request().Context())
				require.NoError(t, err)
				require.Equal(t, tt.expectedUser, username)
				return c.NoContent(http.StatusOK)
			}, md.HeaderAuthContext)

			r := httptest.NewRequest(http.MethodGet, "/whoami", http.NoBody)
			if tt.userName != "" {
				r.Header.Set(auth.XUserNameHeader, tt.userName)
			}
			w := httptest.NewRecorder()

			e.ServeHTTP(w, r)
			require.Equal(t, tt.expectedCode, w.Code)
		})
	}
}

func TestJwtAuthentication_RejectsBadTokens(t *testing.T) {
	t.Parallel()

	var tests = []struct {
		name          string
		authorization string
	}{
		{name: "no header", authorization: ""},
		{name: "not a bearer token", authorization: "Basic abc"},
		{name: "garbage token", authorization: "Bearer not.a.jwt"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e := echo.New()
			e.GET("/", func(c echo.Context) error {
				return c.NoContent(http.StatusOK)
			}, md.JwtAuthentication)

			r := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
			if tt.authorization != "" {
				r.Header.Set(md.AuthorizationHeader, tt.authorization)
			}
			w := httptest.NewRecorder()

			e.ServeHTTP(w, r)
			require.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}
