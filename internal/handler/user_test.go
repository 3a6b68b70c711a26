package handler_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campuslib/library-service/internal/errs"
	"github.com/campuslib/library-service/internal/handler"
	service_mocks "github.com/campuslib/library-service/internal/handler/mocks"
	"github.com/campuslib/library-service/internal/model"
	"github.com/campuslib/library-service/pkg/validate"
)

func TestHandler_GrantRole(t *testing.T) {
	t.Parallel()

	type actor struct {
		username string
		roles    []string
	}
	type response struct {
		expectedCode int
		expectedBody string
	}
	type mockBehavior func(r *service_mocks.MockUserService)

	var tests = []struct {
		name         string
		actor        actor
		target       string
		body         string
		mockBehavior mockBehavior
		response     response
	}{
		{
			name:   "ok. admin grants librarian",
			actor:  actor{username: "admin1", roles: []string{"admin"}},
			target: "reader1",
			body:   `{"role":"librarian"}`,
			mockBehavior: func(r *service_mocks.MockUserService) {
				r.EXPECT().GrantRole(gomock.Any(), "reader1", model.RoleLibrarian).Return(nil)
			},
			response: response{
				expectedCode: http.StatusCreated,
				expectedBody: "",
			},
		},
		{
			name:         "err. librarian may not grant",
			actor:        actor{username: "lib1", roles: []string{"librarian"}},
			target:       "reader1",
			body:         `{"role":"librarian"}`,
			mockBehavior: func(r *service_mocks.MockUserService) {},
			response: response{
				expectedCode: http.StatusForbidden,
				expectedBody: `{"message":"operation is not permitted"}`,
			},
		},
		{
			name:         "err. self-grant denied without admin",
			actor:        actor{username: "reader1", roles: []string{"student"}},
			target:       "reader1",
			body:         `{"role":"admin"}`,
			mockBehavior: func(r *service_mocks.MockUserService) {},
			response: response{
				expectedCode: http.StatusForbidden,
				expectedBody: `{"message":"operation is not permitted"}`,
			},
		},
		{
			name:         "err. unknown role",
			actor:        actor{username: "admin1", roles: []string{"admin"}},
			target:       "reader1",
			body:         `{"role":"superuser"}`,
			mockBehavior: func(r *service_mocks.MockUserService) {},
			response: response{
				expectedCode: http.StatusBadRequest,
			},
		},
		{
			name:   "err. unknown user",
			actor:  actor{username: "admin1", roles: []string{"admin"}},
			target: "ghost",
			body:   `{"role":"librarian"}`,
			mockBehavior: func(r *service_mocks.MockUserService) {
				r.EXPECT().GrantRole(gomock.Any(), "ghost", model.RoleLibrarian).Return(errs.ErrNotFound)
			},
			response: response{
				expectedCode: http.StatusNotFound,
				expectedBody: `{"message":"not found"}`,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := gomock.NewController(t)
			defer c.Finish()
			svc := service_mocks.NewMockUserService(c)
			log := zap.NewExample().Named("test")
			h := handler.New(nil, nil, nil, svc, nil, log)

			e := echo.New()
			e.Validator = validate.NewCustomValidator()
			e.POST("/api/v1/users/:username/roles", h.GrantRole,
				asUser(tt.actor.username, tt.actor.roles...))

			r := httptest.NewRequest(http.MethodPost, "/api/v1/users/"+tt.target+"/roles", strings.NewReader(tt.body))
			r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			w := httptest.NewRecorder()

			tt.mockBehavior(svc)
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			if tt.response.expectedBody != "" {
				require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
			}
		})
	}
}

func TestHandler_RevokeRole(t *testing.T) {
	t.Parallel()

	type actor struct {
		username string
		roles    []string
	}
	type response struct {
		expectedCode int
		expectedBody string
	}
	type mockBehavior func(r *service_mocks.MockUserService)

	var tests = []struct {
		name         string
		actor        actor
		mockBehavior mockBehavior
		response     response
	}{
		{
			name:  "ok. admin revokes",
			actor: actor{username: "admin1", roles: []string{"admin"}},
			mockBehavior: func(r *service_mocks.MockUserService) {
				r.EXPECT().RevokeRole(gomock.Any(), "reader1", model.RoleLibrarian).Return(nil)
			},
			response: response{
				expectedCode: http.StatusNoContent,
				expectedBody: "",
			},
		},
		{
			name:         "err. student may not revoke",
			actor:        actor{username: "reader1", roles: []string{"student"}},
			mockBehavior: func(r *service_mocks.MockUserService) {},
			response: response{
				expectedCode: http.StatusForbidden,
				expectedBody: `{"message":"operation is not permitted"}`,
			},
		},
		{
			name:  "err. grant does not exist",
			actor: actor{username: "admin1", roles: []string{"admin"}},
			mockBehavior: func(r *service_mocks.MockUserService) {
				r.EXPECT().RevokeRole(gomock.Any(), "reader1", model.RoleLibrarian).Return(errs.ErrNotFound)
			},
			response: response{
				expectedCode: http.StatusNotFound,
				expectedBody: `{"message":"not found"}`,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := gomock.NewController(t)
			defer c.Finish()
			svc := service_mocks.NewMockUserService(c)
			log := zap.NewExample().Named("test")
			h := handler.New(nil, nil, nil, svc, nil, log)

			e := echo.New()
			e.Validator = validate.NewCustomValidator()
			e.DELETE("/api/v1/users/:username/roles/:role", h.RevokeRole,
				asUser(tt.actor.username, tt.actor.roles...))

			r := httptest.NewRequest(http.MethodDelete, "/api/v1/users/reader1/roles/librarian", http.NoBody)
			r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			w := httptest.NewRecorder()

			tt.mockBehavior(svc)
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}
