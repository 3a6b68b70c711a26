package handler_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campuslib/library-service/internal/errs"
	"github.com/campuslib/library-service/internal/handler"
	service_mocks "github.com/campuslib/library-service/internal/handler/mocks"
	"github.com/campuslib/library-service/internal/model"
	"github.com/campuslib/library-service/internal/repository"
	"github.com/campuslib/library-service/pkg/validate"
)

func TestHandler_ListBooks(t *testing.T) {
	t.Parallel()
	type input struct {
		query      string
		page, size string
	}
	type response struct {
		expectedCode int
		expectedBody string
	}
	type mockBehavior func(r *service_mocks.MockCatalogService)

	var tests = []struct {
		name         string
		input        input
		mockBehavior mockBehavior
		response     response
	}{
		{
			name:  "ok",
			input: input{query: "distributed", page: "1", size: "10"},
			mockBehavior: func(r *service_mocks.MockCatalogService) {
				r.EXPECT().
					ListBooks(gomock.Any(), repository.BookFilter{Query: "distributed", Page: 1, Size: 10}).
					Return(model.ListBooks{
						Paging: model.Paging{Page: 1, PageSize: 10, TotalElements: 1},
						Items: []model.Book{
							{
								BookUid:          "f7cdc58f-2caf-4b15-9727-f89dcc629b27",
								Title:            "Designing Data-Intensive Applications",
								Author:           "Martin Kleppmann",
								Publisher:        "O'Reilly",
								ISBN:             "9781449373320",
								Year:             2017,
								Type:             "book",
								AccessType:       "open",
								TotalCopies:      3,
								AvailableCopies:  2,
								RequiresApproval: false,
								MaxBorrowDays:    14,
							},
						},
					}, nil)
			},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `{"page":1,"pageSize":10,"totalElements":1,"items":[{"bookUid":"f7cdc58f-2caf-4b15-9727-f89dcc629b27","title":"Designing Data-Intensive Applications","author":"Martin Kleppmann","publisher":"O'Reilly","isbn":"9781449373320","year":2017,"type":"book","accessType":"open","totalCopies":3,"availableCopies":2,"requiresApproval":false,"maxBorrowDays":14}]}`,
			},
		},
		{
			name:         "err. page is not a number",
			input:        input{page: "one"},
			mockBehavior: func(r *service_mocks.MockCatalogService) {},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"message":"page is invalid"}`,
			},
		},
		{
			name:  "err. internal",
			input: input{},
			mockBehavior: func(r *service_mocks.MockCatalogService) {
				r.EXPECT().
					ListBooks(gomock.Any(), repository.BookFilter{}).
					Return(model.ListBooks{}, errors.New("db internal"))
			},
			response: response{
				expectedCode: http.StatusInternalServerError,
				expectedBody: `{"message":"db internal"}`,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := gomock.NewController(t)
			defer c.Finish()
			svc := service_mocks.NewMockCatalogService(c)
			log := zap.NewExample().Named("test")
			h := handler.New(svc, nil, nil, nil, nil, log)

			e := echo.New()
			e.Validator = validate.NewCustomValidator()
			e.GET("/api/v1/books", h.ListBooks, asUser("reader1", "student"))

			target := fmt.Sprintf("/api/v1/books?query=%s&page=%s&size=%s", tt.input.query, tt.input.page, tt.input.size)
			r := httptest.NewRequest(http.MethodGet, target, http.NoBody)
			r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			w := httptest.NewRecorder()

			tt.mockBehavior(svc)
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_CreateBook(t *testing.T) {
	t.Parallel()

	type actor struct {
		username string
		roles    []string
	}
	type response struct {
		expectedCode int
		expectedBody string
	}
	type mockBehavior func(r *service_mocks.MockCatalogService)

	body := `{"title":"The Go Programming Language","author":"Donovan, Kernighan","totalCopies":2,"maxBorrowDays":21}`

	var tests = []struct {
		name         string
		actor        actor
		body         string
		mockBehavior mockBehavior
		response     response
	}{
		{
			name:  "ok. librarian",
			actor: actor{username: "lib1", roles: []string{"librarian"}},
			body:  body,
			mockBehavior: func(r *service_mocks.MockCatalogService) {
				r.EXPECT().
					CreateBook(gomock.Any(), model.CreateBookRequest{
						Title:         "The Go Programming Language",
						Author:        "Donovan, Kernighan",
						TotalCopies:   2,
						MaxBorrowDays: 21,
					}).
					Return(model.Book{
						BookUid:         "9a3dd0de-13ea-4b76-9203-5e231f0d3a11",
						Title:           "The Go Programming Language",
						Author:          "Donovan, Kernighan",
						TotalCopies:     2,
						AvailableCopies: 2,
						MaxBorrowDays:   21,
					}, nil)
			},
			response: response{
				expectedCode: http.StatusCreated,
				expectedBody: `{"bookUid":"9a3dd0de-13ea-4b76-9203-5e231f0d3a11","title":"The Go Programming Language","author":"Donovan, Kernighan","publisher":"","isbn":"","year":0,"type":"","accessType":"","totalCopies":2,"availableCopies":2,"requiresApproval":false,"maxBorrowDays":21}`,
			},
		},
		{
			name:         "err. student may not create",
			actor:        actor{username: "reader1", roles: []string{"student"}},
			body:         body,
			mockBehavior: func(r *service_mocks.MockCatalogService) {},
			response: response{
				expectedCode: http.StatusForbidden,
				expectedBody: `{"message":"operation is not permitted"}`,
			},
		},
		{
			name:         "err. missing title",
			actor:        actor{username: "lib1", roles: []string{"librarian"}},
			body:         `{"author":"anonymous","maxBorrowDays":21}`,
			mockBehavior: func(r *service_mocks.MockCatalogService) {},
			response: response{
				expectedCode: http.StatusBadRequest,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := gomock.NewController(t)
			defer c.Finish()
			svc := service_mocks.NewMockCatalogService(c)
			log := zap.NewExample().Named("test")
			h := handler.New(svc, nil, nil, nil, nil, log)

			e := echo.New()
			e.Validator = validate.NewCustomValidator()
			e.POST("/api/v1/books", h.CreateBook, asUser(tt.actor.username, tt.actor.roles...))

			r := httptest.NewRequest(http.MethodPost, "/api/v1/books", strings.NewReader(tt.body))
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

func TestHandler_DeleteBook(t *testing.T) {
	t.Parallel()
	const bookUid = "f7cdc58f-2caf-4b15-9727-f89dcc629b27"

	type actor struct {
		username string
		roles    []string
	}
	type response struct {
		expectedCode int
		expectedBody string
	}
	type mockBehavior func(r *service_mocks.MockCatalogService)

	var tests = []struct {
		name         string
		actor        actor
		mockBehavior mockBehavior
		response     response
	}{
		{
			name:  "ok. admin",
			actor: actor{username: "admin1", roles: []string{"admin"}},
			mockBehavior: func(r *service_mocks.MockCatalogService) {
				r.EXPECT().DeleteBook(gomock.Any(), bookUid).Return(nil)
			},
			response: response{
				expectedCode: http.StatusNoContent,
				expectedBody: "",
			},
		},
		{
			name:         "err. librarian may not delete",
			actor:        actor{username: "lib1", roles: []string{"librarian"}},
			mockBehavior: func(r *service_mocks.MockCatalogService) {},
			response: response{
				expectedCode: http.StatusForbidden,
				expectedBody: `{"message":"operation is not permitted"}`,
			},
		},
		{
			name:  "err. circulation history references the book",
			actor: actor{username: "admin1", roles: []string{"admin"}},
			mockBehavior: func(r *service_mocks.MockCatalogService) {
				r.EXPECT().DeleteBook(gomock.Any(), bookUid).Return(errs.ErrBookReferenced)
			},
			response: response{
				expectedCode: http.StatusConflict,
				expectedBody: `{"message":"book is referenced by circulation history"}`,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := gomock.NewController(t)
			defer c.Finish()
			svc := service_mocks.NewMockCatalogService(c)
			log := zap.NewExample().Named("test")
			h := handler.New(svc, nil, nil, nil, nil, log)

			e := echo.New()
			e.Validator = validate.NewCustomValidator()
			e.DELETE("/api/v1/books/:bookUid", h.DeleteBook, asUser(tt.actor.username, tt.actor.roles...))

			r := httptest.NewRequest(http.MethodDelete, "/api/v1/books/"+bookUid, http.NoBody)
			r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			w := httptest.NewRecorder()

			tt.mockBehavior(svc)
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}
