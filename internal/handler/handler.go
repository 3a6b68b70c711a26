package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"

	_ "github.com/campuslib/library-service/docs"
	"github.com/campuslib/library-service/internal/errs"
	"github.com/campuslib/library-service/internal/model"
	"github.com/campuslib/library-service/internal/policy"
	"github.com/campuslib/library-service/pkg/auth"
	md "github.com/campuslib/library-service/pkg/middleware"
	"github.com/campuslib/library-service/pkg/validate"
)

type Handler struct {
	catalogSvc     CatalogService
	circulationSvc CirculationService
	reservationSvc ReservationService
	userSvc        UserService
	reviewSvc      ReviewService
	log            *zap.Logger
}

func New(catalogSvc CatalogService, circulationSvc CirculationService, reservationSvc ReservationService,
	userSvc UserService, reviewSvc ReviewService, log *zap.Logger) *Handler {
	return &Handler{
		catalogSvc:     catalogSvc,
		circulationSvc: circulationSvc,
		reservationSvc: reservationSvc,
		userSvc:        userSvc,
		reviewSvc:      reviewSvc,
		log:            log,
	}
}

// NewRouter builds the echo router. authMW validates the bearer token of
// the external identity provider and is chosen by the app from config.
func (h *Handler) NewRouter(authMW echo.MiddlewareFunc) *echo.Echo {
	e := echo.New()
	const (
		baseRPS = 10
		apiRPS  = 100
	)
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 4 << 10, // 4 KB
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodOptions, http.MethodHead, http.MethodPut, http.MethodPatch, http.MethodPost, http.MethodDelete},
		AllowCredentials: true,
	}))

	base := e.Group("", md.NewRateLimiter(baseRPS))
	base.GET("/manage/health", h.Health)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	e.Validator = validate.NewCustomValidator()
	api := e.Group("/api/v1",
		middleware.RequestLoggerWithConfig(md.RequestLoggerConfig()),
		middleware.RequestID(),
		md.NewRateLimiter(apiRPS),
	)

	// identity provider creation hook; carries no end-user token
	api.POST("/users/register", h.Register)

	authed := api.Group("", authMW, h.RoleContext)

	authed.GET("/books", h.ListBooks)
	authed.GET("/books/:bookUid", h.GetBook)
	authed.POST("/books", h.CreateBook)
	authed.PATCH("/books/:bookUid", h.UpdateBook)
	authed.DELETE("/books/:bookUid", h.DeleteBook)
	authed.POST("/books/:bookUid/copies/increment", h.IncrementCopies)
	authed.POST("/books/:bookUid/copies/decrement", h.DecrementCopies)

	authed.POST("/borrowings", h.RequestBorrowing)
	authed.GET("/borrowings", h.ListBorrowings)
	authed.GET("/borrowings/:recordUid", h.GetBorrowing)
	authed.POST("/borrowings/:recordUid/approve", h.ApproveBorrowing)
	authed.POST("/borrowings/:recordUid/reject", h.RejectBorrowing)
	authed.POST("/borrowings/:recordUid/return", h.ReturnBorrowing)
	authed.POST("/borrowings/:recordUid/renew", h.RenewBorrowing)

	authed.POST("/reservations", h.CreateReservation)
	authed.GET("/reservations", h.ListReservations)
	authed.POST("/reservations/:reservationUid/cancel", h.CancelReservation)
	authed.POST("/reservations/expire", h.ExpireReservations)

	authed.GET("/users/me", h.Me)
	authed.GET("/users/me/roles", h.MyRoles)
	authed.POST("/users/:username/roles", h.GrantRole)
	authed.DELETE("/users/:username/roles/:role", h.RevokeRole)

	authed.POST("/books/:bookUid/reviews", h.CreateReview)
	authed.GET("/books/:bookUid/reviews", h.ListReviews)
	authed.DELETE("/reviews/:id", h.DeleteReview)

	return e
}

func (h *Handler) Health(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

// RoleContext resolves the authenticated actor's role set and stores it in
// the request context. It runs on every authenticated route so revocations
// take effect without re-issuing tokens.
func (h *Handler) RoleContext(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		ctx := req.Context()
		username, err := auth.GetUserName(ctx)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
		}
		roles, err := h.userSvc.GetRoles(ctx, username)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		rs := make([]string, 0, len(roles))
		for _, r := range roles {
			rs = append(rs, string(r))
		}
		c.SetRequest(req.WithContext(auth.SetRoles(ctx, rs)))
		return next(c)
	}
}

// subject reconstructs the policy subject from the request context.
func subject(c echo.Context) (policy.Subject, error) {
	ctx := c.Request().Context()
	username, err := auth.GetUserName(ctx)
	if err != nil {
		return policy.Subject{}, err
	}
	rs := auth.GetRoles(ctx)
	roles := make([]model.Role, 0, len(rs))
	for _, r := range rs {
		roles = append(roles, model.Role(r))
	}
	return policy.Subject{Username: username, Roles: roles}, nil
}

// authorize runs the policy gate; every handler calls it before touching
// the service layer.
func authorize(c echo.Context, op policy.Operation, obj policy.Object) (policy.Subject, error) {
	sub, err := subject(c)
	if err != nil {
		return policy.Subject{}, echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	if !policy.Can(sub, op, obj) {
		return policy.Subject{}, echo.NewHTTPError(http.StatusForbidden, errs.ErrUnauthorized.Error())
	}
	return sub, nil
}

func httpError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, errs.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, errs.ErrUnauthorized):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, errs.ErrRenewalLimitReached):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, errs.ErrInvalidTransition),
		errors.Is(err, errs.ErrNoCopiesAvailable),
		errors.Is(err, errs.ErrAlreadyBorrowed),
		errors.Is(err, errs.ErrDuplicateReservation),
		errors.Is(err, errs.ErrBookReferenced):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
