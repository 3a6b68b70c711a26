package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/campuslib/library-service/internal/model"
	"github.com/campuslib/library-service/internal/policy"
)

// CreateReservation godoc
//
//	@Summary	Place a hold on a book
//	@Tags		reservations
//	@Param		reservation	body		model.CreateReservationRequest	true	"reservation"
//	@Success	201			{object}	model.Reservation
//	@Router		/api/v1/reservations [post]
func (h *Handler) CreateReservation(c echo.Context) error {
	var req model.CreateReservationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	sub, err := subject(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	if _, err := authorize(c, policy.OpCreate, policy.Object{Resource: policy.ResourceReservation, Owner: sub.Username}); err != nil {
		return err
	}

	res, err := h.reservationSvc.Create(c.Request().Context(), sub.Username, req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, res)
}

func (h *Handler) ListReservations(c echo.Context) error {
	sub, err := subject(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}

	username := sub.Username
	if c.QueryParam("all") == "true" && policy.IsStaff(sub) {
		username = ""
	}
	if _, err := authorize(c, policy.OpRead, policy.Object{Resource: policy.ResourceReservation, Owner: username}); err != nil {
		return err
	}

	items, err := h.reservationSvc.List(c.Request().Context(), username)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) CancelReservation(c echo.Context) error {
	reservationUid := c.Param("reservationUid")
	res, err := h.reservationSvc.Get(c.Request().Context(), reservationUid)
	if err != nil {
		return httpError(err)
	}
	if _, err := authorize(c, policy.OpUpdate, policy.Object{Resource: policy.ResourceReservation, Owner: res.Username}); err != nil {
		return err
	}

	cancelled, err := h.reservationSvc.Cancel(c.Request().Context(), reservationUid)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, cancelled)
}

// ExpireReservations is the staff sweep over holds whose expiry date has
// passed.
func (h *Handler) ExpireReservations(c echo.Context) error {
	if _, err := authorize(c, policy.OpUpdate, policy.Object{Resource: policy.ResourceReservation}); err != nil {
		return err
	}

	n, err := h.reservationSvc.Expire(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]int64{"expired": n})
}
