package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/campuslib/library-service/internal/model"
	"github.com/campuslib/library-service/internal/policy"
)

func (h *Handler) CreateReview(c echo.Context) error {
	var req model.CreateReviewRequest
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
	if _, err := authorize(c, policy.OpCreate, policy.Object{Resource: policy.ResourceReview, Owner: sub.Username}); err != nil {
		return err
	}

	review, err := h.reviewSvc.Create(c.Request().Context(), sub.Username, c.Param("bookUid"), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, review)
}

func (h *Handler) ListReviews(c echo.Context) error {
	if _, err := authorize(c, policy.OpRead, policy.Object{Resource: policy.ResourceReview}); err != nil {
		return err
	}

	items, err := h.reviewSvc.List(c.Request().Context(), c.Param("bookUid"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) DeleteReview(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.New("id is invalid"))
	}

	review, err := h.reviewSvc.Get(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	if _, err := authorize(c, policy.OpDelete, policy.Object{Resource: policy.ResourceReview, Owner: review.Username}); err != nil {
		return err
	}

	if err := h.reviewSvc.Delete(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
