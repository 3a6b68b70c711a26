package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/campuslib/library-service/internal/errs"
	"github.com/campuslib/library-service/internal/model"
	"github.com/campuslib/library-service/internal/policy"
)

// RequestBorrowing godoc
//
//	@Summary	Request to borrow a book
//	@Tags		borrowings
//	@Param		request	body		model.BorrowRequest	true	"borrow request"
//	@Success	201		{object}	model.BorrowingRecord
//	@Router		/api/v1/borrowings [post]
func (h *Handler) RequestBorrowing(c echo.Context) error {
	var req model.BorrowRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	// creation is always for the requesting actor; the record owner is the subject
	sub, err := subject(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	if _, err := authorize(c, policy.OpCreate, policy.Object{Resource: policy.ResourceBorrowing, Owner: sub.Username}); err != nil {
		return err
	}

	rec, err := h.circulationSvc.Request(c.Request().Context(), sub.Username, req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, rec)
}

func (h *Handler) ListBorrowings(c echo.Context) error {
	sub, err := subject(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}

	// staff may list everyone's records, others only their own
	username := sub.Username
	if c.QueryParam("all") == "true" && policy.IsStaff(sub) {
		username = ""
	}
	if _, err := authorize(c, policy.OpRead, policy.Object{Resource: policy.ResourceBorrowing, Owner: username}); err != nil {
		return err
	}

	overdueOnly := c.QueryParam("overdue") == "true"
	items, err := h.circulationSvc.ListBorrowings(c.Request().Context(), username, overdueOnly)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) GetBorrowing(c echo.Context) error {
	rec, err := h.circulationSvc.GetBorrowing(c.Request().Context(), c.Param("recordUid"))
	if err != nil {
		return httpError(err)
	}
	if _, err := authorize(c, policy.OpRead, policy.Object{Resource: policy.ResourceBorrowing, Owner: rec.Username}); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rec)
}

// ApproveBorrowing godoc
//
//	@Summary	Approve a pending request (librarian or admin)
//	@Tags		borrowings
//	@Success	200	{object}	model.BorrowingRecord
//	@Router		/api/v1/borrowings/{recordUid}/approve [post]
func (h *Handler) ApproveBorrowing(c echo.Context) error {
	sub, staffErr := h.requireStaffUpdate(c)
	if staffErr != nil {
		return staffErr
	}

	rec, err := h.circulationSvc.Approve(c.Request().Context(), sub.Username, c.Param("recordUid"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) RejectBorrowing(c echo.Context) error {
	sub, staffErr := h.requireStaffUpdate(c)
	if staffErr != nil {
		return staffErr
	}

	rec, err := h.circulationSvc.Reject(c.Request().Context(), sub.Username, c.Param("recordUid"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) ReturnBorrowing(c echo.Context) error {
	recordUid := c.Param("recordUid")
	rec, err := h.circulationSvc.GetBorrowing(c.Request().Context(), recordUid)
	if err != nil {
		return httpError(err)
	}
	// owner self-service return, or staff force-return
	if _, err := authorize(c, policy.OpUpdate, policy.Object{Resource: policy.ResourceBorrowing, Owner: rec.Username}); err != nil {
		return err
	}

	returned, err := h.circulationSvc.Return(c.Request().Context(), recordUid)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, returned)
}

func (h *Handler) RenewBorrowing(c echo.Context) error {
	recordUid := c.Param("recordUid")
	rec, err := h.circulationSvc.GetBorrowing(c.Request().Context(), recordUid)
	if err != nil {
		return httpError(err)
	}
	sub, err := authorize(c, policy.OpUpdate, policy.Object{Resource: policy.ResourceBorrowing, Owner: rec.Username})
	if err != nil {
		return err
	}
	// renewing is the holder's own operation, not a staff one
	if sub.Username != rec.Username {
		return echo.NewHTTPError(http.StatusForbidden, errs.ErrUnauthorized.Error())
	}

	renewed, err := h.circulationSvc.Renew(c.Request().Context(), recordUid)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, renewed)
}

// requireStaffUpdate gates the approval-workflow operations. The empty
// Owner keeps the ownership clause from matching, so only the librarian
// and admin clauses of the update rule can allow.
func (h *Handler) requireStaffUpdate(c echo.Context) (policy.Subject, error) {
	return authorize(c, policy.OpUpdate, policy.Object{Resource: policy.ResourceBorrowing})
}
