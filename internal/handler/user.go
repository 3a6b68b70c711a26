package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/campuslib/library-service/internal/model"
	"github.com/campuslib/library-service/internal/policy"
	"github.com/campuslib/library-service/pkg/auth"
)

// Register is invoked by the external identity provider when a user
// signs up. It creates the profile row and the default student grant;
// duplicates are ignored so the provider may retry.
func (h *Handler) Register(c echo.Context) error {
	var req model.RegisterUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.userSvc.Register(c.Request().Context(), req); err != nil {
		return httpError(err)
	}
	return c.String(http.StatusCreated, "ok")
}

func (h *Handler) Me(c echo.Context) error {
	ctx := c.Request().Context()
	username, err := auth.GetUserName(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}

	user, err := h.userSvc.GetUser(ctx, username)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, user)
}

// MyRoles returns the caller's own grants; role rows are readable by
// their owner only.
func (h *Handler) MyRoles(c echo.Context) error {
	sub, err := subject(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	if _, err := authorize(c, policy.OpRead, policy.Object{Resource: policy.ResourceRole, Owner: sub.Username}); err != nil {
		return err
	}

	roles, err := h.userSvc.GetRoles(c.Request().Context(), sub.Username)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, roles)
}

func (h *Handler) GrantRole(c echo.Context) error {
	username := c.Param("username")
	if _, err := authorize(c, policy.OpCreate, policy.Object{Resource: policy.ResourceRole, Owner: username}); err != nil {
		return err
	}

	var req model.RoleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.userSvc.GrantRole(c.Request().Context(), username, req.Role); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusCreated)
}

func (h *Handler) RevokeRole(c echo.Context) error {
	username := c.Param("username")
	if _, err := authorize(c, policy.OpDelete, policy.Object{Resource: policy.ResourceRole, Owner: username}); err != nil {
		return err
	}

	role := model.Role(c.Param("role"))
	if err := h.userSvc.RevokeRole(c.Request().Context(), username, role); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
