package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/campuslib/library-service/internal/model"
	"github.com/campuslib/library-service/internal/policy"
	"github.com/campuslib/library-service/internal/repository"
)

// ListBooks godoc
//
//	@Summary	Browse the catalog
//	@Tags		books
//	@Param		query	query	string	false	"pattern matched against title, author and isbn"
//	@Param		showAll	query	bool	false	"include books with no available copies"
//	@Success	200	{object}	model.ListBooks
//	@Router		/api/v1/books [get]
func (h *Handler) ListBooks(c echo.Context) error {
	if _, err := authorize(c, policy.OpRead, policy.Object{Resource: policy.ResourceBook}); err != nil {
		return err
	}

	var (
		err    error
		filter repository.BookFilter
	)
	filter.Query = c.QueryParam("query")
	if pageParam := c.QueryParam("page"); pageParam != "" {
		if filter.Page, err = strconv.Atoi(pageParam); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, errors.New("page is invalid"))
		}
	}
	if sizeParam := c.QueryParam("size"); sizeParam != "" {
		if filter.Size, err = strconv.Atoi(sizeParam); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, errors.New("size is invalid"))
		}
	}
	if showAllParam := c.QueryParam("showAll"); showAllParam != "" {
		if filter.ShowAll, err = strconv.ParseBool(showAllParam); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, errors.New("showAll is invalid"))
		}
	}

	books, err := h.catalogSvc.ListBooks(c.Request().Context(), filter)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, books)
}

func (h *Handler) GetBook(c echo.Context) error {
	if _, err := authorize(c, policy.OpRead, policy.Object{Resource: policy.ResourceBook}); err != nil {
		return err
	}

	book, err := h.catalogSvc.GetBook(c.Request().Context(), c.Param("bookUid"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, book)
}

// CreateBook godoc
//
//	@Summary	Add a catalog entry (librarian or admin)
//	@Tags		books
//	@Param		book	body		model.CreateBookRequest	true	"book"
//	@Success	201		{object}	model.Book
//	@Router		/api/v1/books [post]
func (h *Handler) CreateBook(c echo.Context) error {
	if _, err := authorize(c, policy.OpCreate, policy.Object{Resource: policy.ResourceBook}); err != nil {
		return err
	}

	var req model.CreateBookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	book, err := h.catalogSvc.CreateBook(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, book)
}

func (h *Handler) UpdateBook(c echo.Context) error {
	if _, err := authorize(c, policy.OpUpdate, policy.Object{Resource: policy.ResourceBook}); err != nil {
		return err
	}

	var req model.UpdateBookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	book, err := h.catalogSvc.UpdateBook(c.Request().Context(), c.Param("bookUid"), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, book)
}

func (h *Handler) DeleteBook(c echo.Context) error {
	if _, err := authorize(c, policy.OpDelete, policy.Object{Resource: policy.ResourceBook}); err != nil {
		return err
	}

	if err := h.catalogSvc.DeleteBook(c.Request().Context(), c.Param("bookUid")); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// IncrementCopies exposes the sanctioned saturating increment for staff
// stock corrections.
func (h *Handler) IncrementCopies(c echo.Context) error {
	if _, err := authorize(c, policy.OpUpdate, policy.Object{Resource: policy.ResourceBook}); err != nil {
		return err
	}

	book, err := h.circulationSvc.IncrementCopies(c.Request().Context(), c.Param("bookUid"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, book)
}

func (h *Handler) DecrementCopies(c echo.Context) error {
	if _, err := authorize(c, policy.OpUpdate, policy.Object{Resource: policy.ResourceBook}); err != nil {
		return err
	}

	if err := h.circulationSvc.DecrementCopies(c.Request().Context(), c.Param("bookUid")); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusOK)
}
