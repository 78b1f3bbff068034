package handlers

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/anonto42/wingit/backend/internal/middleware"
	"github.com/anonto42/wingit/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

const (
	defaultPageSize = 20
	maxPageSize     = 50
)

// getUserIDFromContext returns the authenticated user's id, or 0.
func getUserIDFromContext(c echo.Context) uint {
	if p := middleware.CurrentUser(c); p != nil {
		return p.UserID
	}
	return 0
}

func parseID(c echo.Context, name, what string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid "+what+" ID")
	}
	return uint(id), nil
}

// pagination reads page and limit, defaulting to 1 and 20 (max 50).
func pagination(c echo.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.QueryParam("page"))
	limit, _ = strconv.Atoi(c.QueryParam("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > maxPageSize {
		limit = defaultPageSize
	}
	return page, limit
}

func pageMeta(page, limit int, total int64) echo.Map {
	totalPages := int(math.Ceil(float64(total) / float64(limit)))
	return echo.Map{
		"currentPage":     page,
		"totalPages":      totalPages,
		"totalItems":      total,
		"itemsPerPage":    limit,
		"hasNextPage":     page < totalPages,
		"hasPreviousPage": page > 1,
	}
}

func success(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, echo.Map{"success": true, "data": data})
}

func paged(c echo.Context, data interface{}, page, limit int, total int64) error {
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    data,
		"meta":    pageMeta(page, limit, total),
	})
}

// notFoundOr maps repositories.ErrNotFound to a 404 with msg and anything
// else to a 500.
func notFoundOr(err error, msg string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, msg)
	}
	return internalError(err)
}

// conflictOr is notFoundOr for unique violations.
func conflictOr(err error, msg string) error {
	if errors.Is(err, repositories.ErrAlreadyExists) {
		return echo.NewHTTPError(http.StatusConflict, msg)
	}
	return internalError(err)
}

func internalError(err error) error {
	return echo.NewHTTPError(http.StatusInternalServerError).SetInternal(err)
}

func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	return c.Validate(req)
}

// displayName is the caller's display name, falling back to the username.
func displayName(c echo.Context) string {
	p := middleware.CurrentUser(c)
	if p == nil {
		return ""
	}
	if p.User != nil && p.User.Profile.DisplayName != "" {
		return p.User.Profile.DisplayName
	}
	return p.Username
}
