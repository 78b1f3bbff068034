package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/anonto42/wingit/backend/internal/models"
	"github.com/anonto42/wingit/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ReportHandler lets users flag posts and admins review them
type ReportHandler struct {
	reportRepository repositories.ReportRepository
	postRepository   repositories.PostRepository
	userRepository   repositories.UserRepository
	log              *zap.Logger
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(repos *Repositories, log *zap.Logger) *ReportHandler {
	return &ReportHandler{
		reportRepository: repos.Reports,
		postRepository:   repos.Posts,
		userRepository:   repos.Users,
		log:              log,
	}
}

// RegisterReportRoutes registers the routes any user can call.
func (h *ReportHandler) RegisterReportRoutes(g *echo.Group) {
	g.POST("/reports", h.CreateReport)
	g.GET("/reports/mine", h.GetMyReports)
}

// RegisterAdminRoutes registers the moderation routes. g must already
// require the admin role.
func (h *ReportHandler) RegisterAdminRoutes(g *echo.Group) {
	g.GET("/reports", h.ListReports)
	g.PUT("/reports/:id", h.ReviewReport)
	g.GET("/users", h.ListUsers)
	g.PUT("/users/:id/role", h.UpdateUserRole)
}

func (h *ReportHandler) CreateReport(c echo.Context) error {
	var req models.CreateReportRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if _, err := h.postRepository.GetPostByID(req.PostID); err != nil {
		return notFoundOr(err, "Post not found")
	}

	report := &models.Report{
		ReporterID: getUserIDFromContext(c),
		PostID:     req.PostID,
		Reason:     strings.TrimSpace(req.Reason),
	}
	if err := h.reportRepository.CreateReport(report); err != nil {
		if errors.Is(err, repositories.ErrAlreadyExists) {
			return echo.NewHTTPError(http.StatusConflict, "You have already reported this post")
		}
		return internalError(err)
	}
	return success(c, http.StatusCreated, report)
}

func (h *ReportHandler) GetMyReports(c echo.Context) error {
	reports, err := h.reportRepository.GetReportsByReporter(getUserIDFromContext(c))
	if err != nil {
		return internalError(err)
	}
	return success(c, http.StatusOK, echo.Map{"reports": reports})
}

// ListReports pages through reports, optionally filtered by ?status=.
func (h *ReportHandler) ListReports(c echo.Context) error {
	status := strings.ToUpper(strings.TrimSpace(c.QueryParam("status")))
	switch status {
	case "", models.ReportPending, models.ReportReviewed, models.ReportDismissed, models.ReportActionTaken:
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid status filter")
	}
	page, limit := pagination(c)

	reports, total, err := h.reportRepository.ListReports(status, page, limit)
	if err != nil {
		return internalError(err)
	}
	return paged(c, echo.Map{"reports": reports}, page, limit, total)
}

func (h *ReportHandler) ReviewReport(c echo.Context) error {
	id, err := parseID(c, "id", "report")
	if err != nil {
		return err
	}
	var req models.ReviewReportRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	reviewerID := getUserIDFromContext(c)
	report, err := h.reportRepository.UpdateStatus(id, req.Status, reviewerID)
	if err != nil {
		return notFoundOr(err, "Report not found")
	}
	h.log.Info("report reviewed", zap.Uint("report_id", id), zap.String("status", req.Status), zap.Uint("reviewer_id", reviewerID))
	return success(c, http.StatusOK, report)
}

func (h *ReportHandler) ListUsers(c echo.Context) error {
	page, limit := pagination(c)
	users, total, err := h.userRepository.ListUsers(page, limit)
	if err != nil {
		return internalError(err)
	}
	dtos := make([]models.UserDTO, len(users))
	for i := range users {
		dtos[i] = users[i].ToDTO()
	}
	return paged(c, echo.Map{"users": dtos}, page, limit, total)
}

// UpdateUserRole changes a user's role. Admins cannot demote themselves.
func (h *ReportHandler) UpdateUserRole(c echo.Context) error {
	id, err := parseID(c, "id", "user")
	if err != nil {
		return err
	}
	var req models.UpdateRoleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	adminID := getUserIDFromContext(c)
	if id == adminID && req.Role != models.RoleAdmin {
		return echo.NewHTTPError(http.StatusBadRequest, "Cannot remove your own admin role")
	}

	if err := h.userRepository.UpdateRole(id, req.Role); err != nil {
		return notFoundOr(err, "User not found")
	}
	user, err := h.userRepository.GetUserByID(id)
	if err != nil {
		return internalError(err)
	}
	h.log.Info("user role changed", zap.Uint("user_id", id), zap.String("role", req.Role), zap.Uint("admin_id", adminID))
	return success(c, http.StatusOK, user.ToDTO())
}
