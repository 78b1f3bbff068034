package repositories

import (
	"time"

	"github.com/anonto42/wingit/backend/internal/models"
	"gorm.io/gorm"
)

type ReportRepository interface {
	CreateReport(report *models.Report) error
	GetReportByID(id uint) (*models.Report, error)
	GetReportsByReporter(reporterID uint) ([]models.Report, error)
	ListReports(status string, page, limit int) ([]models.Report, int64, error)
	UpdateStatus(id uint, status string, reviewerID uint) (*models.Report, error)
}

type PostgresReportRepository struct {
	db *gorm.DB
}

func NewPostgresReportRepository(db *gorm.DB) *PostgresReportRepository {
	return &PostgresReportRepository{db: db}
}

// CreateReport rejects a second pending report by the same user on a post.
func (r *PostgresReportRepository) CreateReport(report *models.Report) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Report{}).
			Where("reporter_id = ? AND post_id = ? AND status = ?", report.ReporterID, report.PostID, models.ReportPending).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrAlreadyExists
		}
		report.Status = models.ReportPending
		return tx.Create(report).Error
	})
}

func (r *PostgresReportRepository) GetReportByID(id uint) (*models.Report, error) {
	var report models.Report
	if err := r.db.First(&report, id).Error; err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *PostgresReportRepository) GetReportsByReporter(reporterID uint) ([]models.Report, error) {
	var reports []models.Report
	err := r.db.Where("reporter_id = ?", reporterID).Order("created_at DESC").Order("id DESC").Find(&reports).Error
	return reports, err
}

func (r *PostgresReportRepository) ListReports(status string, page, limit int) ([]models.Report, int64, error) {
	scope := func(db *gorm.DB) *gorm.DB {
		if status != "" {
			return db.Where("status = ?", status)
		}
		return db
	}
	var total int64
	if err := r.db.Model(&models.Report{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var reports []models.Report
	err := r.db.Scopes(scope).
		Order("created_at DESC").Order("id DESC").
		Offset(offset(page, limit)).Limit(limit).
		Find(&reports).Error
	return reports, total, err
}

func (r *PostgresReportRepository) UpdateStatus(id uint, status string, reviewerID uint) (*models.Report, error) {
	report, err := r.GetReportByID(id)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	report.Status = status
	report.ReviewedByID = &reviewerID
	report.ReviewedAt = &now
	if err := r.db.Save(report).Error; err != nil {
		return nil, err
	}
	return report, nil
}
