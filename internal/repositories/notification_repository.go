package repositories

import (
	"time"

	"github.com/anonto42/wingit/backend/internal/models"
	"gorm.io/gorm"
)

// NotificationRepository defines the interface for notification operations
type NotificationRepository interface {
	CreateNotification(notification *models.Notification) error
	GetByID(id, recipientID uint) (*models.Notification, error)
	GetByRecipientID(recipientID uint, unreadOnly bool, page, limit int) ([]models.Notification, int64, error)
	GetGrouped(recipientID uint, now time.Time) (today, yesterday, thisWeek, older []models.Notification, err error)
	GetUnreadCount(recipientID uint) (int64, error)
	MarkAsRead(id, recipientID uint) error
	MarkAllAsRead(recipientID uint) (int64, error)
	Delete(id, recipientID uint) error
	DeleteReadBefore(cutoff time.Time) (int64, error)
}

type PostgresNotificationRepository struct {
	db *gorm.DB
}

func NewPostgresNotificationRepository(db *gorm.DB) *PostgresNotificationRepository {
	return &PostgresNotificationRepository{db: db}
}

func (r *PostgresNotificationRepository) CreateNotification(notification *models.Notification) error {
	return r.db.Create(notification).Error
}

// GetByID only returns the notification when it belongs to recipientID.
func (r *PostgresNotificationRepository) GetByID(id, recipientID uint) (*models.Notification, error) {
	var n models.Notification
	if err := r.db.Where("id = ? AND recipient_id = ?", id, recipientID).First(&n).Error; err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *PostgresNotificationRepository) GetByRecipientID(recipientID uint, unreadOnly bool, page, limit int) ([]models.Notification, int64, error) {
	scope := func(db *gorm.DB) *gorm.DB {
		db = db.Where("recipient_id = ?", recipientID)
		if unreadOnly {
			db = db.Where("is_read = ?", false)
		}
		return db
	}

	var total int64
	if err := r.db.Model(&models.Notification{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var notifications []models.Notification
	err := r.db.Scopes(scope).
		Order("created_at DESC").Order("id DESC").
		Offset(offset(page, limit)).Limit(limit).
		Find(&notifications).Error
	return notifications, total, err
}

// GetGrouped buckets the recipient's notifications relative to now. The
// older bucket is capped at 50 rows.
func (r *PostgresNotificationRepository) GetGrouped(recipientID uint, now time.Time) (today, yesterday, thisWeek, older []models.Notification, err error) {
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	yesterdayStart := todayStart.AddDate(0, 0, -1)
	weekStart := todayStart.AddDate(0, 0, -7)

	if err = r.db.Where("recipient_id = ? AND created_at >= ?", recipientID, todayStart).
		Order("created_at DESC").Find(&today).Error; err != nil {
		return nil, nil, nil, nil, err
	}

	if err = r.db.Where("recipient_id = ? AND created_at >= ? AND created_at < ?", recipientID, yesterdayStart, todayStart).
		Order("created_at DESC").Find(&yesterday).Error; err != nil {
		return nil, nil, nil, nil, err
	}

	// excludes today and yesterday
	if err = r.db.Where("recipient_id = ? AND created_at >= ? AND created_at < ?", recipientID, weekStart, yesterdayStart).
		Order("created_at DESC").Find(&thisWeek).Error; err != nil {
		return nil, nil, nil, nil, err
	}

	if err = r.db.Where("recipient_id = ? AND created_at < ?", recipientID, weekStart).
		Order("created_at DESC").Limit(50).Find(&older).Error; err != nil {
		return nil, nil, nil, nil, err
	}

	return today, yesterday, thisWeek, older, nil
}

func (r *PostgresNotificationRepository) GetUnreadCount(recipientID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Notification{}).Where("recipient_id = ? AND is_read = ?", recipientID, false).Count(&count).Error
	return count, err
}

func (r *PostgresNotificationRepository) MarkAsRead(id, recipientID uint) error {
	n, err := r.GetByID(id, recipientID)
	if err != nil {
		return err
	}
	if n.IsRead {
		return nil
	}
	return r.db.Model(n).Update("is_read", true).Error
}

func (r *PostgresNotificationRepository) MarkAllAsRead(recipientID uint) (int64, error) {
	res := r.db.Model(&models.Notification{}).Where("recipient_id = ? AND is_read = ?", recipientID, false).Update("is_read", true)
	return res.RowsAffected, res.Error
}

func (r *PostgresNotificationRepository) Delete(id, recipientID uint) error {
	res := r.db.Where("id = ? AND recipient_id = ?", id, recipientID).Delete(&models.Notification{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteReadBefore removes read notifications created before cutoff.
func (r *PostgresNotificationRepository) DeleteReadBefore(cutoff time.Time) (int64, error) {
	res := r.db.Where("is_read = ? AND created_at < ?", true, cutoff).Delete(&models.Notification{})
	return res.RowsAffected, res.Error
}
