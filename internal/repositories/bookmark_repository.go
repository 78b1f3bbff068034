package repositories

import (
	"github.com/anonto42/wingit/backend/internal/models"
	"gorm.io/gorm"
)

// BookmarkRepository defines the interface for saved post operations
type BookmarkRepository interface {
	SaveBookmark(bookmark *models.Bookmark) error
	RemoveBookmark(userID, postID uint) error
	IsBookmarked(userID, postID uint) (bool, error)
	GetBookmarksByUser(userID uint, page, limit int) ([]models.Bookmark, int64, error)
	GetBookmarkedPostIDs(userID uint, postIDs []uint) (map[uint]bool, error)
}

type PostgresBookmarkRepository struct {
	db *gorm.DB
}

func NewPostgresBookmarkRepository(db *gorm.DB) *PostgresBookmarkRepository {
	return &PostgresBookmarkRepository{db: db}
}

func (r *PostgresBookmarkRepository) SaveBookmark(bookmark *models.Bookmark) error {
	return r.db.Create(bookmark).Error
}

func (r *PostgresBookmarkRepository) RemoveBookmark(userID, postID uint) error {
	res := r.db.Where("user_id = ? AND post_id = ?", userID, postID).Delete(&models.Bookmark{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresBookmarkRepository) IsBookmarked(userID, postID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.Bookmark{}).Where("user_id = ? AND post_id = ?", userID, postID).Count(&count).Error
	return count > 0, err
}

func (r *PostgresBookmarkRepository) GetBookmarksByUser(userID uint, page, limit int) ([]models.Bookmark, int64, error) {
	var total int64
	if err := r.db.Model(&models.Bookmark{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var saved []models.Bookmark
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Offset(offset(page, limit)).Limit(limit).
		Find(&saved).Error
	return saved, total, err
}

func (r *PostgresBookmarkRepository) GetBookmarkedPostIDs(userID uint, postIDs []uint) (map[uint]bool, error) {
	result := make(map[uint]bool)
	if len(postIDs) == 0 {
		return result, nil
	}
	var saved []models.Bookmark
	if err := r.db.Where("user_id = ? AND post_id IN ?", userID, postIDs).Find(&saved).Error; err != nil {
		return nil, err
	}
	for _, s := range saved {
		result[s.PostID] = true
	}
	return result, nil
}
