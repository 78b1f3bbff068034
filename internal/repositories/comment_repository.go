package repositories

import (
	"github.com/anonto42/wingit/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	CreateComment(comment *models.Comment) error
	GetCommentByID(id uint) (*models.Comment, error)
	GetCommentsByPostID(postID uint) ([]models.Comment, error)
	CountByPostIDs(postIDs []uint) (map[uint]int64, error)
	UpdateComment(comment *models.Comment) error
	DeleteComment(id uint) error
}

// PostgresCommentRepository implements CommentRepository on any gorm dialect.
type PostgresCommentRepository struct {
	db *gorm.DB
}

// NewPostgresCommentRepository creates a new PostgresCommentRepository
func NewPostgresCommentRepository(db *gorm.DB) *PostgresCommentRepository {
	return &PostgresCommentRepository{db: db}
}

func (r *PostgresCommentRepository) CreateComment(comment *models.Comment) error {
	return r.db.Omit(clause.Associations).Create(comment).Error
}

func (r *PostgresCommentRepository) GetCommentByID(id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.Preload("User.Profile").First(&comment, id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// GetCommentsByPostID returns every comment on the post, oldest first.
func (r *PostgresCommentRepository) GetCommentsByPostID(postID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.Preload("User.Profile").
		Where("post_id = ?", postID).
		Order("created_at ASC").Order("id ASC").
		Find(&comments).Error
	return comments, err
}

func (r *PostgresCommentRepository) CountByPostIDs(postIDs []uint) (map[uint]int64, error) {
	result := make(map[uint]int64, len(postIDs))
	if len(postIDs) == 0 {
		return result, nil
	}
	var rows []struct {
		PostID uint
		Total  int64
	}
	err := r.db.Model(&models.Comment{}).
		Select("post_id, COUNT(*) AS total").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		result[row.PostID] = row.Total
	}
	return result, nil
}

func (r *PostgresCommentRepository) UpdateComment(comment *models.Comment) error {
	return r.db.Omit(clause.Associations).Save(comment).Error
}

// DeleteComment removes the comment, its replies and their reactions.
func (r *PostgresCommentRepository) DeleteComment(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Comment{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrNotFound
		}
		return deleteCommentRows(tx, []uint{id})
	})
}

// deleteCommentRows deletes the given comments, all of their descendants
// and the notifications that point at them.
func deleteCommentRows(tx *gorm.DB, ids []uint) error {
	all := append([]uint(nil), ids...)
	frontier := ids
	for len(frontier) > 0 {
		var children []uint
		if err := tx.Model(&models.Comment{}).Where("parent_id IN ?", frontier).Pluck("id", &children).Error; err != nil {
			return err
		}
		all = append(all, children...)
		frontier = children
	}
	if len(all) == 0 {
		return nil
	}
	if err := tx.Where("comment_id IN ?", all).Delete(&models.CommentReaction{}).Error; err != nil {
		return err
	}
	if err := tx.Where("target_type = ? AND target_id IN ?", "comment", idStrings(all)).Delete(&models.Notification{}).Error; err != nil {
		return err
	}
	return tx.Where("id IN ?", all).Delete(&models.Comment{}).Error
}
