package repositories

import (
	"strconv"

	"github.com/anonto42/wingit/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(post *models.Post) error
	GetPostByID(id uint) (*models.Post, error)
	GetPostsByUserID(userID uint, page, limit int) ([]models.Post, int64, error)
	GetAllPosts(page, limit int) ([]models.Post, int64, error)
	GetFeed(userID uint, page, limit int) ([]models.Post, int64, error)
	GetPostsByIDs(ids []uint) ([]models.Post, error)
	UpdatePost(post *models.Post) error
	DeletePost(id uint) error
	AddMedia(media *models.PostMedia) error
	GetMedia(postID uint) ([]models.PostMedia, error)
}

// PostgresPostRepository implements PostRepository on any gorm dialect.
type PostgresPostRepository struct {
	db *gorm.DB
}

func NewPostgresPostRepository(db *gorm.DB) *PostgresPostRepository {
	return &PostgresPostRepository{db: db}
}

func (r *PostgresPostRepository) withDetails() *gorm.DB {
	return r.db.
		Preload("PostType").
		Preload("Media", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("User.Profile")
}

func (r *PostgresPostRepository) CreatePost(post *models.Post) error {
	return r.db.Omit(clause.Associations).Create(post).Error
}

func (r *PostgresPostRepository) GetPostByID(id uint) (*models.Post, error) {
	var post models.Post
	if err := r.withDetails().First(&post, id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *PostgresPostRepository) page(scope func(*gorm.DB) *gorm.DB, page, limit int) ([]models.Post, int64, error) {
	var total int64
	if err := r.db.Model(&models.Post{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var posts []models.Post
	err := r.withDetails().
		Scopes(scope).
		Order("created_at DESC").Order("id DESC").
		Offset(offset(page, limit)).Limit(limit).
		Find(&posts).Error
	return posts, total, err
}

func (r *PostgresPostRepository) GetPostsByUserID(userID uint, page, limit int) ([]models.Post, int64, error) {
	return r.page(func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ?", userID)
	}, page, limit)
}

func (r *PostgresPostRepository) GetAllPosts(page, limit int) ([]models.Post, int64, error) {
	return r.page(func(db *gorm.DB) *gorm.DB { return db }, page, limit)
}

// GetFeed returns posts by the user, their friends and the users they
// follow, excluding anyone on either side of a block with the user.
func (r *PostgresPostRepository) GetFeed(userID uint, page, limit int) ([]models.Post, int64, error) {
	return r.page(func(db *gorm.DB) *gorm.DB {
		friendsA := r.db.Table("friends").Select("user2_id").Where("user1_id = ?", userID)
		friendsB := r.db.Table("friends").Select("user1_id").Where("user2_id = ?", userID)
		following := r.db.Table("follows").Select("following_id").Where("follower_id = ?", userID)
		blocked := r.db.Table("blocks").Select("blocked_id").Where("blocker_id = ?", userID)
		blockedBy := r.db.Table("blocks").Select("blocker_id").Where("blocked_id = ?", userID)
		return db.
			Where("user_id = ? OR user_id IN (?) OR user_id IN (?) OR user_id IN (?)", userID, friendsA, friendsB, following).
			Where("user_id NOT IN (?) AND user_id NOT IN (?)", blocked, blockedBy)
	}, page, limit)
}

func (r *PostgresPostRepository) GetPostsByIDs(ids []uint) ([]models.Post, error) {
	var posts []models.Post
	if len(ids) == 0 {
		return posts, nil
	}
	err := r.withDetails().Where("id IN ?", ids).Find(&posts).Error
	return posts, err
}

func (r *PostgresPostRepository) UpdatePost(post *models.Post) error {
	return r.db.Omit(clause.Associations).Save(post).Error
}

// DeletePost removes the post with its media rows, comments, reactions,
// bookmarks, reports and notifications that point at it.
func (r *PostgresPostRepository) DeletePost(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Post{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrNotFound
		}
		return deletePostRows(tx, []uint{id})
	})
}

func deletePostRows(tx *gorm.DB, postIDs []uint) error {
	var commentIDs []uint
	if err := tx.Model(&models.Comment{}).Where("post_id IN ?", postIDs).Pluck("id", &commentIDs).Error; err != nil {
		return err
	}
	if err := deleteCommentRows(tx, commentIDs); err != nil {
		return err
	}

	for _, m := range []interface{}{&models.PostMedia{}, &models.PostReaction{}, &models.Bookmark{}, &models.Report{}} {
		if err := tx.Where("post_id IN ?", postIDs).Delete(m).Error; err != nil {
			return err
		}
	}
	if err := tx.Where("target_type = ? AND target_id IN ?", "post", idStrings(postIDs)).Delete(&models.Notification{}).Error; err != nil {
		return err
	}
	return tx.Where("id IN ?", postIDs).Delete(&models.Post{}).Error
}

// idStrings formats ids the way notifications store their target.
func idStrings(ids []uint) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = strconv.FormatUint(uint64(id), 10)
	}
	return out
}

func (r *PostgresPostRepository) AddMedia(media *models.PostMedia) error {
	return r.db.Create(media).Error
}

func (r *PostgresPostRepository) GetMedia(postID uint) ([]models.PostMedia, error) {
	var media []models.PostMedia
	err := r.db.Where("post_id = ?", postID).Order("id ASC").Find(&media).Error
	return media, err
}
