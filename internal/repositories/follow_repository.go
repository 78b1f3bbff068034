package repositories

import (
	"github.com/anonto42/wingit/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FollowRepository defines the interface for follow data operations
type FollowRepository interface {
	CreateFollow(follow *models.Follow) error
	DeleteFollow(followerID, followingID uint) error
	IsFollowing(followerID, followingID uint) (bool, error)
	GetFollowers(userID uint) ([]models.User, error)
	GetFollowing(userID uint) ([]models.User, error)
	GetFollowersCount(userID uint) (int64, error)
	GetFollowingCount(userID uint) (int64, error)
	GetFollowerIDs(userID uint) ([]uint, error)
}

// PostgresFollowRepository implements FollowRepository on any gorm dialect.
type PostgresFollowRepository struct {
	db *gorm.DB
}

// NewPostgresFollowRepository creates a new PostgresFollowRepository
func NewPostgresFollowRepository(db *gorm.DB) *PostgresFollowRepository {
	return &PostgresFollowRepository{db: db}
}

// CreateFollow returns ErrAlreadyExists when the edge is already present.
func (r *PostgresFollowRepository) CreateFollow(follow *models.Follow) error {
	res := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(follow)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrAlreadyExists
	}
	return nil
}

func (r *PostgresFollowRepository) DeleteFollow(followerID, followingID uint) error {
	res := r.edge(followerID, followingID).Delete(&models.Follow{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresFollowRepository) IsFollowing(followerID, followingID uint) (bool, error) {
	var count int64
	err := r.edge(followerID, followingID).Model(&models.Follow{}).Count(&count).Error
	return count > 0, err
}

// GetFollowers lists the users following userID by username.
func (r *PostgresFollowRepository) GetFollowers(userID uint) ([]models.User, error) {
	return r.usersOn("follower_id", "following_id", userID)
}

// GetFollowing lists the users userID follows by username.
func (r *PostgresFollowRepository) GetFollowing(userID uint) ([]models.User, error) {
	return r.usersOn("following_id", "follower_id", userID)
}

func (r *PostgresFollowRepository) GetFollowersCount(userID uint) (int64, error) {
	return r.count("following_id", userID)
}

func (r *PostgresFollowRepository) GetFollowingCount(userID uint) (int64, error) {
	return r.count("follower_id", userID)
}

func (r *PostgresFollowRepository) GetFollowerIDs(userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&models.Follow{}).Where("following_id = ?", userID).Pluck("follower_id", &ids).Error
	return ids, err
}

func (r *PostgresFollowRepository) edge(followerID, followingID uint) *gorm.DB {
	return r.db.Where("follower_id = ? AND following_id = ?", followerID, followingID)
}

// usersOn loads the users in column pick of the follow rows whose match
// column equals userID. Column names are constants from this file.
func (r *PostgresFollowRepository) usersOn(pick, match string, userID uint) ([]models.User, error) {
	var users []models.User
	sub := r.db.Model(&models.Follow{}).Select(pick).Where(match+" = ?", userID)
	err := r.db.Preload("Profile").Preload("Role").Where("id IN (?)", sub).Order("username ASC").Find(&users).Error
	return users, err
}

func (r *PostgresFollowRepository) count(column string, userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Follow{}).Where(column+" = ?", userID).Count(&count).Error
	return count, err
}
