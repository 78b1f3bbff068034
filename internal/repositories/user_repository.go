package repositories

import (
	"errors"
	"strings"

	"github.com/anonto42/wingit/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	CreateUser(user *models.User) error
	GetUserByID(id uint) (*models.User, error)
	GetUserByUsername(username string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByLogin(login string) (*models.User, error)
	GetUserByFirebaseUID(firebaseUID string) (*models.User, error)
	GetUsersByIDs(ids []uint) (map[uint]models.User, error)
	ListUsers(page, limit int) ([]models.User, int64, error)
	UpdateUser(user *models.User) error
	UpdateProfile(profile *models.UserData) error
	UpdateRole(userID uint, roleName string) error
	DeleteUser(id uint) error
	SearchUsers(query string, limit int) ([]models.User, error)
	UsernameExists(username string) (bool, error)
}

// PostgresUserRepository implements UserRepository on any gorm dialect.
type PostgresUserRepository struct {
	db *gorm.DB
}

// NewPostgresUserRepository creates a new PostgresUserRepository
func NewPostgresUserRepository(db *gorm.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

func (r *PostgresUserRepository) withProfile() *gorm.DB {
	return r.db.Preload("Role").Preload("Profile")
}

// CreateUser inserts the user and its profile row in one transaction.
func (r *PostgresUserRepository) CreateUser(user *models.User) error {
	if user.RoleID == 0 {
		user.RoleID = models.RoleUserID
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		profile := user.Profile
		if err := tx.Omit(clause.Associations).Create(user).Error; err != nil {
			return err
		}
		profile.UserID = user.ID
		if err := tx.Create(&profile).Error; err != nil {
			return err
		}
		user.Profile = profile
		return tx.First(&user.Role, user.RoleID).Error
	})
}

func (r *PostgresUserRepository) GetUserByID(id uint) (*models.User, error) {
	var user models.User
	if err := r.withProfile().First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *PostgresUserRepository) GetUserByUsername(username string) (*models.User, error) {
	var user models.User
	if err := r.withProfile().Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *PostgresUserRepository) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.withProfile().Where("LOWER(email) = ?", strings.ToLower(email)).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByLogin matches the username first, then the email.
func (r *PostgresUserRepository) GetUserByLogin(login string) (*models.User, error) {
	user, err := r.GetUserByUsername(login)
	if errors.Is(err, gorm.ErrRecordNotFound) && strings.Contains(login, "@") {
		return r.GetUserByEmail(login)
	}
	return user, err
}

func (r *PostgresUserRepository) GetUserByFirebaseUID(firebaseUID string) (*models.User, error) {
	var user models.User
	if err := r.withProfile().Where("firebase_uid = ?", firebaseUID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *PostgresUserRepository) GetUsersByIDs(ids []uint) (map[uint]models.User, error) {
	result := make(map[uint]models.User, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var users []models.User
	if err := r.withProfile().Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	for _, u := range users {
		result[u.ID] = u
	}
	return result, nil
}

func (r *PostgresUserRepository) ListUsers(page, limit int) ([]models.User, int64, error) {
	var users []models.User
	var total int64
	if err := r.db.Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := r.withProfile().Order("id ASC").Offset(offset(page, limit)).Limit(limit).Find(&users).Error
	return users, total, err
}

// UpdateUser saves the user row only; use UpdateProfile for profile fields.
func (r *PostgresUserRepository) UpdateUser(user *models.User) error {
	return r.db.Omit(clause.Associations).Save(user).Error
}

func (r *PostgresUserRepository) UpdateProfile(profile *models.UserData) error {
	return r.db.Save(profile).Error
}

func (r *PostgresUserRepository) UpdateRole(userID uint, roleName string) error {
	var role models.Role
	if err := r.db.Where("name = ?", roleName).First(&role).Error; err != nil {
		return err
	}
	var count int64
	if err := r.db.Model(&models.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return r.db.Model(&models.User{}).Where("id = ?", userID).Update("role_id", role.ID).Error
}

// DeleteUser removes the user and every row that references them.
func (r *PostgresUserRepository) DeleteUser(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var postIDs []uint
		if err := tx.Model(&models.Post{}).Where("user_id = ?", id).Pluck("id", &postIDs).Error; err != nil {
			return err
		}
		if len(postIDs) > 0 {
			if err := deletePostRows(tx, postIDs); err != nil {
				return err
			}
		}

		var commentIDs []uint
		if err := tx.Model(&models.Comment{}).Where("user_id = ?", id).Pluck("id", &commentIDs).Error; err != nil {
			return err
		}
		if err := deleteCommentRows(tx, commentIDs); err != nil {
			return err
		}

		steps := []struct {
			model interface{}
			where string
			args  []interface{}
		}{
			{&models.PostReaction{}, "user_id = ?", []interface{}{id}},
			{&models.CommentReaction{}, "user_id = ?", []interface{}{id}},
			{&models.Bookmark{}, "user_id = ?", []interface{}{id}},
			{&models.Follow{}, "follower_id = ? OR following_id = ?", []interface{}{id, id}},
			{&models.FriendRequest{}, "sender_id = ? OR receiver_id = ?", []interface{}{id, id}},
			{&models.Friend{}, "user1_id = ? OR user2_id = ?", []interface{}{id, id}},
			{&models.Block{}, "blocker_id = ? OR blocked_id = ?", []interface{}{id, id}},
			{&models.RoomUser{}, "user_id = ?", []interface{}{id}},
			{&models.Notification{}, "recipient_id = ? OR actor_id = ?", []interface{}{id, id}},
			{&models.Report{}, "reporter_id = ?", []interface{}{id}},
			{&models.UserData{}, "user_id = ?", []interface{}{id}},
		}
		for _, s := range steps {
			if err := tx.Where(s.where, s.args...).Delete(s.model).Error; err != nil {
				return err
			}
		}

		res := tx.Delete(&models.User{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// SearchUsers searches for users by username, display name or email
func (r *PostgresUserRepository) SearchUsers(query string, limit int) ([]models.User, error) {
	var users []models.User
	pattern := "%" + strings.ToLower(query) + "%"
	err := r.withProfile().
		Joins("LEFT JOIN user_data ON user_data.user_id = users.id").
		Where("LOWER(users.username) LIKE ? OR LOWER(users.email) LIKE ? OR LOWER(user_data.display_name) LIKE ?", pattern, pattern, pattern).
		Order("users.username ASC").
		Limit(limit).
		Find(&users).Error
	return users, err
}

func (r *PostgresUserRepository) UsernameExists(username string) (bool, error) {
	var count int64
	err := r.db.Model(&models.User{}).Where("username = ?", username).Count(&count).Error
	return count > 0, err
}
