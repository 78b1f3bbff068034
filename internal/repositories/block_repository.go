package repositories

import (
	"github.com/anonto42/wingit/backend/internal/models"
	"gorm.io/gorm"
)

type BlockRepository interface {
	CreateBlock(blockerID, blockedID uint) (*models.Block, error)
	DeleteBlock(blockerID, blockedID uint) error
	IsBlocked(blockerID, blockedID uint) (bool, error)
	IsBlockedEither(a, b uint) (bool, error)
	GetBlockedUsers(blockerID uint) ([]models.Block, error)
}

type PostgresBlockRepository struct {
	db *gorm.DB
}

func NewPostgresBlockRepository(db *gorm.DB) *PostgresBlockRepository {
	return &PostgresBlockRepository{db: db}
}

// CreateBlock stores the block and severs the friendship, follows in both
// directions and pending friend requests between the two users.
func (r *PostgresBlockRepository) CreateBlock(blockerID, blockedID uint) (*models.Block, error) {
	block := &models.Block{BlockerID: blockerID, BlockedID: blockedID}
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Block{}).Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrAlreadyExists
		}
		if err := tx.Omit("Blocked").Create(block).Error; err != nil {
			return err
		}

		u1, u2 := models.OrderedPair(blockerID, blockedID)
		if err := tx.Where("user1_id = ? AND user2_id = ?", u1, u2).Delete(&models.Friend{}).Error; err != nil {
			return err
		}
		if err := tx.Where("(follower_id = ? AND following_id = ?) OR (follower_id = ? AND following_id = ?)",
			blockerID, blockedID, blockedID, blockerID).Delete(&models.Follow{}).Error; err != nil {
			return err
		}
		return tx.Model(&models.FriendRequest{}).
			Where("((sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)) AND status = ?",
				blockerID, blockedID, blockedID, blockerID, models.FriendRequestPending).
			Update("status", models.FriendRequestBlocked).Error
	})
	if err != nil {
		return nil, err
	}
	return block, nil
}

func (r *PostgresBlockRepository) DeleteBlock(blockerID, blockedID uint) error {
	res := r.db.Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).Delete(&models.Block{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresBlockRepository) IsBlocked(blockerID, blockedID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.Block{}).Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).Count(&count).Error
	return count > 0, err
}

// IsBlockedEither reports whether either user blocks the other.
func (r *PostgresBlockRepository) IsBlockedEither(a, b uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.Block{}).
		Where("(blocker_id = ? AND blocked_id = ?) OR (blocker_id = ? AND blocked_id = ?)", a, b, b, a).
		Count(&count).Error
	return count > 0, err
}

func (r *PostgresBlockRepository) GetBlockedUsers(blockerID uint) ([]models.Block, error) {
	var blocks []models.Block
	err := r.db.Preload("Blocked.Profile").
		Where("blocker_id = ?", blockerID).
		Order("created_at DESC").
		Find(&blocks).Error
	return blocks, err
}
