package repositories

import (
	"time"

	"github.com/anonto42/wingit/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ChatRepository stores chat rooms and their memberships.
type ChatRepository interface {
	CreateRoom(room *models.ChatRoom, memberIDs []uint) error
	GetRoomByID(id uint) (*models.ChatRoom, error)
	GetRoomsByUser(userID uint) ([]models.ChatRoom, error)
	FindPrivateRoom(userA, userB uint) (*models.ChatRoom, error)
	IsMember(roomID, userID uint) (bool, error)
	AddMember(roomID, userID uint) error
	RemoveMember(roomID, userID uint) error
	GetMemberIDs(roomID uint) ([]uint, error)
}

type PostgresChatRepository struct {
	db *gorm.DB
}

func NewPostgresChatRepository(db *gorm.DB) *PostgresChatRepository {
	return &PostgresChatRepository{db: db}
}

func (r *PostgresChatRepository) withMembers() *gorm.DB {
	return r.db.Preload("Members", func(db *gorm.DB) *gorm.DB {
		return db.Order("joined_at ASC").Order("id ASC")
	}).Preload("Members.User.Profile")
}

// CreateRoom inserts the room and one membership per distinct member id.
func (r *PostgresChatRepository) CreateRoom(room *models.ChatRoom, memberIDs []uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(room).Error; err != nil {
			return err
		}
		now := time.Now().UTC()
		seen := make(map[uint]bool, len(memberIDs))
		for _, id := range memberIDs {
			if seen[id] {
				continue
			}
			seen[id] = true
			member := models.RoomUser{ChatRoomID: room.ID, UserID: id, JoinedAt: now}
			if err := tx.Omit(clause.Associations).Create(&member).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *PostgresChatRepository) GetRoomByID(id uint) (*models.ChatRoom, error) {
	var room models.ChatRoom
	if err := r.withMembers().First(&room, id).Error; err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *PostgresChatRepository) GetRoomsByUser(userID uint) ([]models.ChatRoom, error) {
	var rooms []models.ChatRoom
	err := r.withMembers().
		Where("id IN (?)", r.memberOf(userID)).
		Order("updated_at DESC").Order("id DESC").
		Find(&rooms).Error
	return rooms, err
}

func (r *PostgresChatRepository) memberOf(userID uint) *gorm.DB {
	return r.db.Model(&models.RoomUser{}).Select("chat_room_id").Where("user_id = ?", userID)
}

// FindPrivateRoom returns the oldest private room both users still belong to.
func (r *PostgresChatRepository) FindPrivateRoom(userA, userB uint) (*models.ChatRoom, error) {
	var room models.ChatRoom
	err := r.withMembers().
		Where("is_group_chat = ?", false).
		Where("id IN (?)", r.memberOf(userA)).
		Where("id IN (?)", r.memberOf(userB)).
		Order("id ASC").
		First(&room).Error
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *PostgresChatRepository) IsMember(roomID, userID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.RoomUser{}).Where("chat_room_id = ? AND user_id = ?", roomID, userID).Count(&count).Error
	return count > 0, err
}

func (r *PostgresChatRepository) AddMember(roomID, userID uint) error {
	member, err := r.IsMember(roomID, userID)
	if err != nil {
		return err
	}
	if member {
		return ErrAlreadyExists
	}
	return r.db.Omit(clause.Associations).Create(&models.RoomUser{
		ChatRoomID: roomID,
		UserID:     userID,
		JoinedAt:   time.Now().UTC(),
	}).Error
}

func (r *PostgresChatRepository) RemoveMember(roomID, userID uint) error {
	res := r.db.Where("chat_room_id = ? AND user_id = ?", roomID, userID).Delete(&models.RoomUser{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresChatRepository) GetMemberIDs(roomID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&models.RoomUser{}).Where("chat_room_id = ?", roomID).Order("joined_at ASC").Pluck("user_id", &ids).Error
	return ids, err
}
