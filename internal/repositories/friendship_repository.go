package repositories

import (
	"time"

	"github.com/anonto42/wingit/backend/internal/models"
	"gorm.io/gorm"
)

// FriendshipRepository defines the interface for friendship data operations
type FriendshipRepository interface {
	CreateFriendRequest(req *models.FriendRequest) error
	GetFriendRequestByID(id uint) (*models.FriendRequest, error)
	HasPendingRequestBetween(a, b uint) (bool, error)
	GetReceivedRequests(userID uint, status string) ([]models.FriendRequest, error)
	GetSentRequests(userID uint, status string) ([]models.FriendRequest, error)
	AcceptFriendRequest(req *models.FriendRequest) (*models.Friend, error)
	UpdateFriendRequestStatus(id uint, status string) error
	AreFriends(a, b uint) (bool, error)
	GetFriends(userID uint) ([]models.Friend, error)
	GetFriendIDs(userID uint) ([]uint, error)
	DeleteFriendship(a, b uint) error
}

// PostgresFriendshipRepository implements FriendshipRepository on any gorm dialect.
type PostgresFriendshipRepository struct {
	db *gorm.DB
}

// NewPostgresFriendshipRepository creates a new PostgresFriendshipRepository
func NewPostgresFriendshipRepository(db *gorm.DB) *PostgresFriendshipRepository {
	return &PostgresFriendshipRepository{db: db}
}

func (r *PostgresFriendshipRepository) CreateFriendRequest(req *models.FriendRequest) error {
	if req.Status == "" {
		req.Status = models.FriendRequestPending
	}
	return r.db.Omit("Sender", "Receiver").Create(req).Error
}

func (r *PostgresFriendshipRepository) GetFriendRequestByID(id uint) (*models.FriendRequest, error) {
	var req models.FriendRequest
	if err := r.db.Preload("Sender.Profile").Preload("Receiver.Profile").First(&req, id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *PostgresFriendshipRepository) HasPendingRequestBetween(a, b uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.FriendRequest{}).
		Where("((sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)) AND status = ?",
			a, b, b, a, models.FriendRequestPending).
		Count(&count).Error
	return count > 0, err
}

func (r *PostgresFriendshipRepository) listRequests(column string, userID uint, status string) ([]models.FriendRequest, error) {
	var requests []models.FriendRequest
	q := r.db.Preload("Sender.Profile").Preload("Receiver.Profile").Where(column+" = ?", userID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Order("created_at DESC").Order("id DESC").Find(&requests).Error
	return requests, err
}

func (r *PostgresFriendshipRepository) GetReceivedRequests(userID uint, status string) ([]models.FriendRequest, error) {
	return r.listRequests("receiver_id", userID, status)
}

func (r *PostgresFriendshipRepository) GetSentRequests(userID uint, status string) ([]models.FriendRequest, error) {
	return r.listRequests("sender_id", userID, status)
}

// AcceptFriendRequest marks the request accepted and creates the friendship
// row in one transaction.
func (r *PostgresFriendshipRepository) AcceptFriendRequest(req *models.FriendRequest) (*models.Friend, error) {
	now := time.Now().UTC()
	u1, u2 := models.OrderedPair(req.SenderID, req.ReceiverID)
	friend := &models.Friend{User1ID: u1, User2ID: u2, FriendshipDate: now}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.FriendRequest{}).
			Where("id = ? AND status = ?", req.ID, models.FriendRequestPending).
			Updates(map[string]interface{}{"status": models.FriendRequestAccepted, "response_date": now})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyExists
		}
		return tx.Create(friend).Error
	})
	if err != nil {
		return nil, err
	}
	req.Status = models.FriendRequestAccepted
	req.ResponseDate = &now
	return friend, nil
}

func (r *PostgresFriendshipRepository) UpdateFriendRequestStatus(id uint, status string) error {
	return r.db.Model(&models.FriendRequest{}).Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "response_date": time.Now().UTC()}).Error
}

func (r *PostgresFriendshipRepository) AreFriends(a, b uint) (bool, error) {
	u1, u2 := models.OrderedPair(a, b)
	var count int64
	err := r.db.Model(&models.Friend{}).Where("user1_id = ? AND user2_id = ?", u1, u2).Count(&count).Error
	return count > 0, err
}

func (r *PostgresFriendshipRepository) GetFriends(userID uint) ([]models.Friend, error) {
	var friends []models.Friend
	err := r.db.Where("user1_id = ? OR user2_id = ?", userID, userID).
		Order("friendship_date DESC").
		Find(&friends).Error
	return friends, err
}

func (r *PostgresFriendshipRepository) GetFriendIDs(userID uint) ([]uint, error) {
	friends, err := r.GetFriends(userID)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(friends))
	for _, f := range friends {
		if f.User1ID == userID {
			ids = append(ids, f.User2ID)
		} else {
			ids = append(ids, f.User1ID)
		}
	}
	return ids, nil
}

func (r *PostgresFriendshipRepository) DeleteFriendship(a, b uint) error {
	u1, u2 := models.OrderedPair(a, b)
	res := r.db.Where("user1_id = ? AND user2_id = ?", u1, u2).Delete(&models.Friend{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
