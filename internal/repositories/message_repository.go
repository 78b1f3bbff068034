package repositories

import (
	"context"
	"time"

	"github.com/anonto42/wingit/backend/internal/models"
	"gorm.io/gorm"
)

// MessageRepository stores chat messages. Pages are returned oldest first.
type MessageRepository interface {
	CreateMessage(ctx context.Context, msg *models.Message) error
	GetMessages(ctx context.Context, roomID uint, before time.Time, limit int) ([]models.Message, error)
	GetLastMessages(ctx context.Context, roomIDs []uint) (map[uint]models.Message, error)
	DeleteBySender(ctx context.Context, senderID uint) error
}

type PostgresMessageRepository struct {
	db *gorm.DB
}

func NewPostgresMessageRepository(db *gorm.DB) *PostgresMessageRepository {
	return &PostgresMessageRepository{db: db}
}

func (r *PostgresMessageRepository) CreateMessage(ctx context.Context, msg *models.Message) error {
	if err := r.db.WithContext(ctx).Create(msg).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Model(&models.ChatRoom{}).Where("id = ?", msg.ChatRoomID).
		Update("updated_at", msg.SentAt).Error
}

// GetMessages returns up to limit messages sent strictly before the cursor.
// A zero cursor starts from the newest message.
func (r *PostgresMessageRepository) GetMessages(ctx context.Context, roomID uint, before time.Time, limit int) ([]models.Message, error) {
	q := r.db.WithContext(ctx).Where("chat_room_id = ?", roomID)
	if !before.IsZero() {
		q = q.Where("sent_at < ?", before)
	}
	var msgs []models.Message
	if err := q.Order("sent_at DESC").Limit(limit).Find(&msgs).Error; err != nil {
		return nil, err
	}
	reverse(msgs)
	return msgs, nil
}

func (r *PostgresMessageRepository) GetLastMessages(ctx context.Context, roomIDs []uint) (map[uint]models.Message, error) {
	result := make(map[uint]models.Message, len(roomIDs))
	for _, id := range roomIDs {
		var msg models.Message
		err := r.db.WithContext(ctx).Where("chat_room_id = ?", id).Order("sent_at DESC").Limit(1).Find(&msg).Error
		if err != nil {
			return nil, err
		}
		if msg.ID != "" {
			result[id] = msg
		}
	}
	return result, nil
}

func (r *PostgresMessageRepository) DeleteBySender(ctx context.Context, senderID uint) error {
	return r.db.WithContext(ctx).Where("sender_id = ?", senderID).Delete(&models.Message{}).Error
}

func reverse(msgs []models.Message) {
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
}
