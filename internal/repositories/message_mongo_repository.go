package repositories

import (
	"context"
	"time"

	"github.com/anonto42/wingit/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/gorm"
)

// MongoMessageRepository keeps messages in a Mongo collection while rooms
// stay in the relational store.
type MongoMessageRepository struct {
	collection *mongo.Collection
	sqlDB      *gorm.DB
}

func NewMongoMessageRepository(mongoDB *mongo.Database, sqlDB *gorm.DB) *MongoMessageRepository {
	return &MongoMessageRepository{
		collection: mongoDB.Collection("messages"),
		sqlDB:      sqlDB,
	}
}

// EnsureIndexes creates the room/time index used by every query.
func (r *MongoMessageRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "chat_room_id", Value: 1}, {Key: "sent_at", Value: -1}},
	})
	return err
}

func (r *MongoMessageRepository) CreateMessage(ctx context.Context, msg *models.Message) error {
	msg.Prepare()
	if _, err := r.collection.InsertOne(ctx, msg); err != nil {
		return err
	}
	return r.sqlDB.WithContext(ctx).Model(&models.ChatRoom{}).Where("id = ?", msg.ChatRoomID).
		Update("updated_at", msg.SentAt).Error
}

func (r *MongoMessageRepository) GetMessages(ctx context.Context, roomID uint, before time.Time, limit int) ([]models.Message, error) {
	filter := bson.M{"chat_room_id": roomID}
	if !before.IsZero() {
		filter["sent_at"] = bson.M{"$lt": before}
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "sent_at", Value: -1}}).
		SetLimit(int64(limit))
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var msgs []models.Message
	if err = cursor.All(ctx, &msgs); err != nil {
		return nil, err
	}
	reverse(msgs)
	return msgs, nil
}

func (r *MongoMessageRepository) GetLastMessages(ctx context.Context, roomIDs []uint) (map[uint]models.Message, error) {
	result := make(map[uint]models.Message, len(roomIDs))
	opts := options.FindOne().SetSort(bson.D{{Key: "sent_at", Value: -1}})
	for _, id := range roomIDs {
		var msg models.Message
		err := r.collection.FindOne(ctx, bson.M{"chat_room_id": id}, opts).Decode(&msg)
		if err == mongo.ErrNoDocuments {
			continue
		}
		if err != nil {
			return nil, err
		}
		result[id] = msg
	}
	return result, nil
}

func (r *MongoMessageRepository) DeleteBySender(ctx context.Context, senderID uint) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"sender_id": senderID})
	return err
}
