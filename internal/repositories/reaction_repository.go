package repositories

import (
	"errors"

	"github.com/anonto42/wingit/backend/internal/models"
	"gorm.io/gorm"
)

// ReactionRepository stores post and comment reactions. Each user holds at
// most one reaction per target; reacting again replaces the type.
type ReactionRepository interface {
	SetPostReaction(postID, userID, reactionTypeID uint) (created bool, err error)
	DeletePostReaction(postID, userID uint) error
	GetUserPostReaction(postID, userID uint) (*models.PostReaction, error)
	CountPostReactions(postIDs []uint) (map[uint]map[string]int64, error)
	GetUserPostReactions(userID uint, postIDs []uint) (map[uint]string, error)

	SetCommentReaction(commentID, userID, reactionTypeID uint) (created bool, err error)
	DeleteCommentReaction(commentID, userID uint) error
	CountCommentReactions(commentIDs []uint) (map[uint]map[string]int64, error)
}

type PostgresReactionRepository struct {
	db *gorm.DB
}

func NewPostgresReactionRepository(db *gorm.DB) *PostgresReactionRepository {
	return &PostgresReactionRepository{db: db}
}

func (r *PostgresReactionRepository) SetPostReaction(postID, userID, reactionTypeID uint) (bool, error) {
	created := false
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var existing models.PostReaction
		err := tx.Where("post_id = ? AND user_id = ?", postID, userID).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			created = true
			return tx.Create(&models.PostReaction{PostID: postID, UserID: userID, ReactionTypeID: reactionTypeID}).Error
		case err != nil:
			return err
		}
		return tx.Model(&existing).Update("reaction_type_id", reactionTypeID).Error
	})
	return created, err
}

func (r *PostgresReactionRepository) DeletePostReaction(postID, userID uint) error {
	res := r.db.Where("post_id = ? AND user_id = ?", postID, userID).Delete(&models.PostReaction{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresReactionRepository) GetUserPostReaction(postID, userID uint) (*models.PostReaction, error) {
	var reaction models.PostReaction
	err := r.db.Preload("ReactionType").Where("post_id = ? AND user_id = ?", postID, userID).First(&reaction).Error
	if err != nil {
		return nil, err
	}
	return &reaction, nil
}

type reactionCountRow struct {
	TargetID uint
	Name     string
	Total    int64
}

func (r *PostgresReactionRepository) countBy(table, column string, ids []uint) (map[uint]map[string]int64, error) {
	result := make(map[uint]map[string]int64, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var rows []reactionCountRow
	err := r.db.Table(table).
		Select(table+"."+column+" AS target_id, reaction_types.name AS name, COUNT(*) AS total").
		Joins("JOIN reaction_types ON reaction_types.id = "+table+".reaction_type_id").
		Where(table+"."+column+" IN ?", ids).
		Group(table + "." + column + ", reaction_types.name").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		if result[row.TargetID] == nil {
			result[row.TargetID] = make(map[string]int64)
		}
		result[row.TargetID][row.Name] = row.Total
	}
	return result, nil
}

func (r *PostgresReactionRepository) CountPostReactions(postIDs []uint) (map[uint]map[string]int64, error) {
	return r.countBy("post_reactions", "post_id", postIDs)
}

func (r *PostgresReactionRepository) GetUserPostReactions(userID uint, postIDs []uint) (map[uint]string, error) {
	result := make(map[uint]string, len(postIDs))
	if len(postIDs) == 0 {
		return result, nil
	}
	var rows []struct {
		PostID uint
		Name   string
	}
	err := r.db.Table("post_reactions").
		Select("post_reactions.post_id, reaction_types.name").
		Joins("JOIN reaction_types ON reaction_types.id = post_reactions.reaction_type_id").
		Where("post_reactions.user_id = ? AND post_reactions.post_id IN ?", userID, postIDs).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		result[row.PostID] = row.Name
	}
	return result, nil
}

func (r *PostgresReactionRepository) SetCommentReaction(commentID, userID, reactionTypeID uint) (bool, error) {
	created := false
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var existing models.CommentReaction
		err := tx.Where("comment_id = ? AND user_id = ?", commentID, userID).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			created = true
			return tx.Create(&models.CommentReaction{CommentID: commentID, UserID: userID, ReactionTypeID: reactionTypeID}).Error
		case err != nil:
			return err
		}
		return tx.Model(&existing).Update("reaction_type_id", reactionTypeID).Error
	})
	return created, err
}

func (r *PostgresReactionRepository) DeleteCommentReaction(commentID, userID uint) error {
	res := r.db.Where("comment_id = ? AND user_id = ?", commentID, userID).Delete(&models.CommentReaction{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresReactionRepository) CountCommentReactions(commentIDs []uint) (map[uint]map[string]int64, error) {
	return r.countBy("comment_reactions", "comment_id", commentIDs)
}
