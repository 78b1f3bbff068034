package repositories

import (
	"github.com/anonto42/wingit/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LookupRepository serves the static post type and reaction type tables.
type LookupRepository interface {
	ListPostTypes() ([]models.PostType, error)
	GetPostType(id uint) (*models.PostType, error)
	ListReactionTypes() ([]models.ReactionType, error)
	GetReactionType(id uint) (*models.ReactionType, error)
}

type PostgresLookupRepository struct {
	db *gorm.DB
}

func NewPostgresLookupRepository(db *gorm.DB) *PostgresLookupRepository {
	return &PostgresLookupRepository{db: db}
}

func (r *PostgresLookupRepository) ListPostTypes() ([]models.PostType, error) {
	var types []models.PostType
	err := r.db.Order("id ASC").Find(&types).Error
	return types, err
}

func (r *PostgresLookupRepository) GetPostType(id uint) (*models.PostType, error) {
	var t models.PostType
	if err := r.db.First(&t, id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *PostgresLookupRepository) ListReactionTypes() ([]models.ReactionType, error) {
	var types []models.ReactionType
	err := r.db.Order("id ASC").Find(&types).Error
	return types, err
}

func (r *PostgresLookupRepository) GetReactionType(id uint) (*models.ReactionType, error) {
	var t models.ReactionType
	if err := r.db.First(&t, id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// Seed inserts the default roles, post types and reaction types. Existing
// rows are left untouched so it is safe to run on every start.
func Seed(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		roles := append([]models.Role(nil), models.DefaultRoles...)
		postTypes := append([]models.PostType(nil), models.DefaultPostTypes...)
		reactionTypes := append([]models.ReactionType(nil), models.DefaultReactionTypes...)

		ignore := clause.OnConflict{DoNothing: true}
		if err := tx.Clauses(ignore).Create(&roles).Error; err != nil {
			return err
		}
		if err := tx.Clauses(ignore).Create(&postTypes).Error; err != nil {
			return err
		}
		return tx.Clauses(ignore).Create(&reactionTypes).Error
	})
}
