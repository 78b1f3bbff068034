package testutil

import (
	"testing"

	"github.com/anonto42/wingit/backend/internal/models"
	"github.com/anonto42/wingit/backend/internal/repositories"
	"github.com/anonto42/wingit/backend/pkg/config"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Password is the plain-text password of every user made by CreateUser.
const Password = "password123"

// SetupTestDB opens a private in-memory SQLite database with the production
// schema and seed rows.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := config.OpenSQL("sqlite", "file::memory:?_foreign_keys=on", zap.NewNop())
	require.NoError(t, err, "SetupTestDB: OpenSQL")
	require.NoError(t, repositories.Migrate(db), "SetupTestDB: Migrate")
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// CreateUser inserts a user with a profile and the shared test password.
func CreateUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: string(hash),
		Profile:  models.UserData{DisplayName: username},
	}
	require.NoError(t, repositories.NewPostgresUserRepository(db).CreateUser(user))
	return user
}

// CreatePost inserts a post of the seeded "info" type.
func CreatePost(t *testing.T, db *gorm.DB, userID uint, content string) *models.Post {
	t.Helper()
	post := &models.Post{UserID: userID, PostTypeID: 1, Content: content}
	require.NoError(t, repositories.NewPostgresPostRepository(db).CreatePost(post))
	return post
}
