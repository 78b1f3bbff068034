package handlers

import (
	"github.com/anonto42/wingit/backend/internal/repositories"
	"gorm.io/gorm"
)

// Repositories bundles the stores the handlers read and write.
type Repositories struct {
	Users         repositories.UserRepository
	Lookups       repositories.LookupRepository
	Posts         repositories.PostRepository
	Comments      repositories.CommentRepository
	Reactions     repositories.ReactionRepository
	Bookmarks     repositories.BookmarkRepository
	Friendships   repositories.FriendshipRepository
	Follows       repositories.FollowRepository
	Blocks        repositories.BlockRepository
	Chats         repositories.ChatRepository
	Messages      repositories.MessageRepository
	Notifications repositories.NotificationRepository
	Reports       repositories.ReportRepository
}

// NewRepositories builds every store on db. A nil messages keeps chat
// messages in db as well.
func NewRepositories(db *gorm.DB, messages repositories.MessageRepository) *Repositories {
	if messages == nil {
		messages = repositories.NewPostgresMessageRepository(db)
	}
	return &Repositories{
		Users:         repositories.NewPostgresUserRepository(db),
		Lookups:       repositories.NewPostgresLookupRepository(db),
		Posts:         repositories.NewPostgresPostRepository(db),
		Comments:      repositories.NewPostgresCommentRepository(db),
		Reactions:     repositories.NewPostgresReactionRepository(db),
		Bookmarks:     repositories.NewPostgresBookmarkRepository(db),
		Friendships:   repositories.NewPostgresFriendshipRepository(db),
		Follows:       repositories.NewPostgresFollowRepository(db),
		Blocks:        repositories.NewPostgresBlockRepository(db),
		Chats:         repositories.NewPostgresChatRepository(db),
		Messages:      messages,
		Notifications: repositories.NewPostgresNotificationRepository(db),
		Reports:       repositories.NewPostgresReportRepository(db),
	}
}

func (r *Repositories) postViews() postViews {
	return postViews{reactions: r.Reactions, comments: r.Comments, bookmarks: r.Bookmarks}
}

func (r *Repositories) relations() relations {
	return relations{friendships: r.Friendships, follows: r.Follows, blocks: r.Blocks}
}
