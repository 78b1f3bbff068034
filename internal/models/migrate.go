package models

// All lists every persisted model in dependency order for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&Role{},
		&PostType{},
		&ReactionType{},
		&User{},
		&UserData{},
		&Post{},
		&PostMedia{},
		&Comment{},
		&PostReaction{},
		&CommentReaction{},
		&Bookmark{},
		&Follow{},
		&FriendRequest{},
		&Friend{},
		&Block{},
		&ChatRoom{},
		&RoomUser{},
		&Message{},
		&Notification{},
		&Report{},
	}
}
