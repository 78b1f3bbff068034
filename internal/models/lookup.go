package models

// PostType classifies a post (info, scenic, discussion).
type PostType struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"size:30;uniqueIndex"`
}

// ReactionType is a reaction users can attach to posts and comments.
type ReactionType struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"size:30;uniqueIndex"`
}

var (
	DefaultRoles         = []Role{{ID: RoleUserID, Name: RoleUser}, {ID: RoleAdminID, Name: RoleAdmin}}
	DefaultPostTypes     = []PostType{{ID: 1, Name: "info"}, {ID: 2, Name: "scenic"}, {ID: 3, Name: "discussion"}}
	DefaultReactionTypes = []ReactionType{{ID: 1, Name: "like"}, {ID: 2, Name: "dislike"}}
)
