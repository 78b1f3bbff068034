package models

import "time"

// Role names seeded at startup. RoleUserID is assigned on registration.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"

	RoleUserID  uint = 1
	RoleAdminID uint = 2
)

type Role struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"size:20;uniqueIndex"`
}

type User struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Username    string    `json:"username" gorm:"size:50;uniqueIndex"`
	Email       string    `json:"email" gorm:"size:255;uniqueIndex"`
	Password    string    `json:"-"` // bcrypt hash; empty for Firebase-only accounts
	RoleID      uint      `json:"roleId" gorm:"default:1"`
	Role        Role      `json:"role"`
	FirebaseUID *string   `json:"-" gorm:"size:128;uniqueIndex"`
	Profile     UserData  `json:"profile" gorm:"foreignKey:UserID"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// UserData is the editable profile attached one-to-one to a User.
type UserData struct {
	ID             uint       `json:"-" gorm:"primaryKey"`
	UserID         uint       `json:"-" gorm:"uniqueIndex"`
	DisplayName    string     `json:"displayName" gorm:"size:100"`
	Bio            string     `json:"bio" gorm:"size:500"`
	ProfilePicture string     `json:"profilePicture"`
	DateOfBirth    *time.Time `json:"dateOfBirth"`
	UpdatedAt      time.Time  `json:"-"`
}

func (UserData) TableName() string { return "user_data" }

// UserCompact is the embedded author/actor representation.
type UserCompact struct {
	ID             uint   `json:"id"`
	Username       string `json:"username"`
	DisplayName    string `json:"displayName"`
	ProfilePicture string `json:"profilePicture"`
}

func (u *User) ToCompact() UserCompact {
	return UserCompact{
		ID:             u.ID,
		Username:       u.Username,
		DisplayName:    u.Profile.DisplayName,
		ProfilePicture: u.Profile.ProfilePicture,
	}
}

// UserDTO is returned by /api/auth/me and the profile endpoints.
type UserDTO struct {
	ID             uint      `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	Role           string    `json:"role"`
	DisplayName    string    `json:"displayName"`
	Bio            string    `json:"bio"`
	ProfilePicture string    `json:"profilePicture"`
	DateOfBirth    *string   `json:"dateOfBirth"`
	CreatedAt      time.Time `json:"createdAt"`
}

// DateLayout is the wire format of dateOfBirth.
const DateLayout = "2006-01-02"

func (u *User) ToDTO() UserDTO {
	dto := UserDTO{
		ID:             u.ID,
		Username:       u.Username,
		Email:          u.Email,
		Role:           u.Role.Name,
		DisplayName:    u.Profile.DisplayName,
		Bio:            u.Profile.Bio,
		ProfilePicture: u.Profile.ProfilePicture,
		CreatedAt:      u.CreatedAt,
	}
	if u.Profile.DateOfBirth != nil {
		s := u.Profile.DateOfBirth.Format(DateLayout)
		dto.DateOfBirth = &s
	}
	return dto
}

func (u *User) IsAdmin() bool {
	return u.Role.Name == RoleAdmin
}

type RegisterRequest struct {
	Username    string `json:"username" validate:"required,min=3,max=50,username"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8,max=72"`
	DisplayName string `json:"displayName" validate:"omitempty,max=100"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"` // username or email
	Password string `json:"password" validate:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8,max=72"`
}

type UpdateProfileRequest struct {
	DisplayName    *string `json:"displayName" validate:"omitempty,notblank,max=100"`
	Bio            *string `json:"bio" validate:"omitempty,max=500"`
	ProfilePicture *string `json:"profilePicture" validate:"omitempty,url"`
	DateOfBirth    *string `json:"dateOfBirth" validate:"omitempty,datetime=2006-01-02"`
}

type UpdateRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=user admin"`
}
