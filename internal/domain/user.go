package domain

import "time"

// User roles
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// User represents an account
type User struct {
	ID          uint64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Email       string     `gorm:"column:email;type:varchar(255);not null;uniqueIndex" json:"email"`
	Username    string     `gorm:"column:username;type:varchar(50);not null;uniqueIndex" json:"username"`
	Password    string     `gorm:"column:password;type:varchar(255);not null" json:"-"`
	DisplayName string     `gorm:"column:display_name;type:varchar(100)" json:"display_name"`
	Role        string     `gorm:"column:role;type:varchar(20);default:'USER'" json:"role"`
	Phone       *string    `gorm:"column:phone;type:varchar(30)" json:"phone,omitempty"`
	AvatarURL   *string    `gorm:"column:avatar_url;type:varchar(500)" json:"avatar_url,omitempty"`
	Preferences *string    `gorm:"column:preferences;type:json" json:"preferences,omitempty"`
	LastLoginAt *time.Time `gorm:"column:last_login_at" json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string { return "users" }

// UserResponse represents the caller's own account in API responses
type UserResponse struct {
	ID          uint64     `json:"id"`
	Email       string     `json:"email"`
	Username    string     `json:"username"`
	DisplayName string     `json:"display_name"`
	Role        string     `json:"role"`
	Phone       *string    `json:"phone,omitempty"`
	AvatarURL   *string    `json:"avatar_url,omitempty"`
	Preferences *string    `json:"preferences,omitempty"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// ToResponse converts User to UserResponse
func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		Role:        u.Role,
		Phone:       u.Phone,
		AvatarURL:   u.AvatarURL,
		Preferences: u.Preferences,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}

// PublicProfile represents the fields of a user visible to other users
type PublicProfile struct {
	ID          uint64  `json:"id"`
	Username    string  `json:"username"`
	DisplayName string  `json:"display_name"`
	AvatarURL   *string `json:"avatar_url,omitempty"`
}

// ToPublicProfile converts User to PublicProfile
func (u *User) ToPublicProfile() *PublicProfile {
	return &PublicProfile{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		AvatarURL:   u.AvatarURL,
	}
}
