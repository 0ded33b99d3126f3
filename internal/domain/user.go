package domain

import "time"

// Role is the closed set of trust levels a user can hold.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// IsAdmin reports whether r grants access to the admin surface.
func (r Role) IsAdmin() bool {
	switch r {
	case RoleAdmin:
		return true
	case RoleUser:
		return false
	}
	return false
}

// User identity record. Password holds the bcrypt hash and never leaves the process.
type User struct {
	ID            string     `gorm:"primaryKey;size:36" json:"id"`
	FirstName     string     `gorm:"not null" json:"firstName"`
	LastName      string     `json:"lastName"`
	Email         string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PhoneNumber   *string    `gorm:"size:32;uniqueIndex" json:"phoneNumber"`
	Image         string     `json:"image"`
	Password      *string    `json:"-"`
	Type          Role       `gorm:"size:16;not null;default:USER" json:"type"`
	AcceptTerms   bool       `gorm:"not null" json:"acceptTerms"`
	AcceptPromos  bool       `gorm:"not null" json:"acceptPromos"`
	EmailVerified *time.Time `json:"emailVerified"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}

// HasPassword reports whether the account can sign in with a password.
func (u *User) HasPassword() bool {
	return u.Password != nil && *u.Password != ""
}

// Session is one authenticated client instance. A token is valid iff the
// row exists and ExpiresAt is in the future.
type Session struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    string    `gorm:"size:36;index;not null" json:"userId"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Token     string    `gorm:"size:128;uniqueIndex;not null" json:"-"`
	ExpiresAt time.Time `gorm:"index;not null" json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Session) TableName() string {
	return "sessions"
}
