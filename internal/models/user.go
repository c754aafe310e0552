package models

import (
	"time"

	"github.com/google/uuid"
)

// User is created on the first successful Google sign-in with a NULL
// username; the username is assigned once during profile setup and may be
// changed later through an explicit rename.
type User struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Username  *string   `json:"username" gorm:"uniqueIndex;size:20"`
	Email     string    `json:"email" gorm:"uniqueIndex;not null"`
	GoogleID  *string   `json:"-" gorm:"uniqueIndex;size:100"`
	FirstName string    `json:"firstName" gorm:"size:150"`
	LastName  string    `json:"lastName" gorm:"size:150"`
	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"autoUpdateTime"`

	Profile  *Profile  `json:"profile,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Posts    []Post    `json:"-" gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	Likes    []Like    `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Comments []Comment `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// DisplayUsername returns the handle with the @ prefix used everywhere in
// the UI, or an empty string while setup is still pending.
func (u *User) DisplayUsername() string {
	if u.Username == nil {
		return ""
	}
	return "@" + *u.Username
}
