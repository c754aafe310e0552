package models

import (
	"time"

	"github.com/google/uuid"
)

// Profile is the one-to-one companion of a User. SetupComplete stays false
// until the user has picked a username in the setup flow; every protected
// route redirects to setup until then.
type Profile struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID     uuid.UUID `json:"userId" gorm:"type:uuid;uniqueIndex;not null"`
	Bio        string    `json:"bio" gorm:"size:500"`
	AvatarKey  string    `json:"avatarKey"` // object key in media storage
	PictureURL string    `json:"pictureUrl"` // Google profile picture
	Website    string    `json:"website"`
	Location   string    `json:"location" gorm:"size:100"`

	FacebookURL  string `json:"facebookUrl"`
	InstagramURL string `json:"instagramUrl"`
	TiktokURL    string `json:"tiktokUrl"`

	SetupComplete bool `json:"setupComplete" gorm:"default:false"`

	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}
