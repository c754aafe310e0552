package models

import (
	"time"

	"github.com/google/uuid"
)

// Like is unique per (user, post); liking twice removes the like.
type Like struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `json:"userId" gorm:"type:uuid;uniqueIndex:idx_likes_user_post;not null"`
	PostID    uuid.UUID `json:"postId" gorm:"type:uuid;uniqueIndex:idx_likes_user_post;not null"`
	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
}
