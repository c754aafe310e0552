package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

type Post struct {
	ID            uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	Title         string     `json:"title" gorm:"size:200;not null"`
	Slug          string     `json:"slug" gorm:"uniqueIndex;size:255;not null"`
	Content       string     `json:"content" gorm:"type:text;not null"`
	AuthorID      uuid.UUID  `json:"authorId" gorm:"type:uuid;index;not null"`
	CategoryID    *uuid.UUID `json:"categoryId" gorm:"type:uuid;index"`
	FeaturedImage string     `json:"featuredImage"` // object key in media storage
	Status        string     `json:"status" gorm:"size:10;default:'draft'"`
	CreatedAt     time.Time  `json:"createdAt" gorm:"autoCreateTime;index:,sort:desc"`
	UpdatedAt     time.Time  `json:"updatedAt" gorm:"autoUpdateTime"`
	// Set exactly once, the first time the post is published.
	PublishedAt *time.Time `json:"publishedAt"`

	Author   *User     `json:"author,omitempty" gorm:"foreignKey:AuthorID"`
	Category *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL"`
	Likes    []Like    `json:"-" gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
	Comments []Comment `json:"-" gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
}

// Excerpt returns the first 150 characters of the content for list views.
func (p *Post) Excerpt() string {
	const max = 150
	if len(p.Content) > max {
		return p.Content[:max] + "..."
	}
	return p.Content
}
