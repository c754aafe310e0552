// Package posts implements the content lifecycle: slug assignment on save,
// the regeneration rule on edits, and the publish transition.
package posts

import (
	"errors"
	"strings"
	"time"

	"github.com/freespaces/server/internal/identifier"
	"github.com/freespaces/server/internal/models"
	"github.com/freespaces/server/internal/slugs"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrNotFound    = errors.New("post not found")
	ErrForbidden   = errors.New("not the author of this post")
	ErrSlugTaken   = errors.New("slug is already taken")
	ErrInvalidSlug = errors.New("slug must be lowercase letters, numbers, and hyphens")
	ErrBadStatus   = errors.New("status must be draft or published")
	ErrNoTitle     = errors.New("title is required")
)

type Service struct {
	db     *gorm.DB
	policy *slugs.Policy
}

func NewService(db *gorm.DB, policy *slugs.Policy) *Service {
	return &Service{db: db, policy: policy}
}

// slugExists probes the live store, excluding the post being updated.
func (s *Service) slugExists(exclude uuid.UUID) identifier.ExistsFunc {
	return func(candidate string) (bool, error) {
		q := s.db.Model(&models.Post{}).Where("slug = ?", candidate)
		if exclude != uuid.Nil {
			q = q.Where("id <> ?", exclude)
		}
		var n int64
		if err := q.Count(&n).Error; err != nil {
			return false, err
		}
		return n > 0, nil
	}
}

// ComputeSlug derives the slug the persistence path would assign for title.
func (s *Service) ComputeSlug(title string, exclude uuid.UUID) (string, error) {
	return s.policy.Generate(title, s.slugExists(exclude))
}

// checkManualSlug validates a caller-supplied slug override.
func (s *Service) checkManualSlug(slug string, exclude uuid.UUID) error {
	if len(slug) > slugs.MaxLen || !slugs.Pattern.MatchString(slug) {
		return ErrInvalidSlug
	}
	taken, err := s.slugExists(exclude)(slug)
	if err != nil {
		return err
	}
	if taken {
		return ErrSlugTaken
	}
	return nil
}

// Input carries the writable post fields. Slug, when set, is a manual
// override; it is validated but never auto-regenerated afterwards.
type Input struct {
	Title         string
	Content       string
	Slug          string
	CategoryID    *uuid.UUID
	FeaturedImage string
	Status        string
}

func (s *Service) Create(authorID uuid.UUID, in Input) (*models.Post, error) {
	if in.Title == "" {
		return nil, ErrNoTitle
	}
	status := in.Status
	if status == "" {
		status = models.StatusDraft
	}
	if status != models.StatusDraft && status != models.StatusPublished {
		return nil, ErrBadStatus
	}

	slug := in.Slug
	if slug != "" {
		if err := s.checkManualSlug(slug, uuid.Nil); err != nil {
			return nil, err
		}
	} else {
		var err error
		if slug, err = s.ComputeSlug(in.Title, uuid.Nil); err != nil {
			return nil, err
		}
	}

	post := models.Post{
		Title:         in.Title,
		Slug:          slug,
		Content:       in.Content,
		AuthorID:      authorID,
		CategoryID:    in.CategoryID,
		FeaturedImage: in.FeaturedImage,
		Status:        status,
	}
	if status == models.StatusPublished {
		now := time.Now()
		post.PublishedAt = &now
	}

	if err := s.db.Create(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Another request claimed the slug between probe and insert.
			return nil, ErrSlugTaken
		}
		return nil, err
	}
	return &post, nil
}

func (s *Service) Update(postID, authorID uuid.UUID, in Input) (*models.Post, error) {
	if in.Title == "" {
		return nil, ErrNoTitle
	}
	status := in.Status
	if status != "" && status != models.StatusDraft && status != models.StatusPublished {
		return nil, ErrBadStatus
	}

	var post models.Post
	if err := s.db.First(&post, "id = ?", postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if post.AuthorID != authorID {
		return nil, ErrForbidden
	}

	switch {
	case in.Slug != "" && in.Slug != post.Slug:
		// Manual override.
		if err := s.checkManualSlug(in.Slug, post.ID); err != nil {
			return nil, err
		}
		post.Slug = in.Slug
	case in.Slug == "" && s.policy.ShouldRegenerate(post.Title, in.Title, post.Slug != "", false):
		slug, err := s.ComputeSlug(in.Title, post.ID)
		if err != nil {
			return nil, err
		}
		post.Slug = slug
	}

	post.Title = in.Title
	post.Content = in.Content
	post.CategoryID = in.CategoryID
	if in.FeaturedImage != "" {
		post.FeaturedImage = in.FeaturedImage
	}
	if status != "" {
		post.Status = status
	}
	// First transition to published stamps the record once; unpublishing
	// and republishing keeps the original timestamp.
	if post.Status == models.StatusPublished && post.PublishedAt == nil {
		now := time.Now()
		post.PublishedAt = &now
	}

	if err := s.db.Save(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrSlugTaken
		}
		return nil, err
	}
	return &post, nil
}

func (s *Service) Delete(postID, authorID uuid.UUID) error {
	var post models.Post
	if err := s.db.First(&post, "id = ?", postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if post.AuthorID != authorID {
		return ErrForbidden
	}
	return s.db.Delete(&post).Error
}

// GetBySlug returns a published post, or any post when the requester is its
// author (drafts stay private).
func (s *Service) GetBySlug(slug string, requester uuid.UUID) (*models.Post, error) {
	var post models.Post
	err := s.db.Preload("Author").Preload("Author.Profile").Preload("Category").
		Where("slug = ?", slug).First(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if post.Status != models.StatusPublished && post.AuthorID != requester {
		return nil, ErrNotFound
	}
	return &post, nil
}

// ListPublished returns published posts newest first, optionally filtered
// by category name.
func (s *Service) ListPublished(categoryName string, limit, offset int) ([]models.Post, error) {
	q := s.db.Preload("Author").Preload("Category").
		Where("status = ?", models.StatusPublished).
		Order("posts.created_at DESC").Limit(limit).Offset(offset)
	if categoryName != "" {
		q = q.Joins("JOIN categories ON categories.id = posts.category_id").
			Where("categories.name = ?", categoryName)
	}
	var out []models.Post
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// searchQuery builds the published-post filter shared by the result and
// count queries. Matching is case-insensitive across title, content, author
// handle, and category name.
func (s *Service) searchQuery(query string) *gorm.DB {
	like := "%" + strings.ToLower(query) + "%"
	return s.db.Model(&models.Post{}).
		Joins("JOIN users ON users.id = posts.author_id").
		Joins("LEFT JOIN categories ON categories.id = posts.category_id").
		Where("posts.status = ?", models.StatusPublished).
		Where(
			s.db.Where("LOWER(posts.title) LIKE ?", like).
				Or("LOWER(posts.content) LIKE ?", like).
				Or("LOWER(users.username) LIKE ?", like).
				Or("LOWER(categories.name) LIKE ?", like),
		)
}

// Search returns published posts matching query, newest first, along with
// the total match count for the result header.
func (s *Service) Search(query string, limit, offset int) ([]models.Post, int64, error) {
	var total int64
	if err := s.searchQuery(query).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var out []models.Post
	err := s.searchQuery(query).
		Select("posts.*").
		Preload("Author").Preload("Category").
		Order("posts.created_at DESC").Limit(limit).Offset(offset).
		Find(&out).Error
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// ListByAuthor returns all of an author's posts, drafts included.
func (s *Service) ListByAuthor(authorID uuid.UUID) ([]models.Post, error) {
	var out []models.Post
	err := s.db.Preload("Category").
		Where("author_id = ?", authorID).
		Order("created_at DESC").Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
