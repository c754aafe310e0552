package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/freespaces/server/internal/api/middleware"
	"github.com/freespaces/server/internal/models"
	"github.com/freespaces/server/internal/repositories"
	"github.com/freespaces/server/internal/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// loadPublishedPost fetches the target of a like/comment; drafts are not
// interactable.
func loadPublishedPost(w http.ResponseWriter, rawID string) (*models.Post, bool) {
	postID, err := uuid.Parse(rawID)
	if err != nil {
		utils.JSONError(w, http.StatusBadRequest, "Invalid post id")
		return nil, false
	}

	var post models.Post
	err = repositories.DB.Where("id = ? AND status = ?", postID, models.StatusPublished).First(&post).Error
	switch {
	case err == nil:
		return &post, true
	case errors.Is(err, gorm.ErrRecordNotFound):
		utils.JSONError(w, http.StatusNotFound, "Post not found")
		return nil, false
	default:
		utils.JSONError(w, http.StatusInternalServerError, "Database query failed")
		return nil, false
	}
}

// POST /posts/{id}/like
// ToggleLike godoc
// @Summary Like or unlike a post
// @Description Idempotent toggle: liking an already-liked post removes the like
// @Tags Interactions
// @Produce json
// @Success 200 {object} utils.Payload
// @Failure 404 {object} utils.Payload
// @Router /api/v1/posts/{id}/like [post]
func ToggleLike(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.JSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	userID, ok := middleware.UserID(r)
	if !ok {
		utils.JSONError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	post, ok := loadPublishedPost(w, r.PathValue("id"))
	if !ok {
		return
	}

	liked := false
	err := repositories.DB.Transaction(func(tx *gorm.DB) error {
		var like models.Like
		err := tx.Where("user_id = ? AND post_id = ?", userID, post.ID).First(&like).Error
		switch {
		case err == nil:
			return tx.Delete(&like).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			liked = true
			err = tx.Create(&models.Like{UserID: userID, PostID: post.ID}).Error
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				// Concurrent double-tap; the like already exists.
				liked = true
				return nil
			}
			return err
		default:
			return err
		}
	})
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "Failed to toggle like")
		return
	}

	var likeCount int64
	repositories.DB.Model(&models.Like{}).Where("post_id = ?", post.ID).Count(&likeCount)

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Like toggled",
		Data: map[string]any{
			"liked":     liked,
			"likeCount": likeCount,
		},
	})
}

// GET /posts/{id}/comments
func ListComments(w http.ResponseWriter, r *http.Request) {
	post, ok := loadPublishedPost(w, r.PathValue("id"))
	if !ok {
		return
	}

	limit, offset := pagination(r)

	var comments []models.Comment
	err := repositories.DB.Preload("User").Preload("User.Profile").
		Where("post_id = ?", post.ID).
		Order("created_at DESC").Limit(limit).Offset(offset).
		Find(&comments).Error
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "Database query failed")
		return
	}

	var total int64
	repositories.DB.Model(&models.Comment{}).Where("post_id = ?", post.ID).Count(&total)

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Comments fetched",
		Data: map[string]any{
			"comments":     comments,
			"commentCount": total,
		},
	})
}

// POST /posts/{id}/comments
// AddComment godoc
// @Summary Comment on a published post
// @Tags Interactions
// @Accept json
// @Produce json
// @Success 201 {object} utils.Payload
// @Failure 400 {object} utils.Payload
// @Router /api/v1/posts/{id}/comments [post]
func AddComment(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.JSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	userID, ok := middleware.UserID(r)
	if !ok {
		utils.JSONError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	post, ok := loadPublishedPost(w, r.PathValue("id"))
	if !ok {
		return
	}

	var input struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	content := strings.TrimSpace(input.Content)
	if content == "" {
		utils.JSONError(w, http.StatusBadRequest, "Comment content is required")
		return
	}
	if len(content) > 1000 {
		utils.JSONError(w, http.StatusBadRequest, "Comment is too long (max 1000 characters)")
		return
	}

	comment := models.Comment{
		UserID:  userID,
		PostID:  post.ID,
		Content: content,
	}
	if err := repositories.DB.Create(&comment).Error; err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "Failed to create comment")
		return
	}

	var total int64
	repositories.DB.Model(&models.Comment{}).Where("post_id = ?", post.ID).Count(&total)

	utils.JSONResponse(w, http.StatusCreated, utils.Payload{
		Success: true,
		Message: "Comment added",
		Data: map[string]any{
			"comment":      comment,
			"commentCount": total,
		},
	})
}

// DELETE /comments/{id}
func DeleteComment(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		utils.JSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	userID, ok := middleware.UserID(r)
	if !ok {
		utils.JSONError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	commentID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		utils.JSONError(w, http.StatusBadRequest, "Invalid comment id")
		return
	}

	var comment models.Comment
	err = repositories.DB.First(&comment, "id = ?", commentID).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		utils.JSONError(w, http.StatusNotFound, "Comment not found")
		return
	case err != nil:
		utils.JSONError(w, http.StatusInternalServerError, "Database query failed")
		return
	}

	if comment.UserID != userID {
		utils.JSONError(w, http.StatusForbidden, "You can only delete your own comments")
		return
	}

	if err := repositories.DB.Delete(&comment).Error; err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "Failed to delete comment")
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Comment deleted",
	})
}
