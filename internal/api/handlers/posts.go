package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/freespaces/server/internal/api/middleware"
	"github.com/freespaces/server/internal/models"
	"github.com/freespaces/server/internal/posts"
	"github.com/freespaces/server/internal/repositories"
	"github.com/freespaces/server/internal/utils"
	"github.com/google/uuid"
)

type postInput struct {
	Title         string     `json:"title"`
	Content       string     `json:"content"`
	Slug          string     `json:"slug"`
	CategoryID    *uuid.UUID `json:"categoryId"`
	FeaturedImage string     `json:"featuredImage"`
	Status        string     `json:"status"`
}

func (in postInput) toService() posts.Input {
	return posts.Input{
		Title:         in.Title,
		Content:       in.Content,
		Slug:          in.Slug,
		CategoryID:    in.CategoryID,
		FeaturedImage: in.FeaturedImage,
		Status:        in.Status,
	}
}

func pagination(r *http.Request) (limit, offset int) {
	limit = 20
	if n, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && n > 0 && n <= 100 {
		limit = n
	}
	if n, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && n > 0 {
		offset = n
	}
	return limit, offset
}

// GET /posts
// ListPosts godoc
// @Summary Published posts, newest first
// @Tags Posts
// @Produce json
// @Param category query string false "Filter by category name"
// @Param limit query int false "Page size (max 100)"
// @Param offset query int false "Page offset"
// @Success 200 {object} utils.Payload
// @Router /api/v1/posts [get]
func ListPosts(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	list, err := postService.ListPublished(r.URL.Query().Get("category"), limit, offset)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Posts fetched",
		Data:    list,
	})
}

// GET /search
// SearchPosts godoc
// @Summary Search published posts
// @Description Case-insensitive match across title, content, author handle, and category name
// @Tags Posts
// @Produce json
// @Param q query string true "Search terms"
// @Param limit query int false "Page size (max 100)"
// @Param offset query int false "Page offset"
// @Success 200 {object} utils.Payload
// @Router /api/v1/search [get]
func SearchPosts(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		utils.JSONResponse(w, http.StatusOK, utils.Payload{
			Success: true,
			Message: "Search results",
			Data: map[string]any{
				"query":        "",
				"posts":        []models.Post{},
				"totalResults": 0,
			},
		})
		return
	}

	limit, offset := pagination(r)
	list, total, err := postService.Search(query, limit, offset)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Search results",
		Data: map[string]any{
			"query":        query,
			"posts":        list,
			"totalResults": total,
		},
	})
}

// GET /posts/{slug}
func GetPost(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")

	// Authors can view their own drafts; everyone else sees published only.
	requester, _ := middleware.UserID(r)

	post, err := postService.GetBySlug(slug, requester)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Post found",
		Data:    post,
	})
}

// GET /posts/mine
func MyPosts(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r)
	if !ok {
		utils.JSONError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	list, err := postService.ListByAuthor(userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Posts fetched",
		Data:    list,
	})
}

// POST /posts
// CreatePost godoc
// @Summary Create a post
// @Description The slug is derived from the title unless a manual override is supplied
// @Tags Posts
// @Accept json
// @Produce json
// @Success 201 {object} utils.Payload
// @Failure 400 {object} utils.Payload
// @Failure 409 {object} utils.Payload
// @Router /api/v1/posts [post]
func CreatePost(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.JSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	userID, ok := middleware.UserID(r)
	if !ok {
		utils.JSONError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var input postInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	post, err := postService.Create(userID, input.toService())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	utils.JSONResponse(w, http.StatusCreated, utils.Payload{
		Success: true,
		Message: "Post created",
		Data:    post,
	})
}

// PUT /posts/{id}
func UpdatePost(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		utils.JSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	userID, ok := middleware.UserID(r)
	if !ok {
		utils.JSONError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	postID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		utils.JSONError(w, http.StatusBadRequest, "Invalid post id")
		return
	}

	var input postInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	post, err := postService.Update(postID, userID, input.toService())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Post updated",
		Data:    post,
	})
}

// DELETE /posts/{id}
func DeletePost(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		utils.JSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	userID, ok := middleware.UserID(r)
	if !ok {
		utils.JSONError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	postID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		utils.JSONError(w, http.StatusBadRequest, "Invalid post id")
		return
	}

	if err := postService.Delete(postID, userID); err != nil {
		writeServiceError(w, err)
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Post deleted",
	})
}

// GET /categories
func ListCategories(w http.ResponseWriter, r *http.Request) {
	var categories []models.Category
	if err := repositories.DB.Order("name").Find(&categories).Error; err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "Database query failed")
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Categories fetched",
		Data:    categories,
	})
}

// GET /categories/{name}/posts
func CategoryPosts(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if name == "" {
		utils.JSONError(w, http.StatusBadRequest, "Category name is required")
		return
	}

	limit, offset := pagination(r)
	list, err := postService.ListPublished(name, limit, offset)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Posts fetched",
		Data:    list,
	})
}
