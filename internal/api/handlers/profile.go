package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/freespaces/server/internal/accounts"
	"github.com/freespaces/server/internal/api/middleware"
	"github.com/freespaces/server/internal/repositories"
	"github.com/freespaces/server/internal/utils"
)

// POST /profile/setup
// ProfileSetup godoc
// @Summary Complete profile setup
// @Description Assigns the chosen username, applies profile fields, and marks the account active
// @Tags Profile
// @Accept json
// @Produce json
// @Success 200 {object} utils.Payload
// @Failure 400 {object} utils.Payload
// @Failure 409 {object} utils.Payload
// @Router /api/v1/profile/setup [post]
func ProfileSetup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.JSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	userID, ok := middleware.UserID(r)
	if !ok {
		utils.JSONError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var input struct {
		Username  string `json:"username"`
		Bio       string `json:"bio"`
		AvatarKey string `json:"avatarKey"`
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&input); err != nil || input.Username == "" {
		utils.JSONError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	// The avatar must already be in the bucket; verifying up front keeps the
	// setup transaction all-or-nothing.
	if input.AvatarKey != "" {
		found, err := repositories.MediaObjectExists(r.Context(), input.AvatarKey)
		if err != nil {
			utils.JSONError(w, http.StatusInternalServerError, "Failed to verify avatar upload")
			return
		}
		if !found {
			utils.JSONError(w, http.StatusBadRequest, "Avatar upload not found")
			return
		}
	}

	user, err := accountService.CompleteSetup(userID, accounts.SetupInput{
		Username:  input.Username,
		Bio:       input.Bio,
		AvatarKey: input.AvatarKey,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: fmt.Sprintf("Welcome to Freespaces, %s!", user.DisplayUsername()),
		Data:    user,
	})
}

// POST /profile/username/validate
// ValidateUsername godoc
// @Summary Live username validation
// @Description Used by the setup and settings forms on every keystroke pause; never persists
// @Tags Profile
// @Accept json
// @Produce json
// @Success 200 {object} utils.Payload
// @Router /api/v1/profile/username/validate [post]
func ValidateUsername(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.JSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	userID, ok := middleware.UserID(r)
	if !ok {
		utils.JSONError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var input struct {
		Username string `json:"username"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.Username == "" {
		utils.JSONError(w, http.StatusBadRequest, "Username is required")
		return
	}

	// The caller's own handle never counts against itself.
	clean, err := accountService.ValidateUsername(input.Username, userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Username is available",
		Data:    map[string]string{"cleanUsername": clean},
	})
}

// GET /profile/username/suggest
func SuggestUsername(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r)
	if !ok {
		utils.JSONError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	user, err := accountService.GetByID(userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	suggestion, err := accountService.Suggest(user.FirstName, user.Email)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Suggestion generated",
		Data:    map[string]string{"username": suggestion},
	})
}

// PUT /profile/username
// UpdateUsername godoc
// @Summary Rename the account's handle
// @Description Re-validates policy and uniqueness; the old handle becomes available immediately
// @Tags Profile
// @Accept json
// @Produce json
// @Success 200 {object} utils.Payload
// @Failure 409 {object} utils.Payload
// @Router /api/v1/profile/username [put]
func UpdateUsername(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		utils.JSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	userID, ok := middleware.UserID(r)
	if !ok {
		utils.JSONError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var input struct {
		Username string `json:"username"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.Username == "" {
		utils.JSONError(w, http.StatusBadRequest, "Username is required")
		return
	}

	clean, err := accountService.AssignUsername(userID, input.Username)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: fmt.Sprintf("Username successfully updated to @%s", clean),
		Data:    map[string]string{"username": clean},
	})
}

// PUT /profile
func UpdateProfile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		utils.JSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	userID, ok := middleware.UserID(r)
	if !ok {
		utils.JSONError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var input struct {
		Bio          string `json:"bio"`
		Website      string `json:"website"`
		Location     string `json:"location"`
		FacebookURL  string `json:"facebookUrl"`
		InstagramURL string `json:"instagramUrl"`
		TiktokURL    string `json:"tiktokUrl"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if len(input.Bio) > 500 {
		utils.JSONError(w, http.StatusBadRequest, "Bio is too long (max 500 characters)")
		return
	}

	err := accountService.UpdateProfile(userID, accounts.ProfileInput{
		Bio:          input.Bio,
		Website:      input.Website,
		Location:     input.Location,
		FacebookURL:  input.FacebookURL,
		InstagramURL: input.InstagramURL,
		TiktokURL:    input.TiktokURL,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Your profile has been updated!",
	})
}

// GET /users/{username}
// GetUserProfile godoc
// @Summary Public profile with published-post and like counters
// @Tags Profile
// @Produce json
// @Param username path string true "Handle without the @ prefix"
// @Success 200 {object} utils.Payload
// @Failure 404 {object} utils.Payload
// @Router /api/v1/users/{username} [get]
func GetUserProfile(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")
	if username == "" {
		utils.JSONError(w, http.StatusBadRequest, "Username is required")
		return
	}

	user, err := accountService.GetByUsername(username)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	postCount, likesReceived, err := accountService.Stats(user.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	avatarURL := ""
	if user.Profile != nil {
		avatarURL = repositories.MediaURL(user.Profile.AvatarKey)
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Profile found",
		Data: map[string]any{
			"user":          user,
			"avatarUrl":     avatarURL,
			"postsCount":    postCount,
			"likesReceived": likesReceived,
		},
	})
}
