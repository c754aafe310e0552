package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/freespaces/server/internal/api/middleware"
	"github.com/freespaces/server/internal/repositories"
	"github.com/freespaces/server/internal/utils"
	"github.com/google/uuid"
)

const presignExpiry = 15 * time.Minute

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

func decodeImageRequest(w http.ResponseWriter, r *http.Request) (ext, contentType string, ok bool) {
	var input struct {
		ContentType string `json:"contentType"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "Invalid input")
		return "", "", false
	}
	ext, allowed := allowedImageTypes[input.ContentType]
	if !allowed {
		utils.JSONError(w, http.StatusBadRequest, "Unsupported image type")
		return "", "", false
	}
	return ext, input.ContentType, true
}

func presignResponse(w http.ResponseWriter, r *http.Request, key, contentType string) {
	url, err := repositories.PresignMediaUpload(r.Context(), key, contentType, presignExpiry)
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "Failed to presign upload")
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Upload URL generated",
		Data: map[string]string{
			"uploadUrl": url,
			"key":       key,
			"publicUrl": repositories.MediaURL(key),
		},
	})
}

// POST /media/avatar/presign
// PresignAvatarUpload godoc
// @Summary Presigned PUT URL for the caller's avatar
// @Tags Media
// @Accept json
// @Produce json
// @Success 200 {object} utils.Payload
// @Failure 400 {object} utils.Payload
// @Router /api/v1/media/avatar/presign [post]
func PresignAvatarUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.JSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	userID, ok := middleware.UserID(r)
	if !ok {
		utils.JSONError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	ext, contentType, ok := decodeImageRequest(w, r)
	if !ok {
		return
	}

	presignResponse(w, r, repositories.AvatarKey(userID, ext), contentType)
}

// POST /media/featured/presign
func PresignFeaturedUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.JSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	if _, ok := middleware.UserID(r); !ok {
		utils.JSONError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	ext, contentType, ok := decodeImageRequest(w, r)
	if !ok {
		return
	}

	presignResponse(w, r, repositories.FeaturedImageKey(uuid.New(), ext), contentType)
}
