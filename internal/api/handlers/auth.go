package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/freespaces/server/internal/accounts"
	"github.com/freespaces/server/internal/api/middleware"
	"github.com/freespaces/server/internal/api/services"
	"github.com/freespaces/server/internal/config"
	"github.com/freespaces/server/internal/models"
	"github.com/freespaces/server/internal/utils"
	"github.com/golang-jwt/jwt/v5"
)

// JWT Claims struct
type Claims struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

const sessionDuration = 24 * time.Hour

// setSessionCookie signs the session JWT and attaches it to the response.
func setSessionCookie(w http.ResponseWriter, user *models.User) error {
	username := ""
	if user.Username != nil {
		username = *user.Username
	}

	expiration := time.Now().Add(sessionDuration)
	claims := &Claims{
		UserID:   user.ID.String(),
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiration),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte(config.Envs.JWTSecret))
	if err != nil {
		return err
	}

	isProd := config.Envs.Environment == "production"
	sameSite := http.SameSiteLaxMode
	if isProd {
		sameSite = http.SameSiteNoneMode
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    tokenString,
		Path:     "/",
		MaxAge:   int(sessionDuration.Seconds()),
		Secure:   isProd,
		HttpOnly: true,
		SameSite: sameSite,
	})
	return nil
}

// GET /auth/google/login
// HandleGoogleLogin godoc
// @Summary Start the Google sign-in flow
// @Description Redirects to Google's consent screen; the optional next query parameter is carried through the OAuth state
// @Tags Auth
// @Param next query string false "Frontend path to return to"
// @Success 307
// @Router /api/v1/auth/google/login [get]
func HandleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	next := r.URL.Query().Get("next")

	state, err := GenerateState(map[string]string{"next": next})
	if err != nil {
		http.Error(w, "Failed to generate OAuth state", http.StatusInternalServerError)
		return
	}

	url := services.GoogleOauthConfig.AuthCodeURL(state)
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

// GET /auth/google/callback
func HandleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	stateData, err := DecodeState(r.FormValue("state"))
	if err != nil {
		http.Error(w, "Invalid OAuth state", http.StatusBadRequest)
		return
	}

	googleUser, err := services.FetchGoogleUser(r.Context(), r.FormValue("code"))
	if err != nil {
		log.Println("Google callback error:", err)
		http.Redirect(w, r, config.Envs.FrontendURL+"/?error=auth_failed", http.StatusTemporaryRedirect)
		return
	}

	// One credential, one identity: attach to the user owning this email or
	// create a fresh account with an incomplete profile.
	user, err := accountService.LinkOrCreate(accounts.GoogleProfile{
		Sub:        googleUser.ID,
		Email:      googleUser.Email,
		GivenName:  googleUser.GivenName,
		FamilyName: googleUser.FamilyName,
		Picture:    googleUser.Picture,
	})
	if err != nil {
		log.Println("Link-or-create failed:", err)
		http.Error(w, "Failed to sign in", http.StatusInternalServerError)
		return
	}

	if err := setSessionCookie(w, user); err != nil {
		http.Error(w, "Failed to create session", http.StatusInternalServerError)
		return
	}

	// Accounts without a finished profile always land on setup.
	redirectURL := config.Envs.FrontendURL
	switch {
	case user.Profile == nil || !user.Profile.SetupComplete:
		redirectURL += "/setup"
	case stateData["next"] != "":
		redirectURL += stateData["next"]
	}

	http.Redirect(w, r, redirectURL, http.StatusTemporaryRedirect)
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    "",
		Path:     "/",
		MaxAge:   -1, // maxAge < 0 deletes the cookie
		Secure:   config.Envs.Environment == "production",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// POST /auth/logout
// Logout godoc
// @Summary Clear the session cookie
// @Tags Auth
// @Produce json
// @Success 200 {object} utils.Payload
// @Router /api/v1/auth/logout [post]
func Logout(w http.ResponseWriter, r *http.Request) {
	clearSessionCookie(w)

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Logged out successfully",
	})
}

// DELETE /account
// DeleteAccount godoc
// @Summary Permanently delete the account
// @Description Requires the literal confirmation string DELETE; removes the profile, posts, likes, and comments and ends the session
// @Tags Auth
// @Accept json
// @Produce json
// @Success 200 {object} utils.Payload
// @Failure 400 {object} utils.Payload
// @Router /api/v1/account [delete]
func DeleteAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r)
	if !ok {
		utils.JSONError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var input struct {
		Confirm string `json:"confirm"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.Confirm != "DELETE" {
		utils.JSONError(w, http.StatusBadRequest, "Account deletion confirmation failed")
		return
	}

	if err := accountService.Delete(userID); err != nil {
		writeServiceError(w, err)
		return
	}

	clearSessionCookie(w)

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Your account has been permanently deleted",
	})
}

// GET /me
func CurrentUser(w http.ResponseWriter, r *http.Request) {
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

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: fmt.Sprintf("Signed in as %s", user.Email),
		Data:    user,
	})
}
