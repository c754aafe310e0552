package middleware

import (
	"net/http"

	"github.com/freespaces/server/internal/models"
	"github.com/freespaces/server/internal/repositories"
	"github.com/freespaces/server/internal/utils"
)

// RequireSetup gates content routes until the profile setup flow has
// finished, so an account without a username can't author anything. The
// setup/validation endpoints themselves sit outside this middleware.
func RequireSetup(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		userID, ok := UserID(r)
		if !ok {
			utils.JSONError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		var profile models.Profile
		err := repositories.DB.Select("setup_complete").
			Where("user_id = ?", userID).First(&profile).Error
		if err != nil || !profile.SetupComplete {
			utils.JSONError(w, http.StatusForbidden, "Profile setup required")
			return
		}

		next.ServeHTTP(w, r)
	})
}
