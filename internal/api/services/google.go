package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/freespaces/server/internal/config"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

var GoogleOauthConfig = &oauth2.Config{
	ClientID:     config.Envs.Google.ClientID,
	ClientSecret: config.Envs.Google.ClientSecret,
	RedirectURL:  config.Envs.Google.RedirectURL,
	Scopes: []string{
		"https://www.googleapis.com/auth/userinfo.email",
		"https://www.googleapis.com/auth/userinfo.profile",
	},
	Endpoint: google.Endpoint,
}

const userinfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// GoogleUser mirrors the fields read from the userinfo endpoint.
type GoogleUser struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	Picture    string `json:"picture"`
}

// FetchGoogleUser exchanges the callback code for a token and reads the
// user's profile from the userinfo endpoint.
func FetchGoogleUser(ctx context.Context, code string) (*GoogleUser, error) {
	token, err := GoogleOauthConfig.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("code exchange failed: %w", err)
	}

	client := GoogleOauthConfig.Client(ctx, token)
	resp, err := client.Get(userinfoURL)
	if err != nil {
		return nil, fmt.Errorf("failed to get user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo endpoint returned %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read user info: %w", err)
	}

	var gu GoogleUser
	if err := json.Unmarshal(data, &gu); err != nil {
		return nil, fmt.Errorf("failed to parse user info: %w", err)
	}
	if gu.Email == "" {
		return nil, fmt.Errorf("userinfo response missing email")
	}
	return &gu, nil
}
