package api

import (
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"time"

	_ "github.com/freespaces/server/docs"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/freespaces/server/internal/accounts"
	"github.com/freespaces/server/internal/api/handlers"
	"github.com/freespaces/server/internal/api/middleware"
	"github.com/freespaces/server/internal/config"
	"github.com/freespaces/server/internal/posts"
	"github.com/freespaces/server/internal/repositories"
	"github.com/freespaces/server/internal/slugs"
	"github.com/freespaces/server/internal/usernames"
	"github.com/rs/cors"
)

func SetupRouter() http.Handler {
	reserved := config.Envs.ReservedUsernames
	if len(reserved) == 0 {
		reserved = usernames.DefaultReserved
	}
	usernamePolicy := usernames.NewPolicy(reserved, rand.New(rand.NewSource(time.Now().UnixNano())))

	handlers.Init(
		accounts.NewService(repositories.DB, usernamePolicy),
		posts.NewService(repositories.DB, slugs.NewPolicy()),
	)

	mainMux := http.NewServeMux()
	c := cors.New(config.Envs.CorsConfig)

	// ---------- PUBLIC ROUTES ----------
	mainMux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "OK")
	})

	mainMux.HandleFunc("/docs/", httpSwagger.WrapHandler)

	mainMux.HandleFunc("GET /api/v1/auth/google/login", handlers.HandleGoogleLogin)
	mainMux.HandleFunc("GET /api/v1/auth/google/callback", handlers.HandleGoogleCallback)

	mainMux.HandleFunc("GET /api/v1/search", handlers.SearchPosts)
	mainMux.HandleFunc("GET /api/v1/posts", handlers.ListPosts)
	mainMux.HandleFunc("GET /api/v1/posts/{id}/comments", handlers.ListComments)
	mainMux.HandleFunc("GET /api/v1/categories", handlers.ListCategories)
	mainMux.HandleFunc("GET /api/v1/categories/{name}/posts", handlers.CategoryPosts)
	mainMux.HandleFunc("GET /api/v1/users/{username}", handlers.GetUserProfile)

	// Anonymous viewers see published posts; authors also see their drafts.
	mainMux.Handle("GET /api/v1/posts/{slug}",
		middleware.OptionalAuth(http.HandlerFunc(handlers.GetPost)))

	// Registered here as a literal so the {slug} pattern can't shadow it.
	mainMux.Handle("GET /api/v1/posts/mine",
		middleware.AuthMiddleware(middleware.RequireSetup(http.HandlerFunc(handlers.MyPosts))))

	// ---------- PROTECTED ROUTES ----------
	protectedMux := http.NewServeMux()

	protectedMux.HandleFunc("POST /auth/logout", handlers.Logout)
	protectedMux.HandleFunc("GET /me", handlers.CurrentUser)
	protectedMux.HandleFunc("DELETE /account", handlers.DeleteAccount)

	// Setup-flow endpoints stay reachable while setup is incomplete.
	protectedMux.HandleFunc("POST /profile/setup", handlers.ProfileSetup)
	protectedMux.HandleFunc("POST /profile/username/validate", handlers.ValidateUsername)
	protectedMux.HandleFunc("GET /profile/username/suggest", handlers.SuggestUsername)
	protectedMux.HandleFunc("PUT /profile/username", handlers.UpdateUsername)
	protectedMux.HandleFunc("PUT /profile", handlers.UpdateProfile)
	protectedMux.HandleFunc("POST /media/avatar/presign", handlers.PresignAvatarUpload)

	// Authoring and interactions require a finished profile.
	requireSetup := func(h http.HandlerFunc) http.Handler {
		return middleware.RequireSetup(h)
	}
	protectedMux.Handle("POST /posts", requireSetup(handlers.CreatePost))
	protectedMux.Handle("PUT /posts/{id}", requireSetup(handlers.UpdatePost))
	protectedMux.Handle("DELETE /posts/{id}", requireSetup(handlers.DeletePost))
	protectedMux.Handle("POST /posts/{id}/like", requireSetup(handlers.ToggleLike))
	protectedMux.Handle("POST /posts/{id}/comments", requireSetup(handlers.AddComment))
	protectedMux.Handle("DELETE /comments/{id}", requireSetup(handlers.DeleteComment))
	protectedMux.Handle("POST /media/featured/presign", requireSetup(handlers.PresignFeaturedUpload))

	mainMux.Handle("/api/v1/",
		http.StripPrefix(
			"/api/v1",
			middleware.AuthMiddleware(protectedMux),
		),
	)

	log.Println("Router initialized")
	handler := c.Handler(mainMux)
	handler = middleware.Logger(handler)
	return handler
}
