package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/freespaces/server/internal/api"
	"github.com/freespaces/server/internal/config"
	"github.com/freespaces/server/internal/repositories"
)

// @title Freespaces API
// @version 1.0
// @description OAuth-only social blogging backend: Google sign-in, profiles with unique usernames, posts, categories, likes, and comments.
// @BasePath /
func main() {
	// Connect to database
	repositories.ConnectDatabase()

	if err := repositories.InitMedia(config.Envs.R2); err != nil {
		log.Fatal("Failed to initialize media storage:", err)
	}

	mux := api.SetupRouter()

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", config.Envs.Port),
		Handler: mux,
		// Timeouts prevent resource exhaustion from slow clients
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Starting Freespaces server on port: %s", config.Envs.Port)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Could not listen on port %s: %v", config.Envs.Port, err)
	}
}
