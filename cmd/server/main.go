package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/mediapress/mediapress/pkg/mediapress"
	"github.com/mediapress/mediapress/pkg/mediapress/api"
	"github.com/mediapress/mediapress/pkg/mediapress/config"
	"github.com/mediapress/mediapress/pkg/mediapress/web"
)

func main() {
	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load server configuration: %v", err)
	}

	// Build service from configuration
	svc, cleanup, err := cfg.BuildService(context.Background())
	if err != nil {
		log.Fatalf("Failed to build service: %v", err)
	}
	defer cleanup()

	tokens := api.NewTokenAuth(cfg.JWTSecret)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: routes(cfg, svc, tokens),
	}

	// Start server in a goroutine
	go func() {
		log.Printf("MediaPress server starting on port %s (env: %s)", cfg.Port, cfg.Environment)
		log.Printf("Database: %s", cfg.DatabaseURL)
		log.Printf("Storage: %s", cfg.StorageURL)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}

// routes sets up the HTTP routes
func routes(cfg *config.ServerConfig, svc mediapress.Service, tokens *api.TokenAuth) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS for development
	if cfg.Environment == "development" {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
			MaxAge:         300,
		}))
	}

	// Health check
	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status": "healthy", "environment": "%s"}`, cfg.Environment)
	})

	authHandler := api.NewAuthHandler(svc, tokens)

	// JSON API
	r.Route("/api", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(tokens.Verifier())
			r.Use(tokens.Authenticate)

			r.Post("/logout", authHandler.Logout)

			r.Group(func(r chi.Router) {
				r.Use(tokens.RequireAccess(1))
				r.Mount("/posts", api.NewPostHandler(svc).Routes())
			})
		})
	})

	// Server-rendered product pages
	r.Mount("/products", web.NewProductHandler(svc).Routes())

	// Stored images
	r.Mount("/storage", api.NewStorageHandler(svc).Routes())

	return r
}
