package main

import (
	"context"
	"database/sql"
	"encoding/gob"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"learngauge/internal/api"
	"learngauge/internal/api/handlers"
	"learngauge/internal/config"
	"learngauge/internal/db"
	"learngauge/internal/gemini"
	"learngauge/internal/pdftext"
	"learngauge/internal/quiz"
	"learngauge/internal/ratelimit"
	"learngauge/internal/storage"

	sessions "github.com/gin-contrib/sessions"
	gsessions "github.com/gin-contrib/sessions/postgres"
	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver for the database/sql session store
	"github.com/joho/godotenv"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const sessionStoreName = "learngauge_session"

func main() {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Fatalf("FATAL: Error loading .env file: %v", err)
		}
		log.Println("WARN: .env file not found, relying on system environment variables")
	}

	cfg := config.Load()

	// Session payloads are gob-encoded, so the concrete profile type must be
	// registered before any session is written.
	gob.Register(handlers.UserProfile{})

	if cfg.GoogleClientID == "" || cfg.GoogleClientSecret == "" || cfg.GoogleRedirectURL == "" {
		log.Fatal("FATAL: GOOGLE_CLIENT_ID, GOOGLE_CLIENT_SECRET, and GOOGLE_REDIRECT_URL environment variables must be set")
	}
	oauthConfig := &oauth2.Config{
		RedirectURL:  cfg.GoogleRedirectURL,
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	database, err := db.NewDB(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("FATAL: Failed to connect to database: %v", err)
	}
	defer database.Close()

	geminiClient, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize Gemini client: %v", err)
	}
	defer geminiClient.Close()

	storageClient, err := storage.New(cfg.StorageAccountID, cfg.StorageBucket,
		cfg.StorageAccessKeyID, cfg.StorageSecretAccessKey)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize storage client: %v", err)
	}

	limiter := ratelimit.New(cfg.RateLimitMaxRequests,
		time.Duration(cfg.RateLimitWindowMillis)*time.Millisecond,
		cfg.RateLimitMaxRetries)
	generator := quiz.NewGenerator(storageClient, pdftext.New(), geminiClient, limiter)

	router := gin.Default()

	// The session store rides on a database/sql pool separate from the pgx
	// pool the repositories use.
	sessionDB, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("FATAL: Failed to open database connection for session store: %v", err)
	}
	defer sessionDB.Close()
	if err := sessionDB.Ping(); err != nil {
		log.Fatalf("FATAL: Failed to ping database for session store: %v", err)
	}

	store, err := gsessions.NewStore(sessionDB, []byte(cfg.SessionSecret))
	if err != nil {
		log.Fatalf("FATAL: Failed to create postgres session store: %v", err)
	}
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		Secure:   false,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	router.Use(sessions.Sessions(sessionStoreName, store))

	handler := handlers.NewHandler(oauthConfig, database, generator, cfg.FrontendURL)
	api.SetupRoutes(router, handler)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("INFO: Server listening on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("FATAL: Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("INFO: Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("FATAL: Server forced to shutdown: %v", err)
	}

	log.Println("INFO: Server exited properly")
}
