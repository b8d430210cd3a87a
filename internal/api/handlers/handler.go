package handlers

import (
	"learngauge/internal/db"
	"learngauge/internal/quiz"

	"golang.org/x/oauth2"
)

// Handler carries the dependencies of the API handlers.
type Handler struct {
	OauthConfig *oauth2.Config
	DB          *db.DB
	Generator   *quiz.Generator
	FrontendURL string
}

// NewHandler creates a new Handler.
func NewHandler(oauth *oauth2.Config, database *db.DB, generator *quiz.Generator, frontendURL string) *Handler {
	return &Handler{
		OauthConfig: oauth,
		DB:          database,
		Generator:   generator,
		FrontendURL: frontendURL,
	}
}
