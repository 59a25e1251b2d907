package server

import (
	"log/slog"
	"net/http"
)

// Config contains server configuration options.
type Config struct {
	// AllowedOrigins is the list of allowed CORS origins.
	AllowedOrigins []string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		AllowedOrigins: []string{"*"},
	}
}

// NewRouter creates the HTTP router with all routes configured.
// It uses Go 1.22+ ServeMux method-based routing.
func NewRouter(h *Handlers, logger *slog.Logger, cfg Config) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", h.Health)

	mux.HandleFunc("GET /api/narration/voices", h.Voices)
	mux.HandleFunc("GET /api/narration/credits/{authorID}", h.Credits)
	mux.HandleFunc("POST /api/narration/generate/{authorID}", h.Generate)
	mux.HandleFunc("GET /api/narration/job/{id}", h.GetJob)
	mux.HandleFunc("POST /api/narration/process/{id}", h.ProcessJob)

	mux.HandleFunc("POST /api/authors", h.CreateAuthor)
	mux.HandleFunc("GET /api/authors", h.ListAuthors)
	mux.HandleFunc("GET /api/authors/{username}", h.GetAuthor)
	mux.HandleFunc("PATCH /api/authors/{id}", h.UpdateAuthor)

	mux.HandleFunc("POST /api/playlists/{authorID}", h.CreatePlaylist)
	mux.HandleFunc("GET /api/playlists/{authorID}", h.ListPlaylists)
	mux.HandleFunc("GET /api/playlists/detail/{id}", h.GetPlaylist)
	mux.HandleFunc("PATCH /api/playlists/{id}", h.UpdatePlaylist)
	mux.HandleFunc("DELETE /api/playlists/{id}", h.DeletePlaylist)

	mux.HandleFunc("POST /api/comments", h.CreateComment)
	mux.HandleFunc("GET /api/comments/reports", h.ListReports)
	mux.HandleFunc("GET /api/comments/{episodeID}", h.ListComments)
	mux.HandleFunc("DELETE /api/comments/{id}", h.DeleteComment)
	mux.HandleFunc("POST /api/comments/{id}/like", h.LikeComment)
	mux.HandleFunc("POST /api/comments/episodes/{episodeID}/like", h.LikeEpisode)
	mux.HandleFunc("GET /api/comments/episodes/{episodeID}/liked", h.EpisodeLiked)
	mux.HandleFunc("POST /api/comments/{id}/report", h.ReportComment)

	mux.HandleFunc("GET /api/subscriptions/check/{subscriberID}/{authorID}", h.CheckSubscription)
	mux.HandleFunc("POST /api/subscriptions", h.Subscribe)
	mux.HandleFunc("DELETE /api/subscriptions/{id}", h.Unsubscribe)

	chain := ChainMiddleware(
		RecoveryMiddleware(logger),
		LoggingMiddleware(logger),
		CORSMiddleware(cfg.AllowedOrigins),
	)

	return chain(mux)
}
