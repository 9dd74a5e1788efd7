package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// conditionalHTTPLogger only logs HTTP requests when HTTP logging is enabled
func (h *Handlers) conditionalHTTPLogger(next http.Handler) http.Handler {
	logger := middleware.Logger(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.Log != nil && h.Log.IsHTTPLoggingEnabled() {
			logger.ServeHTTP(w, r)
		} else {
			next.ServeHTTP(w, r)
		}
	})
}

// Router returns a configured chi router with all routes
func (h *Handlers) Router() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.conditionalHTTPLogger) // Custom conditional HTTP logger
	r.Use(middleware.Recoverer)
	r.Use(middleware.RedirectSlashes)
	r.Use(middleware.Timeout(60 * time.Second))

	// WebSocket (live tallies and session status)
	if h.Hub != nil {
		r.Get("/ws", h.Hub.ServeWs)
	}

	// Public voting API
	r.Get("/api/sessions/{id}", h.handleGetSession)
	r.Get("/api/sessions/{id}/tally", h.handleGetTally)
	r.Post("/api/sessions/{id}/ballots", h.handleSubmitBallot)
	r.Get("/api/sessions/{id}/voters/{voter}/has-voted", h.handleHasVoted)

	// Auth routes (public)
	r.Post("/api/admin/login", h.handleLogin)
	r.Post("/api/admin/logout", h.handleLogout)

	// Admin API (protected)
	r.Group(func(r chi.Router) {
		r.Use(h.Auth.RequireAuthAPI)

		// Sessions
		r.Get("/api/admin/sessions", h.handleListSessions)
		r.Post("/api/admin/sessions", h.handleCreateSession)
		r.Post("/api/admin/sessions/{id}/activate", h.handleActivateSession)
		r.Post("/api/admin/sessions/{id}/end", h.handleEndSession)
		r.Post("/api/admin/sessions/{id}/elimination-round", h.handleEliminationRound)

		// Voter tokens
		r.Get("/api/admin/voter-tokens", h.handleListTokens)
		r.Post("/api/admin/voter-tokens", h.handleIssueTokens)
		r.Get("/api/admin/voter-tokens/{token}/qr", h.handleTokenQR)

		// Settings & stats
		r.Get("/api/admin/settings", h.handleGetSettings)
		r.Put("/api/admin/settings", h.handleUpdateSettings)
		r.Get("/api/admin/stats", h.handleGetStats)
	})

	return r
}
