package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// handleIssueTokens generates and registers voter tokens
func (h *Handlers) handleIssueTokens(w http.ResponseWriter, r *http.Request) {
	var req TokenIssueRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	tokens, err := h.Token.IssueTokens(r.Context(), req.Count, req.Label)
	if err != nil {
		respondError(w, err)
		return
	}

	respondCreated(w, TokensResponse{Tokens: tokens})
}

// handleListTokens returns all issued voter tokens
func (h *Handlers) handleListTokens(w http.ResponseWriter, r *http.Request) {
	tokens, err := h.Token.ListTokens(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, tokens)
}

// handleTokenQR serves a PNG QR code linking to a token's voting URL
func (h *Handlers) handleTokenQR(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	png, err := h.Token.TokenQRImage(r.Context(), token)
	if err != nil {
		respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}

// handleGetSettings returns all instance settings
func (h *Handlers) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.Settings.AllSettings(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, settings)
}

// handleUpdateSettings applies a partial settings update
func (h *Handlers) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req SettingsUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	ctx := r.Context()
	if req.BaseURL != nil {
		if err := h.Settings.SetBaseURL(ctx, *req.BaseURL); err != nil {
			respondError(w, err)
			return
		}
	}
	if req.RequireRegisteredToken != nil {
		if err := h.Settings.SetRequireRegisteredToken(ctx, *req.RequireRegisteredToken); err != nil {
			respondError(w, err)
			return
		}
	}

	respondSuccess(w, "Settings updated")
}

// handleGetStats returns instance-wide counters
func (h *Handlers) handleGetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Tally.GetStats(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, stats)
}
