package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// handleCreateSession registers a new voting session
func (h *Handlers) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req SessionCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	session, err := h.Session.CreateSession(r.Context(), req.ID, req.Choices, req.Mode)
	if err != nil {
		respondError(w, err)
		return
	}

	respondCreated(w, session)
}

// handleListSessions returns all registered sessions
func (h *Handlers) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.Session.ListSessions(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, sessions)
}

// handleGetSession returns a single session
func (h *Handlers) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	session, err := h.Session.GetSession(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, session)
}

// handleActivateSession moves a session from created to active
func (h *Handlers) handleActivateSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Session.Activate(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	respondSuccess(w, "Session activated")
}

// handleEndSession moves a session from active to ended
func (h *Handlers) handleEndSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Session.End(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	respondSuccess(w, "Session ended")
}
