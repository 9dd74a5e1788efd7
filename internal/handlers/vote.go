package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// handleSubmitBallot handles ballot submissions
func (h *Handlers) handleSubmitBallot(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")

	var req BallotSubmitRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	if err := h.Ballot.CastBallot(r.Context(), sessionID, req.Voter, req.Selections); err != nil {
		respondError(w, err)
		return
	}

	respondCreated(w, BallotAcceptedResponse{
		Status:  "accepted",
		Message: "Ballot recorded",
	})
}

// handleGetTally returns the current tally for a session.
// Tallying is read-only and legal in every session state.
func (h *Handlers) handleGetTally(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")

	tally, err := h.Tally.GetTally(r.Context(), sessionID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, tally)
}

// handleHasVoted reports whether a voter already cast a ballot
func (h *Handlers) handleHasVoted(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	voter := chi.URLParam(r, "voter")

	voted, err := h.Ballot.HasVoted(r.Context(), sessionID, voter)
	if err != nil {
		respondError(w, err)
		return
	}

	respondOK(w, HasVotedResponse{
		SessionID: sessionID,
		Voter:     voter,
		HasVoted:  voted,
	})
}

// handleEliminationRound runs one instant-runoff round over the
// remaining choice set supplied by the caller
func (h *Handlers) handleEliminationRound(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")

	var req EliminationRoundRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	round, err := h.Tally.EliminationRound(r.Context(), sessionID, req.Remaining)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, round)
}
