package handlers

import "github.com/abrezinsky/tallyvote/internal/models"

// SessionCreateRequest represents a request to create a voting session
type SessionCreateRequest struct {
	ID      string      `json:"id"`
	Choices []string    `json:"choices"`
	Mode    models.Mode `json:"mode"`
}

// BallotSubmitRequest represents a request to cast a ballot
type BallotSubmitRequest struct {
	Voter      string   `json:"voter"`
	Selections []string `json:"selections"`
}

// EliminationRoundRequest carries the remaining choice set for one
// instant-runoff round
type EliminationRoundRequest struct {
	Remaining []string `json:"remaining"`
}

// TokenIssueRequest represents a request to issue voter tokens
type TokenIssueRequest struct {
	Count int    `json:"count"`
	Label string `json:"label"`
}

// SettingsUpdateRequest represents a request to update settings
type SettingsUpdateRequest struct {
	BaseURL                *string `json:"base_url"`
	RequireRegisteredToken *bool   `json:"require_registered_token"`
}

// LoginRequest represents an admin login attempt
type LoginRequest struct {
	Password string `json:"password"`
}
