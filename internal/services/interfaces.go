package services

import (
	"context"

	"github.com/abrezinsky/tallyvote/internal/models"
)

// SessionServicer defines the interface for session registry and
// lifecycle operations
type SessionServicer interface {
	CreateSession(ctx context.Context, id string, choices []string, mode models.Mode) (*models.Session, error)
	GetSession(ctx context.Context, id string) (*models.Session, error)
	ListSessions(ctx context.Context) ([]models.Session, error)
	Activate(ctx context.Context, id string) error
	End(ctx context.Context, id string) error
}

// BallotServicer defines the interface for ballot operations
type BallotServicer interface {
	CastBallot(ctx context.Context, sessionID, voter string, selections []string) error
	HasVoted(ctx context.Context, sessionID, voter string) (bool, error)
}

// TallyServicer defines the interface for tally operations
type TallyServicer interface {
	GetTally(ctx context.Context, sessionID string) (*models.TallyResult, error)
	EliminationRound(ctx context.Context, sessionID string, remaining []string) (*models.RoundResult, error)
	GetStats(ctx context.Context) (map[string]interface{}, error)
}

// TokenServicer defines the interface for voter token operations
type TokenServicer interface {
	IssueTokens(ctx context.Context, count int, label string) ([]string, error)
	ListTokens(ctx context.Context) ([]models.VoterToken, error)
	IsRegistered(ctx context.Context, token string) (bool, error)
	TokenQRImage(ctx context.Context, token string) ([]byte, error)
}

// SettingsServicer defines the interface for settings operations
type SettingsServicer interface {
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
	GetBaseURL(ctx context.Context) (string, error)
	SetBaseURL(ctx context.Context, url string) error
	RequireRegisteredToken(ctx context.Context) (bool, error)
	SetRequireRegisteredToken(ctx context.Context, required bool) error
	AllSettings(ctx context.Context) (map[string]string, error)
}

// Broadcaster pushes live updates to connected clients. The websocket
// hub implements it; services stay transport-agnostic.
type Broadcaster interface {
	BroadcastSessionStatus(sessionID string, state models.SessionState)
	BroadcastTally(tally *models.TallyResult)
}

// Ensure concrete types implement interfaces
var (
	_ SessionServicer  = (*SessionService)(nil)
	_ BallotServicer   = (*BallotService)(nil)
	_ TallyServicer    = (*TallyService)(nil)
	_ TokenServicer    = (*TokenService)(nil)
	_ SettingsServicer = (*SettingsService)(nil)
)
