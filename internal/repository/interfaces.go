package repository

import (
	"context"

	"github.com/abrezinsky/tallyvote/internal/models"
)

// SessionRepository defines session data operations
type SessionRepository interface {
	CreateSession(ctx context.Context, session models.Session) error
	GetSession(ctx context.Context, id string) (*models.Session, error)
	ListSessions(ctx context.Context) ([]models.Session, error)
	// UpdateSessionState transitions a session from one state to another.
	// The update only applies when the stored state equals from; it
	// reports whether the transition took effect, making concurrent
	// transitions race-free at the store.
	UpdateSessionState(ctx context.Context, id string, from, to models.SessionState) (bool, error)
}

// BallotRepository defines vote-ledger operations.
// SaveBallot must be a conditional atomic insert: it fails with
// ErrDuplicate when the voter already has an accepted ballot for the
// session, without recording anything.
type BallotRepository interface {
	SaveBallot(ctx context.Context, ballot models.Ballot) error
	HasVoted(ctx context.Context, sessionID, voter string) (bool, error)
	ListBallots(ctx context.Context, sessionID string) ([]models.Ballot, error)
	CountBallots(ctx context.Context, sessionID string) (int, error)
}

// TokenRepository defines voter token data operations
type TokenRepository interface {
	CreateToken(ctx context.Context, token, label string) error
	TokenExists(ctx context.Context, token string) (bool, error)
	ListTokens(ctx context.Context) ([]models.VoterToken, error)
}

// SettingsRepository defines settings data operations
type SettingsRepository interface {
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
}

// FullRepository combines all repository interfaces.
// Use this when a service needs access to multiple domains.
type FullRepository interface {
	SessionRepository
	BallotRepository
	TokenRepository
	SettingsRepository
}

// Ensure Repository implements all interfaces
var _ FullRepository = (*Repository)(nil)
