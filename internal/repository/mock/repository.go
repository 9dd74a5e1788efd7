package mock

import (
	"context"

	"github.com/abrezinsky/tallyvote/internal/models"
	"github.com/abrezinsky/tallyvote/internal/repository"
)

// Repository wraps a real repository and allows injecting errors for testing.
// This provides a flexible way to test error paths without complex database manipulation.
//
// Usage:
//
//	realRepo := testutil.NewTestRepository(t)
//	mockRepo := mock.NewRepository(realRepo)
//	mockRepo.ListBallotsError = errors.New("database error")
//	svc := services.NewTallyService(log, mockRepo)
//	_, err := svc.GetTally(ctx, "s1")
//	// err will now contain the injected error
type Repository struct {
	repository.FullRepository

	// ===== Session Errors =====
	CreateSessionError      error
	GetSessionError         error
	ListSessionsError       error
	UpdateSessionStateError error

	// ===== Ballot Errors =====
	SaveBallotError   error
	HasVotedError     error
	ListBallotsError  error
	CountBallotsError error

	// ===== Token Errors =====
	CreateTokenError error
	TokenExistsError error
	ListTokensError  error

	// ===== Settings Errors =====
	GetSettingError error
	SetSettingError error
}

// NewRepository creates a mock repository wrapping a real one
func NewRepository(real repository.FullRepository) *Repository {
	return &Repository{
		FullRepository: real,
	}
}

// ===== Session Methods =====

func (m *Repository) CreateSession(ctx context.Context, session models.Session) error {
	if m.CreateSessionError != nil {
		return m.CreateSessionError
	}
	return m.FullRepository.CreateSession(ctx, session)
}

func (m *Repository) GetSession(ctx context.Context, id string) (*models.Session, error) {
	if m.GetSessionError != nil {
		return nil, m.GetSessionError
	}
	return m.FullRepository.GetSession(ctx, id)
}

func (m *Repository) ListSessions(ctx context.Context) ([]models.Session, error) {
	if m.ListSessionsError != nil {
		return nil, m.ListSessionsError
	}
	return m.FullRepository.ListSessions(ctx)
}

func (m *Repository) UpdateSessionState(ctx context.Context, id string, from, to models.SessionState) (bool, error) {
	if m.UpdateSessionStateError != nil {
		return false, m.UpdateSessionStateError
	}
	return m.FullRepository.UpdateSessionState(ctx, id, from, to)
}

// ===== Ballot Methods =====

func (m *Repository) SaveBallot(ctx context.Context, ballot models.Ballot) error {
	if m.SaveBallotError != nil {
		return m.SaveBallotError
	}
	return m.FullRepository.SaveBallot(ctx, ballot)
}

func (m *Repository) HasVoted(ctx context.Context, sessionID, voter string) (bool, error) {
	if m.HasVotedError != nil {
		return false, m.HasVotedError
	}
	return m.FullRepository.HasVoted(ctx, sessionID, voter)
}

func (m *Repository) ListBallots(ctx context.Context, sessionID string) ([]models.Ballot, error) {
	if m.ListBallotsError != nil {
		return nil, m.ListBallotsError
	}
	return m.FullRepository.ListBallots(ctx, sessionID)
}

func (m *Repository) CountBallots(ctx context.Context, sessionID string) (int, error) {
	if m.CountBallotsError != nil {
		return 0, m.CountBallotsError
	}
	return m.FullRepository.CountBallots(ctx, sessionID)
}

// ===== Token Methods =====

func (m *Repository) CreateToken(ctx context.Context, token, label string) error {
	if m.CreateTokenError != nil {
		return m.CreateTokenError
	}
	return m.FullRepository.CreateToken(ctx, token, label)
}

func (m *Repository) TokenExists(ctx context.Context, token string) (bool, error) {
	if m.TokenExistsError != nil {
		return false, m.TokenExistsError
	}
	return m.FullRepository.TokenExists(ctx, token)
}

func (m *Repository) ListTokens(ctx context.Context) ([]models.VoterToken, error) {
	if m.ListTokensError != nil {
		return nil, m.ListTokensError
	}
	return m.FullRepository.ListTokens(ctx)
}

// ===== Settings Methods =====

func (m *Repository) GetSetting(ctx context.Context, key string) (string, error) {
	if m.GetSettingError != nil {
		return "", m.GetSettingError
	}
	return m.FullRepository.GetSetting(ctx, key)
}

func (m *Repository) SetSetting(ctx context.Context, key, value string) error {
	if m.SetSettingError != nil {
		return m.SetSettingError
	}
	return m.FullRepository.SetSetting(ctx, key, value)
}

// Ensure mock implements the full interface
var _ repository.FullRepository = (*Repository)(nil)
