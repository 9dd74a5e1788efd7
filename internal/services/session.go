package services

import (
	"context"
	stderrors "errors"

	"github.com/abrezinsky/tallyvote/internal/errors"
	"github.com/abrezinsky/tallyvote/internal/logger"
	"github.com/abrezinsky/tallyvote/internal/models"
	"github.com/abrezinsky/tallyvote/internal/repository"
)

// SessionService owns the session registry and drives the lifecycle
// state machine (created -> active -> ended). Sessions are immutable
// after creation except for explicit, validated transitions.
type SessionService struct {
	log         logger.Logger
	repo        repository.SessionRepository
	broadcaster Broadcaster
}

// NewSessionService creates a new SessionService
func NewSessionService(log logger.Logger, repo repository.SessionRepository) *SessionService {
	return &SessionService{log: log, repo: repo}
}

// SetBroadcaster wires the live-update sink (optional)
func (s *SessionService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// CreateSession validates and registers a new session in state created.
// Checks run in fixed order so error reporting is deterministic.
func (s *SessionService) CreateSession(ctx context.Context, id string, choices []string, mode models.Mode) (*models.Session, error) {
	if id == "" {
		return nil, ErrEmptySessionID
	}
	if len(choices) == 0 {
		return nil, ErrEmptyChoices
	}

	seen := make(map[string]bool, len(choices))
	for _, choice := range choices {
		if seen[choice] {
			return nil, ErrDuplicateChoice
		}
		seen[choice] = true
	}

	if err := validateMode(mode, len(choices)); err != nil {
		return nil, err
	}

	session := models.Session{
		ID:      id,
		Choices: choices,
		Mode:    mode,
		State:   models.StateCreated,
	}

	if err := s.repo.CreateSession(ctx, session); err != nil {
		if stderrors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateSession
		}
		return nil, errors.Internal(err)
	}

	s.log.Info("Session created", "session_id", id, "mode", mode.Kind, "choices", len(choices))

	// Re-read so CreatedAt reflects what the store assigned
	return s.GetSession(ctx, id)
}

// validateMode checks a mode's parameters against the choice count
func validateMode(mode models.Mode, choiceCount int) error {
	switch mode.Kind {
	case models.ModeSingle:
		return nil
	case models.ModeMultiple:
		if mode.MaxChoices < 1 || mode.MaxChoices > choiceCount {
			return ErrInvalidModeParameters
		}
		return nil
	case models.ModeRankedWeighted, models.ModeRankedMajority:
		if mode.MinRanked < 0 || mode.MinRanked > choiceCount {
			return ErrInvalidModeParameters
		}
		return nil
	default:
		return ErrInvalidModeParameters
	}
}

// GetSession retrieves a session by ID
func (s *SessionService) GetSession(ctx context.Context, id string) (*models.Session, error) {
	session, err := s.repo.GetSession(ctx, id)
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, errors.NotFoundf("session %q not found", id)
		}
		return nil, errors.Internal(err)
	}
	return session, nil
}

// ListSessions returns all registered sessions
func (s *SessionService) ListSessions(ctx context.Context) ([]models.Session, error) {
	sessions, err := s.repo.ListSessions(ctx)
	if err != nil {
		return nil, errors.Internal(err)
	}
	return sessions, nil
}

// Activate transitions a session from created to active
func (s *SessionService) Activate(ctx context.Context, id string) error {
	return s.transition(ctx, id, models.StateCreated, models.StateActive)
}

// End transitions a session from active to ended. Ended is terminal:
// no further mutating operation is accepted, only tally reads.
func (s *SessionService) End(ctx context.Context, id string) error {
	return s.transition(ctx, id, models.StateActive, models.StateEnded)
}

// transition applies a compare-and-swap state change. The existence
// check runs first so a missing session reports NotFound rather than
// InvalidTransition.
func (s *SessionService) transition(ctx context.Context, id string, from, to models.SessionState) error {
	if _, err := s.GetSession(ctx, id); err != nil {
		return err
	}

	ok, err := s.repo.UpdateSessionState(ctx, id, from, to)
	if err != nil {
		return errors.Internal(err)
	}
	if !ok {
		return ErrInvalidTransition
	}

	s.log.Info("Session state changed", "session_id", id, "from", from, "to", to)

	if s.broadcaster != nil {
		s.broadcaster.BroadcastSessionStatus(id, to)
	}
	return nil
}
