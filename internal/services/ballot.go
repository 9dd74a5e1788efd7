package services

import (
	"context"
	stderrors "errors"

	"github.com/abrezinsky/tallyvote/internal/errors"
	"github.com/abrezinsky/tallyvote/internal/logger"
	"github.com/abrezinsky/tallyvote/internal/models"
	"github.com/abrezinsky/tallyvote/internal/repository"
)

// BallotServiceRepository defines the repository methods needed by BallotService
type BallotServiceRepository interface {
	repository.SessionRepository
	repository.BallotRepository
	repository.TokenRepository
}

// BallotService validates submitted ballots against their session's
// mode and appends accepted ballots to the vote ledger. A ballot is
// either accepted whole or rejected whole; the ledger's uniqueness
// constraint makes check-and-insert atomic per (session, voter).
type BallotService struct {
	log         logger.Logger
	repo        BallotServiceRepository
	settings    SettingsServicer
	tally       TallyServicer
	broadcaster Broadcaster
}

// NewBallotService creates a new BallotService
func NewBallotService(log logger.Logger, repo BallotServiceRepository, settings SettingsServicer, tally TallyServicer) *BallotService {
	return &BallotService{
		log:      log,
		repo:     repo,
		settings: settings,
		tally:    tally,
	}
}

// SetBroadcaster wires the live-update sink (optional)
func (s *BallotService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// CastBallot validates and records one voter's ballot. Checks run in
// fixed order: session exists, session active, voter registration
// policy, not already voted, mode-specific shape. The first failing
// check wins so each error kind is raised for exactly one condition.
func (s *BallotService) CastBallot(ctx context.Context, sessionID, voter string, selections []string) error {
	session, err := s.getSession(ctx, sessionID)
	if err != nil {
		return err
	}

	if session.State != models.StateActive {
		return ErrSessionNotActive
	}

	if voter == "" {
		return errors.InvalidInput("voter identity must not be empty")
	}

	if err := s.checkTokenPolicy(ctx, voter); err != nil {
		return err
	}

	voted, err := s.repo.HasVoted(ctx, sessionID, voter)
	if err != nil {
		return errors.Internal(err)
	}
	if voted {
		return ErrAlreadyVoted
	}

	if err := validateSelections(session, selections); err != nil {
		return err
	}

	ballot := models.Ballot{
		SessionID:  sessionID,
		Voter:      voter,
		Selections: selections,
	}

	// The unique (session, voter) constraint closes the race between
	// the HasVoted check above and this insert: a concurrent duplicate
	// loses here and nothing is partially recorded.
	if err := s.repo.SaveBallot(ctx, ballot); err != nil {
		if stderrors.Is(err, repository.ErrDuplicate) {
			return ErrAlreadyVoted
		}
		return errors.Internal(err)
	}

	s.log.Info("Ballot accepted", "session_id", sessionID, "selections", len(selections))

	if s.broadcaster != nil && s.tally != nil {
		if tally, err := s.tally.GetTally(ctx, sessionID); err == nil {
			s.broadcaster.BroadcastTally(tally)
		}
	}

	return nil
}

// HasVoted reports whether a voter has an accepted ballot for a session
func (s *BallotService) HasVoted(ctx context.Context, sessionID, voter string) (bool, error) {
	if _, err := s.getSession(ctx, sessionID); err != nil {
		return false, err
	}
	voted, err := s.repo.HasVoted(ctx, sessionID, voter)
	if err != nil {
		return false, errors.Internal(err)
	}
	return voted, nil
}

func (s *BallotService) getSession(ctx context.Context, sessionID string) (*models.Session, error) {
	session, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, errors.NotFoundf("session %q not found", sessionID)
		}
		return nil, errors.Internal(err)
	}
	return session, nil
}

// checkTokenPolicy rejects unregistered voters when the instance
// requires issued tokens. The default policy accepts any opaque
// identity; uniqueness is all this engine interprets.
func (s *BallotService) checkTokenPolicy(ctx context.Context, voter string) error {
	if s.settings == nil {
		return nil
	}
	required, err := s.settings.RequireRegisteredToken(ctx)
	if err != nil {
		return errors.Internal(err)
	}
	if !required {
		return nil
	}

	registered, err := s.repo.TokenExists(ctx, voter)
	if err != nil {
		return errors.Internal(err)
	}
	if !registered {
		return ErrUnregisteredToken
	}
	return nil
}

// validateSelections applies the mode-specific shape check from the
// session's mode variant. The switch is exhaustive over mode kinds; an
// unknown kind means the stored session is corrupt.
func validateSelections(session *models.Session, selections []string) error {
	switch session.Mode.Kind {
	case models.ModeSingle:
		if len(selections) != 1 {
			return ErrInvalidChoiceCount
		}
		return checkMembership(session.Choices, selections)

	case models.ModeMultiple:
		if len(selections) == 0 {
			return ErrInvalidChoiceCount
		}
		if hasDuplicates(selections) {
			return ErrDuplicateSelection
		}
		if len(selections) > session.Mode.MaxChoices {
			return ErrTooManyChoices
		}
		return checkMembership(session.Choices, selections)

	case models.ModeRankedWeighted, models.ModeRankedMajority:
		minRanked := session.Mode.MinRanked
		if minRanked < 1 {
			minRanked = 1
		}
		if len(selections) < minRanked || len(selections) > len(session.Choices) {
			return ErrInvalidRanking
		}
		if hasDuplicates(selections) {
			return ErrInvalidRanking
		}
		return checkMembership(session.Choices, selections)

	default:
		return errors.Corruptedf("session %q has unknown mode %q", session.ID, session.Mode.Kind)
	}
}

func hasDuplicates(selections []string) bool {
	seen := make(map[string]bool, len(selections))
	for _, sel := range selections {
		if seen[sel] {
			return true
		}
		seen[sel] = true
	}
	return false
}

func checkMembership(choices, selections []string) error {
	members := make(map[string]bool, len(choices))
	for _, c := range choices {
		members[c] = true
	}
	for _, sel := range selections {
		if !members[sel] {
			return ErrUnknownChoice
		}
	}
	return nil
}
