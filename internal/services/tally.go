package services

import (
	"context"
	stderrors "errors"

	"github.com/abrezinsky/tallyvote/internal/errors"
	"github.com/abrezinsky/tallyvote/internal/logger"
	"github.com/abrezinsky/tallyvote/internal/models"
	"github.com/abrezinsky/tallyvote/internal/repository"
)

// TallyServiceRepository defines the repository methods needed by TallyService
type TallyServiceRepository interface {
	repository.SessionRepository
	repository.BallotRepository
}

// TallyService aggregates accepted ballots into results. Tallies are
// recomputed on demand from the ledger, never persisted, so the same
// ledger contents always yield the same result regardless of ballot
// insertion order. Tallying is read-only and legal in every session
// state: all-zero before activation, live during, final after end.
type TallyService struct {
	log  logger.Logger
	repo TallyServiceRepository
}

// NewTallyService creates a new TallyService
func NewTallyService(log logger.Logger, repo TallyServiceRepository) *TallyService {
	return &TallyService{log: log, repo: repo}
}

// GetTally computes the aggregated result for a session
func (s *TallyService) GetTally(ctx context.Context, sessionID string) (*models.TallyResult, error) {
	session, ballots, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return ComputeTally(session, ballots)
}

// load fetches a session and its full ledger
func (s *TallyService) load(ctx context.Context, sessionID string) (*models.Session, []models.Ballot, error) {
	session, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, nil, errors.NotFoundf("session %q not found", sessionID)
		}
		return nil, nil, errors.Internal(err)
	}

	ballots, err := s.repo.ListBallots(ctx, sessionID)
	if err != nil {
		return nil, nil, errors.Internal(err)
	}
	return session, ballots, nil
}

// ComputeTally is the pure aggregation function over a ledger snapshot.
// An empty ledger is not an error: every choice scores zero and
// TotalBallots is 0.
func ComputeTally(session *models.Session, ballots []models.Ballot) (*models.TallyResult, error) {
	result := &models.TallyResult{
		SessionID:      session.ID,
		PerChoiceScore: zeroScores(session.Choices),
		TotalBallots:   len(ballots),
	}

	switch session.Mode.Kind {
	case models.ModeSingle, models.ModeMultiple:
		for _, ballot := range ballots {
			for _, sel := range ballot.Selections {
				if _, ok := result.PerChoiceScore[sel]; !ok {
					return nil, corruptBallot(session, sel)
				}
				result.PerChoiceScore[sel]++
			}
		}

	case models.ModeRankedWeighted:
		// Borda-style: a ballot ranking k choices assigns weight k to
		// its first preference down to 1 for its last.
		for _, ballot := range ballots {
			k := len(ballot.Selections)
			for i, sel := range ballot.Selections {
				if _, ok := result.PerChoiceScore[sel]; !ok {
					return nil, corruptBallot(session, sel)
				}
				result.PerChoiceScore[sel] += k - i
			}
		}

	case models.ModeRankedMajority:
		counts := zeroScores(session.Choices)
		for _, ballot := range ballots {
			if len(ballot.Selections) == 0 {
				continue
			}
			first := ballot.Selections[0]
			if _, ok := counts[first]; !ok {
				return nil, corruptBallot(session, first)
			}
			counts[first]++
		}
		result.PerChoiceScore = copyScores(counts)
		result.FirstPreferenceCounts = counts
		result.MajorityWinner = majorityWinner(counts, len(ballots))

	default:
		return nil, errors.Corruptedf("session %q has unknown mode %q", session.ID, session.Mode.Kind)
	}

	return result, nil
}

// EliminationRound performs one instant-runoff round over a reduced
// choice set: count each ballot's highest still-remaining preference,
// test for a strict majority, and name the choice to eliminate next.
// Looping until a winner emerges is the caller's responsibility, which
// keeps each round independently testable.
func (s *TallyService) EliminationRound(ctx context.Context, sessionID string, remaining []string) (*models.RoundResult, error) {
	session, ballots, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Mode.Kind != models.ModeRankedMajority {
		return nil, errors.Validationf("session %q is not a ranked-majority session", sessionID)
	}
	return ComputeRound(session, ballots, remaining)
}

// ComputeRound is the pure one-round counting function.
// remaining must be a non-empty subset of the session's choices.
// Ballots whose every ranked choice has been eliminated do not count
// toward the round's ballot total.
func ComputeRound(session *models.Session, ballots []models.Ballot, remaining []string) (*models.RoundResult, error) {
	if len(remaining) == 0 {
		return nil, ErrEmptyChoices
	}
	if err := checkMembership(session.Choices, remaining); err != nil {
		return nil, err
	}
	if hasDuplicates(remaining) {
		return nil, ErrDuplicateChoice
	}

	counts := zeroScores(remaining)
	live := 0
	for _, ballot := range ballots {
		for _, sel := range ballot.Selections {
			if _, ok := counts[sel]; ok {
				counts[sel]++
				live++
				break
			}
		}
	}

	result := &models.RoundResult{
		FirstPreferenceCounts: counts,
		TotalBallots:          live,
		MajorityWinner:        majorityWinner(counts, live),
	}

	// No elimination once a winner exists or one choice is left
	if result.MajorityWinner == "" && len(remaining) > 1 {
		result.Eliminated = weakestChoice(session.Choices, counts)
	}

	return result, nil
}

// GetStats returns instance-wide counters for the admin dashboard
func (s *TallyService) GetStats(ctx context.Context) (map[string]interface{}, error) {
	sessions, err := s.repo.ListSessions(ctx)
	if err != nil {
		return nil, errors.Internal(err)
	}

	byState := map[models.SessionState]int{}
	totalBallots := 0
	for _, session := range sessions {
		byState[session.State]++
		count, err := s.repo.CountBallots(ctx, session.ID)
		if err != nil {
			return nil, errors.Internal(err)
		}
		totalBallots += count
	}

	return map[string]interface{}{
		"total_sessions":   len(sessions),
		"created_sessions": byState[models.StateCreated],
		"active_sessions":  byState[models.StateActive],
		"ended_sessions":   byState[models.StateEnded],
		"total_ballots":    totalBallots,
	}, nil
}

// majorityWinner returns the choice whose count strictly exceeds half
// of total, or "" when none does. Counting is compare-by-doubling to
// avoid float thresholds.
func majorityWinner(counts map[string]int, total int) string {
	for choice, count := range counts {
		if count*2 > total {
			return choice
		}
	}
	return ""
}

// weakestChoice returns the remaining choice with the fewest first
// preferences. Ties break by session choice order: the later-listed
// choice is eliminated, keeping rounds deterministic.
func weakestChoice(choiceOrder []string, counts map[string]int) string {
	weakest := ""
	weakestCount := 0
	for _, choice := range choiceOrder {
		count, ok := counts[choice]
		if !ok {
			continue
		}
		if weakest == "" || count <= weakestCount {
			weakest = choice
			weakestCount = count
		}
	}
	return weakest
}

func zeroScores(choices []string) map[string]int {
	scores := make(map[string]int, len(choices))
	for _, choice := range choices {
		scores[choice] = 0
	}
	return scores
}

func copyScores(scores map[string]int) map[string]int {
	out := make(map[string]int, len(scores))
	for k, v := range scores {
		out[k] = v
	}
	return out
}

// corruptBallot reports a ledger entry referencing a choice outside the
// session's choice set. The validator makes this unreachable; seeing it
// means the stored state was tampered with or a writer bypassed
// validation, so it is an internal-consistency fault, not user input.
func corruptBallot(session *models.Session, choice string) error {
	return errors.Corruptedf("session %q ledger references unknown choice %q", session.ID, choice)
}
