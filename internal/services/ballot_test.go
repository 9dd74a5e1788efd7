package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/abrezinsky/tallyvote/internal/logger"
	"github.com/abrezinsky/tallyvote/internal/models"
	"github.com/abrezinsky/tallyvote/internal/repository"
	"github.com/abrezinsky/tallyvote/internal/services"
	"github.com/abrezinsky/tallyvote/internal/testutil"
)

// setupBallotService creates a BallotService with its session service
// and a fresh database
func setupBallotService(t *testing.T) (*services.BallotService, *services.SessionService, *repository.Repository) {
	t.Helper()
	repo := testutil.NewTestRepository(t)
	log := logger.New()
	settingsSvc := services.NewSettingsService(log, repo)
	tallySvc := services.NewTallyService(log, repo)
	sessionSvc := services.NewSessionService(log, repo)
	ballotSvc := services.NewBallotService(log, repo, settingsSvc, tallySvc)
	return ballotSvc, sessionSvc, repo
}

// activeSession creates and activates a session with the given mode
func activeSession(t *testing.T, sessions *services.SessionService, id string, choices []string, mode models.Mode) {
	t.Helper()
	ctx := context.Background()
	if _, err := sessions.CreateSession(ctx, id, choices, mode); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if err := sessions.Activate(ctx, id); err != nil {
		t.Fatalf("Activate failed: %v", err)
	}
}

func TestCastBallot_SingleMode(t *testing.T) {
	ballots, sessions, _ := setupBallotService(t)
	ctx := context.Background()
	activeSession(t, sessions, "s1", []string{"alpha", "beta"}, models.Mode{Kind: models.ModeSingle})

	if err := ballots.CastBallot(ctx, "s1", "voter-1", []string{"alpha"}); err != nil {
		t.Fatalf("CastBallot failed: %v", err)
	}

	voted, err := ballots.HasVoted(ctx, "s1", "voter-1")
	if err != nil {
		t.Fatalf("HasVoted failed: %v", err)
	}
	if !voted {
		t.Error("expected voter-1 to have voted")
	}
}

func TestCastBallot_SingleMode_WrongCount(t *testing.T) {
	ballots, sessions, _ := setupBallotService(t)
	ctx := context.Background()
	activeSession(t, sessions, "s1", []string{"alpha", "beta"}, models.Mode{Kind: models.ModeSingle})

	err := ballots.CastBallot(ctx, "s1", "voter-1", []string{"alpha", "beta"})
	if !errors.Is(err, services.ErrInvalidChoiceCount) {
		t.Errorf("expected ErrInvalidChoiceCount, got %v", err)
	}

	err = ballots.CastBallot(ctx, "s1", "voter-1", nil)
	if !errors.Is(err, services.ErrInvalidChoiceCount) {
		t.Errorf("expected ErrInvalidChoiceCount for empty ballot, got %v", err)
	}
}

func TestCastBallot_UnknownChoice(t *testing.T) {
	ballots, sessions, _ := setupBallotService(t)
	ctx := context.Background()
	activeSession(t, sessions, "s1", []string{"alpha", "beta"}, models.Mode{Kind: models.ModeSingle})

	err := ballots.CastBallot(ctx, "s1", "voter-1", []string{"gamma"})
	if !errors.Is(err, services.ErrUnknownChoice) {
		t.Errorf("expected ErrUnknownChoice, got %v", err)
	}
}

func TestCastBallot_MultipleMode(t *testing.T) {
	ballots, sessions, _ := setupBallotService(t)
	ctx := context.Background()
	mode := models.Mode{Kind: models.ModeMultiple, MaxChoices: 2}
	activeSession(t, sessions, "s1", []string{"a", "b", "c"}, mode)

	if err := ballots.CastBallot(ctx, "s1", "v1", []string{"a", "c"}); err != nil {
		t.Fatalf("CastBallot failed: %v", err)
	}

	// Fewer than max is fine
	if err := ballots.CastBallot(ctx, "s1", "v2", []string{"b"}); err != nil {
		t.Fatalf("CastBallot with one selection failed: %v", err)
	}
}

func TestCastBallot_MultipleMode_TooMany(t *testing.T) {
	ballots, sessions, _ := setupBallotService(t)
	ctx := context.Background()
	mode := models.Mode{Kind: models.ModeMultiple, MaxChoices: 2}
	activeSession(t, sessions, "s1", []string{"a", "b", "c"}, mode)

	err := ballots.CastBallot(ctx, "s1", "v1", []string{"a", "b", "c"})
	if !errors.Is(err, services.ErrTooManyChoices) {
		t.Errorf("expected ErrTooManyChoices, got %v", err)
	}
}

func TestCastBallot_MultipleMode_DuplicateSelection(t *testing.T) {
	ballots, sessions, _ := setupBallotService(t)
	ctx := context.Background()
	mode := models.Mode{Kind: models.ModeMultiple, MaxChoices: 2}
	activeSession(t, sessions, "s1", []string{"a", "b", "c"}, mode)

	err := ballots.CastBallot(ctx, "s1", "v1", []string{"a", "a"})
	if !errors.Is(err, services.ErrDuplicateSelection) {
		t.Errorf("expected ErrDuplicateSelection, got %v", err)
	}
}

func TestCastBallot_RankedMode(t *testing.T) {
	ballots, sessions, _ := setupBallotService(t)
	ctx := context.Background()
	activeSession(t, sessions, "s1", []string{"a", "b", "c"}, models.Mode{Kind: models.ModeRankedWeighted})

	// Full ranking
	if err := ballots.CastBallot(ctx, "s1", "v1", []string{"c", "a", "b"}); err != nil {
		t.Fatalf("full ranking failed: %v", err)
	}

	// Partial ranking is accepted when no minimum is configured
	if err := ballots.CastBallot(ctx, "s1", "v2", []string{"b"}); err != nil {
		t.Fatalf("partial ranking failed: %v", err)
	}
}

func TestCastBallot_RankedMode_Malformed(t *testing.T) {
	ballots, sessions, _ := setupBallotService(t)
	ctx := context.Background()
	activeSession(t, sessions, "s1", []string{"a", "b", "c"}, models.Mode{Kind: models.ModeRankedMajority})

	tests := []struct {
		name       string
		selections []string
	}{
		{"empty ranking", nil},
		{"repeated choice", []string{"a", "a", "b"}},
		{"too long", []string{"a", "b", "c", "a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ballots.CastBallot(ctx, "s1", "v-"+tt.name, tt.selections)
			if !errors.Is(err, services.ErrInvalidRanking) {
				t.Errorf("expected ErrInvalidRanking, got %v", err)
			}
		})
	}
}

func TestCastBallot_RankedMode_MinRanked(t *testing.T) {
	ballots, sessions, _ := setupBallotService(t)
	ctx := context.Background()
	mode := models.Mode{Kind: models.ModeRankedMajority, MinRanked: 2}
	activeSession(t, sessions, "s1", []string{"a", "b", "c"}, mode)

	err := ballots.CastBallot(ctx, "s1", "v1", []string{"a"})
	if !errors.Is(err, services.ErrInvalidRanking) {
		t.Errorf("expected ErrInvalidRanking for under-length ranking, got %v", err)
	}

	if err := ballots.CastBallot(ctx, "s1", "v1", []string{"a", "c"}); err != nil {
		t.Fatalf("ranking at minimum length failed: %v", err)
	}
}

func TestCastBallot_AlreadyVoted(t *testing.T) {
	ballots, sessions, _ := setupBallotService(t)
	ctx := context.Background()
	activeSession(t, sessions, "s1", []string{"a", "b"}, models.Mode{Kind: models.ModeSingle})

	if err := ballots.CastBallot(ctx, "s1", "v1", []string{"a"}); err != nil {
		t.Fatalf("first ballot failed: %v", err)
	}

	err := ballots.CastBallot(ctx, "s1", "v1", []string{"b"})
	if !errors.Is(err, services.ErrAlreadyVoted) {
		t.Errorf("expected ErrAlreadyVoted, got %v", err)
	}
}

func TestCastBallot_SameVoterDifferentSessions(t *testing.T) {
	ballots, sessions, _ := setupBallotService(t)
	ctx := context.Background()
	activeSession(t, sessions, "s1", []string{"a", "b"}, models.Mode{Kind: models.ModeSingle})
	activeSession(t, sessions, "s2", []string{"a", "b"}, models.Mode{Kind: models.ModeSingle})

	if err := ballots.CastBallot(ctx, "s1", "v1", []string{"a"}); err != nil {
		t.Fatalf("ballot in s1 failed: %v", err)
	}
	if err := ballots.CastBallot(ctx, "s2", "v1", []string{"b"}); err != nil {
		t.Fatalf("same voter in s2 failed: %v", err)
	}
}

func TestCastBallot_SessionNotActive(t *testing.T) {
	ballots, sessions, _ := setupBallotService(t)
	ctx := context.Background()

	sessions.CreateSession(ctx, "pending", []string{"a"}, models.Mode{Kind: models.ModeSingle})
	err := ballots.CastBallot(ctx, "pending", "v1", []string{"a"})
	if !errors.Is(err, services.ErrSessionNotActive) {
		t.Errorf("expected ErrSessionNotActive for created session, got %v", err)
	}

	activeSession(t, sessions, "done", []string{"a"}, models.Mode{Kind: models.ModeSingle})
	sessions.End(ctx, "done")
	err = ballots.CastBallot(ctx, "done", "v1", []string{"a"})
	if !errors.Is(err, services.ErrSessionNotActive) {
		t.Errorf("expected ErrSessionNotActive for ended session, got %v", err)
	}
}

func TestCastBallot_SessionNotFound(t *testing.T) {
	ballots, _, _ := setupBallotService(t)

	err := ballots.CastBallot(context.Background(), "missing", "v1", []string{"a"})
	if err == nil {
		t.Fatal("expected error for missing session")
	}
	if errors.Is(err, services.ErrSessionNotActive) {
		t.Error("missing session should report not-found, not inactive")
	}
}

func TestCastBallot_EmptyVoter(t *testing.T) {
	ballots, sessions, _ := setupBallotService(t)
	ctx := context.Background()
	activeSession(t, sessions, "s1", []string{"a"}, models.Mode{Kind: models.ModeSingle})

	if err := ballots.CastBallot(ctx, "s1", "", []string{"a"}); err == nil {
		t.Fatal("expected error for empty voter identity")
	}
}

func TestCastBallot_TokenPolicy(t *testing.T) {
	repo := testutil.NewTestRepository(t)
	log := logger.New()
	settingsSvc := services.NewSettingsService(log, repo)
	tallySvc := services.NewTallyService(log, repo)
	sessionSvc := services.NewSessionService(log, repo)
	tokenSvc := services.NewTokenService(log, repo, settingsSvc)
	ballotSvc := services.NewBallotService(log, repo, settingsSvc, tallySvc)
	ctx := context.Background()

	activeSession(t, sessionSvc, "s1", []string{"a"}, models.Mode{Kind: models.ModeSingle})

	// Default policy: any opaque identity is accepted
	if err := ballotSvc.CastBallot(ctx, "s1", "anyone", []string{"a"}); err != nil {
		t.Fatalf("default policy rejected unregistered voter: %v", err)
	}

	if err := settingsSvc.SetRequireRegisteredToken(ctx, true); err != nil {
		t.Fatalf("SetRequireRegisteredToken failed: %v", err)
	}

	err := ballotSvc.CastBallot(ctx, "s1", "stranger", []string{"a"})
	if !errors.Is(err, services.ErrUnregisteredToken) {
		t.Errorf("expected ErrUnregisteredToken, got %v", err)
	}

	tokens, err := tokenSvc.IssueTokens(ctx, 1, "door list")
	if err != nil {
		t.Fatalf("IssueTokens failed: %v", err)
	}
	if err := ballotSvc.CastBallot(ctx, "s1", tokens[0], []string{"a"}); err != nil {
		t.Fatalf("registered token rejected: %v", err)
	}
}

func TestCastBallot_ConcurrentDuplicates(t *testing.T) {
	ballots, sessions, repo := setupBallotService(t)
	ctx := context.Background()
	activeSession(t, sessions, "s1", []string{"a", "b"}, models.Mode{Kind: models.ModeSingle})

	// Race the same voter from many goroutines; exactly one ballot
	// must land in the ledger.
	const attempts = 10
	var wg sync.WaitGroup
	accepted := make(chan struct{}, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := ballots.CastBallot(ctx, "s1", "racer", []string{"a"}); err == nil {
				accepted <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(accepted)

	got := 0
	for range accepted {
		got++
	}
	if got != 1 {
		t.Errorf("expected exactly 1 accepted ballot, got %d", got)
	}

	count, err := repo.CountBallots(ctx, "s1")
	if err != nil {
		t.Fatalf("CountBallots failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 ledger entry, got %d", count)
	}
}
