package repository

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/abrezinsky/tallyvote/internal/models"
)

// newTestRepo creates a new in-memory repository for testing.
func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func testSession(id string) models.Session {
	return models.Session{
		ID:      id,
		Choices: []string{"alpha", "beta", "gamma"},
		Mode:    models.Mode{Kind: models.ModeSingle},
		State:   models.StateCreated,
	}
}

// ==================== Session Tests ====================

func TestCreateSession_RoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	session := models.Session{
		ID:      "s1",
		Choices: []string{"alpha", "beta"},
		Mode:    models.Mode{Kind: models.ModeMultiple, MaxChoices: 2},
		State:   models.StateCreated,
	}
	if err := repo.CreateSession(ctx, session); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	got, err := repo.GetSession(ctx, "s1")
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if got.ID != "s1" {
		t.Errorf("expected id s1, got %q", got.ID)
	}
	if len(got.Choices) != 2 || got.Choices[0] != "alpha" {
		t.Errorf("choices did not round-trip: %v", got.Choices)
	}
	if got.Mode.Kind != models.ModeMultiple || got.Mode.MaxChoices != 2 {
		t.Errorf("mode did not round-trip: %+v", got.Mode)
	}
	if got.State != models.StateCreated {
		t.Errorf("expected state created, got %q", got.State)
	}
	if got.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
}

func TestCreateSession_Duplicate(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.CreateSession(ctx, testSession("s1")); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	err := repo.CreateSession(ctx, testSession("s1"))
	if !stderrors.Is(err, ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}
}

func TestGetSession_NotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.GetSession(context.Background(), "missing")
	if !stderrors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListSessions(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := repo.CreateSession(ctx, testSession(fmt.Sprintf("s%d", i))); err != nil {
			t.Fatalf("CreateSession failed: %v", err)
		}
	}

	sessions, err := repo.ListSessions(ctx)
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(sessions) != 3 {
		t.Errorf("expected 3 sessions, got %d", len(sessions))
	}
}

func TestUpdateSessionState_CAS(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	repo.CreateSession(ctx, testSession("s1"))

	ok, err := repo.UpdateSessionState(ctx, "s1", models.StateCreated, models.StateActive)
	if err != nil {
		t.Fatalf("UpdateSessionState failed: %v", err)
	}
	if !ok {
		t.Error("expected transition from created to succeed")
	}

	// Same transition again fails the from-state guard
	ok, err = repo.UpdateSessionState(ctx, "s1", models.StateCreated, models.StateActive)
	if err != nil {
		t.Fatalf("UpdateSessionState failed: %v", err)
	}
	if ok {
		t.Error("expected repeat transition to be rejected")
	}

	got, _ := repo.GetSession(ctx, "s1")
	if got.State != models.StateActive {
		t.Errorf("expected state active, got %q", got.State)
	}
}

func TestUpdateSessionState_MissingSession(t *testing.T) {
	repo := newTestRepo(t)

	ok, err := repo.UpdateSessionState(context.Background(), "missing", models.StateCreated, models.StateActive)
	if err != nil {
		t.Fatalf("UpdateSessionState failed: %v", err)
	}
	if ok {
		t.Error("expected no rows affected for missing session")
	}
}

// ==================== Ballot Tests ====================

func TestSaveBallot_RoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	repo.CreateSession(ctx, testSession("s1"))

	ballot := models.Ballot{SessionID: "s1", Voter: "v1", Selections: []string{"beta", "alpha"}}
	if err := repo.SaveBallot(ctx, ballot); err != nil {
		t.Fatalf("SaveBallot failed: %v", err)
	}

	ballots, err := repo.ListBallots(ctx, "s1")
	if err != nil {
		t.Fatalf("ListBallots failed: %v", err)
	}
	if len(ballots) != 1 {
		t.Fatalf("expected 1 ballot, got %d", len(ballots))
	}
	// Selection order must survive storage; ranked modes depend on it
	if ballots[0].Selections[0] != "beta" || ballots[0].Selections[1] != "alpha" {
		t.Errorf("selections did not round-trip in order: %v", ballots[0].Selections)
	}
}

func TestSaveBallot_DuplicateVoter(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	repo.CreateSession(ctx, testSession("s1"))
	repo.SaveBallot(ctx, models.Ballot{SessionID: "s1", Voter: "v1", Selections: []string{"alpha"}})

	err := repo.SaveBallot(ctx, models.Ballot{SessionID: "s1", Voter: "v1", Selections: []string{"beta"}})
	if !stderrors.Is(err, ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}

	// The rejected insert must leave the ledger untouched
	count, err := repo.CountBallots(ctx, "s1")
	if err != nil {
		t.Fatalf("CountBallots failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 ballot after duplicate rejection, got %d", count)
	}
	ballots, _ := repo.ListBallots(ctx, "s1")
	if ballots[0].Selections[0] != "alpha" {
		t.Errorf("original ballot was modified: %v", ballots[0].Selections)
	}
}

func TestHasVoted(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	repo.CreateSession(ctx, testSession("s1"))

	voted, err := repo.HasVoted(ctx, "s1", "v1")
	if err != nil {
		t.Fatalf("HasVoted failed: %v", err)
	}
	if voted {
		t.Error("expected HasVoted false before ballot")
	}

	repo.SaveBallot(ctx, models.Ballot{SessionID: "s1", Voter: "v1", Selections: []string{"alpha"}})

	voted, err = repo.HasVoted(ctx, "s1", "v1")
	if err != nil {
		t.Fatalf("HasVoted failed: %v", err)
	}
	if !voted {
		t.Error("expected HasVoted true after ballot")
	}
}

func TestListBallots_Empty(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	repo.CreateSession(ctx, testSession("s1"))

	ballots, err := repo.ListBallots(ctx, "s1")
	if err != nil {
		t.Fatalf("ListBallots failed: %v", err)
	}
	if len(ballots) != 0 {
		t.Errorf("expected empty ledger, got %d ballots", len(ballots))
	}
}

// ==================== Token Tests ====================

func TestCreateToken_Duplicate(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.CreateToken(ctx, "tok-1", "batch"); err != nil {
		t.Fatalf("CreateToken failed: %v", err)
	}

	err := repo.CreateToken(ctx, "tok-1", "batch")
	if !stderrors.Is(err, ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}
}

func TestTokenExists(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	exists, err := repo.TokenExists(ctx, "tok-1")
	if err != nil {
		t.Fatalf("TokenExists failed: %v", err)
	}
	if exists {
		t.Error("expected token to not exist")
	}

	repo.CreateToken(ctx, "tok-1", "")
	exists, err = repo.TokenExists(ctx, "tok-1")
	if err != nil {
		t.Fatalf("TokenExists failed: %v", err)
	}
	if !exists {
		t.Error("expected token to exist after create")
	}
}

func TestListTokens(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	repo.CreateToken(ctx, "tok-1", "front")
	repo.CreateToken(ctx, "tok-2", "back")

	tokens, err := repo.ListTokens(ctx)
	if err != nil {
		t.Fatalf("ListTokens failed: %v", err)
	}
	if len(tokens) != 2 {
		t.Fatalf("expected 2 tokens, got %d", len(tokens))
	}
	if tokens[0].Token != "tok-1" || tokens[0].Label != "front" {
		t.Errorf("unexpected first token: %+v", tokens[0])
	}
}

// ==================== Settings Tests ====================

func TestSettings_Defaults(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	value, err := repo.GetSetting(ctx, "require_registered_token")
	if err != nil {
		t.Fatalf("GetSetting failed: %v", err)
	}
	if value != "false" {
		t.Errorf("expected default false, got %q", value)
	}
}

func TestSettings_MissingKey(t *testing.T) {
	repo := newTestRepo(t)

	value, err := repo.GetSetting(context.Background(), "nope")
	if err != nil {
		t.Fatalf("GetSetting failed: %v", err)
	}
	if value != "" {
		t.Errorf("expected empty value, got %q", value)
	}
}

func TestSettings_Upsert(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.SetSetting(ctx, "base_url", "http://a"); err != nil {
		t.Fatalf("SetSetting failed: %v", err)
	}
	if err := repo.SetSetting(ctx, "base_url", "http://b"); err != nil {
		t.Fatalf("SetSetting overwrite failed: %v", err)
	}

	value, _ := repo.GetSetting(ctx, "base_url")
	if value != "http://b" {
		t.Errorf("expected http://b, got %q", value)
	}
}

func TestPing(t *testing.T) {
	repo := newTestRepo(t)
	if err := repo.Ping(context.Background()); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}
