package models

import "time"

// ModeKind identifies the rule set governing ballot shape and aggregation
type ModeKind string

const (
	ModeSingle         ModeKind = "single"
	ModeMultiple       ModeKind = "multiple"
	ModeRankedWeighted ModeKind = "ranked_weighted"
	ModeRankedMajority ModeKind = "ranked_majority"
)

// Mode is a tagged variant carrying its own parameters.
// MaxChoices applies to multiple mode only; MinRanked applies to the
// ranked modes (0 means any ranking of length >= 1 is accepted).
type Mode struct {
	Kind       ModeKind `json:"kind"`
	MaxChoices int      `json:"max_choices,omitempty"`
	MinRanked  int      `json:"min_ranked,omitempty"`
}

// IsRanked reports whether ballots for this mode are ordered rankings
// rather than unordered selections.
func (m Mode) IsRanked() bool {
	return m.Kind == ModeRankedWeighted || m.Kind == ModeRankedMajority
}

// SessionState is the lifecycle state of a voting session
type SessionState string

const (
	StateCreated SessionState = "created"
	StateActive  SessionState = "active"
	StateEnded   SessionState = "ended"
)

// Session represents a single voting event with fixed choices and a mode
type Session struct {
	ID        string       `json:"id"`
	Choices   []string     `json:"choices"`
	Mode      Mode         `json:"mode"`
	State     SessionState `json:"state"`
	CreatedAt time.Time    `json:"created_at"`
}

// Ballot is one voter's accepted submission for a session.
// Selections is an unordered set for single/multiple modes and an
// ordered ranking (most preferred first) for the ranked modes.
type Ballot struct {
	SessionID  string   `json:"session_id"`
	Voter      string   `json:"voter"`
	Selections []string `json:"selections"`
}

// TallyResult is the aggregated outcome of one counting pass.
// MajorityWinner and FirstPreferenceCounts are populated only for
// ranked_majority sessions; an empty MajorityWinner means no choice
// holds a strict majority of first preferences.
type TallyResult struct {
	SessionID             string         `json:"session_id"`
	PerChoiceScore        map[string]int `json:"per_choice_score"`
	TotalBallots          int            `json:"total_ballots"`
	MajorityWinner        string         `json:"majority_winner,omitempty"`
	FirstPreferenceCounts map[string]int `json:"first_preference_counts,omitempty"`
}

// RoundResult is the outcome of a single elimination round over a
// reduced choice set. Eliminated names the choice with the fewest first
// preferences this round; it is empty once a majority winner is found
// or when only one choice remains.
type RoundResult struct {
	FirstPreferenceCounts map[string]int `json:"first_preference_counts"`
	TotalBallots          int            `json:"total_ballots"`
	MajorityWinner        string         `json:"majority_winner,omitempty"`
	Eliminated            string         `json:"eliminated,omitempty"`
}

// VoterToken is an issued opaque voter identity
type VoterToken struct {
	Token     string    `json:"token"`
	Label     string    `json:"label,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}
