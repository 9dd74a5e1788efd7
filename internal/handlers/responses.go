package handlers

// HasVotedResponse is the response for the has-voted check
type HasVotedResponse struct {
	SessionID string `json:"session_id"`
	Voter     string `json:"voter"`
	HasVoted  bool   `json:"has_voted"`
}

// TokensResponse is the response for voter token issuance
type TokensResponse struct {
	Tokens []string `json:"tokens"`
}

// BallotAcceptedResponse confirms an accepted ballot
type BallotAcceptedResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
