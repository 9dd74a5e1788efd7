package services

// Error codes surfaced to the API layer. Each validation condition maps
// to exactly one code so callers can distinguish failures without
// parsing messages.
const (
	CodeEmptySessionID        = "EMPTY_SESSION_ID"
	CodeEmptyChoices          = "EMPTY_CHOICES"
	CodeDuplicateChoice       = "DUPLICATE_CHOICE"
	CodeInvalidModeParameters = "INVALID_MODE_PARAMETERS"
	CodeDuplicateSession      = "DUPLICATE_SESSION"
	CodeSessionNotActive      = "SESSION_NOT_ACTIVE"
	CodeAlreadyVoted          = "ALREADY_VOTED"
	CodeInvalidChoiceCount    = "INVALID_CHOICE_COUNT"
	CodeTooManyChoices        = "TOO_MANY_CHOICES"
	CodeDuplicateSelection    = "DUPLICATE_SELECTION"
	CodeUnknownChoice         = "UNKNOWN_CHOICE"
	CodeInvalidRanking        = "INVALID_RANKING"
	CodeInvalidTransition     = "INVALID_TRANSITION"
	CodeUnregisteredToken     = "UNREGISTERED_TOKEN"
	CodeInvalidTokenCount     = "INVALID_TOKEN_COUNT"
	CodeCorruptedSession      = "CORRUPTED_SESSION_STATE"
)

// Service errors
var (
	ErrEmptySessionID        = &ServiceError{Code: CodeEmptySessionID, Message: "session id must not be empty"}
	ErrEmptyChoices          = &ServiceError{Code: CodeEmptyChoices, Message: "session must have at least one choice"}
	ErrDuplicateChoice       = &ServiceError{Code: CodeDuplicateChoice, Message: "session choices must be distinct"}
	ErrInvalidModeParameters = &ServiceError{Code: CodeInvalidModeParameters, Message: "mode parameters are out of range"}
	ErrDuplicateSession      = &ServiceError{Code: CodeDuplicateSession, Message: "a session with this id already exists"}
	ErrSessionNotActive      = &ServiceError{Code: CodeSessionNotActive, Message: "session is not accepting ballots"}
	ErrAlreadyVoted          = &ServiceError{Code: CodeAlreadyVoted, Message: "voter has already cast a ballot in this session"}
	ErrInvalidChoiceCount    = &ServiceError{Code: CodeInvalidChoiceCount, Message: "ballot has the wrong number of selections"}
	ErrTooManyChoices        = &ServiceError{Code: CodeTooManyChoices, Message: "ballot selects more choices than the session allows"}
	ErrDuplicateSelection    = &ServiceError{Code: CodeDuplicateSelection, Message: "ballot selects the same choice twice"}
	ErrUnknownChoice         = &ServiceError{Code: CodeUnknownChoice, Message: "ballot references a choice the session does not offer"}
	ErrInvalidRanking        = &ServiceError{Code: CodeInvalidRanking, Message: "ballot ranking is malformed"}
	ErrInvalidTransition     = &ServiceError{Code: CodeInvalidTransition, Message: "session cannot transition from its current state"}
	ErrUnregisteredToken     = &ServiceError{Code: CodeUnregisteredToken, Message: "voter token is not registered"}
	ErrInvalidTokenCount     = &ServiceError{Code: CodeInvalidTokenCount, Message: "count must be between 1 and 500"}
)

// ServiceError represents a service-level error with a stable code
type ServiceError struct {
	Code    string
	Message string
}

func (e *ServiceError) Error() string {
	return e.Message
}
