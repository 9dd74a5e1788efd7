package handlers

import (
	"github.com/abrezinsky/tallyvote/internal/auth"
	"github.com/abrezinsky/tallyvote/internal/services"
	"github.com/abrezinsky/tallyvote/internal/websocket"
)

// Handlers holds all HTTP handler dependencies
type Handlers struct {
	Session  services.SessionServicer
	Ballot   services.BallotServicer
	Tally    services.TallyServicer
	Token    services.TokenServicer
	Settings services.SettingsServicer
	Auth     *auth.Auth
	Hub      *websocket.Hub
	Log      HTTPLogger
}

// HTTPLogger is an interface for loggers that support HTTP logging control
type HTTPLogger interface {
	IsHTTPLoggingEnabled() bool
}

// New creates a new Handlers instance with all dependencies
func New(
	session services.SessionServicer,
	ballot services.BallotServicer,
	tally services.TallyServicer,
	token services.TokenServicer,
	settings services.SettingsServicer,
	adminAuth *auth.Auth,
	hub *websocket.Hub,
	log HTTPLogger,
) *Handlers {
	return &Handlers{
		Session:  session,
		Ballot:   ballot,
		Tally:    tally,
		Token:    token,
		Settings: settings,
		Auth:     adminAuth,
		Hub:      hub,
		Log:      log,
	}
}

// NoopHTTPLogger is a test logger that always returns false for HTTP logging
type NoopHTTPLogger struct{}

func (NoopHTTPLogger) IsHTTPLoggingEnabled() bool { return false }

// NewForTesting creates a Handlers instance without a websocket hub
// (for testing API endpoints)
func NewForTesting(
	session services.SessionServicer,
	ballot services.BallotServicer,
	tally services.TallyServicer,
	token services.TokenServicer,
	settings services.SettingsServicer,
) *Handlers {
	// Create a test auth with a known password
	testAuth := auth.New("test-password")
	return &Handlers{
		Session:  session,
		Ballot:   ballot,
		Tally:    tally,
		Token:    token,
		Settings: settings,
		Auth:     testAuth,
		Log:      NoopHTTPLogger{},
		// Hub left nil - the /ws route is skipped without one
	}
}
