package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/abrezinsky/tallyvote/internal/models"
)

// Repository provides data access methods
type Repository struct {
	db *sql.DB
}

// New creates a new Repository
func New(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Enable foreign key constraints
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, err
	}

	// SQLite works best with a single connection; this also serializes
	// ballot acceptance so check-and-insert never interleaves.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	repo := &Repository{db: db}

	if err := repo.migrate(); err != nil {
		return nil, err
	}

	return repo, nil
}

// NewWithDB wraps an existing database handle (used by sqlmock tests)
func NewWithDB(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// DB returns the underlying database connection (for transactions)
func (r *Repository) DB() *sql.DB {
	return r.db
}

// Close closes the database connection
func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks if the database connection is alive
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// migrate runs database migrations
func (r *Repository) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			choices TEXT NOT NULL,
			mode_kind TEXT NOT NULL,
			max_choices INTEGER NOT NULL DEFAULT 0,
			min_ranked INTEGER NOT NULL DEFAULT 0,
			state TEXT NOT NULL DEFAULT 'created',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS ballots (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			voter TEXT NOT NULL,
			selections TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (session_id) REFERENCES sessions(id),
			UNIQUE(session_id, voter)
		)`,
		`CREATE TABLE IF NOT EXISTS voter_tokens (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			token TEXT UNIQUE NOT NULL,
			label TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_ballots_session ON ballots(session_id)`,
		`CREATE INDEX IF NOT EXISTS idx_tokens_token ON voter_tokens(token)`,
	}

	for _, migration := range migrations {
		if _, err := r.db.Exec(migration); err != nil {
			return err
		}
	}

	// Insert default settings if not exists
	// Note: base_url is intentionally not set here - it's set by app.go
	// with the detected LAN IP address on startup
	defaultSettings := map[string]string{
		"require_registered_token": "false",
	}

	for key, value := range defaultSettings {
		_, err := r.db.Exec(`INSERT OR IGNORE INTO settings (key, value) VALUES (?, ?)`, key, value)
		if err != nil {
			return err
		}
	}

	return nil
}

// isUniqueViolation reports whether err is a sqlite uniqueness
// constraint failure.
func isUniqueViolation(err error) bool {
	if sqliteErr, ok := err.(sqlite3.Error); ok {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// ==================== Session Methods ====================

// CreateSession inserts a new session record
func (r *Repository) CreateSession(ctx context.Context, session models.Session) error {
	choicesJSON, err := json.Marshal(session.Choices)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO sessions (id, choices, mode_kind, max_choices, min_ranked, state)
		VALUES (?, ?, ?, ?, ?, ?)
	`, session.ID, string(choicesJSON), string(session.Mode.Kind), session.Mode.MaxChoices, session.Mode.MinRanked, string(session.State))
	if err != nil && isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

// GetSession retrieves a session by ID
func (r *Repository) GetSession(ctx context.Context, id string) (*models.Session, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, choices, mode_kind, max_choices, min_ranked, state, created_at
		FROM sessions WHERE id = ?
	`, id)
	return scanSession(row)
}

// ListSessions returns all sessions ordered by creation time
func (r *Repository) ListSessions(ctx context.Context) ([]models.Session, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, choices, mode_kind, max_choices, min_ranked, state, created_at
		FROM sessions ORDER BY created_at, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []models.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *s)
	}
	return sessions, rows.Err()
}

// rowScanner covers both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSession(row rowScanner) (*models.Session, error) {
	var s models.Session
	var choicesJSON, modeKind, state string
	var createdAt time.Time

	err := row.Scan(&s.ID, &choicesJSON, &modeKind, &s.Mode.MaxChoices, &s.Mode.MinRanked, &state, &createdAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(choicesJSON), &s.Choices); err != nil {
		return nil, err
	}
	s.Mode.Kind = models.ModeKind(modeKind)
	s.State = models.SessionState(state)
	s.CreatedAt = createdAt
	return &s, nil
}

// UpdateSessionState performs a compare-and-swap state transition
func (r *Repository) UpdateSessionState(ctx context.Context, id string, from, to models.SessionState) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE sessions SET state = ? WHERE id = ? AND state = ?
	`, string(to), id, string(from))
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

// ==================== Ballot Methods ====================

// SaveBallot appends an accepted ballot to the session's ledger.
// The UNIQUE(session_id, voter) constraint makes this a conditional
// atomic insert: a voter's second ballot fails with ErrDuplicate and
// nothing is recorded.
func (r *Repository) SaveBallot(ctx context.Context, ballot models.Ballot) error {
	selectionsJSON, err := json.Marshal(ballot.Selections)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO ballots (session_id, voter, selections) VALUES (?, ?, ?)
	`, ballot.SessionID, ballot.Voter, string(selectionsJSON))
	if err != nil && isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

// HasVoted reports whether a voter already has an accepted ballot
func (r *Repository) HasVoted(ctx context.Context, sessionID, voter string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM ballots WHERE session_id = ? AND voter = ?
	`, sessionID, voter).Scan(&count)
	return count > 0, err
}

// ListBallots returns all accepted ballots for a session
func (r *Repository) ListBallots(ctx context.Context, sessionID string) ([]models.Ballot, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT session_id, voter, selections FROM ballots WHERE session_id = ? ORDER BY id
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ballots []models.Ballot
	for rows.Next() {
		var b models.Ballot
		var selectionsJSON string
		if err := rows.Scan(&b.SessionID, &b.Voter, &selectionsJSON); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(selectionsJSON), &b.Selections); err != nil {
			return nil, err
		}
		ballots = append(ballots, b)
	}
	return ballots, rows.Err()
}

// CountBallots returns the ledger size for a session
func (r *Repository) CountBallots(ctx context.Context, sessionID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM ballots WHERE session_id = ?
	`, sessionID).Scan(&count)
	return count, err
}

// ==================== Token Methods ====================

// CreateToken records an issued voter token
func (r *Repository) CreateToken(ctx context.Context, token, label string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO voter_tokens (token, label) VALUES (?, ?)
	`, token, label)
	if err != nil && isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

// TokenExists reports whether a voter token has been issued
func (r *Repository) TokenExists(ctx context.Context, token string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM voter_tokens WHERE token = ?
	`, token).Scan(&count)
	return count > 0, err
}

// ListTokens returns all issued voter tokens
func (r *Repository) ListTokens(ctx context.Context) ([]models.VoterToken, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT token, label, created_at FROM voter_tokens ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tokens []models.VoterToken
	for rows.Next() {
		var t models.VoterToken
		var label sql.NullString
		if err := rows.Scan(&t.Token, &label, &t.CreatedAt); err != nil {
			return nil, err
		}
		t.Label = label.String
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}

// ==================== Settings Methods ====================

// GetSetting retrieves a setting value; missing keys return ""
func (r *Repository) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

// SetSetting stores a setting value
func (r *Repository) SetSetting(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}
