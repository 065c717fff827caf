package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// StartSession records the start of a new rip run and returns it.
func (s *Store) StartSession(ctx context.Context, gameDir, outputDir, language string) (*Session, error) {
	id := uuid.NewString()
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)

	if err := s.execWithoutResultRetry(
		ctx,
		`INSERT INTO sessions (id, game_dir, output_dir, language, outcome, started_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		id,
		gameDir,
		outputDir,
		language,
		OutcomeRunning,
		timestamp,
	); err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}

	return s.GetSession(ctx, id)
}

// FinishSession records the terminal outcome of a session.
func (s *Store) FinishSession(ctx context.Context, id string, outcome Outcome, errorMessage string) error {
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	if err := s.execWithoutResultRetry(
		ctx,
		`UPDATE sessions SET outcome = ?, error_message = ?, finished_at = ? WHERE id = ?`,
		outcome,
		nullableString(errorMessage),
		timestamp,
		id,
	); err != nil {
		return fmt.Errorf("finish session: %w", err)
	}
	return nil
}

// ReopenSession returns a session to the running state so more tracks can
// be exported into it.
func (s *Store) ReopenSession(ctx context.Context, id string) error {
	if err := s.execWithoutResultRetry(
		ctx,
		`UPDATE sessions SET outcome = ?, error_message = NULL, finished_at = NULL WHERE id = ?`,
		OutcomeRunning,
		id,
	); err != nil {
		return fmt.Errorf("reopen session: %w", err)
	}
	return nil
}

// GetSession fetches a session by identifier.
func (s *Store) GetSession(ctx context.Context, id string) (*Session, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id)
	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return sess, nil
}

// LatestSession returns the most recently started session, or nil when none exist.
func (s *Store) LatestSession(ctx context.Context) (*Session, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions ORDER BY started_at DESC, id DESC LIMIT 1`)
	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest session: %w", err)
	}
	return sess, nil
}

// ListSessions returns sessions newest first, up to limit. A limit of zero
// or below returns every session.
func (s *Store) ListSessions(ctx context.Context, limit int) ([]*Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions ORDER BY started_at DESC, id DESC`
	var (
		rows *sql.Rows
		err  error
	)
	if limit > 0 {
		rows, err = s.db.QueryContext(ctx, query+` LIMIT ?`, limit)
	} else {
		rows, err = s.db.QueryContext(ctx, query)
	}
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}
