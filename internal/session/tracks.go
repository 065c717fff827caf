package session

import (
	"context"
	"fmt"
	"time"
)

// AddTracks registers the planned tracks for a session in one transaction
// and records the session's track total. Tracks already registered keep
// their existing row, so re-registering on resume preserves prior results.
func (s *Store) AddTracks(ctx context.Context, sessionID string, tracks []TrackRecord) error {
	ctx = ensureContext(ctx)
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)

	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		for _, track := range tracks {
			if _, err := tx.ExecContext(
				ctx,
				`INSERT OR IGNORE INTO session_tracks (
                    session_id, album_number, track_number, title, artist, status, updated_at
                ) VALUES (?, ?, ?, ?, ?, ?, ?)`,
				sessionID,
				track.AlbumNumber,
				track.TrackNumber,
				track.Title,
				track.Artist,
				TrackPending,
				timestamp,
			); err != nil {
				return fmt.Errorf("insert track %d-%d: %w", track.AlbumNumber, track.TrackNumber, err)
			}
		}

		if _, err := tx.ExecContext(ctx, `UPDATE sessions SET track_total = ? WHERE id = ?`, len(tracks), sessionID); err != nil {
			return fmt.Errorf("record track total: %w", err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit tracks: %w", err)
		}
		return nil
	})
}

// MarkTrackRunning moves a track into the running state.
func (s *Store) MarkTrackRunning(ctx context.Context, sessionID string, albumNumber, trackNumber int) error {
	return s.updateTrack(ctx, sessionID, albumNumber, trackNumber, TrackRunning, "", "")
}

// MarkTrackSucceeded records a finished track and where it was written.
func (s *Store) MarkTrackSucceeded(ctx context.Context, sessionID string, albumNumber, trackNumber int, outputPath string) error {
	return s.updateTrack(ctx, sessionID, albumNumber, trackNumber, TrackSucceeded, outputPath, "")
}

// MarkTrackFailed records a track error.
func (s *Store) MarkTrackFailed(ctx context.Context, sessionID string, albumNumber, trackNumber int, message string) error {
	return s.updateTrack(ctx, sessionID, albumNumber, trackNumber, TrackFailed, "", message)
}

// MarkTrackCancelled records a track that was skipped because the run stopped.
func (s *Store) MarkTrackCancelled(ctx context.Context, sessionID string, albumNumber, trackNumber int) error {
	return s.updateTrack(ctx, sessionID, albumNumber, trackNumber, TrackCancelled, "", "")
}

func (s *Store) updateTrack(ctx context.Context, sessionID string, albumNumber, trackNumber int, status TrackStatus, outputPath, errorMessage string) error {
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	if err := s.execWithoutResultRetry(
		ctx,
		`UPDATE session_tracks
         SET status = ?, output_path = ?, error_message = ?, updated_at = ?
         WHERE session_id = ? AND album_number = ? AND track_number = ?`,
		status,
		nullableString(outputPath),
		nullableString(errorMessage),
		timestamp,
		sessionID,
		albumNumber,
		trackNumber,
	); err != nil {
		return fmt.Errorf("update track %d-%d: %w", albumNumber, trackNumber, err)
	}
	return nil
}

// ListTracks returns a session's tracks in album then track order.
func (s *Store) ListTracks(ctx context.Context, sessionID string) ([]*TrackRecord, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+trackColumns+` FROM session_tracks WHERE session_id = ? ORDER BY album_number, track_number`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("list tracks: %w", err)
	}
	defer rows.Close()

	var tracks []*TrackRecord
	for rows.Next() {
		track, err := scanTrack(rows)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, track)
	}
	return tracks, rows.Err()
}

// TracksWithStatus returns a session's tracks matching a status, in album
// then track order.
func (s *Store) TracksWithStatus(ctx context.Context, sessionID string, status TrackStatus) ([]*TrackRecord, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+trackColumns+` FROM session_tracks WHERE session_id = ? AND status = ? ORDER BY album_number, track_number`,
		sessionID,
		status,
	)
	if err != nil {
		return nil, fmt.Errorf("tracks with status: %w", err)
	}
	defer rows.Close()

	var tracks []*TrackRecord
	for rows.Next() {
		track, err := scanTrack(rows)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, track)
	}
	return tracks, rows.Err()
}

// CountTracksWithStatus reports how many of a session's tracks are in the
// given status.
func (s *Store) CountTracksWithStatus(ctx context.Context, sessionID string, status TrackStatus) (int, error) {
	var count int
	err := s.db.QueryRowContext(
		ctx,
		`SELECT COUNT(1) FROM session_tracks WHERE session_id = ? AND status = ?`,
		sessionID,
		status,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count tracks: %w", err)
	}
	return count, nil
}
