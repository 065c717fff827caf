package session

import (
	"database/sql"
	"errors"
	"time"
)

const sessionColumns = "id, game_dir, output_dir, language, track_total, outcome, error_message, started_at, finished_at"

const trackColumns = "session_id, album_number, track_number, title, artist, status, output_path, error_message, updated_at"

func scanSession(scanner interface{ Scan(dest ...any) error }) (*Session, error) {
	var (
		id           string
		gameDir      string
		outputDir    string
		language     string
		trackTotal   int
		outcomeStr   string
		errorMessage sql.NullString
		startedRaw   string
		finishedRaw  sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&gameDir,
		&outputDir,
		&language,
		&trackTotal,
		&outcomeStr,
		&errorMessage,
		&startedRaw,
		&finishedRaw,
	); err != nil {
		return nil, err
	}

	sess := &Session{
		ID:           id,
		GameDir:      gameDir,
		OutputDir:    outputDir,
		Language:     language,
		TrackTotal:   trackTotal,
		Outcome:      Outcome(outcomeStr),
		ErrorMessage: errorMessage.String,
	}

	if started, err := parseTimeString(startedRaw); err == nil {
		sess.StartedAt = started
	}
	if finishedRaw.Valid {
		if finished, err := parseTimeString(finishedRaw.String); err == nil {
			sess.FinishedAt = finished
		}
	}
	return sess, nil
}

func scanTrack(scanner interface{ Scan(dest ...any) error }) (*TrackRecord, error) {
	var (
		sessionID    string
		albumNumber  int
		trackNumber  int
		title        string
		artist       string
		statusStr    string
		outputPath   sql.NullString
		errorMessage sql.NullString
		updatedRaw   string
	)

	if err := scanner.Scan(
		&sessionID,
		&albumNumber,
		&trackNumber,
		&title,
		&artist,
		&statusStr,
		&outputPath,
		&errorMessage,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	track := &TrackRecord{
		SessionID:    sessionID,
		AlbumNumber:  albumNumber,
		TrackNumber:  trackNumber,
		Title:        title,
		Artist:       artist,
		Status:       TrackStatus(statusStr),
		OutputPath:   outputPath.String,
		ErrorMessage: errorMessage.String,
	}

	if updated, err := parseTimeString(updatedRaw); err == nil {
		track.UpdatedAt = updated
	}
	return track, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}
