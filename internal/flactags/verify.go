package flactags

import (
	"errors"
	"fmt"
	"os"

	"github.com/dhowden/tag"
)

// ErrMismatch indicates the tags read back from disk differ from what
// was written.
var ErrMismatch = errors.New("tag mismatch")

// Verify re-reads the FLAC file and confirms the embedded tags and
// cover match want.
func Verify(path string, want Tags) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open flac: %w", err)
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return fmt.Errorf("read tags: %w", err)
	}

	if got := m.Title(); got != want.Title {
		return fmt.Errorf("%w: title %q, want %q", ErrMismatch, got, want.Title)
	}
	if got := m.Artist(); got != want.Artist {
		return fmt.Errorf("%w: artist %q, want %q", ErrMismatch, got, want.Artist)
	}
	if got := m.Album(); got != want.Album {
		return fmt.Errorf("%w: album %q, want %q", ErrMismatch, got, want.Album)
	}
	if got := m.Genre(); got != want.Genre {
		return fmt.Errorf("%w: genre %q, want %q", ErrMismatch, got, want.Genre)
	}
	number, total := m.Track()
	if number != want.TrackNumber || total != want.TrackTotal {
		return fmt.Errorf("%w: track %d/%d, want %d/%d", ErrMismatch, number, total, want.TrackNumber, want.TrackTotal)
	}
	if m.Picture() == nil {
		return fmt.Errorf("%w: no embedded picture", ErrMismatch)
	}
	return nil
}
