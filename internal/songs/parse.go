package songs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"log/slog"

	"github.com/tailscale/hujson"

	"dashrip/internal/logging"
	"dashrip/internal/services/assetstudio"
)

const (
	baseAlbumsPrefix = "config_others_assets_albums_"
	baseAlbumsObject = "albums"
)

var (
	// ErrSchemaMismatch indicates a localized albums manifest whose entry
	// count differs from the base manifest.
	ErrSchemaMismatch = errors.New("localized manifest mismatch")

	// ErrMalformedRecord indicates a config record that cannot be turned
	// into a track.
	ErrMalformedRecord = errors.New("malformed config record")
)

// Resolver maps a bundle name prefix to exactly one physical bundle path.
type Resolver interface {
	Resolve(prefix string) (string, error)
}

// Parser assembles the track list from the game's config bundles.
type Parser struct {
	resolver Resolver
	store    assetstudio.Store
	logger   *slog.Logger
}

// NewParser constructs a Parser reading bundles through the supplied
// resolver and asset store.
func NewParser(resolver Resolver, store assetstudio.Store, logger *slog.Logger) *Parser {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Parser{
		resolver: resolver,
		store:    store,
		logger:   logger.With(logging.String("component", "songs")),
	}
}

type albumRecord struct {
	JSONName string `json:"jsonName"`
	Title    string `json:"title"`
}

func (a albumRecord) overlay(loc albumRecord) albumRecord {
	if loc.JSONName != "" {
		a.JSONName = loc.JSONName
	}
	if loc.Title != "" {
		a.Title = loc.Title
	}
	return a
}

type trackRecord struct {
	Name   string `json:"name"`
	Author string `json:"author"`
	Music  string `json:"music"`
	Cover  string `json:"cover"`
}

func (t trackRecord) overlay(loc trackRecord) trackRecord {
	if loc.Name != "" {
		t.Name = loc.Name
	}
	if loc.Author != "" {
		t.Author = loc.Author
	}
	if loc.Music != "" {
		t.Music = loc.Music
	}
	if loc.Cover != "" {
		t.Cover = loc.Cover
	}
	return t
}

// Parse loads the base manifests plus the overlay for lang and returns
// every exportable track sorted by album then track number. The progress
// callback, when non-nil, fires after each album with the number of album
// slots consumed so far and the total slot count; placeholder albums are
// skipped without a callback.
func (p *Parser) Parse(ctx context.Context, lang Language, progress func(processed, total int)) ([]Song, error) {
	var base []albumRecord
	if err := p.loadManifest(ctx, baseAlbumsPrefix, baseAlbumsObject, &base); err != nil {
		return nil, fmt.Errorf("load albums manifest: %w", err)
	}

	localized := make([]albumRecord, len(base))
	if lang != LanguageNone {
		var loc []albumRecord
		if err := p.loadManifest(ctx, lang.albumsPrefix(), lang.albumsObject(), &loc); err != nil {
			return nil, fmt.Errorf("load %s albums manifest: %w", lang, err)
		}
		if len(loc) != len(base) {
			return nil, fmt.Errorf("%w: base albums manifest has %d entries, %s has %d", ErrSchemaMismatch, len(base), lang, len(loc))
		}
		localized = loc
	}

	var all []Song
	for i, entry := range base {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		album := entry.overlay(localized[i])
		if album.JSONName == "" {
			// Placeholder entries (for example Just as Planned) carry no
			// track manifest.
			p.logger.Debug("skipping placeholder album", logging.Int("album_slot", i+1))
			continue
		}
		tracks, err := p.albumTracks(ctx, lang, album)
		if err != nil {
			return nil, err
		}
		all = append(all, tracks...)
		if progress != nil {
			progress(i+1, len(base))
		}
	}

	sort.Slice(all, func(i, j int) bool {
		if all[i].AlbumNumber != all[j].AlbumNumber {
			return all[i].AlbumNumber < all[j].AlbumNumber
		}
		return all[i].TrackNumber < all[j].TrackNumber
	})
	return all, nil
}

func (p *Parser) albumTracks(ctx context.Context, lang Language, album albumRecord) ([]Song, error) {
	number, err := albumNumber(album.JSONName)
	if err != nil {
		return nil, err
	}

	var base []trackRecord
	if err := p.loadManifest(ctx, baseTracksPrefix(album.JSONName), album.JSONName, &base); err != nil {
		return nil, fmt.Errorf("load album %s: %w", album.JSONName, err)
	}

	count := len(base)
	localized := make([]trackRecord, len(base))
	if lang != LanguageNone {
		var loc []trackRecord
		if err := p.loadManifest(ctx, lang.tracksPrefix(album.JSONName), lang.tracksObject(album.JSONName), &loc); err != nil {
			return nil, fmt.Errorf("load %s album %s: %w", lang, album.JSONName, err)
		}
		if len(loc) != len(base) {
			p.logger.Warn("localized track list length differs, pairing up to the shorter list",
				logging.String("album", album.JSONName),
				logging.Int("base_tracks", len(base)),
				logging.Int("localized_tracks", len(loc)))
			if len(loc) < count {
				count = len(loc)
			}
		}
		copy(localized, loc)
	}

	tracks := make([]Song, 0, count)
	for i := 0; i < count; i++ {
		track := base[i].overlay(localized[i])
		musicKey, ok := strings.CutSuffix(track.Music, "_music")
		if !ok {
			return nil, fmt.Errorf("%w: album %s track %d: music field %q lacks _music suffix", ErrMalformedRecord, album.JSONName, i+1, track.Music)
		}
		coverKey, ok := strings.CutSuffix(track.Cover, "_cover")
		if !ok {
			return nil, fmt.Errorf("%w: album %s track %d: cover field %q lacks _cover suffix", ErrMalformedRecord, album.JSONName, i+1, track.Cover)
		}
		tracks = append(tracks, Song{
			Title:         track.Name,
			Artist:        track.Author,
			AlbumNumber:   number,
			AlbumName:     album.Title,
			TrackNumber:   i + 1,
			TrackTotal:    count,
			MusicAssetKey: musicKey,
			CoverAssetKey: coverKey,
		})
	}
	return tracks, nil
}

// loadManifest resolves the bundle matching prefix, reads the named
// TextAsset out of it, and decodes the JSON payload into dst. The game's
// manifests carry trailing commas, so the payload is standardized before
// decoding.
func (p *Parser) loadManifest(ctx context.Context, prefix, object string, dst any) error {
	bundlePath, err := p.resolver.Resolve(prefix)
	if err != nil {
		return err
	}
	raw, err := p.store.Read(ctx, bundlePath, assetstudio.TypeTextAsset, object)
	if err != nil {
		return err
	}
	std, err := hujson.Standardize(raw)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformedRecord, object, err)
	}
	if err := json.Unmarshal(std, dst); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformedRecord, object, err)
	}
	return nil
}

func baseTracksPrefix(jsonName string) string {
	return "config_others_assets_" + strings.ToLower(jsonName) + "_"
}

// albumNumber extracts the numeric album identifier from names shaped
// like ALBUM43.
func albumNumber(jsonName string) (int, error) {
	digits := strings.TrimLeft(jsonName, "ALBUM")
	number, err := strconv.Atoi(digits)
	if err != nil || number < 1 {
		return 0, fmt.Errorf("%w: album identifier %q has no usable number", ErrMalformedRecord, jsonName)
	}
	return number, nil
}
