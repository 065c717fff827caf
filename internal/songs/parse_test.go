package songs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"dashrip/internal/services/assetstudio"
)

type fixture struct {
	bundles map[string]string
	objects map[string]map[string][]byte
}

func newFixture() *fixture {
	return &fixture{
		bundles: make(map[string]string),
		objects: make(map[string]map[string][]byte),
	}
}

func (f *fixture) add(prefix, path, object, payload string) {
	f.bundles[prefix] = path
	if f.objects[path] == nil {
		f.objects[path] = make(map[string][]byte)
	}
	f.objects[path][object] = []byte(payload)
}

func (f *fixture) Resolve(prefix string) (string, error) {
	path, ok := f.bundles[prefix]
	if !ok {
		return "", fmt.Errorf("no bundle with prefix %q", prefix)
	}
	return path, nil
}

func (f *fixture) Read(_ context.Context, bundlePath string, objType assetstudio.ObjectType, name string) ([]byte, error) {
	if objType != assetstudio.TypeTextAsset {
		return nil, fmt.Errorf("unexpected object type %q", objType)
	}
	payload, ok := f.objects[bundlePath][name]
	if !ok {
		return nil, fmt.Errorf("object %q not found in %s", name, bundlePath)
	}
	return payload, nil
}

// newBaseFixture wires three album slots: two real albums listed out of
// numeric order plus one placeholder, using the trailing-comma JSON the
// game actually ships.
func newBaseFixture() *fixture {
	f := newFixture()
	f.add("config_others_assets_albums_", "aa/albums.bundle", "albums", `[
		{"jsonName": "ALBUM2", "title": "Give Up TREATMENT",},
		{"jsonName": "", "title": "Just as Planned",},
		{"jsonName": "ALBUM1", "title": "Default Music",},
	]`)
	f.add("config_others_assets_album2_", "aa/album2.bundle", "ALBUM2", `[
		{"name": "Narcissism", "author": "Mili", "music": "narcissism_music", "cover": "narcissism_cover"},
	]`)
	f.add("config_others_assets_album1_", "aa/album1.bundle", "ALBUM1", `[
		{"name": "Magical Wonderland", "author": "EMON feat. Chiyuki", "music": "mofeng_music", "cover": "mofeng_cover"},
		{"name": "Iyaiya", "author": "EMON feat. Momoko", "music": "iyaiya_music", "cover": "iyaiya_cover"},
	]`)
	return f
}

func TestParseBaseLanguage(t *testing.T) {
	f := newBaseFixture()
	parser := NewParser(f, f, nil)

	var ticks [][2]int
	list, err := parser.Parse(context.Background(), LanguageNone, func(processed, total int) {
		ticks = append(ticks, [2]int{processed, total})
	})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 tracks, got %d", len(list))
	}

	first := list[0]
	if first.Title != "Magical Wonderland" || first.AlbumNumber != 1 || first.TrackNumber != 1 {
		t.Fatalf("unexpected first track: %+v", first)
	}
	if first.AlbumName != "Default Music" || first.Artist != "EMON feat. Chiyuki" {
		t.Fatalf("unexpected first track fields: %+v", first)
	}
	if first.MusicAssetKey != "mofeng" || first.CoverAssetKey != "mofeng" {
		t.Fatalf("unexpected asset keys: %+v", first)
	}
	if got := first.MusicObjectName(); got != "mofeng_music" {
		t.Fatalf("MusicObjectName = %q", got)
	}
	if got := first.MusicBundlePrefix(); got != "music_mofeng_assets_all" {
		t.Fatalf("MusicBundlePrefix = %q", got)
	}
	if got := first.CoverBundlePrefix(); got != "song_mofeng_assets_all_" {
		t.Fatalf("CoverBundlePrefix = %q", got)
	}
	if got := first.CoverObjectName(); got != "mofeng_cover" {
		t.Fatalf("CoverObjectName = %q", got)
	}

	if list[1].Title != "Iyaiya" || list[1].TrackNumber != 2 || list[1].TrackTotal != 2 {
		t.Fatalf("unexpected second track: %+v", list[1])
	}
	if list[2].Title != "Narcissism" || list[2].AlbumNumber != 2 || list[2].TrackTotal != 1 {
		t.Fatalf("unexpected third track: %+v", list[2])
	}

	want := [][2]int{{1, 3}, {3, 3}}
	if len(ticks) != len(want) {
		t.Fatalf("expected %d progress ticks, got %v", len(want), ticks)
	}
	for i := range want {
		if ticks[i] != want[i] {
			t.Fatalf("tick %d = %v, want %v", i, ticks[i], want[i])
		}
	}
}

func TestParseLocalizedOverlay(t *testing.T) {
	f := newBaseFixture()
	f.add("config_english_assets_albums_english_", "aa/albums_en.bundle", "albums_English", `[
		{"title": "Give Up TREATMENT (EN)"},
		{},
		{"title": "Default Music (EN)"},
	]`)
	f.add("config_english_assets_album2_english_", "aa/album2_en.bundle", "ALBUM2_English", `[
		{},
	]`)
	f.add("config_english_assets_album1_english_", "aa/album1_en.bundle", "ALBUM1_English", `[
		{"name": "Magical Wonderland (EN)"},
		{},
	]`)
	parser := NewParser(f, f, nil)

	list, err := parser.Parse(context.Background(), LanguageEnglish, nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 tracks, got %d", len(list))
	}
	if list[0].Title != "Magical Wonderland (EN)" {
		t.Fatalf("expected localized title, got %q", list[0].Title)
	}
	if list[0].AlbumName != "Default Music (EN)" {
		t.Fatalf("expected localized album name, got %q", list[0].AlbumName)
	}
	if list[0].Artist != "EMON feat. Chiyuki" {
		t.Fatalf("expected base artist to survive empty overlay, got %q", list[0].Artist)
	}
	if list[1].Title != "Iyaiya" {
		t.Fatalf("expected base title for empty overlay entry, got %q", list[1].Title)
	}
	if list[0].MusicAssetKey != "mofeng" {
		t.Fatalf("overlay must not disturb asset keys: %+v", list[0])
	}
}

func TestParseLocalizedAlbumCountMismatch(t *testing.T) {
	f := newBaseFixture()
	f.add("config_english_assets_albums_english_", "aa/albums_en.bundle", "albums_English", `[
		{"title": "Give Up TREATMENT (EN)"},
		{},
	]`)
	parser := NewParser(f, f, nil)

	_, err := parser.Parse(context.Background(), LanguageEnglish, nil)
	if !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}

func TestParseLocalizedTrackListTruncates(t *testing.T) {
	f := newBaseFixture()
	f.add("config_english_assets_albums_english_", "aa/albums_en.bundle", "albums_English", `[
		{},
		{},
		{},
	]`)
	f.add("config_english_assets_album2_english_", "aa/album2_en.bundle", "ALBUM2_English", `[
		{},
	]`)
	f.add("config_english_assets_album1_english_", "aa/album1_en.bundle", "ALBUM1_English", `[
		{"name": "Magical Wonderland (EN)"},
	]`)
	parser := NewParser(f, f, nil)

	list, err := parser.Parse(context.Background(), LanguageEnglish, nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected the longer base list to be truncated, got %d tracks", len(list))
	}
	if list[0].Title != "Magical Wonderland (EN)" || list[0].TrackTotal != 1 {
		t.Fatalf("unexpected surviving track: %+v", list[0])
	}
	if list[1].AlbumNumber != 2 {
		t.Fatalf("unexpected second track: %+v", list[1])
	}
}

func TestParseMalformedMusicField(t *testing.T) {
	f := newFixture()
	f.add("config_others_assets_albums_", "aa/albums.bundle", "albums", `[
		{"jsonName": "ALBUM1", "title": "Default Music"},
	]`)
	f.add("config_others_assets_album1_", "aa/album1.bundle", "ALBUM1", `[
		{"name": "Iyaiya", "author": "EMON", "music": "iyaiya", "cover": "iyaiya_cover"},
	]`)
	parser := NewParser(f, f, nil)

	_, err := parser.Parse(context.Background(), LanguageNone, nil)
	if !errors.Is(err, ErrMalformedRecord) {
		t.Fatalf("expected ErrMalformedRecord, got %v", err)
	}
}

func TestParseMalformedCoverField(t *testing.T) {
	f := newFixture()
	f.add("config_others_assets_albums_", "aa/albums.bundle", "albums", `[
		{"jsonName": "ALBUM1", "title": "Default Music"},
	]`)
	f.add("config_others_assets_album1_", "aa/album1.bundle", "ALBUM1", `[
		{"name": "Iyaiya", "author": "EMON", "music": "iyaiya_music", "cover": "iyaiya"},
	]`)
	parser := NewParser(f, f, nil)

	_, err := parser.Parse(context.Background(), LanguageNone, nil)
	if !errors.Is(err, ErrMalformedRecord) {
		t.Fatalf("expected ErrMalformedRecord, got %v", err)
	}
	if !strings.Contains(err.Error(), "cover") {
		t.Fatalf("expected the cover field to be named, got %v", err)
	}
}

func TestParseMalformedAlbumIdentifier(t *testing.T) {
	f := newFixture()
	f.add("config_others_assets_albums_", "aa/albums.bundle", "albums", `[
		{"jsonName": "SPECIAL", "title": "Oddity"},
	]`)
	parser := NewParser(f, f, nil)

	_, err := parser.Parse(context.Background(), LanguageNone, nil)
	if !errors.Is(err, ErrMalformedRecord) {
		t.Fatalf("expected ErrMalformedRecord, got %v", err)
	}
}

func TestParseMissingTrackBundle(t *testing.T) {
	f := newFixture()
	f.add("config_others_assets_albums_", "aa/albums.bundle", "albums", `[
		{"jsonName": "ALBUM1", "title": "Default Music"},
	]`)
	parser := NewParser(f, f, nil)

	_, err := parser.Parse(context.Background(), LanguageNone, nil)
	if err == nil || !strings.Contains(err.Error(), "config_others_assets_album1_") {
		t.Fatalf("expected resolve failure naming the prefix, got %v", err)
	}
}

func TestParseCancelledContext(t *testing.T) {
	f := newBaseFixture()
	parser := NewParser(f, f, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := parser.Parse(ctx, LanguageNone, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
