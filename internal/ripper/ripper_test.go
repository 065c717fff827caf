package ripper_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"dashrip/internal/config"
	"dashrip/internal/ripper"
	"dashrip/internal/services"
	"dashrip/internal/services/assetstudio"
	"dashrip/internal/services/vgmstream"
	"dashrip/internal/session"
	"dashrip/internal/testsupport"
)

type trackSpec struct {
	key    string
	title  string
	artist string
}

type fakeBundles struct {
	mu      sync.Mutex
	objects map[string]map[string][]byte
	failOn  string
}

func (f *fakeBundles) add(path, object string, payload []byte) {
	if f.objects[path] == nil {
		f.objects[path] = make(map[string][]byte)
	}
	f.objects[path][object] = payload
}

func (f *fakeBundles) Read(_ context.Context, bundlePath string, _ assetstudio.ObjectType, name string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOn != "" && name == f.failOn {
		return nil, fmt.Errorf("export tool crashed reading %s", name)
	}
	payload, ok := f.objects[bundlePath][name]
	if !ok {
		return nil, fmt.Errorf("%w: %s in %s", assetstudio.ErrObjectNotFound, name, filepath.Base(bundlePath))
	}
	return payload, nil
}

func (f *fakeBundles) setFailOn(object string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failOn = object
}

type fakeDecoder struct{}

func (fakeDecoder) Probe(context.Context, string) (vgmstream.Info, error) {
	return vgmstream.Info{StreamCount: 1, SampleRate: 44100, Channels: 2}, nil
}

func (fakeDecoder) Decode(_ context.Context, _, outputPath string) error {
	f, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	enc := wav.NewEncoder(f, 44100, 16, 2, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 2, SampleRate: 44100},
		Data:           []int{0, 0, 4096, -4096},
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	return f.Close()
}

type fakeEncoder struct{}

func (fakeEncoder) EncodeFLAC(_ context.Context, inputPath, outputPath string) error {
	if _, err := os.Stat(inputPath); err != nil {
		return err
	}
	var out bytes.Buffer
	out.WriteString("fLaC")
	out.Write([]byte{0x80, 0x00, 0x00, 0x22})
	out.Write(make([]byte, 34))
	return os.WriteFile(outputPath, out.Bytes(), 0o644)
}

func coverPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			img.Set(x, y, color.NRGBA{R: 40, G: 120, B: 220, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode cover: %v", err)
	}
	return buf.Bytes()
}

type fixture struct {
	cfg     *config.Config
	store   *session.Store
	bundles *fakeBundles
}

func newFixture(t *testing.T, specs []trackSpec, opts ...testsupport.ConfigOption) *fixture {
	t.Helper()

	opts = append([]testsupport.ConfigOption{
		testsupport.WithLanguage("none"),
		testsupport.WithWorkers(1),
	}, opts...)
	cfg := testsupport.NewConfig(t, opts...)

	bundleNames := []string{
		"config_others_assets_albums_0a1b2c.bundle",
		"config_others_assets_album1_3d4e5f.bundle",
	}
	for _, spec := range specs {
		bundleNames = append(bundleNames,
			"music_"+spec.key+"_assets_all_77aa.bundle",
			"song_"+spec.key+"_assets_all_88bb.bundle")
	}
	platformDir := testsupport.ScaffoldGameDir(t, cfg.Paths.GameDir, bundleNames...)

	bundles := &fakeBundles{objects: make(map[string]map[string][]byte)}
	bundles.add(filepath.Join(platformDir, bundleNames[0]), "albums",
		[]byte(`[{"jsonName": "ALBUM1", "title": "Default Music"},]`))

	records := make([]string, 0, len(specs))
	for _, spec := range specs {
		records = append(records, fmt.Sprintf(`{"name": %q, "author": %q, "music": %q, "cover": %q}`,
			spec.title, spec.artist, spec.key+"_music", spec.key+"_cover"))
	}
	bundles.add(filepath.Join(platformDir, bundleNames[1]), "ALBUM1",
		[]byte("["+strings.Join(records, ",")+",]"))

	art := coverPNG(t)
	for i, spec := range specs {
		bundles.add(filepath.Join(platformDir, bundleNames[2+2*i]), spec.key+"_music", []byte("fsb-payload"))
		bundles.add(filepath.Join(platformDir, bundleNames[3+2*i]), spec.key+"_cover", art)
	}

	return &fixture{
		cfg:     cfg,
		store:   testsupport.MustOpenStore(t, cfg),
		bundles: bundles,
	}
}

func (f *fixture) ripper() *ripper.Ripper {
	return ripper.NewWithDependencies(f.cfg, f.store, nil, f.bundles, fakeDecoder{}, fakeEncoder{})
}

func TestRipExportsAllTracks(t *testing.T) {
	fx := newFixture(t, []trackSpec{
		{key: "iyaiya", title: "Iyaiya", artist: "EMON"},
		{key: "magicien", title: "Magicien", artist: "Sta"},
	}, testsupport.WithWorkers(2))
	fx.cfg.Export.SaveCSV = true

	var (
		mu       sync.Mutex
		percents []float64
	)
	summary, err := fx.ripper().Rip(context.Background(), ripper.RunOptions{
		OnProgress: func(p ripper.Progress) {
			mu.Lock()
			percents = append(percents, p.Percent)
			mu.Unlock()
		},
	})
	if err != nil {
		t.Fatalf("Rip failed: %v", err)
	}

	if summary.Exported != 2 || summary.Failed != 0 || summary.Cancelled != 0 || summary.Skipped != 0 {
		t.Fatalf("unexpected summary counts: %#v", summary)
	}
	if summary.TrackTotal != 2 || summary.Incomplete {
		t.Fatalf("unexpected summary: %#v", summary)
	}
	if summary.SessionID == "" {
		t.Fatal("expected a session ID")
	}
	if summary.BytesWritten == 0 {
		t.Fatal("expected bytes written to be counted")
	}

	albumDir := filepath.Join(fx.cfg.Paths.OutputDir, "Muse Dash - Default Music")
	for _, name := range []string{"Iyaiya.flac", "Magicien.flac"} {
		if _, err := os.Stat(filepath.Join(albumDir, name)); err != nil {
			t.Fatalf("expected exported track %s: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(fx.cfg.Paths.OutputDir, "covers")); !os.IsNotExist(err) {
		t.Fatalf("covers must not be written when disabled: %v", err)
	}

	csvData, err := os.ReadFile(summary.CSVPath)
	if err != nil {
		t.Fatalf("read songs.csv: %v", err)
	}
	if !strings.Contains(string(csvData), "Default Music") {
		t.Fatalf("csv missing album name: %q", csvData)
	}
	if strings.Contains(string(csvData), "Muse Dash - Default Music") {
		t.Fatalf("csv album name should predate display normalization: %q", csvData)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(percents) == 0 || percents[0] != 0 || percents[len(percents)-1] != 100 {
		t.Fatalf("unexpected progress sequence: %v", percents)
	}
	for i := 1; i < len(percents); i++ {
		if percents[i] <= percents[i-1] {
			t.Fatalf("progress went backwards at %d: %v", i, percents)
		}
	}

	sess, err := fx.store.GetSession(context.Background(), summary.SessionID)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if sess.Outcome != session.OutcomeCompleted || !sess.Finished() {
		t.Fatalf("unexpected session state: %#v", sess)
	}
	tracks, err := fx.store.ListTracks(context.Background(), summary.SessionID)
	if err != nil {
		t.Fatalf("ListTracks failed: %v", err)
	}
	if len(tracks) != 2 {
		t.Fatalf("expected 2 track records, got %d", len(tracks))
	}
	for _, track := range tracks {
		if track.Status != session.TrackSucceeded || track.OutputPath == "" {
			t.Fatalf("unexpected track record: %#v", track)
		}
	}
}

func TestRipFirstFailureWinsAndCancelsRest(t *testing.T) {
	fx := newFixture(t, []trackSpec{
		{key: "broken", title: "Broken Song", artist: "Nobody"},
		{key: "magicien", title: "Magicien", artist: "Sta"},
	})
	fx.bundles.setFailOn("broken_music")

	summary, err := fx.ripper().Rip(context.Background(), ripper.RunOptions{})
	if err == nil {
		t.Fatal("expected rip to fail")
	}
	if !strings.Contains(err.Error(), "Broken Song") {
		t.Fatalf("error should name the failing track: %v", err)
	}

	if summary == nil {
		t.Fatal("expected a summary alongside the error")
	}
	if summary.Failed != 1 || summary.Cancelled != 1 || summary.Exported != 0 {
		t.Fatalf("unexpected summary counts: %#v", summary)
	}

	sess, getErr := fx.store.GetSession(context.Background(), summary.SessionID)
	if getErr != nil {
		t.Fatalf("GetSession failed: %v", getErr)
	}
	if sess.Outcome != session.OutcomeFailed || sess.ErrorMessage == "" {
		t.Fatalf("unexpected session state: %#v", sess)
	}
	tracks, listErr := fx.store.ListTracks(context.Background(), summary.SessionID)
	if listErr != nil {
		t.Fatalf("ListTracks failed: %v", listErr)
	}
	if tracks[0].Status != session.TrackFailed || tracks[0].ErrorMessage == "" {
		t.Fatalf("unexpected failed track record: %#v", tracks[0])
	}
	if tracks[1].Status != session.TrackCancelled {
		t.Fatalf("unexpected cancelled track record: %#v", tracks[1])
	}
}

func TestRipCancellationIsNotAnError(t *testing.T) {
	fx := newFixture(t, []trackSpec{
		{key: "iyaiya", title: "Iyaiya", artist: "EMON"},
		{key: "magicien", title: "Magicien", artist: "Sta"},
		{key: "koibumi", title: "Koibumi", artist: "Yunomi"},
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	summary, err := fx.ripper().Rip(ctx, ripper.RunOptions{
		OnProgress: func(p ripper.Progress) {
			if strings.HasPrefix(p.Message, "exported ") {
				cancel()
			}
		},
	})
	if err != nil {
		t.Fatalf("cancelled rip should not error: %v", err)
	}
	if !summary.Incomplete {
		t.Fatal("expected an incomplete run")
	}
	if summary.Exported != 1 || summary.Cancelled != 2 || summary.Failed != 0 {
		t.Fatalf("unexpected summary counts: %#v", summary)
	}

	sess, getErr := fx.store.GetSession(context.Background(), summary.SessionID)
	if getErr != nil {
		t.Fatalf("GetSession failed: %v", getErr)
	}
	if sess.Outcome != session.OutcomeIncomplete {
		t.Fatalf("unexpected session outcome: %q", sess.Outcome)
	}
	cancelled, countErr := fx.store.CountTracksWithStatus(context.Background(), summary.SessionID, session.TrackCancelled)
	if countErr != nil {
		t.Fatalf("CountTracksWithStatus failed: %v", countErr)
	}
	if cancelled != 2 {
		t.Fatalf("expected 2 cancelled track records, got %d", cancelled)
	}
}

func TestRipResumeSkipsExportedTracks(t *testing.T) {
	fx := newFixture(t, []trackSpec{
		{key: "iyaiya", title: "Iyaiya", artist: "EMON"},
		{key: "broken", title: "Broken Song", artist: "Nobody"},
	})
	fx.bundles.setFailOn("broken_music")

	first, err := fx.ripper().Rip(context.Background(), ripper.RunOptions{})
	if err == nil {
		t.Fatal("expected first run to fail")
	}
	if first.Exported != 1 || first.Failed != 1 {
		t.Fatalf("unexpected first summary: %#v", first)
	}

	fx.bundles.setFailOn("")
	second, err := fx.ripper().Rip(context.Background(), ripper.RunOptions{Resume: true})
	if err != nil {
		t.Fatalf("resume run failed: %v", err)
	}
	if second.SessionID != first.SessionID {
		t.Fatalf("resume should reuse session %s, got %s", first.SessionID, second.SessionID)
	}
	if second.Skipped != 1 || second.Exported != 1 || second.Failed != 0 {
		t.Fatalf("unexpected resume summary: %#v", second)
	}

	sessions, listErr := fx.store.ListSessions(context.Background(), 0)
	if listErr != nil {
		t.Fatalf("ListSessions failed: %v", listErr)
	}
	if len(sessions) != 1 {
		t.Fatalf("expected a single session, got %d", len(sessions))
	}
	if sessions[0].Outcome != session.OutcomeCompleted {
		t.Fatalf("unexpected final outcome: %q", sessions[0].Outcome)
	}
	tracks, tracksErr := fx.store.ListTracks(context.Background(), first.SessionID)
	if tracksErr != nil {
		t.Fatalf("ListTracks failed: %v", tracksErr)
	}
	for _, track := range tracks {
		if track.Status != session.TrackSucceeded {
			t.Fatalf("expected all tracks succeeded after resume: %#v", track)
		}
	}
}

func TestRipResumeWithoutSessionFails(t *testing.T) {
	fx := newFixture(t, []trackSpec{
		{key: "iyaiya", title: "Iyaiya", artist: "EMON"},
	})

	_, err := fx.ripper().Rip(context.Background(), ripper.RunOptions{Resume: true})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRipRejectsMissingGameDir(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithLanguage("none"))
	store := testsupport.MustOpenStore(t, cfg)
	r := ripper.NewWithDependencies(cfg, store, nil, &fakeBundles{objects: map[string]map[string][]byte{}}, fakeDecoder{}, fakeEncoder{})

	_, err := r.Rip(context.Background(), ripper.RunOptions{})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for missing marker, got %v", err)
	}
}
