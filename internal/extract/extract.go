package extract

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"log/slog"

	"github.com/go-audio/wav"

	"dashrip/internal/flactags"
	"dashrip/internal/imaging"
	"dashrip/internal/logging"
	"dashrip/internal/services/assetstudio"
	"dashrip/internal/services/ffmpeg"
	"dashrip/internal/services/vgmstream"
	"dashrip/internal/songs"
	"dashrip/internal/textutil"
)

// Resolver maps a bundle name prefix to exactly one physical bundle path.
type Resolver interface {
	Resolve(prefix string) (string, error)
}

// Options controls where and how extracted tracks are written.
type Options struct {
	OutputDir    string
	AlbumDirs    bool
	SaveCovers   bool
	VerifyTags   bool
	CoverMaxEdge int
}

// Result reports the files written for one track.
type Result struct {
	TrackPath string
	CoverPath string
}

// Extractor exports single tracks. It is safe for concurrent use: each
// call works in its own scratch directory.
type Extractor struct {
	opts     Options
	resolver Resolver
	store    assetstudio.Store
	decoder  vgmstream.Client
	encoder  ffmpeg.Encoder
	logger   *slog.Logger
}

// NewExtractor constructs an Extractor writing into opts.OutputDir.
func NewExtractor(opts Options, resolver Resolver, store assetstudio.Store, decoder vgmstream.Client, encoder ffmpeg.Encoder, logger *slog.Logger) (*Extractor, error) {
	if opts.OutputDir == "" {
		return nil, errors.New("output directory required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Extractor{
		opts:     opts,
		resolver: resolver,
		store:    store,
		decoder:  decoder,
		encoder:  encoder,
		logger:   logger.With(logging.String("component", "extract")),
	}, nil
}

// Extract exports one track. The finished FLAC only appears at its final
// path once fully written and tagged; everything up to that point happens
// in a scratch directory on the same filesystem.
func (e *Extractor) Extract(ctx context.Context, song songs.Song) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	workDir, err := os.MkdirTemp(e.opts.OutputDir, ".extract-")
	if err != nil {
		return Result{}, fmt.Errorf("create scratch dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	fsbPath, err := e.fetchAudio(ctx, song, workDir)
	if err != nil {
		return Result{}, err
	}

	info, err := e.decoder.Probe(ctx, fsbPath)
	if err != nil {
		return Result{}, fmt.Errorf("probe %s: %w", song.MusicObjectName(), err)
	}
	if info.StreamCount != 1 {
		return Result{}, fmt.Errorf("audio container for %s holds %d streams, want 1", song.MusicObjectName(), info.StreamCount)
	}

	wavPath := filepath.Join(workDir, song.MusicAssetKey+".wav")
	if err := e.decoder.Decode(ctx, fsbPath, wavPath); err != nil {
		return Result{}, fmt.Errorf("decode %s: %w", song.MusicObjectName(), err)
	}
	if err := e.checkWAV(wavPath); err != nil {
		return Result{}, fmt.Errorf("decoded audio for %s: %w", song.MusicObjectName(), err)
	}

	flacPath := filepath.Join(workDir, "track.flac")
	if err := e.encoder.EncodeFLAC(ctx, wavPath, flacPath); err != nil {
		return Result{}, fmt.Errorf("encode %s: %w", song.MusicObjectName(), err)
	}

	cover, err := e.fetchCover(ctx, song)
	if err != nil {
		return Result{}, err
	}

	tags := flactags.Tags{
		Title:       song.Title,
		Artist:      song.Artist,
		Album:       song.AlbumName,
		TrackNumber: song.TrackNumber,
		TrackTotal:  song.TrackTotal,
		Genre:       song.Genre,
	}
	picture := flactags.Picture{
		PNG:    cover.PNG,
		Width:  cover.Width,
		Height: cover.Height,
		Depth:  imaging.Depth,
	}
	if err := flactags.Write(flacPath, tags, picture); err != nil {
		return Result{}, fmt.Errorf("tag %s: %w", song.Title, err)
	}
	if e.opts.VerifyTags {
		if err := flactags.Verify(flacPath, tags); err != nil {
			return Result{}, fmt.Errorf("verify %s: %w", song.Title, err)
		}
	}

	return e.publish(song, flacPath, cover)
}

func (e *Extractor) fetchAudio(ctx context.Context, song songs.Song, workDir string) (string, error) {
	bundlePath, err := e.resolver.Resolve(song.MusicBundlePrefix())
	if err != nil {
		return "", fmt.Errorf("locate music bundle for %s: %w", song.MusicAssetKey, err)
	}
	payload, err := e.store.Read(ctx, bundlePath, assetstudio.TypeAudioClip, song.MusicObjectName())
	if err != nil {
		return "", fmt.Errorf("read %s: %w", song.MusicObjectName(), err)
	}
	fsbPath := filepath.Join(workDir, song.MusicAssetKey+".fsb")
	if err := os.WriteFile(fsbPath, payload, 0o644); err != nil {
		return "", fmt.Errorf("stage audio container: %w", err)
	}
	return fsbPath, nil
}

func (e *Extractor) fetchCover(ctx context.Context, song songs.Song) (imaging.Cover, error) {
	bundlePath, err := e.resolver.Resolve(song.CoverBundlePrefix())
	if err != nil {
		return imaging.Cover{}, fmt.Errorf("locate cover bundle for %s: %w", song.CoverAssetKey, err)
	}
	payload, err := e.store.Read(ctx, bundlePath, assetstudio.TypeTexture2D, song.CoverObjectName())
	if err != nil {
		return imaging.Cover{}, fmt.Errorf("read %s: %w", song.CoverObjectName(), err)
	}
	cover, err := imaging.NormalizeCover(payload, e.opts.CoverMaxEdge)
	if err != nil {
		return imaging.Cover{}, fmt.Errorf("normalize %s: %w", song.CoverObjectName(), err)
	}
	return cover, nil
}

func (e *Extractor) checkWAV(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open wav: %w", err)
	}
	defer f.Close()

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return errors.New("decoder produced an invalid wav file")
	}
	e.logger.Debug("decoded audio",
		logging.String("path", filepath.Base(path)),
		logging.Int("sample_rate", int(decoder.SampleRate)),
		logging.Int("channels", int(decoder.NumChans)))
	return nil
}

// publish moves the tagged FLAC to its final location and writes the
// cover mirror when asked for.
func (e *Extractor) publish(song songs.Song, flacPath string, cover imaging.Cover) (Result, error) {
	stem := textutil.SanitizeFileName(song.Title)
	albumDir := textutil.SanitizeFileName(song.AlbumName)

	trackDir := e.opts.OutputDir
	if e.opts.AlbumDirs {
		trackDir = filepath.Join(trackDir, albumDir)
	}
	if err := os.MkdirAll(trackDir, 0o755); err != nil {
		return Result{}, fmt.Errorf("create album dir: %w", err)
	}
	trackPath := filepath.Join(trackDir, stem+".flac")
	if err := os.Rename(flacPath, trackPath); err != nil {
		return Result{}, fmt.Errorf("publish track: %w", err)
	}

	result := Result{TrackPath: trackPath}
	if e.opts.SaveCovers {
		coverDir := filepath.Join(e.opts.OutputDir, "covers")
		if e.opts.AlbumDirs {
			coverDir = filepath.Join(coverDir, albumDir)
		}
		if err := os.MkdirAll(coverDir, 0o755); err != nil {
			return Result{}, fmt.Errorf("create covers dir: %w", err)
		}
		coverPath := filepath.Join(coverDir, stem+".png")
		if err := os.WriteFile(coverPath, cover.PNG, 0o644); err != nil {
			return Result{}, fmt.Errorf("save cover: %w", err)
		}
		result.CoverPath = coverPath
	}
	return result, nil
}
