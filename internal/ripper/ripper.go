package ripper

import (
	"path/filepath"
	"time"

	"log/slog"

	"github.com/gofrs/flock"

	"dashrip/internal/config"
	"dashrip/internal/logging"
	"dashrip/internal/services/assetstudio"
	"dashrip/internal/services/ffmpeg"
	"dashrip/internal/services/vgmstream"
	"dashrip/internal/session"
	"dashrip/internal/songs"
)

// Progress is a snapshot of overall run progress. Percent only ever grows
// over the life of a run.
type Progress struct {
	Percent float64
	Stage   string
	Message string
}

// ProgressFunc receives progress snapshots. It is called from worker
// goroutines and must return quickly.
type ProgressFunc func(Progress)

// RunOptions control a single rip run.
type RunOptions struct {
	// Resume continues the most recent unfinished session instead of
	// starting a new one. Tracks that already succeeded are skipped.
	Resume bool

	// OnProgress, when set, receives progress updates during the run.
	OnProgress ProgressFunc
}

// Summary reports what a run accomplished. When Rip returns an error the
// summary still describes the work done up to the failure.
type Summary struct {
	SessionID    string
	Language     songs.Language
	TrackTotal   int
	Exported     int
	Skipped      int
	Failed       int
	Cancelled    int
	Incomplete   bool
	OutputDir    string
	CSVPath      string
	BytesWritten int64
	Elapsed      time.Duration
}

// Ripper owns the collaborators a run needs and enforces single-run
// execution through a lock file.
type Ripper struct {
	cfg     *config.Config
	store   *session.Store
	logger  *slog.Logger
	base    *slog.Logger
	bundles assetstudio.Store
	decoder vgmstream.Client
	encoder ffmpeg.Encoder

	lockPath string
	lock     *flock.Flock
}

// New constructs a ripper using the external tools named in the config.
func New(cfg *config.Config, store *session.Store, logger *slog.Logger) *Ripper {
	if logger == nil {
		logger = logging.NewNop()
	}
	var bundles assetstudio.Store
	if client, err := assetstudio.New(cfg.AssetStudioBinary(), logger); err != nil {
		logger.Warn("asset extractor unavailable", logging.Error(err))
	} else {
		bundles = client
	}
	decoder := vgmstream.NewCLI(vgmstream.WithBinary(cfg.VgmstreamBinary()))
	encoder := ffmpeg.NewCLI(ffmpeg.WithBinary(cfg.FFmpegBinary()))
	return NewWithDependencies(cfg, store, logger, bundles, decoder, encoder)
}

// NewWithDependencies allows injecting all collaborators (used in tests).
func NewWithDependencies(cfg *config.Config, store *session.Store, logger *slog.Logger, bundles assetstudio.Store, decoder vgmstream.Client, encoder ffmpeg.Encoder) *Ripper {
	if logger == nil {
		logger = logging.NewNop()
	}
	lockPath := filepath.Join(cfg.Paths.LogDir, "dashrip.lock")
	return &Ripper{
		cfg:      cfg,
		store:    store,
		logger:   logger.With(logging.String(logging.FieldComponent, "ripper")),
		base:     logger,
		bundles:  bundles,
		decoder:  decoder,
		encoder:  encoder,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}
}

// LockPath returns the location of the single-run lock file.
func (r *Ripper) LockPath() string {
	return r.lockPath
}
