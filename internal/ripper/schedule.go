package ripper

import (
	"context"
	"fmt"
	"os"
	"sync"

	"golang.org/x/sync/errgroup"

	"dashrip/internal/extract"
	"dashrip/internal/logging"
	"dashrip/internal/services"
	"dashrip/internal/songs"
)

type trackKey struct {
	album int
	track int
}

// reporter keeps progress monotone across concurrent updates.
type reporter struct {
	mu   sync.Mutex
	fn   ProgressFunc
	last float64
}

func newReporter(fn ProgressFunc) *reporter {
	return &reporter{fn: fn, last: -1}
}

func (r *reporter) report(percent float64, stage, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if percent <= r.last {
		return
	}
	r.last = percent
	if r.fn != nil {
		r.fn(Progress{Percent: percent, Stage: stage, Message: message})
	}
}

// schedule fans the track list out over the worker pool and returns the
// first track failure. Tracks interrupted or never started because the
// run is stopping are recorded as cancelled, not failed.
func (r *Ripper) schedule(ctx context.Context, extractor *extract.Extractor, sessionID string, list []songs.Song, skip map[trackKey]bool, reporter *reporter, summary *Summary, floor float64) error {
	// Track bookkeeping has to outlive ctx so cancelled runs still record
	// their final track states.
	bookCtx := context.Background()

	total := len(list)
	workers := r.cfg.Extraction.Workers
	if workers < 1 {
		workers = 1
	}

	g, egCtx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	var (
		mu   sync.Mutex
		done int
	)
	advance := func(message string) {
		mu.Lock()
		done++
		n := done
		mu.Unlock()
		reporter.report(floor+(100-floor)*float64(n)/float64(total), "export", message)
	}

	for _, song := range list {
		if skip[trackKey{song.AlbumNumber, song.TrackNumber}] {
			mu.Lock()
			summary.Skipped++
			mu.Unlock()
			advance(fmt.Sprintf("already exported %s", song.Title))
			continue
		}
		g.Go(func() error {
			if egCtx.Err() != nil {
				r.markCancelled(bookCtx, sessionID, song)
				mu.Lock()
				summary.Cancelled++
				mu.Unlock()
				return nil
			}

			trackCtx := services.WithStage(egCtx, "export")
			trackCtx = services.WithTrack(trackCtx, fmt.Sprintf("%d-%d", song.AlbumNumber, song.TrackNumber))
			logger := logging.WithContext(trackCtx, r.logger)
			logger.Info("exporting song",
				logging.String("title", song.Title),
				logging.String("artist", song.Artist))

			if err := r.store.MarkTrackRunning(bookCtx, sessionID, song.AlbumNumber, song.TrackNumber); err != nil {
				logger.Warn("failed to record track start", logging.Error(err))
			}

			result, err := extractor.Extract(trackCtx, song)
			if err != nil {
				if egCtx.Err() != nil {
					// The run is already stopping; this failure is collateral.
					r.markCancelled(bookCtx, sessionID, song)
					mu.Lock()
					summary.Cancelled++
					mu.Unlock()
					return nil
				}
				if markErr := r.store.MarkTrackFailed(bookCtx, sessionID, song.AlbumNumber, song.TrackNumber, err.Error()); markErr != nil {
					logger.Warn("failed to record track failure", logging.Error(markErr))
				}
				mu.Lock()
				summary.Failed++
				mu.Unlock()
				logger.Error("export failed", logging.Error(err))
				return fmt.Errorf("export %q: %w", song.Title, err)
			}

			if err := r.store.MarkTrackSucceeded(bookCtx, sessionID, song.AlbumNumber, song.TrackNumber, result.TrackPath); err != nil {
				logger.Warn("failed to record track success", logging.Error(err))
			}

			var size int64
			if info, statErr := os.Stat(result.TrackPath); statErr == nil {
				size = info.Size()
			}
			mu.Lock()
			summary.Exported++
			summary.BytesWritten += size
			mu.Unlock()
			advance(fmt.Sprintf("exported %s", song.Title))
			logger.Info("song exported", logging.String("path", result.TrackPath))
			return nil
		})
	}

	return g.Wait()
}

func (r *Ripper) markCancelled(ctx context.Context, sessionID string, song songs.Song) {
	if err := r.store.MarkTrackCancelled(ctx, sessionID, song.AlbumNumber, song.TrackNumber); err != nil {
		r.logger.Warn("failed to record track cancellation", logging.Error(err))
	}
}
