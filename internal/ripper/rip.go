package ripper

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"dashrip/internal/catalog"
	"dashrip/internal/extract"
	"dashrip/internal/logging"
	"dashrip/internal/services"
	"dashrip/internal/session"
	"dashrip/internal/songs"
)

// Rip performs a complete export run and returns its summary. A run
// stopped through ctx cancellation is not an error: the summary comes
// back with Incomplete set and the session recorded as incomplete.
func (r *Ripper) Rip(ctx context.Context, opts RunOptions) (*Summary, error) {
	start := time.Now()
	reporter := newReporter(opts.OnProgress)
	reporter.report(0, "prepare", "starting rip")

	if r.store == nil {
		return nil, errors.New("session store required")
	}
	if r.bundles == nil {
		return nil, services.Wrap(services.ErrConfiguration, "rip", "asset extractor",
			"AssetStudioModCLI unavailable; set extraction.assetstudio_binary", nil)
	}

	gameDir := r.cfg.Paths.GameDir
	outputDir := r.cfg.Paths.OutputDir

	if err := catalog.ValidateGameDir(gameDir); err != nil {
		return nil, services.Wrap(services.ErrValidation, "rip", "validate game dir",
			fmt.Sprintf("could not find %s in the game folder; check paths.game_dir", catalog.MarkerFile), err)
	}

	lang, err := songs.ParseLanguage(r.cfg.Export.Language)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "rip", "language", "unsupported export language", err)
	}

	r.logger.Info("starting rip",
		logging.String("game_dir", gameDir),
		logging.String("output_dir", outputDir),
		logging.String("language", lang.String()),
		logging.Bool("album_dirs", r.cfg.Export.AlbumDirs),
		logging.Bool("save_covers", r.cfg.Export.SaveCovers),
		logging.Bool("save_csv", r.cfg.Export.SaveCSV),
		logging.Int("workers", r.cfg.Extraction.Workers))

	if err := r.cfg.EnsureDirectories(); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "rip", "ensure directories",
			"failed to create output directories", err)
	}

	locked, err := r.lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire rip lock: %w", err)
	}
	if !locked {
		return nil, errors.New("another dashrip rip is already running")
	}
	defer func() {
		if err := r.lock.Unlock(); err != nil {
			r.logger.Warn("failed to release rip lock", logging.Error(err))
		}
	}()

	index, err := catalog.Load(gameDir)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "rip", "load catalog",
			"failed to read the game's asset catalog", err)
	}

	floor := r.cfg.Extraction.ProgressFloorPercent
	r.logger.Info("parsing game config")
	parser := songs.NewParser(index, r.bundles, r.base)
	parseCtx := services.WithStage(ctx, "parse")
	list, err := parser.Parse(parseCtx, lang, func(processed, total int) {
		if total > 0 {
			reporter.report(floor*float64(processed)/float64(total), "parse",
				fmt.Sprintf("parsed album %d of %d", processed, total))
		}
	})
	if err != nil {
		if ctx.Err() != nil {
			return &Summary{Language: lang, OutputDir: outputDir, Incomplete: true, Elapsed: time.Since(start)}, nil
		}
		return nil, fmt.Errorf("parse game config: %w", err)
	}
	songs.ApplyCorrections(list)

	summary := &Summary{
		Language:   lang,
		OutputDir:  outputDir,
		TrackTotal: len(list),
	}

	if r.cfg.Export.SaveCSV {
		r.logger.Info("saving songs.csv")
		csvPath, err := r.writeCSV(outputDir, list)
		if err != nil {
			return nil, err
		}
		summary.CSVPath = csvPath
	}

	songs.Normalize(list)

	albums := make(map[int]struct{})
	for _, song := range list {
		albums[song.AlbumNumber] = struct{}{}
	}
	r.logger.Info("track list assembled",
		logging.Int("songs", len(list)),
		logging.Int("albums", len(albums)))

	sess, skip, err := r.prepareSession(ctx, opts, lang, list)
	if err != nil {
		return nil, err
	}
	summary.SessionID = sess.ID
	ctx = services.WithSessionID(ctx, sess.ID)
	logger := logging.WithContext(ctx, r.logger)

	if ctx.Err() != nil {
		r.finishSession(sess.ID, session.OutcomeIncomplete, "")
		summary.Incomplete = true
		summary.Elapsed = time.Since(start)
		return summary, nil
	}

	extractor, err := extract.NewExtractor(extract.Options{
		OutputDir:    outputDir,
		AlbumDirs:    r.cfg.Export.AlbumDirs,
		SaveCovers:   r.cfg.Export.SaveCovers,
		VerifyTags:   r.cfg.Export.VerifyTags,
		CoverMaxEdge: r.cfg.Export.CoverMaxEdge,
	}, index, r.bundles, r.decoder, r.encoder, r.base)
	if err != nil {
		return nil, fmt.Errorf("configure extractor: %w", err)
	}

	runErr := r.schedule(ctx, extractor, sess.ID, list, skip, reporter, summary, floor)
	summary.Elapsed = time.Since(start)

	switch {
	case runErr != nil:
		r.finishSession(sess.ID, session.OutcomeFailed, runErr.Error())
		return summary, runErr
	case ctx.Err() != nil:
		r.finishSession(sess.ID, session.OutcomeIncomplete, "")
		summary.Incomplete = true
		logger.Info("rip stopped before finishing",
			logging.Int("exported", summary.Exported),
			logging.Int("cancelled", summary.Cancelled))
		return summary, nil
	default:
		r.finishSession(sess.ID, session.OutcomeCompleted, "")
		reporter.report(100, "done", "all tracks exported")
		logger.Info("rip finished",
			logging.Int("exported", summary.Exported),
			logging.Int("skipped", summary.Skipped),
			logging.Duration("elapsed", summary.Elapsed))
		return summary, nil
	}
}

func (r *Ripper) writeCSV(outputDir string, list []songs.Song) (string, error) {
	csvPath := filepath.Join(outputDir, "songs.csv")
	f, err := os.Create(csvPath)
	if err != nil {
		return "", fmt.Errorf("create songs.csv: %w", err)
	}
	if err := songs.WriteCSV(f, list); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("write songs.csv: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close songs.csv: %w", err)
	}
	return csvPath, nil
}

// prepareSession starts a fresh session, or on resume reopens the latest
// one and collects the tracks that already succeeded.
func (r *Ripper) prepareSession(ctx context.Context, opts RunOptions, lang songs.Language, list []songs.Song) (*session.Session, map[trackKey]bool, error) {
	records := make([]session.TrackRecord, 0, len(list))
	for _, song := range list {
		records = append(records, session.TrackRecord{
			AlbumNumber: song.AlbumNumber,
			TrackNumber: song.TrackNumber,
			Title:       song.Title,
			Artist:      song.Artist,
		})
	}

	if opts.Resume {
		sess, err := r.store.LatestSession(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("find session to resume: %w", err)
		}
		if sess == nil {
			return nil, nil, services.Wrap(services.ErrValidation, "rip", "resume",
				"no previous session to resume; run without --resume", nil)
		}
		if sess.Outcome == session.OutcomeCompleted {
			return nil, nil, services.Wrap(services.ErrValidation, "rip", "resume",
				"latest session already completed; run without --resume", nil)
		}
		succeeded, err := r.store.TracksWithStatus(ctx, sess.ID, session.TrackSucceeded)
		if err != nil {
			return nil, nil, fmt.Errorf("list finished tracks: %w", err)
		}
		skip := make(map[trackKey]bool, len(succeeded))
		for _, track := range succeeded {
			skip[trackKey{track.AlbumNumber, track.TrackNumber}] = true
		}
		if err := r.store.ReopenSession(ctx, sess.ID); err != nil {
			return nil, nil, err
		}
		if err := r.store.AddTracks(ctx, sess.ID, records); err != nil {
			return nil, nil, err
		}
		r.logger.Info("resuming session",
			logging.String(logging.FieldSessionID, sess.ID),
			logging.Int("already_exported", len(skip)))
		return sess, skip, nil
	}

	sess, err := r.store.StartSession(ctx, r.cfg.Paths.GameDir, r.cfg.Paths.OutputDir, lang.String())
	if err != nil {
		return nil, nil, fmt.Errorf("start session: %w", err)
	}
	if err := r.store.AddTracks(ctx, sess.ID, records); err != nil {
		return nil, nil, err
	}
	return sess, nil, nil
}

// finishSession records the terminal outcome on a background context so
// cancelled runs still persist their result.
func (r *Ripper) finishSession(id string, outcome session.Outcome, message string) {
	if err := r.store.FinishSession(context.Background(), id, outcome, message); err != nil {
		r.logger.Warn("failed to record session outcome", logging.Error(err))
	}
}
