package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// RetentionTarget names a directory and filename pattern to prune.
type RetentionTarget struct {
	Dir     string
	Pattern string
	Exclude []string
}

// CleanupOldLogs deletes files matching the targets whose modification
// time is older than retentionDays. Zero or negative retention disables
// pruning. Unreadable directories and undeletable files are skipped; a
// run never fails because housekeeping did.
func CleanupOldLogs(logger *slog.Logger, retentionDays int, targets ...RetentionTarget) {
	if retentionDays <= 0 {
		return
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	for _, target := range targets {
		pruneTarget(logger, target, cutoff)
	}
}

func pruneTarget(logger *slog.Logger, target RetentionTarget, cutoff time.Time) {
	dir := strings.TrimSpace(target.Dir)
	if dir == "" {
		return
	}
	keep := make(map[string]bool, len(target.Exclude))
	for _, path := range target.Exclude {
		if path = strings.TrimSpace(path); path != "" {
			keep[absolute(path)] = true
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if pattern := strings.TrimSpace(target.Pattern); pattern != "" {
			if ok, err := filepath.Match(pattern, entry.Name()); err != nil || !ok {
				continue
			}
		}
		path := absolute(filepath.Join(dir, entry.Name()))
		if keep[path] {
			continue
		}
		info, err := entry.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(path); err != nil {
			if logger != nil {
				logger.Warn("log retention remove failed", String("path", path), Error(err))
			}
			continue
		}
		if logger != nil {
			logger.Debug("log pruned", String("path", path))
		}
	}
}

func absolute(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}
