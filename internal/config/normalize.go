package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeExport()
	c.normalizeExtraction()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if strings.TrimSpace(c.Paths.GameDir) == "" {
		if value, ok := os.LookupEnv("DASHRIP_GAME_DIR"); ok && strings.TrimSpace(value) != "" {
			c.Paths.GameDir = value
		} else {
			c.Paths.GameDir = defaultGameDir
		}
	}
	var err error
	if c.Paths.GameDir, err = expandPath(c.Paths.GameDir); err != nil {
		return fmt.Errorf("paths.game_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = filepath.Join(c.Paths.OutputDir, "logs")
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeExport() {
	c.Export.Language = strings.TrimSpace(c.Export.Language)
	if c.Export.Language == "" {
		c.Export.Language = defaultLanguage
	}
	if c.Export.CoverMaxEdge < 0 {
		c.Export.CoverMaxEdge = 0
	}
}

func (c *Config) normalizeExtraction() {
	if c.Extraction.Workers <= 0 {
		c.Extraction.Workers = defaultWorkers()
	}
	if c.Extraction.Workers > maxWorkers {
		c.Extraction.Workers = maxWorkers
	}
	if c.Extraction.ProgressFloorPercent <= 0 {
		c.Extraction.ProgressFloorPercent = defaultProgressFloorPercent
	}
	c.Extraction.VgmstreamBinary = strings.TrimSpace(c.Extraction.VgmstreamBinary)
	c.Extraction.FFmpegBinary = strings.TrimSpace(c.Extraction.FFmpegBinary)
	c.Extraction.AssetStudioBinary = strings.TrimSpace(c.Extraction.AssetStudioBinary)
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
