package config

import (
	"errors"
	"fmt"

	"dashrip/internal/songs"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateExport(); err != nil {
		return err
	}
	if err := c.validateExtraction(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if c.Paths.GameDir == "" {
		return errors.New("paths.game_dir must be set")
	}
	if c.Paths.OutputDir == "" {
		return errors.New("paths.output_dir must be set")
	}
	if c.Paths.OutputDir == c.Paths.GameDir {
		return errors.New("paths.output_dir must not be the game directory")
	}
	return nil
}

func (c *Config) validateExport() error {
	if _, err := songs.ParseLanguage(c.Export.Language); err != nil {
		return fmt.Errorf("export.language: %w", err)
	}
	return nil
}

func (c *Config) validateExtraction() error {
	if c.Extraction.Workers < 1 || c.Extraction.Workers > maxWorkers {
		return fmt.Errorf("extraction.workers must be between 1 and %d", maxWorkers)
	}
	if c.Extraction.ProgressFloorPercent < 0 || c.Extraction.ProgressFloorPercent > 50 {
		return errors.New("extraction.progress_floor_percent must be between 0 and 50")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
