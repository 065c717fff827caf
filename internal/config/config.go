package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains source and destination directory configuration.
type Paths struct {
	GameDir   string `toml:"game_dir"`
	OutputDir string `toml:"output_dir"`
	LogDir    string `toml:"log_dir"`
}

// Export controls which files are written and how they are laid out.
type Export struct {
	Language     string `toml:"language"`
	AlbumDirs    bool   `toml:"album_dirs"`
	SaveCovers   bool   `toml:"save_covers"`
	SaveCSV      bool   `toml:"save_csv"`
	VerifyTags   bool   `toml:"verify_tags"`
	CoverMaxEdge int    `toml:"cover_max_edge"`
}

// Extraction controls worker fan-out and the external decode tools.
type Extraction struct {
	Workers              int     `toml:"workers"`
	ProgressFloorPercent float64 `toml:"progress_floor_percent"`
	VgmstreamBinary      string  `toml:"vgmstream_binary"`
	FFmpegBinary         string  `toml:"ffmpeg_binary"`
	AssetStudioBinary    string  `toml:"assetstudio_binary"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for dashrip.
//
// Configuration sections by subsystem:
//   - Paths: game installation, export destination, and log directories
//   - Export: language overlay selection and output toggles
//   - Extraction: worker pool sizing and external tool binaries
//   - Logging: log format, level, and retention
type Config struct {
	Paths      Paths      `toml:"paths"`
	Export     Export     `toml:"export"`
	Extraction Extraction `toml:"extraction"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/dashrip/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("dashrip.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the destination directories a rip writes into.
// The game directory is deliberately left untouched.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.OutputDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// VgmstreamBinary returns the vgmstream decoder executable.
func (c *Config) VgmstreamBinary() string {
	if bin := strings.TrimSpace(c.Extraction.VgmstreamBinary); bin != "" {
		return bin
	}
	return defaultVgmstreamBinary
}

// FFmpegBinary returns the ffmpeg executable used for the final encode.
func (c *Config) FFmpegBinary() string {
	if bin := strings.TrimSpace(c.Extraction.FFmpegBinary); bin != "" {
		return bin
	}
	return defaultFFmpegBinary
}

// AssetStudioBinary returns the bundle extraction executable.
func (c *Config) AssetStudioBinary() string {
	if bin := strings.TrimSpace(c.Extraction.AssetStudioBinary); bin != "" {
		return bin
	}
	return defaultAssetStudioBinary
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// ResolvePath reports which configuration file Load would read for the given
// explicit path, and whether that file exists yet.
func ResolvePath(path string) (string, bool, error) {
	return resolveConfigPath(path)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
