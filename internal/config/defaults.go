package config

import "runtime"

const (
	defaultGameDir              = "~/.local/share/Steam/steamapps/common/Muse Dash"
	defaultOutputDir            = "output"
	defaultLanguage             = "english"
	defaultProgressFloorPercent = 4.0
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
	defaultLogRetentionDays     = 30
	defaultVgmstreamBinary      = "vgmstream-cli"
	defaultFFmpegBinary         = "ffmpeg"
	defaultAssetStudioBinary    = "AssetStudioModCLI"
	maxWorkers                  = 16
)

func defaultWorkers() int {
	workers := runtime.NumCPU()
	if workers > 4 {
		workers = 4
	}
	if workers < 1 {
		workers = 1
	}
	return workers
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			GameDir:   defaultGameDir,
			OutputDir: defaultOutputDir,
		},
		Export: Export{
			Language:   defaultLanguage,
			AlbumDirs:  true,
			SaveCovers: false,
			SaveCSV:    false,
			VerifyTags: true,
		},
		Extraction: Extraction{
			Workers:              defaultWorkers(),
			ProgressFloorPercent: defaultProgressFloorPercent,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
