package preflight

import (
	"dashrip/internal/config"
	"dashrip/internal/deps"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes every filesystem check for the given config. Tool
// availability is reported separately by CheckSystemDeps.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}
	return []Result{
		CheckGameDir(cfg.Paths.GameDir),
		CheckWritableDir("Output directory", cfg.Paths.OutputDir),
		CheckWritableDir("Log directory", cfg.Paths.LogDir),
	}
}

// CheckSystemDeps evaluates the external tools a rip shells out to. The rip
// command and "dashrip preflight" both use this so the requirements list is
// defined once.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	results := []deps.Status{deps.CheckVgmstream(cfg.VgmstreamBinary())}
	results = append(results, deps.CheckBinaries([]deps.Requirement{
		{
			Name:        "FFmpeg",
			Command:     cfg.FFmpegBinary(),
			Description: "Required for FLAC encoding",
		},
		{
			Name:        "AssetStudioModCLI",
			Command:     cfg.AssetStudioBinary(),
			Description: "Required for reading Unity asset bundles",
		},
	})...)
	return results
}
