package preflight

import (
	"fmt"

	"dashrip/internal/catalog"
)

// InstallProbe reports a snapshot of the configured game installation.
type InstallProbe struct {
	Found   bool
	GameDir string
	Bundles int
}

// ProbeInstall inspects gameDir and counts the addressable bundles its asset
// catalog lists. A directory without the marker file reports no installation.
func ProbeInstall(gameDir string) InstallProbe {
	probe := InstallProbe{GameDir: gameDir}
	if catalog.ValidateGameDir(gameDir) != nil {
		return probe
	}
	probe.Found = true
	index, err := catalog.Load(gameDir)
	if err != nil {
		return probe
	}
	probe.Bundles = index.Len()
	return probe
}

// Detail renders a display-friendly summary for status output.
func (p InstallProbe) Detail() string {
	if !p.Found {
		return "No Muse Dash installation detected"
	}
	if p.Bundles == 0 {
		return fmt.Sprintf("Muse Dash found at %s (no asset catalog)", p.GameDir)
	}
	return fmt.Sprintf("Muse Dash found at %s (%d bundles)", p.GameDir, p.Bundles)
}
