package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// MarkerFile must exist at the game directory root for it to be treated
	// as a valid installation.
	MarkerFile = "MuseDash.exe"

	// DataDir is the addressable-asset root relative to the game directory.
	DataDir = "MuseDash_Data/StreamingAssets/aa"

	// ManifestName is the addressable-asset manifest file inside DataDir.
	ManifestName = "catalog.json"

	runtimePathMarker = "{UnityEngine.AddressableAssets.Addressables.RuntimePath}/"
)

// ErrUnresolved reports a logical prefix that matched zero or more than one
// cataloged bundle.
var ErrUnresolved = errors.New("unresolved asset reference")

type entry struct {
	logical  string
	physical string
}

// Index maps logical bundle name prefixes to physical bundle paths.
type Index struct {
	dataDir string
	entries []entry
}

type manifest struct {
	InternalIDs []string `json:"m_InternalIds"`
}

// Load reads the addressable-asset manifest beneath gameDir and builds the
// lookup index. Entries that do not carry the runtime-path placeholder are
// not addressable bundles and are ignored.
func Load(gameDir string) (*Index, error) {
	dataDir := filepath.Join(gameDir, filepath.FromSlash(DataDir))
	manifestPath := filepath.Join(dataDir, ManifestName)

	raw, err := os.ReadFile(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("read catalog manifest %s: %w", manifestPath, err)
	}

	var doc manifest
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog manifest %s: %w", manifestPath, err)
	}

	idx := &Index{dataDir: dataDir}
	for _, id := range doc.InternalIDs {
		normalized := strings.ReplaceAll(id, "\\", "/")
		rel, ok := strings.CutPrefix(normalized, runtimePathMarker)
		if !ok {
			continue
		}
		platform, logical, ok := strings.Cut(rel, "/")
		if !ok || logical == "" {
			continue
		}
		idx.entries = append(idx.entries, entry{
			logical:  logical,
			physical: filepath.Join(dataDir, platform, filepath.FromSlash(logical)),
		})
	}
	return idx, nil
}

// Len reports the number of addressable bundle entries.
func (i *Index) Len() int {
	return len(i.entries)
}

// Resolve returns the physical path of the single bundle whose logical name
// starts with prefix. Zero matches and multiple matches are both failures;
// resolution never silently picks a candidate.
func (i *Index) Resolve(prefix string) (string, error) {
	var (
		found string
		count int
	)
	for _, e := range i.entries {
		if strings.HasPrefix(e.logical, prefix) {
			found = e.physical
			count++
		}
	}
	switch count {
	case 1:
		return found, nil
	case 0:
		return "", fmt.Errorf("%w: no bundle matches prefix %q", ErrUnresolved, prefix)
	default:
		return "", fmt.Errorf("%w: prefix %q matches %d bundles", ErrUnresolved, prefix, count)
	}
}

// MarkerPath returns the expected marker file path for gameDir.
func MarkerPath(gameDir string) string {
	return filepath.Join(gameDir, MarkerFile)
}

// ValidateGameDir confirms gameDir looks like a game installation by checking
// for the marker file.
func ValidateGameDir(gameDir string) error {
	if _, err := os.Stat(MarkerPath(gameDir)); err != nil {
		return fmt.Errorf("%s not found in %s: %w", MarkerFile, gameDir, err)
	}
	return nil
}
