package testsupport

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"dashrip/internal/catalog"
)

// WriteFile fills the target path with the requested number of bytes using a
// simple repeating pattern. A size <= 0 writes a single byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	const chunkSize = 32 * 1024
	buf := make([]byte, chunkSize)
	for i := range buf {
		buf[i] = 0x42
	}

	remaining := size
	for remaining > 0 {
		toWrite := int64(chunkSize)
		if remaining < toWrite {
			toWrite = remaining
		}
		if _, err := f.Write(buf[:toWrite]); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
		remaining -= toWrite
	}
}

// ScaffoldGameDir lays out a minimal game installation under gameDir: the
// marker executable, an addressable-asset manifest listing the given logical
// bundle names, and a placeholder file per bundle. It returns the platform
// directory holding the bundle files.
func ScaffoldGameDir(t testing.TB, gameDir string, bundles ...string) string {
	t.Helper()

	const platform = "StandaloneLinux64"

	if err := os.MkdirAll(gameDir, 0o755); err != nil {
		t.Fatalf("mkdir game dir: %v", err)
	}
	if err := os.WriteFile(catalog.MarkerPath(gameDir), []byte("stub"), 0o644); err != nil {
		t.Fatalf("write marker: %v", err)
	}

	dataDir := filepath.Join(gameDir, filepath.FromSlash(catalog.DataDir))
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		t.Fatalf("mkdir data dir: %v", err)
	}
	internalIDs := make([]string, 0, len(bundles))
	for _, bundle := range bundles {
		internalIDs = append(internalIDs, "{UnityEngine.AddressableAssets.Addressables.RuntimePath}/"+platform+"/"+bundle)
		WriteFile(t, filepath.Join(dataDir, platform, bundle), 16)
	}

	manifest, err := json.Marshal(map[string]any{"m_InternalIds": internalIDs})
	if err != nil {
		t.Fatalf("marshal manifest: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dataDir, catalog.ManifestName), manifest, 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	return filepath.Join(dataDir, platform)
}
