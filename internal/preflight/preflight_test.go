package preflight

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"dashrip/internal/catalog"
	"dashrip/internal/config"
	"dashrip/internal/testsupport"
)

func scaffoldMarker(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(catalog.MarkerPath(dir), []byte("stub"), 0o644); err != nil {
		t.Fatalf("write marker: %v", err)
	}
	return dir
}

func TestCheckGameDirOK(t *testing.T) {
	result := CheckGameDir(scaffoldMarker(t))
	if !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
	if !strings.Contains(result.Detail, catalog.MarkerFile) {
		t.Fatalf("detail should name the marker file: %s", result.Detail)
	}
}

func TestCheckGameDirMissingMarker(t *testing.T) {
	result := CheckGameDir(t.TempDir())
	if result.Passed {
		t.Fatal("expected failure without marker file")
	}
	if !strings.Contains(result.Detail, catalog.MarkerFile) {
		t.Fatalf("detail should name the marker file: %s", result.Detail)
	}
}

func TestCheckGameDirNotExist(t *testing.T) {
	result := CheckGameDir(filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckGameDirNotConfigured(t *testing.T) {
	result := CheckGameDir("  ")
	if result.Passed || result.Detail != "not configured" {
		t.Fatalf("unexpected result: %#v", result)
	}
}

func TestCheckWritableDirOK(t *testing.T) {
	result := CheckWritableDir("test", t.TempDir())
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckWritableDirWillBeCreated(t *testing.T) {
	result := CheckWritableDir("test", filepath.Join(t.TempDir(), "out", "albums"))
	if !result.Passed {
		t.Fatalf("expected pass for creatable dir, got: %s", result.Detail)
	}
	if !strings.Contains(result.Detail, "will be created") {
		t.Fatalf("unexpected detail: %s", result.Detail)
	}
}

func TestCheckWritableDirNotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckWritableDir("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestRunAllNilConfig(t *testing.T) {
	if results := RunAll(nil); results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAllMinimalConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.GameDir = scaffoldMarker(t)
	cfg.Paths.OutputDir = t.TempDir()
	cfg.Paths.LogDir = filepath.Join(cfg.Paths.OutputDir, "logs")

	results := RunAll(&cfg)
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for _, r := range results {
		if !r.Passed {
			t.Errorf("check %q failed: %s", r.Name, r.Detail)
		}
	}
}

func TestCheckSystemDepsNamesEveryTool(t *testing.T) {
	t.Setenv("PATH", "")
	cfg := config.Default()

	results := CheckSystemDeps(&cfg)
	want := []string{"vgmstream", "FFmpeg", "AssetStudioModCLI"}
	if len(results) != len(want) {
		t.Fatalf("expected %d results, got %d", len(want), len(results))
	}
	for i, name := range want {
		if results[i].Name != name {
			t.Fatalf("expected result %d to be %q, got %q", i, name, results[i].Name)
		}
		if results[i].Available {
			t.Fatalf("expected %q to be unavailable with empty PATH", name)
		}
	}
}

func TestProbeInstall(t *testing.T) {
	missing := ProbeInstall(t.TempDir())
	if missing.Found {
		t.Fatal("expected no installation without marker")
	}
	if missing.Detail() != "No Muse Dash installation detected" {
		t.Fatalf("unexpected detail: %s", missing.Detail())
	}

	gameDir := filepath.Join(t.TempDir(), "game")
	testsupport.ScaffoldGameDir(t, gameDir,
		"config_others_assets_albums_1.bundle",
		"music_iyaiya_assets_all_2.bundle")

	probe := ProbeInstall(gameDir)
	if !probe.Found {
		t.Fatal("expected installation to be detected")
	}
	if probe.Bundles != 2 {
		t.Fatalf("expected 2 bundles, got %d", probe.Bundles)
	}
	if !strings.Contains(probe.Detail(), "2 bundles") {
		t.Fatalf("unexpected detail: %s", probe.Detail())
	}
}
