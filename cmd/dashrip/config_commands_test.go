package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfigValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Config path: "+env.configPath)
	requireContains(t, out, "Configuration valid")
}

func TestConfigValidateMissingFileUsesDefaults(t *testing.T) {
	env := setupCLITestEnv(t)
	// The default output_dir is relative, so keep directory creation inside
	// the test sandbox.
	t.Chdir(t.TempDir())
	missing := filepath.Join(env.baseDir, "nowhere", "config.toml")

	out, _, err := runCLI(t, []string{"config", "validate"}, missing)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "defaults were used")
	requireContains(t, out, "Configuration valid")
}

func TestConfigInit(t *testing.T) {
	env := setupCLITestEnv(t)
	target := filepath.Join(env.baseDir, "fresh", "config.toml")

	out, _, err := runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration to "+target)
	if _, statErr := os.Stat(target); statErr != nil {
		t.Fatalf("expected sample config at %s: %v", target, statErr)
	}

	// A second init must refuse to clobber the file unless asked to.
	_, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err == nil {
		t.Fatal("expected error when config already exists")
	}
	requireContains(t, err.Error(), "already exists")

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target, "--overwrite"}, ""); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestConfigShowRendersEffectiveConfig(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "show"}, env.configPath)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, "game_dir")
	requireContains(t, out, env.cfg.Paths.GameDir)
	requireContains(t, out, "workers")
}

func TestConfigPath(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "path"}, env.configPath)
	if err != nil {
		t.Fatalf("config path: %v", err)
	}
	requireContains(t, out, env.configPath)
	if strings.Contains(out, "not created yet") {
		t.Fatalf("existing config reported as missing: %q", out)
	}

	missing := filepath.Join(env.baseDir, "nope.toml")
	out, _, err = runCLI(t, []string{"config", "path"}, missing)
	if err != nil {
		t.Fatalf("config path (missing): %v", err)
	}
	requireContains(t, out, missing)
	requireContains(t, out, "not created yet")
}
