package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"dashrip/internal/config"
	"dashrip/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)

	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())

	configPath := filepath.Join(homeDir, ".config", "dashrip", "config.toml")
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{
		cfg:        cfg,
		configPath: configPath,
		baseDir:    base,
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = []string{"--config", configPath}
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(
		"[paths]\ngame_dir = %q\noutput_dir = %q\nlog_dir = %q\n\n[export]\nlanguage = %q\n\n[extraction]\nworkers = %d\n",
		cfg.Paths.GameDir,
		cfg.Paths.OutputDir,
		cfg.Paths.LogDir,
		cfg.Export.Language,
		cfg.Extraction.Workers,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func TestRootHelpListsCommands(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, nil, env.configPath)
	if err != nil {
		t.Fatalf("root command: %v", err)
	}
	for _, name := range []string{"rip", "songs", "sessions", "preflight", "config", "version"} {
		requireContains(t, out, name)
	}
}

func TestVersionCommand(t *testing.T) {
	out, _, err := runCLI(t, []string{"version"}, "")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	requireContains(t, out, "dashrip dev")
}

func TestRipFailsPreflightWithoutInstallation(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"rip"}, env.configPath)
	if err == nil {
		t.Fatal("expected rip to fail preflight without a game installation")
	}
	requireContains(t, err.Error(), "preflight")
	requireContains(t, out, "Game directory")
}

func TestSongsRequiresInstallation(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"songs"}, env.configPath)
	if err == nil {
		t.Fatal("expected songs to fail without a game installation")
	}
	requireContains(t, err.Error(), "MuseDash.exe")
}

func TestRipRejectsUnknownLanguage(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.ScaffoldGameDir(t, env.cfg.Paths.GameDir)

	_, _, err := runCLI(t, []string{"rip", "--language", "klingon"}, env.configPath)
	if err == nil {
		t.Fatal("expected rip to reject an unknown language")
	}
	requireContains(t, err.Error(), "language")
}
