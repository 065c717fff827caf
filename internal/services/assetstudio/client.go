package assetstudio

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"log/slog"

	"dashrip/internal/logging"
)

// ObjectType names a Unity object class inside an asset bundle.
type ObjectType string

const (
	TypeTextAsset ObjectType = "TextAsset"
	TypeAudioClip ObjectType = "AudioClip"
	TypeTexture2D ObjectType = "Texture2D"
)

// ErrObjectNotFound indicates the bundle holds no object with the
// requested type and name.
var ErrObjectNotFound = errors.New("object not found in bundle")

// Store reads named objects out of Unity asset bundles.
type Store interface {
	Read(ctx context.Context, bundlePath string, objType ObjectType, name string) ([]byte, error)
}

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string, onStdout func(string)) error
}

// Option configures the client.
type Option func(*CLI)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *CLI) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// CLI wraps AssetStudioModCLI invocations.
type CLI struct {
	binary string
	logger *slog.Logger
	exec   Executor
}

// New constructs an asset store backed by the AssetStudioModCLI binary.
func New(binary string, logger *slog.Logger, opts ...Option) (*CLI, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("assetstudio binary required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	client := &CLI{
		binary: binary,
		logger: logger.With(logging.String("component", "assetstudio")),
		exec:   commandExecutor{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Read exports the named object from the bundle and returns its payload.
// Audio objects keep their FSB container so the decoder downstream sees
// the original stream; textures are converted to PNG on the way out.
func (c *CLI) Read(ctx context.Context, bundlePath string, objType ObjectType, name string) ([]byte, error) {
	if bundlePath == "" {
		return nil, errors.New("bundle path required")
	}
	if name == "" {
		return nil, errors.New("object name required")
	}
	typeFlag, err := objType.flag()
	if err != nil {
		return nil, err
	}

	exportDir, err := os.MkdirTemp("", "dashrip-assetstudio-")
	if err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}
	defer os.RemoveAll(exportDir)

	args := []string{
		bundlePath,
		"-o", exportDir,
		"-t", typeFlag,
		"--filter-by-name", name,
		"-g", "none",
		"--log-level", "warning",
	}
	switch objType {
	case TypeAudioClip:
		args = append(args, "--audio-format", "none")
	case TypeTexture2D:
		args = append(args, "--image-format", "png")
	}

	onStdout := func(line string) {
		c.logger.Debug("assetstudio output", logging.String("line", line))
	}
	if err := c.exec.Run(ctx, c.binary, args, onStdout); err != nil {
		return nil, fmt.Errorf("assetstudio export %s from %s: %w", name, filepath.Base(bundlePath), err)
	}

	exportPath, err := findExport(exportDir, name)
	if err != nil {
		return nil, err
	}
	payload, err := os.ReadFile(exportPath)
	if err != nil {
		return nil, fmt.Errorf("read exported object: %w", err)
	}
	return payload, nil
}

func (t ObjectType) flag() (string, error) {
	switch t {
	case TypeTextAsset:
		return "textAsset", nil
	case TypeAudioClip:
		return "audio", nil
	case TypeTexture2D:
		return "tex2d", nil
	default:
		return "", fmt.Errorf("unsupported object type %q", string(t))
	}
}

// findExport locates the exported file for name. The CLI filter matches
// by substring, so exports for longer names can land next to the one we
// asked for; only an exact base-name match counts.
func findExport(root, name string) (string, error) {
	var matches []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		base := d.Name()
		if base == name || strings.HasPrefix(base, name+".") {
			matches = append(matches, path)
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("scan export dir: %w", err)
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("%w: %s", ErrObjectNotFound, name)
	}
	sort.Strings(matches)
	return matches[0], nil
}
