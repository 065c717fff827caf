package vgmstream

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

var commandContext = exec.CommandContext

// Info describes an audio container as reported by vgmstream.
type Info struct {
	StreamCount int
	SampleRate  int
	Channels    int
}

// Client defines FSB probing and decoding behaviour.
type Client interface {
	Probe(ctx context.Context, inputPath string) (Info, error)
	Decode(ctx context.Context, inputPath, outputPath string) error
}

// Option configures the CLI client.
type Option func(*CLI)

// WithBinary overrides the default binary name.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if binary != "" {
			c.binary = binary
		}
	}
}

// CLI wraps the vgmstream-cli decoder.
type CLI struct {
	binary string
}

// NewCLI constructs a CLI client using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{binary: "vgmstream-cli"}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// Probe reads container metadata without decoding. Files without subsong
// support report a stream count of one.
func (c *CLI) Probe(ctx context.Context, inputPath string) (Info, error) {
	if inputPath == "" {
		return Info{}, errors.New("input path required")
	}

	cmd := commandContext(ctx, c.binary, "-m", inputPath) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return Info{}, fmt.Errorf("stdout pipe: %w", err)
	}
	cmd.Stderr = cmd.Stdout
	if err := cmd.Start(); err != nil {
		return Info{}, fmt.Errorf("start vgmstream: %w", err)
	}

	info := Info{StreamCount: 1}
	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case strings.HasPrefix(line, "stream count: "):
			if n, err := leadingInt(strings.TrimPrefix(line, "stream count: ")); err == nil {
				info.StreamCount = n
			}
		case strings.HasPrefix(line, "sample rate: "):
			if n, err := leadingInt(strings.TrimPrefix(line, "sample rate: ")); err == nil {
				info.SampleRate = n
			}
		case strings.HasPrefix(line, "channels: "):
			if n, err := leadingInt(strings.TrimPrefix(line, "channels: ")); err == nil {
				info.Channels = n
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return Info{}, fmt.Errorf("read vgmstream output: %w", err)
	}
	if err := cmd.Wait(); err != nil {
		return Info{}, fmt.Errorf("vgmstream probe failed: %w", err)
	}
	return info, nil
}

// Decode renders the first stream of the container to a WAV file, playing
// the source through once without loop repetition.
func (c *CLI) Decode(ctx context.Context, inputPath, outputPath string) error {
	if inputPath == "" {
		return errors.New("input path required")
	}
	if outputPath == "" {
		return errors.New("output path required")
	}

	args := []string{"-i", "-s", "1", "-o", outputPath, inputPath}
	cmd := commandContext(ctx, c.binary, args...) //nolint:gosec
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("vgmstream decode failed: %w: %s", err, lastLine(output))
	}
	return nil
}

// leadingInt parses the integer at the head of a metadata value such as
// "44100 Hz".
func leadingInt(value string) (int, error) {
	value = strings.TrimSpace(value)
	if i := strings.IndexByte(value, ' '); i >= 0 {
		value = value[:i]
	}
	return strconv.Atoi(value)
}

func lastLine(output []byte) string {
	lines := strings.Split(strings.TrimSpace(string(output)), "\n")
	if len(lines) == 0 {
		return ""
	}
	return strings.TrimSpace(lines[len(lines)-1])
}
