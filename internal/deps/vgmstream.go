package deps

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

var executablePath = os.Executable

// CheckVgmstream reports the vgmstream binary dashrip will execute.
//
// vgmstream releases ship a standalone vgmstream-cli binary that users often
// drop next to the dashrip executable instead of installing it system wide.
// The lookup prefers that sidecar and falls back to resolving the configured
// command from PATH. A command containing a path separator is taken as an
// explicit location and checked directly.
func CheckVgmstream(vgmstreamCommand string) Status {
	result := Status{
		Name:        "vgmstream",
		Description: "Required for decoding FSB audio",
	}

	command := strings.TrimSpace(vgmstreamCommand)
	if command == "" {
		command = "vgmstream-cli"
	}

	if strings.ContainsRune(command, '/') || filepath.IsAbs(command) {
		if resolved, err := exec.LookPath(command); err == nil {
			result.Command = resolved
			result.Available = true
			return result
		}
		result.Command = command
		result.Detail = fmt.Sprintf("binary %q not found", command)
		return result
	}

	if exe, err := executablePath(); err == nil {
		candidate := filepath.Join(filepath.Dir(exe), executableName(command))
		if info, statErr := os.Stat(candidate); statErr == nil && isExecutable(info) {
			result.Command = candidate
			result.Available = true
			return result
		}
	}

	if resolved, err := exec.LookPath(command); err == nil {
		result.Command = resolved
		result.Available = true
		return result
	}

	result.Command = command
	result.Detail = fmt.Sprintf("binary %q not found", command)
	return result
}

func executableName(base string) string {
	if runtime.GOOS == "windows" && !strings.HasSuffix(base, ".exe") {
		return base + ".exe"
	}
	return base
}

func isExecutable(info os.FileInfo) bool {
	if info == nil || info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}
