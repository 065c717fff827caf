package textutil

import "strings"

// fileNameReplacer substitutes characters that are invalid in file names on
// at least one supported platform. Every reserved character maps to an
// underscore so distinct titles stay distinct after sanitization.
var fileNameReplacer = strings.NewReplacer(
	"<", "_",
	">", "_",
	":", "_",
	"\"", "_",
	"/", "_",
	"\\", "_",
	"|", "_",
	"?", "_",
	"*", "_",
)

// SanitizeFileName replaces reserved filename characters with underscores.
func SanitizeFileName(name string) string {
	return fileNameReplacer.Replace(name)
}
