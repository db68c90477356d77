package utils

import (
	"path/filepath"

	"github.com/funvibe/d/internal/config"
)

// DisplayName derives the name the CLI and diagnostics report for a
// source path: the base filename with any recognized source extension
// trimmed off, so "examples/fib.d" reports as "fib".
func DisplayName(path string) string {
	name := filepath.Base(path)
	return config.TrimSourceExt(name)
}
