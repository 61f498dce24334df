package config

import (
	"os"
	"path/filepath"
	"strings"
)

// RuntimeRoot is the base for relative runtime paths: $PENLINE_HOME when set,
// otherwise the directory holding the executable, otherwise the working dir.
func RuntimeRoot() string {
	if home, ok := os.LookupEnv(envHome); ok && strings.TrimSpace(home) != "" {
		return filepath.Clean(strings.TrimSpace(home))
	}
	if exe, err := os.Executable(); err == nil {
		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			exe = resolved
		}
		return filepath.Dir(exe)
	}
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}

// resolvePath joins raw (or fallback when raw is blank) onto root unless it
// is already absolute.
func resolvePath(root, raw, fallback string) string {
	target := strings.TrimSpace(raw)
	if target == "" {
		target = strings.TrimSpace(fallback)
	}
	switch {
	case target == "":
		return root
	case filepath.IsAbs(target):
		return filepath.Clean(target)
	}
	return filepath.Join(root, target)
}
