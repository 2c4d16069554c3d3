// Package permissions parses the file modes used for bundle output.
package permissions

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Defaults for staged bundle output, readable by the runtime that downloads it.
const (
	DefaultFilePerms os.FileMode = 0o644
	DefaultDirPerms  os.FileMode = 0o755
)

// ParseOctalString parses "755", "0755" or "0o755". Empty input yields
// fallback.
func ParseOctalString(s string, fallback os.FileMode) (os.FileMode, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback, nil
	}

	trimmed := strings.TrimPrefix(strings.TrimPrefix(s, "0o"), "0")
	if trimmed == "" {
		trimmed = "0"
	}

	val, err := strconv.ParseUint(trimmed, 8, 32)
	if err != nil {
		return fallback, fmt.Errorf("invalid permission string %q: %w", s, err)
	}
	if val > 0o777 {
		return fallback, fmt.Errorf("invalid permission string %q: only permission bits are allowed", s)
	}
	return os.FileMode(val), nil
}

// FormatOctal formats a mode's permission bits as "0755".
func FormatOctal(mode os.FileMode) string {
	return fmt.Sprintf("0%o", mode.Perm())
}

// IsTraversable reports whether the owner can enter a directory with mode.
func IsTraversable(mode os.FileMode) bool {
	return mode&0o100 != 0
}
