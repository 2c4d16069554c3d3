// Package target defines the fixed set of platforms a bundle is built for.
package target

import (
	"fmt"
	"strings"
)

// Target is a supported runtime platform.
type Target int

const (
	Windows Target = iota
	MacOS
	Linux
)

type entry struct {
	key          string
	dir          string
	engineTarget string
}

// table is indexed by Target and never mutated.
var table = [...]entry{
	Windows: {key: "Windows", dir: "Windows", engineTarget: "StandaloneWindows64"},
	MacOS:   {key: "Darwin", dir: "Darwin", engineTarget: "StandaloneOSX"},
	Linux:   {key: "Linux", dir: "Linux", engineTarget: "StandaloneLinux64"},
}

// All returns every target in manifest order.
func All() []Target {
	return []Target{Windows, MacOS, Linux}
}

// Valid reports whether t is one of the compiled-in targets.
func (t Target) Valid() bool {
	return t >= 0 && int(t) < len(table)
}

// Key returns the manifest key ("Windows", "Darwin", "Linux").
func (t Target) Key() string {
	if !t.Valid() {
		return fmt.Sprintf("Target(%d)", int(t))
	}
	return table[t].key
}

// DirName returns the directory segment holding the target's artifact.
func (t Target) DirName() string {
	if !t.Valid() {
		return ""
	}
	return table[t].dir
}

// EngineTarget returns the host engine's name for the build target.
func (t Target) EngineTarget() string {
	if !t.Valid() {
		return ""
	}
	return table[t].engineTarget
}

func (t Target) String() string {
	return t.Key()
}

// Parse maps a manifest key, engine target name or common alias to a Target.
// Matching is case-insensitive.
func Parse(s string) (Target, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "windows", "win", "win64", "standalonewindows64":
		return Windows, nil
	case "darwin", "macos", "osx", "mac", "standaloneosx":
		return MacOS, nil
	case "linux", "linux64", "standalonelinux64":
		return Linux, nil
	}
	return 0, fmt.Errorf("unknown target %q", s)
}

// ParseList parses a comma-separated target list, e.g. "windows,linux".
// Empty input yields All(). Duplicates are rejected.
func ParseList(s string) ([]Target, error) {
	if strings.TrimSpace(s) == "" {
		return All(), nil
	}

	var targets []Target
	seen := make(map[Target]bool)
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		t, err := Parse(part)
		if err != nil {
			return nil, err
		}
		if seen[t] {
			return nil, fmt.Errorf("duplicate target %q", t.Key())
		}
		seen[t] = true
		targets = append(targets, t)
	}
	return Sort(targets), nil
}

// Sort returns targets ordered as in All().
func Sort(targets []Target) []Target {
	out := make([]Target, 0, len(targets))
	for _, t := range All() {
		for _, candidate := range targets {
			if candidate == t {
				out = append(out, t)
				break
			}
		}
	}
	return out
}
