// Package workspace manages the directories bundles are staged in.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// EnsureDir creates path (and parents) if it does not exist yet.
// It reports whether the directory was created by this call.
func EnsureDir(path string, mode os.FileMode) (bool, error) {
	info, err := os.Stat(path)
	if err == nil {
		if !info.IsDir() {
			return false, fmt.Errorf("%s exists and is not a directory", path)
		}
		return false, nil
	}
	if !os.IsNotExist(err) {
		return false, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	if err := os.MkdirAll(path, mode); err != nil {
		return false, fmt.Errorf("failed to create directory %s: %w", path, err)
	}
	return true, nil
}

// EnsureTree ensures root and each of its relative subdirectories exist and
// returns the directories that had to be created.
func EnsureTree(root string, subdirs []string, mode os.FileMode) ([]string, error) {
	var created []string

	ok, err := EnsureDir(root, mode)
	if err != nil {
		return created, err
	}
	if ok {
		created = append(created, root)
	}

	for _, dir := range subdirs {
		path := filepath.Join(root, dir)
		ok, err := EnsureDir(path, mode)
		if err != nil {
			return created, err
		}
		if ok {
			created = append(created, path)
		}
	}
	return created, nil
}

// CacheRoot returns the per-user directory for animbundle state such as the
// default asset database.
func CacheRoot() string {
	if cacheDir := os.Getenv("ANIMBUNDLE_CACHE_DIR"); cacheDir != "" {
		return cacheDir
	}

	switch runtime.GOOS {
	case "darwin":
		if home := os.Getenv("HOME"); home != "" {
			return filepath.Join(home, "Library", "Caches", "animbundle")
		}
	case "linux":
		if xdgCache := os.Getenv("XDG_CACHE_HOME"); xdgCache != "" {
			return filepath.Join(xdgCache, "animbundle")
		}
		if home := os.Getenv("HOME"); home != "" {
			return filepath.Join(home, ".cache", "animbundle")
		}
	case "windows":
		if localAppData := os.Getenv("LOCALAPPDATA"); localAppData != "" {
			return filepath.Join(localAppData, "animbundle", "cache")
		}
	}

	return filepath.Join(os.TempDir(), "animbundle", "cache")
}
