package manifest

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/provide-io/animbundle/pkg/target"
)

// RecordFile is the record's file name inside the asset directory.
const RecordFile = "record.json"

// FileURLPrefix starts every artifact URL.
const FileURLPrefix = "file:///"

// Layout computes the on-disk locations for one asset:
//
//	<Root>/<Asset>/record.json
//	<Root>/<Asset>/<TargetDir>/<Asset>
type Layout struct {
	Root  string // absolute output root
	Asset string
}

// NewLayout resolves root to an absolute path.
func NewLayout(root, asset string) (Layout, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return Layout{}, fmt.Errorf("failed to resolve output root %s: %w", root, err)
	}
	return Layout{Root: abs, Asset: asset}, nil
}

// AssetDir returns <Root>/<Asset>.
func (l Layout) AssetDir() string {
	return filepath.Join(l.Root, l.Asset)
}

// TargetDir returns <Root>/<Asset>/<TargetDir>.
func (l Layout) TargetDir(t target.Target) string {
	return filepath.Join(l.AssetDir(), t.DirName())
}

// ArtifactPath returns <Root>/<Asset>/<TargetDir>/<Asset>.
func (l Layout) ArtifactPath(t target.Target) string {
	return filepath.Join(l.TargetDir(t), l.Asset)
}

// RecordPath returns <Root>/<Asset>/record.json.
func (l Layout) RecordPath() string {
	return filepath.Join(l.AssetDir(), RecordFile)
}

// ArtifactURL returns the file URL of a target's artifact.
func (l Layout) ArtifactURL(t target.Target) string {
	return FileURL(l.ArtifactPath(t))
}

// FileURL renders an absolute path as a file URL with forward slashes only,
// whatever the host separator: /out/a -> file:///out/a, C:\out\a -> file:///C:/out/a.
func FileURL(path string) string {
	slashed := strings.ReplaceAll(path, `\`, "/")
	return FileURLPrefix + strings.TrimLeft(slashed, "/")
}
