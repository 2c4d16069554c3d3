// Package bundle defines the Bundle Builder collaborator that turns one
// asset into one platform-specific artifact, and the builders shipped with
// animbundle.
package bundle

import (
	"context"
	"path/filepath"

	"github.com/provide-io/animbundle/pkg/target"
)

// Request asks for the bundle of Asset for Target to be deposited in DestDir.
type Request struct {
	Asset   string
	Target  target.Target
	DestDir string
}

// ArtifactPath is where a builder must leave the artifact: DestDir/Asset.
func (r Request) ArtifactPath() string {
	return filepath.Join(r.DestDir, r.Asset)
}

// Builder produces exactly one artifact per call, synchronously.
// Re-running a request overwrites the artifact.
type Builder interface {
	Build(ctx context.Context, req Request) error
}

// FuncBuilder adapts a function to the Builder interface.
type FuncBuilder func(ctx context.Context, req Request) error

func (f FuncBuilder) Build(ctx context.Context, req Request) error {
	return f(ctx, req)
}
