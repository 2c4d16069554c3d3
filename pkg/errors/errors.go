package errors

import (
	"errors"
	"fmt"

	"github.com/provide-io/animbundle/pkg/target"
)

var (
	// Invocation errors 🧭
	ErrArgumentNotFound = errors.New("❌ required argument not found")

	// Asset errors 🎞️
	ErrAssetNotFound = errors.New("❌ asset not found")
	ErrInvalidAsset  = errors.New("❌ invalid asset descriptor")

	// Build errors 🏗️
	ErrBuildFailed   = errors.New("❌ bundle build failed")
	ErrInvalidTarget = errors.New("❌ invalid build target")

	// Record errors 📜
	ErrInvalidRecord   = errors.New("❌ invalid bundle record")
	ErrArtifactMissing = errors.New("❌ bundle artifact missing")

	// Publish errors 📤
	ErrChecksumMismatch = errors.New("❌ artifact changed since verification")
)

// BuildError reports which target's bundle build failed.
// It matches both ErrBuildFailed and the underlying cause.
type BuildError struct {
	Asset  string
	Target target.Target
	Err    error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("%v: asset %q, target %s: %v", ErrBuildFailed, e.Asset, e.Target.Key(), e.Err)
}

func (e *BuildError) Unwrap() []error {
	return []error{ErrBuildFailed, e.Err}
}
