// Package assetstore resolves animation asset metadata by name.
//
// The Store interface is what the manifest builder depends on; MemoryStore,
// YAMLCatalog and BoltStore are the implementations shipped with the tool.
package assetstore

import (
	"context"
	"fmt"
	"math"
	"strings"

	animerrors "github.com/provide-io/animbundle/pkg/errors"
)

// Descriptor is the metadata of one animation clip.
type Descriptor struct {
	Name      string  `json:"name" yaml:"name"`
	Duration  float64 `json:"duration" yaml:"duration"` // seconds
	Loop      bool    `json:"loop" yaml:"loop"`
	FrameRate float64 `json:"framerate" yaml:"framerate"`
}

// Store looks up descriptors. Lookup returns an error matching
// errors.ErrAssetNotFound when the name is unknown.
type Store interface {
	Lookup(ctx context.Context, name string) (Descriptor, error)
}

// Validate checks the descriptor can be written to a record.
func (d Descriptor) Validate() error {
	if err := ValidateName(d.Name); err != nil {
		return err
	}
	if math.IsNaN(d.Duration) || math.IsInf(d.Duration, 0) || d.Duration < 0 {
		return fmt.Errorf("%w: %q has invalid duration %v", animerrors.ErrInvalidAsset, d.Name, d.Duration)
	}
	if math.IsNaN(d.FrameRate) || math.IsInf(d.FrameRate, 0) || d.FrameRate <= 0 {
		return fmt.Errorf("%w: %q has invalid frame rate %v", animerrors.ErrInvalidAsset, d.Name, d.FrameRate)
	}
	return nil
}

// ValidateName rejects names that cannot be used as a single path segment.
func ValidateName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: empty asset name", animerrors.ErrInvalidAsset)
	case name == "." || name == "..":
		return fmt.Errorf("%w: asset name %q", animerrors.ErrInvalidAsset, name)
	case strings.ContainsAny(name, `/\`):
		return fmt.Errorf("%w: asset name %q contains a path separator", animerrors.ErrInvalidAsset, name)
	}
	return nil
}

func notFound(name string) error {
	return fmt.Errorf("%w: %q", animerrors.ErrAssetNotFound, name)
}
