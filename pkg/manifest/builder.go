package manifest

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/provide-io/animbundle/internal/workspace"
	"github.com/provide-io/animbundle/pkg/assetstore"
	"github.com/provide-io/animbundle/pkg/bundle"
	animerrors "github.com/provide-io/animbundle/pkg/errors"
	"github.com/provide-io/animbundle/pkg/target"
	"github.com/provide-io/animbundle/pkg/utils/permissions"
)

// Build states, logged as the pipeline advances.
const (
	StateStart              = "start"
	StateAssetResolved      = "asset_resolved"
	StateDirectoriesEnsured = "directories_ensured"
	StatePerTargetBuild     = "per_target_build"
	StateManifestWritten    = "manifest_written"
	StateDone               = "done"
	StateFailed             = "failed"
)

// Builder runs the bundle pipeline for one asset at a time:
// resolve the asset, ensure the layout, build one artifact per target, then
// write record.json. Any failure aborts the remaining steps and no record is
// written. Artifacts built before the failure stay on disk.
type Builder struct {
	root     string
	store    assetstore.Store
	bundler  bundle.Builder
	targets  []target.Target
	dirMode  os.FileMode
	fileMode os.FileMode
	logger   hclog.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithTargets restricts the build to the given targets. They are built and
// recorded in the fixed target order regardless of argument order.
func WithTargets(targets ...target.Target) Option {
	return func(b *Builder) {
		b.targets = target.Sort(targets)
	}
}

// WithLogger sets the logger.
func WithLogger(logger hclog.Logger) Option {
	return func(b *Builder) {
		b.logger = logger
	}
}

// WithDirMode sets the mode of created directories.
func WithDirMode(mode os.FileMode) Option {
	return func(b *Builder) {
		b.dirMode = mode
	}
}

// WithFileMode sets the mode of a newly created record.json.
func WithFileMode(mode os.FileMode) Option {
	return func(b *Builder) {
		b.fileMode = mode
	}
}

// NewBuilder creates a Builder staging output under root.
func NewBuilder(root string, store assetstore.Store, bundler bundle.Builder, opts ...Option) *Builder {
	b := &Builder{
		root:     root,
		store:    store,
		bundler:  bundler,
		targets:  target.All(),
		dirMode:  permissions.DefaultDirPerms,
		fileMode: permissions.DefaultFilePerms,
		logger:   hclog.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Targets returns the targets this builder produces, in build order.
func (b *Builder) Targets() []target.Target {
	return append([]target.Target(nil), b.targets...)
}

// Layout returns the output layout for an asset.
func (b *Builder) Layout(assetName string) (Layout, error) {
	return NewLayout(b.root, assetName)
}

// Build produces every target artifact for assetName and writes its record.
func (b *Builder) Build(ctx context.Context, assetName string) (*Record, error) {
	logger := b.logger.With("asset", assetName)
	logger.Debug("🎬 Build state", "state", StateStart)

	record, err := b.build(ctx, logger, assetName)
	if err != nil {
		logger.Debug("🎬 Build state", "state", StateFailed, "error", err)
		return nil, err
	}

	logger.Debug("🎬 Build state", "state", StateDone)
	return record, nil
}

func (b *Builder) build(ctx context.Context, logger hclog.Logger, assetName string) (*Record, error) {
	if len(b.targets) == 0 {
		return nil, fmt.Errorf("%w: no targets configured", animerrors.ErrInvalidTarget)
	}
	for _, t := range b.targets {
		if !t.Valid() {
			return nil, fmt.Errorf("%w: %d", animerrors.ErrInvalidTarget, int(t))
		}
	}
	if err := assetstore.ValidateName(assetName); err != nil {
		return nil, err
	}

	// Resolve asset. Nothing touches the filesystem until this succeeds.
	desc, err := b.store.Lookup(ctx, assetName)
	if err != nil {
		return nil, err
	}
	if desc.Name == "" {
		desc.Name = assetName
	}
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	logger.Debug("🎬 Build state", "state", StateAssetResolved,
		"duration", desc.Duration, "loop", desc.Loop, "framerate", desc.FrameRate)

	layout, err := b.Layout(assetName)
	if err != nil {
		return nil, err
	}

	// Ensure directories.
	dirs := make([]string, len(b.targets))
	for i, t := range b.targets {
		dirs[i] = t.DirName()
	}
	created, err := workspace.EnsureTree(layout.AssetDir(), dirs, b.dirMode)
	if err != nil {
		return nil, err
	}
	logger.Debug("🎬 Build state", "state", StateDirectoriesEnsured,
		"asset_dir", layout.AssetDir(), "created", len(created))

	record := &Record{
		Name:      desc.Name,
		Duration:  desc.Duration,
		Loop:      desc.Loop,
		FrameRate: desc.FrameRate,
	}

	// Build each target in order.
	for _, t := range b.targets {
		if err := ctx.Err(); err != nil {
			return nil, &animerrors.BuildError{Asset: assetName, Target: t, Err: err}
		}

		req := bundle.Request{Asset: assetName, Target: t, DestDir: layout.TargetDir(t)}
		logger.Info("🏗️ Building bundle", "target", t.Key(), "dest", req.DestDir)
		if err := b.bundler.Build(ctx, req); err != nil {
			logger.Error("❌ Bundle build failed", "target", t.Key(), "error", err)
			return nil, &animerrors.BuildError{Asset: assetName, Target: t, Err: err}
		}

		url := layout.ArtifactURL(t)
		if err := record.URLs.Add(t.Key(), url); err != nil {
			return nil, fmt.Errorf("%w: %v", animerrors.ErrInvalidTarget, err)
		}
		logger.Debug("🎬 Build state", "state", StatePerTargetBuild, "target", t.Key(), "url", url)
	}

	// Serialize and write.
	data, err := record.Marshal()
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(layout.RecordPath(), data, b.fileMode); err != nil {
		return nil, fmt.Errorf("failed to write record: %w", err)
	}
	logger.Debug("🎬 Build state", "state", StateManifestWritten, "path", layout.RecordPath(), "size", len(data))

	logger.Info("✅ Bundles built",
		"record", layout.RecordPath(),
		"targets", record.URLs.Len())
	return record, nil
}
