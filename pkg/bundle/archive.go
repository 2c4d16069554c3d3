package bundle

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/provide-io/animbundle/pkg/operations"
	"github.com/provide-io/animbundle/pkg/operations/archive"
	_ "github.com/provide-io/animbundle/pkg/operations/compress"
)

const (
	// DefaultSourceExt is the extension of animation clip sources.
	DefaultSourceExt = ".anim"

	// DefaultOperations is the chain applied to a clip source.
	DefaultOperations = "tar.gz"
)

// ArchiveBuilder packs <SourceDir>/<asset><ext> through an operation chain
// and writes the result as the artifact. The TAR entry is named
// <target key>/<asset><ext> so each platform artifact is distinct.
type ArchiveBuilder struct {
	sourceDir string
	sourceExt string
	chain     uint64 // packed operation IDs
	modTime   time.Time
	fileMode  os.FileMode
	logger    hclog.Logger
}

// ArchiveOption configures an ArchiveBuilder.
type ArchiveOption func(*ArchiveBuilder) error

// WithSourceExt sets the clip source extension (default ".anim").
func WithSourceExt(ext string) ArchiveOption {
	return func(b *ArchiveBuilder) error {
		b.sourceExt = ext
		return nil
	}
}

// WithOperations sets the operation chain, e.g. "tar.bz2" or "raw".
func WithOperations(spec string) ArchiveOption {
	return func(b *ArchiveBuilder) error {
		packed, err := operations.StringToOperations(spec)
		if err != nil {
			return err
		}
		b.chain = packed
		return nil
	}
}

// WithModTime sets the timestamp stored in TAR headers.
func WithModTime(t time.Time) ArchiveOption {
	return func(b *ArchiveBuilder) error {
		b.modTime = t.UTC()
		return nil
	}
}

// WithArtifactMode sets the permission bits of written artifacts.
func WithArtifactMode(mode os.FileMode) ArchiveOption {
	return func(b *ArchiveBuilder) error {
		b.fileMode = mode
		return nil
	}
}

// WithArchiveLogger sets the logger.
func WithArchiveLogger(logger hclog.Logger) ArchiveOption {
	return func(b *ArchiveBuilder) error {
		b.logger = logger
		return nil
	}
}

// NewArchiveBuilder creates a builder reading clip sources from sourceDir.
// Every operation in the chain must be implemented.
func NewArchiveBuilder(sourceDir string, opts ...ArchiveOption) (*ArchiveBuilder, error) {
	defaultChain, _ := operations.StringToOperations(DefaultOperations)
	b := &ArchiveBuilder{
		sourceDir: sourceDir,
		sourceExt: DefaultSourceExt,
		chain:     defaultChain,
		modTime:   SourceDateEpoch(),
		fileMode:  0o644,
		logger:    hclog.NewNullLogger(),
	}
	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, fmt.Errorf("invalid archive builder option: %w", err)
		}
	}

	if _, err := b.resolveChain("probe"); err != nil {
		return nil, err
	}
	return b, nil
}

// Chain returns the configured chain spelling.
func (b *ArchiveBuilder) Chain() string {
	return operations.OperationsToString(b.chain)
}

// SourcePath returns the clip source file for an asset.
func (b *ArchiveBuilder) SourcePath(asset string) string {
	return filepath.Join(b.sourceDir, asset+b.sourceExt)
}

func (b *ArchiveBuilder) resolveChain(entry string) ([]operations.Operation, error) {
	ids := operations.UnpackOperations(b.chain)
	ops := make([]operations.Operation, 0, len(ids))
	for _, id := range ids {
		if id == operations.OP_TAR {
			ops = append(ops, archive.NewTarOperation().WithEntry(entry, b.modTime))
			continue
		}
		op, err := operations.Get(id)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	return ops, nil
}

func (b *ArchiveBuilder) Build(ctx context.Context, req Request) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	src := b.SourcePath(req.Asset)
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("failed to read clip source: %w", err)
	}

	entry := req.Target.Key() + "/" + req.Asset + b.sourceExt
	ops, err := b.resolveChain(entry)
	if err != nil {
		return err
	}

	packed, err := operations.Apply(data, ops)
	if err != nil {
		return fmt.Errorf("failed to pack %s: %w", src, err)
	}

	out := req.ArtifactPath()
	if err := os.WriteFile(out, packed, b.fileMode); err != nil {
		return fmt.Errorf("failed to write artifact: %w", err)
	}

	b.logger.Debug("📦 Packed clip",
		"source", src,
		"artifact", out,
		"operations", b.Chain(),
		"packed_operations", fmt.Sprintf("0x%016x", b.chain),
		"source_size", len(data),
		"estimated_size", operations.EstimateChainSize(int64(len(data)), ops),
		"artifact_size", len(packed))
	return nil
}

// SourceDateEpoch returns the reproducible build time from SOURCE_DATE_EPOCH
// (Unix seconds or RFC 3339), falling back to the Unix epoch.
func SourceDateEpoch() time.Time {
	value := os.Getenv("SOURCE_DATE_EPOCH")
	if value == "" {
		return time.Unix(0, 0).UTC()
	}
	if secs, err := strconv.ParseInt(value, 10, 64); err == nil {
		return time.Unix(secs, 0).UTC()
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC()
	}
	return time.Unix(0, 0).UTC()
}
