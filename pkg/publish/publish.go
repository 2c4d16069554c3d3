package publish

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/hashicorp/go-hclog"
	"github.com/provide-io/animbundle/pkg/checksum"
	"github.com/provide-io/animbundle/pkg/manifest"
	"github.com/provide-io/animbundle/pkg/target"
)

// RemoteRecordFile is written next to record.json and holds the public URLs.
const RemoteRecordFile = "record.remote.json"

// Option configures Publish.
type Option func(*publisher)

type publisher struct {
	prefix  string
	targets []target.Target
	algo    checksum.Algorithm
	logger  hclog.Logger
}

// WithPrefix places every object under prefix.
func WithPrefix(prefix string) Option {
	return func(p *publisher) {
		p.prefix = prefix
	}
}

// WithTargets limits publishing to the given targets.
func WithTargets(targets ...target.Target) Option {
	return func(p *publisher) {
		p.targets = target.Sort(targets)
	}
}

// WithChecksum sets the algorithm recorded in object metadata.
func WithChecksum(algo checksum.Algorithm) Option {
	return func(p *publisher) {
		p.algo = algo
	}
}

// WithLogger sets the logger.
func WithLogger(logger hclog.Logger) Option {
	return func(p *publisher) {
		p.logger = logger
	}
}

// RemoteKey returns <prefix>/<asset>/<TargetDir>/<asset>.
func RemoteKey(prefix, asset string, t target.Target) string {
	return path.Join(prefix, asset, t.DirName(), asset)
}

// RecordKey returns <prefix>/<asset>/record.json.
func RecordKey(prefix, asset string) string {
	return path.Join(prefix, asset, manifest.RecordFile)
}

// Publish verifies the staged asset, uploads every artifact, then writes and
// uploads the remote record. The local record.json is left untouched.
func Publish(ctx context.Context, layout manifest.Layout, uploader Uploader, opts ...Option) (*manifest.Record, error) {
	p := &publisher{
		targets: target.All(),
		algo:    checksum.SHA256,
		logger:  hclog.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	logger := p.logger.With("asset", layout.Asset)

	report, err := manifest.Verify(layout, p.targets, p.algo, logger.Named("verify"))
	if err != nil {
		return nil, err
	}

	remote := &manifest.Record{
		Name:      report.Record.Name,
		Duration:  report.Record.Duration,
		Loop:      report.Record.Loop,
		FrameRate: report.Record.FrameRate,
	}

	for _, artifact := range report.Artifacts {
		key := RemoteKey(p.prefix, layout.Asset, artifact.Target)
		logger.Info("📤 Uploading bundle", "target", artifact.Target.Key(), "key", key, "size", artifact.Size)

		url, err := uploader.Upload(ctx, artifact.Path, key, artifact.Checksum)
		if err != nil {
			return nil, fmt.Errorf("failed to publish %s for %s: %w", layout.Asset, artifact.Target.Key(), err)
		}
		if err := remote.URLs.Add(artifact.Target.Key(), url); err != nil {
			return nil, err
		}
	}

	data, err := remote.Marshal()
	if err != nil {
		return nil, err
	}
	remotePath := filepath.Join(layout.AssetDir(), RemoteRecordFile)
	if err := os.WriteFile(remotePath, data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write remote record: %w", err)
	}

	recordKey := RecordKey(p.prefix, layout.Asset)
	recordURL, err := uploader.Upload(ctx, remotePath, recordKey, checksum.Calculate(data, p.algo))
	if err != nil {
		return nil, fmt.Errorf("failed to publish record for %s: %w", layout.Asset, err)
	}

	logger.Info("✅ Published", "record", recordURL, "targets", remote.URLs.Len())
	return remote, nil
}
