package bundle

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/provide-io/animbundle/pkg/argresolve"
	animerrors "github.com/provide-io/animbundle/pkg/errors"
)

// Placeholders expanded in every token of a command template.
const (
	PlaceholderAsset        = "{asset}"
	PlaceholderTarget       = "{target}"
	PlaceholderEngineTarget = "{engine_target}"
	PlaceholderDest         = "{dest}"
	PlaceholderOutput       = "{output}"
)

// maxLoggedOutput caps the process output quoted in errors.
const maxLoggedOutput = 2048

// CommandBuilder delegates each build to an external process, typically the
// host engine in batch mode:
//
//	Engine -batchmode -quit -executeMethod Bundles.Build -name={asset} -buildTarget={engine_target} -out={dest}
type CommandBuilder struct {
	template []string
	env      []string
	logger   hclog.Logger
}

// NewCommandBuilder parses a command template with shell quoting rules.
func NewCommandBuilder(template string, logger hclog.Logger) (*CommandBuilder, error) {
	args, err := argresolve.Split(template)
	if err != nil {
		return nil, fmt.Errorf("invalid builder command: %w", err)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("invalid builder command: empty template")
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &CommandBuilder{template: args, logger: logger}, nil
}

// WithEnv returns a copy that adds KEY=VALUE pairs to the process environment.
func (b *CommandBuilder) WithEnv(env ...string) *CommandBuilder {
	c := *b
	c.env = append(append([]string{}, b.env...), env...)
	return &c
}

// Expand returns the argv for a request.
func (b *CommandBuilder) Expand(req Request) []string {
	r := strings.NewReplacer(
		PlaceholderAsset, req.Asset,
		PlaceholderTarget, req.Target.Key(),
		PlaceholderEngineTarget, req.Target.EngineTarget(),
		PlaceholderDest, req.DestDir,
		PlaceholderOutput, req.ArtifactPath(),
	)
	args := make([]string, len(b.template))
	for i, token := range b.template {
		args[i] = r.Replace(token)
	}
	return args
}

func (b *CommandBuilder) Build(ctx context.Context, req Request) error {
	args := b.Expand(req)
	b.logger.Debug("🚀 Running bundle command", "target", req.Target.Key(), "argv", args)

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	if len(b.env) > 0 {
		cmd.Env = append(os.Environ(), b.env...)
	}

	output, err := cmd.CombinedOutput()
	if len(output) > 0 {
		b.logger.Debug("📄 Bundle command output", "target", req.Target.Key(), "output", string(output))
	}
	if err != nil {
		return fmt.Errorf("%s: %w: %s", args[0], err, tail(output))
	}

	if _, err := os.Stat(req.ArtifactPath()); err != nil {
		return fmt.Errorf("%w: %s did not produce %s", animerrors.ErrArtifactMissing, args[0], req.ArtifactPath())
	}
	return nil
}

func tail(output []byte) string {
	s := strings.TrimSpace(string(output))
	if len(s) > maxLoggedOutput {
		s = "..." + s[len(s)-maxLoggedOutput:]
	}
	return s
}
