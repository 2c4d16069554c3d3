package manifest

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/provide-io/animbundle/pkg/checksum"
	animerrors "github.com/provide-io/animbundle/pkg/errors"
	"github.com/provide-io/animbundle/pkg/target"
)

// ArtifactReport describes one verified artifact.
type ArtifactReport struct {
	Target   target.Target
	Path     string
	URL      string
	Size     int64
	Checksum string
}

// Report is the outcome of Verify.
type Report struct {
	Record    *Record
	Artifacts []ArtifactReport
}

// Verify checks a staged asset against the layout contract: the record
// parses, names the asset, holds exactly one file URL per target pointing at
// the layout's artifact, and every artifact exists. All problems are
// reported together. Each artifact is fingerprinted with algo.
func Verify(layout Layout, targets []target.Target, algo checksum.Algorithm, logger hclog.Logger) (*Report, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	record, err := ReadRecord(layout.RecordPath())
	if err != nil {
		return nil, err
	}
	logger.Info("✓ Record parsed", "path", layout.RecordPath())

	report := &Report{Record: record}
	var problems []error

	if record.Name != layout.Asset {
		problems = append(problems, fmt.Errorf("%w: name %q does not match asset %q",
			animerrors.ErrInvalidRecord, record.Name, layout.Asset))
	}
	if record.URLs.Len() != len(targets) {
		problems = append(problems, fmt.Errorf("%w: %d urls, want %d",
			animerrors.ErrInvalidRecord, record.URLs.Len(), len(targets)))
	}

	for _, t := range targets {
		url, ok := record.URLs.Get(t.Key())
		if !ok {
			problems = append(problems, fmt.Errorf("%w: no url for %s", animerrors.ErrInvalidRecord, t.Key()))
			continue
		}
		if !strings.HasPrefix(url, FileURLPrefix) || strings.Contains(url, `\`) {
			problems = append(problems, fmt.Errorf("%w: malformed url for %s: %s", animerrors.ErrInvalidRecord, t.Key(), url))
		}
		if want := layout.ArtifactURL(t); url != want {
			problems = append(problems, fmt.Errorf("%w: url for %s is %s, want %s", animerrors.ErrInvalidRecord, t.Key(), url, want))
		}

		path := layout.ArtifactPath(t)
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			problems = append(problems, fmt.Errorf("%w: %s", animerrors.ErrArtifactMissing, path))
			logger.Error("Artifact verification failed", "target", t.Key(), "path", path)
			continue
		}

		sum, err := checksum.File(path, algo)
		if err != nil {
			problems = append(problems, err)
			continue
		}

		report.Artifacts = append(report.Artifacts, ArtifactReport{
			Target:   t,
			Path:     path,
			URL:      url,
			Size:     info.Size(),
			Checksum: sum,
		})
		logger.Info("✓ Artifact present", "target", t.Key(), "size", info.Size(), "checksum", sum)
	}

	if len(problems) > 0 {
		logger.Error("✗ Verification failed", "error_count", len(problems))
		return report, errors.Join(problems...)
	}

	logger.Info("✓ Verification passed", "asset", layout.Asset)
	return report, nil
}
