// Package publish uploads built bundles to object storage and writes a
// remote record whose URLs point at the uploaded copies.
package publish

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/provide-io/animbundle/pkg/checksum"
	animerrors "github.com/provide-io/animbundle/pkg/errors"
)

// Backends accepted by NewUploader.
const (
	BackendMinIO = "minio"
	BackendS3    = "s3"
)

// Uploader defines the interface for uploading files to a remote store.
// sum is the prefixed checksum of localPath ("sha256:..."), stored with the
// object. Upload returns the public URL of the stored object.
type Uploader interface {
	Upload(ctx context.Context, localPath, remoteKey, sum string) (string, error)
}

// Settings describes the object store.
type Settings struct {
	Backend   string `yaml:"backend"`
	Endpoint  string `yaml:"endpoint"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	PublicURL string `yaml:"public_url"`
	Prefix    string `yaml:"prefix"`
	UseSSL    bool   `yaml:"use_ssl"`
}

// Validate reports missing required settings.
func (s Settings) Validate() error {
	var missing []string
	// S3 falls back to the AWS endpoint for the region.
	if s.Endpoint == "" && !strings.EqualFold(s.Backend, BackendS3) {
		missing = append(missing, "endpoint")
	}
	if s.Bucket == "" {
		missing = append(missing, "bucket")
	}
	if s.PublicURL == "" {
		missing = append(missing, "public_url")
	}
	if len(missing) > 0 {
		return fmt.Errorf("publish settings missing: %s", strings.Join(missing, ", "))
	}
	return nil
}

// NewUploader builds the uploader selected by settings.Backend.
func NewUploader(ctx context.Context, settings Settings) (Uploader, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	switch strings.ToLower(settings.Backend) {
	case "", BackendMinIO:
		return NewMinIOUploader(settings)
	case BackendS3:
		return NewS3Uploader(ctx, settings)
	default:
		return nil, fmt.Errorf("unknown publish backend: %s", settings.Backend)
	}
}

// objectMetadata re-checks localPath against sum and returns the user
// metadata recording it, keyed by algorithm: {"sha256": "<hex>"}.
func objectMetadata(localPath, sum string) (map[string]string, error) {
	algo, value, err := checksum.Parse(sum)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(localPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", localPath, err)
	}
	defer f.Close()

	ok, err := checksum.Verify(f, sum)
	if err != nil {
		return nil, fmt.Errorf("failed to hash %s: %w", localPath, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", animerrors.ErrChecksumMismatch, localPath)
	}
	return map[string]string{algo.String(): strings.ToLower(value)}, nil
}

func contentType(localPath string) string {
	ct := mime.TypeByExtension(filepath.Ext(localPath))
	if ct == "" {
		ct = "application/octet-stream"
	}
	return ct
}

func publicURL(base, remoteKey string) string {
	return strings.TrimRight(base, "/") + "/" + remoteKey
}
