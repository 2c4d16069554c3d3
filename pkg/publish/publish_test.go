package publish

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/provide-io/animbundle/pkg/assetstore"
	"github.com/provide-io/animbundle/pkg/bundle"
	"github.com/provide-io/animbundle/pkg/checksum"
	animerrors "github.com/provide-io/animbundle/pkg/errors"
	"github.com/provide-io/animbundle/pkg/manifest"
	"github.com/provide-io/animbundle/pkg/target"
)

func stage(t *testing.T) manifest.Layout {
	t.Helper()
	store := assetstore.NewMemoryStore(assetstore.Descriptor{
		Name: "wave", Duration: 2, Loop: false, FrameRate: 60,
	})
	bundler := bundle.FuncBuilder(func(_ context.Context, req bundle.Request) error {
		return os.WriteFile(req.ArtifactPath(), []byte(req.Target.EngineTarget()), 0o644)
	})

	builder := manifest.NewBuilder(t.TempDir(), store, bundler)
	if _, err := builder.Build(context.Background(), "wave"); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	layout, err := builder.Layout("wave")
	if err != nil {
		t.Fatal(err)
	}
	return layout
}

func TestPublish(t *testing.T) {
	layout := stage(t)
	localBefore, err := os.ReadFile(layout.RecordPath())
	if err != nil {
		t.Fatal(err)
	}

	mock := &MockUploader{BaseURL: "https://assets.example.dev/"}
	logger := hclog.New(&hclog.LoggerOptions{Name: "publish-test", Level: hclog.Trace})

	remote, err := Publish(context.Background(), layout, mock, WithPrefix("anims/v1"), WithLogger(logger))
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	want := map[string]string{
		"Windows": "https://assets.example.dev/anims/v1/wave/Windows/wave",
		"Darwin":  "https://assets.example.dev/anims/v1/wave/Darwin/wave",
		"Linux":   "https://assets.example.dev/anims/v1/wave/Linux/wave",
	}
	for key, url := range want {
		if got, _ := remote.URLs.Get(key); got != url {
			t.Errorf("remote url for %s = %q, want %q", key, got, url)
		}
	}
	if remote.Name != "wave" || remote.FrameRate != 60 {
		t.Errorf("remote record = %+v", remote)
	}

	if len(mock.Uploaded) != 4 {
		t.Errorf("uploaded %d objects, want 4", len(mock.Uploaded))
	}
	if _, ok := mock.Uploaded["anims/v1/wave/record.json"]; !ok {
		t.Error("remote record not uploaded")
	}
	for key, metadata := range mock.Metadata {
		if len(metadata["sha256"]) != 64 {
			t.Errorf("metadata for %s = %v, want sha256 hex", key, metadata)
		}
	}

	localAfter, err := os.ReadFile(layout.RecordPath())
	if err != nil {
		t.Fatal(err)
	}
	if string(localBefore) != string(localAfter) {
		t.Error("local record.json modified by publish")
	}

	remoteData, err := os.ReadFile(filepath.Join(layout.AssetDir(), RemoteRecordFile))
	if err != nil {
		t.Fatalf("remote record not written: %v", err)
	}
	parsed, err := manifest.ParseRecord(remoteData)
	if err != nil {
		t.Fatalf("remote record does not parse: %v", err)
	}
	if parsed.URLs.Entries()[0].Key != "Windows" {
		t.Errorf("remote record order = %+v", parsed.URLs.Entries())
	}
}

func TestPublishChecksumAlgorithm(t *testing.T) {
	layout := stage(t)
	mock := &MockUploader{}

	if _, err := Publish(context.Background(), layout, mock, WithChecksum(checksum.Blake2b)); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	for key, local := range mock.Uploaded {
		want, err := checksum.File(local, checksum.Blake2b)
		if err != nil {
			t.Fatal(err)
		}
		got := mock.Metadata[key]
		if len(got) != 1 || got["blake2b"] != checksum.Hex(want) {
			t.Errorf("metadata for %s = %v, want blake2b %s", key, got, checksum.Hex(want))
		}
	}
}

func TestObjectMetadataDetectsChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wave")
	if err := os.WriteFile(path, []byte("StandaloneLinux64"), 0o644); err != nil {
		t.Fatal(err)
	}
	sum, err := checksum.File(path, checksum.SHA512)
	if err != nil {
		t.Fatal(err)
	}

	metadata, err := objectMetadata(path, sum)
	if err != nil {
		t.Fatalf("objectMetadata failed: %v", err)
	}
	if metadata["sha512"] != checksum.Hex(sum) {
		t.Errorf("metadata = %v", metadata)
	}

	if err := os.WriteFile(path, []byte("rebuilt"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := objectMetadata(path, sum); !errors.Is(err, animerrors.ErrChecksumMismatch) {
		t.Errorf("error = %v, want ErrChecksumMismatch", err)
	}

	mock := &MockUploader{}
	if _, err := mock.Upload(context.Background(), path, "wave/Linux/wave", sum); err == nil {
		t.Error("mock uploaded a file that no longer matches its checksum")
	}
	if _, err := objectMetadata(path, "md5:abcd"); err == nil {
		t.Error("unknown algorithm accepted")
	}
}

func TestPublishUploadFailure(t *testing.T) {
	layout := stage(t)
	failure := errors.New("bucket does not exist")
	mock := &MockUploader{FailKey: "wave/Darwin/wave", Err: failure}

	_, err := Publish(context.Background(), layout, mock)
	if !errors.Is(err, failure) {
		t.Fatalf("error = %v, want upload failure", err)
	}
	if !strings.Contains(err.Error(), "Darwin") {
		t.Errorf("error %q does not name the target", err)
	}
	if _, err := os.Stat(filepath.Join(layout.AssetDir(), RemoteRecordFile)); !os.IsNotExist(err) {
		t.Error("remote record written after a failed upload")
	}
}

func TestPublishRequiresStagedArtifacts(t *testing.T) {
	layout := stage(t)
	if err := os.Remove(layout.ArtifactPath(target.Windows)); err != nil {
		t.Fatal(err)
	}

	mock := &MockUploader{}
	if _, err := Publish(context.Background(), layout, mock); err == nil {
		t.Fatal("expected verification failure")
	}
	if len(mock.Uploaded) != 0 {
		t.Errorf("uploaded %d objects before verification passed", len(mock.Uploaded))
	}
}

func TestSettings(t *testing.T) {
	err := Settings{Bucket: "b"}.Validate()
	if err == nil || !strings.Contains(err.Error(), "endpoint") || !strings.Contains(err.Error(), "public_url") {
		t.Errorf("Validate = %v", err)
	}

	_, err = NewUploader(context.Background(), Settings{
		Backend: "ftp", Endpoint: "localhost:9000", Bucket: "b", PublicURL: "http://cdn",
	})
	if err == nil {
		t.Error("unknown backend accepted")
	}

	up, err := NewUploader(context.Background(), Settings{
		Endpoint: "http://localhost:9000", Bucket: "b", PublicURL: "http://cdn",
	})
	if err != nil {
		t.Fatalf("NewUploader failed: %v", err)
	}
	if _, ok := up.(*MinIOUploader); !ok {
		t.Errorf("default backend = %T, want *MinIOUploader", up)
	}
}

func TestSettingsValidateEndpoint(t *testing.T) {
	tests := []struct {
		name    string
		backend string
		wantErr bool
	}{
		{"default backend", "", true},
		{"minio", BackendMinIO, true},
		{"s3", BackendS3, false},
		{"s3 mixed case", "S3", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Settings{Backend: tt.backend, Bucket: "anims", PublicURL: "https://cdn"}.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate without endpoint = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewUploaderS3WithoutEndpoint(t *testing.T) {
	up, err := NewUploader(context.Background(), Settings{
		Backend:   BackendS3,
		Bucket:    "anims",
		Region:    "eu-west-1",
		AccessKey: "AKIA_TEST_ACCESS_KEY",
		SecretKey: "SECRET_TEST_KEY",
		PublicURL: "https://anims.s3.eu-west-1.amazonaws.com",
	})
	if err != nil {
		t.Fatalf("NewUploader failed: %v", err)
	}
	s3up, ok := up.(*S3Uploader)
	if !ok {
		t.Fatalf("backend = %T, want *S3Uploader", up)
	}
	if s3up.Client.Options().BaseEndpoint != nil {
		t.Errorf("BaseEndpoint = %q, want AWS default", *s3up.Client.Options().BaseEndpoint)
	}
}

func TestRemoteKey(t *testing.T) {
	if got := RemoteKey("", "wave", target.MacOS); got != "wave/Darwin/wave" {
		t.Errorf("RemoteKey = %q", got)
	}
	if got := RecordKey("p/", "wave"); got != "p/wave/record.json" {
		t.Errorf("RecordKey = %q", got)
	}
}
