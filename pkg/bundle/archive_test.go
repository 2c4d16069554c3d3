package bundle

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/provide-io/animbundle/pkg/operations"
	"github.com/provide-io/animbundle/pkg/target"
)

func writeClip(t *testing.T, dir, name string, contents []byte) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name+DefaultSourceExt), contents, 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestArchiveBuilderBuild(t *testing.T) {
	sourceDir := t.TempDir()
	destDir := t.TempDir()
	clip := bytes.Repeat([]byte("curve:0.5;"), 100)
	writeClip(t, sourceDir, "walk", clip)

	builder, err := NewArchiveBuilder(sourceDir)
	if err != nil {
		t.Fatalf("NewArchiveBuilder failed: %v", err)
	}
	if builder.Chain() != "tar.gz" {
		t.Errorf("default chain = %q, want tar.gz", builder.Chain())
	}

	req := Request{Asset: "walk", Target: target.Linux, DestDir: destDir}
	if err := builder.Build(context.Background(), req); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	packed, err := os.ReadFile(filepath.Join(destDir, "walk"))
	if err != nil {
		t.Fatalf("artifact not written: %v", err)
	}

	ids, _ := operations.ParseChain("tar.gz")
	restored, err := operations.ReverseChain(packed, ids)
	if err != nil {
		t.Fatalf("artifact does not decode: %v", err)
	}
	if !bytes.Equal(restored, clip) {
		t.Error("decoded artifact differs from the clip source")
	}

	entries, err := os.ReadDir(destDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("destination holds %d files, want exactly 1", len(entries))
	}
}

func TestArchiveBuilderDeterministic(t *testing.T) {
	sourceDir := t.TempDir()
	writeClip(t, sourceDir, "idle", []byte("clip data"))

	builder, err := NewArchiveBuilder(sourceDir, WithOperations("tar.bz2"))
	if err != nil {
		t.Fatalf("NewArchiveBuilder failed: %v", err)
	}

	build := func() []byte {
		dest := t.TempDir()
		if err := builder.Build(context.Background(), Request{Asset: "idle", Target: target.Windows, DestDir: dest}); err != nil {
			t.Fatalf("Build failed: %v", err)
		}
		data, err := os.ReadFile(filepath.Join(dest, "idle"))
		if err != nil {
			t.Fatal(err)
		}
		return data
	}

	if !bytes.Equal(build(), build()) {
		t.Error("two builds of the same clip differ")
	}
}

func TestArchiveBuilderTargetsDiffer(t *testing.T) {
	sourceDir := t.TempDir()
	writeClip(t, sourceDir, "idle", []byte("clip data"))

	builder, err := NewArchiveBuilder(sourceDir, WithOperations("tar"))
	if err != nil {
		t.Fatalf("NewArchiveBuilder failed: %v", err)
	}

	outputs := map[target.Target][]byte{}
	for _, tgt := range target.All() {
		dest := t.TempDir()
		if err := builder.Build(context.Background(), Request{Asset: "idle", Target: tgt, DestDir: dest}); err != nil {
			t.Fatalf("Build(%s) failed: %v", tgt, err)
		}
		data, _ := os.ReadFile(filepath.Join(dest, "idle"))
		if !bytes.Contains(data, []byte(tgt.Key()+"/idle.anim")) {
			t.Errorf("%s artifact lacks its platform entry name", tgt)
		}
		outputs[tgt] = data
	}
	if bytes.Equal(outputs[target.Windows], outputs[target.Linux]) {
		t.Error("Windows and Linux artifacts are identical")
	}
}

func TestArchiveBuilderRawCopiesSource(t *testing.T) {
	sourceDir := t.TempDir()
	writeClip(t, sourceDir, "pose", []byte("raw clip"))

	builder, err := NewArchiveBuilder(sourceDir, WithOperations("raw"))
	if err != nil {
		t.Fatalf("NewArchiveBuilder failed: %v", err)
	}

	dest := t.TempDir()
	if err := builder.Build(context.Background(), Request{Asset: "pose", Target: target.MacOS, DestDir: dest}); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	data, _ := os.ReadFile(filepath.Join(dest, "pose"))
	if string(data) != "raw clip" {
		t.Errorf("raw artifact = %q", data)
	}
}

func TestArchiveBuilderChainSpelling(t *testing.T) {
	tests := []struct {
		spec string
		want string
	}{
		{"tar|bzip2", "tar.bz2"},
		{"tgz", "tar.gz"},
		{"gzip", "gzip"},
		{"raw", "raw"},
		{"", "raw"},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			builder, err := NewArchiveBuilder(t.TempDir(), WithOperations(tt.spec))
			if err != nil {
				t.Fatalf("NewArchiveBuilder(%q) failed: %v", tt.spec, err)
			}
			if got := builder.Chain(); got != tt.want {
				t.Errorf("Chain() = %q, want %q", got, tt.want)
			}
		})
	}

	long := strings.Repeat("gzip|", operations.MaxChainLength) + "gzip"
	if _, err := NewArchiveBuilder(t.TempDir(), WithOperations(long)); err == nil {
		t.Errorf("NewArchiveBuilder accepted %d operations", operations.MaxChainLength+1)
	}
}

func TestArchiveBuilderErrors(t *testing.T) {
	if _, err := NewArchiveBuilder(t.TempDir(), WithOperations("tar|xz")); err == nil {
		t.Error("NewArchiveBuilder accepted an unimplemented operation")
	}
	if _, err := NewArchiveBuilder(t.TempDir(), WithOperations("rar")); err == nil {
		t.Error("NewArchiveBuilder accepted an unknown chain")
	}

	builder, err := NewArchiveBuilder(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	err = builder.Build(context.Background(), Request{Asset: "missing", Target: target.Linux, DestDir: t.TempDir()})
	if err == nil {
		t.Error("Build succeeded without a clip source")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := builder.Build(ctx, Request{Asset: "missing", Target: target.Linux, DestDir: t.TempDir()}); err != context.Canceled {
		t.Errorf("Build with cancelled context = %v, want context.Canceled", err)
	}
}

func TestSourceDateEpoch(t *testing.T) {
	t.Setenv("SOURCE_DATE_EPOCH", "1700000000")
	if got := SourceDateEpoch().Unix(); got != 1700000000 {
		t.Errorf("SourceDateEpoch() = %d, want 1700000000", got)
	}

	t.Setenv("SOURCE_DATE_EPOCH", "2024-01-01T00:00:00Z")
	if got := SourceDateEpoch().Year(); got != 2024 {
		t.Errorf("SourceDateEpoch().Year() = %d, want 2024", got)
	}

	t.Setenv("SOURCE_DATE_EPOCH", "garbage")
	if got := SourceDateEpoch().Unix(); got != 0 {
		t.Errorf("SourceDateEpoch() = %d, want 0", got)
	}
}
