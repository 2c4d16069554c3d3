package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/provide-io/animbundle/pkg/checksum"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "animbundle.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv(EnvConfig, "")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.OutputRoot != DefaultOutputRoot {
		t.Errorf("OutputRoot = %q, want %q", cfg.OutputRoot, DefaultOutputRoot)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
	dirMode, _ := cfg.DirPerm()
	if dirMode != 0o755 {
		t.Errorf("DirPerm = %o, want 755", dirMode)
	}
}

func TestLoadPrecedence(t *testing.T) {
	path := writeConfig(t, `
output_root: /srv/bundles
catalog: clips.yaml
operations: tar.bz2
file_mode: "0600"
checksum: sha512
publish:
  endpoint: minio.local:9000
  bucket: anims
  public_url: https://cdn.local
  use_ssl: false
`)
	t.Setenv("ANIMBUNDLE_CATALOG", "override.yaml")
	t.Setenv("ANIMBUNDLE_PUBLISH_SECRET_KEY", "s3cr3t")
	t.Setenv("ANIMBUNDLE_CHECKSUM", "blake2b")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.OutputRoot != "/srv/bundles" {
		t.Errorf("OutputRoot = %q, want file value", cfg.OutputRoot)
	}
	if cfg.Catalog != "override.yaml" {
		t.Errorf("Catalog = %q, want env override", cfg.Catalog)
	}
	if cfg.Operations != "tar.bz2" {
		t.Errorf("Operations = %q", cfg.Operations)
	}
	if cfg.Publish.Bucket != "anims" || cfg.Publish.UseSSL || cfg.Publish.SecretKey != "s3cr3t" {
		t.Errorf("Publish = %+v", cfg.Publish)
	}
	if cfg.Publish.Region != "us-east-1" {
		t.Errorf("Region = %q, want default kept", cfg.Publish.Region)
	}
	algo, err := cfg.ChecksumAlgorithm()
	if err != nil || algo != checksum.Blake2b {
		t.Errorf("ChecksumAlgorithm = %v, %v, want env override blake2b", algo, err)
	}
	fileMode, err := cfg.FilePerm()
	if err != nil || fileMode != 0o600 {
		t.Errorf("FilePerm = %o, %v", fileMode, err)
	}
}

func TestLoadFromEnvPath(t *testing.T) {
	t.Setenv(EnvConfig, writeConfig(t, "builder: command\ncommand: unity -name={asset}\n"))

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Builder != BuilderCommand || cfg.Command != "unity -name={asset}" {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name     string
		contents string
	}{
		{"unknown key", "output_rot: x\n"},
		{"bad yaml", "output_root: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.contents)); err == nil {
				t.Error("expected error")
			}
		})
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing file accepted")
	}

	t.Setenv("ANIMBUNDLE_PUBLISH_USE_SSL", "maybe")
	if _, err := Load(""); err == nil {
		t.Error("invalid boolean accepted")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"store", func(c *Config) { c.Store = "sql" }, "unknown store"},
		{"builder", func(c *Config) { c.Builder = "make" }, "unknown builder"},
		{"command missing", func(c *Config) { c.Builder = BuilderCommand }, "command template"},
		{"dir mode not traversable", func(c *Config) { c.DirMode = "0644" }, "owner enter"},
		{"dir mode", func(c *Config) { c.DirMode = "1777" }, "permission"},
		{"file mode", func(c *Config) { c.FileMode = "rw" }, "permission"},
		{"checksum", func(c *Config) { c.Checksum = "md5" }, "unknown checksum algorithm"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Validate = %v, want error containing %q", err, tt.want)
			}
		})
	}
}
