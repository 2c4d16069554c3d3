// Package config loads animbundle settings from defaults, an optional YAML
// file and the environment. CLI flags are applied on top by the caller.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/provide-io/animbundle/pkg/checksum"
	"github.com/provide-io/animbundle/pkg/publish"
	"github.com/provide-io/animbundle/pkg/utils/permissions"
	yaml "gopkg.in/yaml.v2"
)

// EnvConfig names the config file when --config is not given.
const EnvConfig = "ANIMBUNDLE_CONFIG"

// DefaultOutputRoot is where bundles are staged, relative to the working
// directory.
const DefaultOutputRoot = "Assets/AssetBundles"

// Store kinds.
const (
	StoreYAML = "yaml"
	StoreBolt = "bolt"
)

// Builder kinds.
const (
	BuilderArchive = "archive"
	BuilderCommand = "command"
)

// Config holds every setting a build run needs.
type Config struct {
	OutputRoot string `yaml:"output_root"`
	Catalog    string `yaml:"catalog"`
	Store      string `yaml:"store"`
	DB         string `yaml:"db"` // defaults to assets.db under the cache root
	SourceDir  string `yaml:"source_dir"`
	SourceExt  string `yaml:"source_ext"`
	Builder    string `yaml:"builder"`
	Operations string `yaml:"operations"`
	Command    string `yaml:"command"`
	Targets    string `yaml:"targets"`
	LogLevel   string `yaml:"log_level"`
	DirMode    string `yaml:"dir_mode"`
	FileMode   string `yaml:"file_mode"`
	Checksum   string `yaml:"checksum"`

	Publish publish.Settings `yaml:"publish"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		OutputRoot: DefaultOutputRoot,
		Catalog:    "animations.yaml",
		Store:      StoreYAML,
		SourceDir:  "Assets/Animations",
		SourceExt:  ".anim",
		Builder:    BuilderArchive,
		Operations: "tar.gz",
		DirMode:    permissions.FormatOctal(permissions.DefaultDirPerms),
		FileMode:   permissions.FormatOctal(permissions.DefaultFilePerms),
		Checksum:   checksum.SHA256.String(),
		Publish: publish.Settings{
			Backend: publish.BackendMinIO,
			Region:  "us-east-1",
			UseSSL:  true,
		},
	}
}

// Load applies, in order: defaults, the YAML file at path (or
// $ANIMBUNDLE_CONFIG when path is empty), then environment overrides.
// Callers apply flags and then call Validate.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if err := yaml.UnmarshalStrict(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	strs := map[string]*string{
		"ANIMBUNDLE_OUTPUT_ROOT":        &c.OutputRoot,
		"ANIMBUNDLE_CATALOG":            &c.Catalog,
		"ANIMBUNDLE_STORE":              &c.Store,
		"ANIMBUNDLE_DB":                 &c.DB,
		"ANIMBUNDLE_SOURCE_DIR":         &c.SourceDir,
		"ANIMBUNDLE_BUILDER":            &c.Builder,
		"ANIMBUNDLE_OPERATIONS":         &c.Operations,
		"ANIMBUNDLE_COMMAND":            &c.Command,
		"ANIMBUNDLE_TARGETS":            &c.Targets,
		"ANIMBUNDLE_DIR_MODE":           &c.DirMode,
		"ANIMBUNDLE_FILE_MODE":          &c.FileMode,
		"ANIMBUNDLE_CHECKSUM":           &c.Checksum,
		"ANIMBUNDLE_PUBLISH_BACKEND":    &c.Publish.Backend,
		"ANIMBUNDLE_PUBLISH_ENDPOINT":   &c.Publish.Endpoint,
		"ANIMBUNDLE_PUBLISH_BUCKET":     &c.Publish.Bucket,
		"ANIMBUNDLE_PUBLISH_REGION":     &c.Publish.Region,
		"ANIMBUNDLE_PUBLISH_URL":        &c.Publish.PublicURL,
		"ANIMBUNDLE_PUBLISH_PREFIX":     &c.Publish.Prefix,
		"ANIMBUNDLE_PUBLISH_ACCESS_KEY": &c.Publish.AccessKey,
		"ANIMBUNDLE_PUBLISH_SECRET_KEY": &c.Publish.SecretKey,
	}
	for key, dst := range strs {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	if v := os.Getenv("ANIMBUNDLE_PUBLISH_USE_SSL"); v != "" {
		switch strings.ToLower(v) {
		case "1", "true", "yes":
			c.Publish.UseSSL = true
		case "0", "false", "no":
			c.Publish.UseSSL = false
		default:
			return fmt.Errorf("invalid ANIMBUNDLE_PUBLISH_USE_SSL: %s", v)
		}
	}
	return nil
}

// Validate checks the enumerated settings and modes.
func (c *Config) Validate() error {
	switch c.Store {
	case StoreYAML, StoreBolt:
	default:
		return fmt.Errorf("unknown store %q (want %s or %s)", c.Store, StoreYAML, StoreBolt)
	}
	switch c.Builder {
	case BuilderArchive, BuilderCommand:
	default:
		return fmt.Errorf("unknown builder %q (want %s or %s)", c.Builder, BuilderArchive, BuilderCommand)
	}
	if c.Builder == BuilderCommand && c.Command == "" {
		return fmt.Errorf("builder %q requires a command template", BuilderCommand)
	}
	dirMode, err := c.DirPerm()
	if err != nil {
		return err
	}
	if !permissions.IsTraversable(dirMode) {
		return fmt.Errorf("dir_mode %s does not let the owner enter created directories", permissions.FormatOctal(dirMode))
	}
	if _, err := c.FilePerm(); err != nil {
		return err
	}
	if _, err := c.ChecksumAlgorithm(); err != nil {
		return err
	}
	return nil
}

// ChecksumAlgorithm returns the algorithm used to fingerprint artifacts.
func (c *Config) ChecksumAlgorithm() (checksum.Algorithm, error) {
	return checksum.ParseAlgorithm(c.Checksum)
}

// DirPerm returns the parsed directory mode.
func (c *Config) DirPerm() (os.FileMode, error) {
	return permissions.ParseOctalString(c.DirMode, permissions.DefaultDirPerms)
}

// FilePerm returns the parsed file mode.
func (c *Config) FilePerm() (os.FileMode, error) {
	return permissions.ParseOctalString(c.FileMode, permissions.DefaultFilePerms)
}
