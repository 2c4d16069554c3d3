package main

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"github.com/provide-io/animbundle/internal/workspace"
	"github.com/provide-io/animbundle/pkg/assetstore"
	"github.com/provide-io/animbundle/pkg/bundle"
	"github.com/provide-io/animbundle/pkg/checksum"
	"github.com/provide-io/animbundle/pkg/config"
	animerrors "github.com/provide-io/animbundle/pkg/errors"
	"github.com/provide-io/animbundle/pkg/logging"
	"github.com/provide-io/animbundle/pkg/manifest"
	"github.com/provide-io/animbundle/pkg/target"
	"github.com/spf13/cobra"
)

const defaultDBName = "assets.db"

// options holds flag values shared by the subcommands.
type options struct {
	configPath string
	logLevel   string
	outputRoot string
	catalog    string
	store      string
	db         string
	targets    string

	builder    string
	sourceDir  string
	sourceExt  string
	operations string
	command    string
}

func (o *options) registerCommon(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.StringVar(&o.configPath, "config", "", "Path to config YAML (defaults to $ANIMBUNDLE_CONFIG)")
	flags.StringVar(&o.logLevel, "log-level", "", "Log level (trace, debug, info, warn, error, json[:level])")
	flags.StringVarP(&o.outputRoot, "output-root", "o", "", "Output root for staged bundles")
	flags.StringVarP(&o.catalog, "catalog", "c", "", "Path to the YAML animation catalog")
	flags.StringVar(&o.store, "store", "", "Asset store (yaml, bolt)")
	flags.StringVar(&o.db, "db", "", "Path to the bbolt asset database (default: assets.db in the cache dir)")
	flags.StringVar(&o.targets, "targets", "", "Comma-separated targets (default: windows,macos,linux)")
}

func (o *options) registerBuild(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&o.builder, "builder", "", "Bundle builder (archive, command)")
	flags.StringVar(&o.sourceDir, "source-dir", "", "Directory holding <asset><ext> clip sources")
	flags.StringVar(&o.sourceExt, "source-ext", "", "Clip source extension")
	flags.StringVar(&o.operations, "operations", "", "Archive operation chain, e.g. tar.gz, tar.bz2, raw")
	flags.StringVar(&o.command, "command", "", "Command template for the command builder")
}

// apply copies set flags over the loaded config.
func (o *options) apply(cmd *cobra.Command, cfg *config.Config) {
	set := func(name string, dst *string, value string) {
		if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
			*dst = value
		}
	}
	set("output-root", &cfg.OutputRoot, o.outputRoot)
	set("catalog", &cfg.Catalog, o.catalog)
	set("store", &cfg.Store, o.store)
	set("db", &cfg.DB, o.db)
	set("targets", &cfg.Targets, o.targets)
	set("builder", &cfg.Builder, o.builder)
	set("source-dir", &cfg.SourceDir, o.sourceDir)
	set("source-ext", &cfg.SourceExt, o.sourceExt)
	set("operations", &cfg.Operations, o.operations)
	set("command", &cfg.Command, o.command)
}

// session is the per-invocation state shared by the subcommands.
type session struct {
	cfg      *config.Config
	logger   hclog.Logger
	targets  []target.Target
	checksum checksum.Algorithm
	closers  []func() error
}

func newSession(cfg *config.Config, cliLevel string, errOut io.Writer) (*session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	targets, err := target.ParseList(cfg.Targets)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", animerrors.ErrInvalidTarget, err)
	}

	algo, err := cfg.ChecksumAlgorithm()
	if err != nil {
		return nil, err
	}

	s := &session{cfg: cfg, targets: targets, checksum: algo}

	output := errOut
	if output == nil {
		out, closeFn, err := logging.OpenOutput()
		if err != nil {
			return nil, err
		}
		output = out
		s.closers = append(s.closers, closeFn)
	}

	level, source := logging.ResolveLevel(cliLevel, cfg.LogLevel)
	s.logger = logging.NewLogger("animbundle", level, output).With("run_id", uuid.NewString())
	s.logger.Debug("🔧 Log level resolved", "level", level, "source", source)

	return s, nil
}

func (s *session) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			s.logger.Warn("⚠️ Close failed", "error", err)
		}
	}
}

func (s *session) dbPath() string {
	if s.cfg.DB != "" {
		return s.cfg.DB
	}
	return filepath.Join(workspace.CacheRoot(), defaultDBName)
}

// openBolt opens the configured asset database, defaulting to
// <cache root>/assets.db. Only a writable open creates the cache directory
// and the database. The session closes it.
func (s *session) openBolt(writable bool) (*assetstore.BoltStore, error) {
	path := s.dbPath()

	var (
		store *assetstore.BoltStore
		err   error
	)
	if writable {
		dirMode, modeErr := s.cfg.DirPerm()
		if modeErr != nil {
			return nil, modeErr
		}
		if _, dirErr := workspace.EnsureDir(filepath.Dir(path), dirMode); dirErr != nil {
			return nil, dirErr
		}
		store, err = assetstore.OpenBoltStore(path)
	} else {
		store, err = assetstore.OpenBoltStoreReadOnly(path)
	}
	if err != nil {
		return nil, err
	}

	s.closers = append(s.closers, store.Close)
	s.logger.Debug("📚 Asset database opened", "db", path, "writable", writable)
	return store, nil
}

func (s *session) openStore() (assetstore.Store, error) {
	switch s.cfg.Store {
	case config.StoreBolt:
		return s.openBolt(false)
	default:
		catalog, err := assetstore.LoadYAMLCatalog(s.cfg.Catalog)
		if err != nil {
			return nil, err
		}
		s.logger.Debug("📚 Asset store opened", "store", s.cfg.Store, "catalog", catalog.Path(), "assets", len(catalog.Names()))
		return catalog, nil
	}
}

func (s *session) newBundler() (bundle.Builder, error) {
	fileMode, err := s.cfg.FilePerm()
	if err != nil {
		return nil, err
	}

	switch s.cfg.Builder {
	case config.BuilderCommand:
		return bundle.NewCommandBuilder(s.cfg.Command, s.logger.Named("command"))
	default:
		return bundle.NewArchiveBuilder(s.cfg.SourceDir,
			bundle.WithSourceExt(s.cfg.SourceExt),
			bundle.WithOperations(s.cfg.Operations),
			bundle.WithArtifactMode(fileMode),
			bundle.WithArchiveLogger(s.logger.Named("archive")),
		)
	}
}

func (s *session) newManifestBuilder() (*manifest.Builder, error) {
	store, err := s.openStore()
	if err != nil {
		return nil, err
	}
	bundler, err := s.newBundler()
	if err != nil {
		return nil, err
	}
	dirMode, err := s.cfg.DirPerm()
	if err != nil {
		return nil, err
	}
	fileMode, err := s.cfg.FilePerm()
	if err != nil {
		return nil, err
	}

	return manifest.NewBuilder(s.cfg.OutputRoot, store, bundler,
		manifest.WithTargets(s.targets...),
		manifest.WithDirMode(dirMode),
		manifest.WithFileMode(fileMode),
		manifest.WithLogger(s.logger),
	), nil
}

// setup loads config, applies flags and opens a session.
func (o *options) setup(cmd *cobra.Command) (*session, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	o.apply(cmd, cfg)
	return newSession(cfg, o.logLevel, nil)
}
