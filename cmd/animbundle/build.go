package main

import (
	"fmt"
	"os"

	"github.com/provide-io/animbundle/pkg/argresolve"
	"github.com/provide-io/animbundle/pkg/config"
	"github.com/spf13/cobra"
)

// EnvArgs carries host-style tokens when build runs without a positional name.
const EnvArgs = "ANIMBUNDLE_ARGS"

func newBuildCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build [asset-name]",
		Short: "Build every target bundle of one asset and write its record.json",
		Long: `Build every target bundle of one asset and write its record.json.

Without a positional name the asset is read from a -name=<asset> token in
$ANIMBUNDLE_ARGS.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := assetNameFromArgs(args)
			if err != nil {
				return err
			}

			s, err := opts.setup(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			return runBuild(cmd, s, name)
		},
	}
	opts.registerBuild(cmd)
	return cmd
}

func assetNameFromArgs(args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	tokens, err := argresolve.Split(os.Getenv(EnvArgs))
	if err != nil {
		return "", fmt.Errorf("invalid %s: %w", EnvArgs, err)
	}
	return argresolve.Resolve("name", tokens)
}

func runBuild(cmd *cobra.Command, s *session, name string) error {
	builder, err := s.newManifestBuilder()
	if err != nil {
		return err
	}

	record, err := builder.Build(cmd.Context(), name)
	if err != nil {
		return err
	}

	layout, err := builder.Layout(name)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), layout.RecordPath())
	for _, entry := range record.URLs.Entries() {
		fmt.Fprintf(cmd.OutOrStdout(), "  %-8s %s\n", entry.Key, entry.URL)
	}
	return nil
}

// newBatchCmd accepts the engine's batch-mode argument style, where every
// parameter is a single -key=value token among unrelated engine flags.
func newBatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "batch -name=<asset> [-outputRoot=<dir>] [-catalog=<file>] [-targets=<list>] [-logLevel=<level>]",
		Short: "Build from host-engine style -key=value tokens",
		Long: `Build from host-engine style -key=value tokens.

Flag parsing is disabled: unrelated tokens such as -batchmode or -quit are
ignored, and quoted tokens like "-name=idle" are accepted.`,
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, arg := range args {
				if arg == "--help" || arg == "-h" {
					return cmd.Help()
				}
			}

			name, err := argresolve.Resolve("name", args)
			if err != nil {
				return err
			}

			cfg, err := config.Load(argresolve.ResolveDefault("config", args, ""))
			if err != nil {
				return err
			}
			cfg.OutputRoot = argresolve.ResolveDefault("outputRoot", args, cfg.OutputRoot)
			cfg.Catalog = argresolve.ResolveDefault("catalog", args, cfg.Catalog)
			cfg.Targets = argresolve.ResolveDefault("targets", args, cfg.Targets)

			s, err := newSession(cfg, argresolve.ResolveDefault("logLevel", args, ""), nil)
			if err != nil {
				return err
			}
			defer s.Close()

			return runBuild(cmd, s, name)
		},
	}
}
