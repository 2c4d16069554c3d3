package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/provide-io/animbundle/pkg/assetstore"
	"github.com/spf13/cobra"
)

func newCatalogCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage the bbolt asset database",
	}
	cmd.AddCommand(newCatalogImportCmd(opts), newCatalogListCmd(opts))
	return cmd
}

func newCatalogImportCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "import <catalog.yaml>",
		Short: "Import a YAML catalog into the asset database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.setup(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			contents, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read catalog: %w", err)
			}
			descriptors, err := assetstore.ParseYAMLCatalog(contents)
			if err != nil {
				return fmt.Errorf("catalog %s: %w", args[0], err)
			}

			store, err := s.openBolt(true)
			if err != nil {
				return err
			}

			if err := store.Import(descriptors); err != nil {
				return err
			}
			s.logger.Info("📥 Catalog imported", "catalog", args[0], "assets", len(descriptors))
			return nil
		},
	}
}

func newCatalogListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the assets in the asset database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.setup(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			store, err := s.openBolt(false)
			if err != nil {
				return err
			}

			names, err := store.Names()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tDURATION\tLOOP\tFRAMERATE")
			for _, name := range names {
				d, err := store.Lookup(cmd.Context(), name)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%s\t%g\t%t\t%g\n", d.Name, d.Duration, d.Loop, d.FrameRate)
			}
			return w.Flush()
		},
	}
}
