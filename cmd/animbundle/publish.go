package main

import (
	"fmt"

	"github.com/provide-io/animbundle/pkg/manifest"
	"github.com/provide-io/animbundle/pkg/publish"
	"github.com/spf13/cobra"
)

func newPublishCmd(opts *options) *cobra.Command {
	var dryRun bool
	var prefix string

	cmd := &cobra.Command{
		Use:   "publish <asset-name>",
		Short: "Upload a staged asset's bundles and remote record to object storage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.setup(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			if cmd.Flags().Changed("prefix") {
				s.cfg.Publish.Prefix = prefix
			}

			var uploader publish.Uploader
			if dryRun {
				uploader = &publish.MockUploader{BaseURL: s.cfg.Publish.PublicURL}
				s.logger.Info("🧪 Dry run, nothing is uploaded")
			} else {
				uploader, err = publish.NewUploader(cmd.Context(), s.cfg.Publish)
				if err != nil {
					return err
				}
			}

			layout, err := manifest.NewLayout(s.cfg.OutputRoot, args[0])
			if err != nil {
				return err
			}

			remote, err := publish.Publish(cmd.Context(), layout, uploader,
				publish.WithPrefix(s.cfg.Publish.Prefix),
				publish.WithTargets(s.targets...),
				publish.WithChecksum(s.checksum),
				publish.WithLogger(s.logger.Named("publish")),
			)
			if err != nil {
				return err
			}

			for _, entry := range remote.URLs.Entries() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-8s %s\n", entry.Key, entry.URL)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Resolve keys and write the remote record without uploading")
	cmd.Flags().StringVar(&prefix, "prefix", "", "Object key prefix")
	return cmd
}
