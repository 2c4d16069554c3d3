package main

import (
	"fmt"

	"github.com/provide-io/animbundle/pkg/manifest"
	"github.com/spf13/cobra"
)

func newVerifyCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <asset-name>",
		Short: "Check a staged asset's record.json against its artifacts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.setup(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			layout, err := manifest.NewLayout(s.cfg.OutputRoot, args[0])
			if err != nil {
				return err
			}

			report, err := manifest.Verify(layout, s.targets, s.checksum, s.logger.Named("verify"))
			if report != nil {
				for _, a := range report.Artifacts {
					fmt.Fprintf(cmd.OutOrStdout(), "%-8s %s %8d %s\n", a.Target.Key(), a.Checksum, a.Size, a.Path)
				}
			}
			return err
		},
	}
}
