package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newProbeCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "probe",
		Short: "Check whether the relay can deliver",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(cmd.ErrOrStderr(), root.debug)

			p, err := root.profile(Profile{})
			if err != nil {
				return err
			}

			probe, err := newClient(p).Probe(cmd.Context())
			if err != nil {
				return err
			}

			to := "unset"
			if probe.To != nil {
				to = *probe.To
			}
			fmt.Fprintf(cmd.OutOrStdout(), "credential: %t\ndestination: %s\n", probe.HasKey, to)

			if !probe.HasKey || probe.To == nil {
				logger.Warn("relay is not fully configured")
			}
			return nil
		},
	}
}
