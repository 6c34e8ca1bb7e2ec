package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/compozy/normorder/pkg/config"
	"github.com/compozy/normorder/pkg/version"
)

// VersionCmd prints build information.
func VersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := version.Get()
			r := newRenderer(cmd, config.FromContext(cmd.Context()))
			if r.structured() {
				return r.encode(info)
			}
			_, err := fmt.Fprintln(r.out, info.String())
			return err
		},
	}
}
