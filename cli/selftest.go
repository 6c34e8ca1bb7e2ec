package cli

import (
	"github.com/spf13/cobra"

	"github.com/compozy/normorder/engine/selftest"
	"github.com/compozy/normorder/pkg/logger"
)

// SelftestCmd runs the built-in scenario table.
func SelftestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "selftest",
		Short: "Run the built-in self-test",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSelftest(cmd)
		},
	}
}

func runSelftest(cmd *cobra.Command) error {
	ctx := cmd.Context()
	svc, cfg, err := newService(ctx)
	if err != nil {
		return err
	}
	report, err := selftest.Run(ctx, svc)
	if err != nil {
		return err
	}
	if err := newRenderer(cmd, cfg).report(report); err != nil {
		return err
	}
	logger.FromContext(ctx).Debug("self-test finished", "passed", report.Passed, "failed", report.Failed)
	if !report.OK() {
		return ErrSelftestFailed
	}
	return nil
}
