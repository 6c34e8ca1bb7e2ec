package cli

import (
	"github.com/spf13/cobra"

	"github.com/compozy/normorder/engine/rewrite"
	"github.com/compozy/normorder/pkg/logger"
	"github.com/compozy/normorder/pkg/notation"
)

// StepCmd traces the rewrite sequence of an expression one step at a time.
func StepCmd() *cobra.Command {
	var once bool
	cmd := &cobra.Command{
		Use:   "step <expr>",
		Short: "Print every rewrite step of the normal ordering",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStep(cmd, args[0], once)
		},
	}
	cmd.Flags().BoolVar(&once, "once", false, "Stop after the first rewrite step")
	return cmd
}

func runStep(cmd *cobra.Command, input string, once bool) error {
	ctx := cmd.Context()
	svc, cfg, err := newService(ctx)
	if err != nil {
		return err
	}
	expr, err := notation.Parse(input)
	if err != nil {
		return err
	}
	var events []rewrite.Event
	res, err := svc.Trace(ctx, expr, func(e rewrite.Event) error {
		events = append(events, e)
		if once {
			return rewrite.ErrStop
		}
		return nil
	})
	if err != nil {
		return err
	}
	logger.FromContext(ctx).Debug("trace finished", "run_id", res.RunID, "steps", res.Stats.Steps)
	return newRenderer(cmd, cfg).trace(res, events)
}
