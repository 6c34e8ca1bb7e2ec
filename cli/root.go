package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/compozy/normorder/engine/ordering"
	"github.com/compozy/normorder/engine/selftest"
	"github.com/compozy/normorder/pkg/config"
	"github.com/compozy/normorder/pkg/logger"
)

const defaultConfigFile = "normorder.yaml"

func RootCmd() *cobra.Command {
	var runSelf bool
	root := &cobra.Command{
		Use:   "normorder <expr>",
		Short: "Normal-order products of creation and annihilation operators",
		Long: `normorder rewrites sums of operator products so that every constructor
stands left of every annihilator, adding a DiracDelta term for each contraction.`,
		Example: fmt.Sprintf("  normorder '%s'\n  normorder --format line -- '-adf[k].cdf[m]'", selftest.UsageExample),
		Args:    cobra.ArbitraryArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return SetupGlobalConfig(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return closeManager(cmd.Context())
		},
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if runSelf {
				return runSelftest(cmd)
			}
			if len(args) != 1 {
				printUsage(cmd)
				return nil
			}
			return runNormalize(cmd, args[0])
		},
	}

	root.Flags().BoolVar(&runSelf, "selftest", false, "Run the built-in self-test and exit")
	addGlobalFlags(root.PersistentFlags())

	root.AddCommand(
		StepCmd(),
		BatchCmd(),
		SelftestCmd(),
		ConfigCmd(),
		VersionCmd(),
	)

	return root
}

func addGlobalFlags(flags *pflag.FlagSet) {
	defaults := config.Default()

	flags.String("config", defaultConfigFile, "Path to the YAML configuration file")
	flags.String("env-file", ".env", "Path to a .env file loaded before configuration")

	flags.String("log-level", defaults.Runtime.LogLevel, "Log level (debug, info, warn, error, disabled)")
	flags.Bool("log-json", defaults.Runtime.LogJSON, "Emit logs as JSON")
	flags.Bool("log-source", defaults.Runtime.LogSource, "Include source locations in logs")

	flags.Int("max-steps", defaults.Engine.MaxSteps, "Maximum rewrite steps per term (0 = unbounded)")
	flags.Int("workers", defaults.Engine.Workers, "Terms normal-ordered concurrently")
	flags.Int("cache-size", defaults.Engine.CacheSize, "Results kept in the in-memory cache (0 = disabled)")

	flags.String("format", defaults.CLI.Format, "Output format ("+strings.Join(config.OutputFormats, ", ")+")")
	flags.Bool("no-color", defaults.CLI.NoColor, "Disable colored output")
}

// SetupGlobalConfig loads the .env file and the configuration sources for
// cmd, initializes the logger and stores both in the command context.
func SetupGlobalConfig(cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if _, err := loadEnvFile(cmd); err != nil {
		return err
	}
	configFile, err := cmd.Flags().GetString("config")
	if err != nil {
		return fmt.Errorf("failed to get config flag: %w", err)
	}

	sources := []config.Source{config.NewEnvProvider()}
	if configFile != "" {
		sources = append(sources, config.NewYAMLProvider(configFile))
	}
	cliFlags := make(map[string]any)
	extractCLIFlags(cmd, cliFlags)
	if len(cliFlags) > 0 {
		sources = append(sources, config.NewCLIProvider(cliFlags))
	}

	manager := config.NewManager(nil)
	cfg, err := manager.Load(ctx, sources...)
	if err != nil {
		_ = manager.Close(ctx)
		return err
	}

	log := logger.SetupLogger(cfg.Runtime.LogLevel, cfg.Runtime.LogJSON, cfg.Runtime.LogSource)
	log.Debug("configuration loaded", "config_file", configFile, "format", cfg.CLI.Format)

	ctx = config.ContextWithManager(ctx, manager)
	ctx = logger.ContextWithLogger(ctx, log)
	cmd.SetContext(ctx)
	return nil
}

func closeManager(ctx context.Context) error {
	if ctx == nil {
		return nil
	}
	if manager, ok := ctx.Value(config.ManagerCtxKey).(*config.Manager); ok {
		return manager.Close(ctx)
	}
	return nil
}

func printUsage(cmd *cobra.Command) {
	name := cmd.Root().Name()
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Usage: %s expr\n", name)
	fmt.Fprintln(out, "Example:")
	fmt.Fprintf(out, "%s %s\n", name, selftest.UsageExample)
}

// newService builds an ordering service from the context configuration.
func newService(ctx context.Context) (*ordering.Service, *config.Config, error) {
	cfg := config.FromContext(ctx)
	svc, err := ordering.NewService(cfg.Engine)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create ordering service: %w", err)
	}
	return svc, cfg, nil
}

func runNormalize(cmd *cobra.Command, input string) error {
	ctx := cmd.Context()
	svc, cfg, err := newService(ctx)
	if err != nil {
		return err
	}
	res, err := svc.NormalizeString(ctx, input)
	if err != nil {
		return err
	}
	return newRenderer(cmd, cfg).result(res)
}
