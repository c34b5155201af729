package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"flymake/internal/app"
)

type runOptions struct {
	Path       string
	Rebuild    bool
	Debug      bool
	DebugLevel int
	DryRun     bool
}

func newRunCommand() *cobra.Command {
	opts := runOptions{Path: "."}
	cmd := &cobra.Command{
		Use:                "run [target] [-- args...]",
		Short:              "Build and run a source-program or tool target",
		Args:               cobra.ArbitraryArgs,
		DisableFlagParsing: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			target, passthrough := splitPassthrough(cmd, args)
			return runRun(cmd.Context(), cmd, opts, target, passthrough)
		},
	}
	cmd.Flags().StringVar(&opts.Path, "path", ".", "Project directory")
	cmd.Flags().BoolVarP(&opts.Rebuild, "rebuild", "B", false, "Force rebuild before running")
	cmd.Flags().BoolVarP(&opts.Debug, "debug", "D", false, "Build with debug flags")
	cmd.Flags().IntVar(&opts.DebugLevel, "debug-level", 1, "Debug level substituted into -DDEBUG=N")
	cmd.Flags().BoolVarP(&opts.DryRun, "dry-run", "n", false, "Print commands without executing them")
	_ = viper.BindPFlag("path", cmd.Flags().Lookup("path"))
	return cmd
}

// splitPassthrough separates the target argument from any arguments
// following a literal "--", which are forwarded to the built program
// unmodified. cmd.ArgsLenAtDash reports how many args preceded the
// dash (-1 if none was given), since cobra strips the "--" token
// itself from args.
func splitPassthrough(cmd *cobra.Command, args []string) (target string, passthrough []string) {
	dash := cmd.ArgsLenAtDash()
	if dash < 0 {
		if len(args) == 0 {
			return "", nil
		}
		return args[0], args[1:]
	}
	if dash == 0 {
		return "", args
	}
	return args[0], args[dash:]
}

func runRun(ctx context.Context, cmd *cobra.Command, opts runOptions, target string, passthrough []string) error {
	service := newAppService()
	result, err := service.Run(ctx, app.RunRequest{
		Path:         resolveString(cmd, opts.Path, "path", "path"),
		Target:       target,
		Args:         passthrough,
		ForceRebuild: resolveBool(cmd, opts.Rebuild, "rebuild", "rebuild"),
		Debug:        resolveBool(cmd, opts.Debug, "debug", "debug"),
		DebugLevel:   opts.DebugLevel,
		DryRun:       opts.DryRun,
	})
	if err != nil {
		return err
	}
	if result.ExitCode != 0 {
		os.Exit(result.ExitCode)
	}
	return nil
}
