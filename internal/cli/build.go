package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"flymake/internal/app"
)

type buildOptions struct {
	Path       string
	Rebuild    bool
	All        bool
	Debug      bool
	DebugLevel int
	DryRun     bool
	NoWarnings bool
	Lib        bool
	RuleLib    bool
	RuleSrc    bool
	RuleTool   bool
	DebugState bool
}

func newBuildCommand() *cobra.Command {
	opts := buildOptions{Path: "."}
	cmd := &cobra.Command{
		Use:   "build [target]",
		Short: "Build the project or a specific folder/file target",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := ""
			if len(args) == 1 {
				target = args[0]
			}
			return runBuild(cmd.Context(), cmd, opts, target)
		},
	}
	bindBuildFlags(cmd, &opts)
	return cmd
}

func bindBuildFlags(cmd *cobra.Command, opts *buildOptions) {
	cmd.Flags().StringVar(&opts.Path, "path", ".", "Project directory")
	cmd.Flags().BoolVarP(&opts.Rebuild, "rebuild", "B", false, "Force rebuild, ignoring mtimes")
	cmd.Flags().BoolVar(&opts.All, "all", false, "Force rebuild including dependencies")
	cmd.Flags().BoolVarP(&opts.Debug, "debug", "D", false, "Build with debug flags")
	cmd.Flags().IntVar(&opts.DebugLevel, "debug-level", 1, "Debug level substituted into -DDEBUG=N")
	cmd.Flags().BoolVarP(&opts.DryRun, "dry-run", "n", false, "Print commands without executing them")
	cmd.Flags().BoolVarP(&opts.NoWarnings, "no-warnings", "w", false, "Disable compiler warning flags")
	cmd.Flags().BoolVar(&opts.Lib, "lib", false, "Treat target as a library folder")
	cmd.Flags().BoolVar(&opts.RuleLib, "rl", false, "Force library build rule")
	cmd.Flags().BoolVar(&opts.RuleSrc, "rs", false, "Force source-program build rule")
	cmd.Flags().BoolVar(&opts.RuleTool, "rt", false, "Force tool-folder build rule")
	cmd.Flags().BoolVar(&opts.DebugState, "debug-state", false, "Dump the resolved project state tree as YAML")
	_ = cmd.Flags().MarkHidden("debug-state")

	_ = viper.BindPFlag("path", cmd.Flags().Lookup("path"))
	_ = viper.BindPFlag("rebuild", cmd.Flags().Lookup("rebuild"))
	_ = viper.BindPFlag("debug", cmd.Flags().Lookup("debug"))
}

func runBuild(ctx context.Context, cmd *cobra.Command, opts buildOptions, target string) error {
	service := newAppService()

	forcedRule, err := app.ValidateForcedRuleArg(opts.Lib, opts.RuleLib, opts.RuleSrc, opts.RuleTool)
	if err != nil {
		return err
	}

	result, err := service.Build(ctx, app.BuildRequest{
		Path:                resolveString(cmd, opts.Path, "path", "path"),
		Target:              target,
		ForceRebuild:        resolveBool(cmd, opts.Rebuild, "rebuild", "rebuild") || opts.All,
		RebuildDependencies: opts.All,
		Debug:               resolveBool(cmd, opts.Debug, "debug", "debug"),
		DebugLevel:          opts.DebugLevel,
		DryRun:              opts.DryRun,
		Warnings:            !opts.NoWarnings,
		ForcedRule:          forcedRule,
		DebugState:          opts.DebugState,
	})
	if err != nil {
		return err
	}
	if result.Built {
		fmt.Printf("# ---- %s (%s) ----\n", result.Target.Folder, result.Target.Kind)
	}
	if result.StateDump != "" {
		fmt.Print(result.StateDump)
	}
	return nil
}
