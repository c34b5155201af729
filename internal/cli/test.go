package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"flymake/internal/app"
)

type testOptions struct {
	Path    string
	Rebuild bool
	DryRun  bool
}

func newTestCommand() *cobra.Command {
	opts := testOptions{Path: "."}
	cmd := &cobra.Command{
		Use:   "test [folder] [-- args...]",
		Short: "Build and run every tool in a test folder",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			folder, passthrough := splitPassthrough(cmd, args)
			return runTest(cmd.Context(), cmd, opts, folder, passthrough)
		},
	}
	cmd.Flags().StringVar(&opts.Path, "path", ".", "Project directory")
	cmd.Flags().BoolVarP(&opts.Rebuild, "rebuild", "B", false, "Force rebuild before testing")
	cmd.Flags().BoolVarP(&opts.DryRun, "dry-run", "n", false, "Print commands without executing them")
	_ = viper.BindPFlag("path", cmd.Flags().Lookup("path"))
	return cmd
}

func runTest(ctx context.Context, cmd *cobra.Command, opts testOptions, folder string, passthrough []string) error {
	service := newAppService()
	result, err := service.Test(ctx, app.TestRequest{
		Path:         resolveString(cmd, opts.Path, "path", "path"),
		Target:       folder,
		Args:         passthrough,
		ForceRebuild: resolveBool(cmd, opts.Rebuild, "rebuild", "rebuild"),
		DryRun:       opts.DryRun,
	})
	if err != nil {
		return err
	}
	fmt.Printf("ran %d test(s), %d failed\n", result.Run, result.Failed)
	if result.Failed > 0 {
		os.Exit(1)
	}
	return nil
}
