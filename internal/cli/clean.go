package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"flymake/internal/app"
)

type cleanOptions struct {
	Path    string
	Rebuild bool
	All     bool
}

func newCleanCommand() *cobra.Command {
	opts := cleanOptions{Path: "."}
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove built object files, and optionally libraries/programs and dependencies",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runClean(cmd.Context(), cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.Path, "path", ".", "Project directory")
	cmd.Flags().BoolVarP(&opts.Rebuild, "rebuild", "B", false, "Also remove built libraries/programs")
	cmd.Flags().BoolVar(&opts.All, "all", false, "Also remove the deps/ folder")
	_ = viper.BindPFlag("path", cmd.Flags().Lookup("path"))
	return cmd
}

func runClean(ctx context.Context, cmd *cobra.Command, opts cleanOptions) error {
	service := newAppService()
	result, err := service.Clean(ctx, app.CleanRequest{
		Path:           resolveString(cmd, opts.Path, "path", "path"),
		RemovePrograms: opts.Rebuild || opts.All,
		RemoveDeps:     opts.All,
	})
	if err != nil {
		return err
	}
	fmt.Printf("cleaned %d folder(s)\n", result.FoldersCleaned)
	return nil
}
