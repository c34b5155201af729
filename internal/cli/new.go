package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"flymake/internal/app"
)

type newOptions struct {
	Name string
	Lib  bool
	Cpp  bool
}

func newNewCommand() *cobra.Command {
	opts := newOptions{}
	cmd := &cobra.Command{
		Use:   "new <path>",
		Short: "Scaffold a new project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNew(cmd.Context(), cmd, opts, args[0])
		},
	}
	cmd.Flags().StringVar(&opts.Name, "name", "", "Project name (defaults to the folder name)")
	cmd.Flags().BoolVar(&opts.Lib, "lib", false, "Scaffold a library project instead of a program")
	cmd.Flags().BoolVar(&opts.Cpp, "cpp", false, "Scaffold a C++ starter instead of C")
	_ = viper.BindPFlag("name", cmd.Flags().Lookup("name"))
	return cmd
}

func runNew(ctx context.Context, cmd *cobra.Command, opts newOptions, path string) error {
	service := newAppService()
	result, err := service.New(ctx, app.NewRequest{
		Path:    path,
		Name:    resolveString(cmd, opts.Name, "name", "name"),
		Library: resolveBool(cmd, opts.Lib, "lib", "lib"),
		Cpp:     resolveBool(cmd, opts.Cpp, "cpp", "cpp"),
	})
	if err != nil {
		return err
	}
	fmt.Printf("created project at %s\n", result.Root)
	return nil
}
