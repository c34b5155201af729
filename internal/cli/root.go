package cli

import (
	"os"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

const envPrefix = "FLYMAKE"

type RootConfig struct {
	ConfigFile string
	LogLevel   string
	Verbosity  int
}

func Execute() {
	root := newRootCommand()
	if err := root.Execute(); err != nil {
		os.Exit(exitCodeForError(err))
	}
}

func newRootCommand() *cobra.Command {
	cfg := RootConfig{}
	cmd := &cobra.Command{
		Use:     "flymake",
		Short:   "Build, test, and package C/C++ projects",
		Version: version,
		Args:    cobra.ArbitraryArgs,
		// With no sub-command, build is implied: the first argument, if
		// any, is the build target.
		RunE: func(cmd *cobra.Command, args []string) error {
			target := ""
			if len(args) > 0 {
				target = args[0]
			}
			return runBuild(cmd.Context(), cmd, buildOptions{Path: "."}, target)
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := initConfig(cfg.ConfigFile); err != nil {
				return err
			}
			level := viper.GetString("log_level")
			if cmd.Flags().Lookup("verbosity").Changed {
				level = levelForVerbosity(cfg.Verbosity)
			}
			setupLogging(level)
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&cfg.ConfigFile, "config", "", "Config file path")
	cmd.PersistentFlags().StringVar(&cfg.LogLevel, "log-level", "info", "Log level")
	cmd.PersistentFlags().IntVarP(&cfg.Verbosity, "verbosity", "v", 1, "Verbosity 0/1/2")
	cmd.PersistentFlags().Lookup("verbosity").NoOptDefVal = "2"
	_ = viper.BindPFlag("log_level", cmd.PersistentFlags().Lookup("log-level"))

	cmd.AddCommand(newBuildCommand())
	cmd.AddCommand(newCleanCommand())
	cmd.AddCommand(newRunCommand())
	cmd.AddCommand(newTestCommand())
	cmd.AddCommand(newNewCommand())
	return cmd
}

func initConfig(configFile string) error {
	viper.SetEnvPrefix(envPrefix)
	viper.AutomaticEnv()

	if configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("failed to read config file").
				WithCause(err)
		}
		return nil
	}

	viper.SetConfigName("flymake")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.config/flymake")
	if err := viper.ReadInConfig(); err != nil {
		return nil
	}
	return nil
}

// levelForVerbosity maps the -v[=N] verbosity levels (0/1/2) onto the
// zerolog level names setupLogging understands: 0 is quiet (warnings
// only), 1 is the default, 2 is debug.
func levelForVerbosity(v int) string {
	switch {
	case v <= 0:
		return "warn"
	case v == 1:
		return "info"
	default:
		return "debug"
	}
}

func setupLogging(level string) {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// exitCodeForError maps every error taxonomy (bad-path, bad-manifest,
// not-project, no-files, not-same-root, no-rule, clone, write, mem)
// onto the single non-zero exit status §6.1 specifies: 0 on success,
// 1 on any error. The error's own message (printed by cobra before
// this runs) carries the taxonomy distinction, not the exit code.
func exitCodeForError(err error) int {
	if err == nil {
		return 0
	}
	return 1
}
