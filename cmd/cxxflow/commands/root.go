// Package commands provides the CLI commands for the cxxflow tool.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/l3aro/cxxflow/internal/config"
	"github.com/l3aro/cxxflow/internal/log"
)

var (
	// appConfig is loaded before any subcommand runs
	appConfig = config.DefaultConfig()
	logger    log.Logger = log.Default()
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "cxxflow",
	Short: "cxxflow - Control flow graphs for C and C++ functions",
	Long: `cxxflow builds control flow graphs for C and C++ function bodies.

Commands:
  cfg         Build the control flow graph of one function
  funcs       List the functions defined in a file
  scan        Report complexity and dead code for a source tree
  init        Create a configuration file interactively

Use "cxxflow [command] --help" for more information about a command.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(cmd)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() error {
	return RootCmd.Execute()
}

// setup loads the configuration, applies flag overrides and configures the logger.
func setup(cmd *cobra.Command) error {
	var (
		cfg *config.Config
		err error
	)
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		cfg, err = config.LoadFromFile(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel, _ = cmd.Flags().GetString("log-level")
	}
	if cmd.Flags().Changed("language") {
		lang, _ := cmd.Flags().GetString("language")
		cfg.Language = config.Language(lang)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logger = log.New(log.LoggerConfig{Level: level, JSONOutput: cfg.JSONLogs})
	appConfig = cfg
	return nil
}

func init() {
	RootCmd.PersistentFlags().String("config", "", "Config file path (default: project then global config)")
	RootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
	RootCmd.PersistentFlags().StringP("language", "l", "", "Source language (auto, c, cpp)")

	RootCmd.AddCommand(cfgCmd)
	RootCmd.AddCommand(funcsCmd)
	RootCmd.AddCommand(scanCmd)
	RootCmd.AddCommand(initCmd)
}
