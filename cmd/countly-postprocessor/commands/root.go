// Package commands implements the countly-postprocessor command line.
package commands

import (
	"io"

	"github.com/countly/xcode-postprocessor/internal/config"
	"github.com/countly/xcode-postprocessor/internal/injector"
	"github.com/countly/xcode-postprocessor/internal/logger"
	"github.com/countly/xcode-postprocessor/pbxproj"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// CLI represents the command line interface.
type CLI struct {
	rootCmd    *cobra.Command
	settings   *viper.Viper
	configFile string
	unityBuild bool
	dryRun     bool
	dumpPath   string
}

// New creates the root command.
func New() *CLI {
	c := &CLI{settings: config.New()}

	rootCmd := &cobra.Command{
		Use:   "countly-postprocessor <path to .pbxproj file>",
		Short: "Link CoreTelephony.framework into an Xcode project",
		Long: "Adds System/Library/Frameworks/CoreTelephony.framework to the given project.pbxproj\n" +
			"unless it is already referenced. A changed project is backed up and saved in the\n" +
			"Xcode 3.2 format.",
		Args: func(_ *cobra.Command, args []string) error {
			return injector.CheckArgs(args)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          c.run,
	}

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	flags := rootCmd.Flags()
	flags.Bool(config.KeyDebug, false, "Enable debug logging")
	flags.StringVar(&c.configFile, "config", "", "Read settings from this YAML file")
	flags.BoolVar(&c.unityBuild, "unity-build", false, "Treat the argument as a Unity iOS build directory")
	flags.BoolVar(&c.dryRun, "dry-run", false, "Report whether the project would change without writing it")
	flags.StringVar(&c.dumpPath, "dump", "", "Write the resulting project as JSON to this file")
	_ = c.settings.BindPFlag(config.KeyDebug, flags.Lookup(config.KeyDebug))

	c.rootCmd = rootCmd
	return c
}

// Execute runs the root command.
func (c *CLI) Execute() error {
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}

func (c *CLI) run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(c.settings, c.configFile)
	if err != nil {
		return err
	}
	logger.Init(cfg.Debug, cmd.ErrOrStderr())

	loader := injector.PbxLoader{
		Options: []pbxproj.PbxProjectOption{pbxproj.WithOutputVerification(cfg.Verify)},
	}
	return injector.New(loader, cmd.OutOrStdout()).Run(args, injector.Options{
		Backup:     cfg.Backup,
		DryRun:     c.dryRun,
		Format:     cfg.SaveFormat,
		Weak:       cfg.Weak,
		Target:     cfg.Target,
		UnityBuild: c.unityBuild,
		DumpPath:   c.dumpPath,
	})
}
