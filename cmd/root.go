package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rog555/ccpr/pkg/bootstrap"
	"github.com/rog555/ccpr/pkg/config"
)

var cfgFile string
var verbose bool
var appConfig *config.Config

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ccpr",
	Short: "AWS CodeCommit PR CLI",
	Long: `ccpr works with AWS CodeCommit pull requests from the command line:
list repositories and PRs, create, review, approve and merge PRs with
colorized diffs, comment on files, grep remote repositories and check
CodePipeline status.

AWS credentials come from the usual environment/shared-config chain.
Repository context is detected from the current git checkout and can be
overridden with the CCPR_REPO environment variable.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	// Pre-parse global flags so config is available before cobra runs.
	cfgFile, verbose = bootstrap.PreParseGlobalFlags(os.Args)

	if err := initConfig(); err != nil {
		cobra.CheckErr(err)
	}

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(func() {
		_ = initConfig()
	})

	rootCmd.Version = version
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "C", "", "config file (default is $HOME/.config/ccpr/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() error {
	var err error
	appConfig, verbose, err = bootstrap.InitConfig(cfgFile, verbose)
	return err
}

// resetConfig clears the cached configuration.
// This is primarily used in tests to ensure each test starts fresh.
func resetConfig() {
	appConfig = nil
	bootstrap.Reset()
	viper.Reset()
}
