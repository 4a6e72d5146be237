package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rog555/ccpr/pkg/config"
)

var configInitPath string

// configCmd groups configuration subcommands.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage ccpr configuration",
}

// configInitCmd writes a default config file.
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	Long: `Write a config file populated with the default settings, refusing
to overwrite an existing one. Defaults to $HOME/.config/ccpr/config.toml.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configInitPath
		if path == "" {
			var err error
			path, err = config.DefaultPath()
			if err != nil {
				return err
			}
		}
		if err := config.WriteDefault(path); err != nil {
			return reportError(os.Stderr, err)
		}
		fmt.Printf("wrote %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)

	configInitCmd.Flags().StringVarP(&configInitPath, "path", "p", "", "destination path")
}
