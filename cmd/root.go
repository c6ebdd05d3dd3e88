// Package cmd implements the command-line interface for linkward.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	linkscmd "github.com/jonesrussell/linkward/cmd/links"
	refreshcmd "github.com/jonesrussell/linkward/cmd/refresh"
	"github.com/jonesrussell/linkward/internal/config"
)

var (
	// cfgFile holds the path to the configuration file.
	cfgFile string

	// debug enables debug logging for all commands.
	debug bool

	// rootCmd represents the root command for the linkward CLI.
	rootCmd = &cobra.Command{
		Use:   "linkward",
		Short: "A bookmark manager with background metadata refresh",
		Long:  `linkward stores bookmarks and keeps their page and GitHub metadata fresh in the background.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
)

// Execute runs the root command.
func Execute() error {
	// Load .env early so environment variables are available to Viper.
	_ = godotenv.Load()

	// Parse flags early so --config and --debug are known before
	// Viper initializes.
	_ = rootCmd.ParseFlags(os.Args[1:])

	if err := initConfig(); err != nil {
		return fmt.Errorf("failed to initialize configuration: %w", err)
	}

	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"",
		"config file (default is ./config.yaml or ./config/config.yaml)",
	)
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("linkward version %s\n", "1.0.0")
		},
	})

	rootCmd.AddCommand(refreshcmd.Command())
	rootCmd.AddCommand(linkscmd.Command())
}

// initConfig initializes Viper and applies the debug flag.
func initConfig() error {
	if err := config.InitializeViper(cfgFile); err != nil {
		return err
	}

	if debug || viper.GetBool("app.debug") {
		viper.Set("logger.level", "debug")
	}

	return nil
}
