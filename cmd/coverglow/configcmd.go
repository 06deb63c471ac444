package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"karolbroda.com/coverglow/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "manage the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "write the example config",
	Long:  `write the example configuration to --config or the default location.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if path == "" {
			path = config.DefaultPath()
		}
		if path == "" {
			return fmt.Errorf("could not determine a config location, pass --config")
		}

		if err := config.CreateFile(path); err != nil {
			return err
		}

		fmt.Printf("wrote %s\n", path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		data, err := cfg.Encode()
		if err != nil {
			return err
		}

		_, err = os.Stdout.Write(data)
		return err
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}
