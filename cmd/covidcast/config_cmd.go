package main

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configOut string

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Long: `Prints the configuration after the yaml file, .env file and environment overrides are
applied. With --out the configuration is written to that file instead.`,
	RunE: runConfig,
}

func init() {
	configCmd.Flags().StringVarP(&configOut, "out", "o", "", "Write the configuration to this yaml file")
}

func runConfig(cmd *cobra.Command, args []string) error {
	if configOut != "" {
		return cfg.Save(configOut)
	}
	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return err
	}
	return enc.Close()
}
