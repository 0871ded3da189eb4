package main

import (
	"fmt"

	"github.com/spf13/cobra"

	overlay "github.com/dep2p/go-overlay"
	"github.com/dep2p/go-overlay/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect node configuration",
}

var configShowFlags struct {
	preset string
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the default configuration as JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		cfg := config.NewConfig()
		if configShowFlags.preset != "" {
			c, err := overlay.GetConfigByPreset(configShowFlags.preset)
			if err != nil {
				return err
			}
			cfg = c
		}
		data, err := cfg.ToJSON()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

var configValidateFlags struct {
	role string
}

var configValidateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Load and validate a JSON configuration file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		cfg, err := config.LoadFile(args[0])
		if err != nil {
			return err
		}
		if err := config.ValidateCompatibility(cfg); err != nil {
			return err
		}
		if configValidateFlags.role != "" {
			if err := config.ValidateForRole(cfg, configValidateFlags.role); err != nil {
				return err
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", args[0])
		return nil
	},
}

var configPresetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List available presets",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		for _, p := range overlay.AvailablePresets() {
			fmt.Fprintf(cmd.OutOrStdout(), "%-12s %s\n", p.Name, p.Description)
		}
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd, configValidateCmd, configPresetsCmd)
	configShowCmd.Flags().StringVarP(&configShowFlags.preset, "preset", "p", "", "预设 (edge/rendezvous)")
	configValidateCmd.Flags().StringVar(&configValidateFlags.role, "role", "", "按节点角色检查 (edge/rendezvous)")
}
