package cmd

import (
	"fmt"

	"tvbridge/internal/config"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect configuration",
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Load and validate the configuration",
	Long: `Load the config file (if any) plus the environment, apply defaults and
validate. Prints the effective configuration with secrets masked.

Example:
  tvbridge config validate --config tvbridge.yaml`,
	RunE: runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configValidateCmd)
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	path := config.ResolvePath(cfgFile)
	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	summary, err := cfg.SummaryYAML()
	if err != nil {
		return err
	}
	if path == "" {
		path = "(environment only)"
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "✓ Configuration valid: %s\n\n", path)
	fmt.Fprint(out, summary)
	return nil
}
