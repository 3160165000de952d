package cmd

import (
	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "tvbridge",
	Short: "TradingView webhook bridge to a broker session",
	Long: `tvbridge receives TradingView alert webhooks, turns them into order
intents and places them through a single serialized broker session.

Without a subcommand it runs the server (same as "tvbridge serve").

The config file is YAML. Every key can also be set from the environment as
TVBRIDGE_<SECTION>_<KEY>; the legacy names (WEBHOOK_SECRET, IB_HOST, ...) are
still honored.`,
	SilenceUsage: true,
	RunE:         runServe,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default $TVBRIDGE_CONFIG, else environment only)")
}
