// Package cmd provides the CLI commands for the emvkeys application.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/gregLibert/emv-keys/internal/config"
	"github.com/gregLibert/emv-keys/internal/logging"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "emvkeys",
	Short: "EMV card public key chain inspector",
	Long: `Reads the public key certificates of an EMV payment card over PC/SC, recovers the
Issuer, ICC and PIN encipherment keys from the scheme Root-CA key, checks the
certificate hashes and screens every modulus for the ROCA weakness.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		if err := config.Initialize(cfgFile); err != nil {
			return err
		}

		cfg := config.Get()

		return logging.InitLogger(cfg.Log.Level, cfg.Log.Format)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml, $HOME/.emvkeys/config.yaml)")
	flags.String("log-level", "info", "log level (trace, debug, info, warn, error)")
	flags.String("log-format", logging.FormatHuman, "log format (human, json)")
	flags.String("catalog", "ca_keys.yaml", "Root-CA key catalog (YAML)")

	v := config.GetViper()
	_ = v.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = v.BindPFlag("log.format", flags.Lookup("log-format"))
	_ = v.BindPFlag("catalog.path", flags.Lookup("catalog"))
}
