package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gregLibert/emv-keys/pkg/roca"
	"github.com/gregLibert/emv-keys/pkg/tlv"
)

var rocaCmd = &cobra.Command{
	Use:           "roca <hex-modulus>...",
	Short:         "Check RSA moduli for the ROCA fingerprint",
	Example:       `  emvkeys roca 9D3A1C...`,
	Args:          cobra.MinimumNArgs(1),
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, arg := range args {
			var modulus tlv.HexBytes
			if err := modulus.UnmarshalText([]byte(arg)); err != nil {
				return fmt.Errorf("modulus %q: %w", arg, err)
			}

			verdict := "not affected"
			if roca.IsAffectedBytes(modulus) {
				verdict = "affected"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", prefix(modulus.String()), verdict)
		}

		return nil
	},
}

func prefix(s string) string {
	const n = 16
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func init() {
	rootCmd.AddCommand(rocaCmd)
}
