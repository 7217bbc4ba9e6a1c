package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/gregLibert/emv-keys/internal/config"
	"github.com/gregLibert/emv-keys/pkg/rootca"
)

var catalogCmd = &cobra.Command{
	Use:           "catalog",
	Short:         "List the Root-CA keys of the catalog",
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		store, err := rootca.LoadFile(config.Get().Catalog.Path)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, scheme := range store.Schemes() {
			fmt.Fprintf(out, "%s %s (%d keys)\n", scheme.RID, scheme.Name, len(scheme.Keys))
			for _, key := range scheme.Keys {
				expiry := "-"
				if !key.Expiry.IsZero() {
					expiry = key.Expiry.Format(time.DateOnly)
				}
				fmt.Fprintf(out, "  %02X  %4d bits  expires %s\n", key.Index, key.PublicKey().Bits(), expiry)
			}
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
}
