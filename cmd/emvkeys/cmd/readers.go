package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gregLibert/emv-keys/internal/pcsc"
)

// listReaders is replaced in tests.
var listReaders = pcsc.ListReaders

var readersCmd = &cobra.Command{
	Use:           "readers",
	Short:         "List PC/SC readers",
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		readers, err := listReaders()
		if err != nil {
			return err
		}

		if len(readers) == 0 {
			return pcsc.ErrNoReader
		}

		for i, r := range readers {
			fmt.Fprintf(cmd.OutOrStdout(), "%d: %s\n", i, r)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(readersCmd)
}
