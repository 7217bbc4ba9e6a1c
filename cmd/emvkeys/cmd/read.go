package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/gregLibert/emv-keys/internal/config"
	"github.com/gregLibert/emv-keys/internal/inspect"
	"github.com/gregLibert/emv-keys/internal/pcsc"
	"github.com/gregLibert/emv-keys/pkg/emv"
	"github.com/gregLibert/emv-keys/pkg/iso7816"
	"github.com/gregLibert/emv-keys/pkg/rootca"
)

var errLocked = errors.New("no payment application could be read: card locked or unsupported")

// cardSession is an open card connection.
type cardSession interface {
	iso7816.Transmitter
	Close() error
}

// openSession connects to a reader. Replaced in tests.
var openSession = func(selector string, logger zerolog.Logger) (cardSession, error) {
	return pcsc.Open(selector, logger)
}

var readCmd = &cobra.Command{
	Use:   "read",
	Short: "Read a card and report its public key chain",
	Long: `Connects to the card, reads the payment application and walks the key chain
from the Root-CA key named by the card down to the ICC and PIN encipherment keys.`,
	Example: `  # Contactless card on the first reader
  emvkeys read --catalog ca_keys.yaml

  # Contact card on the reader whose name contains "uTrust", JSON output
  emvkeys read --reader utrust --contact --json`,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := config.Get()

		selector, _ := cmd.Flags().GetString("reader")
		contact, _ := cmd.Flags().GetBool("contact")
		asJSON, _ := cmd.Flags().GetBool("json")

		if selector == "" {
			selector = strconv.Itoa(cfg.Reader.Index)
		}
		contactless := cfg.Reader.Contactless && !contact

		store, err := rootca.LoadFile(cfg.Catalog.Path)
		if err != nil {
			return err
		}

		session := uuid.NewString()
		logger := log.With().Str("session", session).Logger()

		card, err := readCard(selector, contactless, logger)
		if err != nil {
			return err
		}

		if card.Locked {
			fmt.Fprintln(cmd.OutOrStdout(), card.Describe())
			return errLocked
		}

		in := inspect.New(store, logger)
		in.Session = session

		report, err := in.Inspect(card)
		if err != nil {
			fmt.Fprintln(cmd.OutOrStdout(), card.Describe())
			return err
		}

		if asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}

		fmt.Fprintln(cmd.OutOrStdout(), report.Describe())

		return nil
	},
}

func readCard(selector string, contactless bool, logger zerolog.Logger) (*emv.Card, error) {
	sess, err := openSession(selector, logger)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := sess.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close card session")
		}
	}()

	return emv.NewReader(sess, contactless, logger).Read()
}

func init() {
	rootCmd.AddCommand(readCmd)

	readCmd.Flags().String("reader", "", "reader index or name substring (default: reader.index)")
	readCmd.Flags().Bool("contact", false, "use the contact interface (PSE) instead of contactless (PPSE)")
	readCmd.Flags().Bool("json", false, "print the report as JSON")
}
