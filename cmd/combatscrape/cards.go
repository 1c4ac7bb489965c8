package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/lorkit/combatcards/cardstore"
	"github.com/spf13/cobra"
)

var cardsFormat string

var cardsCmd = &cobra.Command{
	Use:   "cards",
	Short: "List the cards in the output directory",
	Long: `cards reads every card file in the output directory and lists them by name.
Files that cannot be decoded are reported after the list.

Examples:
  combatscrape cards
  combatscrape cards --format json
  combatscrape cards show "Why?"
  combatscrape cards delete "Why?"`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}

		result, err := store.List()
		if err != nil {
			return fmt.Errorf("failed to list cards: %w", err)
		}

		switch cardsFormat {
		case "json":
			return printCardsJSON(os.Stdout, result)
		case "table":
			printCardsTable(os.Stdout, result)
			return nil
		default:
			return fmt.Errorf("unknown format: %s", cardsFormat)
		}
	},
}

var cardsShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show one stored card",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}

		c, err := store.Get(args[0])
		if errors.Is(err, cardstore.ErrCardNotFound) {
			return fmt.Errorf("card %q not found", args[0])
		}
		if err != nil {
			return err
		}

		if cardsFormat == "json" {
			return printCardJSON(os.Stdout, c)
		}
		printCardDetail(os.Stdout, c, cardstore.Filename(c.Name))
		return nil
	},
}

var cardsDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete one stored card",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}

		if err := store.Delete(args[0]); err != nil {
			if errors.Is(err, cardstore.ErrCardNotFound) {
				return fmt.Errorf("card %q not found", args[0])
			}
			return err
		}

		okColor.Fprintf(os.Stdout, "Deleted %s\n", cardstore.Filename(args[0]))
		return nil
	},
}

func init() {
	cardsCmd.PersistentFlags().StringVar(&cardsFormat, "format", "table", "Output format: table or json")
	cardsCmd.AddCommand(cardsShowCmd)
	cardsCmd.AddCommand(cardsDeleteCmd)
}

// openStore opens the card store named in the config file.
func openStore() (*cardstore.CardStore, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	store, err := cardstore.NewCardStore(cfg.Output.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open card store: %w", err)
	}
	return store, nil
}
