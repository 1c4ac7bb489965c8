package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/lorkit/combatcards"
	"github.com/lorkit/combatcards/cardstore"
	"github.com/lorkit/combatcards/config"
	"github.com/lorkit/combatcards/runindex"
	"github.com/lorkit/combatcards/transport"
	"github.com/lorkit/combatcards/walker"
	"github.com/spf13/cobra"
)

var errWriteFailures = errors.New("some cards could not be written")

var configPath string

// rootCmd scrapes the whole catalog when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "combatscrape",
	Short: "Scrape the combat card catalog into JSON files",
	Long: `combatscrape walks every page of the combat card catalog, extracts each
card and writes it to its own JSON file in the output directory.

Cards that cannot be read are skipped and reported; they do not change the
exit status. Settings are read from combatscrape.yaml when it exists.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runScrape,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "Path to the YAML config file")
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(cardsCmd)
}

// loadConfig reads and validates the config file named by --config.
func loadConfig() (*config.FileConfig, error) {
	cfg, err := config.LoadConfigFile(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runScrape(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log.Printf("Opening card store: %s", cfg.Output.Dir)
	store, err := cardstore.NewCardStore(cfg.Output.Dir)
	if err != nil {
		return fmt.Errorf("failed to open card store: %w", err)
	}

	var index *runindex.RunStore
	if cfg.Index.DSN != "" {
		log.Printf("Opening run index: %s", cfg.Index.DSN)
		index, err = runindex.NewRunStore(cfg.Index.DSN)
		if err != nil {
			return fmt.Errorf("failed to open run index: %w", err)
		}
		defer index.Close()
	}

	client := transport.New(cfg.TransportConfig())
	w := walker.New(client, cfg.WalkerConfig())
	scraper := combatcards.NewScraper(w, store, index)

	// Stop between pages on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	summary, err := scraper.Run(ctx, cfg.BaseQuery())
	if err != nil {
		return err
	}

	printSummary(os.Stdout, summary, store.Dir())

	if summary.WriteErrors > 0 {
		return fmt.Errorf("%w: %d write errors", errWriteFailures, summary.WriteErrors)
	}
	return nil
}
