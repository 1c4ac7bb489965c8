package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/lorkit/combatcards/runindex"
	"github.com/spf13/cobra"
)

var (
	runsLimit  int
	runsFormat string
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded scrape runs",
	Long: `runs lists the scrape runs recorded in the run index, newest first.

Examples:
  combatscrape runs
  combatscrape runs --limit 5 --format json
  combatscrape runs show 3f2b8c1e-5d4a-4c3b-9a8e-1f2d3c4b5a69`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		index, err := openIndex()
		if err != nil {
			return err
		}
		defer index.Close()

		runs, err := index.ListRuns(runsLimit)
		if err != nil {
			return fmt.Errorf("failed to list runs: %w", err)
		}

		switch runsFormat {
		case "json":
			return printRunsJSON(os.Stdout, runs)
		case "table":
			printRunsTable(os.Stdout, runs)
			return nil
		default:
			return fmt.Errorf("unknown format: %s", runsFormat)
		}
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run_id>",
	Short: "Show the cards written and skipped by a run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		runID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid run ID: %w", err)
		}

		index, err := openIndex()
		if err != nil {
			return err
		}
		defer index.Close()

		run, err := index.GetRun(runID)
		if errors.Is(err, runindex.ErrRunNotFound) {
			return fmt.Errorf("run %s not found", runID)
		}
		if err != nil {
			return err
		}

		cards, err := index.ListCards(runID)
		if err != nil {
			return fmt.Errorf("failed to list cards: %w", err)
		}
		failures, err := index.ListFailures(runID)
		if err != nil {
			return fmt.Errorf("failed to list failures: %w", err)
		}

		printRunDetail(os.Stdout, run, cards, failures)
		return nil
	},
}

func init() {
	runsCmd.Flags().IntVar(&runsLimit, "limit", 20, "Maximum number of runs to list (0 for all)")
	runsCmd.Flags().StringVar(&runsFormat, "format", "table", "Output format: table or json")
	runsCmd.AddCommand(runsShowCmd)
}

// openIndex opens the run index named in the config file.
func openIndex() (*runindex.RunStore, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if cfg.Index.DSN == "" {
		return nil, errors.New("run index is disabled (index.dsn is empty)")
	}

	index, err := runindex.NewRunStore(cfg.Index.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open run index: %w", err)
	}
	return index, nil
}
