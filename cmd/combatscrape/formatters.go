package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/lorkit/combatcards"
	"github.com/lorkit/combatcards/card"
	"github.com/lorkit/combatcards/cardstore"
	"github.com/lorkit/combatcards/runindex"
)

var (
	labelColor = color.New(color.FgCyan)
	valueColor = color.New(color.FgHiWhite)
	warnColor  = color.New(color.FgYellow)
	errorColor = color.New(color.FgRed)
	okColor    = color.New(color.FgGreen)
)

// printSummary prints the result of a scrape
func printSummary(w io.Writer, summary *combatcards.Summary, dir string) {
	okColor.Fprintln(w, "Scrape complete")
	printField(w, "Output:     ", dir)
	printField(w, "Pages:      ", fmt.Sprint(summary.Pages))
	printField(w, "Cards:      ", fmt.Sprint(summary.Cards))

	failures := valueColor
	if summary.Failures > 0 {
		failures = warnColor
	}
	labelColor.Fprint(w, "Skipped:    ")
	failures.Fprintln(w, summary.Failures)

	if summary.Duplicates > 0 {
		labelColor.Fprint(w, "Duplicates: ")
		warnColor.Fprintln(w, summary.Duplicates)
	}
	if summary.WriteErrors > 0 {
		labelColor.Fprint(w, "Not written:")
		errorColor.Fprintf(w, " %d\n", summary.WriteErrors)
	}
	if summary.Truncated {
		warnColor.Fprintln(w, "Stopped at the page limit before the last page")
	}
	if summary.RunID != uuid.Nil {
		printField(w, "Run:        ", summary.RunID.String())
	}
}

func printField(w io.Writer, label, value string) {
	labelColor.Fprint(w, label)
	valueColor.Fprintln(w, value)
}

// printRunsTable prints runs in human-readable table format
func printRunsTable(w io.Writer, runs []runindex.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return
	}

	for _, run := range runs {
		status := okColor
		switch run.Status {
		case runindex.StatusFailed:
			status = errorColor
		case runindex.StatusRunning:
			status = warnColor
		}

		status.Fprintf(w, "%-9s ", run.Status)
		fmt.Fprintf(w, "%s  %s\n", run.StartedAt.Format("2006-01-02 15:04"), run.RunID)
		fmt.Fprintf(w, "          %d pages | %d cards | %d skipped", run.Pages, run.Cards, run.Failures)
		if run.Truncated {
			fmt.Fprint(w, " | truncated")
		}
		fmt.Fprintln(w)
		if run.LastError != nil {
			errorColor.Fprintf(w, "          %s\n", *run.LastError)
		}
	}
}

// printRunsJSON prints runs in JSON format
func printRunsJSON(w io.Writer, runs []runindex.Run) error {
	if runs == nil {
		runs = []runindex.Run{}
	}

	output := map[string]any{
		"runs":  runs,
		"total": len(runs),
	}

	data, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	fmt.Fprintln(w, string(data))
	return nil
}

// printRunDetail prints one run with its cards and skipped cards
func printRunDetail(w io.Writer, run *runindex.Run, cards []runindex.RunCard, failures []runindex.RunFailure) {
	printRunsTable(w, []runindex.Run{*run})
	fmt.Fprintln(w)

	labelColor.Fprintf(w, "Cards (%d)\n", len(cards))
	for _, c := range cards {
		fmt.Fprintf(w, "  %s -> %s\n", c.Name, c.Filename)
	}

	if len(failures) == 0 {
		return
	}

	fmt.Fprintln(w)
	warnColor.Fprintf(w, "Skipped (%d)\n", len(failures))
	for _, f := range failures {
		name := f.Name
		if name == "" {
			name = "unnamed"
		}
		fmt.Fprintf(w, "  page %d #%d %s: %s\n", f.Page, f.Position, name, f.Message)
	}
}

// printCardsTable prints one line per stored card followed by unreadable files
func printCardsTable(w io.Writer, result *cardstore.ListResult) {
	if len(result.Cards) == 0 && len(result.Errors) == 0 {
		fmt.Fprintln(w, "No cards stored.")
		return
	}

	for _, c := range result.Cards {
		fmt.Fprintf(w, "%-32s %-9s %-16s cost %d", c.Name, c.Rarity, c.Kind, c.Cost)
		if c.IsSpecialVariant {
			warnColor.Fprint(w, " special")
		}
		fmt.Fprintln(w)
	}

	if len(result.Errors) > 0 {
		fmt.Fprintln(w)
		errorColor.Fprintf(w, "Unreadable (%d)\n", len(result.Errors))
		for i := range result.Errors {
			fmt.Fprintf(w, "  %s\n", result.Errors[i].Error())
		}
	}
}

// printCardsJSON prints stored cards and unreadable file names in JSON format
func printCardsJSON(w io.Writer, result *cardstore.ListResult) error {
	cards := result.Cards
	if cards == nil {
		cards = []card.Card{}
	}
	unreadable := make([]string, 0, len(result.Errors))
	for _, e := range result.Errors {
		unreadable = append(unreadable, e.Filename)
	}

	output := map[string]any{
		"cards":      cards,
		"total":      len(cards),
		"unreadable": unreadable,
	}

	data, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	fmt.Fprintln(w, string(data))
	return nil
}

// printCardJSON prints a card exactly as it is written to disk
func printCardJSON(w io.Writer, c *card.Card) error {
	data, err := card.Marshal(*c)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, string(data))
	return nil
}

// printCardDetail prints one card with its actions
func printCardDetail(w io.Writer, c *card.Card, filename string) {
	okColor.Fprintln(w, c.Name)
	printField(w, "File:         ", filename)
	printField(w, "Availability: ", string(c.Availability))
	printField(w, "Rarity:       ", string(c.Rarity))
	printField(w, "Type:         ", string(c.Kind))
	printField(w, "Cost:         ", fmt.Sprint(c.Cost))
	if c.IsSpecialVariant {
		printField(w, "Variant:      ", "special")
	}
	printField(w, "Image:        ", c.ImageURL)
	if c.Description != nil {
		printField(w, "Description:  ", *c.Description)
	}

	fmt.Fprintln(w)
	labelColor.Fprintf(w, "Actions (%d)\n", len(c.Actions))
	for _, a := range c.Actions {
		fmt.Fprintf(w, "  %-9s %-6s %d-%d", a.Group, a.Kind, a.Min, a.Max)
		if a.Description != nil {
			fmt.Fprintf(w, "  %s", *a.Description)
		}
		fmt.Fprintln(w)
	}
}
