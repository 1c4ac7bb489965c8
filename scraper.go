package combatcards

import (
	"context"
	"fmt"
	"log"
	"net/url"

	"github.com/google/uuid"
	"github.com/lorkit/combatcards/card"
	"github.com/lorkit/combatcards/cardstore"
	"github.com/lorkit/combatcards/runindex"
	"github.com/lorkit/combatcards/walker"
)

// Scraper runs the full pipeline: walk the catalog, write every card to the
// store and record the run in the index.
type Scraper struct {
	walker *walker.Walker
	store  *cardstore.CardStore
	index  *runindex.RunStore
}

// Summary describes a finished scrape.
type Summary struct {
	// Zero when the scraper has no run index
	RunID       uuid.UUID
	Pages       int
	Cards       int
	Failures    int
	WriteErrors int
	// Cards whose file was overwritten by a later card in the same run
	Duplicates int
	Truncated  bool
}

// NewScraper creates a new scraper. The index may be nil, in which case runs
// are not recorded.
func NewScraper(w *walker.Walker, store *cardstore.CardStore, index *runindex.RunStore) *Scraper {
	return &Scraper{
		walker: w,
		store:  store,
		index:  index,
	}
}

// Run walks the catalog with the base query and writes every extracted card.
// Card failures and write failures are counted in the summary; a walk that
// aborts returns the error and marks the run failed.
func (s *Scraper) Run(ctx context.Context, query url.Values) (*Summary, error) {
	summary := &Summary{}

	if s.index != nil {
		run, err := s.index.StartRun(s.walker.URL())
		if err != nil {
			return nil, fmt.Errorf("failed to start run: %w", err)
		}
		summary.RunID = run.RunID
	}

	log.Printf("INFO: Scraping %s", s.walker.URL())

	result, err := s.walker.Walk(ctx, query)
	if err != nil {
		s.failRun(summary.RunID, err)
		return nil, err
	}

	summary.Pages = result.Pages
	summary.Failures = len(result.Failures)
	summary.Truncated = result.Truncated
	summary.Duplicates = countDuplicates(result.Cards)

	written := s.store.AddAll(result.Cards)
	summary.Cards = len(written.Files)
	summary.WriteErrors = len(written.Errors)
	for _, writeErr := range written.Errors {
		log.Printf("ERROR: Failed to write card %q: %v", writeErr.Name, writeErr.Err)
	}

	s.recordRun(summary.RunID, result, written)

	if s.index != nil {
		err := s.index.FinishRun(summary.RunID, runindex.RunStats{
			Pages:       summary.Pages,
			Cards:       summary.Cards,
			Failures:    summary.Failures,
			WriteErrors: summary.WriteErrors,
			Truncated:   summary.Truncated,
		})
		if err != nil {
			log.Printf("WARN: Failed to finish run %s: %v", summary.RunID, err)
		}
	}

	log.Printf("INFO: Wrote %d cards from %d pages to %s (%d failures, %d write errors)",
		summary.Cards, summary.Pages, s.store.Dir(), summary.Failures, summary.WriteErrors)

	return summary, nil
}

// recordRun stores the written cards and the skipped cards of a run. Index
// errors are logged and do not fail the run.
func (s *Scraper) recordRun(runID uuid.UUID, result *walker.Result, written *cardstore.WriteResult) {
	if s.index == nil {
		return
	}

	for _, file := range written.Files {
		if err := s.index.RecordCard(runID, file.Name, file.Filename); err != nil {
			log.Printf("WARN: Failed to index card %q: %v", file.Name, err)
		}
	}

	for _, failure := range result.Failures {
		err := s.index.RecordFailure(runID, runindex.RunFailure{
			Page:     failure.Page,
			Position: failure.Position,
			Name:     failure.Name,
			Message:  failure.Err.Error(),
		})
		if err != nil {
			log.Printf("WARN: Failed to index failure on page %d: %v", failure.Page, err)
		}
	}
}

func (s *Scraper) failRun(runID uuid.UUID, runErr error) {
	if s.index == nil {
		return
	}
	if err := s.index.FailRun(runID, runErr); err != nil {
		log.Printf("WARN: Failed to mark run %s failed: %v", runID, err)
	}
}

// countDuplicates logs and counts cards that share a file name with an
// earlier card. The later card wins on disk.
func countDuplicates(cards []card.Card) int {
	seen := make(map[string]string, len(cards))
	duplicates := 0
	for _, c := range cards {
		filename := cardstore.Filename(c.Name)
		if previous, ok := seen[filename]; ok {
			log.Printf("WARN: Card %q overwrites %q in %s", c.Name, previous, filename)
			duplicates++
		}
		seen[filename] = c.Name
	}
	return duplicates
}
