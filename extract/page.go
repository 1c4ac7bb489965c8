package extract

import (
	"errors"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/lorkit/combatcards/card"
)

// Failure records a card node that could not be extracted.
type Failure struct {
	// 1-based position of the node among the page's card nodes
	Position int
	// Partial card name, empty when the name itself could not be read
	Name string
	Err  error
}

// PageResult contains the cards extracted from one page, in document order,
// and the per-card failures that occurred during the operation.
type PageResult struct {
	Cards    []card.Card
	Failures []Failure
}

type outcome struct {
	card card.Card
	err  error
}

// ExtractPage extracts every card node on a page. A card that fails is
// collected in the result's Failures slice and never affects its siblings.
// Cards are extracted by at most cfg.Workers goroutines; the result keeps
// document order regardless of completion order.
func ExtractPage(doc *goquery.Document, cfg Config) *PageResult {
	nodes := doc.Find(RecordSelector)

	// Each goroutine owns exactly one slot
	outcomes := make([]outcome, nodes.Length())

	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	semaphore := make(chan struct{}, workers)
	var wg sync.WaitGroup

	nodes.Each(func(i int, s *goquery.Selection) {
		semaphore <- struct{}{} // Acquire semaphore
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-semaphore }() // Release semaphore

			c, err := ExtractCard(s, cfg)
			outcomes[i] = outcome{card: c, err: err}
		}()
	})
	wg.Wait()

	result := &PageResult{
		Cards: make([]card.Card, 0, len(outcomes)),
	}
	for i, o := range outcomes {
		if o.err != nil {
			failure := Failure{Position: i + 1, Err: o.err}
			var recordErr *RecordError
			if errors.As(o.err, &recordErr) {
				failure.Name = recordErr.Name
			}
			result.Failures = append(result.Failures, failure)
			continue
		}
		result.Cards = append(result.Cards, o.card)
	}

	return result
}
