package walker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/lorkit/combatcards/card"
	"github.com/lorkit/combatcards/extract"
)

// PageParam is the query parameter that selects a result page.
const PageParam = "page"

// PaginationSelector matches the region holding the page controls.
const PaginationSelector = "div.pages"

// ErrPaginationUnavailable means the pagination region is missing or empty.
// The walker treats it as the last page.
var ErrPaginationUnavailable = errors.New("pagination controls unavailable")

// Fetcher retrieves the raw markup of a catalog page.
type Fetcher interface {
	Fetch(ctx context.Context, url string, query url.Values) (string, error)
}

// Config holds configuration for a catalog walk.
type Config struct {
	// Catalog listing URL
	URL string
	// Maximum number of pages fetched in one walk; zero means no limit
	MaxPages int
	Extract  extract.Config
}

// PageFailure is a card that could not be extracted, tagged with its page.
type PageFailure struct {
	Page int
	extract.Failure
}

// Result contains the cards of every page in page and document order, and
// the per-card failures that occurred during the walk.
type Result struct {
	Cards    []card.Card
	Failures []PageFailure
	// Number of pages fetched
	Pages int
	// Set when the walk stopped at MaxPages rather than on the last page
	Truncated bool
}

// Walker drives fetch-and-extract cycles across the catalog's result pages.
type Walker struct {
	fetcher Fetcher
	config  Config
}

// New creates a walker that fetches pages through fetcher.
func New(fetcher Fetcher, config Config) *Walker {
	return &Walker{
		fetcher: fetcher,
		config:  config,
	}
}

// URL returns the catalog listing URL the walker starts from.
func (w *Walker) URL() string {
	return w.config.URL
}

// Walk fetches the first page with the base query, then follows the
// pagination controls until the last page. Card failures are collected in
// the result; fetch and parse failures abort the walk and are returned.
func (w *Walker) Walk(ctx context.Context, base url.Values) (*Result, error) {
	// Copy so the caller's query is never modified
	query := url.Values{}
	for key, values := range base {
		query[key] = append([]string(nil), values...)
	}
	query.Del(PageParam)

	result := &Result{
		Cards: make([]card.Card, 0),
	}
	page := 1

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		raw, err := w.fetcher.Fetch(ctx, w.config.URL, query)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch page %d: %w", page, err)
		}
		result.Pages++

		doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("failed to parse page %d: %w", page, err)
		}

		pageResult := extract.ExtractPage(doc, w.config.Extract)
		result.Cards = append(result.Cards, pageResult.Cards...)
		for _, failure := range pageResult.Failures {
			log.Printf("WARN: Skipping card %d on page %d: %v", failure.Position, page, failure.Err)
			result.Failures = append(result.Failures, PageFailure{Page: page, Failure: failure})
		}
		log.Printf("INFO: Page %d: %d cards, %d failures", page, len(pageResult.Cards), len(pageResult.Failures))

		last, err := IsLastPage(doc)
		if err != nil {
			log.Printf("INFO: Stopping after page %d: %v", page, err)
			return result, nil
		}
		if last {
			log.Printf("INFO: Page %d is the last page", page)
			return result, nil
		}

		if w.config.MaxPages > 0 && result.Pages >= w.config.MaxPages {
			log.Printf("WARN: Stopping after %d pages (page limit reached)", result.Pages)
			result.Truncated = true
			return result, nil
		}

		page++
		query.Set(PageParam, strconv.Itoa(page))
	}
}

// IsLastPage inspects the pagination region of a page. The page is the last
// one when the final control in the region is marked disabled, either on the
// innermost element or on any of its ancestors inside the region. A missing
// or empty region returns ErrPaginationUnavailable.
func IsLastPage(doc *goquery.Document) (bool, error) {
	region := doc.Find(PaginationSelector).First()
	if region.Length() == 0 {
		return false, fmt.Errorf("%w: no %s region", ErrPaginationUnavailable, PaginationSelector)
	}

	controls := region.Find("*")
	if controls.Length() == 0 {
		return false, fmt.Errorf("%w: region has no controls", ErrPaginationUnavailable)
	}

	last := controls.Last()
	if last.HasClass("disabled") {
		return true, nil
	}
	return last.ParentsUntilSelection(region).HasClass("disabled"), nil
}
