package extract

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/lorkit/combatcards/card"
)

// RecordSelector matches one card node on a catalog page.
const RecordSelector = "lor-card"

// Custom errors for card extraction
var (
	ErrMalformedRecord = errors.New("malformed record structure")
	ErrMalformedRange  = errors.New("malformed range text")
)

// RecordError describes why a single card could not be extracted. Name holds
// whatever part of the card name was read before the failure, and may be
// empty.
type RecordError struct {
	Name string
	Err  error
}

func (e *RecordError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("unnamed card: %v", e.Err)
	}
	return fmt.Sprintf("card %q: %v", e.Name, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// RangeError reports an action range cell that is not "<min>-<max>".
type RangeError struct {
	Text string
	Err  error
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("range %q: %v", e.Text, e.Err)
}

func (e *RangeError) Unwrap() error {
	return e.Err
}

func (e *RangeError) Is(target error) bool {
	return target == ErrMalformedRange
}

// Config controls how cards are extracted from a page.
type Config struct {
	// Origin is prefixed to the relative image paths found in markup
	Origin string
	// Maximum number of cards extracted in parallel on one page
	Workers int
}

// NewConfig creates an extraction config that resolves images against origin
// and extracts cards sequentially.
func NewConfig(origin string) Config {
	return Config{
		Origin:  origin,
		Workers: 1,
	}
}

func missing(what string) error {
	return fmt.Errorf("%w: missing %s", ErrMalformedRecord, what)
}

func requireAttr(s *goquery.Selection, name string) (string, error) {
	value, ok := s.Attr(name)
	if !ok {
		return "", missing(name + " attribute")
	}
	return value, nil
}

// ExtractCard builds a card from a single lor-card node. It either returns a
// card that satisfies every model invariant or a *RecordError; it never
// returns a partially filled card.
func ExtractCard(s *goquery.Selection, cfg Config) (card.Card, error) {
	c, err := extractCard(s, cfg)
	if err != nil {
		return card.Card{}, &RecordError{Name: c.Name, Err: err}
	}
	return c, nil
}

// extractCard fills c as it goes so the caller can name the card on failure.
func extractCard(s *goquery.Selection, cfg Config) (c card.Card, err error) {
	front := s.Find("lor-card-front").First()
	if front.Length() == 0 {
		return c, missing("lor-card-front")
	}
	heading := front.Find("lor-card-heading").First()
	if heading.Length() == 0 {
		return c, missing("lor-card-heading")
	}

	nameNode := heading.Find("lor-card-name > a > span").First()
	if nameNode.Length() == 0 {
		return c, missing("card name")
	}
	c.Name = strings.TrimSpace(nameNode.Text())
	if c.Name == "" {
		return c, fmt.Errorf("%w: empty card name", ErrMalformedRecord)
	}

	back := s.Find("lor-card-back").First()
	if back.Length() == 0 {
		return c, missing("lor-card-back")
	}

	rawAvailability, err := requireAttr(s, "data-availability")
	if err != nil {
		return c, err
	}
	if c.Availability, err = card.ParseAvailability(rawAvailability); err != nil {
		return c, err
	}

	rawRarity, err := requireAttr(s, "data-rarity")
	if err != nil {
		return c, err
	}
	if c.Rarity, err = card.ParseRarity(rawRarity); err != nil {
		return c, err
	}

	icon := heading.Find("lor-card-icon").First()
	if icon.Length() == 0 {
		return c, missing("lor-card-icon")
	}
	rawKind, err := requireAttr(icon.ChildrenFiltered("i").First(), "title")
	if err != nil {
		return c, err
	}
	if c.Kind, err = card.ParseKind(rawKind); err != nil {
		return c, err
	}

	// An empty data-ego attribute does not mark a variant
	ego, ok := s.Attr("data-ego")
	c.IsSpecialVariant = ok && ego != ""

	costText := strings.TrimSpace(icon.Text())
	cost, err := strconv.Atoi(costText)
	if err != nil {
		return c, fmt.Errorf("%w: cost %q is not an integer", ErrMalformedRecord, costText)
	}
	if cost < 0 {
		return c, fmt.Errorf("%w: cost %d is negative", ErrMalformedRecord, cost)
	}
	c.Cost = cost

	// Description is optional
	if desc := back.Find("lor-card-desc > span > b").First(); desc.Length() > 0 {
		text := desc.Text()
		c.Description = &text
	}

	src, err := requireAttr(front.Find("lor-card-image > a > img").First(), "src")
	if err != nil {
		return c, err
	}
	c.ImageURL = cfg.Origin + src

	table := back.Find("lor-card-desc > table > tbody").First()
	if table.Length() == 0 {
		table = back.Find("lor-card-desc > table").First()
	}
	if table.Length() == 0 {
		return c, missing("action table")
	}

	actions := make([]card.Action, 0)
	var rowErr error
	table.Find("tr").EachWithBreak(func(i int, row *goquery.Selection) bool {
		action, err := extractAction(row)
		if err != nil {
			rowErr = fmt.Errorf("action %d: %w", i+1, err)
			return false
		}
		actions = append(actions, action)
		return true
	})
	if rowErr != nil {
		return c, rowErr
	}
	c.Actions = actions

	if err := c.Validate(); err != nil {
		return c, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}

	return c, nil
}

// extractAction builds one action from a row of the action table.
func extractAction(row *goquery.Selection) (card.Action, error) {
	var a card.Action

	rawGroup, err := requireAttr(row, "data-type")
	if err != nil {
		return a, err
	}
	if a.Group, err = card.ParseActionGroup(rawGroup); err != nil {
		return a, err
	}

	rawKind, err := requireAttr(row, "data-detail")
	if err != nil {
		return a, err
	}
	if a.Kind, err = card.ParseActionKind(rawKind); err != nil {
		return a, err
	}

	// Description is optional, but text and markup come from the same node
	if desc := row.Find("td > span").First(); desc.Length() > 0 {
		markup, err := goquery.OuterHtml(desc)
		if err != nil {
			return a, fmt.Errorf("%w: failed to render action description: %v", ErrMalformedRecord, err)
		}
		text := desc.Text()
		a.Description = &text
		a.HTMLDescription = &markup
	}

	rangeCell := row.Find("td.range").First()
	if rangeCell.Length() == 0 {
		return a, missing("range cell")
	}
	if a.Min, a.Max, err = ParseRange(rangeCell.Text()); err != nil {
		return a, err
	}

	return a, nil
}

// ParseRange parses range text such as "1 - 3". All whitespace is removed
// before splitting on the single hyphen; both bounds must be non-negative
// integers and the minimum must not exceed the maximum.
func ParseRange(text string) (int, int, error) {
	compact := strings.Join(strings.Fields(text), "")

	parts := strings.Split(compact, "-")
	if len(parts) != 2 {
		return 0, 0, &RangeError{Text: text, Err: errors.New("expected two bounds separated by a hyphen")}
	}

	lo, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, &RangeError{Text: text, Err: err}
	}
	hi, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, &RangeError{Text: text, Err: err}
	}

	if lo < 0 || hi < 0 {
		return 0, 0, &RangeError{Text: text, Err: errors.New("bounds must not be negative")}
	}
	if lo > hi {
		return 0, 0, &RangeError{Text: text, Err: fmt.Errorf("minimum %d exceeds maximum %d", lo, hi)}
	}

	return lo, hi, nil
}
