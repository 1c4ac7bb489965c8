package card

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// cardAlias has Card's fields and tags without its methods.
type cardAlias Card

// MarshalJSON writes the canonical card shape. Absent optional values are
// written as null and actions is always an array.
func (c Card) MarshalJSON() ([]byte, error) {
	alias := cardAlias(c)
	if alias.Actions == nil {
		alias.Actions = []Action{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(alias); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// UnmarshalJSON decodes the canonical card shape and rejects cards that
// break the model's invariants. A missing or null actions value decodes to an
// empty slice.
func (c *Card) UnmarshalJSON(data []byte) error {
	var alias cardAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	if alias.Actions == nil {
		alias.Actions = []Action{}
	}
	if err := Card(alias).Validate(); err != nil {
		return fmt.Errorf("invalid card: %w", err)
	}
	*c = Card(alias)
	return nil
}

// Marshal renders a card the way it is written to disk: four-space indent,
// markup left unescaped, trailing newline.
func Marshal(c Card) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(c); err != nil {
		return nil, fmt.Errorf("failed to marshal card: %w", err)
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a card written by Marshal.
func Unmarshal(data []byte) (Card, error) {
	var c Card
	if err := json.Unmarshal(data, &c); err != nil {
		return Card{}, fmt.Errorf("failed to unmarshal card: %w", err)
	}
	return c, nil
}
