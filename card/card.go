package card

import (
	"errors"
	"fmt"
)

// Availability describes how a card can be acquired.
type Availability string

const (
	Collectable Availability = "collectable"
	Obtainable  Availability = "obtainable"
	EnemyOnly   Availability = "enemy_only"
)

// Rarity is the rarity tier printed on a card.
type Rarity string

const (
	Common   Rarity = "common"
	Uncommon Rarity = "uncommon"
	Rare     Rarity = "rare"
	Unique   Rarity = "unique"
)

// Kind is the targeting type of a card.
type Kind string

const (
	Melee          Kind = "melee"
	Ranged         Kind = "ranged"
	Special        Kind = "special"
	Immediate      Kind = "immediate"
	MassSummation  Kind = "mass_summation"
	MassIndividual Kind = "mass_individual"
)

// ActionGroup tells whether a die attacks, defends or waits as a counter.
type ActionGroup string

const (
	Offensive ActionGroup = "offensive"
	Defensive ActionGroup = "defensive"
	Counter   ActionGroup = "counter"
)

// ActionKind is the damage or defense type of a single die.
type ActionKind string

const (
	Slash  ActionKind = "slash"
	Pierce ActionKind = "pierce"
	Blunt  ActionKind = "blunt"
	Evade  ActionKind = "evade"
	Guard  ActionKind = "guard"
)

// Action is one effect line (a die) of a card. Description and
// HTMLDescription are either both set or both nil.
type Action struct {
	Group           ActionGroup `json:"group"`
	Kind            ActionKind  `json:"type"`
	Min             int         `json:"min"`
	Max             int         `json:"max"`
	Description     *string     `json:"description"`
	HTMLDescription *string     `json:"html_description"`
}

// Card is a single combat page from the catalog. Actions is never nil on a
// card that was extracted or decoded; a nil slice is written as an empty
// array.
type Card struct {
	Name             string       `json:"name"`
	Availability     Availability `json:"availability"`
	Rarity           Rarity       `json:"rarity"`
	Kind             Kind         `json:"type"`
	IsSpecialVariant bool         `json:"is_special_variant"`
	Cost             int          `json:"cost"`
	ImageURL         string       `json:"image"`
	Description      *string      `json:"description"`
	Actions          []Action     `json:"actions"`
}

// Validate checks the invariants every extracted action holds.
func (a Action) Validate() error {
	if !a.Group.valid() {
		return &UnknownVocabularyError{Family: FamilyActionGroup, Value: string(a.Group)}
	}
	if !a.Kind.valid() {
		return &UnknownVocabularyError{Family: FamilyActionKind, Value: string(a.Kind)}
	}
	if a.Min < 0 || a.Max < 0 {
		return fmt.Errorf("range %d-%d must not be negative", a.Min, a.Max)
	}
	if a.Min > a.Max {
		return fmt.Errorf("range minimum %d exceeds maximum %d", a.Min, a.Max)
	}
	if (a.Description == nil) != (a.HTMLDescription == nil) {
		return errors.New("description and html_description must be set together")
	}
	return nil
}

// Validate checks the invariants every extracted card holds, including those
// of its actions.
func (c Card) Validate() error {
	if c.Name == "" {
		return errors.New("name is empty")
	}
	if !c.Availability.valid() {
		return &UnknownVocabularyError{Family: FamilyAvailability, Value: string(c.Availability)}
	}
	if !c.Rarity.valid() {
		return &UnknownVocabularyError{Family: FamilyRarity, Value: string(c.Rarity)}
	}
	if !c.Kind.valid() {
		return &UnknownVocabularyError{Family: FamilyKind, Value: string(c.Kind)}
	}
	if c.Cost < 0 {
		return fmt.Errorf("cost %d must not be negative", c.Cost)
	}
	for i, action := range c.Actions {
		if err := action.Validate(); err != nil {
			return fmt.Errorf("action %d: %w", i+1, err)
		}
	}
	return nil
}
