package card

import (
	"errors"
	"fmt"
)

// ErrUnknownVocabulary matches every UnknownVocabularyError.
var ErrUnknownVocabulary = errors.New("unknown vocabulary value")

// Family names one of the closed vocabularies a raw string is mapped into.
type Family string

const (
	FamilyAvailability Family = "availability"
	FamilyRarity       Family = "rarity"
	FamilyKind         Family = "card kind"
	FamilyActionGroup  Family = "action group"
	FamilyActionKind   Family = "action kind"
)

// UnknownVocabularyError reports a raw value that is not part of a
// vocabulary.
type UnknownVocabularyError struct {
	Family Family
	Value  string
}

func (e *UnknownVocabularyError) Error() string {
	return fmt.Sprintf("unknown %s value %q", e.Family, e.Value)
}

func (e *UnknownVocabularyError) Is(target error) bool {
	return target == ErrUnknownVocabulary
}

// Raw markup literals, exactly as the catalog prints them.
var (
	availabilityVocabulary = map[string]Availability{
		"Collectable": Collectable,
		"Obtainable":  Obtainable,
		"EnemyOnly":   EnemyOnly,
	}

	rarityVocabulary = map[string]Rarity{
		"Common":   Common,
		"Uncommon": Uncommon,
		"Rare":     Rare,
		"Unique":   Unique,
	}

	kindVocabulary = map[string]Kind{
		"Melee":           Melee,
		"Ranged":          Ranged,
		"Special":         Special,
		"Immediate":       Immediate,
		"Mass-Summation":  MassSummation,
		"Mass-Individual": MassIndividual,
	}

	actionGroupVocabulary = map[string]ActionGroup{
		"Atk":     Offensive,
		"Def":     Defensive,
		"Standby": Counter,
	}

	actionKindVocabulary = map[string]ActionKind{
		"Slash":  Slash,
		"Pierce": Pierce,
		"Blunt":  Blunt,
		"Evade":  Evade,
		"Guard":  Guard,
	}
)

func lookup[T any](vocabulary map[string]T, family Family, raw string) (T, error) {
	value, ok := vocabulary[raw]
	if !ok {
		var zero T
		return zero, &UnknownVocabularyError{Family: family, Value: raw}
	}
	return value, nil
}

// ParseAvailability maps a data-availability attribute value.
func ParseAvailability(raw string) (Availability, error) {
	return lookup(availabilityVocabulary, FamilyAvailability, raw)
}

// ParseRarity maps a data-rarity attribute value.
func ParseRarity(raw string) (Rarity, error) {
	return lookup(rarityVocabulary, FamilyRarity, raw)
}

// ParseKind maps the title of a card's heading icon.
func ParseKind(raw string) (Kind, error) {
	return lookup(kindVocabulary, FamilyKind, raw)
}

// ParseActionGroup maps the data-type attribute of an action row.
func ParseActionGroup(raw string) (ActionGroup, error) {
	return lookup(actionGroupVocabulary, FamilyActionGroup, raw)
}

// ParseActionKind maps the data-detail attribute of an action row.
func ParseActionKind(raw string) (ActionKind, error) {
	return lookup(actionKindVocabulary, FamilyActionKind, raw)
}

func (a Availability) valid() bool {
	switch a {
	case Collectable, Obtainable, EnemyOnly:
		return true
	}
	return false
}

func (r Rarity) valid() bool {
	switch r {
	case Common, Uncommon, Rare, Unique:
		return true
	}
	return false
}

func (k Kind) valid() bool {
	switch k {
	case Melee, Ranged, Special, Immediate, MassSummation, MassIndividual:
		return true
	}
	return false
}

func (g ActionGroup) valid() bool {
	switch g {
	case Offensive, Defensive, Counter:
		return true
	}
	return false
}

func (k ActionKind) valid() bool {
	switch k {
	case Slash, Pierce, Blunt, Evade, Guard:
		return true
	}
	return false
}

// The UnmarshalText methods accept only the canonical JSON literals, so a
// decoded card can never carry a value outside its vocabulary.

func (a *Availability) UnmarshalText(text []byte) error {
	v := Availability(text)
	if !v.valid() {
		return &UnknownVocabularyError{Family: FamilyAvailability, Value: string(text)}
	}
	*a = v
	return nil
}

func (r *Rarity) UnmarshalText(text []byte) error {
	v := Rarity(text)
	if !v.valid() {
		return &UnknownVocabularyError{Family: FamilyRarity, Value: string(text)}
	}
	*r = v
	return nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	v := Kind(text)
	if !v.valid() {
		return &UnknownVocabularyError{Family: FamilyKind, Value: string(text)}
	}
	*k = v
	return nil
}

func (g *ActionGroup) UnmarshalText(text []byte) error {
	v := ActionGroup(text)
	if !v.valid() {
		return &UnknownVocabularyError{Family: FamilyActionGroup, Value: string(text)}
	}
	*g = v
	return nil
}

func (k *ActionKind) UnmarshalText(text []byte) error {
	v := ActionKind(text)
	if !v.valid() {
		return &UnknownVocabularyError{Family: FamilyActionKind, Value: string(text)}
	}
	*k = v
	return nil
}
