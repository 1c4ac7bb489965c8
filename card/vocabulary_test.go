package card

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestParseAvailability_Known verifies every availability literal maps
func TestParseAvailability_Known(t *testing.T) {
	cases := map[string]Availability{
		"Collectable": Collectable,
		"Obtainable":  Obtainable,
		"EnemyOnly":   EnemyOnly,
	}

	for raw, want := range cases {
		got, err := ParseAvailability(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}
}

// TestParseRarity_Known verifies every rarity literal maps
func TestParseRarity_Known(t *testing.T) {
	cases := map[string]Rarity{
		"Common":   Common,
		"Uncommon": Uncommon,
		"Rare":     Rare,
		"Unique":   Unique,
	}

	for raw, want := range cases {
		got, err := ParseRarity(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}
}

// TestParseKind_Known verifies every icon title maps, including the
// hyphenated mass kinds
func TestParseKind_Known(t *testing.T) {
	cases := map[string]Kind{
		"Melee":           Melee,
		"Ranged":          Ranged,
		"Special":         Special,
		"Immediate":       Immediate,
		"Mass-Summation":  MassSummation,
		"Mass-Individual": MassIndividual,
	}

	for raw, want := range cases {
		got, err := ParseKind(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}
}

// TestParseActionGroup_Known verifies the row data-type literals
func TestParseActionGroup_Known(t *testing.T) {
	cases := map[string]ActionGroup{
		"Atk":     Offensive,
		"Def":     Defensive,
		"Standby": Counter,
	}

	for raw, want := range cases {
		got, err := ParseActionGroup(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}
}

// TestParseActionKind_Known verifies the row data-detail literals
func TestParseActionKind_Known(t *testing.T) {
	cases := map[string]ActionKind{
		"Slash":  Slash,
		"Pierce": Pierce,
		"Blunt":  Blunt,
		"Evade":  Evade,
		"Guard":  Guard,
	}

	for raw, want := range cases {
		got, err := ParseActionKind(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}
}

// Property test: values outside every vocabulary are rejected, never
// defaulted
func TestParse_UnknownValuesFail(t *testing.T) {
	unknown := []string{
		"",
		" ",
		"collectable", // canonical form is not a markup literal
		"RARE",
		"Mass Summation",
		"Attack",
		"slash",
		"Collectable ",
	}

	parsers := map[Family]func(string) error{
		FamilyAvailability: func(s string) error { _, err := ParseAvailability(s); return err },
		FamilyRarity:       func(s string) error { _, err := ParseRarity(s); return err },
		FamilyKind:         func(s string) error { _, err := ParseKind(s); return err },
		FamilyActionGroup:  func(s string) error { _, err := ParseActionGroup(s); return err },
		FamilyActionKind:   func(s string) error { _, err := ParseActionKind(s); return err },
	}

	for family, parse := range parsers {
		for _, raw := range unknown {
			err := parse(raw)
			require.Error(t, err, "%s should reject %q", family, raw)
			assert.ErrorIs(t, err, ErrUnknownVocabulary)

			var vocabErr *UnknownVocabularyError
			require.True(t, errors.As(err, &vocabErr))
			assert.Equal(t, family, vocabErr.Family)
			assert.Equal(t, raw, vocabErr.Value)
		}
	}
}

// TestUnknownVocabularyError_Message verifies the message names family and
// value
func TestUnknownVocabularyError_Message(t *testing.T) {
	_, err := ParseRarity("Mythic")

	require.Error(t, err)
	assert.Equal(t, `unknown rarity value "Mythic"`, err.Error())
}

// TestParseAvailability_ZeroValueOnError verifies no value leaks out on
// failure
func TestParseAvailability_ZeroValueOnError(t *testing.T) {
	got, err := ParseAvailability("Legendary")

	require.Error(t, err)
	assert.Equal(t, Availability(""), got)
}
