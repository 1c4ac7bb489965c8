package cardstore

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lorkit/combatcards/card"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test helper: create a test card store
func createTestCardStore(t *testing.T) *CardStore {
	store, err := NewCardStore(filepath.Join(t.TempDir(), "out", "combat"))
	require.NoError(t, err, "should create card store")
	return store
}

// Test helper: a valid card with the given name
func createTestCard(name string) card.Card {
	desc := "Draw 1 page"
	return card.Card{
		Name:         name,
		Availability: card.Obtainable,
		Rarity:       card.Uncommon,
		Kind:         card.Ranged,
		Cost:         2,
		ImageURL:     "https://catalog.test/img.png",
		Description:  &desc,
		Actions: []card.Action{
			{Group: card.Offensive, Kind: card.Pierce, Min: 2, Max: 4},
		},
	}
}

// TestSanitizeFilename_Tokens verifies each reserved character maps to its
// token
func TestSanitizeFilename_Tokens(t *testing.T) {
	cases := map[string]string{
		"?":  "[question_mark]",
		"/":  "[slash]",
		"\\": "[back_slash]",
		":":  "[colon]",
		"*":  "[asterisk]",
		"<":  "[left_angle_bracket]",
		">":  "[right_angle_bracket]",
		"|":  "[vertical_bar]",
	}

	for raw, want := range cases {
		assert.Equal(t, want, SanitizeFilename(raw), raw)
	}
}

// Property test: reserved characters map to distinct tokens and never
// survive sanitizing
func TestSanitizeFilename_NoReservedCharacters(t *testing.T) {
	reserved := []string{"?", "/", "\\", ":", "*", "<", ">", "|"}

	tokens := map[string]bool{}
	for _, r := range reserved {
		tokens[SanitizeFilename(r)] = true
	}
	assert.Len(t, tokens, len(reserved), "tokens should be distinct")

	inputs := []string{
		"What?",
		"Yes/No",
		`a\b`,
		"Time: Now",
		"**Star**",
		"<Rage>",
		"Pipe|Dream",
		`?/\:*<>|`,
		"Plain Name",
	}
	for _, input := range inputs {
		out := SanitizeFilename(input)
		for _, r := range reserved {
			assert.NotContains(t, out, r, "input %q", input)
		}
	}
}

// TestSanitizeFilename_KeepsOtherCharacters verifies unreserved text is left
// as is
func TestSanitizeFilename_KeepsOtherCharacters(t *testing.T) {
	assert.Equal(t, "Ardor Blossom Moth", SanitizeFilename("Ardor Blossom Moth"))
	assert.Equal(t, "Öffnung – 1.json", SanitizeFilename("Öffnung – 1.json"))
	assert.Equal(t, "Why[question_mark] Why Not[question_mark]", SanitizeFilename("Why? Why Not?"))
}

// TestNewCardStore_CreatesDirectory verifies nested directories are created
func TestNewCardStore_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")

	store, err := NewCardStore(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, store.Dir())

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

// TestAdd_WritesSanitizedFile verifies the file name and content
func TestAdd_WritesSanitizedFile(t *testing.T) {
	store := createTestCardStore(t)
	c := createTestCard("Why?")

	filename, err := store.Add(c)
	require.NoError(t, err)
	assert.Equal(t, "Why[question_mark].json", filename)

	data, err := os.ReadFile(filepath.Join(store.Dir(), filename))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "{\n    \"name\": \"Why?\""))

	want, err := card.Marshal(c)
	require.NoError(t, err)
	assert.Equal(t, string(want), string(data))
}

// TestAdd_Overwrites verifies a card with the same name replaces the file
func TestAdd_Overwrites(t *testing.T) {
	store := createTestCardStore(t)

	first := createTestCard("Same")
	_, err := store.Add(first)
	require.NoError(t, err)

	second := createTestCard("Same")
	second.Cost = 5
	_, err = store.Add(second)
	require.NoError(t, err)

	got, err := store.Get("Same")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 5, got.Cost)
}

// TestAddAll_CollectsErrors verifies a failed write does not stop the rest
func TestAddAll_CollectsErrors(t *testing.T) {
	store := createTestCardStore(t)

	// A directory with the card's file name makes the write fail
	require.NoError(t, os.Mkdir(filepath.Join(store.Dir(), "Blocked.json"), 0o755))

	result := store.AddAll([]card.Card{
		createTestCard("One"),
		createTestCard("Blocked"),
		createTestCard("Two"),
	})

	assert.Equal(t, []CardFile{
		{Name: "One", Filename: "One.json"},
		{Name: "Two", Filename: "Two.json"},
	}, result.Files)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "Blocked", result.Errors[0].Name)
	assert.Contains(t, result.Errors[0].Error(), "Blocked")
}

// TestList_RoundTrip verifies written cards read back unchanged
func TestList_RoundTrip(t *testing.T) {
	store := createTestCardStore(t)
	cards := []card.Card{createTestCard("Alpha"), createTestCard("Beta: Two")}

	result := store.AddAll(cards)
	require.Empty(t, result.Errors)

	listed, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, listed.Errors)
	assert.Equal(t, cards, listed.Cards)
}

// TestList_SortedByName verifies cards come back in name order, not file
// order
func TestList_SortedByName(t *testing.T) {
	store := createTestCardStore(t)
	result := store.AddAll([]card.Card{
		createTestCard("Zed?"),
		createTestCard("Mid"),
		createTestCard("Alpha"),
	})
	require.Empty(t, result.Errors)

	listed, err := store.List()
	require.NoError(t, err)

	names := make([]string, 0, len(listed.Cards))
	for _, c := range listed.Cards {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"Alpha", "Mid", "Zed?"}, names)
}

// TestList_CollectsCorruptFiles verifies bad files are reported, not fatal
func TestList_CollectsCorruptFiles(t *testing.T) {
	store := createTestCardStore(t)
	_, err := store.Add(createTestCard("Good"))
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(store.Dir(), "bad.json"), []byte("{not json"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(store.Dir(), "notes.txt"), []byte("ignored"), 0o644))

	listed, err := store.List()
	require.NoError(t, err)
	require.Len(t, listed.Cards, 1)
	assert.Equal(t, "Good", listed.Cards[0].Name)
	require.Len(t, listed.Errors, 1)
	assert.Equal(t, "bad.json", listed.Errors[0].Filename)
}

// TestList_UnreadableDirectory verifies a missing directory is a total
// failure
func TestList_UnreadableDirectory(t *testing.T) {
	store := createTestCardStore(t)
	require.NoError(t, os.RemoveAll(store.Dir()))

	_, err := store.List()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read storage directory")
}

// TestGet_NotFound verifies a missing card returns the not-found sentinel
func TestGet_NotFound(t *testing.T) {
	store := createTestCardStore(t)

	got, err := store.Get("Nothing")
	assert.ErrorIs(t, err, ErrCardNotFound)
	assert.Nil(t, got)
}

// TestGet_Corrupt verifies a file that does not decode is an error, not a
// missing card
func TestGet_Corrupt(t *testing.T) {
	store := createTestCardStore(t)
	require.NoError(t, os.WriteFile(filepath.Join(store.Dir(), "Broken.json"), []byte("{"), 0o644))

	_, err := store.Get("Broken")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCardNotFound)
}

// TestDelete verifies removal and the not-found sentinel
func TestDelete(t *testing.T) {
	store := createTestCardStore(t)
	_, err := store.Add(createTestCard("Gone/Soon"))
	require.NoError(t, err)

	require.NoError(t, store.Delete("Gone/Soon"))

	_, err = store.Get("Gone/Soon")
	assert.ErrorIs(t, err, ErrCardNotFound)

	assert.ErrorIs(t, store.Delete("Gone/Soon"), ErrCardNotFound)
}
