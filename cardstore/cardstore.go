package cardstore

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/lorkit/combatcards/card"
)

// ErrCardNotFound is returned by Get and Delete for a name with no card file.
var ErrCardNotFound = errors.New("card not found")

// Reserved filename characters and the tokens that replace them.
var filenameReplacer = strings.NewReplacer(
	"?", "[question_mark]",
	"/", "[slash]",
	"\\", "[back_slash]",
	":", "[colon]",
	"*", "[asterisk]",
	"<", "[left_angle_bracket]",
	">", "[right_angle_bracket]",
	"|", "[vertical_bar]",
)

// SanitizeFilename replaces characters that are unsafe in file names with
// fixed bracketed tokens.
func SanitizeFilename(name string) string {
	return filenameReplacer.Replace(name)
}

// CardStore represents a collection of cards stored in a directory, one JSON
// file per card.
type CardStore struct {
	storageDir string
}

// WriteError describes a failure to write a single card file.
type WriteError struct {
	Name string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("%s: %v", e.Name, e.Err)
}

// CardFile pairs a card name with the file it was written to.
type CardFile struct {
	Name     string
	Filename string
}

// WriteResult contains the files written by AddAll, in input order, and any
// per-card errors that occurred during the operation.
type WriteResult struct {
	Files  []CardFile
	Errors []WriteError
}

// ReadError describes a failure to read a single card file.
type ReadError struct {
	Filename string
	Err      error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("%s: %v", e.Filename, e.Err)
}

// ListResult contains the results of listing cards, including any per-file
// errors that occurred during the operation.
type ListResult struct {
	Cards  []card.Card
	Errors []ReadError
}

// NewCardStore creates a new card store with the specified storage directory
func NewCardStore(storageDir string) (*CardStore, error) {
	// Create the storage directory if it doesn't exist
	if err := os.MkdirAll(storageDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	return &CardStore{
		storageDir: storageDir,
	}, nil
}

// Dir returns the storage directory.
func (cs *CardStore) Dir() string {
	return cs.storageDir
}

// Filename returns the file name a card with the given name is stored under.
func Filename(name string) string {
	return SanitizeFilename(name + ".json")
}

// Add saves a card to the store, overwriting any card with the same name,
// and returns the file name it was written to.
func (cs *CardStore) Add(c card.Card) (string, error) {
	filename := Filename(c.Name)

	data, err := card.Marshal(c)
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(filepath.Join(cs.storageDir, filename), data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write card: %w", err)
	}

	return filename, nil
}

// AddAll saves every card. A card that cannot be written is collected in the
// result's Errors slice and does not stop the remaining cards.
func (cs *CardStore) AddAll(cards []card.Card) *WriteResult {
	result := &WriteResult{}
	for _, c := range cards {
		filename, err := cs.Add(c)
		if err != nil {
			result.Errors = append(result.Errors, WriteError{Name: c.Name, Err: err})
			continue
		}
		result.Files = append(result.Files, CardFile{Name: c.Name, Filename: filename})
	}
	return result
}

// List reads every card file in the store, sorted by card name. A file that
// cannot be read or decoded is reported in the result's Errors slice and the
// remaining files are still read. The error return is reserved for an
// unreadable storage directory.
func (cs *CardStore) List() (*ListResult, error) {
	entries, err := os.ReadDir(cs.storageDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read storage directory: %w", err)
	}

	result := &ListResult{Cards: make([]card.Card, 0, len(entries))}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}

		c, err := cs.readCard(entry.Name())
		if err != nil {
			result.Errors = append(result.Errors, ReadError{Filename: entry.Name(), Err: err})
			continue
		}
		result.Cards = append(result.Cards, c)
	}

	sort.SliceStable(result.Cards, func(i, j int) bool {
		return result.Cards[i].Name < result.Cards[j].Name
	})

	return result, nil
}

// Get reads the card stored under the given card name. It returns
// ErrCardNotFound when no file exists for that name.
func (cs *CardStore) Get(name string) (*card.Card, error) {
	c, err := cs.readCard(Filename(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrCardNotFound, name)
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Delete removes the card stored under the given card name. It returns
// ErrCardNotFound when no file exists for that name.
func (cs *CardStore) Delete(name string) error {
	err := os.Remove(filepath.Join(cs.storageDir, Filename(name)))
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrCardNotFound, name)
	}
	if err != nil {
		return fmt.Errorf("failed to delete card: %w", err)
	}
	return nil
}

// readCard decodes one card file. Read errors keep their fs identity so
// callers can tell a missing file apart.
func (cs *CardStore) readCard(filename string) (card.Card, error) {
	data, err := os.ReadFile(filepath.Join(cs.storageDir, filename))
	if err != nil {
		return card.Card{}, fmt.Errorf("failed to read card: %w", err)
	}
	return card.Unmarshal(data)
}
