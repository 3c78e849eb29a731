// Package editor implements the round-authoring collaborator: an ordered
// round list with the document operations a desktop editor needs (add,
// duplicate, delete, reorder, field commit) plus dirty tracking and a
// validated save in the canonical authoring format.
package editor

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"blindpick-service/internal/domain"
	"blindpick-service/internal/template"
)

var (
	// ErrLastRound is returned when deleting would leave no rounds.
	ErrLastRound = errors.New("at least one round is required")
	// ErrNoPath is returned by Save when the document was never saved before.
	ErrNoPath = errors.New("document has no file path yet")
	// ErrIndexOutOfRange indicates a round index outside the list.
	ErrIndexOutOfRange = errors.New("round index out of range")
)

// Editor holds one authoring document in memory.
type Editor struct {
	rounds []domain.RoundTemplate
	path   string
	dirty  bool
}

// New starts a fresh document with a single default round.
func New() *Editor {
	return &Editor{rounds: []domain.RoundTemplate{defaultRound(1)}}
}

// Load opens an existing template or authoring file.
func Load(path string) (*Editor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	rounds, err := template.Decode(data)
	if err != nil {
		return nil, err
	}
	return &Editor{rounds: rounds, path: path}, nil
}

// Rounds returns a copy of the current round list.
func (e *Editor) Rounds() []domain.RoundTemplate {
	return append([]domain.RoundTemplate(nil), e.rounds...)
}

// Dirty reports whether there are unsaved changes.
func (e *Editor) Dirty() bool { return e.dirty }

// Path returns the file the document was loaded from or saved to, if any.
func (e *Editor) Path() string { return e.path }

// Add appends a new default round and returns its index.
func (e *Editor) Add() int {
	e.rounds = append(e.rounds, defaultRound(len(e.rounds)+1))
	e.dirty = true
	return len(e.rounds) - 1
}

// Duplicate inserts a copy of round i right after it, with a unique
// "(copy)" title, and returns the copy's index.
func (e *Editor) Duplicate(i int) (int, error) {
	if i < 0 || i >= len(e.rounds) {
		return 0, ErrIndexOutOfRange
	}
	dup := e.rounds[i]
	dup.Title = e.uniqueCopyTitle(dup.Title)
	e.rounds = append(e.rounds[:i+1], append([]domain.RoundTemplate{dup}, e.rounds[i+1:]...)...)
	e.dirty = true
	return i + 1, nil
}

// Delete removes round i, refusing to drop the last remaining round.
func (e *Editor) Delete(i int) error {
	if i < 0 || i >= len(e.rounds) {
		return ErrIndexOutOfRange
	}
	if len(e.rounds) == 1 {
		return ErrLastRound
	}
	e.rounds = append(e.rounds[:i], e.rounds[i+1:]...)
	e.dirty = true
	return nil
}

// MoveUp swaps round i with its predecessor; moving the first round is a no-op.
func (e *Editor) MoveUp(i int) error {
	if i < 0 || i >= len(e.rounds) {
		return ErrIndexOutOfRange
	}
	if i == 0 {
		return nil
	}
	e.rounds[i-1], e.rounds[i] = e.rounds[i], e.rounds[i-1]
	e.dirty = true
	return nil
}

// MoveDown swaps round i with its successor; moving the last round is a no-op.
func (e *Editor) MoveDown(i int) error {
	if i < 0 || i >= len(e.rounds) {
		return ErrIndexOutOfRange
	}
	if i == len(e.rounds)-1 {
		return nil
	}
	e.rounds[i], e.rounds[i+1] = e.rounds[i+1], e.rounds[i]
	e.dirty = true
	return nil
}

// Update commits edited fields into round i. A blank title keeps the old one.
func (e *Editor) Update(i int, r domain.RoundTemplate) error {
	if i < 0 || i >= len(e.rounds) {
		return ErrIndexOutOfRange
	}
	title := strings.TrimSpace(r.Title)
	if title == "" {
		title = e.rounds[i].Title
	}
	e.rounds[i] = domain.RoundTemplate{
		Title: title,
		Video: strings.TrimSpace(r.Video),
		Truth: strings.TrimSpace(r.Truth),
	}
	e.dirty = true
	return nil
}

// Save validates and writes the document back to its file.
func (e *Editor) Save() error {
	if e.path == "" {
		return ErrNoPath
	}
	return e.SaveAs(e.path)
}

// SaveAs validates and writes the document to path, remembering it.
func (e *Editor) SaveAs(path string) error {
	data, err := template.Encode(e.rounds)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	e.path = path
	e.dirty = false
	return nil
}

func (e *Editor) uniqueCopyTitle(title string) string {
	existing := make(map[string]struct{}, len(e.rounds))
	for _, r := range e.rounds {
		existing[r.Title] = struct{}{}
	}
	base := title + " (copy)"
	candidate := base
	for i := 2; ; i++ {
		if _, ok := existing[candidate]; !ok {
			return candidate
		}
		candidate = fmt.Sprintf("%s %d", base, i)
	}
}

func defaultRound(n int) domain.RoundTemplate {
	return domain.RoundTemplate{Title: fmt.Sprintf("Round %d", n)}
}
