// Package notelist keeps the sidebar state of the notes client: the
// loaded notes, the selection and the search query.
package notelist

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"privatenotes/internal/note/model"
	"privatenotes/pkg/logger"
)

// API is the part of the notes gateway the list needs.
type API interface {
	GetAll(ctx context.Context) ([]model.Note, error)
	Delete(ctx context.Context, id string) error
}

type Store struct {
	mu         sync.RWMutex
	notes      []model.Note
	selectedID string
	query      string
	creating   bool
}

func New() *Store {
	return &Store{notes: []model.Note{}}
}

// Replace swaps in a freshly loaded list. A selection that no longer
// exists is cleared.
func (s *Store) Replace(notes []model.Note) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes = append([]model.Note{}, notes...)
	if s.selectedID != "" && s.indexLocked(s.selectedID) < 0 {
		s.selectedID = ""
	}
}

// Created puts a new note on top and opens it.
func (s *Store) Created(n model.Note) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexLocked(n.ID); i >= 0 {
		s.notes = append(s.notes[:i], s.notes[i+1:]...)
	}
	s.notes = append([]model.Note{n}, s.notes...)
	s.selectedID = n.ID
	s.creating = false
}

// Updated replaces the stored copy and selects it.
func (s *Store) Updated(n model.Note) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upsertLocked(n)
	s.selectedID = n.ID
	s.creating = false
}

func (s *Store) Removed(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(id)
}

// Apply folds a change-feed event into the list without moving the
// selection, unless the selected note was deleted.
func (s *Store) Apply(ev model.NoteEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch ev.Type {
	case model.NoteCreatedType, model.NoteUpdatedType:
		if ev.Note != nil {
			s.upsertLocked(*ev.Note)
		}
	case model.NoteDeletedType:
		s.removeLocked(ev.NoteID)
	}
}

func (s *Store) Select(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedID = id
	s.creating = false
}

func (s *Store) StartCreating() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedID = ""
	s.creating = true
}

func (s *Store) CancelEditing() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedID = ""
	s.creating = false
}

func (s *Store) SetQuery(q string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query = q
}

func (s *Store) Query() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.query
}

func (s *Store) Creating() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creating
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.notes)
}

// Visible returns the notes whose title or content contains the query,
// ignoring case, in list order.
func (s *Store) Visible() []model.Note {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q := strings.ToLower(s.query)
	out := make([]model.Note, 0, len(s.notes))
	for _, n := range s.notes {
		if q == "" || strings.Contains(strings.ToLower(n.Title), q) || strings.Contains(strings.ToLower(n.Content), q) {
			out = append(out, n)
		}
	}
	return out
}

func (s *Store) Selected() *model.Note {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexLocked(s.selectedID); i >= 0 {
		n := s.notes[i]
		return &n
	}
	return nil
}

// Load fetches the caller's notes. Failures are logged, not shown, and
// leave the current list in place.
func (s *Store) Load(ctx context.Context, api API) error {
	notes, err := api.GetAll(ctx)
	if err != nil {
		logger.Sugar.Errorf("Error fetching notes: %v", err)
		return err
	}
	s.Replace(notes)
	return nil
}

// Delete removes a note remotely, then locally. Failures are logged and
// the note stays in the list.
func (s *Store) Delete(ctx context.Context, api API, id string) error {
	if err := api.Delete(ctx, id); err != nil {
		logger.Sugar.Errorf("Error deleting note %s: %v", id, err)
		return err
	}
	s.Removed(id)
	return nil
}

func (s *Store) upsertLocked(n model.Note) {
	if i := s.indexLocked(n.ID); i >= 0 {
		s.notes[i] = n
		return
	}
	s.notes = append([]model.Note{n}, s.notes...)
}

func (s *Store) removeLocked(id string) {
	if i := s.indexLocked(id); i >= 0 {
		s.notes = append(s.notes[:i], s.notes[i+1:]...)
	}
	if s.selectedID == id {
		s.selectedID = ""
	}
}

func (s *Store) indexLocked(id string) int {
	if id == "" {
		return -1
	}
	for i := range s.notes {
		if s.notes[i].ID == id {
			return i
		}
	}
	return -1
}

// FormatDate labels t relative to now by whole elapsed days.
func FormatDate(t, now time.Time) string {
	days := int(now.Sub(t) / (24 * time.Hour))
	switch {
	case days <= 0:
		return "Today"
	case days == 1:
		return "Yesterday"
	case days < 7:
		return fmt.Sprintf("%d days ago", days)
	default:
		return t.Format("Jan 2, 2006")
	}
}
