package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"privatenotes/internal/note/model"
)

// MemoryRepository keeps notes in process memory. It backs the memory
// store driver and tests.
type MemoryRepository struct {
	mu    sync.RWMutex
	notes map[string]*memoryRow
	seq   uint64
	now   func() time.Time
}

type memoryRow struct {
	note model.Note
	seq  uint64
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		notes: make(map[string]*memoryRow),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (r *MemoryRepository) List(_ context.Context, userID string) ([]model.Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rows := make([]*memoryRow, 0)
	for _, row := range r.notes {
		if row.note.UserID == userID {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].note.CreatedAt.Equal(rows[j].note.CreatedAt) {
			return rows[i].note.CreatedAt.After(rows[j].note.CreatedAt)
		}
		return rows[i].seq > rows[j].seq
	})

	notes := make([]model.Note, len(rows))
	for i, row := range rows {
		notes[i] = row.note
	}
	return notes, nil
}

func (r *MemoryRepository) Get(_ context.Context, id, userID string) (*model.Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	row, ok := r.notes[id]
	if !ok || row.note.UserID != userID {
		return nil, ErrNotFound
	}
	n := row.note
	return &n, nil
}

func (r *MemoryRepository) Create(_ context.Context, userID, title, content string) (*model.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.seq++
	row := &memoryRow{
		seq: r.seq,
		note: model.Note{
			ID:        uuid.NewString(),
			UserID:    userID,
			Title:     title,
			Content:   content,
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
	r.notes[row.note.ID] = row
	n := row.note
	return &n, nil
}

func (r *MemoryRepository) Update(_ context.Context, id, userID, title, content string) (*model.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	row, ok := r.notes[id]
	if !ok || row.note.UserID != userID {
		return nil, ErrNotFound
	}
	row.note.Title = title
	row.note.Content = content
	row.note.UpdatedAt = r.now()
	n := row.note
	return &n, nil
}

func (r *MemoryRepository) Delete(_ context.Context, id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if row, ok := r.notes[id]; ok && row.note.UserID == userID {
		delete(r.notes, id)
	}
	return nil
}
