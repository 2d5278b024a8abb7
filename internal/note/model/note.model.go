package model

import (
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

type Note struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NoteInput is the body accepted by create and update. Any user_id sent
// by the client is ignored; ownership always comes from the token.
type NoteInput struct {
	Title   string `json:"title" validate:"required"`
	Content string `json:"content" validate:"required"`
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate reports whether both fields are present and non-empty.
func (in NoteInput) Validate() error {
	return validatorInstance().Struct(in)
}

const (
	NoteCreatedType = "NOTE_CREATED"
	NoteUpdatedType = "NOTE_UPDATED"
	NoteDeletedType = "NOTE_DELETED"
)

// NoteEvent is pushed to the owner's open change-feed connections after a
// successful write. Note is nil for deletions.
type NoteEvent struct {
	Type   string `json:"type"`
	NoteID string `json:"note_id"`
	UserID string `json:"user_id"`
	Note   *Note  `json:"note,omitempty"`
}
