package service

import (
	"context"
	"errors"

	"privatenotes/internal/note/model"
	"privatenotes/internal/note/repository"
	"privatenotes/pkg/apperr"
)

const (
	msgFieldsRequired = "Title and content are required"
	msgNotFound       = "Note not found"
)

// Broadcaster receives an event after every successful write.
type Broadcaster interface {
	Publish(event model.NoteEvent)
}

type NoteService struct {
	Repo   repository.Repository
	Events Broadcaster
}

// NewNoteService wires the store and an optional event sink.
func NewNoteService(repo repository.Repository, events Broadcaster) *NoteService {
	return &NoteService{Repo: repo, Events: events}
}

func (s *NoteService) List(ctx context.Context, userID string) ([]model.Note, error) {
	notes, err := s.Repo.List(ctx, userID)
	if err != nil {
		TrackNoteOperation("list", err)
		return nil, apperr.FromCollaborator(err)
	}
	TrackNoteOperation("list", nil)
	return notes, nil
}

func (s *NoteService) Get(ctx context.Context, id, userID string) (*model.Note, error) {
	n, err := s.Repo.Get(ctx, id, userID)
	TrackNoteOperation("get", err)
	if err != nil {
		return nil, storeError(err)
	}
	return n, nil
}

func (s *NoteService) Create(ctx context.Context, userID string, in model.NoteInput) (*model.Note, error) {
	if err := in.Validate(); err != nil {
		TrackNoteOperation("create", errInvalid)
		return nil, apperr.Wrap(apperr.InvalidInput, msgFieldsRequired, err)
	}

	n, err := s.Repo.Create(ctx, userID, in.Title, in.Content)
	TrackNoteOperation("create", err)
	if err != nil {
		return nil, apperr.FromCollaborator(err)
	}
	s.publish(model.NoteCreatedType, n.ID, userID, n)
	return n, nil
}

func (s *NoteService) Update(ctx context.Context, id, userID string, in model.NoteInput) (*model.Note, error) {
	if err := in.Validate(); err != nil {
		TrackNoteOperation("update", errInvalid)
		return nil, apperr.Wrap(apperr.InvalidInput, msgFieldsRequired, err)
	}

	n, err := s.Repo.Update(ctx, id, userID, in.Title, in.Content)
	TrackNoteOperation("update", err)
	if err != nil {
		return nil, storeError(err)
	}
	s.publish(model.NoteUpdatedType, n.ID, userID, n)
	return n, nil
}

// Delete does not distinguish a missing note from a deleted one.
func (s *NoteService) Delete(ctx context.Context, id, userID string) error {
	err := s.Repo.Delete(ctx, id, userID)
	TrackNoteOperation("delete", err)
	if err != nil {
		return apperr.FromCollaborator(err)
	}
	s.publish(model.NoteDeletedType, id, userID, nil)
	return nil
}

func (s *NoteService) publish(eventType, noteID, userID string, n *model.Note) {
	if s.Events == nil {
		return
	}
	s.Events.Publish(model.NoteEvent{Type: eventType, NoteID: noteID, UserID: userID, Note: n})
}

func storeError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.Wrap(apperr.NotFound, msgNotFound, err)
	}
	return apperr.FromCollaborator(err)
}
