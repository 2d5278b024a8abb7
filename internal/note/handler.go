package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"privatenotes/internal/note/model"
	"privatenotes/internal/note/service"
	"privatenotes/middleware"
	"privatenotes/pkg/apperr"
	"privatenotes/pkg/logger"
)

const maxBodyBytes = 1 << 20

type NoteHandler struct {
	Service *service.NoteService
}

func NewNoteHandler(service *service.NoteService) *NoteHandler {
	return &NoteHandler{Service: service}
}

func (h *NoteHandler) GetNotes(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	notes, err := h.Service.List(r.Context(), userID)
	if err != nil {
		logger.Sugar.Errorf("Error fetching notes: %v", err)
		apperr.Write(w, err)
		return
	}
	writeJSON(w, http.StatusOK, notes)
}

func (h *NoteHandler) GetNote(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	noteID := chi.URLParam(r, "id")

	note, err := h.Service.Get(r.Context(), noteID, userID)
	if err != nil {
		logFailure("Error fetching note", noteID, err)
		apperr.Write(w, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

func (h *NoteHandler) CreateNote(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	in, err := decodeInput(w, r)
	if err != nil {
		apperr.Write(w, err)
		return
	}

	note, err := h.Service.Create(r.Context(), userID, in)
	if err != nil {
		logFailure("Error creating note", "", err)
		apperr.Write(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, note)
}

func (h *NoteHandler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	noteID := chi.URLParam(r, "id")

	in, err := decodeInput(w, r)
	if err != nil {
		apperr.Write(w, err)
		return
	}

	note, err := h.Service.Update(r.Context(), noteID, userID, in)
	if err != nil {
		logFailure("Error updating note", noteID, err)
		apperr.Write(w, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

func (h *NoteHandler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	noteID := chi.URLParam(r, "id")

	if err := h.Service.Delete(r.Context(), noteID, userID); err != nil {
		logFailure("Error deleting note", noteID, err)
		apperr.Write(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func callerID(w http.ResponseWriter, r *http.Request) (string, bool) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok || identity.ID == "" {
		apperr.Write(w, apperr.New(apperr.Unauthenticated, "Authentication failed"))
		return "", false
	}
	return identity.ID, true
}

// decodeInput treats an empty body like an empty object so the caller
// gets the missing-fields message rather than a parse error.
func decodeInput(w http.ResponseWriter, r *http.Request) (model.NoteInput, error) {
	var in model.NoteInput
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&in)
	if err != nil && !errors.Is(err, io.EOF) {
		return in, apperr.Wrap(apperr.InvalidInput, "Invalid request body", err)
	}
	return in, nil
}

func logFailure(msg, noteID string, err error) {
	switch apperr.KindOf(err) {
	case apperr.Internal:
		logger.Sugar.Errorf("%s %s: %v", msg, noteID, err)
	default:
		logger.Sugar.Debugf("%s %s: %v", msg, noteID, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Sugar.Errorf("Failed to encode response: %v", err)
	}
}
