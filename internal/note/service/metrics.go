package service

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"privatenotes/internal/note/repository"
)

var errInvalid = errors.New("invalid input")

var NotesOperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "notes_operations_total",
		Help: "Total number of note operations",
	},
	[]string{"operation", "outcome"}, // list/get/create/update/delete, ok/not_found/invalid/error
)

// TrackNoteOperation counts one store-facing operation by its outcome.
func TrackNoteOperation(operation string, err error) {
	NotesOperationsTotal.WithLabelValues(operation, outcome(err)).Inc()
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, errInvalid):
		return "invalid"
	case errors.Is(err, repository.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}
