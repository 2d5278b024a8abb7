package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"privatenotes/internal/auth"
	noteHandler "privatenotes/internal/note"
	"privatenotes/internal/note/repository"
	"privatenotes/internal/note/service"
	"privatenotes/middleware"
	"privatenotes/pkg/apperr"
	"privatenotes/socket"
)

type Dependencies struct {
	Repo     repository.Repository
	Verifier auth.Verifier
	// Hub may be nil, in which case the change feed route is not mounted.
	Hub            *socket.Hub
	Limiter        *middleware.RateLimiter
	AllowedOrigins []string
}

func Setup(deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(middleware.CORS(deps.AllowedOrigins))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.Handler())

	var events service.Broadcaster
	if deps.Hub != nil {
		events = deps.Hub
	}
	noteService := service.NewNoteService(deps.Repo, events)
	notes := noteHandler.NewNoteHandler(noteService)

	r.Route("/api/notes", func(r chi.Router) {
		r.Use(middleware.Authenticate(deps.Verifier))
		if deps.Limiter != nil {
			r.Use(deps.Limiter.Middleware)
		}

		if deps.Hub != nil {
			r.Get("/events", func(w http.ResponseWriter, r *http.Request) {
				identity, _ := middleware.IdentityFrom(r.Context())
				socket.ServeWs(deps.Hub, w, r, identity.ID)
			})
		}

		r.Get("/", notes.GetNotes)
		r.Post("/", notes.CreateNote)
		r.Get("/{id}", notes.GetNote)
		r.Put("/{id}", notes.UpdateNote)
		r.Delete("/{id}", notes.DeleteNote)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		apperr.WriteStatus(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		apperr.WriteStatus(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	return r
}
