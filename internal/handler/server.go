// Package handler implements the HTTP handlers for the slot scheduler API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (health.go, slot.go) but share the same Server struct so they can
// access its dependencies.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pkordes/slot-scheduler/internal/domain"
)

// ScheduleServicer defines the business operations the slot handlers depend on.
// Defining the interface here (in the consumer package) follows the Go
// convention: "accept interfaces, return concrete types". It lets handler
// tests inject a mock without touching the database or service layer.
type ScheduleServicer interface {
	ResolveWeek(ctx context.Context, weekStart time.Time) ([]domain.DaySchedule, error)
	CreateSlot(ctx context.Context, slot domain.Slot) (domain.Slot, error)
	GetSlot(ctx context.Context, id uuid.UUID) (domain.Slot, error)
	ListSlots(ctx context.Context) ([]domain.Slot, error)
	ListExceptions(ctx context.Context, slotID uuid.UUID) ([]domain.SlotException, error)
	EditOccurrence(ctx context.Context, edit domain.OccurrenceEdit) (domain.SlotException, error)
	DeleteOccurrence(ctx context.Context, slotID uuid.UUID, date time.Time) (domain.SlotException, error)
	RestoreOccurrence(ctx context.Context, slotID uuid.UUID, date time.Time) (domain.SlotException, error)
	DeleteRecurringSlot(ctx context.Context, slotID uuid.UUID) error
}

// Pinger reports whether the backing store is reachable. repo.Store satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server holds the handler dependencies.
// Wire it in main.go by mounting Server.Routes on the middleware-wrapped router.
type Server struct {
	slots ScheduleServicer
	store Pinger
	log   *slog.Logger
}

// NewServer constructs the Server with all its dependencies.
// store may be nil, in which case /readyz always reports ready.
// A nil logger falls back to slog.Default().
func NewServer(slots ScheduleServicer, store Pinger, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{slots: slots, store: store, log: log}
}

// NewHealthHandler returns a Server for health-check-only use.
func NewHealthHandler() *Server {
	return NewServer(nil, nil, nil)
}

// Routes returns the chi router serving every endpoint.
// Static segments ("week", "recurring") take precedence over {id} in chi,
// so they never reach the per-slot handlers.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, codeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
	})

	r.Get("/healthz", s.GetHealth)
	r.Get("/readyz", s.GetReady)
	r.Get("/openapi.yaml", s.GetOpenAPI)

	r.Route("/api/slots", func(r chi.Router) {
		r.Post("/", s.CreateSlot)
		r.Get("/", s.ListSlots)
		r.Get("/week", s.GetWeek)
		r.Delete("/recurring/{id}", s.DeleteRecurringSlot)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetSlot)
			r.Put("/", s.EditOccurrence)
			r.Delete("/", s.DeleteOccurrence)
			r.Get("/exceptions", s.ListExceptions)
			r.Post("/restore", s.RestoreOccurrence)
		})
	})
	return r
}
