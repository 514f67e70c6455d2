package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/slot-scheduler/internal/domain"
)

const slotNotFound = "slot not found"

// CreateSlot handles POST /api/slots.
func (s *Server) CreateSlot(w http.ResponseWriter, r *http.Request) {
	var body CreateSlotRequest
	if !decodeBody(w, r, &body, true) {
		return
	}
	slot, err := requestToSlot(body)
	if err != nil {
		requestValidation(w, err.Error())
		return
	}

	created, err := s.slots.CreateSlot(r.Context(), slot)
	if err != nil {
		s.writeServiceError(w, r, err, slotNotFound)
		return
	}
	writeJSON(w, http.StatusCreated, slotToResponse(created))
}

// ListSlots handles GET /api/slots.
func (s *Server) ListSlots(w http.ResponseWriter, r *http.Request) {
	slots, err := s.slots.ListSlots(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err, slotNotFound)
		return
	}
	data := make([]Slot, len(slots))
	for i, sl := range slots {
		data[i] = slotToResponse(sl)
	}
	writeJSON(w, http.StatusOK, data)
}

// GetWeek handles GET /api/slots/week?startDate=YYYY-MM-DD.
// The week is the seven dates starting at startDate, whatever weekday it is.
func (s *Server) GetWeek(w http.ResponseWriter, r *http.Request) {
	var raw string
	if err := runtime.BindQueryParameter("form", true, true, "startDate", r.URL.Query(), &raw); err != nil || raw == "" {
		badRequest(w, "start date is required")
		return
	}
	start, err := domain.ParseDate(raw)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	week, err := s.slots.ResolveWeek(r.Context(), start)
	if err != nil {
		s.writeServiceError(w, r, err, slotNotFound)
		return
	}
	data := make([]DaySchedule, len(week))
	for i, day := range week {
		data[i] = dayToResponse(day)
	}
	writeJSON(w, http.StatusOK, data)
}

// GetSlot handles GET /api/slots/{id}.
func (s *Server) GetSlot(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	slot, err := s.slots.GetSlot(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err, slotNotFound)
		return
	}
	writeJSON(w, http.StatusOK, slotToResponse(slot))
}

// EditOccurrence handles PUT /api/slots/{id}.
// It overrides the times of the occurrence on body.date, creating the
// exception on first edit. An omitted time keeps the current override and
// an explicit null clears it.
func (s *Server) EditOccurrence(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var body EditOccurrenceRequest
	if !decodeBody(w, r, &body, true) {
		return
	}
	date, ok := requireDate(w, body.Date)
	if !ok {
		return
	}

	exc, err := s.slots.EditOccurrence(r.Context(), domain.OccurrenceEdit{
		SlotID:    id,
		Date:      date,
		StartTime: body.StartTime.update(),
		EndTime:   body.EndTime.update(),
	})
	if err != nil {
		s.writeServiceError(w, r, err, slotNotFound)
		return
	}
	writeJSON(w, http.StatusOK, exceptionToResponse(exc))
}

// DeleteOccurrence handles DELETE /api/slots/{id}.
// The date comes from the JSON body or, for clients that cannot send a body
// with DELETE, from the ?date= query parameter.
func (s *Server) DeleteOccurrence(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var body OccurrenceRequest
	if !decodeBody(w, r, &body, false) {
		return
	}
	if body.Date == nil {
		var raw string
		if err := runtime.BindQueryParameter("form", true, false, "date", r.URL.Query(), &raw); err != nil {
			badRequest(w, "invalid date parameter")
			return
		}
		if raw != "" {
			body.Date = &raw
		}
	}
	date, ok := requireDate(w, body.Date)
	if !ok {
		return
	}

	exc, err := s.slots.DeleteOccurrence(r.Context(), id, date)
	if err != nil {
		s.writeServiceError(w, r, err, slotNotFound)
		return
	}
	writeJSON(w, http.StatusOK, exceptionToResponse(exc))
}

// ListExceptions handles GET /api/slots/{id}/exceptions.
func (s *Server) ListExceptions(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	excs, err := s.slots.ListExceptions(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err, slotNotFound)
		return
	}
	data := make([]SlotException, len(excs))
	for i, e := range excs {
		data[i] = exceptionToResponse(e)
	}
	writeJSON(w, http.StatusOK, data)
}

// RestoreOccurrence handles POST /api/slots/{id}/restore.
func (s *Server) RestoreOccurrence(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var body OccurrenceRequest
	if !decodeBody(w, r, &body, true) {
		return
	}
	date, ok := requireDate(w, body.Date)
	if !ok {
		return
	}

	exc, err := s.slots.RestoreOccurrence(r.Context(), id, date)
	if err != nil {
		s.writeServiceError(w, r, err, "no exception for that slot and date")
		return
	}
	writeJSON(w, http.StatusOK, exceptionToResponse(exc))
}

// DeleteRecurringSlot handles DELETE /api/slots/recurring/{id}.
func (s *Server) DeleteRecurringSlot(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.slots.DeleteRecurringSlot(r.Context(), id); err != nil {
		s.writeServiceError(w, r, err, slotNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- request plumbing -------------------------------------------------------

// pathID binds the {id} path parameter as a UUID, answering 400 when it is malformed.
func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	var id openapi_types.UUID
	err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		badRequest(w, "invalid slot id")
		return uuid.Nil, false
	}
	return id, true
}

// decodeBody decodes a JSON request body into dst.
// An empty body is an error only when required is set.
// Oversized bodies, cut off by the max body size middleware, answer 413.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any, required bool) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	var tooLarge *http.MaxBytesError
	switch {
	case err == nil:
		return true
	case errors.Is(err, io.EOF):
		if !required {
			return true
		}
		badRequest(w, "request body is required")
	case errors.As(err, &tooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, codePayloadTooLarge,
			fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
	default:
		badRequest(w, "malformed request body: "+err.Error())
	}
	return false
}

// requireDate parses a mandatory date field, answering 400 when it is absent or malformed.
func requireDate(w http.ResponseWriter, raw *string) (time.Time, bool) {
	if raw == nil || *raw == "" {
		badRequest(w, "date is required")
		return time.Time{}, false
	}
	date, err := domain.ParseDate(*raw)
	if err != nil {
		badRequest(w, err.Error())
		return time.Time{}, false
	}
	return date, true
}

// --- mapping helpers --------------------------------------------------------

// requestToSlot converts a CreateSlotRequest body into a domain.Slot.
// Returns an error if required fields are missing; range and ordering rules
// are left to the service.
func requestToSlot(body CreateSlotRequest) (domain.Slot, error) {
	switch {
	case body.DayOfWeek == nil:
		return domain.Slot{}, errors.New("dayOfWeek is required")
	case body.StartTime == nil:
		return domain.Slot{}, errors.New("startTime is required")
	case body.EndTime == nil:
		return domain.Slot{}, errors.New("endTime is required")
	case body.RecurringStartDate == nil || *body.RecurringStartDate == "":
		return domain.Slot{}, errors.New("recurringStartDate is required")
	}

	start, err := domain.ParseDate(*body.RecurringStartDate)
	if err != nil {
		return domain.Slot{}, fmt.Errorf("recurringStartDate: %w", err)
	}
	slot := domain.Slot{
		DayOfWeek:          *body.DayOfWeek,
		StartTime:          *body.StartTime,
		EndTime:            *body.EndTime,
		RecurringStartDate: start,
	}
	if body.RecurringEndDate != nil && *body.RecurringEndDate != "" {
		end, err := domain.ParseDate(*body.RecurringEndDate)
		if err != nil {
			return domain.Slot{}, fmt.Errorf("recurringEndDate: %w", err)
		}
		slot.RecurringEndDate = &end
	}
	return slot, nil
}

// slotToResponse converts a domain.Slot into its wire form.
func slotToResponse(sl domain.Slot) Slot {
	resp := Slot{
		ID:                 sl.ID,
		DayOfWeek:          sl.DayOfWeek,
		StartTime:          sl.StartTime,
		EndTime:            sl.EndTime,
		RecurringStartDate: openapi_types.Date{Time: sl.RecurringStartDate},
		CreatedAt:          sl.CreatedAt,
		UpdatedAt:          sl.UpdatedAt,
	}
	if sl.RecurringEndDate != nil {
		ed := openapi_types.Date{Time: *sl.RecurringEndDate}
		resp.RecurringEndDate = &ed
	}
	return resp
}

// exceptionToResponse converts a domain.SlotException into its wire form.
func exceptionToResponse(e domain.SlotException) SlotException {
	return SlotException{
		ID:        e.ID,
		SlotID:    e.SlotID,
		Date:      openapi_types.Date{Time: e.Date},
		StartTime: e.StartTime,
		EndTime:   e.EndTime,
		IsDeleted: e.IsDeleted,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

// dayToResponse converts a resolved day into its wire form.
func dayToResponse(d domain.DaySchedule) DaySchedule {
	occs := make([]Occurrence, len(d.Occurrences))
	for i, o := range d.Occurrences {
		occs[i] = Occurrence{
			ID:          o.SlotID,
			StartTime:   o.StartTime,
			EndTime:     o.EndTime,
			IsException: o.IsException,
		}
	}
	return DaySchedule{
		Date:      openapi_types.Date{Time: d.Date},
		DayOfWeek: int(d.Weekday),
		Slots:     occs,
	}
}
