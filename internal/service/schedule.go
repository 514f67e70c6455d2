// Package service contains the business logic for the slot scheduler.
// Services validate inputs, enforce business rules, and orchestrate repo calls.
// No SQL lives here: services depend on repo interfaces, not implementations.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/slot-scheduler/internal/domain"
	"github.com/pkordes/slot-scheduler/internal/repo"
)

// ScheduleService resolves weeks and applies slot and occurrence changes.
// It holds no state of its own; every call is a short sequence of store calls.
type ScheduleService struct {
	store repo.Store
}

// NewScheduleService constructs a ScheduleService backed by the provided Store.
func NewScheduleService(store repo.Store) *ScheduleService {
	return &ScheduleService{store: store}
}

// ResolveWeek materializes the seven consecutive dates starting at weekStart.
// Each day lists the occurrences of the slots active on it, with exceptions
// applied, deleted occurrences dropped, and at most domain.MaxSlotsPerDay
// entries kept in start-time order. The caller picks the week-start convention.
func (s *ScheduleService) ResolveWeek(ctx context.Context, weekStart time.Time) ([]domain.DaySchedule, error) {
	if weekStart.IsZero() {
		return nil, fmt.Errorf("%w: start date is required", domain.ErrValidation)
	}

	start := domain.NormalizeDate(weekStart)
	week := make([]domain.DaySchedule, 0, domain.DaysPerWeek)
	for i := range domain.DaysPerWeek {
		day, err := s.resolveDay(ctx, start.AddDate(0, 0, i))
		if err != nil {
			return nil, fmt.Errorf("service.ScheduleService.ResolveWeek: %w", err)
		}
		week = append(week, day)
	}
	return week, nil
}

// resolveDay looks up the candidate slots for one date and their exceptions.
func (s *ScheduleService) resolveDay(ctx context.Context, date time.Time) (domain.DaySchedule, error) {
	slots, err := s.store.Slots().ListActive(ctx, int(date.Weekday()), date)
	if err != nil {
		return domain.DaySchedule{}, err
	}

	occurrences := make([]domain.Occurrence, 0, domain.MaxSlotsPerDay)
	for _, slot := range slots {
		var exc *domain.SlotException
		found, err := s.store.Exceptions().Get(ctx, slot.ID, date)
		switch {
		case err == nil:
			exc = &found
		case !errors.Is(err, domain.ErrNotFound):
			return domain.DaySchedule{}, err
		}

		if occ, ok := ResolveOccurrence(slot, date, exc); ok {
			occurrences = append(occurrences, occ)
		}
	}

	if len(occurrences) > domain.MaxSlotsPerDay {
		occurrences = occurrences[:domain.MaxSlotsPerDay]
	}
	return domain.DaySchedule{Date: date, Weekday: date.Weekday(), Occurrences: occurrences}, nil
}

// ResolveOccurrence merges a slot with its (possibly nil) exception for date.
// It reports false when the exception deletes the occurrence.
func ResolveOccurrence(slot domain.Slot, date time.Time, exc *domain.SlotException) (domain.Occurrence, bool) {
	occ := domain.Occurrence{
		SlotID:    slot.ID,
		Date:      domain.NormalizeDate(date),
		StartTime: slot.StartTime,
		EndTime:   slot.EndTime,
	}
	if exc == nil {
		return occ, true
	}
	if exc.IsDeleted {
		return domain.Occurrence{}, false
	}

	occ.StartTime, occ.EndTime = effectiveTimes(slot, *exc)
	occ.IsException = true
	return occ, true
}

// effectiveTimes applies an exception's overrides on top of the base slot times.
func effectiveTimes(slot domain.Slot, exc domain.SlotException) (start, end domain.TimeOfDay) {
	start, end = slot.StartTime, slot.EndTime
	if exc.StartTime != nil {
		start = *exc.StartTime
	}
	if exc.EndTime != nil {
		end = *exc.EndTime
	}
	return start, end
}

// CreateSlot validates and persists a new recurring slot.
// The capacity check and the insert run in one transaction holding the
// weekday lock, so concurrent creations cannot push a day past the cap.
// Returns domain.ErrValidation for invalid input and domain.ErrCapacityExceeded
// when the weekday already has domain.MaxSlotsPerDay slots.
func (s *ScheduleService) CreateSlot(ctx context.Context, slot domain.Slot) (domain.Slot, error) {
	if err := validateSlot(slot); err != nil {
		return domain.Slot{}, err
	}
	slot.RecurringStartDate = domain.NormalizeDate(slot.RecurringStartDate)
	if slot.RecurringEndDate != nil {
		ed := domain.NormalizeDate(*slot.RecurringEndDate)
		slot.RecurringEndDate = &ed
	}

	var created domain.Slot
	err := s.store.WithinTx(ctx, func(tx repo.Store) error {
		if err := tx.Slots().LockDay(ctx, slot.DayOfWeek); err != nil {
			return err
		}
		n, err := tx.Slots().CountByDay(ctx, slot.DayOfWeek)
		if err != nil {
			return err
		}
		if n >= domain.MaxSlotsPerDay {
			return fmt.Errorf("%w: maximum %d slots allowed per day", domain.ErrCapacityExceeded, domain.MaxSlotsPerDay)
		}
		created, err = tx.Slots().Create(ctx, slot)
		return err
	})
	if err != nil {
		return domain.Slot{}, fmt.Errorf("service.ScheduleService.CreateSlot: %w", err)
	}
	return created, nil
}

// GetSlot returns a single recurring slot.
// Returns domain.ErrNotFound if no slot with that ID exists.
func (s *ScheduleService) GetSlot(ctx context.Context, id uuid.UUID) (domain.Slot, error) {
	slot, err := s.store.Slots().GetByID(ctx, id)
	if err != nil {
		return domain.Slot{}, fmt.Errorf("service.ScheduleService.GetSlot: %w", err)
	}
	return slot, nil
}

// ListSlots returns every recurring slot ordered by weekday, then start time.
// Always returns a non-nil slice so callers can safely range over it.
func (s *ScheduleService) ListSlots(ctx context.Context) ([]domain.Slot, error) {
	slots, err := s.store.Slots().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.ScheduleService.ListSlots: %w", err)
	}
	if slots == nil {
		return []domain.Slot{}, nil
	}
	return slots, nil
}

// ListExceptions returns the exceptions recorded for one slot, ordered by date.
// Returns domain.ErrNotFound if the slot does not exist.
func (s *ScheduleService) ListExceptions(ctx context.Context, slotID uuid.UUID) ([]domain.SlotException, error) {
	if _, err := s.store.Slots().GetByID(ctx, slotID); err != nil {
		return nil, fmt.Errorf("service.ScheduleService.ListExceptions: %w", err)
	}
	excs, err := s.store.Exceptions().ListBySlot(ctx, slotID)
	if err != nil {
		return nil, fmt.Errorf("service.ScheduleService.ListExceptions: %w", err)
	}
	if excs == nil {
		return []domain.SlotException{}, nil
	}
	return excs, nil
}

// EditOccurrence overrides the times of one occurrence of a slot.
// The exception for (SlotID, Date) is created on first edit and updated in
// place afterwards; only fields marked Set are changed, and a Set field with
// a nil value clears the override. The resulting effective times must keep
// start before end. The deletion flag is left untouched.
// Returns domain.ErrNotFound for an unknown slot and domain.ErrValidation when
// the date is missing, is not an occurrence of the slot, or the times invert.
func (s *ScheduleService) EditOccurrence(ctx context.Context, edit domain.OccurrenceEdit) (domain.SlotException, error) {
	if edit.Date.IsZero() {
		return domain.SlotException{}, fmt.Errorf("%w: date is required", domain.ErrValidation)
	}
	date := domain.NormalizeDate(edit.Date)

	var result domain.SlotException
	err := s.store.WithinTx(ctx, func(tx repo.Store) error {
		slot, err := occurrenceSlot(ctx, tx, edit.SlotID, date)
		if err != nil {
			return err
		}
		exc, err := currentException(ctx, tx, slot.ID, date)
		if err != nil {
			return err
		}

		exc.StartTime = edit.StartTime.Apply(exc.StartTime)
		exc.EndTime = edit.EndTime.Apply(exc.EndTime)
		if start, end := effectiveTimes(slot, exc); !start.Before(end) {
			return fmt.Errorf("%w: start time %s must be before end time %s", domain.ErrValidation, start, end)
		}

		result, err = tx.Exceptions().Upsert(ctx, exc)
		return err
	})
	if err != nil {
		return domain.SlotException{}, fmt.Errorf("service.ScheduleService.EditOccurrence: %w", err)
	}
	return result, nil
}

// DeleteOccurrence cancels one occurrence of a slot by flagging its exception
// as deleted, creating the exception if needed. Override times are kept.
// Deleting an already deleted occurrence leaves the row unchanged.
// Returns domain.ErrNotFound for an unknown slot and domain.ErrValidation when
// the date is missing or is not an occurrence of the slot.
func (s *ScheduleService) DeleteOccurrence(ctx context.Context, slotID uuid.UUID, date time.Time) (domain.SlotException, error) {
	if date.IsZero() {
		return domain.SlotException{}, fmt.Errorf("%w: date is required", domain.ErrValidation)
	}
	date = domain.NormalizeDate(date)

	var result domain.SlotException
	err := s.store.WithinTx(ctx, func(tx repo.Store) error {
		slot, err := occurrenceSlot(ctx, tx, slotID, date)
		if err != nil {
			return err
		}
		exc, err := currentException(ctx, tx, slot.ID, date)
		if err != nil {
			return err
		}
		if exc.IsDeleted && exc.ID != uuid.Nil {
			result = exc
			return nil
		}

		exc.IsDeleted = true
		result, err = tx.Exceptions().Upsert(ctx, exc)
		return err
	})
	if err != nil {
		return domain.SlotException{}, fmt.Errorf("service.ScheduleService.DeleteOccurrence: %w", err)
	}
	return result, nil
}

// RestoreOccurrence undoes DeleteOccurrence by clearing the deletion flag of
// the occurrence's exception. Any override times on the row apply again.
// Returns domain.ErrNotFound when the slot or the exception does not exist.
func (s *ScheduleService) RestoreOccurrence(ctx context.Context, slotID uuid.UUID, date time.Time) (domain.SlotException, error) {
	if date.IsZero() {
		return domain.SlotException{}, fmt.Errorf("%w: date is required", domain.ErrValidation)
	}
	date = domain.NormalizeDate(date)

	var result domain.SlotException
	err := s.store.WithinTx(ctx, func(tx repo.Store) error {
		if _, err := tx.Slots().GetByID(ctx, slotID); err != nil {
			return err
		}
		exc, err := tx.Exceptions().Get(ctx, slotID, date)
		if err != nil {
			return err
		}
		if !exc.IsDeleted {
			result = exc
			return nil
		}

		exc.IsDeleted = false
		result, err = tx.Exceptions().Upsert(ctx, exc)
		return err
	})
	if err != nil {
		return domain.SlotException{}, fmt.Errorf("service.ScheduleService.RestoreOccurrence: %w", err)
	}
	return result, nil
}

// DeleteRecurringSlot removes a slot and all of its exceptions.
// Returns domain.ErrNotFound if the slot does not exist.
func (s *ScheduleService) DeleteRecurringSlot(ctx context.Context, slotID uuid.UUID) error {
	if err := s.store.Slots().Delete(ctx, slotID); err != nil {
		return fmt.Errorf("service.ScheduleService.DeleteRecurringSlot: %w", err)
	}
	return nil
}

// occurrenceSlot loads the slot and checks that date is one of its occurrences.
func occurrenceSlot(ctx context.Context, tx repo.Store, slotID uuid.UUID, date time.Time) (domain.Slot, error) {
	slot, err := tx.Slots().GetByID(ctx, slotID)
	if err != nil {
		return domain.Slot{}, err
	}
	if !slot.OccursOn(date) {
		return domain.Slot{}, fmt.Errorf("%w: slot does not occur on %s", domain.ErrValidation, domain.FormatDate(date))
	}
	return slot, nil
}

// currentException returns the stored exception for the occurrence, or a fresh
// unsaved one (zero ID, no overrides, not deleted) when none exists yet.
func currentException(ctx context.Context, tx repo.Store, slotID uuid.UUID, date time.Time) (domain.SlotException, error) {
	exc, err := tx.Exceptions().Get(ctx, slotID, date)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.SlotException{SlotID: slotID, Date: date}, nil
	}
	return exc, err
}

// validateSlot enforces the business rules for a new recurring slot.
//   - DayOfWeek must be 0 (Sunday) through 6 (Saturday); 0 is a real value, not "unset".
//   - StartTime must be strictly before EndTime.
//   - RecurringStartDate is required; RecurringEndDate, if set, must not precede it.
func validateSlot(slot domain.Slot) error {
	if slot.DayOfWeek < 0 || slot.DayOfWeek > 6 {
		return fmt.Errorf("%w: day of week must be between 0 and 6", domain.ErrValidation)
	}
	if !slot.StartTime.Before(slot.EndTime) {
		return fmt.Errorf("%w: start time must be before end time", domain.ErrValidation)
	}
	if slot.RecurringStartDate.IsZero() {
		return fmt.Errorf("%w: recurring start date is required", domain.ErrValidation)
	}
	if slot.RecurringEndDate != nil &&
		domain.NormalizeDate(*slot.RecurringEndDate).Before(domain.NormalizeDate(slot.RecurringStartDate)) {
		return fmt.Errorf("%w: recurring end date must not be before recurring start date", domain.ErrValidation)
	}
	return nil
}
