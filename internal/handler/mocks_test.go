package handler_test

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/slot-scheduler/internal/domain"
	"github.com/pkordes/slot-scheduler/internal/handler"
)

// mockScheduleServicer is a test double for handler.ScheduleServicer.
// Set only the method fields your test needs.
type mockScheduleServicer struct {
	resolveWeek         func(ctx context.Context, weekStart time.Time) ([]domain.DaySchedule, error)
	createSlot          func(ctx context.Context, slot domain.Slot) (domain.Slot, error)
	getSlot             func(ctx context.Context, id uuid.UUID) (domain.Slot, error)
	listSlots           func(ctx context.Context) ([]domain.Slot, error)
	listExceptions      func(ctx context.Context, slotID uuid.UUID) ([]domain.SlotException, error)
	editOccurrence      func(ctx context.Context, edit domain.OccurrenceEdit) (domain.SlotException, error)
	deleteOccurrence    func(ctx context.Context, slotID uuid.UUID, date time.Time) (domain.SlotException, error)
	restoreOccurrence   func(ctx context.Context, slotID uuid.UUID, date time.Time) (domain.SlotException, error)
	deleteRecurringSlot func(ctx context.Context, slotID uuid.UUID) error
}

func (m *mockScheduleServicer) ResolveWeek(ctx context.Context, weekStart time.Time) ([]domain.DaySchedule, error) {
	return m.resolveWeek(ctx, weekStart)
}
func (m *mockScheduleServicer) CreateSlot(ctx context.Context, slot domain.Slot) (domain.Slot, error) {
	return m.createSlot(ctx, slot)
}
func (m *mockScheduleServicer) GetSlot(ctx context.Context, id uuid.UUID) (domain.Slot, error) {
	return m.getSlot(ctx, id)
}
func (m *mockScheduleServicer) ListSlots(ctx context.Context) ([]domain.Slot, error) {
	return m.listSlots(ctx)
}
func (m *mockScheduleServicer) ListExceptions(ctx context.Context, slotID uuid.UUID) ([]domain.SlotException, error) {
	return m.listExceptions(ctx, slotID)
}
func (m *mockScheduleServicer) EditOccurrence(ctx context.Context, edit domain.OccurrenceEdit) (domain.SlotException, error) {
	return m.editOccurrence(ctx, edit)
}
func (m *mockScheduleServicer) DeleteOccurrence(ctx context.Context, slotID uuid.UUID, date time.Time) (domain.SlotException, error) {
	return m.deleteOccurrence(ctx, slotID, date)
}
func (m *mockScheduleServicer) RestoreOccurrence(ctx context.Context, slotID uuid.UUID, date time.Time) (domain.SlotException, error) {
	return m.restoreOccurrence(ctx, slotID, date)
}
func (m *mockScheduleServicer) DeleteRecurringSlot(ctx context.Context, slotID uuid.UUID) error {
	return m.deleteRecurringSlot(ctx, slotID)
}

// compile-time check: mockScheduleServicer must satisfy handler.ScheduleServicer.
var _ handler.ScheduleServicer = (*mockScheduleServicer)(nil)

// pingerFunc adapts a function to handler.Pinger.
type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }
