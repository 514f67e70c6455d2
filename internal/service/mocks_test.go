package service_test

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/slot-scheduler/internal/domain"
	"github.com/pkordes/slot-scheduler/internal/repo"
)

// mockSlotRepo is a hand-written test double for repo.SlotRepo.
// Each method is a function field; set only the ones your test needs.
type mockSlotRepo struct {
	create     func(ctx context.Context, slot domain.Slot) (domain.Slot, error)
	getByID    func(ctx context.Context, id uuid.UUID) (domain.Slot, error)
	countByDay func(ctx context.Context, day int) (int, error)
	listActive func(ctx context.Context, day int, on time.Time) ([]domain.Slot, error)
	list       func(ctx context.Context) ([]domain.Slot, error)
	delete     func(ctx context.Context, id uuid.UUID) error
	lockDay    func(ctx context.Context, day int) error
}

func (m *mockSlotRepo) Create(ctx context.Context, slot domain.Slot) (domain.Slot, error) {
	return m.create(ctx, slot)
}
func (m *mockSlotRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Slot, error) {
	return m.getByID(ctx, id)
}
func (m *mockSlotRepo) CountByDay(ctx context.Context, day int) (int, error) {
	return m.countByDay(ctx, day)
}
func (m *mockSlotRepo) ListActive(ctx context.Context, day int, on time.Time) ([]domain.Slot, error) {
	return m.listActive(ctx, day, on)
}
func (m *mockSlotRepo) List(ctx context.Context) ([]domain.Slot, error) {
	return m.list(ctx)
}
func (m *mockSlotRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}
func (m *mockSlotRepo) LockDay(ctx context.Context, day int) error {
	if m.lockDay == nil {
		return nil
	}
	return m.lockDay(ctx, day)
}

// mockExceptionRepo is a hand-written test double for repo.ExceptionRepo.
type mockExceptionRepo struct {
	get        func(ctx context.Context, slotID uuid.UUID, date time.Time) (domain.SlotException, error)
	upsert     func(ctx context.Context, exc domain.SlotException) (domain.SlotException, error)
	listBySlot func(ctx context.Context, slotID uuid.UUID) ([]domain.SlotException, error)
}

func (m *mockExceptionRepo) Get(ctx context.Context, slotID uuid.UUID, date time.Time) (domain.SlotException, error) {
	return m.get(ctx, slotID, date)
}
func (m *mockExceptionRepo) Upsert(ctx context.Context, exc domain.SlotException) (domain.SlotException, error) {
	return m.upsert(ctx, exc)
}
func (m *mockExceptionRepo) ListBySlot(ctx context.Context, slotID uuid.UUID) ([]domain.SlotException, error) {
	return m.listBySlot(ctx, slotID)
}

// mockStore hands out the mock repos. WithinTx runs fn against the same store
// and counts how often it was entered, so tests can assert transactional paths.
type mockStore struct {
	slots      *mockSlotRepo
	exceptions *mockExceptionRepo
	txCalls    int
}

func (m *mockStore) Slots() repo.SlotRepo           { return m.slots }
func (m *mockStore) Exceptions() repo.ExceptionRepo { return m.exceptions }
func (m *mockStore) Ping(context.Context) error     { return nil }
func (m *mockStore) WithinTx(_ context.Context, fn func(repo.Store) error) error {
	m.txCalls++
	return fn(m)
}

// compile-time checks: the mocks must satisfy the repo interfaces.
var (
	_ repo.SlotRepo      = (*mockSlotRepo)(nil)
	_ repo.ExceptionRepo = (*mockExceptionRepo)(nil)
	_ repo.Store         = (*mockStore)(nil)
)

func newMockStore() *mockStore {
	return &mockStore{slots: &mockSlotRepo{}, exceptions: &mockExceptionRepo{}}
}

// noExceptions makes every exception lookup miss.
func noExceptions(context.Context, uuid.UUID, time.Time) (domain.SlotException, error) {
	return domain.SlotException{}, domain.ErrNotFound
}

// echoUpsert returns the exception it is given, with an ID assigned.
func echoUpsert(_ context.Context, e domain.SlotException) (domain.SlotException, error) {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return e, nil
}
