package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/slot-scheduler/internal/domain"
)

// dayLockNamespace offsets the advisory lock keys taken by LockDay so they
// do not collide with other users of pg_advisory_xact_lock on the same database.
const dayLockNamespace int64 = 0x510700

// SlotRepo defines the persistence operations for recurring Slots.
// The service layer depends on this interface, not the concrete implementation,
// which allows the service to be unit-tested with a mock.
type SlotRepo interface {
	// Create inserts a new slot and returns the persisted record (with
	// store-generated id, created_at, and updated_at populated).
	Create(ctx context.Context, slot domain.Slot) (domain.Slot, error)

	// GetByID retrieves a single slot by its UUID primary key.
	// Returns domain.ErrNotFound if no slot with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Slot, error)

	// CountByDay returns how many slots are defined for dayOfWeek,
	// regardless of their recurrence windows.
	CountByDay(ctx context.Context, dayOfWeek int) (int, error)

	// ListActive returns the slots for dayOfWeek whose recurrence window
	// contains on, ordered by start_time ascending.
	ListActive(ctx context.Context, dayOfWeek int, on time.Time) ([]domain.Slot, error)

	// List returns every slot ordered by day_of_week, then start_time.
	List(ctx context.Context) ([]domain.Slot, error)

	// Delete removes a slot and, through the foreign key cascade, all of its
	// exceptions. Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// LockDay serializes writers that check and then change the slots of one
	// weekday. It must be called inside Store.WithinTx; the lock is released
	// when the transaction ends.
	LockDay(ctx context.Context, dayOfWeek int) error
}

// pgSlotRepo is the Postgres implementation of SlotRepo.
type pgSlotRepo struct {
	db db
}

// NewSlotRepo constructs a SlotRepo backed by the provided db connection.
func NewSlotRepo(db db) SlotRepo {
	return &pgSlotRepo{db: db}
}

const slotColumns = `id, day_of_week, start_time, end_time, recurring_start_date, recurring_end_date, created_at, updated_at`

// Create inserts a new slot row and returns the full persisted record.
func (r *pgSlotRepo) Create(ctx context.Context, slot domain.Slot) (domain.Slot, error) {
	const q = `
		INSERT INTO slots (day_of_week, start_time, end_time, recurring_start_date, recurring_end_date)
		VALUES (@day_of_week, @start_time, @end_time, @recurring_start_date, @recurring_end_date)
		RETURNING ` + slotColumns

	args := pgx.NamedArgs{
		"day_of_week":          slot.DayOfWeek,
		"start_time":           pgTime(&slot.StartTime),
		"end_time":             pgTime(&slot.EndTime),
		"recurring_start_date": slot.RecurringStartDate,
		"recurring_end_date":   slot.RecurringEndDate, // nil becomes NULL
	}

	result, err := scanSlot(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Slot{}, fmt.Errorf("repo.SlotRepo.Create: %w", err)
	}
	return result, nil
}

// GetByID retrieves a slot by primary key.
func (r *pgSlotRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Slot, error) {
	const q = `SELECT ` + slotColumns + ` FROM slots WHERE id = @id`

	result, err := scanSlot(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Slot{}, fmt.Errorf("repo.SlotRepo.GetByID: %w", err)
	}
	return result, nil
}

// CountByDay counts the slots defined on a weekday.
func (r *pgSlotRepo) CountByDay(ctx context.Context, dayOfWeek int) (int, error) {
	const q = `SELECT count(*) FROM slots WHERE day_of_week = @day_of_week`

	var n int
	if err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"day_of_week": dayOfWeek}).Scan(&n); err != nil {
		return 0, fmt.Errorf("repo.SlotRepo.CountByDay: %w", err)
	}
	return n, nil
}

// ListActive returns the slots that recur on dayOfWeek and whose window includes on.
// Ties on start_time are broken by creation order so results are deterministic.
func (r *pgSlotRepo) ListActive(ctx context.Context, dayOfWeek int, on time.Time) ([]domain.Slot, error) {
	const q = `
		SELECT ` + slotColumns + `
		FROM slots
		WHERE day_of_week = @day_of_week
		  AND recurring_start_date <= @on
		  AND (recurring_end_date IS NULL OR recurring_end_date >= @on)
		ORDER BY start_time, created_at, id`

	slots, err := r.query(ctx, q, pgx.NamedArgs{"day_of_week": dayOfWeek, "on": on})
	if err != nil {
		return nil, fmt.Errorf("repo.SlotRepo.ListActive: %w", err)
	}
	return slots, nil
}

// List returns all slots ordered by weekday and start time.
func (r *pgSlotRepo) List(ctx context.Context) ([]domain.Slot, error) {
	const q = `SELECT ` + slotColumns + ` FROM slots ORDER BY day_of_week, start_time, created_at, id`

	slots, err := r.query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.SlotRepo.List: %w", err)
	}
	return slots, nil
}

// Delete removes a slot by primary key. slot_exceptions rows go with it
// via ON DELETE CASCADE, in the same statement.
func (r *pgSlotRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM slots WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.SlotRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.SlotRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// LockDay takes a transaction-scoped advisory lock for the weekday.
func (r *pgSlotRepo) LockDay(ctx context.Context, dayOfWeek int) error {
	const q = `SELECT pg_advisory_xact_lock(@key)`

	if _, err := r.db.Exec(ctx, q, pgx.NamedArgs{"key": dayLockNamespace + int64(dayOfWeek)}); err != nil {
		return fmt.Errorf("repo.SlotRepo.LockDay: %w", err)
	}
	return nil
}

// query runs a multi-row slot query. Always returns a non-nil slice on success.
func (r *pgSlotRepo) query(ctx context.Context, q string, args ...any) ([]domain.Slot, error) {
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	slots := []domain.Slot{}
	for rows.Next() {
		s, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		slots = append(slots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return slots, nil
}

// scanSlot maps a single database row into a domain.Slot.
// It handles the UUID, TIME and nullable end date conversions.
func scanSlot(s scanner) (domain.Slot, error) {
	var (
		slot       domain.Slot
		id         pgtype.UUID
		start, end pgtype.Time
		startDate  pgtype.Date
		endDate    pgtype.Date
	)

	err := s.Scan(&id, &slot.DayOfWeek, &start, &end, &startDate, &endDate, &slot.CreatedAt, &slot.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Slot{}, domain.ErrNotFound
		}
		return domain.Slot{}, err
	}

	slot.ID = uuid.UUID(id.Bytes)
	if slot.StartTime, err = fromPgTime(start); err != nil {
		return domain.Slot{}, err
	}
	if slot.EndTime, err = fromPgTime(end); err != nil {
		return domain.Slot{}, err
	}
	slot.RecurringStartDate = domain.NormalizeDate(startDate.Time)
	if endDate.Valid {
		ed := domain.NormalizeDate(endDate.Time)
		slot.RecurringEndDate = &ed
	}
	return slot, nil
}

// pgTime converts an optional TimeOfDay into a TIME parameter; nil becomes NULL.
func pgTime(t *domain.TimeOfDay) pgtype.Time {
	if t == nil {
		return pgtype.Time{}
	}
	return pgtype.Time{Microseconds: t.Duration().Microseconds(), Valid: true}
}

// fromPgTime converts a non-null TIME column value.
func fromPgTime(t pgtype.Time) (domain.TimeOfDay, error) {
	if !t.Valid {
		return 0, errors.New("unexpected NULL time")
	}
	return domain.TimeOfDayFromDuration(time.Duration(t.Microseconds) * time.Microsecond)
}

// fromNullablePgTime converts a nullable TIME column value; NULL becomes nil.
func fromNullablePgTime(t pgtype.Time) (*domain.TimeOfDay, error) {
	if !t.Valid {
		return nil, nil
	}
	tod, err := fromPgTime(t)
	if err != nil {
		return nil, err
	}
	return &tod, nil
}
