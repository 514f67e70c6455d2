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

// ExceptionRepo defines the persistence operations for SlotExceptions.
// Rows are keyed by (slot_id, date); the table enforces that pair as unique.
type ExceptionRepo interface {
	// Get returns the exception of slotID on date.
	// Returns domain.ErrNotFound if the occurrence has no exception.
	Get(ctx context.Context, slotID uuid.UUID, date time.Time) (domain.SlotException, error)

	// Upsert inserts exc, or overwrites the times and deletion flag of the
	// existing row for (exc.SlotID, exc.Date). The stored row is returned.
	Upsert(ctx context.Context, exc domain.SlotException) (domain.SlotException, error)

	// ListBySlot returns all exceptions of a slot ordered by date.
	ListBySlot(ctx context.Context, slotID uuid.UUID) ([]domain.SlotException, error)
}

// pgExceptionRepo is the Postgres implementation of ExceptionRepo.
type pgExceptionRepo struct {
	db db
}

// NewExceptionRepo constructs an ExceptionRepo backed by the provided db connection.
func NewExceptionRepo(db db) ExceptionRepo {
	return &pgExceptionRepo{db: db}
}

const exceptionColumns = `id, slot_id, date, start_time, end_time, is_deleted, created_at, updated_at`

// Get retrieves the exception for one occurrence.
func (r *pgExceptionRepo) Get(ctx context.Context, slotID uuid.UUID, date time.Time) (domain.SlotException, error) {
	const q = `
		SELECT ` + exceptionColumns + `
		FROM slot_exceptions
		WHERE slot_id = @slot_id AND date = @date`

	result, err := scanException(r.db.QueryRow(ctx, q, pgx.NamedArgs{"slot_id": slotID, "date": date}))
	if err != nil {
		return domain.SlotException{}, fmt.Errorf("repo.ExceptionRepo.Get: %w", err)
	}
	return result, nil
}

// Upsert relies on the (slot_id, date) unique constraint: a conflicting insert
// turns into an update of the existing row, which keeps its id and created_at.
func (r *pgExceptionRepo) Upsert(ctx context.Context, exc domain.SlotException) (domain.SlotException, error) {
	const q = `
		INSERT INTO slot_exceptions (slot_id, date, start_time, end_time, is_deleted)
		VALUES (@slot_id, @date, @start_time, @end_time, @is_deleted)
		ON CONFLICT (slot_id, date) DO UPDATE
		SET start_time = EXCLUDED.start_time,
		    end_time   = EXCLUDED.end_time,
		    is_deleted = EXCLUDED.is_deleted,
		    updated_at = now()
		RETURNING ` + exceptionColumns

	args := pgx.NamedArgs{
		"slot_id":    exc.SlotID,
		"date":       exc.Date,
		"start_time": pgTime(exc.StartTime),
		"end_time":   pgTime(exc.EndTime),
		"is_deleted": exc.IsDeleted,
	}

	result, err := scanException(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.SlotException{}, fmt.Errorf("repo.ExceptionRepo.Upsert: %w", err)
	}
	return result, nil
}

// ListBySlot returns a slot's exceptions, oldest date first.
func (r *pgExceptionRepo) ListBySlot(ctx context.Context, slotID uuid.UUID) ([]domain.SlotException, error) {
	const q = `
		SELECT ` + exceptionColumns + `
		FROM slot_exceptions
		WHERE slot_id = @slot_id
		ORDER BY date`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"slot_id": slotID})
	if err != nil {
		return nil, fmt.Errorf("repo.ExceptionRepo.ListBySlot: %w", err)
	}
	defer rows.Close()

	excs := []domain.SlotException{}
	for rows.Next() {
		e, err := scanException(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.ExceptionRepo.ListBySlot: scan: %w", err)
		}
		excs = append(excs, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.ExceptionRepo.ListBySlot: rows: %w", err)
	}
	return excs, nil
}

// scanException maps a single database row into a domain.SlotException.
func scanException(s scanner) (domain.SlotException, error) {
	var (
		e          domain.SlotException
		id, slotID pgtype.UUID
		date       pgtype.Date
		start, end pgtype.Time
	)

	err := s.Scan(&id, &slotID, &date, &start, &end, &e.IsDeleted, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.SlotException{}, domain.ErrNotFound
		}
		return domain.SlotException{}, err
	}

	e.ID = uuid.UUID(id.Bytes)
	e.SlotID = uuid.UUID(slotID.Bytes)
	e.Date = domain.NormalizeDate(date.Time)
	if e.StartTime, err = fromNullablePgTime(start); err != nil {
		return domain.SlotException{}, err
	}
	if e.EndTime, err = fromNullablePgTime(end); err != nil {
		return domain.SlotException{}, err
	}
	return e, nil
}
