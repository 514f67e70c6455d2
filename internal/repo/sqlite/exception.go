package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/slot-scheduler/internal/domain"
)

// exceptionRepo is the SQLite implementation of repo.ExceptionRepo.
type exceptionRepo struct {
	q querier
}

const exceptionColumns = `id, slot_id, date, start_time, end_time, is_deleted, created_at, updated_at`

func (r *exceptionRepo) Get(ctx context.Context, slotID uuid.UUID, date time.Time) (domain.SlotException, error) {
	const q = `SELECT ` + exceptionColumns + ` FROM slot_exceptions WHERE slot_id = ? AND date = ?`

	result, err := scanException(r.q.QueryRowContext(ctx, q, slotID.String(), domain.FormatDate(date)))
	if err != nil {
		return domain.SlotException{}, fmt.Errorf("sqlite.ExceptionRepo.Get: %w", err)
	}
	return result, nil
}

// Upsert keeps the existing row's id and created_at on conflict.
func (r *exceptionRepo) Upsert(ctx context.Context, exc domain.SlotException) (domain.SlotException, error) {
	const q = `
		INSERT INTO slot_exceptions (id, slot_id, date, start_time, end_time, is_deleted, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (slot_id, date) DO UPDATE
		SET start_time = excluded.start_time,
		    end_time   = excluded.end_time,
		    is_deleted = excluded.is_deleted,
		    updated_at = excluded.updated_at
		RETURNING ` + exceptionColumns

	ts := now()
	row := r.q.QueryRowContext(ctx, q,
		uuid.NewString(),
		exc.SlotID.String(),
		domain.FormatDate(exc.Date),
		nullTime(exc.StartTime),
		nullTime(exc.EndTime),
		exc.IsDeleted,
		ts, ts,
	)
	result, err := scanException(row)
	if err != nil {
		return domain.SlotException{}, fmt.Errorf("sqlite.ExceptionRepo.Upsert: %w", err)
	}
	return result, nil
}

func (r *exceptionRepo) ListBySlot(ctx context.Context, slotID uuid.UUID) ([]domain.SlotException, error) {
	const q = `SELECT ` + exceptionColumns + ` FROM slot_exceptions WHERE slot_id = ? ORDER BY date`

	rows, err := r.q.QueryContext(ctx, q, slotID.String())
	if err != nil {
		return nil, fmt.Errorf("sqlite.ExceptionRepo.ListBySlot: %w", err)
	}
	defer rows.Close()

	excs := []domain.SlotException{}
	for rows.Next() {
		e, err := scanException(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite.ExceptionRepo.ListBySlot: scan: %w", err)
		}
		excs = append(excs, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite.ExceptionRepo.ListBySlot: rows: %w", err)
	}
	return excs, nil
}

func scanException(s scanner) (domain.SlotException, error) {
	var (
		e                    domain.SlotException
		id, slotID, date     string
		start, end           sql.NullString
		createdAt, updatedAt string
	)

	err := s.Scan(&id, &slotID, &date, &start, &end, &e.IsDeleted, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.SlotException{}, domain.ErrNotFound
		}
		return domain.SlotException{}, err
	}

	if e.ID, err = uuid.Parse(id); err != nil {
		return domain.SlotException{}, fmt.Errorf("parse id: %w", err)
	}
	if e.SlotID, err = uuid.Parse(slotID); err != nil {
		return domain.SlotException{}, fmt.Errorf("parse slot_id: %w", err)
	}
	if e.Date, err = domain.ParseDate(date); err != nil {
		return domain.SlotException{}, err
	}
	if e.StartTime, err = parseNullTime(start); err != nil {
		return domain.SlotException{}, err
	}
	if e.EndTime, err = parseNullTime(end); err != nil {
		return domain.SlotException{}, err
	}
	if e.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return domain.SlotException{}, err
	}
	if e.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
		return domain.SlotException{}, err
	}
	return e, nil
}

func nullTime(t *domain.TimeOfDay) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.String(), Valid: true}
}

func parseNullTime(s sql.NullString) (*domain.TimeOfDay, error) {
	if !s.Valid {
		return nil, nil
	}
	t, err := domain.ParseTimeOfDay(s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
