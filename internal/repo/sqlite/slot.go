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

// slotRepo is the SQLite implementation of repo.SlotRepo.
type slotRepo struct {
	q querier
}

const slotColumns = `id, day_of_week, start_time, end_time, recurring_start_date, recurring_end_date, created_at, updated_at`

// Create generates the id and timestamps in Go; SQLite has no uuid default.
func (r *slotRepo) Create(ctx context.Context, slot domain.Slot) (domain.Slot, error) {
	const q = `
		INSERT INTO slots (id, day_of_week, start_time, end_time, recurring_start_date, recurring_end_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING ` + slotColumns

	ts := now()
	var endDate sql.NullString
	if slot.RecurringEndDate != nil {
		endDate = sql.NullString{String: domain.FormatDate(*slot.RecurringEndDate), Valid: true}
	}

	row := r.q.QueryRowContext(ctx, q,
		uuid.NewString(),
		slot.DayOfWeek,
		slot.StartTime.String(),
		slot.EndTime.String(),
		domain.FormatDate(slot.RecurringStartDate),
		endDate,
		ts, ts,
	)
	result, err := scanSlot(row)
	if err != nil {
		return domain.Slot{}, fmt.Errorf("sqlite.SlotRepo.Create: %w", err)
	}
	return result, nil
}

func (r *slotRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Slot, error) {
	const q = `SELECT ` + slotColumns + ` FROM slots WHERE id = ?`

	result, err := scanSlot(r.q.QueryRowContext(ctx, q, id.String()))
	if err != nil {
		return domain.Slot{}, fmt.Errorf("sqlite.SlotRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *slotRepo) CountByDay(ctx context.Context, dayOfWeek int) (int, error) {
	const q = `SELECT count(*) FROM slots WHERE day_of_week = ?`

	var n int
	if err := r.q.QueryRowContext(ctx, q, dayOfWeek).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite.SlotRepo.CountByDay: %w", err)
	}
	return n, nil
}

func (r *slotRepo) ListActive(ctx context.Context, dayOfWeek int, on time.Time) ([]domain.Slot, error) {
	const q = `
		SELECT ` + slotColumns + `
		FROM slots
		WHERE day_of_week = ?
		  AND recurring_start_date <= ?
		  AND (recurring_end_date IS NULL OR recurring_end_date >= ?)
		ORDER BY start_time, created_at, id`

	d := domain.FormatDate(on)
	slots, err := r.query(ctx, q, dayOfWeek, d, d)
	if err != nil {
		return nil, fmt.Errorf("sqlite.SlotRepo.ListActive: %w", err)
	}
	return slots, nil
}

func (r *slotRepo) List(ctx context.Context) ([]domain.Slot, error) {
	const q = `SELECT ` + slotColumns + ` FROM slots ORDER BY day_of_week, start_time, created_at, id`

	slots, err := r.query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("sqlite.SlotRepo.List: %w", err)
	}
	return slots, nil
}

// Delete depends on PRAGMA foreign_keys = ON (set by Open) for the cascade.
func (r *slotRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM slots WHERE id = ?`

	res, err := r.q.ExecContext(ctx, q, id.String())
	if err != nil {
		return fmt.Errorf("sqlite.SlotRepo.Delete: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite.SlotRepo.Delete: rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("sqlite.SlotRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// LockDay is a no-op: Open limits the pool to one connection, so a
// transaction already excludes every other writer.
func (r *slotRepo) LockDay(context.Context, int) error {
	return nil
}

func (r *slotRepo) query(ctx context.Context, q string, args ...any) ([]domain.Slot, error) {
	rows, err := r.q.QueryContext(ctx, q, args...)
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

func scanSlot(s scanner) (domain.Slot, error) {
	var (
		slot                      domain.Slot
		id, start, end, startDate string
		endDate                   sql.NullString
		createdAt, updatedAt      string
	)

	err := s.Scan(&id, &slot.DayOfWeek, &start, &end, &startDate, &endDate, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Slot{}, domain.ErrNotFound
		}
		return domain.Slot{}, err
	}

	if slot.ID, err = uuid.Parse(id); err != nil {
		return domain.Slot{}, fmt.Errorf("parse id: %w", err)
	}
	if slot.StartTime, err = domain.ParseTimeOfDay(start); err != nil {
		return domain.Slot{}, err
	}
	if slot.EndTime, err = domain.ParseTimeOfDay(end); err != nil {
		return domain.Slot{}, err
	}
	if slot.RecurringStartDate, err = domain.ParseDate(startDate); err != nil {
		return domain.Slot{}, err
	}
	if endDate.Valid {
		ed, err := domain.ParseDate(endDate.String)
		if err != nil {
			return domain.Slot{}, err
		}
		slot.RecurringEndDate = &ed
	}
	if slot.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return domain.Slot{}, err
	}
	if slot.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
		return domain.Slot{}, err
	}
	return slot, nil
}
