package testutil

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/slot-scheduler/internal/domain"
	"github.com/pkordes/slot-scheduler/internal/repo"
)

// StoreContract runs the behaviour every repo.Store implementation must share.
// newStore is called once per subtest and must return an empty, migrated store.
func StoreContract(t *testing.T, newStore func(t *testing.T) repo.Store) {
	t.Helper()

	t.Run("CreateAndGet", func(t *testing.T) {
		st := newStore(t)
		ctx := context.Background()
		end := day(2024, time.March, 25)

		created, err := st.Slots().Create(ctx, domain.Slot{
			DayOfWeek:          1,
			StartTime:          domain.MustTimeOfDay("09:00"),
			EndTime:            domain.MustTimeOfDay("10:30:15"),
			RecurringStartDate: day(2024, time.January, 1),
			RecurringEndDate:   &end,
		})
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, created.ID)
		assert.False(t, created.CreatedAt.IsZero())
		assert.False(t, created.UpdatedAt.IsZero())

		got, err := st.Slots().GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)
		assert.Equal(t, 1, got.DayOfWeek)
		assert.Equal(t, "09:00:00", got.StartTime.String())
		assert.Equal(t, "10:30:15", got.EndTime.String())
		assert.Equal(t, "2024-01-01", domain.FormatDate(got.RecurringStartDate))
		require.NotNil(t, got.RecurringEndDate)
		assert.Equal(t, "2024-03-25", domain.FormatDate(*got.RecurringEndDate))
	})

	t.Run("CreateOpenEnded", func(t *testing.T) {
		st := newStore(t)
		created := mustSlot(t, st, 0, "18:00", "19:00", day(2024, time.January, 7), nil)

		got, err := st.Slots().GetByID(context.Background(), created.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, got.DayOfWeek)
		assert.Nil(t, got.RecurringEndDate)
	})

	t.Run("GetByID_NotFound", func(t *testing.T) {
		st := newStore(t)

		_, err := st.Slots().GetByID(context.Background(), uuid.New())
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("CountByDay_IgnoresWindow", func(t *testing.T) {
		st := newStore(t)
		expired := day(2023, time.June, 30)
		mustSlot(t, st, 2, "09:00", "10:00", day(2023, time.January, 3), &expired)
		mustSlot(t, st, 2, "11:00", "12:00", day(2024, time.January, 2), nil)
		mustSlot(t, st, 3, "09:00", "10:00", day(2024, time.January, 3), nil)

		n, err := st.Slots().CountByDay(context.Background(), 2)
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		n, err = st.Slots().CountByDay(context.Background(), 4)
		require.NoError(t, err)
		assert.Equal(t, 0, n)
	})

	t.Run("ListActive_WindowAndOrder", func(t *testing.T) {
		st := newStore(t)
		ctx := context.Background()
		end := day(2024, time.January, 15)

		late := mustSlot(t, st, 1, "14:00", "15:00", day(2024, time.January, 1), nil)
		early := mustSlot(t, st, 1, "08:00", "09:00", day(2024, time.January, 8), &end)
		mustSlot(t, st, 2, "08:00", "09:00", day(2024, time.January, 1), nil)

		// Before early's window opens.
		got, err := st.Slots().ListActive(ctx, 1, day(2024, time.January, 1))
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{late.ID}, ids(got))

		// On the first day of the window.
		got, err = st.Slots().ListActive(ctx, 1, day(2024, time.January, 8))
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{early.ID, late.ID}, ids(got))

		// On the last day of the window.
		got, err = st.Slots().ListActive(ctx, 1, end)
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{early.ID, late.ID}, ids(got))

		// After the window closes.
		got, err = st.Slots().ListActive(ctx, 1, day(2024, time.January, 22))
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{late.ID}, ids(got))
	})

	t.Run("ListActive_Empty", func(t *testing.T) {
		st := newStore(t)

		got, err := st.Slots().ListActive(context.Background(), 5, day(2024, time.January, 5))
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("List_OrderedByDayThenStart", func(t *testing.T) {
		st := newStore(t)
		start := day(2024, time.January, 1)

		c := mustSlot(t, st, 3, "08:00", "09:00", start, nil)
		b := mustSlot(t, st, 1, "13:00", "14:00", start, nil)
		a := mustSlot(t, st, 1, "07:00", "08:00", start, nil)
		sun := mustSlot(t, st, 0, "10:00", "11:00", start, nil)

		got, err := st.Slots().List(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{sun.ID, a.ID, b.ID, c.ID}, ids(got))
	})

	t.Run("Delete_CascadesExceptions", func(t *testing.T) {
		st := newStore(t)
		ctx := context.Background()
		s := mustSlot(t, st, 1, "09:00", "10:00", day(2024, time.January, 1), nil)

		_, err := st.Exceptions().Upsert(ctx, domain.SlotException{
			SlotID:    s.ID,
			Date:      day(2024, time.January, 8),
			IsDeleted: true,
		})
		require.NoError(t, err)

		require.NoError(t, st.Slots().Delete(ctx, s.ID))

		_, err = st.Slots().GetByID(ctx, s.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)

		excs, err := st.Exceptions().ListBySlot(ctx, s.ID)
		require.NoError(t, err)
		assert.Empty(t, excs)

		assert.ErrorIs(t, st.Slots().Delete(ctx, s.ID), domain.ErrNotFound)
	})

	t.Run("Upsert_InsertThenUpdate", func(t *testing.T) {
		st := newStore(t)
		ctx := context.Background()
		s := mustSlot(t, st, 1, "09:00", "10:00", day(2024, time.January, 1), nil)
		on := day(2024, time.January, 8)
		start := domain.MustTimeOfDay("09:30")
		end := domain.MustTimeOfDay("10:45")

		first, err := st.Exceptions().Upsert(ctx, domain.SlotException{
			SlotID:    s.ID,
			Date:      on,
			StartTime: &start,
			EndTime:   &end,
		})
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, first.ID)
		assert.Equal(t, s.ID, first.SlotID)
		assert.Equal(t, "2024-01-08", domain.FormatDate(first.Date))
		require.NotNil(t, first.StartTime)
		assert.Equal(t, "09:30:00", first.StartTime.String())
		require.NotNil(t, first.EndTime)
		assert.Equal(t, "10:45:00", first.EndTime.String())
		assert.False(t, first.IsDeleted)

		second, err := st.Exceptions().Upsert(ctx, domain.SlotException{
			SlotID:    s.ID,
			Date:      on,
			StartTime: &start,
			IsDeleted: true,
		})
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID, "conflicting upsert must keep the row id")
		require.NotNil(t, second.StartTime)
		assert.Nil(t, second.EndTime, "nil override must clear the column")
		assert.True(t, second.IsDeleted)

		got, err := st.Exceptions().Get(ctx, s.ID, on)
		require.NoError(t, err)
		assert.Equal(t, second.ID, got.ID)
		assert.True(t, got.IsDeleted)
		assert.Nil(t, got.EndTime)

		all, err := st.Exceptions().ListBySlot(ctx, s.ID)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("Get_NotFound", func(t *testing.T) {
		st := newStore(t)
		s := mustSlot(t, st, 1, "09:00", "10:00", day(2024, time.January, 1), nil)

		_, err := st.Exceptions().Get(context.Background(), s.ID, day(2024, time.January, 8))
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("ListBySlot_OrderedByDate", func(t *testing.T) {
		st := newStore(t)
		ctx := context.Background()
		s := mustSlot(t, st, 1, "09:00", "10:00", day(2024, time.January, 1), nil)
		other := mustSlot(t, st, 1, "11:00", "12:00", day(2024, time.January, 1), nil)

		for _, d := range []time.Time{day(2024, time.January, 22), day(2024, time.January, 8)} {
			_, err := st.Exceptions().Upsert(ctx, domain.SlotException{SlotID: s.ID, Date: d, IsDeleted: true})
			require.NoError(t, err)
		}
		_, err := st.Exceptions().Upsert(ctx, domain.SlotException{SlotID: other.ID, Date: day(2024, time.January, 15), IsDeleted: true})
		require.NoError(t, err)

		got, err := st.Exceptions().ListBySlot(ctx, s.ID)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "2024-01-08", domain.FormatDate(got[0].Date))
		assert.Equal(t, "2024-01-22", domain.FormatDate(got[1].Date))

		none, err := st.Exceptions().ListBySlot(ctx, uuid.New())
		require.NoError(t, err)
		assert.NotNil(t, none)
		assert.Empty(t, none)
	})

	t.Run("WithinTx_Commit", func(t *testing.T) {
		st := newStore(t)
		ctx := context.Background()

		var id uuid.UUID
		err := st.WithinTx(ctx, func(tx repo.Store) error {
			if err := tx.Slots().LockDay(ctx, 4); err != nil {
				return err
			}
			s, err := tx.Slots().Create(ctx, slotOn(4, "09:00", "10:00"))
			id = s.ID
			return err
		})
		require.NoError(t, err)

		_, err = st.Slots().GetByID(ctx, id)
		assert.NoError(t, err)
	})

	t.Run("WithinTx_RollbackOnError", func(t *testing.T) {
		st := newStore(t)
		ctx := context.Background()
		boom := errors.New("boom")

		err := st.WithinTx(ctx, func(tx repo.Store) error {
			if _, err := tx.Slots().Create(ctx, slotOn(5, "09:00", "10:00")); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)

		n, err := st.Slots().CountByDay(ctx, 5)
		require.NoError(t, err)
		assert.Equal(t, 0, n)
	})

	t.Run("Ping", func(t *testing.T) {
		st := newStore(t)
		assert.NoError(t, st.Ping(context.Background()))
	})
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func slotOn(dayOfWeek int, start, end string) domain.Slot {
	return domain.Slot{
		DayOfWeek:          dayOfWeek,
		StartTime:          domain.MustTimeOfDay(start),
		EndTime:            domain.MustTimeOfDay(end),
		RecurringStartDate: day(2024, time.January, 1),
	}
}

func mustSlot(t *testing.T, st repo.Store, dayOfWeek int, start, end string, from time.Time, until *time.Time) domain.Slot {
	t.Helper()
	s := slotOn(dayOfWeek, start, end)
	s.RecurringStartDate = from
	s.RecurringEndDate = until

	created, err := st.Slots().Create(context.Background(), s)
	require.NoError(t, err)
	return created
}

func ids(slots []domain.Slot) []uuid.UUID {
	out := make([]uuid.UUID, len(slots))
	for i, s := range slots {
		out[i] = s.ID
	}
	return out
}
