package domain_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/slot-scheduler/internal/domain"
)

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"09:00", "09:00:00"},
		{"09:00:30", "09:00:30"},
		{"00:00", "00:00:00"},
		{"23:59:59", "23:59:59"},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := domain.ParseTimeOfDay(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got.String())
		})
	}
}

func TestParseTimeOfDay_Invalid(t *testing.T) {
	for _, in := range []string{"", "9:00", "24:00", "12:60", "12:00:60", "ab:cd", "+9:00", "12:00:00:00", "1200"} {
		t.Run(in, func(t *testing.T) {
			_, err := domain.ParseTimeOfDay(in)
			assert.Error(t, err)
		})
	}
}

// TestTimeOfDay_Order verifies that comparison is numeric, not textual.
func TestTimeOfDay_Order(t *testing.T) {
	nine := domain.MustTimeOfDay("09:00")
	ten := domain.MustTimeOfDay("10:00")
	halfPast := domain.MustTimeOfDay("08:30:00")

	assert.True(t, nine.Before(ten))
	assert.False(t, ten.Before(nine))
	assert.False(t, nine.Before(nine))
	assert.True(t, halfPast < nine)
}

func TestTimeOfDay_Components(t *testing.T) {
	tod, err := domain.NewTimeOfDay(14, 5, 9)
	require.NoError(t, err)

	assert.Equal(t, 14, tod.Hour())
	assert.Equal(t, 5, tod.Minute())
	assert.Equal(t, 9, tod.Second())
	assert.Equal(t, 14*time.Hour+5*time.Minute+9*time.Second, tod.Duration())
}

func TestTimeOfDayFromDuration(t *testing.T) {
	got, err := domain.TimeOfDayFromDuration(8*time.Hour + 30*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "08:30:00", got.String())

	_, err = domain.TimeOfDayFromDuration(24 * time.Hour)
	assert.Error(t, err)
}

func TestTimeOfDay_JSON(t *testing.T) {
	type payload struct {
		Start domain.TimeOfDay  `json:"start"`
		End   *domain.TimeOfDay `json:"end,omitempty"`
	}

	b, err := json.Marshal(payload{Start: domain.MustTimeOfDay("09:15")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"start":"09:15:00"}`, string(b))

	var p payload
	require.NoError(t, json.Unmarshal([]byte(`{"start":"07:00","end":"08:00:00"}`), &p))
	assert.Equal(t, "07:00:00", p.Start.String())
	require.NotNil(t, p.End)
	assert.Equal(t, "08:00:00", p.End.String())

	assert.Error(t, json.Unmarshal([]byte(`{"start":"7am"}`), &p))
}
