package handler

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/slot-scheduler/internal/domain"
)

// Wire types mirror the schemas in spec/openapi.yaml. Dates are emitted as
// YYYY-MM-DD and times as HH:MM:SS. Incoming dates are plain strings so that
// both YYYY-MM-DD and full RFC 3339 timestamps can be accepted.

// Slot is the JSON form of a recurring slot.
type Slot struct {
	ID                 uuid.UUID           `json:"id"`
	DayOfWeek          int                 `json:"dayOfWeek"`
	StartTime          domain.TimeOfDay    `json:"startTime"`
	EndTime            domain.TimeOfDay    `json:"endTime"`
	RecurringStartDate openapi_types.Date  `json:"recurringStartDate"`
	RecurringEndDate   *openapi_types.Date `json:"recurringEndDate"`
	CreatedAt          time.Time           `json:"createdAt"`
	UpdatedAt          time.Time           `json:"updatedAt"`
}

// SlotException is the JSON form of a per-date exception.
type SlotException struct {
	ID        uuid.UUID          `json:"id"`
	SlotID    uuid.UUID          `json:"slotId"`
	Date      openapi_types.Date `json:"date"`
	StartTime *domain.TimeOfDay  `json:"startTime"`
	EndTime   *domain.TimeOfDay  `json:"endTime"`
	IsDeleted bool               `json:"isDeleted"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// Occurrence is one resolved slot on a given day. ID is the base slot's ID.
type Occurrence struct {
	ID          uuid.UUID        `json:"id"`
	StartTime   domain.TimeOfDay `json:"startTime"`
	EndTime     domain.TimeOfDay `json:"endTime"`
	IsException bool             `json:"isException"`
}

// DaySchedule is one date of a resolved week.
type DaySchedule struct {
	Date      openapi_types.Date `json:"date"`
	DayOfWeek int                `json:"dayOfWeek"`
	Slots     []Occurrence       `json:"slots"`
}

// CreateSlotRequest is the body of POST /api/slots.
// Pointer fields distinguish a missing value from a zero one: dayOfWeek 0 is Sunday.
type CreateSlotRequest struct {
	DayOfWeek          *int              `json:"dayOfWeek"`
	StartTime          *domain.TimeOfDay `json:"startTime"`
	EndTime            *domain.TimeOfDay `json:"endTime"`
	RecurringStartDate *string           `json:"recurringStartDate"`
	RecurringEndDate   *string           `json:"recurringEndDate"`
}

// EditOccurrenceRequest is the body of PUT /api/slots/{id}.
type EditOccurrenceRequest struct {
	Date      *string      `json:"date"`
	StartTime OptionalTime `json:"startTime"`
	EndTime   OptionalTime `json:"endTime"`
}

// OccurrenceRequest is the body of DELETE /api/slots/{id} and POST /api/slots/{id}/restore.
type OccurrenceRequest struct {
	Date *string `json:"date"`
}

// OptionalTime is a time field that records whether it was present in the
// JSON document at all. An explicit null is present with a nil Value.
type OptionalTime struct {
	Set   bool
	Value *domain.TimeOfDay
}

// UnmarshalJSON is only called when the key is present, including for null.
func (o *OptionalTime) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		o.Value = nil
		return nil
	}
	var t domain.TimeOfDay
	if err := json.Unmarshal(b, &t); err != nil {
		return err
	}
	o.Value = &t
	return nil
}

func (o OptionalTime) update() domain.TimeUpdate {
	return domain.TimeUpdate{Set: o.Set, Value: o.Value}
}
