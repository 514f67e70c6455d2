// Package domain contains the core data types for the slot scheduler.
// This package depends only on the standard library and google/uuid, and is
// imported by every other internal package (repo, service, handler).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// MaxSlotsPerDay caps both how many recurring slots may be defined for one
// weekday and how many occurrences a resolved day may show.
const MaxSlotsPerDay = 2

// DaysPerWeek is the length of every resolved week.
const DaysPerWeek = 7

// Slot is a recurring weekly definition: the same start and end time on the
// same weekday, every week inside the recurrence window.
// Slots are never edited in place; per-date changes are SlotExceptions.
type Slot struct {
	ID uuid.UUID
	// DayOfWeek follows time.Weekday numbering: 0 = Sunday … 6 = Saturday.
	DayOfWeek int
	StartTime TimeOfDay
	EndTime   TimeOfDay
	// RecurringStartDate is the first date the slot may occur on.
	RecurringStartDate time.Time
	// RecurringEndDate is the last date the slot may occur on; nil when open-ended.
	RecurringEndDate *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ActiveOn reports whether date lies inside the slot's inclusive recurrence window.
// It does not check the weekday.
func (s Slot) ActiveOn(date time.Time) bool {
	date = NormalizeDate(date)
	if date.Before(NormalizeDate(s.RecurringStartDate)) {
		return false
	}
	if s.RecurringEndDate != nil && date.After(NormalizeDate(*s.RecurringEndDate)) {
		return false
	}
	return true
}

// OccursOn reports whether the slot produces an occurrence on date:
// the weekday matches and the date is inside the recurrence window.
func (s Slot) OccursOn(date time.Time) bool {
	return int(date.Weekday()) == s.DayOfWeek && s.ActiveOn(date)
}

// SlotException overrides or suppresses a single occurrence of a Slot.
// There is at most one exception per (SlotID, Date).
type SlotException struct {
	ID     uuid.UUID
	SlotID uuid.UUID
	Date   time.Time
	// StartTime and EndTime override the base slot's times when non-nil.
	StartTime *TimeOfDay
	EndTime   *TimeOfDay
	// IsDeleted suppresses the occurrence entirely, whatever the overrides say.
	IsDeleted bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Occurrence is one date's concrete instance of a Slot after exception resolution.
type Occurrence struct {
	SlotID    uuid.UUID
	Date      time.Time
	StartTime TimeOfDay
	EndTime   TimeOfDay
	// IsException is true when a (non-deleting) exception shaped this occurrence.
	IsException bool
}

// DaySchedule is the materialized schedule of one calendar date.
// Occurrences are ordered by the base slot's start time and hold at most
// MaxSlotsPerDay entries.
type DaySchedule struct {
	Date time.Time
	// Weekday is Date's day of the week, 0 = Sunday.
	Weekday     time.Weekday
	Occurrences []Occurrence
}

// TimeUpdate describes a requested change to one override field of an exception.
//
//	Set == false               field omitted: keep the current override
//	Set == true, Value == nil  field cleared: fall back to the base slot
//	Set == true, Value != nil  field set to *Value
type TimeUpdate struct {
	Set   bool
	Value *TimeOfDay
}

// Apply returns the override value that results from applying u to current.
func (u TimeUpdate) Apply(current *TimeOfDay) *TimeOfDay {
	if !u.Set {
		return current
	}
	return u.Value
}

// OccurrenceEdit is a request to change the times of one occurrence of a slot.
type OccurrenceEdit struct {
	SlotID    uuid.UUID
	Date      time.Time
	StartTime TimeUpdate
	EndTime   TimeUpdate
}
