package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

type TodoStatus string

const (
	StatusPending    TodoStatus = "pending"
	StatusInProgress TodoStatus = "in-progress"
	StatusCompleted  TodoStatus = "completed"
)

func (s TodoStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

type Todo struct {
	ID          string     `json:"_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     Date       `json:"dueDate"`
	Status      TodoStatus `json:"status"`
	OwnerID     string     `json:"userId"`
}

// Date is a due date. It accepts either a calendar date (2006-01-02) or an
// RFC 3339 timestamp and always serializes as RFC 3339 in UTC. Values are
// kept at DatePrecision so every store round-trips them unchanged.
type Date struct {
	time.Time
}

const dateLayout = "2006-01-02"

// DatePrecision is the finest unit all stores keep: MongoDB stores
// milliseconds, TIMESTAMPTZ microseconds.
const DatePrecision = time.Millisecond

// ParseDate parses a calendar date or an RFC 3339 timestamp.
func ParseDate(s string) (Date, error) {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return NewDate(t), nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD or RFC 3339", s)
	}
	return NewDate(t), nil
}

// NewDate normalizes t to UTC at DatePrecision.
func NewDate(t time.Time) Date {
	return Date{Time: t.UTC().Truncate(DatePrecision)}
}

func (d Date) Equal(other Date) bool {
	return d.Time.Equal(other.Time)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.UTC().Format(time.RFC3339Nano))
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("dueDate must be a string: %w", err)
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// TodoFilter narrows an owner's todo list. Nil fields are unconstrained; set
// fields are combined with AND.
type TodoFilter struct {
	Title   *string
	Status  *TodoStatus
	DueDate *Date
}

func (f TodoFilter) IsEmpty() bool {
	return f.Title == nil && f.Status == nil && f.DueDate == nil
}

// Matches reports whether t satisfies every set field of f. Ownership is not
// part of the filter; stores constrain it separately.
func (f TodoFilter) Matches(t Todo) bool {
	if f.Title != nil && t.Title != *f.Title {
		return false
	}
	if f.Status != nil && t.Status != *f.Status {
		return false
	}
	if f.DueDate != nil && !t.DueDate.Equal(*f.DueDate) {
		return false
	}
	return true
}

// OptionalDate records whether a dueDate key was present in a patch body.
// A present null or "" clears the date.
type OptionalDate struct {
	Set   bool
	Value Date
}

// NewOptionalDate marks d as present.
func NewOptionalDate(d Date) OptionalDate {
	return OptionalDate{Set: true, Value: d}
}

// UnmarshalJSON runs only for keys present in the body, null included.
func (o *OptionalDate) UnmarshalJSON(data []byte) error {
	if err := o.Value.UnmarshalJSON(data); err != nil {
		return err
	}
	o.Set = true
	return nil
}

// TodoPatch is a partial update. Only non-nil (or Set) fields are written; the
// owner is never patchable.
type TodoPatch struct {
	Title       *string      `json:"title"`
	Description *string      `json:"description"`
	DueDate     OptionalDate `json:"dueDate"`
	Status      *TodoStatus  `json:"status"`
}

func (p TodoPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && !p.DueDate.Set && p.Status == nil
}

// Apply writes the set fields of p onto t.
func (p TodoPatch) Apply(t *Todo) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.DueDate.Set {
		t.DueDate = p.DueDate.Value
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
}
