package model

import (
	"fmt"
	"time"
	"unicode/utf8"
)

// MaxNameLength is the maximum number of characters kept in a PDF name.
const MaxNameLength = 100

// Status is the lifecycle label of a PDF print job.
type Status string

// PDF status values. There is no enforced transition graph between them.
const (
	StatusPending  Status = "PENDING"
	StatusPrinted  Status = "PRINTED"
	StatusSent     Status = "SENT"
	StatusCanceled Status = "CANCELED"
)

// Statuses lists every status in display order.
var Statuses = []Status{StatusPending, StatusPrinted, StatusSent, StatusCanceled}

// ParseStatus converts s into a Status, rejecting unknown values.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", fmt.Errorf("unknown status %q", s)
	}
	return st, nil
}

// Valid reports whether s is one of the four known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPrinted, StatusSent, StatusCanceled:
		return true
	}
	return false
}

// Label returns the human-readable label for s.
func (s Status) Label() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusPrinted:
		return "Printed"
	case StatusSent:
		return "Sent"
	case StatusCanceled:
		return "Canceled"
	default:
		return string(s)
	}
}

// Next returns the status that follows s in display order, wrapping around.
func (s Status) Next() Status {
	for i, st := range Statuses {
		if st == s {
			return Statuses[(i+1)%len(Statuses)]
		}
	}
	return StatusPending
}

// Prev returns the status that precedes s in display order, wrapping around.
func (s Status) Prev() Status {
	for i, st := range Statuses {
		if st == s {
			return Statuses[(i+len(Statuses)-1)%len(Statuses)]
		}
	}
	return StatusPending
}

// StatusOrDefault returns *s, or StatusPending when s is nil or empty.
func StatusOrDefault(s *Status) Status {
	if s == nil || *s == "" {
		return StatusPending
	}
	return *s
}

// PDF is a single tracked print job.
type PDF struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	DueDate   *Date     `json:"due_date,omitempty" db:"due_date"`
	Status    Status    `json:"status" db:"status"`
}

// NewPDF builds an unsaved PDF with defaults applied: the name is clamped,
// a zero createdAt becomes the current time and the status starts PENDING.
func NewPDF(name string, createdAt time.Time, dueDate *Date) PDF {
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	p := PDF{
		CreatedAt: createdAt.UTC(),
		DueDate:   dueDate,
		Status:    StatusPending,
	}
	p.SetName(name)
	return p
}

// SetName stores name clamped to MaxNameLength characters.
func (p *PDF) SetName(name string) {
	p.Name = ClampName(name)
}

// SetStatus stores status, coercing an empty value to StatusPending.
func (p *PDF) SetStatus(status Status) {
	p.Status = StatusOrDefault(&status)
}

// ApplyDefaults fills fields a first save requires but the caller left unset.
func (p *PDF) ApplyDefaults(now time.Time) {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now.UTC()
	}
	if p.Status == "" {
		p.Status = StatusPending
	}
}

// ClampName truncates name to at most MaxNameLength runes.
func ClampName(name string) string {
	if utf8.RuneCountInString(name) <= MaxNameLength {
		return name
	}
	return string([]rune(name)[:MaxNameLength])
}
