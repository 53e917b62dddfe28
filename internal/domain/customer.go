package domain

import (
	"time"
)

type Segment string

const (
	SegmentAdult    Segment = "ADULT"
	SegmentChild    Segment = "CHILD"
	SegmentProspect Segment = "PROSPECT"
)

// Customer is immutable once loaded. A zero Birthdate means the source value
// could not be parsed.
type Customer struct {
	ID        string    `json:"customer_id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	Address   string    `json:"address"`
	Segment   Segment   `json:"segment_code"`
	Birthdate time.Time `json:"birthdate"`
}

// CustomerSnapshot is the flat identity projection handed to callers.
type CustomerSnapshot struct {
	CustomerID  string `json:"customer_id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	SegmentCode string `json:"segment_code"`
}

// NormalizeDate drops time-of-day and zone, keeping the calendar date at
// midnight UTC.
func NormalizeDate(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
