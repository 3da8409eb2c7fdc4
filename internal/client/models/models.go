// Package models defines the client-side data model: the authenticated
// identity, the user profile and the weight history records, in the wire
// shapes the backend speaks.
package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Identity is the authenticated user as reported by the auth endpoints.
// It lives only in memory, next to the bearer token.
type Identity struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// IsAdmin reports whether the identity carries the admin role.
func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == "admin"
}

// Date is a calendar date without a time component, marshalled as
// "YYYY-MM-DD" (the backend's birth-date format).
type Date struct {
	time.Time
}

// NewDate builds a Date from year, month and day in UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(d.Format(time.DateOnly))
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		d.Time = time.Time{}
		return nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", s, err)
	}
	d.Time = t
	return nil
}

// Timestamp is a point in time that tolerates the backend's naive ISO 8601
// strings (no timezone suffix) in addition to RFC 3339. Naive values are
// interpreted as UTC. It marshals as RFC 3339.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	time.DateOnly,
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("invalid timestamp %q", s)
}

// Profile is the user's profile record. It is replaced whole on every
// submission, never patched.
type Profile struct {
	FirstName string  `json:"nombre" validate:"required"`
	LastName  string  `json:"apellidos" validate:"required"`
	BirthDate Date    `json:"fecha_nacimiento"`
	HeightM   float64 `json:"talla_m" validate:"gt=0"`
}

// WeightRecord is one weight measurement. At most one record per calendar
// day exists in local storage; the day is the merge key during
// reconciliation, not the ID.
type WeightRecord struct {
	ID         int64     `json:"id"`
	WeightKg   float64   `json:"peso_kg"`
	RecordedAt Timestamp `json:"fecha_registro"`
}

// DayKey returns the record's UTC calendar day as "YYYY-MM-DD". Records
// sharing a DayKey occupy the same logical slot.
func (w WeightRecord) DayKey() string {
	return w.RecordedAt.UTC().Format(time.DateOnly)
}

// Stats summarizes the stored weight values. All fields are zero when the
// collection is empty.
type Stats struct {
	Count int
	Max   float64
	Min   float64
}

// LimitSet holds the numeric and date bounds the backend enforces.
// A copy with fallback values ships in the client so validation keeps
// working offline.
type LimitSet struct {
	HeightMin             float64 `json:"height_min"`
	HeightMax             float64 `json:"height_max"`
	WeightMin             float64 `json:"weight_min"`
	WeightMax             float64 `json:"weight_max"`
	BirthDateMin          string  `json:"birth_date_min"`
	WeightVariationPerDay float64 `json:"weight_variation_per_day"`
	NameMinLength         int     `json:"name_min_length"`
	NameMaxLength         int     `json:"name_max_length"`
}
