package models

import "time"

// AttendanceStatus represents the status for attendance records.
type AttendanceStatus string

const (
	AttendanceStatusPresent AttendanceStatus = "present"
	AttendanceStatusAbsent  AttendanceStatus = "absent"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendanceStatusPresent, AttendanceStatusAbsent:
		return true
	default:
		return false
	}
}

// AttendanceKind distinguishes student and staff records.
type AttendanceKind string

const (
	AttendanceKindStudent AttendanceKind = "student"
	AttendanceKindStaff   AttendanceKind = "staff"
)

// Valid returns true when the kind is a supported value.
func (k AttendanceKind) Valid() bool {
	switch k {
	case AttendanceKindStudent, AttendanceKindStaff:
		return true
	default:
		return false
	}
}

// AttendanceDateLayout is the calendar-day format used throughout the ledger.
const AttendanceDateLayout = "2006-01-02"

// AttendanceMonthLayout identifies a calendar month.
const AttendanceMonthLayout = "2006-01"

// AttendanceRecord is one mark per person per calendar day. The document key
// is PersonID + "_" + Date, which enforces the at-most-one-record invariant.
type AttendanceRecord struct {
	PersonID  string           `json:"person_id"`
	Date      string           `json:"date"`
	Kind      AttendanceKind   `json:"kind"`
	Status    AttendanceStatus `json:"status"`
	MarkedBy  string           `json:"marked_by,omitempty"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// Key returns the composite document key for the record.
func (r AttendanceRecord) Key() string {
	return AttendanceKey(r.PersonID, r.Date)
}

// AttendanceKey builds the composite key for a (person, date) pair.
func AttendanceKey(personID, date string) string {
	return personID + "_" + date
}

// AttendanceMonthlyStats summarises one person's records for a calendar month.
// Percentage uses a fixed 30-day denominator; downstream displays depend on
// that exact figure, so it is not derived from the actual month length.
type AttendanceMonthlyStats struct {
	PersonID     string  `json:"person_id"`
	Month        string  `json:"month"`
	PresentCount int     `json:"present_count"`
	AbsentCount  int     `json:"absent_count"`
	Percentage   float64 `json:"percentage"`
	Danger       bool    `json:"danger"`
}
