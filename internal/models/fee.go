package models

import "time"

// FeeStatus is the lifecycle state of a (student, billing-month) record.
type FeeStatus string

const (
	FeeStatusPending   FeeStatus = "pending"
	FeeStatusGenerated FeeStatus = "generated"
	FeeStatusSubmitted FeeStatus = "submitted"
	FeeStatusVerified  FeeStatus = "verified"
)

// Valid returns true when the status is a supported value.
func (s FeeStatus) Valid() bool {
	switch s {
	case FeeStatusPending, FeeStatusGenerated, FeeStatusSubmitted, FeeStatusVerified:
		return true
	default:
		return false
	}
}

// FeeMonthLayout identifies a billing month.
const FeeMonthLayout = "2006-01"

// FeeStatusRecord tracks one student's fee state for one billing month. The
// document key is StudentID + "_" + BillingMonth. A record materialises on the
// first state-changing write; reads before that return a computed pending
// default that is never persisted.
type FeeStatusRecord struct {
	StudentID    string    `json:"student_id"`
	BillingMonth string    `json:"billing_month"`
	Status       FeeStatus `json:"status"`
	Amount       float64   `json:"amount"`
	ProofRef     string    `json:"proof_ref,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Key returns the composite document key for the record.
func (r FeeStatusRecord) Key() string {
	return FeeKey(r.StudentID, r.BillingMonth)
}

// FeeKey builds the composite key for a (student, billing-month) pair.
func FeeKey(studentID, month string) string {
	return studentID + "_" + month
}

// FeeDefault stores the per-class default challan amount, keyed by class name.
type FeeDefault struct {
	ClassName string    `json:"class_name"`
	Amount    float64   `json:"amount"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ChallanResult reports the outcome of one student's challan generation
// within a batch. Batch items are independent; one failure never blocks the
// rest.
type ChallanResult struct {
	StudentID string    `json:"student_id"`
	Status    FeeStatus `json:"status,omitempty"`
	Err       string    `json:"error,omitempty"`
}

// FeeMonthSummary aggregates per-status counts for a billing month.
type FeeMonthSummary struct {
	Month     string  `json:"month"`
	Pending   int     `json:"pending"`
	Generated int     `json:"generated"`
	Submitted int     `json:"submitted"`
	Verified  int     `json:"verified"`
	Collected float64 `json:"collected"`
}
