package persistence

import "time"

// Subject represents a taught subject referenced by appointments.
type Subject struct {
	ID        int64
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Institute represents an institute or school catalog entry. AccountID links
// the single financial account created alongside the institute.
type Institute struct {
	ID        int64
	Name      string
	Type      string
	AccountID *int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Payment is one ledger entry of an account. Each payment carries its own
// stable identifier; positions within the ledger are never used for
// addressing.
type Payment struct {
	ID          int64
	AccountID   int64
	Amount      float64
	PaidOn      time.Time
	Description *string
	CreatedAt   time.Time
}

// Account represents the financial account of an institute or school.
// TotalPayments is a denormalized running sum maintained in the same
// transaction as every payment mutation.
type Account struct {
	ID            int64
	EntityID      int64
	EntityName    string
	EntityType    string
	TotalPayments float64
	Payments      []Payment
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Appointment represents a calendar entry. Exactly one of Date or the
// recurrence triple (DayOfWeek, RepeatStartDate, RepeatEndDate) is
// populated, governed by IsRepeating. DayOfWeek uses the Saturday-first
// index.
type Appointment struct {
	ID              int64
	Type            string
	EntityName      string
	EntityID        *int64
	SubjectID       int64
	SubjectName     string
	StartTime       string
	EndTime         *string
	Date            *string
	DayOfWeek       *int
	IsRepeating     bool
	RepeatStartDate *string
	RepeatEndDate   *string
	SessionType     *string
	Notes           *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
