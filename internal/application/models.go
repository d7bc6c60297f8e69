package application

import "time"

// Appointment types. Private lessons are booked against an ad-hoc student
// name; institute and school appointments reference a catalog entry.
const (
	AppointmentTypePrivate   = "private"
	AppointmentTypeInstitute = "institute"
	AppointmentTypeSchool    = "school"
)

// Entity types accepted for institutes and their accounts.
const (
	EntityTypeInstitute = "institute"
	EntityTypeSchool    = "school"
)

// SessionTypes lists the term labels accepted for institute and school
// appointments, in the vocabulary the tutor actually uses.
var SessionTypes = []string{"شتوي", "صيفي", "مكثفات", "امتحانية"}

// Subject represents a taught subject.
type Subject struct {
	ID        int64
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Institute represents an institute or school with its linked account.
type Institute struct {
	ID        int64
	Name      string
	Type      string
	AccountID *int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Payment is one ledger entry of an account.
type Payment struct {
	ID          int64
	AccountID   int64
	Amount      float64
	PaidOn      time.Time
	Description *string
	CreatedAt   time.Time
}

// Account represents the financial account of an institute or school.
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

// AccountStats augments an account with the trailing-week payment total and
// the date of the most recent payment.
type AccountStats struct {
	Account
	RecentPayments  float64
	LastPaymentDate *time.Time
}

// Appointment represents a persisted calendar entry. Exactly one of Date or
// the recurrence triple (DayOfWeek, RepeatStartDate, RepeatEndDate) is
// populated, governed by IsRepeating.
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

// AppointmentInput captures caller provided appointment fields. Empty
// strings mark absent optional values. SelectedDays carries the
// Saturday-first weekday indices chosen for a repeating submission; each
// selected day produces its own appointment record.
type AppointmentInput struct {
	Type            string
	EntityName      string
	EntityID        *int64
	SubjectID       int64
	StartTime       string
	EndTime         string
	Date            string
	IsRepeating     bool
	RepeatStartDate string
	RepeatEndDate   string
	SelectedDays    []int
	SessionType     string
	Notes           string
}

// PaymentInput captures caller provided payment fields. A zero PaidOn
// defaults to the current time.
type PaymentInput struct {
	Amount      float64
	PaidOn      time.Time
	Description string
}
