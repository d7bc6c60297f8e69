package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/tutor-planner/internal/application"
	"github.com/example/tutor-planner/internal/persistence"
)

var (
	subjectCounter     uint64
	instituteCounter   uint64
	accountCounter     uint64
	paymentCounter     uint64
	appointmentCounter uint64
)

var referenceTime = time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
// It falls on a Saturday so the adjusted weekday of the baseline date is 0.
func ReferenceTime() time.Time {
	return referenceTime
}

// --------------------------- Subject fixtures ----------------------------

// SubjectFixture represents a deterministic subject record.
type SubjectFixture struct {
	ID        int64
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SubjectOption configures the generated subject fixture.
type SubjectOption func(*SubjectFixture)

// NewSubjectFixture returns a deterministic subject fixture with optional overrides.
func NewSubjectFixture(opts ...SubjectOption) SubjectFixture {
	idx := atomic.AddUint64(&subjectCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := SubjectFixture{
		ID:        int64(idx),
		Name:      fmt.Sprintf("مادة %03d", idx),
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithSubjectID overrides the generated subject ID.
func WithSubjectID(id int64) SubjectOption {
	return func(f *SubjectFixture) {
		f.ID = id
	}
}

// WithSubjectName overrides the generated subject name.
func WithSubjectName(name string) SubjectOption {
	return func(f *SubjectFixture) {
		f.Name = name
	}
}

// Application returns the fixture as an application.Subject value.
func (f SubjectFixture) Application() application.Subject {
	return application.Subject{
		ID:        f.ID,
		Name:      f.Name,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// Persistence returns the fixture as a persistence.Subject value.
func (f SubjectFixture) Persistence() persistence.Subject {
	return persistence.Subject{
		ID:        f.ID,
		Name:      f.Name,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// -------------------------- Institute fixtures ---------------------------

// InstituteFixture represents a deterministic institute record.
type InstituteFixture struct {
	ID        int64
	Name      string
	Type      string
	AccountID *int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// InstituteOption configures the generated institute fixture.
type InstituteOption func(*InstituteFixture)

// NewInstituteFixture returns a deterministic institute fixture with optional overrides.
func NewInstituteFixture(opts ...InstituteOption) InstituteFixture {
	idx := atomic.AddUint64(&instituteCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := InstituteFixture{
		ID:        int64(idx),
		Name:      fmt.Sprintf("معهد %03d", idx),
		Type:      application.EntityTypeInstitute,
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithInstituteID overrides the generated institute ID.
func WithInstituteID(id int64) InstituteOption {
	return func(f *InstituteFixture) {
		f.ID = id
	}
}

// WithInstituteName overrides the generated institute name.
func WithInstituteName(name string) InstituteOption {
	return func(f *InstituteFixture) {
		f.Name = name
	}
}

// WithInstituteType overrides the entity type.
func WithInstituteType(entityType string) InstituteOption {
	return func(f *InstituteFixture) {
		f.Type = entityType
	}
}

// WithInstituteAccountID links the institute to an account.
func WithInstituteAccountID(accountID int64) InstituteOption {
	return func(f *InstituteFixture) {
		f.AccountID = &accountID
	}
}

// Application returns the fixture as an application.Institute value.
func (f InstituteFixture) Application() application.Institute {
	return application.Institute{
		ID:        f.ID,
		Name:      f.Name,
		Type:      f.Type,
		AccountID: f.AccountID,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// Persistence returns the fixture as a persistence.Institute value.
func (f InstituteFixture) Persistence() persistence.Institute {
	return persistence.Institute{
		ID:        f.ID,
		Name:      f.Name,
		Type:      f.Type,
		AccountID: f.AccountID,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// --------------------------- Account fixtures ----------------------------

// AccountFixture represents a deterministic account record.
type AccountFixture struct {
	ID            int64
	EntityID      int64
	EntityName    string
	EntityType    string
	TotalPayments float64
	Payments      []PaymentFixture
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// AccountOption configures the generated account fixture.
type AccountOption func(*AccountFixture)

// NewAccountFixture returns a deterministic account fixture with optional overrides.
func NewAccountFixture(opts ...AccountOption) AccountFixture {
	idx := atomic.AddUint64(&accountCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := AccountFixture{
		ID:         int64(idx),
		EntityID:   int64(idx),
		EntityName: fmt.Sprintf("معهد %03d", idx),
		EntityType: application.EntityTypeInstitute,
		CreatedAt:  created,
		UpdatedAt:  created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	fixture.TotalPayments = 0
	for _, payment := range fixture.Payments {
		fixture.TotalPayments += payment.Amount
	}
	return fixture
}

// WithAccountID overrides the generated account ID.
func WithAccountID(id int64) AccountOption {
	return func(f *AccountFixture) {
		f.ID = id
	}
}

// WithAccountEntity overrides the owning entity reference.
func WithAccountEntity(entityID int64, entityName, entityType string) AccountOption {
	return func(f *AccountFixture) {
		f.EntityID = entityID
		f.EntityName = entityName
		f.EntityType = entityType
	}
}

// WithAccountPayments seeds the account ledger. The account total is always
// recomputed from the ledger.
func WithAccountPayments(payments ...PaymentFixture) AccountOption {
	return func(f *AccountFixture) {
		f.Payments = payments
	}
}

// Application returns the fixture as an application.Account value.
func (f AccountFixture) Application() application.Account {
	payments := make([]application.Payment, 0, len(f.Payments))
	for _, payment := range f.Payments {
		payments = append(payments, payment.Application())
	}
	return application.Account{
		ID:            f.ID,
		EntityID:      f.EntityID,
		EntityName:    f.EntityName,
		EntityType:    f.EntityType,
		TotalPayments: f.TotalPayments,
		Payments:      payments,
		CreatedAt:     f.CreatedAt,
		UpdatedAt:     f.UpdatedAt,
	}
}

// Persistence returns the fixture as a persistence.Account value.
func (f AccountFixture) Persistence() persistence.Account {
	payments := make([]persistence.Payment, 0, len(f.Payments))
	for _, payment := range f.Payments {
		payments = append(payments, payment.Persistence())
	}
	return persistence.Account{
		ID:            f.ID,
		EntityID:      f.EntityID,
		EntityName:    f.EntityName,
		EntityType:    f.EntityType,
		TotalPayments: f.TotalPayments,
		Payments:      payments,
		CreatedAt:     f.CreatedAt,
		UpdatedAt:     f.UpdatedAt,
	}
}

// --------------------------- Payment fixtures ----------------------------

// PaymentFixture represents a deterministic payment record.
type PaymentFixture struct {
	ID          int64
	AccountID   int64
	Amount      float64
	PaidOn      time.Time
	Description *string
	CreatedAt   time.Time
}

// PaymentOption configures the generated payment fixture.
type PaymentOption func(*PaymentFixture)

// NewPaymentFixture returns a deterministic payment fixture with optional overrides.
func NewPaymentFixture(opts ...PaymentOption) PaymentFixture {
	idx := atomic.AddUint64(&paymentCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := PaymentFixture{
		ID:        int64(idx),
		AccountID: 1,
		Amount:    float64(50 * idx),
		PaidOn:    created,
		CreatedAt: created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithPaymentAccountID overrides the owning account.
func WithPaymentAccountID(accountID int64) PaymentOption {
	return func(f *PaymentFixture) {
		f.AccountID = accountID
	}
}

// WithPaymentAmount overrides the payment amount.
func WithPaymentAmount(amount float64) PaymentOption {
	return func(f *PaymentFixture) {
		f.Amount = amount
	}
}

// WithPaymentPaidOn overrides the payment date.
func WithPaymentPaidOn(paidOn time.Time) PaymentOption {
	return func(f *PaymentFixture) {
		f.PaidOn = paidOn
	}
}

// WithPaymentDescription attaches a note to the payment.
func WithPaymentDescription(description string) PaymentOption {
	return func(f *PaymentFixture) {
		f.Description = &description
	}
}

// Application returns the fixture as an application.Payment value.
func (f PaymentFixture) Application() application.Payment {
	return application.Payment{
		ID:          f.ID,
		AccountID:   f.AccountID,
		Amount:      f.Amount,
		PaidOn:      f.PaidOn,
		Description: f.Description,
		CreatedAt:   f.CreatedAt,
	}
}

// Persistence returns the fixture as a persistence.Payment value.
func (f PaymentFixture) Persistence() persistence.Payment {
	return persistence.Payment{
		ID:          f.ID,
		AccountID:   f.AccountID,
		Amount:      f.Amount,
		PaidOn:      f.PaidOn,
		Description: f.Description,
		CreatedAt:   f.CreatedAt,
	}
}

// ------------------------- Appointment fixtures --------------------------

// AppointmentFixture represents a deterministic appointment record. The
// default fixture is a non-repeating private lesson on the reference date.
type AppointmentFixture struct {
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

// AppointmentOption configures the generated appointment fixture.
type AppointmentOption func(*AppointmentFixture)

// NewAppointmentFixture returns a deterministic appointment fixture with
// optional overrides.
func NewAppointmentFixture(opts ...AppointmentOption) AppointmentFixture {
	idx := atomic.AddUint64(&appointmentCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	date := referenceTime.Format("2006-01-02")
	fixture := AppointmentFixture{
		ID:          int64(idx),
		Type:        application.AppointmentTypePrivate,
		EntityName:  fmt.Sprintf("طالب %03d", idx),
		SubjectID:   1,
		SubjectName: "رياضيات",
		StartTime:   fmt.Sprintf("%02d:00", 8+idx%10),
		Date:        &date,
		CreatedAt:   created,
		UpdatedAt:   created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithAppointmentID overrides the generated appointment ID.
func WithAppointmentID(id int64) AppointmentOption {
	return func(f *AppointmentFixture) {
		f.ID = id
	}
}

// WithAppointmentType sets the appointment type and entity link.
func WithAppointmentType(appointmentType string, entityID int64) AppointmentOption {
	return func(f *AppointmentFixture) {
		f.Type = appointmentType
		f.EntityID = &entityID
	}
}

// WithAppointmentSubject overrides the subject reference.
func WithAppointmentSubject(subjectID int64, subjectName string) AppointmentOption {
	return func(f *AppointmentFixture) {
		f.SubjectID = subjectID
		f.SubjectName = subjectName
	}
}

// WithAppointmentTimes sets the start and end clock values.
func WithAppointmentTimes(startTime, endTime string) AppointmentOption {
	return func(f *AppointmentFixture) {
		f.StartTime = startTime
		if endTime == "" {
			f.EndTime = nil
			return
		}
		f.EndTime = &endTime
	}
}

// WithAppointmentDate pins the fixture to a single calendar date.
func WithAppointmentDate(date string) AppointmentOption {
	return func(f *AppointmentFixture) {
		f.Date = &date
		f.IsRepeating = false
		f.DayOfWeek = nil
		f.RepeatStartDate = nil
		f.RepeatEndDate = nil
	}
}

// WithAppointmentRecurrence converts the fixture into a repeating definition
// on the given Saturday-first weekday, bounded by the repeat window.
func WithAppointmentRecurrence(weekday int, repeatStart, repeatEnd string) AppointmentOption {
	return func(f *AppointmentFixture) {
		f.IsRepeating = true
		f.Date = nil
		f.DayOfWeek = &weekday
		f.RepeatStartDate = &repeatStart
		f.RepeatEndDate = &repeatEnd
	}
}

// WithAppointmentSessionType attaches a session term label.
func WithAppointmentSessionType(sessionType string) AppointmentOption {
	return func(f *AppointmentFixture) {
		f.SessionType = &sessionType
	}
}

// WithAppointmentNotes attaches free-form notes.
func WithAppointmentNotes(notes string) AppointmentOption {
	return func(f *AppointmentFixture) {
		f.Notes = &notes
	}
}

// Application returns the fixture as an application.Appointment value.
func (f AppointmentFixture) Application() application.Appointment {
	return application.Appointment{
		ID:              f.ID,
		Type:            f.Type,
		EntityName:      f.EntityName,
		EntityID:        f.EntityID,
		SubjectID:       f.SubjectID,
		SubjectName:     f.SubjectName,
		StartTime:       f.StartTime,
		EndTime:         f.EndTime,
		Date:            f.Date,
		DayOfWeek:       f.DayOfWeek,
		IsRepeating:     f.IsRepeating,
		RepeatStartDate: f.RepeatStartDate,
		RepeatEndDate:   f.RepeatEndDate,
		SessionType:     f.SessionType,
		Notes:           f.Notes,
		CreatedAt:       f.CreatedAt,
		UpdatedAt:       f.UpdatedAt,
	}
}

// Persistence returns the fixture as a persistence.Appointment value.
func (f AppointmentFixture) Persistence() persistence.Appointment {
	return persistence.Appointment{
		ID:              f.ID,
		Type:            f.Type,
		EntityName:      f.EntityName,
		EntityID:        f.EntityID,
		SubjectID:       f.SubjectID,
		SubjectName:     f.SubjectName,
		StartTime:       f.StartTime,
		EndTime:         f.EndTime,
		Date:            f.Date,
		DayOfWeek:       f.DayOfWeek,
		IsRepeating:     f.IsRepeating,
		RepeatStartDate: f.RepeatStartDate,
		RepeatEndDate:   f.RepeatEndDate,
		SessionType:     f.SessionType,
		Notes:           f.Notes,
		CreatedAt:       f.CreatedAt,
		UpdatedAt:       f.UpdatedAt,
	}
}
