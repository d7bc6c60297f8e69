package persistence

import (
	"context"
	"time"
)

// SubjectRepository exposes CRUD operations for subjects.
type SubjectRepository interface {
	CreateSubject(ctx context.Context, subject Subject) (Subject, error)
	GetSubject(ctx context.Context, id int64) (Subject, error)
	UpdateSubject(ctx context.Context, subject Subject) (Subject, error)
	ListSubjects(ctx context.Context) ([]Subject, error)
	DeleteSubject(ctx context.Context, id int64) error
}

// InstituteRepository exposes CRUD operations for institutes and schools.
// An empty typeFilter lists both kinds.
type InstituteRepository interface {
	CreateInstitute(ctx context.Context, institute Institute) (Institute, error)
	GetInstitute(ctx context.Context, id int64) (Institute, error)
	UpdateInstitute(ctx context.Context, institute Institute) (Institute, error)
	ListInstitutes(ctx context.Context, typeFilter string) ([]Institute, error)
	DeleteInstitute(ctx context.Context, id int64) error
}

// AccountRepository stores financial accounts and their payment ledgers.
// Every payment mutation updates the account's denormalized total inside
// the same transaction.
type AccountRepository interface {
	CreateAccount(ctx context.Context, account Account) (Account, error)
	GetAccount(ctx context.Context, id int64) (Account, error)
	GetAccountByEntity(ctx context.Context, entityID int64) (Account, error)
	ListAccounts(ctx context.Context) ([]Account, error)
	RenameAccountEntity(ctx context.Context, id int64, entityName string, updatedAt time.Time) error
	DeleteAccount(ctx context.Context, id int64) error
	DeleteAllAccounts(ctx context.Context) error

	AddPayment(ctx context.Context, payment Payment) (Payment, error)
	UpdatePayment(ctx context.Context, payment Payment) (Payment, error)
	DeletePayment(ctx context.Context, accountID, paymentID int64) error
}

// AppointmentRepository stores single and recurring appointment records.
type AppointmentRepository interface {
	CreateAppointment(ctx context.Context, appointment Appointment) (Appointment, error)
	GetAppointment(ctx context.Context, id int64) (Appointment, error)
	UpdateAppointment(ctx context.Context, appointment Appointment) (Appointment, error)
	ListAppointments(ctx context.Context) ([]Appointment, error)
	ListAppointmentsByDate(ctx context.Context, date string) ([]Appointment, error)
	ListAppointmentsByWeekday(ctx context.Context, weekday int) ([]Appointment, error)
	CountAppointmentsBySubject(ctx context.Context, subjectID int64) (int, error)
	CountAppointmentsByEntity(ctx context.Context, entityID int64) (int, error)
	RenameAppointmentSubject(ctx context.Context, subjectID int64, subjectName string, updatedAt time.Time) error
	DeleteAppointment(ctx context.Context, id int64) error
	DeleteAllAppointments(ctx context.Context) error
}
