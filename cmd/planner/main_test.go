package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/example/tutor-planner/internal/application"
	"github.com/example/tutor-planner/internal/persistence/sqlite"
)

func newWiredServices(t *testing.T) (*application.SubjectService, *application.InstituteService, *application.AccountService, *application.AppointmentService) {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "planner.db") + "?_foreign_keys=on"
	pool, err := sqlite.NewConnectionPool(dsn)
	if err != nil {
		t.Fatalf("NewConnectionPool() error = %v", err)
	}
	t.Cleanup(func() {
		if cerr := pool.Close(); cerr != nil {
			t.Errorf("Close() error = %v", cerr)
		}
	})
	if err := pool.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	now := func() time.Time { return time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC) }
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return buildServices(pool, now, logger)
}

func TestWiredServices_AppointmentLifecycle(t *testing.T) {
	subjects, _, _, appointments := newWiredServices(t)
	ctx := context.Background()

	subject, err := subjects.CreateSubject(ctx, "رياضيات")
	if err != nil {
		t.Fatalf("CreateSubject() error = %v", err)
	}

	created, err := appointments.CreateAppointment(ctx, application.AppointmentInput{
		Type:            application.AppointmentTypePrivate,
		EntityName:      "أحمد",
		SubjectID:       subject.ID,
		StartTime:       "10:00",
		IsRepeating:     true,
		RepeatStartDate: "2024-06-01",
		RepeatEndDate:   "2024-07-01",
		SelectedDays:    []int{0},
	})
	if err != nil {
		t.Fatalf("CreateAppointment() error = %v", err)
	}
	if len(created) != 1 {
		t.Fatalf("CreateAppointment() returned %d records, want 1", len(created))
	}
	if created[0].SubjectName != "رياضيات" {
		t.Errorf("SubjectName = %q, want resolved name", created[0].SubjectName)
	}

	// 2024-06-08 is a Saturday inside the recurrence bounds.
	onDay, err := appointments.AppointmentsOn(ctx, "2024-06-08")
	if err != nil {
		t.Fatalf("AppointmentsOn() error = %v", err)
	}
	if len(onDay) != 1 {
		t.Fatalf("AppointmentsOn() returned %d records, want 1", len(onDay))
	}

	_, err = appointments.CreateAppointment(ctx, application.AppointmentInput{
		Type:       application.AppointmentTypePrivate,
		EntityName: "سارة",
		SubjectID:  subject.ID,
		StartTime:  "10:30",
		Date:       "2024-06-08",
	})
	var conflictErr *application.ConflictError
	if !errors.As(err, &conflictErr) {
		t.Fatalf("CreateAppointment() error = %v, want conflict", err)
	}
	if conflictErr.Conflicting.ID != created[0].ID {
		t.Errorf("conflicting ID = %d, want %d", conflictErr.Conflicting.ID, created[0].ID)
	}

	if err := subjects.DeleteSubject(ctx, subject.ID); err == nil {
		t.Fatal("DeleteSubject() expected in-use rejection")
	}
}

func TestWiredServices_InstituteAccountAndPayments(t *testing.T) {
	_, institutes, accounts, _ := newWiredServices(t)
	ctx := context.Background()

	institute, err := institutes.CreateInstitute(ctx, "معهد النور", application.EntityTypeInstitute)
	if err != nil {
		t.Fatalf("CreateInstitute() error = %v", err)
	}
	if institute.AccountID == nil {
		t.Fatal("CreateInstitute() did not link an account")
	}

	account, err := accounts.GetAccountByEntity(ctx, institute.ID)
	if err != nil {
		t.Fatalf("GetAccountByEntity() error = %v", err)
	}
	if account.EntityName != "معهد النور" {
		t.Errorf("EntityName = %q, want institute name", account.EntityName)
	}

	if _, err := accounts.AddPayment(ctx, account.ID, application.PaymentInput{Amount: 100}); err != nil {
		t.Fatalf("AddPayment() error = %v", err)
	}
	if _, err := accounts.AddPayment(ctx, account.ID, application.PaymentInput{Amount: 50.5}); err != nil {
		t.Fatalf("AddPayment() error = %v", err)
	}

	stored, err := accounts.GetAccount(ctx, account.ID)
	if err != nil {
		t.Fatalf("GetAccount() error = %v", err)
	}
	if stored.TotalPayments != 150.5 {
		t.Errorf("TotalPayments = %v, want 150.5", stored.TotalPayments)
	}

	renamed, err := institutes.RenameInstitute(ctx, institute.ID, "معهد الأمل")
	if err != nil {
		t.Fatalf("RenameInstitute() error = %v", err)
	}
	if renamed.Name != "معهد الأمل" {
		t.Errorf("Name = %q after rename", renamed.Name)
	}
	account, err = accounts.GetAccount(ctx, account.ID)
	if err != nil {
		t.Fatalf("GetAccount() error = %v", err)
	}
	if account.EntityName != "معهد الأمل" {
		t.Errorf("EntityName = %q, want rename to propagate", account.EntityName)
	}
}
