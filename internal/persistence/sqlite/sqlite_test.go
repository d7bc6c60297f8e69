package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/example/tutor-planner/internal/persistence"
)

func newTestPool(t *testing.T) *ConnectionPool {
	t.Helper()

	dir := t.TempDir()
	dsn := "file:" + filepath.Join(dir, "planner.db") + "?_foreign_keys=on"
	pool, err := NewConnectionPool(dsn)
	if err != nil {
		t.Fatalf("failed to open pool: %v", err)
	}

	t.Cleanup(func() {
		_ = pool.Close()
	})

	if err := pool.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	return pool
}

func testTime() time.Time {
	return time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
}

func TestSubjectRepository(t *testing.T) {
	ctx := context.Background()
	pool := newTestPool(t)
	repo := NewSubjectRepository(pool)

	now := testTime()
	created, err := repo.CreateSubject(ctx, persistence.Subject{Name: "رياضيات", CreatedAt: now, UpdatedAt: now})
	if err != nil {
		t.Fatalf("CreateSubject failed: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("expected an assigned id")
	}

	fetched, err := repo.GetSubject(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetSubject failed: %v", err)
	}
	if fetched.Name != "رياضيات" || !fetched.CreatedAt.Equal(now) {
		t.Fatalf("unexpected subject retrieved: %#v", fetched)
	}

	fetched.Name = "فيزياء"
	fetched.UpdatedAt = now.Add(time.Hour)
	updated, err := repo.UpdateSubject(ctx, fetched)
	if err != nil {
		t.Fatalf("UpdateSubject failed: %v", err)
	}
	if updated.Name != "فيزياء" {
		t.Fatalf("unexpected name after update: %q", updated.Name)
	}

	if _, err := repo.CreateSubject(ctx, persistence.Subject{Name: "كيمياء", CreatedAt: now, UpdatedAt: now}); err != nil {
		t.Fatalf("CreateSubject failed: %v", err)
	}

	// Listing is ordered by name.
	subjects, err := repo.ListSubjects(ctx)
	if err != nil {
		t.Fatalf("ListSubjects failed: %v", err)
	}
	if len(subjects) != 2 || subjects[0].Name != "فيزياء" {
		t.Fatalf("unexpected listing: %#v", subjects)
	}

	if err := repo.DeleteSubject(ctx, created.ID); err != nil {
		t.Fatalf("DeleteSubject failed: %v", err)
	}
	if _, err := repo.GetSubject(ctx, created.ID); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := repo.DeleteSubject(ctx, created.ID); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for repeated delete, got %v", err)
	}
}

func TestInstituteRepository(t *testing.T) {
	ctx := context.Background()
	pool := newTestPool(t)
	repo := NewInstituteRepository(pool)

	now := testTime()
	institute, err := repo.CreateInstitute(ctx, persistence.Institute{Name: "معهد النور", Type: "institute", CreatedAt: now, UpdatedAt: now})
	if err != nil {
		t.Fatalf("CreateInstitute failed: %v", err)
	}
	school, err := repo.CreateInstitute(ctx, persistence.Institute{Name: "مدرسة الأمل", Type: "school", CreatedAt: now, UpdatedAt: now})
	if err != nil {
		t.Fatalf("CreateInstitute failed: %v", err)
	}

	schools, err := repo.ListInstitutes(ctx, "school")
	if err != nil {
		t.Fatalf("ListInstitutes failed: %v", err)
	}
	if len(schools) != 1 || schools[0].ID != school.ID {
		t.Fatalf("unexpected school listing: %#v", schools)
	}

	all, err := repo.ListInstitutes(ctx, "")
	if err != nil {
		t.Fatalf("ListInstitutes failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 institutes, got %d", len(all))
	}

	accountID := int64(7)
	institute.AccountID = &accountID
	institute.Name = "معهد الفجر"
	if _, err := repo.UpdateInstitute(ctx, institute); err == nil {
		// account 7 does not exist; the link column has no FK so the
		// update itself succeeds.
		fetched, err := repo.GetInstitute(ctx, institute.ID)
		if err != nil {
			t.Fatalf("GetInstitute failed: %v", err)
		}
		if fetched.AccountID == nil || *fetched.AccountID != accountID {
			t.Fatalf("account link not persisted: %#v", fetched)
		}
		if fetched.Name != "معهد الفجر" {
			t.Fatalf("rename not persisted: %q", fetched.Name)
		}
	} else {
		t.Fatalf("UpdateInstitute failed: %v", err)
	}

	if err := repo.DeleteInstitute(ctx, institute.ID); err != nil {
		t.Fatalf("DeleteInstitute failed: %v", err)
	}
	if _, err := repo.GetInstitute(ctx, institute.ID); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestAccountRepositoryPaymentLedger(t *testing.T) {
	ctx := context.Background()
	pool := newTestPool(t)
	repo := NewAccountRepository(pool)

	now := testTime()
	account, err := repo.CreateAccount(ctx, persistence.Account{
		EntityID:   1,
		EntityName: "معهد النور",
		EntityType: "institute",
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}

	first, err := repo.AddPayment(ctx, persistence.Payment{AccountID: account.ID, Amount: 100, PaidOn: now, CreatedAt: now})
	if err != nil {
		t.Fatalf("AddPayment failed: %v", err)
	}
	description := "قسط أول"
	second, err := repo.AddPayment(ctx, persistence.Payment{AccountID: account.ID, Amount: 50, PaidOn: now.Add(time.Hour), Description: &description, CreatedAt: now})
	if err != nil {
		t.Fatalf("AddPayment failed: %v", err)
	}

	fetched, err := repo.GetAccount(ctx, account.ID)
	if err != nil {
		t.Fatalf("GetAccount failed: %v", err)
	}
	if fetched.TotalPayments != 150 {
		t.Fatalf("expected total 150, got %v", fetched.TotalPayments)
	}
	if len(fetched.Payments) != 2 {
		t.Fatalf("expected 2 ledger entries, got %d", len(fetched.Payments))
	}
	if fetched.Payments[1].Description == nil || *fetched.Payments[1].Description != description {
		t.Fatalf("payment description not persisted: %#v", fetched.Payments[1])
	}

	first.Amount = 70
	if _, err := repo.UpdatePayment(ctx, first); err != nil {
		t.Fatalf("UpdatePayment failed: %v", err)
	}
	fetched, err = repo.GetAccount(ctx, account.ID)
	if err != nil {
		t.Fatalf("GetAccount failed: %v", err)
	}
	if fetched.TotalPayments != 120 {
		t.Fatalf("expected total 120 after update, got %v", fetched.TotalPayments)
	}

	if err := repo.DeletePayment(ctx, account.ID, second.ID); err != nil {
		t.Fatalf("DeletePayment failed: %v", err)
	}
	fetched, err = repo.GetAccount(ctx, account.ID)
	if err != nil {
		t.Fatalf("GetAccount failed: %v", err)
	}
	if fetched.TotalPayments != 70 {
		t.Fatalf("expected total 70 after delete, got %v", fetched.TotalPayments)
	}
	if err := repo.DeletePayment(ctx, account.ID, second.ID); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for removed payment, got %v", err)
	}

	if err := repo.RenameAccountEntity(ctx, account.ID, "معهد الفجر", now.Add(2*time.Hour)); err != nil {
		t.Fatalf("RenameAccountEntity failed: %v", err)
	}
	fetched, err = repo.GetAccountByEntity(ctx, 1)
	if err != nil {
		t.Fatalf("GetAccountByEntity failed: %v", err)
	}
	if fetched.EntityName != "معهد الفجر" {
		t.Fatalf("rename not persisted: %q", fetched.EntityName)
	}

	// Deleting the account cascades to its payments.
	if err := repo.DeleteAccount(ctx, account.ID); err != nil {
		t.Fatalf("DeleteAccount failed: %v", err)
	}
	if _, err := repo.GetAccount(ctx, account.ID); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after account delete, got %v", err)
	}
}

func TestAccountRepositoryDeleteAll(t *testing.T) {
	ctx := context.Background()
	pool := newTestPool(t)
	repo := NewAccountRepository(pool)

	now := testTime()
	for i := 0; i < 2; i++ {
		account, err := repo.CreateAccount(ctx, persistence.Account{
			EntityID:   int64(i + 1),
			EntityName: "معهد",
			EntityType: "institute",
			CreatedAt:  now,
			UpdatedAt:  now,
		})
		if err != nil {
			t.Fatalf("CreateAccount failed: %v", err)
		}
		if _, err := repo.AddPayment(ctx, persistence.Payment{AccountID: account.ID, Amount: 10, PaidOn: now, CreatedAt: now}); err != nil {
			t.Fatalf("AddPayment failed: %v", err)
		}
	}

	if err := repo.DeleteAllAccounts(ctx); err != nil {
		t.Fatalf("DeleteAllAccounts failed: %v", err)
	}
	accounts, err := repo.ListAccounts(ctx)
	if err != nil {
		t.Fatalf("ListAccounts failed: %v", err)
	}
	if len(accounts) != 0 {
		t.Fatalf("expected no accounts, got %d", len(accounts))
	}
}

func TestAppointmentRepository(t *testing.T) {
	ctx := context.Background()
	pool := newTestPool(t)
	subjects := NewSubjectRepository(pool)
	repo := NewAppointmentRepository(pool)

	now := testTime()
	subject, err := subjects.CreateSubject(ctx, persistence.Subject{Name: "رياضيات", CreatedAt: now, UpdatedAt: now})
	if err != nil {
		t.Fatalf("CreateSubject failed: %v", err)
	}

	date := "2024-06-01"
	endTime := "11:00"
	single, err := repo.CreateAppointment(ctx, persistence.Appointment{
		Type:        "private",
		EntityName:  "أحمد",
		SubjectID:   subject.ID,
		SubjectName: subject.Name,
		StartTime:   "10:00",
		EndTime:     &endTime,
		Date:        &date,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		t.Fatalf("CreateAppointment failed: %v", err)
	}

	weekday := 0
	repeatStart := "2024-06-01"
	repeatEnd := "2024-06-30"
	recurring, err := repo.CreateAppointment(ctx, persistence.Appointment{
		Type:            "private",
		EntityName:      "ليلى",
		SubjectID:       subject.ID,
		SubjectName:     subject.Name,
		StartTime:       "12:00",
		DayOfWeek:       &weekday,
		IsRepeating:     true,
		RepeatStartDate: &repeatStart,
		RepeatEndDate:   &repeatEnd,
		CreatedAt:       now,
		UpdatedAt:       now,
	})
	if err != nil {
		t.Fatalf("CreateAppointment failed: %v", err)
	}

	byDate, err := repo.ListAppointmentsByDate(ctx, date)
	if err != nil {
		t.Fatalf("ListAppointmentsByDate failed: %v", err)
	}
	if len(byDate) != 1 || byDate[0].ID != single.ID {
		t.Fatalf("unexpected date listing: %#v", byDate)
	}

	byWeekday, err := repo.ListAppointmentsByWeekday(ctx, weekday)
	if err != nil {
		t.Fatalf("ListAppointmentsByWeekday failed: %v", err)
	}
	if len(byWeekday) != 1 || byWeekday[0].ID != recurring.ID {
		t.Fatalf("unexpected weekday listing: %#v", byWeekday)
	}
	if byWeekday[0].RepeatStartDate == nil || *byWeekday[0].RepeatStartDate != repeatStart {
		t.Fatalf("repeat bounds not persisted: %#v", byWeekday[0])
	}

	count, err := repo.CountAppointmentsBySubject(ctx, subject.ID)
	if err != nil {
		t.Fatalf("CountAppointmentsBySubject failed: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 references, got %d", count)
	}

	if err := repo.RenameAppointmentSubject(ctx, subject.ID, "فيزياء", now.Add(time.Hour)); err != nil {
		t.Fatalf("RenameAppointmentSubject failed: %v", err)
	}
	fetched, err := repo.GetAppointment(ctx, single.ID)
	if err != nil {
		t.Fatalf("GetAppointment failed: %v", err)
	}
	if fetched.SubjectName != "فيزياء" {
		t.Fatalf("subject rename not propagated: %q", fetched.SubjectName)
	}

	fetched.StartTime = "09:30"
	updated, err := repo.UpdateAppointment(ctx, fetched)
	if err != nil {
		t.Fatalf("UpdateAppointment failed: %v", err)
	}
	if updated.StartTime != "09:30" {
		t.Fatalf("unexpected start time after update: %q", updated.StartTime)
	}

	if err := repo.DeleteAppointment(ctx, single.ID); err != nil {
		t.Fatalf("DeleteAppointment failed: %v", err)
	}
	if _, err := repo.GetAppointment(ctx, single.ID); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}

	if err := repo.DeleteAllAppointments(ctx); err != nil {
		t.Fatalf("DeleteAllAppointments failed: %v", err)
	}
	remaining, err := repo.ListAppointments(ctx)
	if err != nil {
		t.Fatalf("ListAppointments failed: %v", err)
	}
	if len(remaining) != 0 {
		t.Fatalf("expected empty store, got %d records", len(remaining))
	}
}
