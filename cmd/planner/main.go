package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/tutor-planner/internal/application"
	"github.com/example/tutor-planner/internal/config"
	httptransport "github.com/example/tutor-planner/internal/http"
	"github.com/example/tutor-planner/internal/persistence"
	"github.com/example/tutor-planner/internal/persistence/sqlite"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	pool, err := sqlite.NewConnectionPool(cfg.SQLiteDSN)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := pool.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := pool.Migrate(context.Background()); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	now := time.Now

	subjects, institutes, accounts, appointments := buildServices(pool, now, logger)

	subjectHandler := httptransport.NewSubjectHandler(subjects, logger)
	instituteHandler := httptransport.NewInstituteHandler(institutes, logger)
	accountHandler := httptransport.NewAccountHandler(accounts, logger)
	appointmentHandler := httptransport.NewAppointmentHandler(appointments, logger)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Subjects:     subjectHandler,
		Institutes:   instituteHandler,
		Accounts:     accountHandler,
		Appointments: appointmentHandler,
		Middleware:   []func(http.Handler) http.Handler{httptransport.RequestLogger(logger)},
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("planner API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

func buildServices(pool *sqlite.ConnectionPool, now func() time.Time, logger *slog.Logger) (*application.SubjectService, *application.InstituteService, *application.AccountService, *application.AppointmentService) {
	subjectRepo := newSubjectRepositoryAdapter(sqlite.NewSubjectRepository(pool))
	instituteRepo := newInstituteRepositoryAdapter(sqlite.NewInstituteRepository(pool))
	accountRepo := newAccountRepositoryAdapter(sqlite.NewAccountRepository(pool))
	appointmentRepo := newAppointmentRepositoryAdapter(sqlite.NewAppointmentRepository(pool), now)

	subjects := application.NewSubjectServiceWithLogger(subjectRepo, appointmentRepo, now, logger)
	institutes := application.NewInstituteServiceWithLogger(instituteRepo, accountRepo, appointmentRepo, now, logger)
	accounts := application.NewAccountServiceWithLogger(accountRepo, now, logger)
	appointments := application.NewAppointmentServiceWithLogger(appointmentRepo, subjectRepo, instituteRepo, now, logger)
	return subjects, institutes, accounts, appointments
}

// subjectRepositoryAdapter maps the subject catalog between the storage and
// service models. It also serves as the subject directory for appointment
// validation.
type subjectRepositoryAdapter struct {
	repo persistence.SubjectRepository
}

func newSubjectRepositoryAdapter(repo persistence.SubjectRepository) *subjectRepositoryAdapter {
	return &subjectRepositoryAdapter{repo: repo}
}

func (a *subjectRepositoryAdapter) CreateSubject(ctx context.Context, subject application.Subject) (application.Subject, error) {
	stored, err := a.repo.CreateSubject(ctx, toPersistenceSubject(subject))
	if err != nil {
		return application.Subject{}, err
	}
	return toApplicationSubject(stored), nil
}

func (a *subjectRepositoryAdapter) GetSubject(ctx context.Context, id int64) (application.Subject, error) {
	stored, err := a.repo.GetSubject(ctx, id)
	if err != nil {
		return application.Subject{}, err
	}
	return toApplicationSubject(stored), nil
}

func (a *subjectRepositoryAdapter) UpdateSubject(ctx context.Context, subject application.Subject) (application.Subject, error) {
	stored, err := a.repo.UpdateSubject(ctx, toPersistenceSubject(subject))
	if err != nil {
		return application.Subject{}, err
	}
	return toApplicationSubject(stored), nil
}

func (a *subjectRepositoryAdapter) DeleteSubject(ctx context.Context, id int64) error {
	return a.repo.DeleteSubject(ctx, id)
}

func (a *subjectRepositoryAdapter) ListSubjects(ctx context.Context) ([]application.Subject, error) {
	models, err := a.repo.ListSubjects(ctx)
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	subjects := make([]application.Subject, 0, len(models))
	for _, model := range models {
		subjects = append(subjects, toApplicationSubject(model))
	}
	return subjects, nil
}

// instituteRepositoryAdapter maps the institute catalog between the storage
// and service models. It also serves as the institute catalog for
// appointment validation.
type instituteRepositoryAdapter struct {
	repo persistence.InstituteRepository
}

func newInstituteRepositoryAdapter(repo persistence.InstituteRepository) *instituteRepositoryAdapter {
	return &instituteRepositoryAdapter{repo: repo}
}

func (a *instituteRepositoryAdapter) CreateInstitute(ctx context.Context, institute application.Institute) (application.Institute, error) {
	stored, err := a.repo.CreateInstitute(ctx, toPersistenceInstitute(institute))
	if err != nil {
		return application.Institute{}, err
	}
	return toApplicationInstitute(stored), nil
}

func (a *instituteRepositoryAdapter) GetInstitute(ctx context.Context, id int64) (application.Institute, error) {
	stored, err := a.repo.GetInstitute(ctx, id)
	if err != nil {
		return application.Institute{}, err
	}
	return toApplicationInstitute(stored), nil
}

func (a *instituteRepositoryAdapter) UpdateInstitute(ctx context.Context, institute application.Institute) (application.Institute, error) {
	stored, err := a.repo.UpdateInstitute(ctx, toPersistenceInstitute(institute))
	if err != nil {
		return application.Institute{}, err
	}
	return toApplicationInstitute(stored), nil
}

func (a *instituteRepositoryAdapter) DeleteInstitute(ctx context.Context, id int64) error {
	return a.repo.DeleteInstitute(ctx, id)
}

func (a *instituteRepositoryAdapter) ListInstitutes(ctx context.Context, typeFilter string) ([]application.Institute, error) {
	models, err := a.repo.ListInstitutes(ctx, typeFilter)
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	institutes := make([]application.Institute, 0, len(models))
	for _, model := range models {
		institutes = append(institutes, toApplicationInstitute(model))
	}
	return institutes, nil
}

// accountRepositoryAdapter maps accounts and their payment ledgers between
// the storage and service models. It carries both the account read side and
// the account lifecycle driven by institute operations.
type accountRepositoryAdapter struct {
	repo persistence.AccountRepository
}

func newAccountRepositoryAdapter(repo persistence.AccountRepository) *accountRepositoryAdapter {
	return &accountRepositoryAdapter{repo: repo}
}

func (a *accountRepositoryAdapter) CreateAccount(ctx context.Context, account application.Account) (application.Account, error) {
	stored, err := a.repo.CreateAccount(ctx, toPersistenceAccount(account))
	if err != nil {
		return application.Account{}, err
	}
	return toApplicationAccount(stored), nil
}

func (a *accountRepositoryAdapter) GetAccount(ctx context.Context, id int64) (application.Account, error) {
	stored, err := a.repo.GetAccount(ctx, id)
	if err != nil {
		return application.Account{}, err
	}
	return toApplicationAccount(stored), nil
}

func (a *accountRepositoryAdapter) GetAccountByEntity(ctx context.Context, entityID int64) (application.Account, error) {
	stored, err := a.repo.GetAccountByEntity(ctx, entityID)
	if err != nil {
		return application.Account{}, err
	}
	return toApplicationAccount(stored), nil
}

func (a *accountRepositoryAdapter) ListAccounts(ctx context.Context) ([]application.Account, error) {
	models, err := a.repo.ListAccounts(ctx)
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	accounts := make([]application.Account, 0, len(models))
	for _, model := range models {
		accounts = append(accounts, toApplicationAccount(model))
	}
	return accounts, nil
}

func (a *accountRepositoryAdapter) RenameAccountEntity(ctx context.Context, accountID int64, name string, updatedAt time.Time) error {
	return a.repo.RenameAccountEntity(ctx, accountID, name, updatedAt)
}

func (a *accountRepositoryAdapter) DeleteAccount(ctx context.Context, id int64) error {
	return a.repo.DeleteAccount(ctx, id)
}

func (a *accountRepositoryAdapter) DeleteAllAccounts(ctx context.Context) error {
	return a.repo.DeleteAllAccounts(ctx)
}

func (a *accountRepositoryAdapter) AddPayment(ctx context.Context, payment application.Payment) (application.Payment, error) {
	stored, err := a.repo.AddPayment(ctx, toPersistencePayment(payment))
	if err != nil {
		return application.Payment{}, err
	}
	return toApplicationPayment(stored), nil
}

func (a *accountRepositoryAdapter) UpdatePayment(ctx context.Context, payment application.Payment) (application.Payment, error) {
	stored, err := a.repo.UpdatePayment(ctx, toPersistencePayment(payment))
	if err != nil {
		return application.Payment{}, err
	}
	return toApplicationPayment(stored), nil
}

func (a *accountRepositoryAdapter) DeletePayment(ctx context.Context, accountID, paymentID int64) error {
	return a.repo.DeletePayment(ctx, accountID, paymentID)
}

// appointmentRepositoryAdapter maps appointment records between the storage
// and service models. It also reports subject and entity usage for the
// catalog services; the rename path stamps the update time itself because
// the storage layer records it per row.
type appointmentRepositoryAdapter struct {
	repo persistence.AppointmentRepository
	now  func() time.Time
}

func newAppointmentRepositoryAdapter(repo persistence.AppointmentRepository, now func() time.Time) *appointmentRepositoryAdapter {
	return &appointmentRepositoryAdapter{repo: repo, now: now}
}

func (a *appointmentRepositoryAdapter) CreateAppointment(ctx context.Context, appointment application.Appointment) (application.Appointment, error) {
	stored, err := a.repo.CreateAppointment(ctx, toPersistenceAppointment(appointment))
	if err != nil {
		return application.Appointment{}, err
	}
	return toApplicationAppointment(stored), nil
}

func (a *appointmentRepositoryAdapter) GetAppointment(ctx context.Context, id int64) (application.Appointment, error) {
	stored, err := a.repo.GetAppointment(ctx, id)
	if err != nil {
		return application.Appointment{}, err
	}
	return toApplicationAppointment(stored), nil
}

func (a *appointmentRepositoryAdapter) UpdateAppointment(ctx context.Context, appointment application.Appointment) (application.Appointment, error) {
	stored, err := a.repo.UpdateAppointment(ctx, toPersistenceAppointment(appointment))
	if err != nil {
		return application.Appointment{}, err
	}
	return toApplicationAppointment(stored), nil
}

func (a *appointmentRepositoryAdapter) DeleteAppointment(ctx context.Context, id int64) error {
	return a.repo.DeleteAppointment(ctx, id)
}

func (a *appointmentRepositoryAdapter) DeleteAllAppointments(ctx context.Context) error {
	return a.repo.DeleteAllAppointments(ctx)
}

func (a *appointmentRepositoryAdapter) ListAppointments(ctx context.Context) ([]application.Appointment, error) {
	models, err := a.repo.ListAppointments(ctx)
	if err != nil {
		return nil, err
	}
	return toApplicationAppointments(models), nil
}

func (a *appointmentRepositoryAdapter) ListAppointmentsByDate(ctx context.Context, date string) ([]application.Appointment, error) {
	models, err := a.repo.ListAppointmentsByDate(ctx, date)
	if err != nil {
		return nil, err
	}
	return toApplicationAppointments(models), nil
}

func (a *appointmentRepositoryAdapter) ListAppointmentsByWeekday(ctx context.Context, weekday int) ([]application.Appointment, error) {
	models, err := a.repo.ListAppointmentsByWeekday(ctx, weekday)
	if err != nil {
		return nil, err
	}
	return toApplicationAppointments(models), nil
}

func (a *appointmentRepositoryAdapter) CountAppointmentsBySubject(ctx context.Context, subjectID int64) (int, error) {
	return a.repo.CountAppointmentsBySubject(ctx, subjectID)
}

func (a *appointmentRepositoryAdapter) CountAppointmentsByEntity(ctx context.Context, entityID int64) (int, error) {
	return a.repo.CountAppointmentsByEntity(ctx, entityID)
}

func (a *appointmentRepositoryAdapter) RenameAppointmentSubject(ctx context.Context, subjectID int64, name string) error {
	return a.repo.RenameAppointmentSubject(ctx, subjectID, name, a.now().UTC())
}

func toApplicationSubject(model persistence.Subject) application.Subject {
	return application.Subject{
		ID:        model.ID,
		Name:      model.Name,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

func toPersistenceSubject(subject application.Subject) persistence.Subject {
	return persistence.Subject{
		ID:        subject.ID,
		Name:      subject.Name,
		CreatedAt: subject.CreatedAt,
		UpdatedAt: subject.UpdatedAt,
	}
}

func toApplicationInstitute(model persistence.Institute) application.Institute {
	return application.Institute{
		ID:        model.ID,
		Name:      model.Name,
		Type:      model.Type,
		AccountID: cloneInt64(model.AccountID),
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

func toPersistenceInstitute(institute application.Institute) persistence.Institute {
	return persistence.Institute{
		ID:        institute.ID,
		Name:      institute.Name,
		Type:      institute.Type,
		AccountID: cloneInt64(institute.AccountID),
		CreatedAt: institute.CreatedAt,
		UpdatedAt: institute.UpdatedAt,
	}
}

func toApplicationAccount(model persistence.Account) application.Account {
	payments := make([]application.Payment, 0, len(model.Payments))
	for _, payment := range model.Payments {
		payments = append(payments, toApplicationPayment(payment))
	}
	return application.Account{
		ID:            model.ID,
		EntityID:      model.EntityID,
		EntityName:    model.EntityName,
		EntityType:    model.EntityType,
		TotalPayments: model.TotalPayments,
		Payments:      payments,
		CreatedAt:     model.CreatedAt,
		UpdatedAt:     model.UpdatedAt,
	}
}

func toPersistenceAccount(account application.Account) persistence.Account {
	payments := make([]persistence.Payment, 0, len(account.Payments))
	for _, payment := range account.Payments {
		payments = append(payments, toPersistencePayment(payment))
	}
	return persistence.Account{
		ID:            account.ID,
		EntityID:      account.EntityID,
		EntityName:    account.EntityName,
		EntityType:    account.EntityType,
		TotalPayments: account.TotalPayments,
		Payments:      payments,
		CreatedAt:     account.CreatedAt,
		UpdatedAt:     account.UpdatedAt,
	}
}

func toApplicationPayment(model persistence.Payment) application.Payment {
	return application.Payment{
		ID:          model.ID,
		AccountID:   model.AccountID,
		Amount:      model.Amount,
		PaidOn:      model.PaidOn,
		Description: cloneString(model.Description),
		CreatedAt:   model.CreatedAt,
	}
}

func toPersistencePayment(payment application.Payment) persistence.Payment {
	return persistence.Payment{
		ID:          payment.ID,
		AccountID:   payment.AccountID,
		Amount:      payment.Amount,
		PaidOn:      payment.PaidOn,
		Description: cloneString(payment.Description),
		CreatedAt:   payment.CreatedAt,
	}
}

func toApplicationAppointments(models []persistence.Appointment) []application.Appointment {
	if len(models) == 0 {
		return nil
	}
	appointments := make([]application.Appointment, 0, len(models))
	for _, model := range models {
		appointments = append(appointments, toApplicationAppointment(model))
	}
	return appointments
}

func toApplicationAppointment(model persistence.Appointment) application.Appointment {
	return application.Appointment{
		ID:              model.ID,
		Type:            model.Type,
		EntityName:      model.EntityName,
		EntityID:        cloneInt64(model.EntityID),
		SubjectID:       model.SubjectID,
		SubjectName:     model.SubjectName,
		StartTime:       model.StartTime,
		EndTime:         cloneString(model.EndTime),
		Date:            cloneString(model.Date),
		DayOfWeek:       cloneInt(model.DayOfWeek),
		IsRepeating:     model.IsRepeating,
		RepeatStartDate: cloneString(model.RepeatStartDate),
		RepeatEndDate:   cloneString(model.RepeatEndDate),
		SessionType:     cloneString(model.SessionType),
		Notes:           cloneString(model.Notes),
		CreatedAt:       model.CreatedAt,
		UpdatedAt:       model.UpdatedAt,
	}
}

func toPersistenceAppointment(appointment application.Appointment) persistence.Appointment {
	return persistence.Appointment{
		ID:              appointment.ID,
		Type:            appointment.Type,
		EntityName:      appointment.EntityName,
		EntityID:        cloneInt64(appointment.EntityID),
		SubjectID:       appointment.SubjectID,
		SubjectName:     appointment.SubjectName,
		StartTime:       appointment.StartTime,
		EndTime:         cloneString(appointment.EndTime),
		Date:            cloneString(appointment.Date),
		DayOfWeek:       cloneInt(appointment.DayOfWeek),
		IsRepeating:     appointment.IsRepeating,
		RepeatStartDate: cloneString(appointment.RepeatStartDate),
		RepeatEndDate:   cloneString(appointment.RepeatEndDate),
		SessionType:     cloneString(appointment.SessionType),
		Notes:           cloneString(appointment.Notes),
		CreatedAt:       appointment.CreatedAt,
		UpdatedAt:       appointment.UpdatedAt,
	}
}

func cloneString(value *string) *string {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}

func cloneInt64(value *int64) *int64 {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}

func cloneInt(value *int) *int {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}
