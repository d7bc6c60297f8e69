package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/example/tutor-planner/internal/persistence"
	"github.com/example/tutor-planner/internal/recurrence"
	"github.com/example/tutor-planner/internal/scheduler"
)

// AppointmentRepository captures the persistence interactions needed by the
// service.
type AppointmentRepository interface {
	CreateAppointment(ctx context.Context, appointment Appointment) (Appointment, error)
	GetAppointment(ctx context.Context, id int64) (Appointment, error)
	UpdateAppointment(ctx context.Context, appointment Appointment) (Appointment, error)
	DeleteAppointment(ctx context.Context, id int64) error
	DeleteAllAppointments(ctx context.Context) error
	ListAppointments(ctx context.Context) ([]Appointment, error)
	ListAppointmentsByDate(ctx context.Context, date string) ([]Appointment, error)
	ListAppointmentsByWeekday(ctx context.Context, weekday int) ([]Appointment, error)
}

// SubjectDirectory exposes subject lookups.
type SubjectDirectory interface {
	GetSubject(ctx context.Context, id int64) (Subject, error)
}

// InstituteCatalog exposes institute lookups.
type InstituteCatalog interface {
	GetInstitute(ctx context.Context, id int64) (Institute, error)
}

// AppointmentService orchestrates validation, conflict detection, and
// persistence for appointment operations.
type AppointmentService struct {
	appointments AppointmentRepository
	subjects     SubjectDirectory
	institutes   InstituteCatalog
	now          func() time.Time
	logger       *slog.Logger
}

// NewAppointmentService wires dependencies for appointment operations.
func NewAppointmentService(appointments AppointmentRepository, subjects SubjectDirectory, institutes InstituteCatalog, now func() time.Time) *AppointmentService {
	return NewAppointmentServiceWithLogger(appointments, subjects, institutes, now, nil)
}

// NewAppointmentServiceWithLogger constructs an AppointmentService with a
// specified logger.
func NewAppointmentServiceWithLogger(appointments AppointmentRepository, subjects SubjectDirectory, institutes InstituteCatalog, now func() time.Time, logger *slog.Logger) *AppointmentService {
	if now == nil {
		now = time.Now
	}
	return &AppointmentService{
		appointments: appointments,
		subjects:     subjects,
		institutes:   institutes,
		now:          now,
		logger:       defaultLogger(logger),
	}
}

func (s *AppointmentService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AppointmentService", operation, attrs...)
}

// CreateAppointment validates the submission, rejects conflicting times, and
// persists the resulting records: one per selected weekday for repeating
// submissions, a single dated record otherwise.
func (s *AppointmentService) CreateAppointment(ctx context.Context, input AppointmentInput) (created []Appointment, err error) {
	if s == nil || s.appointments == nil {
		return nil, fmt.Errorf("appointment repository not configured")
	}

	logger := s.loggerWith(ctx, "CreateAppointment", "type", input.Type, "repeating", input.IsRepeating)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create appointment", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "appointment created", "records", len(created))
	}()

	if err = s.validateInput(ctx, &input); err != nil {
		return nil, err
	}

	subjectName, err := s.resolveSubjectName(ctx, input.SubjectID)
	if err != nil {
		return nil, err
	}

	probeDate := input.Date
	if input.IsRepeating {
		probeDate = input.RepeatStartDate
	}
	if err = s.checkConflict(ctx, probeDate, input.StartTime, input.EndTime, 0); err != nil {
		return nil, err
	}

	createdAt := s.now()
	if input.IsRepeating {
		for _, day := range uniqueDays(input.SelectedDays) {
			record := buildAppointment(input, subjectName, createdAt)
			weekday := day
			record.DayOfWeek = &weekday
			record.Date = nil

			persisted, createErr := s.appointments.CreateAppointment(ctx, record)
			if createErr != nil {
				err = mapRepositoryError(createErr)
				return nil, err
			}
			created = append(created, persisted)
		}
		return created, nil
	}

	record := buildAppointment(input, subjectName, createdAt)
	date := input.Date
	record.Date = &date

	persisted, createErr := s.appointments.CreateAppointment(ctx, record)
	if createErr != nil {
		err = mapRepositoryError(createErr)
		return nil, err
	}

	return []Appointment{persisted}, nil
}

// UpdateAppointment applies the create-time validation to an existing record,
// excluding it from its own conflict check, and rewrites it in place. A
// repeating update keeps a single weekday: the first selected day wins.
func (s *AppointmentService) UpdateAppointment(ctx context.Context, id int64, input AppointmentInput) (updated Appointment, err error) {
	if s == nil || s.appointments == nil {
		return Appointment{}, fmt.Errorf("appointment repository not configured")
	}

	logger := s.loggerWith(ctx, "UpdateAppointment", "appointment_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update appointment", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "appointment updated")
	}()

	existing, getErr := s.appointments.GetAppointment(ctx, id)
	if getErr != nil {
		err = mapRepositoryError(getErr)
		return Appointment{}, err
	}

	if err = s.validateInput(ctx, &input); err != nil {
		return Appointment{}, err
	}

	subjectName := existing.SubjectName
	if input.SubjectID != existing.SubjectID {
		if subjectName, err = s.resolveSubjectName(ctx, input.SubjectID); err != nil {
			return Appointment{}, err
		}
	}

	probeDate := input.Date
	if input.IsRepeating {
		probeDate = input.RepeatStartDate
	}
	if err = s.checkConflict(ctx, probeDate, input.StartTime, input.EndTime, id); err != nil {
		return Appointment{}, err
	}

	record := buildAppointment(input, subjectName, s.now())
	record.ID = id
	record.CreatedAt = existing.CreatedAt
	if input.IsRepeating {
		weekday := uniqueDays(input.SelectedDays)[0]
		record.DayOfWeek = &weekday
		record.Date = nil
	} else {
		date := input.Date
		record.Date = &date
	}

	updated, updateErr := s.appointments.UpdateAppointment(ctx, record)
	if updateErr != nil {
		err = mapRepositoryError(updateErr)
		return Appointment{}, err
	}

	return updated, nil
}

// DeleteAppointment removes one appointment record. The delete is hard; no
// tombstone is kept.
func (s *AppointmentService) DeleteAppointment(ctx context.Context, id int64) (err error) {
	if s == nil || s.appointments == nil {
		return fmt.Errorf("appointment repository not configured")
	}

	logger := s.loggerWith(ctx, "DeleteAppointment", "appointment_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to delete appointment", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "appointment deleted")
	}()

	if deleteErr := s.appointments.DeleteAppointment(ctx, id); deleteErr != nil {
		err = mapRepositoryError(deleteErr)
		return err
	}
	return nil
}

// ClearAppointments removes every appointment record. Irreversible.
func (s *AppointmentService) ClearAppointments(ctx context.Context) (err error) {
	if s == nil || s.appointments == nil {
		return fmt.Errorf("appointment repository not configured")
	}

	logger := s.loggerWith(ctx, "ClearAppointments")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to clear appointments", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.WarnContext(ctx, "all appointments cleared")
	}()

	if clearErr := s.appointments.DeleteAllAppointments(ctx); clearErr != nil {
		err = mapRepositoryError(clearErr)
		return err
	}
	return nil
}

// GetAppointment retrieves one appointment by id.
func (s *AppointmentService) GetAppointment(ctx context.Context, id int64) (Appointment, error) {
	if s == nil || s.appointments == nil {
		return Appointment{}, fmt.Errorf("appointment repository not configured")
	}

	appointment, err := s.appointments.GetAppointment(ctx, id)
	if err != nil {
		return Appointment{}, mapRepositoryError(err)
	}
	return appointment, nil
}

// ListAppointments returns every appointment record, newest first.
func (s *AppointmentService) ListAppointments(ctx context.Context) ([]Appointment, error) {
	if s == nil || s.appointments == nil {
		return nil, fmt.Errorf("appointment repository not configured")
	}

	appointments, err := s.appointments.ListAppointments(ctx)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return appointments, nil
}

// AppointmentsOn resolves the full set of appointments effective on one
// calendar date: exact-date singles plus recurring definitions active there.
func (s *AppointmentService) AppointmentsOn(ctx context.Context, date string) ([]Appointment, error) {
	if s == nil || s.appointments == nil {
		return nil, fmt.Errorf("appointment repository not configured")
	}

	day, err := recurrence.ParseDate(date)
	if err != nil {
		return nil, newValidationError("date", "date must be a valid YYYY-MM-DD value")
	}

	return s.appointmentsOnDay(ctx, day)
}

// AppointmentsForWeek resolves appointments across the 7-day window starting
// at startDate, in day order. Results are recomputed on every call.
func (s *AppointmentService) AppointmentsForWeek(ctx context.Context, startDate string) ([]Appointment, error) {
	if s == nil || s.appointments == nil {
		return nil, fmt.Errorf("appointment repository not configured")
	}

	start, err := recurrence.ParseDate(startDate)
	if err != nil {
		return nil, newValidationError("date", "date must be a valid YYYY-MM-DD value")
	}

	var week []Appointment
	for i := 0; i < 7; i++ {
		day, err := s.appointmentsOnDay(ctx, start.AddDate(0, 0, i))
		if err != nil {
			return nil, err
		}
		week = append(week, day...)
	}

	return week, nil
}

func (s *AppointmentService) appointmentsOnDay(ctx context.Context, day time.Time) ([]Appointment, error) {
	singles, err := s.appointments.ListAppointmentsByDate(ctx, recurrence.FormatDate(day))
	if err != nil {
		return nil, mapRepositoryError(err)
	}

	recurring, err := s.appointments.ListAppointmentsByWeekday(ctx, recurrence.AdjustedWeekday(day))
	if err != nil {
		return nil, mapRepositoryError(err)
	}

	resolved := make([]Appointment, 0, len(singles)+len(recurring))
	resolved = append(resolved, singles...)

	for _, appointment := range recurring {
		rule := recurrence.Rule{Weekday: derefInt(appointment.DayOfWeek)}
		if appointment.RepeatStartDate != nil {
			rule.StartDate = *appointment.RepeatStartDate
		}
		if appointment.RepeatEndDate != nil {
			rule.EndDate = *appointment.RepeatEndDate
		}

		active, err := rule.ActiveOn(day)
		if err != nil {
			return nil, err
		}
		if active {
			resolved = append(resolved, appointment)
		}
	}

	return resolved, nil
}

// checkConflict resolves the bookings effective on the probe date and rejects
// the candidate interval when it overlaps any of them. Resolution errors
// propagate; they are never treated as conflict-free.
func (s *AppointmentService) checkConflict(ctx context.Context, date, startTime, endTime string, excludeID int64) error {
	existing, err := s.AppointmentsOn(ctx, date)
	if err != nil {
		return err
	}

	bookings := make([]scheduler.Booking, 0, len(existing))
	for _, appointment := range existing {
		booking := scheduler.Booking{ID: appointment.ID, StartTime: appointment.StartTime}
		if appointment.EndTime != nil {
			booking.EndTime = *appointment.EndTime
		}
		bookings = append(bookings, booking)
	}

	conflict, err := scheduler.DetectConflict(bookings, scheduler.Booking{
		ID:        excludeID,
		StartTime: startTime,
		EndTime:   endTime,
	})
	if err != nil {
		return err
	}
	if conflict == nil {
		return nil
	}

	for _, appointment := range existing {
		if appointment.ID == conflict.WithBookingID {
			return &ConflictError{Conflicting: appointment}
		}
	}
	return &ConflictError{}
}

// validateInput runs the sequential field validation; the first failing
// condition is returned and later ones are not evaluated.
func (s *AppointmentService) validateInput(ctx context.Context, input *AppointmentInput) error {
	switch input.Type {
	case AppointmentTypePrivate, AppointmentTypeInstitute, AppointmentTypeSchool:
	default:
		return newValidationError("type", "type must be private, institute, or school")
	}

	if strings.TrimSpace(input.EntityName) == "" {
		return newValidationError("entity_name", "student or institute name is required")
	}

	if input.SubjectID == 0 {
		return newValidationError("subject_id", "subject is required")
	}

	if strings.TrimSpace(input.StartTime) == "" {
		return newValidationError("start_time", "start time is required")
	}
	start, err := scheduler.ParseClock(input.StartTime)
	if err != nil {
		return newValidationError("start_time", "start time must be a valid HH:mm value")
	}

	if input.Type != AppointmentTypePrivate && strings.TrimSpace(input.EndTime) == "" {
		return newValidationError("end_time", "end time is required for institutes and schools")
	}
	if input.EndTime != "" {
		end, err := scheduler.ParseClock(input.EndTime)
		if err != nil {
			return newValidationError("end_time", "end time must be a valid HH:mm value")
		}
		if start >= end {
			return newValidationError("time", "start time must be before end time")
		}
	}

	if !input.IsRepeating {
		if input.Date == "" {
			return newValidationError("date", "date is required for non-repeating appointments")
		}
		if _, err := recurrence.ParseDate(input.Date); err != nil {
			return newValidationError("date", "date must be a valid YYYY-MM-DD value")
		}
	} else {
		if input.RepeatStartDate == "" || input.RepeatEndDate == "" {
			return newValidationError("repeat_period", "repeat start and end dates are required")
		}
		repeatStart, err := recurrence.ParseDate(input.RepeatStartDate)
		if err != nil {
			return newValidationError("repeat_period", "repeat start date must be a valid YYYY-MM-DD value")
		}
		repeatEnd, err := recurrence.ParseDate(input.RepeatEndDate)
		if err != nil {
			return newValidationError("repeat_period", "repeat end date must be a valid YYYY-MM-DD value")
		}
		if repeatStart.After(repeatEnd) {
			return newValidationError("repeat_period", "repeat start date must not be after the end date")
		}

		days := uniqueDays(input.SelectedDays)
		if len(days) == 0 {
			return newValidationError("selected_days", "at least one weekday must be selected")
		}
		for _, day := range days {
			if day < 0 || day > 6 {
				return newValidationError("selected_days", "weekday index must be in 0..6")
			}
		}
	}

	if input.Type == AppointmentTypePrivate {
		// Private lessons carry neither a session type nor an entity link.
		input.SessionType = ""
		input.EntityID = nil
	} else {
		if input.SessionType != "" && !slices.Contains(SessionTypes, input.SessionType) {
			return newValidationError("session_type", "unknown session type")
		}
		if input.EntityID == nil {
			return newValidationError("entity_id", "an institute or school must be selected")
		}
		if s.institutes == nil {
			return fmt.Errorf("institute catalog not configured")
		}
		institute, err := s.institutes.GetInstitute(ctx, *input.EntityID)
		if err != nil {
			if isNotFound(err) {
				return newValidationError("entity_id", "the selected institute does not exist")
			}
			return err
		}
		if institute.Type != input.Type {
			return newValidationError("entity_id", "the selected institute does not match the appointment type")
		}
	}

	return nil
}

func (s *AppointmentService) resolveSubjectName(ctx context.Context, subjectID int64) (string, error) {
	if s.subjects == nil {
		return "", fmt.Errorf("subject directory not configured")
	}

	subject, err := s.subjects.GetSubject(ctx, subjectID)
	if err != nil {
		if isNotFound(err) {
			return "", newValidationError("subject_id", "the selected subject does not exist")
		}
		return "", err
	}
	return subject.Name, nil
}

func buildAppointment(input AppointmentInput, subjectName string, now time.Time) Appointment {
	appointment := Appointment{
		Type:        input.Type,
		EntityName:  strings.TrimSpace(input.EntityName),
		EntityID:    input.EntityID,
		SubjectID:   input.SubjectID,
		SubjectName: subjectName,
		StartTime:   input.StartTime,
		IsRepeating: input.IsRepeating,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if input.EndTime != "" {
		endTime := input.EndTime
		appointment.EndTime = &endTime
	}
	if input.IsRepeating {
		repeatStart := input.RepeatStartDate
		repeatEnd := input.RepeatEndDate
		appointment.RepeatStartDate = &repeatStart
		appointment.RepeatEndDate = &repeatEnd
	}
	if input.SessionType != "" {
		sessionType := input.SessionType
		appointment.SessionType = &sessionType
	}
	if input.Notes != "" {
		notes := input.Notes
		appointment.Notes = &notes
	}

	return appointment
}

func uniqueDays(days []int) []int {
	seen := make(map[int]struct{}, len(days))
	result := make([]int, 0, len(days))
	for _, day := range days {
		if _, ok := seen[day]; ok {
			continue
		}
		seen[day] = struct{}{}
		result = append(result, day)
	}
	return result
}

func derefInt(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound)
}

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}
	if isNotFound(err) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrForeignKeyViolation) {
		return newValidationError("reference", "a referenced record is missing")
	}
	if errors.Is(err, persistence.ErrConstraintViolation) {
		return newValidationError("input", "the submitted values violate a storage constraint")
	}
	return err
}
