package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/example/tutor-planner/internal/persistence"
)

const appointmentColumns = `
	id, type, entity_name, entity_id, subject_id, subject_name,
	start_time, end_time, date, day_of_week, is_repeating,
	repeat_start_date, repeat_end_date, session_type, notes,
	created_at, updated_at
`

// AppointmentRepository implements persistence.AppointmentRepository using SQLite.
type AppointmentRepository struct {
	pool *ConnectionPool
}

// NewAppointmentRepository creates a new SQLite appointment repository.
func NewAppointmentRepository(pool *ConnectionPool) *AppointmentRepository {
	return &AppointmentRepository{pool: pool}
}

// CreateAppointment inserts a new appointment and returns it with its
// assigned id.
func (r *AppointmentRepository) CreateAppointment(ctx context.Context, appointment persistence.Appointment) (persistence.Appointment, error) {
	const query = `
		INSERT INTO appointments (
			type, entity_name, entity_id, subject_id, subject_name,
			start_time, end_time, date, day_of_week, is_repeating,
			repeat_start_date, repeat_end_date, session_type, notes,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.pool.db.ExecContext(ctx, query,
		appointment.Type,
		appointment.EntityName,
		nullInt64(appointment.EntityID),
		appointment.SubjectID,
		appointment.SubjectName,
		appointment.StartTime,
		nullString(appointment.EndTime),
		nullString(appointment.Date),
		nullIntFromPtr(appointment.DayOfWeek),
		appointment.IsRepeating,
		nullString(appointment.RepeatStartDate),
		nullString(appointment.RepeatEndDate),
		nullString(appointment.SessionType),
		nullString(appointment.Notes),
		formatTime(appointment.CreatedAt),
		formatTime(appointment.UpdatedAt),
	)
	if err != nil {
		return persistence.Appointment{}, mapError(err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return persistence.Appointment{}, mapError(err)
	}

	appointment.ID = id
	return appointment, nil
}

// GetAppointment retrieves an appointment by id.
func (r *AppointmentRepository) GetAppointment(ctx context.Context, id int64) (persistence.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = ?`

	appointment, err := scanAppointment(r.pool.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return persistence.Appointment{}, err
	}
	return appointment, nil
}

// UpdateAppointment rewrites an existing appointment.
func (r *AppointmentRepository) UpdateAppointment(ctx context.Context, appointment persistence.Appointment) (persistence.Appointment, error) {
	const query = `
		UPDATE appointments SET
			type = ?, entity_name = ?, entity_id = ?, subject_id = ?, subject_name = ?,
			start_time = ?, end_time = ?, date = ?, day_of_week = ?, is_repeating = ?,
			repeat_start_date = ?, repeat_end_date = ?, session_type = ?, notes = ?,
			updated_at = ?
		WHERE id = ?
	`

	result, err := r.pool.db.ExecContext(ctx, query,
		appointment.Type,
		appointment.EntityName,
		nullInt64(appointment.EntityID),
		appointment.SubjectID,
		appointment.SubjectName,
		appointment.StartTime,
		nullString(appointment.EndTime),
		nullString(appointment.Date),
		nullIntFromPtr(appointment.DayOfWeek),
		appointment.IsRepeating,
		nullString(appointment.RepeatStartDate),
		nullString(appointment.RepeatEndDate),
		nullString(appointment.SessionType),
		nullString(appointment.Notes),
		formatTime(appointment.UpdatedAt),
		appointment.ID,
	)
	if err != nil {
		return persistence.Appointment{}, mapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return persistence.Appointment{}, mapError(err)
	}
	if affected == 0 {
		return persistence.Appointment{}, persistence.ErrNotFound
	}

	return r.GetAppointment(ctx, appointment.ID)
}

// ListAppointments returns all appointments, newest first.
func (r *AppointmentRepository) ListAppointments(ctx context.Context) ([]persistence.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments ORDER BY created_at DESC, id DESC`
	return r.queryAppointments(ctx, query)
}

// ListAppointmentsByDate returns the non-repeating appointments scheduled
// exactly on the given date, ordered by start time.
func (r *AppointmentRepository) ListAppointmentsByDate(ctx context.Context, date string) ([]persistence.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE date = ? AND is_repeating = 0 ORDER BY start_time, id`
	return r.queryAppointments(ctx, query, date)
}

// ListAppointmentsByWeekday returns the recurring appointment definitions for
// one Saturday-first weekday, ordered by start time.
func (r *AppointmentRepository) ListAppointmentsByWeekday(ctx context.Context, weekday int) ([]persistence.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE day_of_week = ? AND is_repeating = 1 ORDER BY start_time, id`
	return r.queryAppointments(ctx, query, weekday)
}

// CountAppointmentsBySubject reports how many appointments reference a subject.
func (r *AppointmentRepository) CountAppointmentsBySubject(ctx context.Context, subjectID int64) (int, error) {
	var count int
	err := r.pool.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM appointments WHERE subject_id = ?`, subjectID).Scan(&count)
	if err != nil {
		return 0, mapError(err)
	}
	return count, nil
}

// CountAppointmentsByEntity reports how many appointments reference an
// institute or school.
func (r *AppointmentRepository) CountAppointmentsByEntity(ctx context.Context, entityID int64) (int, error) {
	var count int
	err := r.pool.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM appointments WHERE entity_id = ?`, entityID).Scan(&count)
	if err != nil {
		return 0, mapError(err)
	}
	return count, nil
}

// RenameAppointmentSubject rewrites the denormalized subject name on every
// appointment referencing the subject.
func (r *AppointmentRepository) RenameAppointmentSubject(ctx context.Context, subjectID int64, subjectName string, updatedAt time.Time) error {
	_, err := r.pool.db.ExecContext(ctx,
		`UPDATE appointments SET subject_name = ?, updated_at = ? WHERE subject_id = ?`,
		subjectName, formatTime(updatedAt), subjectID,
	)
	return mapError(err)
}

// DeleteAppointment removes an appointment by id.
func (r *AppointmentRepository) DeleteAppointment(ctx context.Context, id int64) error {
	result, err := r.pool.db.ExecContext(ctx, `DELETE FROM appointments WHERE id = ?`, id)
	if err != nil {
		return mapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return mapError(err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}

	return nil
}

// DeleteAllAppointments removes every appointment record.
func (r *AppointmentRepository) DeleteAllAppointments(ctx context.Context) error {
	_, err := r.pool.db.ExecContext(ctx, `DELETE FROM appointments`)
	return mapError(err)
}

func (r *AppointmentRepository) queryAppointments(ctx context.Context, query string, args ...any) ([]persistence.Appointment, error) {
	rows, err := r.pool.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var appointments []persistence.Appointment
	for rows.Next() {
		appointment, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		appointments = append(appointments, appointment)
	}

	return appointments, mapError(rows.Err())
}

func scanAppointment(row rowScanner) (persistence.Appointment, error) {
	var (
		appointment     persistence.Appointment
		entityID        sql.NullInt64
		endTime         sql.NullString
		date            sql.NullString
		dayOfWeek       sql.NullInt64
		repeatStartDate sql.NullString
		repeatEndDate   sql.NullString
		sessionType     sql.NullString
		notes           sql.NullString
		createdAt       string
		updatedAt       string
	)

	if err := row.Scan(
		&appointment.ID,
		&appointment.Type,
		&appointment.EntityName,
		&entityID,
		&appointment.SubjectID,
		&appointment.SubjectName,
		&appointment.StartTime,
		&endTime,
		&date,
		&dayOfWeek,
		&appointment.IsRepeating,
		&repeatStartDate,
		&repeatEndDate,
		&sessionType,
		&notes,
		&createdAt,
		&updatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Appointment{}, persistence.ErrNotFound
		}
		return persistence.Appointment{}, mapError(err)
	}

	appointment.EntityID = int64Ptr(entityID)
	appointment.EndTime = stringPtr(endTime)
	appointment.Date = stringPtr(date)
	appointment.DayOfWeek = intPtr(dayOfWeek)
	appointment.RepeatStartDate = stringPtr(repeatStartDate)
	appointment.RepeatEndDate = stringPtr(repeatEndDate)
	appointment.SessionType = stringPtr(sessionType)
	appointment.Notes = stringPtr(notes)

	var err error
	if appointment.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Appointment{}, err
	}
	if appointment.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.Appointment{}, err
	}

	return appointment, nil
}
