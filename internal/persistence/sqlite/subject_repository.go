package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/example/tutor-planner/internal/persistence"
)

// SubjectRepository implements persistence.SubjectRepository using SQLite.
type SubjectRepository struct {
	pool *ConnectionPool
}

// NewSubjectRepository creates a new SQLite subject repository.
func NewSubjectRepository(pool *ConnectionPool) *SubjectRepository {
	return &SubjectRepository{pool: pool}
}

// CreateSubject inserts a new subject and returns it with its assigned id.
func (r *SubjectRepository) CreateSubject(ctx context.Context, subject persistence.Subject) (persistence.Subject, error) {
	const query = `
		INSERT INTO subjects (name, created_at, updated_at)
		VALUES (?, ?, ?)
	`

	result, err := r.pool.db.ExecContext(ctx, query, subject.Name, formatTime(subject.CreatedAt), formatTime(subject.UpdatedAt))
	if err != nil {
		return persistence.Subject{}, mapError(err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return persistence.Subject{}, mapError(err)
	}

	subject.ID = id
	return subject, nil
}

// GetSubject retrieves a subject by id.
func (r *SubjectRepository) GetSubject(ctx context.Context, id int64) (persistence.Subject, error) {
	const query = `SELECT id, name, created_at, updated_at FROM subjects WHERE id = ?`

	subject, err := scanSubject(r.pool.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return persistence.Subject{}, err
	}
	return subject, nil
}

// UpdateSubject updates an existing subject.
func (r *SubjectRepository) UpdateSubject(ctx context.Context, subject persistence.Subject) (persistence.Subject, error) {
	const query = `UPDATE subjects SET name = ?, updated_at = ? WHERE id = ?`

	result, err := r.pool.db.ExecContext(ctx, query, subject.Name, formatTime(subject.UpdatedAt), subject.ID)
	if err != nil {
		return persistence.Subject{}, mapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return persistence.Subject{}, mapError(err)
	}
	if affected == 0 {
		return persistence.Subject{}, persistence.ErrNotFound
	}

	return r.GetSubject(ctx, subject.ID)
}

// ListSubjects returns all subjects ordered by name.
func (r *SubjectRepository) ListSubjects(ctx context.Context) ([]persistence.Subject, error) {
	const query = `SELECT id, name, created_at, updated_at FROM subjects ORDER BY name, id`

	rows, err := r.pool.db.QueryContext(ctx, query)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var subjects []persistence.Subject
	for rows.Next() {
		subject, err := scanSubject(rows)
		if err != nil {
			return nil, err
		}
		subjects = append(subjects, subject)
	}

	return subjects, mapError(rows.Err())
}

// DeleteSubject removes a subject by id.
func (r *SubjectRepository) DeleteSubject(ctx context.Context, id int64) error {
	result, err := r.pool.db.ExecContext(ctx, `DELETE FROM subjects WHERE id = ?`, id)
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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubject(row rowScanner) (persistence.Subject, error) {
	var (
		subject   persistence.Subject
		createdAt string
		updatedAt string
	)

	if err := row.Scan(&subject.ID, &subject.Name, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Subject{}, persistence.ErrNotFound
		}
		return persistence.Subject{}, mapError(err)
	}

	var err error
	if subject.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Subject{}, err
	}
	if subject.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.Subject{}, err
	}

	return subject, nil
}
