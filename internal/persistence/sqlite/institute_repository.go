package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/example/tutor-planner/internal/persistence"
)

// InstituteRepository implements persistence.InstituteRepository using SQLite.
type InstituteRepository struct {
	pool *ConnectionPool
}

// NewInstituteRepository creates a new SQLite institute repository.
func NewInstituteRepository(pool *ConnectionPool) *InstituteRepository {
	return &InstituteRepository{pool: pool}
}

// CreateInstitute inserts a new institute and returns it with its assigned id.
func (r *InstituteRepository) CreateInstitute(ctx context.Context, institute persistence.Institute) (persistence.Institute, error) {
	const query = `
		INSERT INTO institutes (name, type, account_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`

	result, err := r.pool.db.ExecContext(ctx, query,
		institute.Name,
		institute.Type,
		nullInt64(institute.AccountID),
		formatTime(institute.CreatedAt),
		formatTime(institute.UpdatedAt),
	)
	if err != nil {
		return persistence.Institute{}, mapError(err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return persistence.Institute{}, mapError(err)
	}

	institute.ID = id
	return institute, nil
}

// GetInstitute retrieves an institute by id.
func (r *InstituteRepository) GetInstitute(ctx context.Context, id int64) (persistence.Institute, error) {
	const query = `SELECT id, name, type, account_id, created_at, updated_at FROM institutes WHERE id = ?`

	institute, err := scanInstitute(r.pool.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return persistence.Institute{}, err
	}
	return institute, nil
}

// UpdateInstitute updates an existing institute.
func (r *InstituteRepository) UpdateInstitute(ctx context.Context, institute persistence.Institute) (persistence.Institute, error) {
	const query = `
		UPDATE institutes
		SET name = ?, type = ?, account_id = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.pool.db.ExecContext(ctx, query,
		institute.Name,
		institute.Type,
		nullInt64(institute.AccountID),
		formatTime(institute.UpdatedAt),
		institute.ID,
	)
	if err != nil {
		return persistence.Institute{}, mapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return persistence.Institute{}, mapError(err)
	}
	if affected == 0 {
		return persistence.Institute{}, persistence.ErrNotFound
	}

	return r.GetInstitute(ctx, institute.ID)
}

// ListInstitutes returns institutes ordered by name, optionally narrowed to
// one type.
func (r *InstituteRepository) ListInstitutes(ctx context.Context, typeFilter string) ([]persistence.Institute, error) {
	query := `SELECT id, name, type, account_id, created_at, updated_at FROM institutes ORDER BY name, id`
	args := []any{}
	if typeFilter != "" {
		query = `SELECT id, name, type, account_id, created_at, updated_at FROM institutes WHERE type = ? ORDER BY name, id`
		args = append(args, typeFilter)
	}

	rows, err := r.pool.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var institutes []persistence.Institute
	for rows.Next() {
		institute, err := scanInstitute(rows)
		if err != nil {
			return nil, err
		}
		institutes = append(institutes, institute)
	}

	return institutes, mapError(rows.Err())
}

// DeleteInstitute removes an institute by id.
func (r *InstituteRepository) DeleteInstitute(ctx context.Context, id int64) error {
	result, err := r.pool.db.ExecContext(ctx, `DELETE FROM institutes WHERE id = ?`, id)
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

func scanInstitute(row rowScanner) (persistence.Institute, error) {
	var (
		institute persistence.Institute
		accountID sql.NullInt64
		createdAt string
		updatedAt string
	)

	if err := row.Scan(&institute.ID, &institute.Name, &institute.Type, &accountID, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Institute{}, persistence.ErrNotFound
		}
		return persistence.Institute{}, mapError(err)
	}

	institute.AccountID = int64Ptr(accountID)

	var err error
	if institute.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Institute{}, err
	}
	if institute.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.Institute{}, err
	}

	return institute, nil
}
