package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/example/tutor-planner/internal/persistence"
)

// AccountRepository implements persistence.AccountRepository using SQLite.
// Payment mutations and the denormalized total always change inside one
// transaction, so the total never drifts from the ledger sum.
type AccountRepository struct {
	pool *ConnectionPool
}

// NewAccountRepository creates a new SQLite account repository.
func NewAccountRepository(pool *ConnectionPool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

// CreateAccount inserts a new account and returns it with its assigned id.
func (r *AccountRepository) CreateAccount(ctx context.Context, account persistence.Account) (persistence.Account, error) {
	const query = `
		INSERT INTO accounts (entity_id, entity_name, entity_type, total_payments, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := r.pool.db.ExecContext(ctx, query,
		account.EntityID,
		account.EntityName,
		account.EntityType,
		account.TotalPayments,
		formatTime(account.CreatedAt),
		formatTime(account.UpdatedAt),
	)
	if err != nil {
		return persistence.Account{}, mapError(err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return persistence.Account{}, mapError(err)
	}

	account.ID = id
	return account, nil
}

// GetAccount retrieves an account by id including its payment ledger in
// insertion order.
func (r *AccountRepository) GetAccount(ctx context.Context, id int64) (persistence.Account, error) {
	const query = `
		SELECT id, entity_id, entity_name, entity_type, total_payments, created_at, updated_at
		FROM accounts WHERE id = ?
	`

	account, err := scanAccount(r.pool.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return persistence.Account{}, err
	}

	if account.Payments, err = r.listPayments(ctx, account.ID); err != nil {
		return persistence.Account{}, err
	}

	return account, nil
}

// GetAccountByEntity retrieves the account linked to an institute or school.
func (r *AccountRepository) GetAccountByEntity(ctx context.Context, entityID int64) (persistence.Account, error) {
	const query = `
		SELECT id, entity_id, entity_name, entity_type, total_payments, created_at, updated_at
		FROM accounts WHERE entity_id = ?
	`

	account, err := scanAccount(r.pool.db.QueryRowContext(ctx, query, entityID))
	if err != nil {
		return persistence.Account{}, err
	}

	if account.Payments, err = r.listPayments(ctx, account.ID); err != nil {
		return persistence.Account{}, err
	}

	return account, nil
}

// ListAccounts returns all accounts with their ledgers, ordered by entity
// name.
func (r *AccountRepository) ListAccounts(ctx context.Context) ([]persistence.Account, error) {
	const query = `
		SELECT id, entity_id, entity_name, entity_type, total_payments, created_at, updated_at
		FROM accounts ORDER BY entity_name, id
	`

	rows, err := r.pool.db.QueryContext(ctx, query)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var accounts []persistence.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}

	for i := range accounts {
		if accounts[i].Payments, err = r.listPayments(ctx, accounts[i].ID); err != nil {
			return nil, err
		}
	}

	return accounts, nil
}

// RenameAccountEntity updates the denormalized entity name on an account.
func (r *AccountRepository) RenameAccountEntity(ctx context.Context, id int64, entityName string, updatedAt time.Time) error {
	result, err := r.pool.db.ExecContext(ctx,
		`UPDATE accounts SET entity_name = ?, updated_at = ? WHERE id = ?`,
		entityName, formatTime(updatedAt), id,
	)
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

// DeleteAccount removes an account; its payments cascade with it.
func (r *AccountRepository) DeleteAccount(ctx context.Context, id int64) error {
	result, err := r.pool.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id)
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

// DeleteAllAccounts removes every account and payment.
func (r *AccountRepository) DeleteAllAccounts(ctx context.Context) error {
	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM payments`); err != nil {
			return mapError(err)
		}
		if _, err := tx.Exec(`DELETE FROM accounts`); err != nil {
			return mapError(err)
		}
		return nil
	})
}

// AddPayment appends a payment to an account's ledger and refreshes the
// denormalized total in the same transaction.
func (r *AccountRepository) AddPayment(ctx context.Context, payment persistence.Payment) (persistence.Payment, error) {
	err := r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		var exists int64
		if err := tx.QueryRow(`SELECT id FROM accounts WHERE id = ?`, payment.AccountID).Scan(&exists); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return persistence.ErrNotFound
			}
			return mapError(err)
		}

		const query = `
			INSERT INTO payments (account_id, amount, paid_on, description, created_at)
			VALUES (?, ?, ?, ?, ?)
		`
		result, err := tx.Exec(query,
			payment.AccountID,
			payment.Amount,
			formatTime(payment.PaidOn),
			nullString(payment.Description),
			formatTime(payment.CreatedAt),
		)
		if err != nil {
			return mapError(err)
		}

		id, err := result.LastInsertId()
		if err != nil {
			return mapError(err)
		}
		payment.ID = id

		return refreshAccountTotal(tx, payment.AccountID)
	})
	if err != nil {
		return persistence.Payment{}, err
	}

	return payment, nil
}

// UpdatePayment rewrites one ledger entry and refreshes the denormalized
// total in the same transaction.
func (r *AccountRepository) UpdatePayment(ctx context.Context, payment persistence.Payment) (persistence.Payment, error) {
	err := r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		const query = `
			UPDATE payments SET amount = ?, paid_on = ?, description = ?
			WHERE id = ? AND account_id = ?
		`
		result, err := tx.Exec(query,
			payment.Amount,
			formatTime(payment.PaidOn),
			nullString(payment.Description),
			payment.ID,
			payment.AccountID,
		)
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

		return refreshAccountTotal(tx, payment.AccountID)
	})
	if err != nil {
		return persistence.Payment{}, err
	}

	return payment, nil
}

// DeletePayment removes one ledger entry and refreshes the denormalized
// total in the same transaction.
func (r *AccountRepository) DeletePayment(ctx context.Context, accountID, paymentID int64) error {
	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		result, err := tx.Exec(`DELETE FROM payments WHERE id = ? AND account_id = ?`, paymentID, accountID)
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

		return refreshAccountTotal(tx, accountID)
	})
}

func refreshAccountTotal(tx *sql.Tx, accountID int64) error {
	const query = `
		UPDATE accounts
		SET total_payments = (SELECT COALESCE(SUM(amount), 0) FROM payments WHERE account_id = ?),
		    updated_at = ?
		WHERE id = ?
	`
	result, err := tx.Exec(query, accountID, formatTime(time.Now()), accountID)
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

func (r *AccountRepository) listPayments(ctx context.Context, accountID int64) ([]persistence.Payment, error) {
	const query = `
		SELECT id, account_id, amount, paid_on, description, created_at
		FROM payments WHERE account_id = ? ORDER BY id
	`

	rows, err := r.pool.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var payments []persistence.Payment
	for rows.Next() {
		var (
			payment     persistence.Payment
			paidOn      string
			description sql.NullString
			createdAt   string
		)
		if err := rows.Scan(&payment.ID, &payment.AccountID, &payment.Amount, &paidOn, &description, &createdAt); err != nil {
			return nil, mapError(err)
		}

		payment.Description = stringPtr(description)
		if payment.PaidOn, err = parseTime(paidOn); err != nil {
			return nil, err
		}
		if payment.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}

		payments = append(payments, payment)
	}

	return payments, mapError(rows.Err())
}

func scanAccount(row rowScanner) (persistence.Account, error) {
	var (
		account   persistence.Account
		createdAt string
		updatedAt string
	)

	if err := row.Scan(
		&account.ID,
		&account.EntityID,
		&account.EntityName,
		&account.EntityType,
		&account.TotalPayments,
		&createdAt,
		&updatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Account{}, persistence.ErrNotFound
		}
		return persistence.Account{}, mapError(err)
	}

	var err error
	if account.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Account{}, err
	}
	if account.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.Account{}, err
	}

	return account, nil
}
