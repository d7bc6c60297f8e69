package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// recentPaymentWindow is the trailing window used for account statistics.
const recentPaymentWindow = 7 * 24 * time.Hour

// AccountRepository captures the persistence interactions needed by the
// account service. Payment mutations are expected to keep the account's
// running total consistent with the ledger.
type AccountRepository interface {
	GetAccount(ctx context.Context, id int64) (Account, error)
	GetAccountByEntity(ctx context.Context, entityID int64) (Account, error)
	ListAccounts(ctx context.Context) ([]Account, error)
	DeleteAllAccounts(ctx context.Context) error
	AddPayment(ctx context.Context, payment Payment) (Payment, error)
	UpdatePayment(ctx context.Context, payment Payment) (Payment, error)
	DeletePayment(ctx context.Context, accountID, paymentID int64) error
}

// AccountService exposes the financial accounts and their payment ledgers.
// Accounts themselves are created and removed by the institute service; this
// service only reads them and mutates their ledgers.
type AccountService struct {
	accounts AccountRepository
	now      func() time.Time
	logger   *slog.Logger
}

// NewAccountService wires dependencies for account operations.
func NewAccountService(accounts AccountRepository, now func() time.Time) *AccountService {
	return NewAccountServiceWithLogger(accounts, now, nil)
}

// NewAccountServiceWithLogger constructs an AccountService with a specified
// logger.
func NewAccountServiceWithLogger(accounts AccountRepository, now func() time.Time, logger *slog.Logger) *AccountService {
	if now == nil {
		now = time.Now
	}
	return &AccountService{
		accounts: accounts,
		now:      now,
		logger:   defaultLogger(logger),
	}
}

func (s *AccountService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AccountService", operation, attrs...)
}

// GetAccount retrieves one account with its full payment ledger.
func (s *AccountService) GetAccount(ctx context.Context, id int64) (Account, error) {
	if s == nil || s.accounts == nil {
		return Account{}, fmt.Errorf("account repository not configured")
	}

	account, err := s.accounts.GetAccount(ctx, id)
	if err != nil {
		return Account{}, mapRepositoryError(err)
	}
	return account, nil
}

// GetAccountByEntity retrieves the account owned by an institute or school.
func (s *AccountService) GetAccountByEntity(ctx context.Context, entityID int64) (Account, error) {
	if s == nil || s.accounts == nil {
		return Account{}, fmt.Errorf("account repository not configured")
	}

	account, err := s.accounts.GetAccountByEntity(ctx, entityID)
	if err != nil {
		return Account{}, mapRepositoryError(err)
	}
	return account, nil
}

// ListAccounts returns all accounts with their ledgers.
func (s *AccountService) ListAccounts(ctx context.Context) ([]Account, error) {
	if s == nil || s.accounts == nil {
		return nil, fmt.Errorf("account repository not configured")
	}

	accounts, err := s.accounts.ListAccounts(ctx)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return accounts, nil
}

// AccountStats reports per-account statistics: the all-time total, the total
// received over the trailing week, and the most recent payment date.
func (s *AccountService) AccountStats(ctx context.Context) ([]AccountStats, error) {
	if s == nil || s.accounts == nil {
		return nil, fmt.Errorf("account repository not configured")
	}

	accounts, err := s.accounts.ListAccounts(ctx)
	if err != nil {
		return nil, mapRepositoryError(err)
	}

	cutoff := s.now().Add(-recentPaymentWindow)
	stats := make([]AccountStats, 0, len(accounts))
	for _, account := range accounts {
		entry := AccountStats{Account: account}
		for _, payment := range account.Payments {
			if !payment.PaidOn.Before(cutoff) {
				entry.RecentPayments += payment.Amount
			}
			if entry.LastPaymentDate == nil || payment.PaidOn.After(*entry.LastPaymentDate) {
				paidOn := payment.PaidOn
				entry.LastPaymentDate = &paidOn
			}
		}
		stats = append(stats, entry)
	}

	return stats, nil
}

// PaymentsInRange returns an account's payments with PaidOn inside the
// inclusive [from, to] window, in ledger order.
func (s *AccountService) PaymentsInRange(ctx context.Context, accountID int64, from, to time.Time) ([]Payment, error) {
	if s == nil || s.accounts == nil {
		return nil, fmt.Errorf("account repository not configured")
	}

	if to.Before(from) {
		return nil, newValidationError("range", "the end of the range must not precede its start")
	}

	account, err := s.accounts.GetAccount(ctx, accountID)
	if err != nil {
		return nil, mapRepositoryError(err)
	}

	var payments []Payment
	for _, payment := range account.Payments {
		if payment.PaidOn.Before(from) || payment.PaidOn.After(to) {
			continue
		}
		payments = append(payments, payment)
	}
	return payments, nil
}

// TotalInRange sums an account's payments with PaidOn inside the inclusive
// [from, to] window.
func (s *AccountService) TotalInRange(ctx context.Context, accountID int64, from, to time.Time) (float64, error) {
	payments, err := s.PaymentsInRange(ctx, accountID, from, to)
	if err != nil {
		return 0, err
	}

	var total float64
	for _, payment := range payments {
		total += payment.Amount
	}
	return total, nil
}

// AddPayment appends a payment to an account's ledger. The account's running
// total is recomputed from the ledger in the same transaction as the insert.
func (s *AccountService) AddPayment(ctx context.Context, accountID int64, input PaymentInput) (created Payment, err error) {
	if s == nil || s.accounts == nil {
		return Payment{}, fmt.Errorf("account repository not configured")
	}

	logger := s.loggerWith(ctx, "AddPayment", "account_id", accountID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to add payment", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "payment added", "payment_id", created.ID)
	}()

	payment, buildErr := s.buildPayment(accountID, input)
	if buildErr != nil {
		err = buildErr
		return Payment{}, err
	}

	if _, getErr := s.accounts.GetAccount(ctx, accountID); getErr != nil {
		err = mapRepositoryError(getErr)
		return Payment{}, err
	}

	created, addErr := s.accounts.AddPayment(ctx, payment)
	if addErr != nil {
		err = mapRepositoryError(addErr)
		return Payment{}, err
	}
	return created, nil
}

// UpdatePayment rewrites one ledger entry and recomputes the account total.
func (s *AccountService) UpdatePayment(ctx context.Context, accountID, paymentID int64, input PaymentInput) (updated Payment, err error) {
	if s == nil || s.accounts == nil {
		return Payment{}, fmt.Errorf("account repository not configured")
	}

	logger := s.loggerWith(ctx, "UpdatePayment", "account_id", accountID, "payment_id", paymentID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update payment", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "payment updated")
	}()

	payment, buildErr := s.buildPayment(accountID, input)
	if buildErr != nil {
		err = buildErr
		return Payment{}, err
	}
	payment.ID = paymentID

	updated, updateErr := s.accounts.UpdatePayment(ctx, payment)
	if updateErr != nil {
		err = mapRepositoryError(updateErr)
		return Payment{}, err
	}
	return updated, nil
}

// DeletePayment removes one ledger entry and recomputes the account total.
func (s *AccountService) DeletePayment(ctx context.Context, accountID, paymentID int64) (err error) {
	if s == nil || s.accounts == nil {
		return fmt.Errorf("account repository not configured")
	}

	logger := s.loggerWith(ctx, "DeletePayment", "account_id", accountID, "payment_id", paymentID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to delete payment", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "payment deleted")
	}()

	if deleteErr := s.accounts.DeletePayment(ctx, accountID, paymentID); deleteErr != nil {
		err = mapRepositoryError(deleteErr)
		return err
	}
	return nil
}

// ClearAllAccounts removes every account together with its payments.
// Irreversible.
func (s *AccountService) ClearAllAccounts(ctx context.Context) (err error) {
	if s == nil || s.accounts == nil {
		return fmt.Errorf("account repository not configured")
	}

	logger := s.loggerWith(ctx, "ClearAllAccounts")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to clear accounts", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.WarnContext(ctx, "all accounts cleared")
	}()

	if clearErr := s.accounts.DeleteAllAccounts(ctx); clearErr != nil {
		err = mapRepositoryError(clearErr)
		return err
	}
	return nil
}

func (s *AccountService) buildPayment(accountID int64, input PaymentInput) (Payment, error) {
	if input.Amount <= 0 {
		return Payment{}, newValidationError("amount", "payment amount must be positive")
	}

	now := s.now()
	payment := Payment{
		AccountID: accountID,
		Amount:    input.Amount,
		PaidOn:    input.PaidOn,
		CreatedAt: now,
	}
	if payment.PaidOn.IsZero() {
		payment.PaidOn = now
	}
	if description := strings.TrimSpace(input.Description); description != "" {
		payment.Description = &description
	}
	return payment, nil
}
