package application

import (
	"context"
	"errors"
	"testing"
	"time"
)

// accountRepoStub mirrors the sqlite repository contract: payment mutations
// recompute the owning account's total from the ledger.
type accountRepoStub struct {
	nextAccountID int64
	nextPaymentID int64
	accounts      []Account
}

func (r *accountRepoStub) addAccount(entityID int64, entityName string) Account {
	r.nextAccountID++
	account := Account{ID: r.nextAccountID, EntityID: entityID, EntityName: entityName, EntityType: EntityTypeInstitute}
	r.accounts = append(r.accounts, account)
	return account
}

func (r *accountRepoStub) find(id int64) *Account {
	for i := range r.accounts {
		if r.accounts[i].ID == id {
			return &r.accounts[i]
		}
	}
	return nil
}

func (r *accountRepoStub) refreshTotal(account *Account) {
	var total float64
	for _, payment := range account.Payments {
		total += payment.Amount
	}
	account.TotalPayments = total
}

func (r *accountRepoStub) GetAccount(ctx context.Context, id int64) (Account, error) {
	if account := r.find(id); account != nil {
		return *account, nil
	}
	return Account{}, ErrNotFound
}

func (r *accountRepoStub) GetAccountByEntity(ctx context.Context, entityID int64) (Account, error) {
	for _, account := range r.accounts {
		if account.EntityID == entityID {
			return account, nil
		}
	}
	return Account{}, ErrNotFound
}

func (r *accountRepoStub) ListAccounts(ctx context.Context) ([]Account, error) {
	out := make([]Account, len(r.accounts))
	copy(out, r.accounts)
	return out, nil
}

func (r *accountRepoStub) DeleteAllAccounts(ctx context.Context) error {
	r.accounts = nil
	return nil
}

func (r *accountRepoStub) AddPayment(ctx context.Context, payment Payment) (Payment, error) {
	account := r.find(payment.AccountID)
	if account == nil {
		return Payment{}, ErrNotFound
	}
	r.nextPaymentID++
	payment.ID = r.nextPaymentID
	account.Payments = append(account.Payments, payment)
	r.refreshTotal(account)
	return payment, nil
}

func (r *accountRepoStub) UpdatePayment(ctx context.Context, payment Payment) (Payment, error) {
	account := r.find(payment.AccountID)
	if account == nil {
		return Payment{}, ErrNotFound
	}
	for i, existing := range account.Payments {
		if existing.ID == payment.ID {
			payment.CreatedAt = existing.CreatedAt
			account.Payments[i] = payment
			r.refreshTotal(account)
			return payment, nil
		}
	}
	return Payment{}, ErrNotFound
}

func (r *accountRepoStub) DeletePayment(ctx context.Context, accountID, paymentID int64) error {
	account := r.find(accountID)
	if account == nil {
		return ErrNotFound
	}
	for i, payment := range account.Payments {
		if payment.ID == paymentID {
			account.Payments = append(account.Payments[:i], account.Payments[i+1:]...)
			r.refreshTotal(account)
			return nil
		}
	}
	return ErrNotFound
}

func newAccountFixture() (*AccountService, *accountRepoStub, Account) {
	repo := &accountRepoStub{}
	account := repo.addAccount(5, "معهد النور")
	return NewAccountService(repo, fixedNow), repo, account
}

func TestAccountService_AddPayment(t *testing.T) {
	t.Parallel()

	t.Run("total tracks the ledger", func(t *testing.T) {
		svc, _, account := newAccountFixture()
		ctx := context.Background()

		if _, err := svc.AddPayment(ctx, account.ID, PaymentInput{Amount: 150}); err != nil {
			t.Fatalf("AddPayment returned error: %v", err)
		}
		if _, err := svc.AddPayment(ctx, account.ID, PaymentInput{Amount: 50, Description: "قسط أول"}); err != nil {
			t.Fatalf("AddPayment returned error: %v", err)
		}

		got, err := svc.GetAccount(ctx, account.ID)
		if err != nil {
			t.Fatalf("GetAccount returned error: %v", err)
		}
		if got.TotalPayments != 200 {
			t.Fatalf("expected total 200, got %v", got.TotalPayments)
		}
		if len(got.Payments) != 2 {
			t.Fatalf("expected 2 ledger entries, got %d", len(got.Payments))
		}
	})

	t.Run("defaults PaidOn to now", func(t *testing.T) {
		svc, _, account := newAccountFixture()

		created, err := svc.AddPayment(context.Background(), account.ID, PaymentInput{Amount: 10})
		if err != nil {
			t.Fatalf("AddPayment returned error: %v", err)
		}
		if !created.PaidOn.Equal(fixedNow()) {
			t.Fatalf("expected PaidOn %v, got %v", fixedNow(), created.PaidOn)
		}
	})

	t.Run("rejects non-positive amounts", func(t *testing.T) {
		svc, _, account := newAccountFixture()

		for _, amount := range []float64{0, -5} {
			_, err := svc.AddPayment(context.Background(), account.ID, PaymentInput{Amount: amount})
			var vErr *ValidationError
			if !errors.As(err, &vErr) || vErr.Field != "amount" {
				t.Fatalf("amount %v: expected amount validation error, got %v", amount, err)
			}
		}
	})

	t.Run("unknown account maps to ErrNotFound", func(t *testing.T) {
		svc, _, _ := newAccountFixture()

		_, err := svc.AddPayment(context.Background(), 99, PaymentInput{Amount: 10})
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestAccountService_UpdateAndDeletePayment(t *testing.T) {
	t.Parallel()

	svc, _, account := newAccountFixture()
	ctx := context.Background()

	first, err := svc.AddPayment(ctx, account.ID, PaymentInput{Amount: 100})
	if err != nil {
		t.Fatalf("AddPayment returned error: %v", err)
	}
	second, err := svc.AddPayment(ctx, account.ID, PaymentInput{Amount: 40})
	if err != nil {
		t.Fatalf("AddPayment returned error: %v", err)
	}

	if _, err := svc.UpdatePayment(ctx, account.ID, first.ID, PaymentInput{Amount: 70}); err != nil {
		t.Fatalf("UpdatePayment returned error: %v", err)
	}
	got, err := svc.GetAccount(ctx, account.ID)
	if err != nil {
		t.Fatalf("GetAccount returned error: %v", err)
	}
	if got.TotalPayments != 110 {
		t.Fatalf("expected total 110 after update, got %v", got.TotalPayments)
	}

	if err := svc.DeletePayment(ctx, account.ID, second.ID); err != nil {
		t.Fatalf("DeletePayment returned error: %v", err)
	}
	got, err = svc.GetAccount(ctx, account.ID)
	if err != nil {
		t.Fatalf("GetAccount returned error: %v", err)
	}
	if got.TotalPayments != 70 {
		t.Fatalf("expected total 70 after delete, got %v", got.TotalPayments)
	}

	if err := svc.DeletePayment(ctx, account.ID, second.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for a removed payment, got %v", err)
	}
}

func TestAccountService_AccountStats(t *testing.T) {
	t.Parallel()

	svc, _, account := newAccountFixture()
	ctx := context.Background()

	recent := fixedNow().Add(-48 * time.Hour)
	stale := fixedNow().Add(-30 * 24 * time.Hour)

	if _, err := svc.AddPayment(ctx, account.ID, PaymentInput{Amount: 100, PaidOn: stale}); err != nil {
		t.Fatalf("AddPayment returned error: %v", err)
	}
	if _, err := svc.AddPayment(ctx, account.ID, PaymentInput{Amount: 30, PaidOn: recent}); err != nil {
		t.Fatalf("AddPayment returned error: %v", err)
	}

	stats, err := svc.AccountStats(ctx)
	if err != nil {
		t.Fatalf("AccountStats returned error: %v", err)
	}
	if len(stats) != 1 {
		t.Fatalf("expected stats for 1 account, got %d", len(stats))
	}
	entry := stats[0]
	if entry.TotalPayments != 130 {
		t.Fatalf("expected all-time total 130, got %v", entry.TotalPayments)
	}
	if entry.RecentPayments != 30 {
		t.Fatalf("expected trailing-week total 30, got %v", entry.RecentPayments)
	}
	if entry.LastPaymentDate == nil || !entry.LastPaymentDate.Equal(recent) {
		t.Fatalf("expected last payment %v, got %v", recent, entry.LastPaymentDate)
	}
}

func TestAccountService_PaymentsInRange(t *testing.T) {
	t.Parallel()

	svc, _, account := newAccountFixture()
	ctx := context.Background()

	january := time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)
	march := time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)
	may := time.Date(2024, time.May, 20, 0, 0, 0, 0, time.UTC)

	for _, paidOn := range []time.Time{january, march, may} {
		if _, err := svc.AddPayment(ctx, account.ID, PaymentInput{Amount: 10, PaidOn: paidOn}); err != nil {
			t.Fatalf("AddPayment returned error: %v", err)
		}
	}

	from := time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC)

	payments, err := svc.PaymentsInRange(ctx, account.ID, from, to)
	if err != nil {
		t.Fatalf("PaymentsInRange returned error: %v", err)
	}
	if len(payments) != 1 || !payments[0].PaidOn.Equal(march) {
		t.Fatalf("expected only the March payment, got %+v", payments)
	}

	total, err := svc.TotalInRange(ctx, account.ID, from, may)
	if err != nil {
		t.Fatalf("TotalInRange returned error: %v", err)
	}
	if total != 20 {
		t.Fatalf("expected total 20, got %v", total)
	}

	if _, err := svc.PaymentsInRange(ctx, account.ID, to, from); err == nil {
		t.Fatal("expected validation error for an inverted range")
	}
}

func TestAccountService_ClearAllAccounts(t *testing.T) {
	t.Parallel()

	svc, repo, account := newAccountFixture()
	ctx := context.Background()

	if _, err := svc.AddPayment(ctx, account.ID, PaymentInput{Amount: 10}); err != nil {
		t.Fatalf("AddPayment returned error: %v", err)
	}

	if err := svc.ClearAllAccounts(ctx); err != nil {
		t.Fatalf("ClearAllAccounts returned error: %v", err)
	}
	if len(repo.accounts) != 0 {
		t.Fatalf("expected no accounts after clear, got %d", len(repo.accounts))
	}
}
