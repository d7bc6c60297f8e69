package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/tutor-planner/internal/application"
)

type accountService interface {
	GetAccount(ctx context.Context, id int64) (application.Account, error)
	ListAccounts(ctx context.Context) ([]application.Account, error)
	AccountStats(ctx context.Context) ([]application.AccountStats, error)
	AddPayment(ctx context.Context, accountID int64, input application.PaymentInput) (application.Payment, error)
	UpdatePayment(ctx context.Context, accountID, paymentID int64, input application.PaymentInput) (application.Payment, error)
	DeletePayment(ctx context.Context, accountID, paymentID int64) error
	ClearAllAccounts(ctx context.Context) error
}

type AccountHandler struct {
	service   accountService
	responder responder
	logger    *slog.Logger
}

func NewAccountHandler(service accountService, logger *slog.Logger) *AccountHandler {
	base := defaultLogger(logger)
	return &AccountHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *AccountHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "AccountHandler", operation, attrs...)
}

func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	logger := h.log(r.Context(), "List")
	accounts, err := h.service.ListAccounts(r.Context())
	if err != nil {
		logger.ErrorContext(r.Context(), "account list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(accounts)).InfoContext(r.Context(), "accounts listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listAccountsResponse{Accounts: toAccountDTOs(accounts)})
}

func (h *AccountHandler) Stats(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	logger := h.log(r.Context(), "Stats")
	stats, err := h.service.AccountStats(r.Context())
	if err != nil {
		logger.ErrorContext(r.Context(), "account stats failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(stats)).InfoContext(r.Context(), "account stats computed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, accountStatsResponse{Stats: toAccountStatsDTOs(stats)})
}

func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := accountIDFromRequest(r)
	if !ok {
		h.log(r.Context(), "Get", "error_kind", "bad_request").ErrorContext(r.Context(), "missing account id")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidAccountID)
		return
	}

	logger := h.log(r.Context(), "Get", "account_id", id)
	account, err := h.service.GetAccount(r.Context(), id)
	if err != nil {
		logger.ErrorContext(r.Context(), "account lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, accountResponse{Account: toAccountDTO(account)})
}

func (h *AccountHandler) AddPayment(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	accountID, ok := accountIDFromRequest(r)
	if !ok {
		h.log(r.Context(), "AddPayment", "error_kind", "bad_request").ErrorContext(r.Context(), "missing account id for payment")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidAccountID)
		return
	}

	var req paymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "AddPayment", "account_id", accountID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode payment request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	input, err := req.toInput()
	if err != nil {
		h.log(r.Context(), "AddPayment", "account_id", accountID, "error_kind", "bad_request").ErrorContext(r.Context(), "invalid payment date", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidDateParameter)
		return
	}

	logger := h.log(r.Context(), "AddPayment", "account_id", accountID)

	payment, err := h.service.AddPayment(r.Context(), accountID, input)
	if err != nil {
		logger.ErrorContext(r.Context(), "payment creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("payment_id", payment.ID).InfoContext(r.Context(), "payment added")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, paymentResponse{Payment: toPaymentDTO(payment)})
}

func (h *AccountHandler) UpdatePayment(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	accountID, ok := accountIDFromRequest(r)
	if !ok {
		h.log(r.Context(), "UpdatePayment", "error_kind", "bad_request").ErrorContext(r.Context(), "missing account id for payment update")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidAccountID)
		return
	}
	paymentID, ok := paymentIDFromRequest(r)
	if !ok {
		h.log(r.Context(), "UpdatePayment", "account_id", accountID, "error_kind", "bad_request").ErrorContext(r.Context(), "missing payment id for update")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidPaymentID)
		return
	}

	var req paymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "UpdatePayment", "account_id", accountID, "payment_id", paymentID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode payment update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	input, err := req.toInput()
	if err != nil {
		h.log(r.Context(), "UpdatePayment", "account_id", accountID, "payment_id", paymentID, "error_kind", "bad_request").ErrorContext(r.Context(), "invalid payment date", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidDateParameter)
		return
	}

	logger := h.log(r.Context(), "UpdatePayment", "account_id", accountID, "payment_id", paymentID)

	payment, err := h.service.UpdatePayment(r.Context(), accountID, paymentID, input)
	if err != nil {
		logger.ErrorContext(r.Context(), "payment update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "payment updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, paymentResponse{Payment: toPaymentDTO(payment)})
}

func (h *AccountHandler) DeletePayment(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	accountID, ok := accountIDFromRequest(r)
	if !ok {
		h.log(r.Context(), "DeletePayment", "error_kind", "bad_request").ErrorContext(r.Context(), "missing account id for payment delete")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidAccountID)
		return
	}
	paymentID, ok := paymentIDFromRequest(r)
	if !ok {
		h.log(r.Context(), "DeletePayment", "account_id", accountID, "error_kind", "bad_request").ErrorContext(r.Context(), "missing payment id for delete")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidPaymentID)
		return
	}

	logger := h.log(r.Context(), "DeletePayment", "account_id", accountID, "payment_id", paymentID)
	if err := h.service.DeletePayment(r.Context(), accountID, paymentID); err != nil {
		logger.ErrorContext(r.Context(), "payment delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "payment deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *AccountHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	logger := h.log(r.Context(), "Clear")
	if err := h.service.ClearAllAccounts(r.Context()); err != nil {
		logger.ErrorContext(r.Context(), "account clear failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.WarnContext(r.Context(), "all accounts cleared")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func accountIDFromRequest(r *http.Request) (int64, bool) {
	raw, ok := AccountIDFromContext(r.Context())
	if !ok {
		return 0, false
	}
	return parseID(raw)
}

func paymentIDFromRequest(r *http.Request) (int64, bool) {
	raw, ok := PaymentIDFromContext(r.Context())
	if !ok {
		return 0, false
	}
	return parseID(raw)
}

type paymentRequest struct {
	Amount      float64 `json:"amount"`
	PaidOn      string  `json:"paid_on"`
	Description string  `json:"description"`
}

func (p paymentRequest) toInput() (application.PaymentInput, error) {
	input := application.PaymentInput{
		Amount:      p.Amount,
		Description: strings.TrimSpace(p.Description),
	}
	if raw := strings.TrimSpace(p.PaidOn); raw != "" {
		paidOn, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return application.PaymentInput{}, err
		}
		input.PaidOn = paidOn
	}
	return input, nil
}

type accountResponse struct {
	Account accountDTO `json:"account"`
}

type listAccountsResponse struct {
	Accounts []accountDTO `json:"accounts"`
}

type accountStatsResponse struct {
	Stats []accountStatsDTO `json:"stats"`
}

type paymentResponse struct {
	Payment paymentDTO `json:"payment"`
}

type accountDTO struct {
	ID            int64        `json:"id"`
	EntityID      int64        `json:"entity_id"`
	EntityName    string       `json:"entity_name"`
	EntityType    string       `json:"entity_type"`
	TotalPayments float64      `json:"total_payments"`
	Payments      []paymentDTO `json:"payments"`
	CreatedAt     string       `json:"created_at"`
	UpdatedAt     string       `json:"updated_at"`
}

type accountStatsDTO struct {
	accountDTO
	RecentPayments  float64 `json:"recent_payments"`
	LastPaymentDate *string `json:"last_payment_date,omitempty"`
}

type paymentDTO struct {
	ID          int64   `json:"id"`
	AccountID   int64   `json:"account_id"`
	Amount      float64 `json:"amount"`
	PaidOn      string  `json:"paid_on"`
	Description *string `json:"description,omitempty"`
	CreatedAt   string  `json:"created_at"`
}

func toAccountDTO(account application.Account) accountDTO {
	payments := make([]paymentDTO, 0, len(account.Payments))
	for _, payment := range account.Payments {
		payments = append(payments, toPaymentDTO(payment))
	}
	return accountDTO{
		ID:            account.ID,
		EntityID:      account.EntityID,
		EntityName:    account.EntityName,
		EntityType:    account.EntityType,
		TotalPayments: account.TotalPayments,
		Payments:      payments,
		CreatedAt:     account.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:     account.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func toAccountDTOs(accounts []application.Account) []accountDTO {
	if len(accounts) == 0 {
		return nil
	}
	out := make([]accountDTO, 0, len(accounts))
	for _, account := range accounts {
		out = append(out, toAccountDTO(account))
	}
	return out
}

func toAccountStatsDTOs(stats []application.AccountStats) []accountStatsDTO {
	if len(stats) == 0 {
		return nil
	}
	out := make([]accountStatsDTO, 0, len(stats))
	for _, entry := range stats {
		dto := accountStatsDTO{
			accountDTO:     toAccountDTO(entry.Account),
			RecentPayments: entry.RecentPayments,
		}
		if entry.LastPaymentDate != nil {
			formatted := entry.LastPaymentDate.UTC().Format(time.RFC3339Nano)
			dto.LastPaymentDate = &formatted
		}
		out = append(out, dto)
	}
	return out
}

func toPaymentDTO(payment application.Payment) paymentDTO {
	return paymentDTO{
		ID:          payment.ID,
		AccountID:   payment.AccountID,
		Amount:      payment.Amount,
		PaidOn:      payment.PaidOn.UTC().Format(time.RFC3339Nano),
		Description: payment.Description,
		CreatedAt:   payment.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}
