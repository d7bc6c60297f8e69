package http

import (
	"context"
	"log/slog"

	"github.com/example/tutor-planner/internal/logging"
)

type contextKey string

const (
	subjectIDContextKey     contextKey = "subject_id"
	instituteIDContextKey   contextKey = "institute_id"
	accountIDContextKey     contextKey = "account_id"
	paymentIDContextKey     contextKey = "payment_id"
	appointmentIDContextKey contextKey = "appointment_id"
)

// ContextWithSubjectID injects the subject identifier resolved from the request path.
func ContextWithSubjectID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, subjectIDContextKey, id)
}

// SubjectIDFromContext extracts a subject identifier previously associated with the context.
func SubjectIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(subjectIDContextKey).(string)
	return id, ok
}

// ContextWithInstituteID injects the institute identifier resolved from the request path.
func ContextWithInstituteID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, instituteIDContextKey, id)
}

// InstituteIDFromContext extracts an institute identifier previously associated with the context.
func InstituteIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(instituteIDContextKey).(string)
	return id, ok
}

// ContextWithAccountID injects the account identifier resolved from the request path.
func ContextWithAccountID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, accountIDContextKey, id)
}

// AccountIDFromContext extracts an account identifier previously associated with the context.
func AccountIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(accountIDContextKey).(string)
	return id, ok
}

// ContextWithPaymentID injects the payment identifier resolved from the request path.
func ContextWithPaymentID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, paymentIDContextKey, id)
}

// PaymentIDFromContext extracts a payment identifier previously associated with the context.
func PaymentIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(paymentIDContextKey).(string)
	return id, ok
}

// ContextWithAppointmentID injects the appointment identifier resolved from the request path.
func ContextWithAppointmentID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, appointmentIDContextKey, id)
}

// AppointmentIDFromContext extracts an appointment identifier previously associated with the context.
func AppointmentIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(appointmentIDContextKey).(string)
	return id, ok
}

// ContextWithLogger returns a derived context carrying the provided logger.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return logging.ContextWithLogger(ctx, logger)
}

// LoggerFromContext extracts a logger previously stored in the context, if any.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx)
}
