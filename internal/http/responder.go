package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/tutor-planner/internal/application"
)

var (
	errBadRequestBody        = errors.New("صيغة الطلب غير صحيحة.")
	errInvalidSubjectID      = errors.New("معرّف المادة غير صالح.")
	errInvalidInstituteID    = errors.New("معرّف المعهد غير صالح.")
	errInvalidAccountID      = errors.New("معرّف الحساب غير صالح.")
	errInvalidPaymentID      = errors.New("معرّف الدفعة غير صالح.")
	errInvalidAppointmentID  = errors.New("معرّف الموعد غير صالح.")
	errInvalidDateParameter  = errors.New("صيغة التاريخ غير صالحة.")
	errConflictingParameters = errors.New("لا يمكن تحديد يوم وأسبوع معًا.")
)

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	if logger == nil {
		logger = slog.Default()
	}
	return responder{logger: logger}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	message := localizedStatusMessage(status)
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
		r.loggerFor(ctx).ErrorContext(ctx, "request failed", "status", status, "error", err)
	}

	r.writeJSON(ctx, w, status, errorResponse{Message: message})
}

func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		r.writeError(ctx, w, http.StatusInternalServerError, errors.New("unknown error"))
		return
	}

	switch {
	case errors.Is(err, application.ErrNotFound):
		r.writeJSON(ctx, w, http.StatusNotFound, errorResponse{Message: "المورد المطلوب غير موجود."})
	case errors.Is(err, application.ErrInUse):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
			ErrorCode: "RESOURCE_IN_USE",
			Message:   "لا يمكن الحذف لوجود مواعيد مرتبطة به.",
		})
	default:
		var vErr *application.ValidationError
		if errors.As(err, &vErr) {
			r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
				Message: "البيانات المدخلة غير صحيحة.",
				Errors:  localizeValidationError(vErr),
			})
			return
		}

		var cErr *application.ConflictError
		if errors.As(err, &cErr) {
			r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
				ErrorCode: "TIME_CONFLICT",
				Message:   "يوجد موعد آخر في هذا الوقت.",
				Conflict:  conflictDetail(cErr),
			})
			return
		}

		r.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Message: "حدث خطأ داخلي في الخادم."})
	}
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

func localizedStatusMessage(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "صيغة الطلب غير صحيحة."
	case http.StatusNotFound:
		return "المورد المطلوب غير موجود."
	case http.StatusConflict:
		return "يتعارض الطلب مع الحالة الحالية للبيانات."
	case http.StatusUnprocessableEntity:
		return "البيانات المدخلة غير صحيحة."
	default:
		return "حدث خطأ داخلي في الخادم."
	}
}

func localizeValidationError(vErr *application.ValidationError) map[string]string {
	if vErr == nil || vErr.Field == "" {
		return nil
	}
	return map[string]string{vErr.Field: translateValidationMessage(vErr.Message)}
}

func translateValidationMessage(message string) string {
	switch message {
	case "subject name is required":
		return "اسم المادة مطلوب."
	case "institute name is required":
		return "اسم المعهد مطلوب."
	case "type must be institute or school":
		return "النوع يجب أن يكون معهدًا أو مدرسة."
	case "type must be private, institute, or school":
		return "نوع الموعد غير صالح."
	case "student or institute name is required":
		return "اسم الطالب أو المعهد مطلوب."
	case "subject is required":
		return "المادة مطلوبة."
	case "start time is required":
		return "وقت البدء مطلوب."
	case "start time must be a valid HH:mm value":
		return "صيغة وقت البدء غير صالحة."
	case "end time is required for institutes and schools":
		return "وقت الانتهاء مطلوب للمعاهد والمدارس."
	case "end time must be a valid HH:mm value":
		return "صيغة وقت الانتهاء غير صالحة."
	case "start time must be before end time":
		return "يجب أن يكون وقت البدء قبل وقت الانتهاء."
	case "date is required for non-repeating appointments":
		return "التاريخ مطلوب للمواعيد غير المتكررة."
	case "date must be a valid YYYY-MM-DD value":
		return "صيغة التاريخ غير صالحة."
	case "repeat start and end dates are required":
		return "تاريخا بداية ونهاية التكرار مطلوبان."
	case "repeat start date must be a valid YYYY-MM-DD value",
		"repeat end date must be a valid YYYY-MM-DD value":
		return "صيغة فترة التكرار غير صالحة."
	case "repeat start date must not be after the end date":
		return "يجب ألا يتجاوز تاريخ بداية التكرار تاريخ النهاية."
	case "at least one weekday must be selected":
		return "يجب اختيار يوم واحد على الأقل."
	case "weekday index must be in 0..6":
		return "اليوم المحدد غير صالح."
	case "unknown session type":
		return "نوع الدورة غير معروف."
	case "an institute or school must be selected":
		return "يجب اختيار معهد أو مدرسة."
	case "the selected institute does not exist":
		return "المعهد المحدد غير موجود."
	case "the selected institute does not match the appointment type":
		return "المعهد المحدد لا يطابق نوع الموعد."
	case "the selected subject does not exist":
		return "المادة المحددة غير موجودة."
	case "payment amount must be positive":
		return "يجب أن يكون مبلغ الدفعة أكبر من صفر."
	default:
		return message
	}
}

type errorResponse struct {
	ErrorCode string              `json:"error_code,omitempty"`
	Message   string              `json:"message"`
	Errors    map[string]string   `json:"errors,omitempty"`
	Conflict  *conflictDetailJSON `json:"conflict,omitempty"`
}

type conflictDetailJSON struct {
	AppointmentID int64   `json:"appointment_id"`
	EntityName    string  `json:"entity_name"`
	StartTime     string  `json:"start_time"`
	EndTime       *string `json:"end_time,omitempty"`
}

func conflictDetail(cErr *application.ConflictError) *conflictDetailJSON {
	if cErr == nil {
		return nil
	}
	return &conflictDetailJSON{
		AppointmentID: cErr.Conflicting.ID,
		EntityName:    cErr.Conflicting.EntityName,
		StartTime:     cErr.Conflicting.StartTime,
		EndTime:       cErr.Conflicting.EndTime,
	}
}
