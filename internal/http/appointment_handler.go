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

type appointmentService interface {
	CreateAppointment(ctx context.Context, input application.AppointmentInput) ([]application.Appointment, error)
	UpdateAppointment(ctx context.Context, id int64, input application.AppointmentInput) (application.Appointment, error)
	DeleteAppointment(ctx context.Context, id int64) error
	ClearAppointments(ctx context.Context) error
	GetAppointment(ctx context.Context, id int64) (application.Appointment, error)
	ListAppointments(ctx context.Context) ([]application.Appointment, error)
	AppointmentsOn(ctx context.Context, date string) ([]application.Appointment, error)
	AppointmentsForWeek(ctx context.Context, startDate string) ([]application.Appointment, error)
}

type AppointmentHandler struct {
	service   appointmentService
	responder responder
	logger    *slog.Logger
}

func NewAppointmentHandler(service appointmentService, logger *slog.Logger) *AppointmentHandler {
	base := defaultLogger(logger)
	return &AppointmentHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *AppointmentHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "AppointmentHandler", operation, attrs...)
}

func (h *AppointmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req appointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode appointment request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "type", req.Type, "repeating", req.IsRepeating)

	created, err := h.service.CreateAppointment(r.Context(), req.toInput())
	if err != nil {
		logger.ErrorContext(r.Context(), "appointment creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(created)).InfoContext(r.Context(), "appointments created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, listAppointmentsResponse{Appointments: toAppointmentDTOs(created)})
}

// List serves three shapes from the same route: the raw collection, the
// appointments effective on one date (?date=), and a 7-day window (?week=).
func (h *AppointmentHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	query := r.URL.Query()
	date := strings.TrimSpace(query.Get("date"))
	week := strings.TrimSpace(query.Get("week"))

	if date != "" && week != "" {
		h.log(r.Context(), "List", "error_kind", "bad_request").ErrorContext(r.Context(), "conflicting date and week parameters")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errConflictingParameters)
		return
	}

	logger := h.log(r.Context(), "List", "date", date, "week", week)

	var (
		appointments []application.Appointment
		err          error
	)
	switch {
	case date != "":
		appointments, err = h.service.AppointmentsOn(r.Context(), date)
	case week != "":
		appointments, err = h.service.AppointmentsForWeek(r.Context(), week)
	default:
		appointments, err = h.service.ListAppointments(r.Context())
	}
	if err != nil {
		logger.ErrorContext(r.Context(), "appointment list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(appointments)).InfoContext(r.Context(), "appointments listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listAppointmentsResponse{Appointments: toAppointmentDTOs(appointments)})
}

func (h *AppointmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := appointmentIDFromRequest(r)
	if !ok {
		h.log(r.Context(), "Get", "error_kind", "bad_request").ErrorContext(r.Context(), "missing appointment id")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidAppointmentID)
		return
	}

	logger := h.log(r.Context(), "Get", "appointment_id", id)
	appointment, err := h.service.GetAppointment(r.Context(), id)
	if err != nil {
		logger.ErrorContext(r.Context(), "appointment lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, appointmentResponse{Appointment: toAppointmentDTO(appointment)})
}

func (h *AppointmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := appointmentIDFromRequest(r)
	if !ok {
		h.log(r.Context(), "Update", "error_kind", "bad_request").ErrorContext(r.Context(), "missing appointment id for update")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidAppointmentID)
		return
	}

	var req appointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "appointment_id", id, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode appointment update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Update", "appointment_id", id)

	appointment, err := h.service.UpdateAppointment(r.Context(), id, req.toInput())
	if err != nil {
		logger.ErrorContext(r.Context(), "appointment update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "appointment updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, appointmentResponse{Appointment: toAppointmentDTO(appointment)})
}

func (h *AppointmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := appointmentIDFromRequest(r)
	if !ok {
		h.log(r.Context(), "Delete", "error_kind", "bad_request").ErrorContext(r.Context(), "missing appointment id for delete")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidAppointmentID)
		return
	}

	logger := h.log(r.Context(), "Delete", "appointment_id", id)
	if err := h.service.DeleteAppointment(r.Context(), id); err != nil {
		logger.ErrorContext(r.Context(), "appointment delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "appointment deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *AppointmentHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	logger := h.log(r.Context(), "Clear")
	if err := h.service.ClearAppointments(r.Context()); err != nil {
		logger.ErrorContext(r.Context(), "appointment clear failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.WarnContext(r.Context(), "all appointments cleared")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func appointmentIDFromRequest(r *http.Request) (int64, bool) {
	raw, ok := AppointmentIDFromContext(r.Context())
	if !ok {
		return 0, false
	}
	return parseID(raw)
}

type appointmentRequest struct {
	Type            string `json:"type"`
	EntityName      string `json:"entity_name"`
	EntityID        *int64 `json:"entity_id"`
	SubjectID       int64  `json:"subject_id"`
	StartTime       string `json:"start_time"`
	EndTime         string `json:"end_time"`
	Date            string `json:"date"`
	IsRepeating     bool   `json:"is_repeating"`
	RepeatStartDate string `json:"repeat_start_date"`
	RepeatEndDate   string `json:"repeat_end_date"`
	SelectedDays    []int  `json:"selected_days"`
	SessionType     string `json:"session_type"`
	Notes           string `json:"notes"`
}

func (a appointmentRequest) toInput() application.AppointmentInput {
	return application.AppointmentInput{
		Type:            strings.TrimSpace(a.Type),
		EntityName:      strings.TrimSpace(a.EntityName),
		EntityID:        a.EntityID,
		SubjectID:       a.SubjectID,
		StartTime:       strings.TrimSpace(a.StartTime),
		EndTime:         strings.TrimSpace(a.EndTime),
		Date:            strings.TrimSpace(a.Date),
		IsRepeating:     a.IsRepeating,
		RepeatStartDate: strings.TrimSpace(a.RepeatStartDate),
		RepeatEndDate:   strings.TrimSpace(a.RepeatEndDate),
		SelectedDays:    a.SelectedDays,
		SessionType:     strings.TrimSpace(a.SessionType),
		Notes:           strings.TrimSpace(a.Notes),
	}
}

type appointmentResponse struct {
	Appointment appointmentDTO `json:"appointment"`
}

type listAppointmentsResponse struct {
	Appointments []appointmentDTO `json:"appointments"`
}

type appointmentDTO struct {
	ID              int64   `json:"id"`
	Type            string  `json:"type"`
	EntityName      string  `json:"entity_name"`
	EntityID        *int64  `json:"entity_id,omitempty"`
	SubjectID       int64   `json:"subject_id"`
	SubjectName     string  `json:"subject_name"`
	StartTime       string  `json:"start_time"`
	EndTime         *string `json:"end_time,omitempty"`
	Date            *string `json:"date,omitempty"`
	DayOfWeek       *int    `json:"day_of_week,omitempty"`
	IsRepeating     bool    `json:"is_repeating"`
	RepeatStartDate *string `json:"repeat_start_date,omitempty"`
	RepeatEndDate   *string `json:"repeat_end_date,omitempty"`
	SessionType     *string `json:"session_type,omitempty"`
	Notes           *string `json:"notes,omitempty"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
}

func toAppointmentDTO(appointment application.Appointment) appointmentDTO {
	return appointmentDTO{
		ID:              appointment.ID,
		Type:            appointment.Type,
		EntityName:      appointment.EntityName,
		EntityID:        appointment.EntityID,
		SubjectID:       appointment.SubjectID,
		SubjectName:     appointment.SubjectName,
		StartTime:       appointment.StartTime,
		EndTime:         appointment.EndTime,
		Date:            appointment.Date,
		DayOfWeek:       appointment.DayOfWeek,
		IsRepeating:     appointment.IsRepeating,
		RepeatStartDate: appointment.RepeatStartDate,
		RepeatEndDate:   appointment.RepeatEndDate,
		SessionType:     appointment.SessionType,
		Notes:           appointment.Notes,
		CreatedAt:       appointment.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:       appointment.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func toAppointmentDTOs(appointments []application.Appointment) []appointmentDTO {
	if len(appointments) == 0 {
		return nil
	}
	out := make([]appointmentDTO, 0, len(appointments))
	for _, appointment := range appointments {
		out = append(out, toAppointmentDTO(appointment))
	}
	return out
}
