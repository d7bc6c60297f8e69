package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/example/tutor-planner/internal/application"
)

type subjectService interface {
	CreateSubject(ctx context.Context, name string) (application.Subject, error)
	ListSubjects(ctx context.Context) ([]application.Subject, error)
	RenameSubject(ctx context.Context, id int64, name string) (application.Subject, error)
	DeleteSubject(ctx context.Context, id int64) error
}

type SubjectHandler struct {
	service   subjectService
	responder responder
	logger    *slog.Logger
}

func NewSubjectHandler(service subjectService, logger *slog.Logger) *SubjectHandler {
	base := defaultLogger(logger)
	return &SubjectHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *SubjectHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "SubjectHandler", operation, attrs...)
}

func (h *SubjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req subjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode subject request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create")

	subject, err := h.service.CreateSubject(r.Context(), req.Name)
	if err != nil {
		logger.ErrorContext(r.Context(), "subject creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("subject_id", subject.ID).InfoContext(r.Context(), "subject created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, subjectResponse{Subject: toSubjectDTO(subject)})
}

func (h *SubjectHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	logger := h.log(r.Context(), "List")
	subjects, err := h.service.ListSubjects(r.Context())
	if err != nil {
		logger.ErrorContext(r.Context(), "subject list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(subjects)).InfoContext(r.Context(), "subjects listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listSubjectsResponse{Subjects: toSubjectDTOs(subjects)})
}

func (h *SubjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := subjectIDFromRequest(r)
	if !ok {
		h.log(r.Context(), "Update", "error_kind", "bad_request").ErrorContext(r.Context(), "missing subject id for update")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidSubjectID)
		return
	}

	var req subjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "subject_id", id, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode subject update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Update", "subject_id", id)

	subject, err := h.service.RenameSubject(r.Context(), id, req.Name)
	if err != nil {
		logger.ErrorContext(r.Context(), "subject update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "subject updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, subjectResponse{Subject: toSubjectDTO(subject)})
}

func (h *SubjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := subjectIDFromRequest(r)
	if !ok {
		h.log(r.Context(), "Delete", "error_kind", "bad_request").ErrorContext(r.Context(), "missing subject id for delete")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidSubjectID)
		return
	}

	logger := h.log(r.Context(), "Delete", "subject_id", id)
	if err := h.service.DeleteSubject(r.Context(), id); err != nil {
		logger.ErrorContext(r.Context(), "subject delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "subject deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func subjectIDFromRequest(r *http.Request) (int64, bool) {
	raw, ok := SubjectIDFromContext(r.Context())
	if !ok {
		return 0, false
	}
	return parseID(raw)
}

func parseID(raw string) (int64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

type subjectRequest struct {
	Name string `json:"name"`
}

type subjectResponse struct {
	Subject subjectDTO `json:"subject"`
}

type listSubjectsResponse struct {
	Subjects []subjectDTO `json:"subjects"`
}

type subjectDTO struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func toSubjectDTO(subject application.Subject) subjectDTO {
	return subjectDTO{
		ID:        subject.ID,
		Name:      subject.Name,
		CreatedAt: subject.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt: subject.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func toSubjectDTOs(subjects []application.Subject) []subjectDTO {
	if len(subjects) == 0 {
		return nil
	}
	out := make([]subjectDTO, 0, len(subjects))
	for _, subject := range subjects {
		out = append(out, toSubjectDTO(subject))
	}
	return out
}
