package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/tutor-planner/internal/application"
)

type instituteService interface {
	CreateInstitute(ctx context.Context, name, entityType string) (application.Institute, error)
	GetInstitute(ctx context.Context, id int64) (application.Institute, error)
	ListInstitutes(ctx context.Context, typeFilter string) ([]application.Institute, error)
	RenameInstitute(ctx context.Context, id int64, name string) (application.Institute, error)
	DeleteInstitute(ctx context.Context, id int64) error
}

type InstituteHandler struct {
	service   instituteService
	responder responder
	logger    *slog.Logger
}

func NewInstituteHandler(service instituteService, logger *slog.Logger) *InstituteHandler {
	base := defaultLogger(logger)
	return &InstituteHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *InstituteHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "InstituteHandler", operation, attrs...)
}

func (h *InstituteHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req instituteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode institute request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "entity_type", req.Type)

	institute, err := h.service.CreateInstitute(r.Context(), req.Name, req.Type)
	if err != nil {
		logger.ErrorContext(r.Context(), "institute creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("institute_id", institute.ID).InfoContext(r.Context(), "institute created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, instituteResponse{Institute: toInstituteDTO(institute)})
}

func (h *InstituteHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	typeFilter := r.URL.Query().Get("type")
	logger := h.log(r.Context(), "List", "type_filter", typeFilter)

	institutes, err := h.service.ListInstitutes(r.Context(), typeFilter)
	if err != nil {
		logger.ErrorContext(r.Context(), "institute list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(institutes)).InfoContext(r.Context(), "institutes listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listInstitutesResponse{Institutes: toInstituteDTOs(institutes)})
}

func (h *InstituteHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := instituteIDFromRequest(r)
	if !ok {
		h.log(r.Context(), "Get", "error_kind", "bad_request").ErrorContext(r.Context(), "missing institute id")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidInstituteID)
		return
	}

	logger := h.log(r.Context(), "Get", "institute_id", id)
	institute, err := h.service.GetInstitute(r.Context(), id)
	if err != nil {
		logger.ErrorContext(r.Context(), "institute lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, instituteResponse{Institute: toInstituteDTO(institute)})
}

func (h *InstituteHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := instituteIDFromRequest(r)
	if !ok {
		h.log(r.Context(), "Update", "error_kind", "bad_request").ErrorContext(r.Context(), "missing institute id for update")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidInstituteID)
		return
	}

	var req instituteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "institute_id", id, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode institute update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Update", "institute_id", id)

	institute, err := h.service.RenameInstitute(r.Context(), id, req.Name)
	if err != nil {
		logger.ErrorContext(r.Context(), "institute update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "institute updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, instituteResponse{Institute: toInstituteDTO(institute)})
}

func (h *InstituteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := instituteIDFromRequest(r)
	if !ok {
		h.log(r.Context(), "Delete", "error_kind", "bad_request").ErrorContext(r.Context(), "missing institute id for delete")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidInstituteID)
		return
	}

	logger := h.log(r.Context(), "Delete", "institute_id", id)
	if err := h.service.DeleteInstitute(r.Context(), id); err != nil {
		logger.ErrorContext(r.Context(), "institute delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "institute deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func instituteIDFromRequest(r *http.Request) (int64, bool) {
	raw, ok := InstituteIDFromContext(r.Context())
	if !ok {
		return 0, false
	}
	return parseID(raw)
}

type instituteRequest struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type instituteResponse struct {
	Institute instituteDTO `json:"institute"`
}

type listInstitutesResponse struct {
	Institutes []instituteDTO `json:"institutes"`
}

type instituteDTO struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	AccountID *int64 `json:"account_id,omitempty"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func toInstituteDTO(institute application.Institute) instituteDTO {
	return instituteDTO{
		ID:        institute.ID,
		Name:      institute.Name,
		Type:      institute.Type,
		AccountID: institute.AccountID,
		CreatedAt: institute.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt: institute.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func toInstituteDTOs(institutes []application.Institute) []instituteDTO {
	if len(institutes) == 0 {
		return nil
	}
	out := make([]instituteDTO, 0, len(institutes))
	for _, institute := range institutes {
		out = append(out, toInstituteDTO(institute))
	}
	return out
}
