package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/example/tutor-planner/internal/application"
)

type subjectServiceStub struct {
	createResult application.Subject
	createErr    error
	list         []application.Subject
	listErr      error
	renameResult application.Subject
	renameErr    error
	deleteErr    error
}

func (s *subjectServiceStub) CreateSubject(ctx context.Context, name string) (application.Subject, error) {
	return s.createResult, s.createErr
}

func (s *subjectServiceStub) ListSubjects(ctx context.Context) ([]application.Subject, error) {
	return s.list, s.listErr
}

func (s *subjectServiceStub) RenameSubject(ctx context.Context, id int64, name string) (application.Subject, error) {
	return s.renameResult, s.renameErr
}

func (s *subjectServiceStub) DeleteSubject(ctx context.Context, id int64) error {
	return s.deleteErr
}

type appointmentServiceStub struct {
	createResult []application.Appointment
	createErr    error
	updateResult application.Appointment
	updateErr    error
	deleteErr    error
	clearErr     error
	getResult    application.Appointment
	getErr       error
	list         []application.Appointment
	listErr      error

	lastDate string
	lastWeek string
}

func (s *appointmentServiceStub) CreateAppointment(ctx context.Context, input application.AppointmentInput) ([]application.Appointment, error) {
	return s.createResult, s.createErr
}

func (s *appointmentServiceStub) UpdateAppointment(ctx context.Context, id int64, input application.AppointmentInput) (application.Appointment, error) {
	return s.updateResult, s.updateErr
}

func (s *appointmentServiceStub) DeleteAppointment(ctx context.Context, id int64) error {
	return s.deleteErr
}

func (s *appointmentServiceStub) ClearAppointments(ctx context.Context) error {
	return s.clearErr
}

func (s *appointmentServiceStub) GetAppointment(ctx context.Context, id int64) (application.Appointment, error) {
	return s.getResult, s.getErr
}

func (s *appointmentServiceStub) ListAppointments(ctx context.Context) ([]application.Appointment, error) {
	return s.list, s.listErr
}

func (s *appointmentServiceStub) AppointmentsOn(ctx context.Context, date string) ([]application.Appointment, error) {
	s.lastDate = date
	return s.list, s.listErr
}

func (s *appointmentServiceStub) AppointmentsForWeek(ctx context.Context, startDate string) ([]application.Appointment, error) {
	s.lastWeek = startDate
	return s.list, s.listErr
}

func newTestRouter(subjects *subjectServiceStub, appointments *appointmentServiceStub) http.Handler {
	cfg := RouterConfig{}
	if subjects != nil {
		cfg.Subjects = NewSubjectHandler(subjects, nil)
	}
	if appointments != nil {
		cfg.Appointments = NewAppointmentHandler(appointments, nil)
	}
	return NewRouter(cfg)
}

func decodeErrorResponse(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var resp errorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return resp
}

func TestSubjectHandlers(t *testing.T) {
	t.Parallel()

	t.Run("create returns 201 with the subject payload", func(t *testing.T) {
		t.Parallel()
		stub := &subjectServiceStub{createResult: application.Subject{
			ID: 1, Name: "رياضيات",
			CreatedAt: time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
			UpdatedAt: time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
		}}
		router := newTestRouter(stub, nil)

		req := httptest.NewRequest(http.MethodPost, "/subjects", strings.NewReader(`{"name":"رياضيات"}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d", rec.Code)
		}
		var resp subjectResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Subject.ID != 1 || resp.Subject.Name != "رياضيات" {
			t.Fatalf("unexpected payload: %+v", resp.Subject)
		}
	})

	t.Run("validation errors map to 422 with localized details", func(t *testing.T) {
		t.Parallel()
		stub := &subjectServiceStub{createErr: &application.ValidationError{Field: "name", Message: "subject name is required"}}
		router := newTestRouter(stub, nil)

		req := httptest.NewRequest(http.MethodPost, "/subjects", strings.NewReader(`{"name":""}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d", rec.Code)
		}
		resp := decodeErrorResponse(t, rec)
		if resp.Errors["name"] != "اسم المادة مطلوب." {
			t.Fatalf("unexpected localized detail: %q", resp.Errors["name"])
		}
	})

	t.Run("in-use deletes map to 409", func(t *testing.T) {
		t.Parallel()
		stub := &subjectServiceStub{deleteErr: application.ErrInUse}
		router := newTestRouter(stub, nil)

		req := httptest.NewRequest(http.MethodDelete, "/subjects/3", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
		resp := decodeErrorResponse(t, rec)
		if resp.ErrorCode != "RESOURCE_IN_USE" {
			t.Fatalf("unexpected error code: %q", resp.ErrorCode)
		}
	})

	t.Run("malformed ids map to 400", func(t *testing.T) {
		t.Parallel()
		router := newTestRouter(&subjectServiceStub{}, nil)

		req := httptest.NewRequest(http.MethodDelete, "/subjects/abc", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("unsupported methods set the Allow header", func(t *testing.T) {
		t.Parallel()
		router := newTestRouter(&subjectServiceStub{}, nil)

		req := httptest.NewRequest(http.MethodPatch, "/subjects", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusMethodNotAllowed {
			t.Fatalf("expected 405, got %d", rec.Code)
		}
		if allow := rec.Header().Get("Allow"); !strings.Contains(allow, http.MethodPost) {
			t.Fatalf("expected Allow header to list POST, got %q", allow)
		}
	})
}

func TestAppointmentHandlers(t *testing.T) {
	t.Parallel()

	t.Run("time conflicts map to 409 with conflict details", func(t *testing.T) {
		t.Parallel()
		endTime := "11:00"
		stub := &appointmentServiceStub{createErr: &application.ConflictError{Conflicting: application.Appointment{
			ID: 7, Type: application.AppointmentTypePrivate, EntityName: "أحمد", StartTime: "10:00", EndTime: &endTime,
		}}}
		router := newTestRouter(nil, stub)

		body := `{"type":"private","entity_name":"ليلى","subject_id":1,"start_time":"10:30","date":"2024-06-03"}`
		req := httptest.NewRequest(http.MethodPost, "/appointments", strings.NewReader(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
		resp := decodeErrorResponse(t, rec)
		if resp.ErrorCode != "TIME_CONFLICT" {
			t.Fatalf("unexpected error code: %q", resp.ErrorCode)
		}
		if resp.Conflict == nil || resp.Conflict.AppointmentID != 7 || resp.Conflict.StartTime != "10:00" {
			t.Fatalf("unexpected conflict detail: %+v", resp.Conflict)
		}
	})

	t.Run("date query resolves the calendar view", func(t *testing.T) {
		t.Parallel()
		stub := &appointmentServiceStub{}
		router := newTestRouter(nil, stub)

		req := httptest.NewRequest(http.MethodGet, "/appointments?date=2024-06-01", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if stub.lastDate != "2024-06-01" {
			t.Fatalf("date parameter not forwarded, got %q", stub.lastDate)
		}
	})

	t.Run("week query resolves the weekly view", func(t *testing.T) {
		t.Parallel()
		stub := &appointmentServiceStub{}
		router := newTestRouter(nil, stub)

		req := httptest.NewRequest(http.MethodGet, "/appointments?week=2024-06-01", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if stub.lastWeek != "2024-06-01" {
			t.Fatalf("week parameter not forwarded, got %q", stub.lastWeek)
		}
	})

	t.Run("combined date and week parameters map to 400", func(t *testing.T) {
		t.Parallel()
		router := newTestRouter(nil, &appointmentServiceStub{})

		req := httptest.NewRequest(http.MethodGet, "/appointments?date=2024-06-01&week=2024-06-01", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("missing appointments map to 404", func(t *testing.T) {
		t.Parallel()
		stub := &appointmentServiceStub{getErr: application.ErrNotFound}
		router := newTestRouter(nil, stub)

		req := httptest.NewRequest(http.MethodGet, "/appointments/42", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("clear removes the collection with 204", func(t *testing.T) {
		t.Parallel()
		router := newTestRouter(nil, &appointmentServiceStub{})

		req := httptest.NewRequest(http.MethodDelete, "/appointments", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", rec.Code)
		}
	})

	t.Run("malformed bodies map to 400", func(t *testing.T) {
		t.Parallel()
		router := newTestRouter(nil, &appointmentServiceStub{})

		req := httptest.NewRequest(http.MethodPost, "/appointments", strings.NewReader("{"))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}
