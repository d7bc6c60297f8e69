package http

import (
	"net/http"
	"strings"
)

type RouterConfig struct {
	Subjects     *SubjectHandler
	Institutes   *InstituteHandler
	Accounts     *AccountHandler
	Appointments *AppointmentHandler
	Middleware   []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	if cfg.Subjects != nil {
		mux.HandleFunc("/subjects", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Subjects.List(w, r)
			case http.MethodPost:
				cfg.Subjects.Create(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})
		mux.HandleFunc("/subjects/", func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimPrefix(r.URL.Path, "/subjects/")
			if id == "" {
				http.NotFound(w, r)
				return
			}
			ctx := ContextWithSubjectID(r.Context(), id)
			r = r.WithContext(ctx)
			switch r.Method {
			case http.MethodPut:
				cfg.Subjects.Update(w, r)
			case http.MethodDelete:
				cfg.Subjects.Delete(w, r)
			default:
				methodNotAllowed(w, http.MethodPut, http.MethodDelete)
			}
		})
	}

	if cfg.Institutes != nil {
		mux.HandleFunc("/institutes", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Institutes.List(w, r)
			case http.MethodPost:
				cfg.Institutes.Create(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})
		mux.HandleFunc("/institutes/", func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimPrefix(r.URL.Path, "/institutes/")
			if id == "" {
				http.NotFound(w, r)
				return
			}
			ctx := ContextWithInstituteID(r.Context(), id)
			r = r.WithContext(ctx)
			switch r.Method {
			case http.MethodGet:
				cfg.Institutes.Get(w, r)
			case http.MethodPut:
				cfg.Institutes.Update(w, r)
			case http.MethodDelete:
				cfg.Institutes.Delete(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodDelete)
			}
		})
	}

	if cfg.Accounts != nil {
		mux.HandleFunc("/accounts", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Accounts.List(w, r)
			case http.MethodDelete:
				cfg.Accounts.Clear(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodDelete)
			}
		})
		mux.HandleFunc("/accounts/stats", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Accounts.Stats(w, r)
		})
		mux.HandleFunc("/accounts/", func(w http.ResponseWriter, r *http.Request) {
			rest := strings.TrimPrefix(r.URL.Path, "/accounts/")
			if rest == "" {
				http.NotFound(w, r)
				return
			}

			// Paths are either {id} or {id}/payments[/{paymentID}].
			accountID, tail, _ := strings.Cut(rest, "/")
			ctx := ContextWithAccountID(r.Context(), accountID)

			if tail == "" {
				r = r.WithContext(ctx)
				if r.Method != http.MethodGet {
					methodNotAllowed(w, http.MethodGet)
					return
				}
				cfg.Accounts.Get(w, r)
				return
			}

			segment, paymentID, _ := strings.Cut(tail, "/")
			if segment != "payments" {
				http.NotFound(w, r)
				return
			}

			if paymentID == "" {
				r = r.WithContext(ctx)
				if r.Method != http.MethodPost {
					methodNotAllowed(w, http.MethodPost)
					return
				}
				cfg.Accounts.AddPayment(w, r)
				return
			}

			ctx = ContextWithPaymentID(ctx, paymentID)
			r = r.WithContext(ctx)
			switch r.Method {
			case http.MethodPut:
				cfg.Accounts.UpdatePayment(w, r)
			case http.MethodDelete:
				cfg.Accounts.DeletePayment(w, r)
			default:
				methodNotAllowed(w, http.MethodPut, http.MethodDelete)
			}
		})
	}

	if cfg.Appointments != nil {
		mux.HandleFunc("/appointments", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Appointments.List(w, r)
			case http.MethodPost:
				cfg.Appointments.Create(w, r)
			case http.MethodDelete:
				cfg.Appointments.Clear(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost, http.MethodDelete)
			}
		})
		mux.HandleFunc("/appointments/", func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimPrefix(r.URL.Path, "/appointments/")
			if id == "" {
				http.NotFound(w, r)
				return
			}
			ctx := ContextWithAppointmentID(r.Context(), id)
			r = r.WithContext(ctx)
			switch r.Method {
			case http.MethodGet:
				cfg.Appointments.Get(w, r)
			case http.MethodPut:
				cfg.Appointments.Update(w, r)
			case http.MethodDelete:
				cfg.Appointments.Delete(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodDelete)
			}
		})
	}

	var handler http.Handler = mux
	if len(cfg.Middleware) > 0 {
		for i := len(cfg.Middleware) - 1; i >= 0; i-- {
			if cfg.Middleware[i] != nil {
				handler = cfg.Middleware[i](handler)
			}
		}
	}

	return handler
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
