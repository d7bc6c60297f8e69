package testfixtures

import (
	"log/slog"
	"time"

	"github.com/example/tutor-planner/internal/application"
)

// ServiceFactory assists tests with constructing application services using
// deterministic clocks.
type ServiceFactory struct {
	Clock *Clock
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a ServiceFactory with defaults.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{
		Clock: NewClock(time.Time{}),
	}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	return factory
}

// WithClock overrides the clock used by the factory.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

// AppointmentServiceDeps captures dependencies for constructing an
// appointment service.
type AppointmentServiceDeps struct {
	Appointments application.AppointmentRepository
	Subjects     application.SubjectDirectory
	Institutes   application.InstituteCatalog
	Now          func() time.Time
	Logger       *slog.Logger
}

// NewAppointmentService builds an appointment service using the supplied
// dependencies combined with the factory defaults.
func (f *ServiceFactory) NewAppointmentService(deps AppointmentServiceDeps) *application.AppointmentService {
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewAppointmentServiceWithLogger(
		deps.Appointments,
		deps.Subjects,
		deps.Institutes,
		now,
		deps.Logger,
	)
}

// SubjectServiceDeps captures dependencies for constructing a subject service.
type SubjectServiceDeps struct {
	Subjects application.SubjectRepository
	Usage    application.SubjectUsage
	Now      func() time.Time
	Logger   *slog.Logger
}

// NewSubjectService builds a subject service using the supplied dependencies.
func (f *ServiceFactory) NewSubjectService(deps SubjectServiceDeps) *application.SubjectService {
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewSubjectServiceWithLogger(
		deps.Subjects,
		deps.Usage,
		now,
		deps.Logger,
	)
}

// InstituteServiceDeps captures dependencies for constructing an institute
// service.
type InstituteServiceDeps struct {
	Institutes application.InstituteRepository
	Accounts   application.InstituteAccounts
	Usage      application.InstituteUsage
	Now        func() time.Time
	Logger     *slog.Logger
}

// NewInstituteService builds an institute service using the supplied
// dependencies.
func (f *ServiceFactory) NewInstituteService(deps InstituteServiceDeps) *application.InstituteService {
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewInstituteServiceWithLogger(
		deps.Institutes,
		deps.Accounts,
		deps.Usage,
		now,
		deps.Logger,
	)
}

// AccountServiceDeps captures dependencies for constructing an account service.
type AccountServiceDeps struct {
	Accounts application.AccountRepository
	Now      func() time.Time
	Logger   *slog.Logger
}

// NewAccountService builds an account service using the supplied dependencies.
func (f *ServiceFactory) NewAccountService(deps AccountServiceDeps) *application.AccountService {
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewAccountServiceWithLogger(
		deps.Accounts,
		now,
		deps.Logger,
	)
}
