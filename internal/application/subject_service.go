package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// SubjectRepository captures the persistence interactions needed by the
// subject service.
type SubjectRepository interface {
	CreateSubject(ctx context.Context, subject Subject) (Subject, error)
	GetSubject(ctx context.Context, id int64) (Subject, error)
	UpdateSubject(ctx context.Context, subject Subject) (Subject, error)
	DeleteSubject(ctx context.Context, id int64) error
	ListSubjects(ctx context.Context) ([]Subject, error)
}

// SubjectUsage reports and rewrites the appointments referencing a subject.
type SubjectUsage interface {
	CountAppointmentsBySubject(ctx context.Context, subjectID int64) (int, error)
	RenameAppointmentSubject(ctx context.Context, subjectID int64, name string) error
}

// SubjectService manages the subject catalog. Renames propagate to the
// denormalized subject name on appointments; deletes are rejected while
// appointments still reference the subject.
type SubjectService struct {
	subjects SubjectRepository
	usage    SubjectUsage
	now      func() time.Time
	logger   *slog.Logger
}

// NewSubjectService wires dependencies for subject operations.
func NewSubjectService(subjects SubjectRepository, usage SubjectUsage, now func() time.Time) *SubjectService {
	return NewSubjectServiceWithLogger(subjects, usage, now, nil)
}

// NewSubjectServiceWithLogger constructs a SubjectService with a specified
// logger.
func NewSubjectServiceWithLogger(subjects SubjectRepository, usage SubjectUsage, now func() time.Time, logger *slog.Logger) *SubjectService {
	if now == nil {
		now = time.Now
	}
	return &SubjectService{
		subjects: subjects,
		usage:    usage,
		now:      now,
		logger:   defaultLogger(logger),
	}
}

func (s *SubjectService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "SubjectService", operation, attrs...)
}

// CreateSubject registers a new subject.
func (s *SubjectService) CreateSubject(ctx context.Context, name string) (created Subject, err error) {
	if s == nil || s.subjects == nil {
		return Subject{}, fmt.Errorf("subject repository not configured")
	}

	logger := s.loggerWith(ctx, "CreateSubject")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create subject", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "subject created", "subject_id", created.ID)
	}()

	name = strings.TrimSpace(name)
	if name == "" {
		err = newValidationError("name", "subject name is required")
		return Subject{}, err
	}

	now := s.now()
	created, createErr := s.subjects.CreateSubject(ctx, Subject{Name: name, CreatedAt: now, UpdatedAt: now})
	if createErr != nil {
		err = mapRepositoryError(createErr)
		return Subject{}, err
	}
	return created, nil
}

// GetSubject retrieves one subject by id.
func (s *SubjectService) GetSubject(ctx context.Context, id int64) (Subject, error) {
	if s == nil || s.subjects == nil {
		return Subject{}, fmt.Errorf("subject repository not configured")
	}

	subject, err := s.subjects.GetSubject(ctx, id)
	if err != nil {
		return Subject{}, mapRepositoryError(err)
	}
	return subject, nil
}

// ListSubjects returns all subjects in name order.
func (s *SubjectService) ListSubjects(ctx context.Context) ([]Subject, error) {
	if s == nil || s.subjects == nil {
		return nil, fmt.Errorf("subject repository not configured")
	}

	subjects, err := s.subjects.ListSubjects(ctx)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return subjects, nil
}

// RenameSubject changes a subject's name and rewrites the denormalized name
// on every appointment referencing it.
func (s *SubjectService) RenameSubject(ctx context.Context, id int64, name string) (updated Subject, err error) {
	if s == nil || s.subjects == nil {
		return Subject{}, fmt.Errorf("subject repository not configured")
	}

	logger := s.loggerWith(ctx, "RenameSubject", "subject_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to rename subject", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "subject renamed")
	}()

	name = strings.TrimSpace(name)
	if name == "" {
		err = newValidationError("name", "subject name is required")
		return Subject{}, err
	}

	existing, getErr := s.subjects.GetSubject(ctx, id)
	if getErr != nil {
		err = mapRepositoryError(getErr)
		return Subject{}, err
	}

	existing.Name = name
	existing.UpdatedAt = s.now()

	updated, updateErr := s.subjects.UpdateSubject(ctx, existing)
	if updateErr != nil {
		err = mapRepositoryError(updateErr)
		return Subject{}, err
	}

	if s.usage != nil {
		if renameErr := s.usage.RenameAppointmentSubject(ctx, id, name); renameErr != nil {
			err = mapRepositoryError(renameErr)
			return Subject{}, err
		}
	}

	return updated, nil
}

// DeleteSubject removes a subject. The delete is rejected with ErrInUse
// while any appointment still references the subject.
func (s *SubjectService) DeleteSubject(ctx context.Context, id int64) (err error) {
	if s == nil || s.subjects == nil {
		return fmt.Errorf("subject repository not configured")
	}

	logger := s.loggerWith(ctx, "DeleteSubject", "subject_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to delete subject", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "subject deleted")
	}()

	if s.usage != nil {
		count, countErr := s.usage.CountAppointmentsBySubject(ctx, id)
		if countErr != nil {
			err = mapRepositoryError(countErr)
			return err
		}
		if count > 0 {
			err = ErrInUse
			return err
		}
	}

	if deleteErr := s.subjects.DeleteSubject(ctx, id); deleteErr != nil {
		err = mapRepositoryError(deleteErr)
		return err
	}
	return nil
}
