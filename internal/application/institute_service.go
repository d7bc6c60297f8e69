package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// InstituteRepository captures the persistence interactions needed by the
// institute service.
type InstituteRepository interface {
	CreateInstitute(ctx context.Context, institute Institute) (Institute, error)
	GetInstitute(ctx context.Context, id int64) (Institute, error)
	UpdateInstitute(ctx context.Context, institute Institute) (Institute, error)
	DeleteInstitute(ctx context.Context, id int64) error
	ListInstitutes(ctx context.Context, typeFilter string) ([]Institute, error)
}

// InstituteAccounts covers the account lifecycle driven by institute
// operations. Every institute owns exactly one account, created with it and
// removed with it.
type InstituteAccounts interface {
	CreateAccount(ctx context.Context, account Account) (Account, error)
	RenameAccountEntity(ctx context.Context, accountID int64, name string, updatedAt time.Time) error
	DeleteAccount(ctx context.Context, id int64) error
}

// InstituteUsage reports the appointments referencing an institute.
type InstituteUsage interface {
	CountAppointmentsByEntity(ctx context.Context, entityID int64) (int, error)
}

// InstituteService manages the institute and school catalog together with
// the financial account each entry owns.
type InstituteService struct {
	institutes InstituteRepository
	accounts   InstituteAccounts
	usage      InstituteUsage
	now        func() time.Time
	logger     *slog.Logger
}

// NewInstituteService wires dependencies for institute operations.
func NewInstituteService(institutes InstituteRepository, accounts InstituteAccounts, usage InstituteUsage, now func() time.Time) *InstituteService {
	return NewInstituteServiceWithLogger(institutes, accounts, usage, now, nil)
}

// NewInstituteServiceWithLogger constructs an InstituteService with a
// specified logger.
func NewInstituteServiceWithLogger(institutes InstituteRepository, accounts InstituteAccounts, usage InstituteUsage, now func() time.Time, logger *slog.Logger) *InstituteService {
	if now == nil {
		now = time.Now
	}
	return &InstituteService{
		institutes: institutes,
		accounts:   accounts,
		usage:      usage,
		now:        now,
		logger:     defaultLogger(logger),
	}
}

func (s *InstituteService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "InstituteService", operation, attrs...)
}

// CreateInstitute registers an institute or school and opens its account.
func (s *InstituteService) CreateInstitute(ctx context.Context, name, entityType string) (created Institute, err error) {
	if s == nil || s.institutes == nil {
		return Institute{}, fmt.Errorf("institute repository not configured")
	}

	logger := s.loggerWith(ctx, "CreateInstitute", "entity_type", entityType)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create institute", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "institute created", "institute_id", created.ID)
	}()

	name = strings.TrimSpace(name)
	if name == "" {
		err = newValidationError("name", "institute name is required")
		return Institute{}, err
	}
	if entityType != EntityTypeInstitute && entityType != EntityTypeSchool {
		err = newValidationError("type", "type must be institute or school")
		return Institute{}, err
	}

	now := s.now()
	created, createErr := s.institutes.CreateInstitute(ctx, Institute{
		Name:      name,
		Type:      entityType,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if createErr != nil {
		err = mapRepositoryError(createErr)
		return Institute{}, err
	}

	if s.accounts == nil {
		return created, nil
	}

	account, accountErr := s.accounts.CreateAccount(ctx, Account{
		EntityID:   created.ID,
		EntityName: created.Name,
		EntityType: created.Type,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if accountErr != nil {
		err = mapRepositoryError(accountErr)
		return Institute{}, err
	}

	created.AccountID = &account.ID
	created, linkErr := s.institutes.UpdateInstitute(ctx, created)
	if linkErr != nil {
		err = mapRepositoryError(linkErr)
		return Institute{}, err
	}

	return created, nil
}

// GetInstitute retrieves one institute by id.
func (s *InstituteService) GetInstitute(ctx context.Context, id int64) (Institute, error) {
	if s == nil || s.institutes == nil {
		return Institute{}, fmt.Errorf("institute repository not configured")
	}

	institute, err := s.institutes.GetInstitute(ctx, id)
	if err != nil {
		return Institute{}, mapRepositoryError(err)
	}
	return institute, nil
}

// ListInstitutes returns institutes in name order, optionally filtered by
// entity type. An empty filter returns everything.
func (s *InstituteService) ListInstitutes(ctx context.Context, typeFilter string) ([]Institute, error) {
	if s == nil || s.institutes == nil {
		return nil, fmt.Errorf("institute repository not configured")
	}

	if typeFilter != "" && typeFilter != EntityTypeInstitute && typeFilter != EntityTypeSchool {
		return nil, newValidationError("type", "type must be institute or school")
	}

	institutes, err := s.institutes.ListInstitutes(ctx, typeFilter)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return institutes, nil
}

// RenameInstitute changes an institute's name and rewrites the denormalized
// entity name on its account.
func (s *InstituteService) RenameInstitute(ctx context.Context, id int64, name string) (updated Institute, err error) {
	if s == nil || s.institutes == nil {
		return Institute{}, fmt.Errorf("institute repository not configured")
	}

	logger := s.loggerWith(ctx, "RenameInstitute", "institute_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to rename institute", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "institute renamed")
	}()

	name = strings.TrimSpace(name)
	if name == "" {
		err = newValidationError("name", "institute name is required")
		return Institute{}, err
	}

	existing, getErr := s.institutes.GetInstitute(ctx, id)
	if getErr != nil {
		err = mapRepositoryError(getErr)
		return Institute{}, err
	}

	now := s.now()
	existing.Name = name
	existing.UpdatedAt = now

	updated, updateErr := s.institutes.UpdateInstitute(ctx, existing)
	if updateErr != nil {
		err = mapRepositoryError(updateErr)
		return Institute{}, err
	}

	if s.accounts != nil && updated.AccountID != nil {
		if renameErr := s.accounts.RenameAccountEntity(ctx, *updated.AccountID, name, now); renameErr != nil {
			err = mapRepositoryError(renameErr)
			return Institute{}, err
		}
	}

	return updated, nil
}

// DeleteInstitute removes an institute together with its account and
// payment ledger. The delete is rejected with ErrInUse while any
// appointment still references the institute.
func (s *InstituteService) DeleteInstitute(ctx context.Context, id int64) (err error) {
	if s == nil || s.institutes == nil {
		return fmt.Errorf("institute repository not configured")
	}

	logger := s.loggerWith(ctx, "DeleteInstitute", "institute_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to delete institute", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "institute deleted")
	}()

	existing, getErr := s.institutes.GetInstitute(ctx, id)
	if getErr != nil {
		err = mapRepositoryError(getErr)
		return err
	}

	if s.usage != nil {
		count, countErr := s.usage.CountAppointmentsByEntity(ctx, id)
		if countErr != nil {
			err = mapRepositoryError(countErr)
			return err
		}
		if count > 0 {
			err = ErrInUse
			return err
		}
	}

	if deleteErr := s.institutes.DeleteInstitute(ctx, id); deleteErr != nil {
		err = mapRepositoryError(deleteErr)
		return err
	}

	if s.accounts != nil && existing.AccountID != nil {
		if accountErr := s.accounts.DeleteAccount(ctx, *existing.AccountID); accountErr != nil && !isNotFound(accountErr) {
			err = mapRepositoryError(accountErr)
			return err
		}
	}

	return nil
}
