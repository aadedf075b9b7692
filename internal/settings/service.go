package settings

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ironmart/ironmart/internal/audit"
)

// RepositoryPort abstracts config and branch storage.
type RepositoryPort interface {
	SystemConfig(ctx context.Context) (SystemConfig, error)
	SaveSystemConfig(ctx context.Context, cfg SystemConfig) error
	ListBranches(ctx context.Context) ([]Branch, error)
	GetBranch(ctx context.Context, id string) (Branch, error)
	SaveBranch(ctx context.Context, branch Branch) error
	DeleteBranch(ctx context.Context, id string) error
}

// AuditPort abstracts audit logging.
type AuditPort interface {
	Record(ctx context.Context, logType audit.LogType, target, details string, severity audit.Severity) error
}

// Service manages system configuration and branches.
type Service struct {
	repo  RepositoryPort
	audit AuditPort
}

// NewService builds Service.
func NewService(repo RepositoryPort, auditor AuditPort) *Service {
	return &Service{repo: repo, audit: auditor}
}

// Config returns the current system configuration.
func (s *Service) Config(ctx context.Context) (SystemConfig, error) {
	return s.repo.SystemConfig(ctx)
}

// UpdateConfig replaces the system configuration.
func (s *Service) UpdateConfig(ctx context.Context, cfg SystemConfig) (SystemConfig, error) {
	if err := s.repo.SaveSystemConfig(ctx, cfg); err != nil {
		return SystemConfig{}, err
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, audit.TypeSystem, "Settings", "System configuration updated.", audit.SeverityInfo)
	}
	return cfg, nil
}

// Branches lists all branches.
func (s *Service) Branches(ctx context.Context) ([]Branch, error) {
	return s.repo.ListBranches(ctx)
}

// CreateBranch registers a new branch.
func (s *Service) CreateBranch(ctx context.Context, input BranchInput) (Branch, error) {
	branch := Branch{
		ID:    uuid.NewString(),
		Name:  input.Name,
		Phone: input.Phone,
		Email: input.Email,
	}
	if err := s.repo.SaveBranch(ctx, branch); err != nil {
		return Branch{}, err
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, audit.TypeBranch, branch.Name, fmt.Sprintf("Branch %s registered.", branch.Name), audit.SeveritySuccess)
	}
	return branch, nil
}

// UpdateBranch renames or re-addresses a branch.
func (s *Service) UpdateBranch(ctx context.Context, id string, input BranchInput) (Branch, error) {
	branch, err := s.repo.GetBranch(ctx, id)
	if err != nil {
		return Branch{}, err
	}
	branch.Name = input.Name
	branch.Phone = input.Phone
	branch.Email = input.Email
	if err := s.repo.SaveBranch(ctx, branch); err != nil {
		return Branch{}, err
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, audit.TypeBranch, branch.Name, fmt.Sprintf("Branch %s updated.", branch.Name), audit.SeverityInfo)
	}
	return branch, nil
}

// DeleteBranch removes a branch.
func (s *Service) DeleteBranch(ctx context.Context, id string) error {
	branch, err := s.repo.GetBranch(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteBranch(ctx, id); err != nil {
		return err
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, audit.TypeBranch, branch.Name, fmt.Sprintf("Branch %s removed.", branch.Name), audit.SeverityWarning)
	}
	return nil
}
