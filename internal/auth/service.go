package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ironmart/ironmart/internal/audit"
	"github.com/ironmart/ironmart/internal/shared"
)

// RepositoryPort abstracts user storage.
type RepositoryPort interface {
	GetUser(ctx context.Context, id string) (User, error)
	FindUserByUsername(ctx context.Context, username string) (User, error)
	ListUsers(ctx context.Context) ([]User, error)
	SaveUser(ctx context.Context, user User) error
}

// AuditPort abstracts audit logging.
type AuditPort interface {
	Record(ctx context.Context, logType audit.LogType, target, details string, severity audit.Severity) error
}

// Service wraps account management and authentication rules.
type Service struct {
	repo  RepositoryPort
	audit AuditPort
}

// NewService builds Service.
func NewService(repo RepositoryPort, auditor AuditPort) *Service {
	return &Service{repo: repo, audit: auditor}
}

// Authenticate validates username/password credentials against the
// stored bcrypt hash.
func (s *Service) Authenticate(ctx context.Context, username, password string) (User, error) {
	user, err := s.repo.FindUserByUsername(ctx, username)
	if err != nil {
		return User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}
	if s.audit != nil {
		actorCtx := shared.ContextWithActor(ctx, shared.Actor{ID: user.ID, Name: user.Name, Role: string(user.Role)})
		_ = s.audit.Record(actorCtx, audit.TypeLogin, "Auth", fmt.Sprintf("%s authenticated successfully.", user.Name), audit.SeveritySuccess)
	}
	return user, nil
}

// Logout records the end of a session.
func (s *Service) Logout(ctx context.Context) {
	if s.audit == nil {
		return
	}
	actor := shared.ActorFromContext(ctx)
	if actor.ID == "" {
		return
	}
	_ = s.audit.Record(ctx, audit.TypeLogin, "Session", fmt.Sprintf("%s logged out.", actor.Name), audit.SeverityInfo)
}

// CreateUser registers a new employee account with a hashed credential.
func (s *Service) CreateUser(ctx context.Context, input CreateUserInput) (User, error) {
	if !input.Role.IsValid() {
		return User{}, ErrInvalidRole
	}
	if _, err := s.repo.FindUserByUsername(ctx, input.Username); err == nil {
		return User{}, ErrUsernameTaken
	} else if !errors.Is(err, ErrUserNotFound) {
		return User{}, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}
	user := User{
		ID:           uuid.NewString(),
		Name:         input.Name,
		Username:     input.Username,
		PasswordHash: string(hash),
		Role:         input.Role,
		Salary:       input.Salary,
		BranchID:     input.BranchID,
		Permissions:  input.Permissions,
	}
	if err := s.repo.SaveUser(ctx, user); err != nil {
		return User{}, err
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, audit.TypeEmployee, user.Username, fmt.Sprintf("Employee account %s created.", user.Name), audit.SeveritySuccess)
	}
	return user, nil
}

// UpdateUser edits an existing account.
func (s *Service) UpdateUser(ctx context.Context, id string, input UpdateUserInput) (User, error) {
	if !input.Role.IsValid() {
		return User{}, ErrInvalidRole
	}
	user, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return User{}, err
	}
	user.Name = input.Name
	user.Role = input.Role
	user.Salary = input.Salary
	user.BranchID = input.BranchID
	user.Permissions = input.Permissions
	if input.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			return User{}, err
		}
		user.PasswordHash = string(hash)
	}
	if err := s.repo.SaveUser(ctx, user); err != nil {
		return User{}, err
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, audit.TypeEmployee, user.Username, fmt.Sprintf("Employee account %s updated.", user.Name), audit.SeverityInfo)
	}
	return user, nil
}

// Users lists all accounts.
func (s *Service) Users(ctx context.Context) ([]User, error) {
	return s.repo.ListUsers(ctx)
}
