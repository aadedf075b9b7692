package audit

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ironmart/ironmart/internal/shared"
)

// RepositoryPort abstracts audit storage for the service.
type RepositoryPort interface {
	AppendLog(ctx context.Context, entry Entry) error
	ListLogs(ctx context.Context, filter Filter) ([]Entry, error)
}

// Service coordinates audit recording and reads.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// Record stamps and appends an entry attributed to the context actor.
func (s *Service) Record(ctx context.Context, logType LogType, target, details string, severity Severity) error {
	if logType == "" || target == "" {
		return ErrEntryRequired
	}
	if severity == "" {
		severity = SeverityInfo
	}
	actor := shared.ActorFromContext(ctx)
	entry := Entry{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		UserID:    actor.ID,
		UserName:  actor.Name,
		Type:      logType,
		Target:    target,
		Details:   details,
		Severity:  severity,
	}
	return s.repo.AppendLog(ctx, entry)
}

// List returns retained entries, newest first.
func (s *Service) List(ctx context.Context, filter Filter) ([]Entry, error) {
	return s.repo.ListLogs(ctx, filter)
}
