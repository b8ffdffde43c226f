package audit

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// Service writes and reads the audit trail. A failed write is logged but
// never propagated: the administrative action that triggered it must not
// be rolled back because the journal is unavailable.
type Service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger *zap.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// Record appends an entry to the trail. It always returns nil; persistence
// errors are logged at error level and swallowed.
func (s *Service) Record(ctx context.Context, actorID uuid.UUID, action, entity, entityID string, metadata map[string]interface{}) error {
	entry := &AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   entity,
		EntityID: entityID,
		Metadata: datatypes.JSONMap(metadata),
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		s.logger.Error("Failed to write audit log entry",
			zap.Error(err),
			zap.String("action", action),
			zap.String("entity", entity),
			zap.String("entity_id", entityID))
	}
	return nil
}

// ListResponse is a page of audit log entries
type ListResponse struct {
	Logs       []AuditLog `json:"logs"`
	Pagination Pagination `json:"pagination"`
}

// Pagination describes the page returned by List
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
}

// List returns a page of audit entries, newest first.
func (s *Service) List(ctx context.Context, page, limit int) (*ListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}

	logs, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, err
	}

	totalPages := total / int64(limit)
	if total%int64(limit) != 0 {
		totalPages++
	}

	return &ListResponse{
		Logs: logs,
		Pagination: Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: totalPages,
		},
	}, nil
}
