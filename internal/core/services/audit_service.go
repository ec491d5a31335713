package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/knbsoft/knb_backend/internal/core/domain"
	portsrepo "github.com/knbsoft/knb_backend/internal/core/ports/repositories"
	portssvc "github.com/knbsoft/knb_backend/internal/core/ports/services"
	"github.com/knbsoft/knb_backend/internal/middleware"
)

// auditService records operator actions to the append-only audit log.
// A failed write is logged and swallowed so it can never fail a business
// operation that already committed.
type auditService struct {
	auditRepo portsrepo.AuditRepository
}

// NewAuditService creates a new audit service.
func NewAuditService(auditRepo portsrepo.AuditRepository) portssvc.AuditSvcFacade {
	return &auditService{auditRepo: auditRepo}
}

var _ portssvc.AuditSvcFacade = (*auditService)(nil)

// Record appends one audit entry.
func (s *auditService) Record(ctx context.Context, userID, action, details string) {
	entry := domain.AuditEntry{
		UserID:    userID,
		Action:    action,
		Details:   details,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.auditRepo.SaveAuditEntry(ctx, entry); err != nil {
		middleware.GetLoggerFromCtx(ctx).Error("Failed to record audit entry",
			slog.String("action", action),
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}
}

// ListRecent returns the newest audit entries first.
func (s *auditService) ListRecent(ctx context.Context, limit int) ([]domain.AuditEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	entries, err := s.auditRepo.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	return entries, nil
}
